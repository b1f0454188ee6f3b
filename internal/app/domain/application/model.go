// Package application defines the signup record at the heart of the token
// pre-sale: created with an email, filled in by the applicant, and finally
// locked by an administrator.
package application

import "time"

// Application is the signup record. It is treated as an immutable value:
// every operation computes a new Application and hands the complete record to
// the store, never a partial diff.
type Application struct {
	PrivateID  string    `json:"privateId" db:"private_id"`
	PublicID   string    `json:"publicId" db:"public_id"`
	Email      string    `json:"email" db:"email"`
	FirstName  string    `json:"firstName" db:"first_name"`
	LastName   string    `json:"lastName" db:"last_name"`
	Country    string    `json:"country" db:"country"`
	TxHashes   []string  `json:"txHashes" db:"tx_hashes"`
	IsLocked   bool      `json:"isLocked" db:"is_locked"`
	LockDate   time.Time `json:"lockDate" db:"lock_date"`
	Creation   time.Time `json:"creation" db:"creation"`
	LastUpdate time.Time `json:"lastUpdate" db:"last_update"`
}

// Projection is the applicant-facing view of an Application. Administrative
// timestamps (creation, lastUpdate, lockDate) never appear here.
type Projection struct {
	PrivateID string   `json:"privateId"`
	PublicID  string   `json:"publicId"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Country   string   `json:"country"`
	TxHashes  []string `json:"txHashes"`
	IsLocked  bool     `json:"isLocked"`
}

// Project returns the allow-listed applicant view of the record.
func (a Application) Project() Projection {
	return Projection{
		PrivateID: a.PrivateID,
		PublicID:  a.PublicID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Country:   a.Country,
		TxHashes:  a.TxHashes,
		IsLocked:  a.IsLocked,
	}
}

// RequiredFields lists the profile fields an applicant must supply before a
// validated update is accepted, in the order they are reported back.
var RequiredFields = []string{"firstName", "lastName", "country"}

// MissingFields returns the subset of RequiredFields absent from the record,
// preserving the fixed order. Pure; no I/O.
func MissingFields(a Application) []string {
	var missing []string
	for _, field := range RequiredFields {
		var value string
		switch field {
		case "firstName":
			value = a.FirstName
		case "lastName":
			value = a.LastName
		case "country":
			value = a.Country
		}
		if value == "" {
			missing = append(missing, field)
		}
	}
	return missing
}
