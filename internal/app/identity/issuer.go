// Package identity issues the opaque identifiers attached to each signup.
package identity

import "github.com/google/uuid"

// Issuer produces the two identifiers assigned to an application at creation.
// Both must be globally unique within the dataset; the handlers never verify
// uniqueness themselves.
type Issuer interface {
	GeneratePrivateID() string
	GeneratePublicID() string
}

// UUIDIssuer issues random UUIDs. The private identifier acts as a capability
// token, so it is never derived from the public one.
type UUIDIssuer struct{}

var _ Issuer = UUIDIssuer{}

// NewUUIDIssuer creates the default issuer.
func NewUUIDIssuer() UUIDIssuer { return UUIDIssuer{} }

func (UUIDIssuer) GeneratePrivateID() string { return uuid.NewString() }

func (UUIDIssuer) GeneratePublicID() string { return uuid.NewString() }
