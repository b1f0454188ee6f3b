package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
	"github.com/MaatFonseca/api-token-sale/internal/app/storage"
)

// Store implements the application store backed by PostgreSQL. Schema is owned
// by the SQL migrations under migrations/.
type Store struct {
	db *sqlx.DB
}

var _ storage.ApplicationStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type row struct {
	PrivateID  string         `db:"private_id"`
	PublicID   string         `db:"public_id"`
	Email      string         `db:"email"`
	FirstName  string         `db:"first_name"`
	LastName   string         `db:"last_name"`
	Country    string         `db:"country"`
	TxHashes   pq.StringArray `db:"tx_hashes"`
	IsLocked   bool           `db:"is_locked"`
	LockDate   time.Time      `db:"lock_date"`
	Creation   time.Time      `db:"creation"`
	LastUpdate time.Time      `db:"last_update"`
}

func (r row) toDomain() application.Application {
	return application.Application{
		PrivateID:  r.PrivateID,
		PublicID:   r.PublicID,
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Country:    r.Country,
		TxHashes:   []string(r.TxHashes),
		IsLocked:   r.IsLocked,
		LockDate:   r.LockDate,
		Creation:   r.Creation,
		LastUpdate: r.LastUpdate,
	}
}

const selectColumns = `
	private_id, public_id, email, first_name, last_name, country,
	tx_hashes, is_locked, lock_date, creation, last_update`

func (s *Store) Add(ctx context.Context, app application.Application) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (
			private_id, public_id, email, first_name, last_name, country,
			tx_hashes, is_locked, lock_date, creation, last_update
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, app.PrivateID, app.PublicID, app.Email, app.FirstName, app.LastName,
		app.Country, pq.StringArray(app.TxHashes), app.IsLocked,
		app.LockDate, app.Creation, app.LastUpdate)
	return err
}

// Update writes the complete record, creating the row when it does not exist.
// Last write wins; no compare-and-set.
func (s *Store) Update(ctx context.Context, privateID string, app application.Application) error {
	app.PrivateID = privateID
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (
			private_id, public_id, email, first_name, last_name, country,
			tx_hashes, is_locked, lock_date, creation, last_update
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (private_id) DO UPDATE SET
			public_id = EXCLUDED.public_id,
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			country = EXCLUDED.country,
			tx_hashes = EXCLUDED.tx_hashes,
			is_locked = EXCLUDED.is_locked,
			lock_date = EXCLUDED.lock_date,
			creation = EXCLUDED.creation,
			last_update = EXCLUDED.last_update
	`, app.PrivateID, app.PublicID, app.Email, app.FirstName, app.LastName,
		app.Country, pq.StringArray(app.TxHashes), app.IsLocked,
		app.LockDate, app.Creation, app.LastUpdate)
	return err
}

func (s *Store) Get(ctx context.Context, privateID string) (application.Application, bool, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `
		SELECT `+selectColumns+`
		FROM applications
		WHERE private_id = $1
	`, privateID)
	if errors.Is(err, sql.ErrNoRows) {
		return application.Application{}, false, nil
	}
	if err != nil {
		return application.Application{}, false, err
	}
	return r.toDomain(), true, nil
}

func (s *Store) GetWithPublicID(ctx context.Context, publicID string) (application.Application, bool, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `
		SELECT `+selectColumns+`
		FROM applications
		WHERE public_id = $1
	`, publicID)
	if errors.Is(err, sql.ErrNoRows) {
		return application.Application{}, false, nil
	}
	if err != nil {
		return application.Application{}, false, err
	}
	return r.toDomain(), true, nil
}

func (s *Store) GetAll(ctx context.Context) ([]application.Application, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+selectColumns+`
		FROM applications
		ORDER BY creation
	`)
	if err != nil {
		return nil, err
	}

	result := make([]application.Application, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toDomain())
	}
	return result, nil
}
