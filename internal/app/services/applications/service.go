// Package applications implements the applicant-facing signup handler.
package applications

import (
	"context"
	"net/mail"
	"time"

	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
	"github.com/MaatFonseca/api-token-sale/internal/app/identity"
	"github.com/MaatFonseca/api-token-sale/internal/app/mailer"
	"github.com/MaatFonseca/api-token-sale/internal/app/storage"
	"github.com/MaatFonseca/api-token-sale/pkg/logger"
)

// Service exposes the applicant-facing operations: create a signup, update the
// profile, fetch the filtered view, and lock the application. It performs no
// retries and no rollback; collaborator failures propagate unchanged.
type Service struct {
	store  storage.ApplicationStore
	issuer identity.Issuer
	mailer mailer.Mailer
	log    *logger.Logger
}

// New constructs an applications service.
func New(store storage.ApplicationStore, issuer identity.Issuer, m mailer.Mailer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("applications")
	}
	return &Service{
		store:  store,
		issuer: issuer,
		mailer: m,
		log:    log,
	}
}

// Add registers a signup for the given email. On success the record is
// persisted first and the welcome email dispatched strictly after, so a
// welcome link is never sent for a record that failed to persist.
func (s *Service) Add(ctx context.Context, email string, now time.Time) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return application.ErrInvalidEmail
	}

	privateID := s.issuer.GeneratePrivateID()
	publicID := s.issuer.GeneratePublicID()

	app := application.Application{
		Email:     email,
		PrivateID: privateID,
		PublicID:  publicID,
		Creation:  now,
	}
	if err := s.store.Add(ctx, app); err != nil {
		return err
	}

	if err := s.mailer.SendFirstEmail(ctx, email, privateID); err != nil {
		return err
	}

	s.log.WithField("public_id", publicID).Info("application created")
	return nil
}

// MissingFieldsForUpdate returns the required profile fields absent from the
// given record, in the fixed reporting order. Pure; no I/O.
func (s *Service) MissingFieldsForUpdate(app application.Application) []string {
	return application.MissingFields(app)
}

// Update persists the full payload, merged with lastUpdate when now is
// non-zero. When validate is set, a payload that itself claims to be locked is
// rejected before any store access, and all required profile fields must be
// present. The check reads the payload's own isLocked flag, not stored state;
// updating an already-locked stored record with a payload that omits the flag
// is deliberately not prevented here.
func (s *Service) Update(ctx context.Context, privateID string, app application.Application, validate bool, now time.Time) error {
	if validate {
		if app.IsLocked {
			return application.ErrLocked
		}
		if missing := application.MissingFields(app); len(missing) > 0 {
			return application.NewMissingFieldsError(missing)
		}
	}

	if !now.IsZero() {
		app.LastUpdate = now
	}
	return s.store.Update(ctx, privateID, app)
}

// Get returns the applicant-facing projection of the record.
func (s *Service) Get(ctx context.Context, privateID string) (application.Projection, error) {
	app, ok, err := s.store.Get(ctx, privateID)
	if err != nil {
		return application.Projection{}, err
	}
	if !ok {
		return application.Projection{}, application.ErrNotFound
	}
	return app.Project(), nil
}

// Lock finalizes the application: the fetched record is persisted with the
// lock flag and lock date set, and the confirmation email is dispatched after
// the persist succeeds when the record carries an email. Re-locking an already
// locked record is tolerated and repeats both effects. The read and the write
// are not guarded by a compare-and-set, so two concurrent Lock calls can both
// observe the unlocked record and both persist; the second write wins.
func (s *Service) Lock(ctx context.Context, privateID string, now time.Time) error {
	app, ok, err := s.store.Get(ctx, privateID)
	if err != nil {
		return err
	}
	if !ok {
		return application.ErrNotFound
	}

	app.LockDate = now
	app.IsLocked = true
	if err := s.store.Update(ctx, privateID, app); err != nil {
		return err
	}

	if app.Email != "" {
		if err := s.mailer.SendSecondEmail(ctx, app.Email, app); err != nil {
			return err
		}
	}

	s.log.WithField("public_id", app.PublicID).Info("application locked")
	return nil
}
