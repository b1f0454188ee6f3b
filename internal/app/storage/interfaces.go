// Package storage defines the persistence contract for signup applications.
package storage

import (
	"context"

	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
)

// ApplicationStore persists signup records keyed by private identifier, with a
// secondary lookup by public identifier. Update replaces the whole record.
// Absence is reported through the bool, not an error; errors are reserved for
// storage failures. The store offers no read-modify-write atomicity: callers
// that read then write race with each other and the last write wins.
type ApplicationStore interface {
	Add(ctx context.Context, app application.Application) error
	Update(ctx context.Context, privateID string, app application.Application) error
	Get(ctx context.Context, privateID string) (application.Application, bool, error)
	GetWithPublicID(ctx context.Context, publicID string) (application.Application, bool, error)
	GetAll(ctx context.Context) ([]application.Application, error)
}
