// Package admin implements the administrator-facing signup handler: raw,
// unfiltered reads over the application store.
package admin

import (
	"context"

	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
	"github.com/MaatFonseca/api-token-sale/internal/app/storage"
	"github.com/MaatFonseca/api-token-sale/pkg/logger"
)

// Service exposes the administrator operations. Results are returned exactly
// as stored, with no projection; store errors and absence pass through.
type Service struct {
	store storage.ApplicationStore
	log   *logger.Logger
}

// New constructs an admin service.
func New(store storage.ApplicationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("admin")
	}
	return &Service{store: store, log: log}
}

// Get fetches the raw record through the public-id lookup.
func (s *Service) Get(ctx context.Context, publicID string) (application.Application, bool, error) {
	return s.store.GetWithPublicID(ctx, publicID)
}

// List returns the store's full listing verbatim.
func (s *Service) List(ctx context.Context) ([]application.Application, error) {
	return s.store.GetAll(ctx)
}
