package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
	"github.com/MaatFonseca/api-token-sale/internal/app/storage"
)

// Store is an in-memory implementation of the application store. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu           sync.RWMutex
	applications map[string]application.Application
	byPublicID   map[string]string
}

var _ storage.ApplicationStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		applications: make(map[string]application.Application),
		byPublicID:   make(map[string]string),
	}
}

func (s *Store) Add(_ context.Context, app application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.applications[app.PrivateID]; exists {
		return fmt.Errorf("application %s already exists", app.PrivateID)
	}

	app.TxHashes = cloneHashes(app.TxHashes)
	s.applications[app.PrivateID] = app
	if app.PublicID != "" {
		s.byPublicID[app.PublicID] = app.PrivateID
	}
	return nil
}

// Update replaces the stored record wholesale. The record does not need to
// exist beforehand; the write wins either way, matching the last-write-wins
// contract of the interface.
func (s *Store) Update(_ context.Context, privateID string, app application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, ok := s.applications[privateID]; ok && previous.PublicID != "" {
		delete(s.byPublicID, previous.PublicID)
	}

	app.PrivateID = privateID
	app.TxHashes = cloneHashes(app.TxHashes)
	s.applications[privateID] = app
	if app.PublicID != "" {
		s.byPublicID[app.PublicID] = privateID
	}
	return nil
}

func (s *Store) Get(_ context.Context, privateID string) (application.Application, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[privateID]
	if !ok {
		return application.Application{}, false, nil
	}
	app.TxHashes = cloneHashes(app.TxHashes)
	return app, true, nil
}

func (s *Store) GetWithPublicID(_ context.Context, publicID string) (application.Application, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	privateID, ok := s.byPublicID[publicID]
	if !ok {
		return application.Application{}, false, nil
	}
	app, ok := s.applications[privateID]
	if !ok {
		return application.Application{}, false, nil
	}
	app.TxHashes = cloneHashes(app.TxHashes)
	return app, true, nil
}

func (s *Store) GetAll(_ context.Context) ([]application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]application.Application, 0, len(s.applications))
	for _, app := range s.applications {
		app.TxHashes = cloneHashes(app.TxHashes)
		result = append(result, app)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Creation.Before(result[j].Creation)
	})
	return result, nil
}

func cloneHashes(hashes []string) []string {
	if hashes == nil {
		return nil
	}
	out := make([]string, len(hashes))
	copy(out, hashes)
	return out
}
