// Package redis provides an application store backed by Redis, for
// deployments that keep the signup dataset in a shared cache tier instead of
// PostgreSQL.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"

	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
	"github.com/MaatFonseca/api-token-sale/internal/app/storage"
)

const (
	recordKeyPrefix = "application:"
	publicKeyPrefix = "application:public:"
	indexKey        = "applications:index"
)

// Store implements the application store on top of a Redis client. Records are
// stored as JSON under application:<privateId>, with a public-id pointer key
// and a set of private ids backing GetAll.
type Store struct {
	client *redis.Client
}

var _ storage.ApplicationStore = (*Store)(nil)

// New creates a Store using the provided client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func recordKey(privateID string) string { return recordKeyPrefix + privateID }
func publicKey(publicID string) string  { return publicKeyPrefix + publicID }

func (s *Store) Add(ctx context.Context, app application.Application) error {
	payload, err := json.Marshal(app)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, recordKey(app.PrivateID), payload, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("application %s already exists", app.PrivateID)
	}

	if app.PublicID != "" {
		if err := s.client.Set(ctx, publicKey(app.PublicID), app.PrivateID, 0).Err(); err != nil {
			return err
		}
	}
	return s.client.SAdd(ctx, indexKey, app.PrivateID).Err()
}

func (s *Store) Update(ctx context.Context, privateID string, app application.Application) error {
	app.PrivateID = privateID
	payload, err := json.Marshal(app)
	if err != nil {
		return err
	}

	// Drop a stale public-id pointer when the replace changes it.
	if previous, ok, err := s.Get(ctx, privateID); err != nil {
		return err
	} else if ok && previous.PublicID != "" && previous.PublicID != app.PublicID {
		if err := s.client.Del(ctx, publicKey(previous.PublicID)).Err(); err != nil {
			return err
		}
	}

	if err := s.client.Set(ctx, recordKey(privateID), payload, 0).Err(); err != nil {
		return err
	}
	if app.PublicID != "" {
		if err := s.client.Set(ctx, publicKey(app.PublicID), privateID, 0).Err(); err != nil {
			return err
		}
	}
	return s.client.SAdd(ctx, indexKey, privateID).Err()
}

func (s *Store) Get(ctx context.Context, privateID string) (application.Application, bool, error) {
	payload, err := s.client.Get(ctx, recordKey(privateID)).Bytes()
	if err == redis.Nil {
		return application.Application{}, false, nil
	}
	if err != nil {
		return application.Application{}, false, err
	}

	var app application.Application
	if err := json.Unmarshal(payload, &app); err != nil {
		return application.Application{}, false, err
	}
	return app, true, nil
}

func (s *Store) GetWithPublicID(ctx context.Context, publicID string) (application.Application, bool, error) {
	privateID, err := s.client.Get(ctx, publicKey(publicID)).Result()
	if err == redis.Nil {
		return application.Application{}, false, nil
	}
	if err != nil {
		return application.Application{}, false, err
	}
	return s.Get(ctx, privateID)
}

func (s *Store) GetAll(ctx context.Context) ([]application.Application, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	result := make([]application.Application, 0, len(ids))
	for _, id := range ids {
		app, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, app)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Creation.Before(result[j].Creation)
	})
	return result, nil
}

// Ping verifies connectivity; used by the runtime at startup.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
