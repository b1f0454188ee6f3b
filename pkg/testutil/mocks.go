// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
	"github.com/MaatFonseca/api-token-sale/internal/app/storage"
)

// SequenceIssuer issues deterministic identifiers for tests.
type SequenceIssuer struct {
	mu      sync.Mutex
	private int
	public  int
}

// NewSequenceIssuer creates an issuer producing private-1, private-2, ... and
// public-1, public-2, ...
func NewSequenceIssuer() *SequenceIssuer { return &SequenceIssuer{} }

func (i *SequenceIssuer) GeneratePrivateID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.private++
	return fmt.Sprintf("private-%d", i.private)
}

func (i *SequenceIssuer) GeneratePublicID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.public++
	return fmt.Sprintf("public-%d", i.public)
}

// FirstEmail records one welcome-email dispatch.
type FirstEmail struct {
	Email     string
	PrivateID string
}

// SecondEmail records one confirmation-email dispatch.
type SecondEmail struct {
	Email       string
	Application application.Application
}

// RecordingMailer captures dispatched notifications for assertions. Err, when
// set, is returned from every send.
type RecordingMailer struct {
	mu     sync.Mutex
	Err    error
	First  []FirstEmail
	Second []SecondEmail
}

// NewRecordingMailer creates an empty recording mailer.
func NewRecordingMailer() *RecordingMailer { return &RecordingMailer{} }

func (m *RecordingMailer) SendFirstEmail(_ context.Context, email, privateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.First = append(m.First, FirstEmail{Email: email, PrivateID: privateID})
	return nil
}

func (m *RecordingMailer) SendSecondEmail(_ context.Context, email string, app application.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Second = append(m.Second, SecondEmail{Email: email, Application: app})
	return nil
}

// RecordingStore wraps an application store and records the order of write
// operations, so tests can assert persist-before-notify sequencing. AddErr and
// UpdateErr, when set, fail the corresponding write before it reaches the
// wrapped store.
type RecordingStore struct {
	mu        sync.Mutex
	inner     storage.ApplicationStore
	AddErr    error
	UpdateErr error
	Ops       []string
}

var _ storage.ApplicationStore = (*RecordingStore)(nil)

// NewRecordingStore wraps the given store.
func NewRecordingStore(inner storage.ApplicationStore) *RecordingStore {
	return &RecordingStore{inner: inner}
}

func (s *RecordingStore) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ops = append(s.Ops, op)
}

func (s *RecordingStore) Add(ctx context.Context, app application.Application) error {
	if s.AddErr != nil {
		return s.AddErr
	}
	s.record("add")
	return s.inner.Add(ctx, app)
}

func (s *RecordingStore) Update(ctx context.Context, privateID string, app application.Application) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.record("update")
	return s.inner.Update(ctx, privateID, app)
}

func (s *RecordingStore) Get(ctx context.Context, privateID string) (application.Application, bool, error) {
	return s.inner.Get(ctx, privateID)
}

func (s *RecordingStore) GetWithPublicID(ctx context.Context, publicID string) (application.Application, bool, error) {
	return s.inner.GetWithPublicID(ctx, publicID)
}

func (s *RecordingStore) GetAll(ctx context.Context) ([]application.Application, error) {
	return s.inner.GetAll(ctx)
}
