package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(sqlx.NewDb(db, "postgres")), mock
}

var appColumns = []string{
	"private_id", "public_id", "email", "first_name", "last_name", "country",
	"tx_hashes", "is_locked", "lock_date", "creation", "last_update",
}

func TestAdd(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO applications").
		WithArgs("priv-1", "pub-1", "foo@bar.baz", "", "", "",
			sqlmock.AnyArg(), false, time.Time{}, now, time.Time{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Add(context.Background(), application.Application{
		PrivateID: "priv-1",
		PublicID:  "pub-1",
		Email:     "foo@bar.baz",
		Creation:  now,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Update(context.Background(), "priv-1", application.Application{
		PublicID:  "pub-1",
		Email:     "foo@bar.baz",
		FirstName: "foo",
		TxHashes:  []string{"h1"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGet(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM applications\\s+WHERE private_id").
		WithArgs("priv-1").
		WillReturnRows(sqlmock.NewRows(appColumns).AddRow(
			"priv-1", "pub-1", "foo@bar.baz", "foo", "bar", "baz",
			[]byte(`{h1,h2}`), true, now, now, now,
		))

	app, ok, err := store.Get(context.Background(), "priv-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected record")
	}
	if app.FirstName != "foo" || !app.IsLocked {
		t.Fatalf("unexpected record: %#v", app)
	}
	if len(app.TxHashes) != 2 || app.TxHashes[1] != "h2" {
		t.Fatalf("tx hashes not decoded: %v", app.TxHashes)
	}
}

func TestGetAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM applications\\s+WHERE private_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(appColumns))

	_, ok, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected absence, not an error")
	}
}

func TestGetWithPublicID(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM applications\\s+WHERE public_id").
		WithArgs("pub-1").
		WillReturnRows(sqlmock.NewRows(appColumns).AddRow(
			"priv-1", "pub-1", "foo@bar.baz", "", "", "",
			[]byte(`{}`), false, time.Time{}, now, time.Time{},
		))

	app, ok, err := store.GetWithPublicID(context.Background(), "pub-1")
	if err != nil || !ok {
		t.Fatalf("get with public id: ok=%v err=%v", ok, err)
	}
	if app.PrivateID != "priv-1" {
		t.Fatalf("unexpected record: %#v", app)
	}
}

func TestGetAll(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM applications\\s+ORDER BY creation").
		WillReturnRows(sqlmock.NewRows(appColumns).
			AddRow("priv-1", "pub-1", "a@b.c", "", "", "", []byte(`{}`), false, time.Time{}, now, time.Time{}).
			AddRow("priv-2", "pub-2", "d@e.f", "", "", "", []byte(`{}`), false, time.Time{}, now.Add(time.Hour), time.Time{}))

	all, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
}
