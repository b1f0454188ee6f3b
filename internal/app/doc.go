// Package app composes the token pre-sale signup service.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct and dependency wiring
//	├── domain/application/ # The signup record, projection, and typed errors
//	├── storage/            # Store contract and implementations
//	│   ├── interfaces.go   # ApplicationStore
//	│   ├── memory/         # In-memory store for tests and local development
//	│   ├── postgres/       # PostgreSQL store (sqlx + lib/pq)
//	│   └── redis/          # Redis store
//	├── identity/           # Identifier issuance (private and public ids)
//	├── mailer/             # Applicant notifications (SMTP and log transports)
//	├── services/
//	│   ├── applications/   # Applicant-facing handler (add, update, get, lock)
//	│   └── admin/          # Administrator handler (raw get by public id, list)
//	├── httpapi/            # HTTP transport over the handlers
//	└── runtime/            # Config-driven startup and server lifecycle
//
// Business rules live in services/; app wires them to storage, identity, and
// mail, and httpapi translates handler errors into HTTP responses. The
// handlers impose no locking of their own: read-modify-write races on the same
// application are resolved by the store's last-write-wins semantics.
package app
