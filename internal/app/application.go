package app

import (
	"github.com/MaatFonseca/api-token-sale/internal/app/identity"
	"github.com/MaatFonseca/api-token-sale/internal/app/mailer"
	"github.com/MaatFonseca/api-token-sale/internal/app/services/admin"
	"github.com/MaatFonseca/api-token-sale/internal/app/services/applications"
	"github.com/MaatFonseca/api-token-sale/internal/app/storage"
	"github.com/MaatFonseca/api-token-sale/internal/app/storage/memory"
	"github.com/MaatFonseca/api-token-sale/pkg/logger"
)

// Deps are the collaborators the application is built from. A nil Store
// defaults to the in-memory implementation, a nil Issuer to UUIDs, and a nil
// Mailer to the log-only transport; there is no ambient global access from
// within handler logic.
type Deps struct {
	Store  storage.ApplicationStore
	Issuer identity.Issuer
	Mailer mailer.Mailer
}

// Application ties the signup handlers together.
type Application struct {
	log *logger.Logger

	Applications *applications.Service
	Admin        *admin.Service
}

// New builds a fully initialised application with the provided dependencies.
func New(deps Deps, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if deps.Store == nil {
		deps.Store = memory.New()
	}
	if deps.Issuer == nil {
		deps.Issuer = identity.NewUUIDIssuer()
	}
	if deps.Mailer == nil {
		deps.Mailer = mailer.NewLog(log)
	}

	return &Application{
		log:          log,
		Applications: applications.New(deps.Store, deps.Issuer, deps.Mailer, log),
		Admin:        admin.New(deps.Store, log),
	}
}
