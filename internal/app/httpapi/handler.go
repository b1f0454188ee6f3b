// Package httpapi exposes the signup handlers over HTTP. It is a thin
// translation layer: decode the request, invoke one handler operation, map
// the typed error onto a status code.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	app "github.com/MaatFonseca/api-token-sale/internal/app"
	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
	"github.com/MaatFonseca/api-token-sale/internal/metrics"
	"github.com/MaatFonseca/api-token-sale/internal/middleware"
)

// Config carries the optional transport collaborators.
type Config struct {
	Metrics   *metrics.Metrics
	AdminAuth *middleware.AdminAuth
	RateLimit *middleware.RateLimiter
	CORS      *middleware.CORSMiddleware
}

// handler bundles the HTTP endpoints for the signup service.
type handler struct {
	app     *app.Application
	metrics *metrics.Metrics
	audit   *auditLog
	now     func() time.Time
}

// NewHandler returns a router exposing the REST API.
func NewHandler(application *app.Application, cfg Config) http.Handler {
	h := &handler{
		app:     application,
		metrics: cfg.Metrics,
		audit:   newAuditLog(0),
		now:     func() time.Time { return time.Now().UTC() },
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
		r.Use(middleware.MetricsMiddleware(cfg.Metrics))
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS.Handler)
	}

	api := r.PathPrefix("/api").Subrouter()
	if cfg.RateLimit != nil {
		api.Use(cfg.RateLimit.Handler)
	}
	api.HandleFunc("/applications", h.create).Methods(http.MethodPost)
	api.HandleFunc("/applications/{privateId}", h.get).Methods(http.MethodGet)
	api.HandleFunc("/applications/{privateId}", h.update).Methods(http.MethodPut)
	api.HandleFunc("/applications/{privateId}/lock", h.lock).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	if cfg.AdminAuth != nil {
		admin.Use(cfg.AdminAuth.Handler)
	}
	admin.HandleFunc("/applications", h.adminList).Methods(http.MethodGet)
	admin.HandleFunc("/applications/{publicId}", h.adminGet).Methods(http.MethodGet)
	admin.HandleFunc("/audit", h.adminAudit).Methods(http.MethodGet)

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.app.Applications.Add(r.Context(), payload.Email, h.now()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSignup()
	}
	w.WriteHeader(http.StatusAccepted)
}

// updatePayload mirrors the projection: clients fetch their application,
// modify it, and put the whole object back. The store replaces the record
// wholesale, so fields omitted here are dropped from the persisted record.
// Administrative timestamps are never accepted from the wire.
type updatePayload struct {
	PrivateID string   `json:"privateId"`
	PublicID  string   `json:"publicId"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Country   string   `json:"country"`
	TxHashes  []string `json:"txHashes"`
	IsLocked  bool     `json:"isLocked"`
}

func (p updatePayload) toDomain() application.Application {
	return application.Application{
		PublicID:  p.PublicID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Country:   p.Country,
		TxHashes:  p.TxHashes,
		IsLocked:  p.IsLocked,
	}
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	privateID := mux.Vars(r)["privateId"]

	var payload updatePayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	record := payload.toDomain()
	record.PrivateID = privateID
	if err := h.app.Applications.Update(r.Context(), privateID, record, true, h.now()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	projection, err := h.app.Applications.Get(r.Context(), mux.Vars(r)["privateId"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (h *handler) lock(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Applications.Lock(r.Context(), mux.Vars(r)["privateId"], h.now()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordLock()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) adminList(w http.ResponseWriter, r *http.Request) {
	all, err := h.app.Admin.List(r.Context())
	if err != nil {
		h.recordAudit(r, http.StatusInternalServerError)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.recordAudit(r, http.StatusOK)
	writeJSON(w, http.StatusOK, all)
}

func (h *handler) adminGet(w http.ResponseWriter, r *http.Request) {
	record, ok, err := h.app.Admin.Get(r.Context(), mux.Vars(r)["publicId"])
	if err != nil {
		h.recordAudit(r, http.StatusInternalServerError)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		h.recordAudit(r, http.StatusNotFound)
		writeError(w, http.StatusNotFound, application.ErrNotFound)
		return
	}
	h.recordAudit(r, http.StatusOK)
	writeJSON(w, http.StatusOK, record)
}

func (h *handler) adminAudit(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.audit.list())
}

func (h *handler) recordAudit(r *http.Request, status int) {
	h.audit.add(auditEntry{
		Time:       h.now(),
		Path:       r.URL.Path,
		Method:     r.Method,
		Status:     status,
		RemoteAddr: r.RemoteAddr,
	})
}

func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	var mf *application.MissingFieldsError
	switch {
	case errors.As(err, &mf):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":         mf.Error(),
			"missingFields": mf.Fields,
		})
	case errors.Is(err, application.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, application.ErrLocked):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
