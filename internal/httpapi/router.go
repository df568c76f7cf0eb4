// Package httpapi exposes the core service over HTTP to the gateway.
//
// Every route except /health expects an x-user-id header carrying the
// authenticated user, forwarded by the gateway after JWT verification.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"jobtrail/core-service/internal/event"
	"jobtrail/core-service/internal/kanban"
	"jobtrail/core-service/internal/model"
	"jobtrail/core-service/internal/triage"
)

const version = "1.0.0"

// Store is the slice of persistence the handlers use directly, beyond
// what the kanban and triage services wrap. internal/storage implements
// it.
type Store interface {
	ListConfigs(ctx context.Context, userID string) ([]model.SearchConfig, error)
	GetConfig(ctx context.Context, userID, configID string) (*model.SearchConfig, error)
	CreateConfig(ctx context.Context, userID string, c model.SearchConfig) (*model.SearchConfig, error)
	UpdateConfig(ctx context.Context, userID, configID string, c model.SearchConfig) (*model.SearchConfig, error)
	DeleteConfig(ctx context.Context, userID, configID string) error

	ListPendingFeed(ctx context.Context, userID string) ([]model.JobFeedItem, error)
	InsertManual(ctx context.Context, userID string, configID *string, sourceURL string, raw json.RawMessage, expiresAt time.Time) (string, bool, error)
}

// Scanner triggers discovery cycles on demand. internal/discovery's
// Scheduler implements it.
type Scanner interface {
	RunCycle(ctx context.Context)
	RunCycleForUser(ctx context.Context, userID string)
}

// Handler holds the services the routes delegate to.
type Handler struct {
	store   Store
	kanban  *kanban.Service
	triage  *triage.Service
	sched   Scanner
	events  event.Publisher
	feedTTL time.Duration // expiry horizon for manually added feed items
}

// NewHandler returns a configured Handler.
func NewHandler(store Store, kanbanSvc *kanban.Service, triageSvc *triage.Service, sched Scanner, events event.Publisher, feedTTL time.Duration) *Handler {
	return &Handler{store: store, kanban: kanbanSvc, triage: triageSvc, sched: sched, events: events, feedTTL: feedTTL}
}

// NewRouter mounts all routes.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/configs", h.listConfigs).Methods(http.MethodGet)
	v1.HandleFunc("/configs", h.createConfig).Methods(http.MethodPost)
	v1.HandleFunc("/configs/{id}", h.updateConfig).Methods(http.MethodPut)
	v1.HandleFunc("/configs/{id}", h.deleteConfig).Methods(http.MethodDelete)

	v1.HandleFunc("/feed", h.listFeed).Methods(http.MethodGet)
	v1.HandleFunc("/feed", h.addManualJob).Methods(http.MethodPost)
	v1.HandleFunc("/feed/{id}/approve", h.approveFeedItem).Methods(http.MethodPost)
	v1.HandleFunc("/feed/{id}/reject", h.rejectFeedItem).Methods(http.MethodPost)
	v1.HandleFunc("/scan", h.triggerScan).Methods(http.MethodPost)

	v1.HandleFunc("/applications", h.listApplications).Methods(http.MethodGet)
	v1.HandleFunc("/applications", h.createApplication).Methods(http.MethodPost)
	v1.HandleFunc("/applications/{id}", h.getApplication).Methods(http.MethodGet)
	v1.HandleFunc("/applications/{id}/move", h.moveCard).Methods(http.MethodPost)
	v1.HandleFunc("/applications/{id}/note", h.addNote).Methods(http.MethodPost)
	v1.HandleFunc("/applications/{id}/rate", h.rateApplication).Methods(http.MethodPost)
	v1.HandleFunc("/applications/{id}/reminder", h.setReminder).Methods(http.MethodPost)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "core-service",
		"version": version,
	})
}
