package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"jobtrail/core-service/internal/apperr"
	"jobtrail/core-service/internal/discovery"
	"jobtrail/core-service/internal/event"
)

type addManualJobRequest struct {
	CompanyName    string `json:"companyName" validate:"required"`
	Title          string `json:"title"`
	Location       string `json:"location"`
	Description    string `json:"description"`
	SearchConfigID string `json:"searchConfigId" validate:"omitempty,uuid"`
}

func (req *addManualJobRequest) Validate() error {
	return validate.Struct(req)
}

func (h *Handler) listFeed(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	items, err := h.store.ListPendingFeed(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, items)
}

// addManualJob files a user-entered posting in the inbox. The dedup key
// is synthesized from the owner and company, so the same manual posting
// filed twice is a conflict rather than a second row.
func (h *Handler) addManualJob(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	var req addManualJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var configID *string
	if req.SearchConfigID != "" {
		cfg, err := h.store.GetConfig(r.Context(), uid, req.SearchConfigID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if discovery.ContainsRedFlag(req.Title, req.CompanyName, req.Description, cfg.RedFlags) {
			writeErr(w, apperr.Validationf("job matches a red flag of the referenced search config"))
			return
		}
		configID = &cfg.ID
	}

	raw, err := json.Marshal(map[string]string{
		"company":     req.CompanyName,
		"title":       req.Title,
		"location":    req.Location,
		"description": req.Description,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	sourceURL := fmt.Sprintf("manual://%s/%s", uid, req.CompanyName)
	expiresAt := time.Now().UTC().Add(h.feedTTL)

	id, inserted, err := h.store.InsertManual(r.Context(), uid, configID, sourceURL, raw, expiresAt)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !inserted {
		jsonError(w, "job already in your inbox", http.StatusConflict)
		return
	}

	// Manual rows announce themselves the same way discovered ones do.
	payload := map[string]string{
		"type":           event.TopicJobDiscovered,
		"jobFeedId":      id,
		"userId":         uid,
		"searchConfigId": req.SearchConfigID,
	}
	if err := h.events.Publish(r.Context(), event.TopicJobDiscovered, payload); err != nil {
		slog.Warn("publish EVENT_JOB_DISCOVERED failed", "jobFeedId", id, "err", err)
	}

	jsonOK(w, map[string]string{"jobFeedId": id})
}

func (h *Handler) approveFeedItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}
	id, err := pathID(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}

	app, err := h.triage.Approve(r.Context(), uid, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) rejectFeedItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}
	id, err := pathID(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}

	item, err := h.triage.Reject(r.Context(), uid, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, item)
}

// triggerScan fires a discovery cycle in the background and responds
// immediately. The scan covers the caller's configs; scope=all runs the
// full cycle and is reserved for the gateway's admin surface.
func (h *Handler) triggerScan(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}
	if h.sched == nil {
		writeErr(w, apperr.Validationf("discovery is not enabled"))
		return
	}

	scope := r.URL.Query().Get("scope")
	go func() {
		// Detached from the request context: the scan outlives the response.
		ctx := context.Background()
		if scope == "all" {
			h.sched.RunCycle(ctx)
		} else {
			h.sched.RunCycleForUser(ctx, uid)
		}
	}()

	jsonOK(w, map[string]string{"message": "scan triggered"})
}
