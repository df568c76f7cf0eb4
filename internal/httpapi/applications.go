package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	apps, err := h.kanban.ListApplications(r.Context(), uid, r.URL.Query().Get("status"))
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, apps)
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
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

	app, err := h.kanban.GetApplication(r.Context(), uid, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, app)
}

// createApplication tracks a job without going through triage. With a
// jobFeedId the call is idempotent per (user, feed item); without one a
// fresh manual application is created every time.
func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	var body struct {
		JobFeedID string `json:"jobFeedId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	var jobFeedID *string
	if body.JobFeedID != "" {
		id, err := pathID(body.JobFeedID)
		if err != nil {
			writeErr(w, err)
			return
		}
		jobFeedID = &id
	}

	app, err := h.kanban.CreateApplication(r.Context(), uid, jobFeedID)
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) moveCard(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		NewStatus string `json:"newStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewStatus == "" {
		jsonError(w, "body must contain newStatus", http.StatusBadRequest)
		return
	}

	app, err := h.kanban.MoveCard(r.Context(), uid, id, body.NewStatus)
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) addNote(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	app, err := h.kanban.AddNote(r.Context(), uid, id, body.Note)
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) rateApplication(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	app, err := h.kanban.RateApplication(r.Context(), uid, id, body.Rating)
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) setReminder(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		RemindAt time.Time `json:"remindAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RemindAt.IsZero() {
		jsonError(w, "body must contain remindAt (RFC 3339)", http.StatusBadRequest)
		return
	}

	app, err := h.kanban.SetReminder(r.Context(), uid, id, body.RemindAt)
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, app)
}
