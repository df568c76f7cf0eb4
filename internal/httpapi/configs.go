package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"jobtrail/core-service/internal/model"
)

var validate = validator.New()

type createConfigRequest struct {
	JobTitles    []string `json:"jobTitles" validate:"required,min=1,dive,required"`
	Locations    []string `json:"locations" validate:"required,min=1,dive,required"`
	RemotePolicy string   `json:"remotePolicy" validate:"omitempty,oneof=REMOTE HYBRID ON_SITE"`
	Keywords     []string `json:"keywords"`
	RedFlags     []string `json:"redFlags"`
	SalaryMin    *int     `json:"salaryMin" validate:"omitempty,gte=0"`
	SalaryMax    *int     `json:"salaryMax" validate:"omitempty,gte=0"`
}

func (req *createConfigRequest) Validate() error {
	return validate.Struct(req)
}

type updateConfigRequest struct {
	JobTitles    []string `json:"jobTitles" validate:"omitempty,min=1,dive,required"`
	Locations    []string `json:"locations" validate:"omitempty,min=1,dive,required"`
	RemotePolicy string   `json:"remotePolicy" validate:"omitempty,oneof=REMOTE HYBRID ON_SITE"`
	Keywords     []string `json:"keywords"`
	RedFlags     []string `json:"redFlags"`
	SalaryMin    *int     `json:"salaryMin" validate:"omitempty,gte=0"`
	SalaryMax    *int     `json:"salaryMax" validate:"omitempty,gte=0"`
}

func (req *updateConfigRequest) Validate() error {
	return validate.Struct(req)
}

func (h *Handler) listConfigs(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	configs, err := h.store.ListConfigs(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, configs)
}

func (h *Handler) createConfig(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	var req createConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	policy := req.RemotePolicy
	if policy == "" {
		policy = model.RemotePolicyHybrid
	}

	cfg, err := h.store.CreateConfig(r.Context(), uid, model.SearchConfig{
		JobTitles:    req.JobTitles,
		Locations:    req.Locations,
		RemotePolicy: policy,
		Keywords:     req.Keywords,
		RedFlags:     req.RedFlags,
		SalaryMin:    req.SalaryMin,
		SalaryMax:    req.SalaryMax,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, cfg)
}

func (h *Handler) updateConfig(w http.ResponseWriter, r *http.Request) {
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

	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg, err := h.store.UpdateConfig(r.Context(), uid, id, model.SearchConfig{
		JobTitles:    req.JobTitles,
		Locations:    req.Locations,
		RemotePolicy: req.RemotePolicy,
		Keywords:     req.Keywords,
		RedFlags:     req.RedFlags,
		SalaryMin:    req.SalaryMin,
		SalaryMax:    req.SalaryMax,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, cfg)
}

func (h *Handler) deleteConfig(w http.ResponseWriter, r *http.Request) {
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

	if err := h.store.DeleteConfig(r.Context(), uid, id); err != nil {
		writeErr(w, err)
		return
	}
	jsonOK(w, map[string]bool{"deleted": true})
}
