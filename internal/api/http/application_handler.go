package http

import (
	"net/http"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/service"
)

type draftRequest struct {
	CallID                int32  `json:"call_id"`
	BriefDescription      string `json:"brief_description"`
	ProjectTitle          string `json:"project_title"`
	ProjectCode           string `json:"project_code"`
	FundingAgency         string `json:"funding_agency"`
	HasCompetitiveFunding bool   `json:"has_competitive_funding"`
	SpecializationArea    string `json:"specialization_area"`
	ScientificRelevance   string `json:"scientific_relevance"`
	MethodologyDesc       string `json:"methodology_description"`
	DataConsent           bool   `json:"data_consent"`
}

func (r draftRequest) toInput() service.ApplicationDraftInput {
	return service.ApplicationDraftInput{
		CallID:                r.CallID,
		BriefDescription:      r.BriefDescription,
		ProjectTitle:          r.ProjectTitle,
		ProjectCode:           r.ProjectCode,
		FundingAgency:         r.FundingAgency,
		HasCompetitiveFunding: r.HasCompetitiveFunding,
		SpecializationArea:    r.SpecializationArea,
		ScientificRelevance:   r.ScientificRelevance,
		MethodologyDesc:       r.MethodologyDesc,
		DataConsent:           r.DataConsent,
	}
}

func (h *Handler) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decodeBody(w, r, &req) {
		return
	}
	app, err := h.Applications.CreateDraft(r.Context(), userID(r), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *Handler) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decodeBody(w, r, &req) {
		return
	}
	app, err := h.Applications.UpdateDraft(r.Context(), userID(r), pathInt(r, "id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type accessRequestBody struct {
	EquipmentID    int32   `json:"equipment_id"`
	HoursRequested float64 `json:"hours_requested"`
}

func (h *Handler) handleAddAccessRequest(w http.ResponseWriter, r *http.Request) {
	var req accessRequestBody
	if !decodeBody(w, r, &req) {
		return
	}
	ar, err := h.Applications.AddAccessRequest(r.Context(), userID(r), pathInt(r, "id"), req.EquipmentID, req.HoursRequested)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ar)
}

func (h *Handler) handleRemoveAccessRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.Applications.RemoveAccessRequest(r.Context(), userID(r), pathInt(r, "id"), pathInt(r, "requestID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	app, err := h.Applications.Submit(r.Context(), userID(r), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	app, requests, err := h.Applications.Get(r.Context(), userID(r), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"application": app, "access_requests": requests})
}

// handleListApplications lists the caller's own applications, or any status
// slice for coordinators via ?status=.
func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	var (
		apps []domain.Application
		err  error
	)
	if status != "" {
		apps, err = h.Applications.ListByStatus(r.Context(), userID(r), domain.ApplicationStatus(status))
	} else {
		apps, err = h.Applications.ListMine(r.Context(), userID(r))
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}
