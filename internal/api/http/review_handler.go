package http

import (
	"net/http"

	"redib-coa-backend/internal/domain"
)

func (h *Handler) handleListFeasibility(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Feasibility.ListForApplication(r.Context(), userID(r), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

type feasibilityRequest struct {
	IsFeasible bool   `json:"is_feasible"`
	Comments   string `json:"comments"`
}

func (h *Handler) handleSubmitFeasibility(w http.ResponseWriter, r *http.Request) {
	var req feasibilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	app, err := h.Feasibility.SubmitDecision(r.Context(), userID(r), pathInt(r, "id"), pathInt(r, "nodeID"), req.IsFeasible, req.Comments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *Handler) handleAssignEvaluators(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.Evaluations.AssignEvaluators(r.Context(), userID(r), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"evaluations": evaluations})
}

func (h *Handler) handleListPendingEvaluations(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.Evaluations.ListPending(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"evaluations": evaluations})
}

func (h *Handler) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.Evaluations.ListForApplication(r.Context(), userID(r), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"evaluations": evaluations})
}

type evaluationRequest struct {
	Scores         domain.ScoreSet       `json:"scores"`
	Recommendation domain.Recommendation `json:"recommendation"`
	Comments       string                `json:"comments"`
}

func (h *Handler) handleSubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ev, err := h.Evaluations.SubmitEvaluation(r.Context(), userID(r), pathInt(r, "id"), req.Scores, req.Recommendation, req.Comments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *Handler) handleListResolutions(w http.ResponseWriter, r *http.Request) {
	resolutions, err := h.Resolutions.ListForApplication(r.Context(), userID(r), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"resolutions": resolutions})
}

type resolutionRequest struct {
	Decision      domain.NodeDecision `json:"decision"`
	Comments      string              `json:"comments"`
	ApprovedHours map[int32]float64   `json:"approved_hours"`
}

func (h *Handler) handleSubmitResolution(w http.ResponseWriter, r *http.Request) {
	var req resolutionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	app, err := h.Resolutions.SubmitNodeResolution(r.Context(), userID(r), pathInt(r, "id"), pathInt(r, "nodeID"), req.Decision, req.Comments, req.ApprovedHours)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type resolvePendingRequest struct {
	Accept   bool   `json:"accept"`
	Comments string `json:"comments"`
}

func (h *Handler) handleResolvePending(w http.ResponseWriter, r *http.Request) {
	var req resolvePendingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	app, err := h.Resolutions.ResolvePending(r.Context(), userID(r), pathInt(r, "id"), req.Accept, req.Comments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
