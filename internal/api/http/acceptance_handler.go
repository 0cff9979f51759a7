package http

import "net/http"

type respondRequest struct {
	Accept bool `json:"accept"`
}

func (h *Handler) handleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if !decodeBody(w, r, &req) {
		return
	}
	app, err := h.Acceptance.Respond(r.Context(), userID(r), pathInt(r, "id"), req.Accept)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type completeRequest struct {
	ActualHours float64 `json:"actual_hours"`
}

func (h *Handler) handleMarkAccessComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	app, err := h.Acceptance.MarkAccessComplete(r.Context(), userID(r), pathInt(r, "id"), req.ActualHours)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
