package http

import "net/http"

func (h *Handler) handleListCalls(w http.ResponseWriter, r *http.Request) {
	calls, err := h.Calls.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"calls": calls})
}

func (h *Handler) handleGetCall(w http.ResponseWriter, r *http.Request) {
	call, err := h.Calls.Get(r.Context(), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, call)
}

func (h *Handler) handlePublishCall(w http.ResponseWriter, r *http.Request) {
	call, err := h.Calls.Publish(r.Context(), userID(r), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, call)
}

func (h *Handler) handleCloseCall(w http.ResponseWriter, r *http.Request) {
	call, err := h.Calls.Close(r.Context(), userID(r), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, call)
}
