package http

import (
	"net/http"

	"redib-coa-backend/internal/domain"
)

type publicationRequest struct {
	Title             string `json:"title"`
	Authors           string `json:"authors"`
	DOI               string `json:"doi"`
	Journal           string `json:"journal"`
	PublicationYear   *int32 `json:"publication_year"`
	RedibAcknowledged bool   `json:"redib_acknowledged"`
}

func (r publicationRequest) toDomain() *domain.Publication {
	return &domain.Publication{
		Title:             r.Title,
		Authors:           r.Authors,
		DOI:               r.DOI,
		Journal:           r.Journal,
		PublicationYear:   r.PublicationYear,
		RedibAcknowledged: r.RedibAcknowledged,
	}
}

func (h *Handler) handleReportPublication(w http.ResponseWriter, r *http.Request) {
	var req publicationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pub, err := h.Publications.Report(r.Context(), userID(r), pathInt(r, "id"), req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pub)
}

func (h *Handler) handleUpdatePublication(w http.ResponseWriter, r *http.Request) {
	var req publicationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pub, err := h.Publications.Update(r.Context(), userID(r), pathInt(r, "id"), req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pub)
}

func (h *Handler) handleVerifyPublication(w http.ResponseWriter, r *http.Request) {
	pub, err := h.Publications.Verify(r.Context(), userID(r), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pub)
}

func (h *Handler) handleListPublications(w http.ResponseWriter, r *http.Request) {
	pubs, err := h.Publications.ListByApplication(r.Context(), userID(r), pathInt(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"publications": pubs})
}

func (h *Handler) handleListMyPublications(w http.ResponseWriter, r *http.Request) {
	pubs, err := h.Publications.ListMine(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"publications": pubs})
}
