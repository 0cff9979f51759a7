package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func pathInt(r *http.Request, name string) int32 {
	v, _ := strconv.Atoi(mux.Vars(r)[name])
	return int32(v)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Entity   string `json:"entity"`
	ORCID    string `json:"orcid"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, token, err := h.Auth.Signup(r.Context(), req.Name, req.Email, req.Phone, req.Entity, req.ORCID, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, token, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, roles, err := h.Users.GetProfile(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user, "roles": roles})
}

type updateProfileRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Entity string `json:"entity"`
	ORCID  string `json:"orcid"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Users.UpdateProfile(r.Context(), userID(r), req.Name, req.Phone, req.Entity, req.ORCID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	notes, total, err := h.Notes.GetNotifications(r.Context(), userID(r), int32(page), int32(pageSize))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notes, "total": total})
}

func (h *Handler) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Notes.MarkAsRead(r.Context(), userID(r), pathInt(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
