package http

import (
	"net/http"

	"redib-coa-backend/internal/security"
	"redib-coa-backend/internal/service"

	"github.com/gorilla/mux"
)

// Handler holds every service the API fronts.
type Handler struct {
	Auth         service.AuthService
	Users        service.UserService
	Applications service.ApplicationService
	Feasibility  service.FeasibilityService
	Evaluations  service.EvaluationService
	Resolutions  service.ResolutionService
	Acceptance   service.AcceptanceService
	Calls        service.CallService
	Publications service.PublicationService
	Notes        service.NotificationService
}

// NewRouter wires all routes. Everything under /api/v1 except signup, login
// and the health check requires a bearer token.
func NewRouter(h *Handler, tokens security.TokenManager) http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/signup", h.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware(tokens))

	authed.HandleFunc("/me", h.handleGetProfile).Methods(http.MethodGet)
	authed.HandleFunc("/me", h.handleUpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/me/notifications", h.handleListNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/me/notifications/{id:[0-9]+}/read", h.handleMarkNotificationRead).Methods(http.MethodPost)

	authed.HandleFunc("/calls", h.handleListCalls).Methods(http.MethodGet)
	authed.HandleFunc("/calls/{id:[0-9]+}", h.handleGetCall).Methods(http.MethodGet)
	authed.HandleFunc("/calls/{id:[0-9]+}/publish", h.handlePublishCall).Methods(http.MethodPost)
	authed.HandleFunc("/calls/{id:[0-9]+}/close", h.handleCloseCall).Methods(http.MethodPost)

	authed.HandleFunc("/applications", h.handleCreateDraft).Methods(http.MethodPost)
	authed.HandleFunc("/applications", h.handleListApplications).Methods(http.MethodGet)
	authed.HandleFunc("/applications/{id:[0-9]+}", h.handleGetApplication).Methods(http.MethodGet)
	authed.HandleFunc("/applications/{id:[0-9]+}", h.handleUpdateDraft).Methods(http.MethodPut)
	authed.HandleFunc("/applications/{id:[0-9]+}/submit", h.handleSubmit).Methods(http.MethodPost)
	authed.HandleFunc("/applications/{id:[0-9]+}/access-requests", h.handleAddAccessRequest).Methods(http.MethodPost)
	authed.HandleFunc("/applications/{id:[0-9]+}/access-requests/{requestID:[0-9]+}", h.handleRemoveAccessRequest).Methods(http.MethodDelete)

	authed.HandleFunc("/applications/{id:[0-9]+}/feasibility", h.handleListFeasibility).Methods(http.MethodGet)
	authed.HandleFunc("/applications/{id:[0-9]+}/feasibility/{nodeID:[0-9]+}", h.handleSubmitFeasibility).Methods(http.MethodPost)

	authed.HandleFunc("/applications/{id:[0-9]+}/evaluations", h.handleListEvaluations).Methods(http.MethodGet)
	authed.HandleFunc("/applications/{id:[0-9]+}/evaluations/assign", h.handleAssignEvaluators).Methods(http.MethodPost)
	authed.HandleFunc("/evaluations/pending", h.handleListPendingEvaluations).Methods(http.MethodGet)
	authed.HandleFunc("/evaluations/{id:[0-9]+}", h.handleSubmitEvaluation).Methods(http.MethodPost)

	authed.HandleFunc("/applications/{id:[0-9]+}/resolutions", h.handleListResolutions).Methods(http.MethodGet)
	authed.HandleFunc("/applications/{id:[0-9]+}/resolutions/{nodeID:[0-9]+}", h.handleSubmitResolution).Methods(http.MethodPost)
	authed.HandleFunc("/applications/{id:[0-9]+}/resolve-pending", h.handleResolvePending).Methods(http.MethodPost)

	authed.HandleFunc("/applications/{id:[0-9]+}/respond", h.handleRespond).Methods(http.MethodPost)
	authed.HandleFunc("/access-requests/{id:[0-9]+}/complete", h.handleMarkAccessComplete).Methods(http.MethodPost)

	authed.HandleFunc("/applications/{id:[0-9]+}/publications", h.handleListPublications).Methods(http.MethodGet)
	authed.HandleFunc("/applications/{id:[0-9]+}/publications", h.handleReportPublication).Methods(http.MethodPost)
	authed.HandleFunc("/publications", h.handleListMyPublications).Methods(http.MethodGet)
	authed.HandleFunc("/publications/{id:[0-9]+}", h.handleUpdatePublication).Methods(http.MethodPut)
	authed.HandleFunc("/publications/{id:[0-9]+}/verify", h.handleVerifyPublication).Methods(http.MethodPost)

	return r
}
