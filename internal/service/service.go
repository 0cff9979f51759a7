package service

import (
	"context"

	"redib-coa-backend/internal/domain"
)

// ApplicationDraftInput carries the applicant-editable fields of an
// application. All fields may be revised until submission.
type ApplicationDraftInput struct {
	CallID                int32
	BriefDescription      string
	ProjectTitle          string
	ProjectCode           string
	FundingAgency         string
	HasCompetitiveFunding bool
	SpecializationArea    string
	ScientificRelevance   string
	MethodologyDesc       string
	DataConsent           bool
}

type AuthService interface {
	Signup(ctx context.Context, name, email, phone, entity, orcid, password string) (*domain.User, string, error) // user, access token
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID int32) (*domain.User, []domain.UserRole, error)
	UpdateProfile(ctx context.Context, userID int32, name, phone, entity, orcid string) error
}

// Authorizer answers role questions for the service layer. Node-scoped roles
// pass the node ID; nil means any node qualifies.
type Authorizer interface {
	RequireRole(ctx context.Context, userID int32, role domain.Role, nodeID *int32) error
}

type ApplicationService interface {
	CreateDraft(ctx context.Context, applicantID int32, input ApplicationDraftInput) (*domain.Application, error)
	UpdateDraft(ctx context.Context, applicantID, applicationID int32, input ApplicationDraftInput) (*domain.Application, error)
	AddAccessRequest(ctx context.Context, applicantID, applicationID, equipmentID int32, hoursRequested float64) (*domain.AccessRequest, error)
	RemoveAccessRequest(ctx context.Context, applicantID, applicationID, requestID int32) error
	Submit(ctx context.Context, applicantID, applicationID int32) (*domain.Application, error)
	Get(ctx context.Context, userID, applicationID int32) (*domain.Application, []domain.AccessRequest, error)
	ListMine(ctx context.Context, applicantID int32) ([]domain.Application, error)
	ListByStatus(ctx context.Context, userID int32, status domain.ApplicationStatus) ([]domain.Application, error)
}

type FeasibilityService interface {
	ListForApplication(ctx context.Context, userID, applicationID int32) ([]domain.FeasibilityReview, error)
	// SubmitDecision records one node's verdict and recomputes the
	// application status when the fan-out resolves.
	SubmitDecision(ctx context.Context, reviewerID, applicationID, nodeID int32, isFeasible bool, comments string) (*domain.Application, error)
}

type EvaluationService interface {
	// AssignEvaluators picks evaluators for a feasible application, skipping
	// anyone affiliated with the applicant's entity, and moves the
	// application under evaluation.
	AssignEvaluators(ctx context.Context, coordinatorID, applicationID int32) ([]domain.Evaluation, error)
	SubmitEvaluation(ctx context.Context, evaluatorID, evaluationID int32, scores domain.ScoreSet, recommendation domain.Recommendation, comments string) (*domain.Evaluation, error)
	ListPending(ctx context.Context, evaluatorID int32) ([]domain.Evaluation, error)
	ListForApplication(ctx context.Context, userID, applicationID int32) ([]domain.Evaluation, error)
}

type ResolutionService interface {
	// SubmitNodeResolution records one node's decision together with the
	// approved hours per equipment request, and finalizes the application's
	// resolution once every involved node has decided.
	SubmitNodeResolution(ctx context.Context, reviewerID, applicationID, nodeID int32, decision domain.NodeDecision, comments string, approvedHours map[int32]float64) (*domain.Application, error)
	// ResolvePending settles a waitlisted application one way or the other.
	ResolvePending(ctx context.Context, coordinatorID, applicationID int32, accept bool, comments string) (*domain.Application, error)
	ListForApplication(ctx context.Context, userID, applicationID int32) ([]domain.NodeResolution, error)
}

type AcceptanceService interface {
	Respond(ctx context.Context, applicantID, applicationID int32, accept bool) (*domain.Application, error)
	// MarkAccessComplete closes one equipment request; the application
	// completes when the last request closes.
	MarkAccessComplete(ctx context.Context, coordinatorID, requestID int32, actualHours float64) (*domain.Application, error)
	// SweepExpirations expires accepted applications whose deadline passed
	// without a response. Safe to run repeatedly.
	SweepExpirations(ctx context.Context) (int, error)
	// SendReminders nudges applicants whose acceptance deadline is close.
	SendReminders(ctx context.Context) (int, error)
}

type CallService interface {
	List(ctx context.Context) ([]domain.Call, error)
	Get(ctx context.Context, callID int32) (*domain.Call, error)
	Publish(ctx context.Context, adminID, callID int32) (*domain.Call, error)
	Close(ctx context.Context, adminID, callID int32) (*domain.Call, error)
}

type PublicationService interface {
	Report(ctx context.Context, reporterID, applicationID int32, pub *domain.Publication) (*domain.Publication, error)
	Update(ctx context.Context, reporterID, publicationID int32, pub *domain.Publication) (*domain.Publication, error)
	Verify(ctx context.Context, coordinatorID, publicationID int32) (*domain.Publication, error)
	ListByApplication(ctx context.Context, userID, applicationID int32) ([]domain.Publication, error)
	ListMine(ctx context.Context, reporterID int32) ([]domain.Publication, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendApplicationReceived(ctx context.Context, email, name, code string) error
	SendFeasibilityRequest(ctx context.Context, email, name, code, nodeName string) error
	SendFeasibilityReminder(ctx context.Context, email, name, code, nodeName string) error
	SendFeasibilityRejected(ctx context.Context, email, name, code string, nodeComments []string) error
	SendFeasibilityApproved(ctx context.Context, email, name, code string) error
	SendEvaluationAssigned(ctx context.Context, email, name, code string) error
	SendEvaluationComplete(ctx context.Context, email, name, code string, finalScore float64) error
	SendResolutionAccepted(ctx context.Context, email, name, code string, deadlineDays int, breakdown []string) error
	SendResolutionPending(ctx context.Context, email, name, code string, breakdown []string) error
	SendResolutionRejected(ctx context.Context, email, name, code string, breakdown []string) error
	SendAcceptanceReminder(ctx context.Context, email, name, code string, daysLeft int) error
	SendAcceptanceExpired(ctx context.Context, email, name, code string) error
	SendHandoffConfirmed(ctx context.Context, email, name, code, applicantName, applicantEmail string) error
	SendApplicantDeclined(ctx context.Context, email, name, code, applicantName string) error
	SendAccessCompleted(ctx context.Context, email, name, code, acknowledgment string) error
}
