package repository

import (
	"context"
	"time"

	"redib-coa-backend/internal/domain"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id int32) (*domain.Application, error)
	GetByCode(ctx context.Context, code string) (*domain.Application, error)
	Update(ctx context.Context, app *domain.Application) error
	ListByApplicant(ctx context.Context, applicantID int32) ([]domain.Application, error)
	ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error)
	ListByCallAndStatus(ctx context.Context, callID int32, status domain.ApplicationStatus) ([]domain.Application, error)
	CountSubmittedForCall(ctx context.Context, callID int32) (int32, error)
	// ListExpirable returns accepted applications whose acceptance deadline
	// passed without an applicant response.
	ListExpirable(ctx context.Context, now time.Time) ([]domain.Application, error)
	// ListForAcceptanceReminder returns accepted, unanswered applications
	// whose deadline falls inside (from, to].
	ListForAcceptanceReminder(ctx context.Context, from, to time.Time) ([]domain.Application, error)
}

type AccessRequestRepository interface {
	Create(ctx context.Context, ar *domain.AccessRequest) error
	GetByID(ctx context.Context, id int32) (*domain.AccessRequest, error)
	Delete(ctx context.Context, id int32) error
	ListByApplication(ctx context.Context, applicationID int32) ([]domain.AccessRequest, error)
	ListByApplicationAndNode(ctx context.Context, applicationID, nodeID int32) ([]domain.AccessRequest, error)
	// InvolvedNodeIDs is the distinct set of nodes across the application's
	// equipment requests; it drives the feasibility and resolution fan-out.
	InvolvedNodeIDs(ctx context.Context, applicationID int32) ([]int32, error)
	SetApprovedHours(ctx context.Context, applicationID, equipmentID int32, hours float64) error
	// ReleaseApprovedHours nulls every approved-hours value of the
	// application so they no longer count toward node utilization.
	ReleaseApprovedHours(ctx context.Context, applicationID int32) error
	MarkCompleted(ctx context.Context, id, completedBy int32, actualHours float64, at time.Time) error
	CountIncomplete(ctx context.Context, applicationID int32) (int32, error)
}

type FeasibilityRepository interface {
	Create(ctx context.Context, fr *domain.FeasibilityReview) error
	GetByApplicationAndNode(ctx context.Context, applicationID, nodeID int32) (*domain.FeasibilityReview, error)
	ListByApplication(ctx context.Context, applicationID int32) ([]domain.FeasibilityReview, error)
	// RecordDecision writes the decision only if the row is still pending;
	// it returns domain.ErrAlreadyDecided otherwise.
	RecordDecision(ctx context.Context, fr *domain.FeasibilityReview) error
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.FeasibilityReview, error)
}

type EvaluationRepository interface {
	Create(ctx context.Context, ev *domain.Evaluation) error
	GetByID(ctx context.Context, id int32) (*domain.Evaluation, error)
	ListByApplication(ctx context.Context, applicationID int32) ([]domain.Evaluation, error)
	ListPendingByEvaluator(ctx context.Context, evaluatorID int32) ([]domain.Evaluation, error)
	// Complete persists scores and the completion timestamp only if the row
	// is still open; it returns domain.ErrAlreadyCompleted otherwise.
	Complete(ctx context.Context, ev *domain.Evaluation) error
	Delete(ctx context.Context, id int32) error
}

type NodeResolutionRepository interface {
	Create(ctx context.Context, nr *domain.NodeResolution) error
	GetByApplicationAndNode(ctx context.Context, applicationID, nodeID int32) (*domain.NodeResolution, error)
	ListByApplication(ctx context.Context, applicationID int32) ([]domain.NodeResolution, error)
	// RecordDecision writes the decision only if the row is still unset;
	// it returns domain.ErrAlreadyDecided otherwise.
	RecordDecision(ctx context.Context, nr *domain.NodeResolution) error
}

type NodeRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Node, error)
	List(ctx context.Context) ([]domain.Node, error)
	// ListCoordinators returns the users holding an active node_coordinator
	// role for the node.
	ListCoordinators(ctx context.Context, nodeID int32) ([]domain.User, error)
}

type EquipmentRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Equipment, error)
	ListByNode(ctx context.Context, nodeID int32) ([]domain.Equipment, error)
	ListActive(ctx context.Context) ([]domain.Equipment, error)
}

type CallRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Call, error)
	GetByCode(ctx context.Context, code string) (*domain.Call, error)
	List(ctx context.Context) ([]domain.Call, error)
	Update(ctx context.Context, call *domain.Call) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	HasActiveRole(ctx context.Context, userID int32, role domain.Role, nodeID *int32) (bool, error)
	ListRoles(ctx context.Context, userID int32) ([]domain.UserRole, error)
	// ListEvaluators returns users with an active evaluator role, paired
	// with that role row (for area matching).
	ListEvaluators(ctx context.Context) ([]domain.User, []domain.UserRole, error)
	ListCoordinators(ctx context.Context) ([]domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type PublicationRepository interface {
	Create(ctx context.Context, pub *domain.Publication) error
	GetByID(ctx context.Context, id int32) (*domain.Publication, error)
	Update(ctx context.Context, pub *domain.Publication) error
	ListByApplication(ctx context.Context, applicationID int32) ([]domain.Publication, error)
	ListByReporter(ctx context.Context, reporterID int32) ([]domain.Publication, error)
}

// Repos bundles every repository over one database handle. A TxManager hands
// the services a Repos bound to a single transaction.
type Repos struct {
	Applications    ApplicationRepository
	AccessRequests  AccessRequestRepository
	Feasibility     FeasibilityRepository
	Evaluations     EvaluationRepository
	NodeResolutions NodeResolutionRepository
	Nodes           NodeRepository
	Equipment       EquipmentRepository
	Calls           CallRepository
	Users           UserRepository
	Notifications   NotificationRepository
	Publications    PublicationRepository
}

// TxManager runs fn with a Repos bound to one storage transaction. The
// transaction commits only if fn returns nil; any error rolls everything
// back, so a decision and its aggregation recompute land atomically.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(r *Repos) error) error
}
