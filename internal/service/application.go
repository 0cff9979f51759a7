package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"

	"github.com/google/uuid"
)

type applicationService struct {
	repos    *repository.Repos
	tx       repository.TxManager
	emailSvc EmailService
}

func NewApplicationService(repos *repository.Repos, tx repository.TxManager, emailSvc EmailService) ApplicationService {
	return &applicationService{repos: repos, tx: tx, emailSvc: emailSvc}
}

func (s *applicationService) CreateDraft(ctx context.Context, applicantID int32, input ApplicationDraftInput) (*domain.Application, error) {
	call, err := s.repos.Calls.GetByID(ctx, input.CallID)
	if err != nil {
		return nil, err
	}
	if !call.IsOpenForSubmission(time.Now()) {
		return nil, fmt.Errorf("%w: call %s is not open for submission", domain.ErrValidation, call.Code)
	}

	app := &domain.Application{
		CallID:      input.CallID,
		ApplicantID: applicantID,
		Status:      domain.StatusDraft,
	}
	applyDraftInput(app, input)
	if err := s.repos.Applications.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) UpdateDraft(ctx context.Context, applicantID, applicationID int32, input ApplicationDraftInput) (*domain.Application, error) {
	app, err := s.ownedDraft(ctx, applicantID, applicationID)
	if err != nil {
		return nil, err
	}
	applyDraftInput(app, input)
	if err := s.repos.Applications.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func applyDraftInput(app *domain.Application, input ApplicationDraftInput) {
	app.BriefDescription = input.BriefDescription
	app.ProjectTitle = input.ProjectTitle
	app.ProjectCode = input.ProjectCode
	app.FundingAgency = input.FundingAgency
	app.HasCompetitiveFunding = input.HasCompetitiveFunding
	app.SpecializationArea = input.SpecializationArea
	app.ScientificRelevance = input.ScientificRelevance
	app.MethodologyDesc = input.MethodologyDesc
	app.DataConsent = input.DataConsent
}

func (s *applicationService) AddAccessRequest(ctx context.Context, applicantID, applicationID, equipmentID int32, hoursRequested float64) (*domain.AccessRequest, error) {
	app, err := s.ownedDraft(ctx, applicantID, applicationID)
	if err != nil {
		return nil, err
	}
	if hoursRequested <= 0 {
		return nil, fmt.Errorf("%w: hours requested must be positive", domain.ErrValidation)
	}
	equip, err := s.repos.Equipment.GetByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if !equip.IsActive {
		return nil, fmt.Errorf("%w: equipment %s is not available", domain.ErrValidation, equip.Name)
	}

	existing, err := s.repos.AccessRequests.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	for _, ar := range existing {
		if ar.EquipmentID == equipmentID {
			return nil, fmt.Errorf("%w: equipment already requested", domain.ErrValidation)
		}
	}

	ar := &domain.AccessRequest{
		ApplicationID:  app.ID,
		EquipmentID:    equipmentID,
		HoursRequested: hoursRequested,
	}
	if err := s.repos.AccessRequests.Create(ctx, ar); err != nil {
		return nil, err
	}
	ar.NodeID = equip.NodeID
	ar.EquipmentName = equip.Name
	return ar, nil
}

func (s *applicationService) RemoveAccessRequest(ctx context.Context, applicantID, applicationID, requestID int32) error {
	app, err := s.ownedDraft(ctx, applicantID, applicationID)
	if err != nil {
		return err
	}
	requests, err := s.repos.AccessRequests.ListByApplication(ctx, app.ID)
	if err != nil {
		return err
	}
	for _, ar := range requests {
		if ar.ID == requestID {
			return s.repos.AccessRequests.Delete(ctx, requestID)
		}
	}
	return domain.ErrNotFound
}

// Submit freezes the draft: it assigns the application code, snapshots the
// applicant profile, moves the application into feasibility review and opens
// one pending review per involved node, all in one transaction.
func (s *applicationService) Submit(ctx context.Context, applicantID, applicationID int32) (*domain.Application, error) {
	var (
		app   *domain.Application
		nodes []int32
	)
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		app, err = r.Applications.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.ApplicantID != applicantID {
			return domain.ErrPermission
		}
		if app.Status != domain.StatusDraft {
			return &domain.InvalidTransitionError{From: app.Status, To: domain.StatusSubmitted}
		}

		call, err := r.Calls.GetByID(ctx, app.CallID)
		if err != nil {
			return err
		}
		now := time.Now()
		if !call.IsOpenForSubmission(now) {
			return fmt.Errorf("%w: call %s is not open for submission", domain.ErrValidation, call.Code)
		}
		if err := validateForSubmission(app); err != nil {
			return err
		}

		nodes, err = r.AccessRequests.InvolvedNodeIDs(ctx, app.ID)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			return fmt.Errorf("%w: at least one equipment request is required", domain.ErrValidation)
		}

		applicant, err := r.Users.GetByID(ctx, app.ApplicantID)
		if err != nil {
			return err
		}
		app.ApplicantName = applicant.Name
		app.ApplicantEmail = applicant.Email
		app.ApplicantEntity = applicant.Entity

		n, err := r.Applications.CountSubmittedForCall(ctx, app.CallID)
		if err != nil {
			return err
		}
		app.Code = fmt.Sprintf("%s-APP-%03d", call.Code, n+1)
		app.SubmittedAt = &now

		if err := app.TransitionTo(domain.StatusSubmitted); err != nil {
			return err
		}
		if err := app.TransitionTo(domain.StatusUnderFeasibilityReview); err != nil {
			return err
		}
		if err := r.Applications.Update(ctx, app); err != nil {
			return err
		}

		for _, nodeID := range nodes {
			fr := &domain.FeasibilityReview{ApplicationID: app.ID, NodeID: nodeID}
			if err := r.Feasibility.Create(ctx, fr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifySubmitted(ctx, app, nodes)
	return app, nil
}

func validateForSubmission(app *domain.Application) error {
	switch {
	case app.ProjectTitle == "":
		return fmt.Errorf("%w: project title is required", domain.ErrValidation)
	case app.ScientificRelevance == "":
		return fmt.Errorf("%w: scientific relevance is required", domain.ErrValidation)
	case app.MethodologyDesc == "":
		return fmt.Errorf("%w: methodology description is required", domain.ErrValidation)
	case !app.DataConsent:
		return fmt.Errorf("%w: data processing consent is required", domain.ErrValidation)
	}
	return nil
}

func (s *applicationService) notifySubmitted(ctx context.Context, app *domain.Application, nodes []int32) {
	_ = s.emailSvc.SendApplicationReceived(ctx, app.ApplicantEmail, app.ApplicantName, app.Code)
	_ = s.repos.Notifications.Create(ctx, &domain.Notification{
		UserID:        app.ApplicantID,
		ApplicationID: &app.ID,
		Event:         domain.EventApplicationReceived,
		Title:         "Application received",
		Message:       fmt.Sprintf("Application %s was submitted and is under feasibility review", app.Code),
		DedupKey:      uuid.NewString(),
	})

	for _, nodeID := range nodes {
		node, err := s.repos.Nodes.GetByID(ctx, nodeID)
		if err != nil {
			continue
		}
		coordinators, err := s.repos.Nodes.ListCoordinators(ctx, nodeID)
		if err != nil {
			continue
		}
		for _, c := range coordinators {
			_ = s.emailSvc.SendFeasibilityRequest(ctx, c.Email, c.Name, app.Code, node.Name)
			_ = s.repos.Notifications.Create(ctx, &domain.Notification{
				UserID:        c.ID,
				ApplicationID: &app.ID,
				Event:         domain.EventFeasibilityRequest,
				Title:         "Feasibility review requested",
				Message:       fmt.Sprintf("Application %s requests equipment at %s", app.Code, node.Name),
				DedupKey:      uuid.NewString(),
			})
		}
	}
}

func (s *applicationService) Get(ctx context.Context, userID, applicationID int32) (*domain.Application, []domain.AccessRequest, error) {
	app, err := s.repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.canView(ctx, userID, app); err != nil {
		return nil, nil, err
	}
	requests, err := s.repos.AccessRequests.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	return app, requests, nil
}

// canView grants read access to the applicant, portal staff, coordinators of
// any involved node and assigned evaluators.
func (s *applicationService) canView(ctx context.Context, userID int32, app *domain.Application) error {
	if app.ApplicantID == userID {
		return nil
	}
	for _, role := range []domain.Role{domain.RoleCoordinator, domain.RoleAdmin} {
		ok, err := s.repos.Users.HasActiveRole(ctx, userID, role, nil)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	nodes, err := s.repos.AccessRequests.InvolvedNodeIDs(ctx, app.ID)
	if err != nil {
		return err
	}
	for _, nodeID := range nodes {
		id := nodeID
		ok, err := s.repos.Users.HasActiveRole(ctx, userID, domain.RoleNodeCoordinator, &id)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	evals, err := s.repos.Evaluations.ListByApplication(ctx, app.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	for _, ev := range evals {
		if ev.EvaluatorID == userID {
			return nil
		}
	}
	return domain.ErrPermission
}

func (s *applicationService) ListMine(ctx context.Context, applicantID int32) ([]domain.Application, error) {
	return s.repos.Applications.ListByApplicant(ctx, applicantID)
}

func (s *applicationService) ListByStatus(ctx context.Context, userID int32, status domain.ApplicationStatus) ([]domain.Application, error) {
	ok, err := s.repos.Users.HasActiveRole(ctx, userID, domain.RoleCoordinator, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		if ok, err = s.repos.Users.HasActiveRole(ctx, userID, domain.RoleAdmin, nil); err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, domain.ErrPermission
	}
	return s.repos.Applications.ListByStatus(ctx, status)
}

func (s *applicationService) ownedDraft(ctx context.Context, applicantID, applicationID int32) (*domain.Application, error) {
	app, err := s.repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != applicantID {
		return nil, domain.ErrPermission
	}
	if app.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: application %d is no longer editable", domain.ErrValidation, applicationID)
	}
	return app, nil
}
