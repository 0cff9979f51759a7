package service

import (
	"context"
	"fmt"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"

	"github.com/google/uuid"
)

type feasibilityService struct {
	repos    *repository.Repos
	tx       repository.TxManager
	authz    Authorizer
	emailSvc EmailService
}

func NewFeasibilityService(repos *repository.Repos, tx repository.TxManager, authz Authorizer, emailSvc EmailService) FeasibilityService {
	return &feasibilityService{repos: repos, tx: tx, authz: authz, emailSvc: emailSvc}
}

func (s *feasibilityService) ListForApplication(ctx context.Context, userID, applicationID int32) ([]domain.FeasibilityReview, error) {
	if err := s.authz.RequireRole(ctx, userID, domain.RoleCoordinator, nil); err != nil {
		nodes, nerr := s.repos.AccessRequests.InvolvedNodeIDs(ctx, applicationID)
		if nerr != nil {
			return nil, nerr
		}
		allowed := false
		for _, nodeID := range nodes {
			id := nodeID
			if s.authz.RequireRole(ctx, userID, domain.RoleNodeCoordinator, &id) == nil {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, err
		}
	}
	return s.repos.Feasibility.ListByApplication(ctx, applicationID)
}

// SubmitDecision is write-once per (application, node). A single infeasible
// verdict rejects the application immediately; the last feasible verdict
// moves it to pending evaluation. Decision and status change commit together.
func (s *feasibilityService) SubmitDecision(ctx context.Context, reviewerID, applicationID, nodeID int32, isFeasible bool, comments string) (*domain.Application, error) {
	if err := s.authz.RequireRole(ctx, reviewerID, domain.RoleNodeCoordinator, &nodeID); err != nil {
		return nil, err
	}

	var (
		app      *domain.Application
		outcome  domain.EventKind
		rejected []string
	)
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		app, err = r.Applications.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.Status != domain.StatusUnderFeasibilityReview {
			return fmt.Errorf("%w: application %s is not under feasibility review", domain.ErrValidation, app.Code)
		}

		fr, err := r.Feasibility.GetByApplicationAndNode(ctx, applicationID, nodeID)
		if err != nil {
			return err
		}
		now := time.Now()
		fr.IsFeasible = &isFeasible
		fr.ReviewerID = &reviewerID
		fr.Comments = comments
		fr.ReviewedAt = &now
		if err := r.Feasibility.RecordDecision(ctx, fr); err != nil {
			return err
		}

		if !isFeasible {
			if err := app.TransitionTo(domain.StatusRejectedFeasibility); err != nil {
				return err
			}
			outcome = domain.EventFeasibilityRejected
			rejected = []string{comments}
			return r.Applications.Update(ctx, app)
		}

		reviews, err := r.Feasibility.ListByApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		for _, rv := range reviews {
			if !rv.IsDecided() {
				return nil // still waiting on other nodes
			}
		}
		if err := app.TransitionTo(domain.StatusPendingEvaluation); err != nil {
			return err
		}
		outcome = domain.EventFeasibilityApproved
		return r.Applications.Update(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	switch outcome {
	case domain.EventFeasibilityRejected:
		s.notifyRejected(ctx, app, rejected)
	case domain.EventFeasibilityApproved:
		s.notifyApproved(ctx, app)
	}
	return app, nil
}

func (s *feasibilityService) notifyRejected(ctx context.Context, app *domain.Application, nodeComments []string) {
	_ = s.emailSvc.SendFeasibilityRejected(ctx, app.ApplicantEmail, app.ApplicantName, app.Code, nodeComments)
	_ = s.repos.Notifications.Create(ctx, &domain.Notification{
		UserID:        app.ApplicantID,
		ApplicationID: &app.ID,
		Event:         domain.EventFeasibilityRejected,
		Title:         "Application not feasible",
		Message:       fmt.Sprintf("Application %s was rejected at the feasibility stage", app.Code),
		DedupKey:      uuid.NewString(),
	})
}

func (s *feasibilityService) notifyApproved(ctx context.Context, app *domain.Application) {
	_ = s.emailSvc.SendFeasibilityApproved(ctx, app.ApplicantEmail, app.ApplicantName, app.Code)
	_ = s.repos.Notifications.Create(ctx, &domain.Notification{
		UserID:        app.ApplicantID,
		ApplicationID: &app.ID,
		Event:         domain.EventFeasibilityApproved,
		Title:         "Application feasible",
		Message:       fmt.Sprintf("All nodes confirmed feasibility for application %s", app.Code),
		DedupKey:      uuid.NewString(),
	})
}
