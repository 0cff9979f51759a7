package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"

	"github.com/google/uuid"
)

type resolutionService struct {
	repos                *repository.Repos
	tx                   repository.TxManager
	authz                Authorizer
	emailSvc             EmailService
	acceptanceWindowDays int
}

func NewResolutionService(repos *repository.Repos, tx repository.TxManager, authz Authorizer, emailSvc EmailService, acceptanceWindowDays int) ResolutionService {
	return &resolutionService{
		repos:                repos,
		tx:                   tx,
		authz:                authz,
		emailSvc:             emailSvc,
		acceptanceWindowDays: acceptanceWindowDays,
	}
}

// SubmitNodeResolution is write-once per (application, node). Approved hours
// accompany an accept decision; the final resolution lands only when every
// involved node has decided, with reject taking precedence over waitlist and
// waitlist over accept.
func (s *resolutionService) SubmitNodeResolution(ctx context.Context, reviewerID, applicationID, nodeID int32, decision domain.NodeDecision, comments string, approvedHours map[int32]float64) (*domain.Application, error) {
	if err := s.authz.RequireRole(ctx, reviewerID, domain.RoleNodeCoordinator, &nodeID); err != nil {
		return nil, err
	}
	switch decision {
	case domain.NodeDecisionAccept, domain.NodeDecisionWaitlist, domain.NodeDecisionReject:
	default:
		return nil, fmt.Errorf("%w: decision must be accept, waitlist or reject", domain.ErrValidation)
	}

	var (
		app      *domain.Application
		resolved bool
	)
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		app, err = r.Applications.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.Status != domain.StatusEvaluated {
			return fmt.Errorf("%w: application %s is not awaiting resolution", domain.ErrValidation, app.Code)
		}
		if decision == domain.NodeDecisionReject && app.HasCompetitiveFunding {
			return domain.ErrCompetitiveFunding
		}

		// Hours are written for every decision so a later waitlist
		// promotion keeps the node's allocation.
		if err := s.applyApprovedHours(ctx, r, app.ID, nodeID, approvedHours); err != nil {
			return err
		}

		nr, err := r.NodeResolutions.GetByApplicationAndNode(ctx, applicationID, nodeID)
		if err != nil {
			return err
		}
		now := time.Now()
		nr.ReviewerID = &reviewerID
		nr.Decision = decision
		nr.Comments = comments
		nr.DecidedAt = &now
		if err := r.NodeResolutions.RecordDecision(ctx, nr); err != nil {
			return err
		}

		nodes, err := r.AccessRequests.InvolvedNodeIDs(ctx, applicationID)
		if err != nil {
			return err
		}
		resolutions, err := r.NodeResolutions.ListByApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		final, done := domain.AggregateDecisions(resolutions, len(nodes))
		if !done {
			return nil // waiting on other nodes
		}
		resolved = true
		return s.finalize(ctx, r, app, final, now)
	})
	if err != nil {
		return nil, err
	}

	if resolved {
		s.notifyResolved(ctx, app)
	}
	return app, nil
}

// applyApprovedHours writes the granted hours for the node's equipment
// requests. Missing entries default to the requested hours; zero is a valid
// grant, negative is not, and keys naming equipment the node was never asked
// for are rejected.
func (s *resolutionService) applyApprovedHours(ctx context.Context, r *repository.Repos, applicationID, nodeID int32, approvedHours map[int32]float64) error {
	requests, err := r.AccessRequests.ListByApplicationAndNode(ctx, applicationID, nodeID)
	if err != nil {
		return err
	}
	requested := make(map[int32]bool, len(requests))
	for _, ar := range requests {
		requested[ar.EquipmentID] = true
	}
	for equipmentID := range approvedHours {
		if !requested[equipmentID] {
			return fmt.Errorf("%w: equipment %d is not requested at this node", domain.ErrValidation, equipmentID)
		}
	}
	for _, ar := range requests {
		hours, ok := approvedHours[ar.EquipmentID]
		if !ok {
			hours = ar.HoursRequested
		}
		if hours < 0 || hours > ar.HoursRequested {
			return fmt.Errorf("%w: approved hours for equipment %d must be between 0 and %.1f", domain.ErrValidation, ar.EquipmentID, ar.HoursRequested)
		}
		if err := r.AccessRequests.SetApprovedHours(ctx, applicationID, ar.EquipmentID, hours); err != nil {
			return err
		}
	}
	return nil
}

// finalize records the aggregate outcome. Per-node comments are folded into
// the application's resolution comments; anything already in the field (the
// coordinator's note on a waitlist settlement) goes last.
func (s *resolutionService) finalize(ctx context.Context, r *repository.Repos, app *domain.Application, final domain.Resolution, now time.Time) error {
	app.Resolution = final
	app.ResolutionDate = &now

	resolutions, err := r.NodeResolutions.ListByApplication(ctx, app.ID)
	if err != nil {
		return err
	}
	var parts []string
	for _, nr := range resolutions {
		if nr.Comments == "" {
			continue
		}
		node, err := r.Nodes.GetByID(ctx, nr.NodeID)
		if err != nil {
			return err
		}
		parts = append(parts, fmt.Sprintf("[%s]: %s", node.Name, nr.Comments))
	}
	if app.ResolutionComments != "" {
		parts = append(parts, app.ResolutionComments)
	}
	app.ResolutionComments = strings.Join(parts, "\n")

	var next domain.ApplicationStatus
	switch final {
	case domain.ResolutionAccepted:
		next = domain.StatusAccepted
		deadline := now.AddDate(0, 0, s.acceptanceWindowDays)
		app.AcceptanceDeadline = &deadline
	case domain.ResolutionPending:
		next = domain.StatusPending
	case domain.ResolutionRejected:
		next = domain.StatusRejected
	}
	if err := app.TransitionTo(next); err != nil {
		return err
	}
	return r.Applications.Update(ctx, app)
}

// notifyResolved tells the applicant the outcome with the per-node
// breakdown.
func (s *resolutionService) notifyResolved(ctx context.Context, app *domain.Application) {
	var breakdown []string
	resolutions, err := s.repos.NodeResolutions.ListByApplication(ctx, app.ID)
	if err == nil {
		for _, nr := range resolutions {
			node, err := s.repos.Nodes.GetByID(ctx, nr.NodeID)
			if err != nil {
				continue
			}
			line := fmt.Sprintf("%s: %s", node.Name, nr.Decision)
			if nr.Comments != "" {
				line += " (" + nr.Comments + ")"
			}
			breakdown = append(breakdown, line)
		}
	}

	var (
		event   domain.EventKind
		title   string
		message string
	)
	switch app.Resolution {
	case domain.ResolutionAccepted:
		event = domain.EventResolutionAccepted
		title = "Application accepted"
		message = fmt.Sprintf("Application %s was accepted; confirm within %d days", app.Code, s.acceptanceWindowDays)
		_ = s.emailSvc.SendResolutionAccepted(ctx, app.ApplicantEmail, app.ApplicantName, app.Code, s.acceptanceWindowDays, breakdown)
	case domain.ResolutionPending:
		event = domain.EventResolutionPending
		title = "Application waitlisted"
		message = fmt.Sprintf("Application %s is on the waiting list", app.Code)
		_ = s.emailSvc.SendResolutionPending(ctx, app.ApplicantEmail, app.ApplicantName, app.Code, breakdown)
	case domain.ResolutionRejected:
		event = domain.EventResolutionRejected
		title = "Application rejected"
		message = fmt.Sprintf("Application %s was rejected", app.Code)
		_ = s.emailSvc.SendResolutionRejected(ctx, app.ApplicantEmail, app.ApplicantName, app.Code, breakdown)
	default:
		return
	}

	_ = s.repos.Notifications.Create(ctx, &domain.Notification{
		UserID:        app.ApplicantID,
		ApplicationID: &app.ID,
		Event:         event,
		Title:         title,
		Message:       message,
		DedupKey:      uuid.NewString(),
	})
}

// ResolvePending settles a waitlisted application when capacity frees up or
// the call closes.
func (s *resolutionService) ResolvePending(ctx context.Context, coordinatorID, applicationID int32, accept bool, comments string) (*domain.Application, error) {
	if err := s.authz.RequireRole(ctx, coordinatorID, domain.RoleCoordinator, nil); err != nil {
		return nil, err
	}

	var app *domain.Application
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		app, err = r.Applications.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.Status != domain.StatusPending {
			return fmt.Errorf("%w: application %s is not on the waiting list", domain.ErrValidation, app.Code)
		}
		if !accept && app.HasCompetitiveFunding {
			return domain.ErrCompetitiveFunding
		}

		now := time.Now()
		// Replace the first-pass aggregation; finalize rebuilds the
		// per-node lines and keeps this note after them.
		app.ResolutionComments = comments
		final := domain.ResolutionRejected
		if accept {
			final = domain.ResolutionAccepted
		}
		return s.finalize(ctx, r, app, final, now)
	})
	if err != nil {
		return nil, err
	}

	s.notifyResolved(ctx, app)
	return app, nil
}

func (s *resolutionService) ListForApplication(ctx context.Context, userID, applicationID int32) ([]domain.NodeResolution, error) {
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
	return s.repos.NodeResolutions.ListByApplication(ctx, applicationID)
}
