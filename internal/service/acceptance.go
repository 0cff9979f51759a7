package service

import (
	"context"
	"fmt"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"

	"github.com/google/uuid"
)

type acceptanceService struct {
	repos            *repository.Repos
	tx               repository.TxManager
	authz            Authorizer
	emailSvc         EmailService
	reminderLeadDays int
	now              func() time.Time
}

// NewAcceptanceService builds the acceptance-window workflow.
// reminderLeadDays is how many days before the deadline the reminder goes
// out.
func NewAcceptanceService(repos *repository.Repos, tx repository.TxManager, authz Authorizer, emailSvc EmailService, reminderLeadDays int) AcceptanceService {
	return &acceptanceService{
		repos:            repos,
		tx:               tx,
		authz:            authz,
		emailSvc:         emailSvc,
		reminderLeadDays: reminderLeadDays,
		now:              time.Now,
	}
}

// Respond records the applicant's one-shot confirm or decline. Accepting
// hands the application off to the node coordinators; declining releases
// the approved hours.
func (s *acceptanceService) Respond(ctx context.Context, applicantID, applicationID int32, accept bool) (*domain.Application, error) {
	var app *domain.Application
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		app, err = r.Applications.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.ApplicantID != applicantID {
			return domain.ErrPermission
		}
		if app.Status != domain.StatusAccepted {
			return fmt.Errorf("%w: application %s is not awaiting confirmation", domain.ErrValidation, app.Code)
		}
		if app.AcceptedByApplicant != nil {
			return domain.ErrAlreadyResponded
		}

		now := s.now()
		if app.AcceptanceDeadline != nil && now.After(*app.AcceptanceDeadline) {
			return domain.ErrDeadlinePassed
		}

		response := accept
		app.AcceptedByApplicant = &response
		app.AcceptedAt = &now
		if accept {
			app.HandoffSentAt = &now
			return r.Applications.Update(ctx, app)
		}

		if err := app.TransitionTo(domain.StatusDeclinedByApplicant); err != nil {
			return err
		}
		if err := r.AccessRequests.ReleaseApprovedHours(ctx, applicationID); err != nil {
			return err
		}
		return r.Applications.Update(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	if accept {
		s.notifyHandoff(ctx, app)
	} else {
		s.notifyDeclined(ctx, app)
	}
	return app, nil
}

// notifyHandoff tells every involved node coordinator to schedule the
// granted access.
func (s *acceptanceService) notifyHandoff(ctx context.Context, app *domain.Application) {
	nodes, err := s.repos.AccessRequests.InvolvedNodeIDs(ctx, app.ID)
	if err != nil {
		return
	}
	for _, nodeID := range nodes {
		coordinators, err := s.repos.Nodes.ListCoordinators(ctx, nodeID)
		if err != nil {
			continue
		}
		for _, c := range coordinators {
			_ = s.emailSvc.SendHandoffConfirmed(ctx, c.Email, c.Name, app.Code, app.ApplicantName, app.ApplicantEmail)
			_ = s.repos.Notifications.Create(ctx, &domain.Notification{
				UserID:        c.ID,
				ApplicationID: &app.ID,
				Event:         domain.EventHandoffConfirmed,
				Title:         "Access confirmed",
				Message:       fmt.Sprintf("%s confirmed application %s; schedule the granted access", app.ApplicantName, app.Code),
				DedupKey:      uuid.NewString(),
			})
		}
	}
}

func (s *acceptanceService) notifyDeclined(ctx context.Context, app *domain.Application) {
	nodes, err := s.repos.AccessRequests.InvolvedNodeIDs(ctx, app.ID)
	if err != nil {
		return
	}
	for _, nodeID := range nodes {
		coordinators, err := s.repos.Nodes.ListCoordinators(ctx, nodeID)
		if err != nil {
			continue
		}
		for _, c := range coordinators {
			_ = s.emailSvc.SendApplicantDeclined(ctx, c.Email, c.Name, app.Code, app.ApplicantName)
			_ = s.repos.Notifications.Create(ctx, &domain.Notification{
				UserID:        c.ID,
				ApplicationID: &app.ID,
				Event:         domain.EventApplicantDeclined,
				Title:         "Access declined",
				Message:       fmt.Sprintf("%s declined application %s; the hours were released", app.ApplicantName, app.Code),
				DedupKey:      uuid.NewString(),
			})
		}
	}
}

// MarkAccessComplete closes one equipment request. The last closed request
// completes the application and triggers the publication follow-up.
func (s *acceptanceService) MarkAccessComplete(ctx context.Context, coordinatorID, requestID int32, actualHours float64) (*domain.Application, error) {
	if actualHours < 0 {
		return nil, fmt.Errorf("%w: actual hours cannot be negative", domain.ErrValidation)
	}

	var (
		app       *domain.Application
		completed bool
	)
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		ar, err := r.AccessRequests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if err := s.authz.RequireRole(ctx, coordinatorID, domain.RoleNodeCoordinator, &ar.NodeID); err != nil {
			return err
		}

		app, err = r.Applications.GetByID(ctx, ar.ApplicationID)
		if err != nil {
			return err
		}
		if app.Status != domain.StatusAccepted {
			return fmt.Errorf("%w: application %s is not in execution", domain.ErrValidation, app.Code)
		}
		if app.AcceptedByApplicant == nil || !*app.AcceptedByApplicant {
			return fmt.Errorf("%w: applicant has not confirmed application %s", domain.ErrValidation, app.Code)
		}

		now := s.now()
		if err := r.AccessRequests.MarkCompleted(ctx, requestID, coordinatorID, actualHours, now); err != nil {
			return err
		}

		remaining, err := r.AccessRequests.CountIncomplete(ctx, app.ID)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
		completed = true
		if err := app.TransitionTo(domain.StatusCompleted); err != nil {
			return err
		}
		return r.Applications.Update(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.notifyCompleted(ctx, app)
	}
	return app, nil
}

// notifyCompleted asks the applicant to report publications and carry the
// node acknowledgment text.
func (s *acceptanceService) notifyCompleted(ctx context.Context, app *domain.Application) {
	acknowledgment := ""
	if nodes, err := s.repos.AccessRequests.InvolvedNodeIDs(ctx, app.ID); err == nil && len(nodes) > 0 {
		if node, err := s.repos.Nodes.GetByID(ctx, nodes[0]); err == nil {
			acknowledgment = node.AcknowledgmentText
		}
	}
	_ = s.emailSvc.SendAccessCompleted(ctx, app.ApplicantEmail, app.ApplicantName, app.Code, acknowledgment)
	_ = s.repos.Notifications.Create(ctx, &domain.Notification{
		UserID:        app.ApplicantID,
		ApplicationID: &app.ID,
		Event:         domain.EventPublicationFollowup,
		Title:         "Access completed",
		Message:       fmt.Sprintf("All access for application %s finished; please report resulting publications", app.Code),
		DedupKey:      fmt.Sprintf("publication_followup:%d", app.ID),
	})
}

// SweepExpirations expires every accepted application whose deadline passed
// without a response and releases its hours. Each application expires in its
// own transaction so one failure does not hold up the rest.
func (s *acceptanceService) SweepExpirations(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.repos.Applications.ListExpirable(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		app := stale[i]
		err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
			fresh, err := r.Applications.GetByID(ctx, app.ID)
			if err != nil {
				return err
			}
			// Re-check inside the transaction; the applicant may have
			// responded between the listing and now.
			if fresh.Status != domain.StatusAccepted || fresh.AcceptedByApplicant != nil {
				return nil
			}
			if err := fresh.TransitionTo(domain.StatusExpired); err != nil {
				return err
			}
			declined := false
			fresh.AcceptedByApplicant = &declined
			if err := r.AccessRequests.ReleaseApprovedHours(ctx, fresh.ID); err != nil {
				return err
			}
			return r.Applications.Update(ctx, fresh)
		})
		if err != nil {
			return expired, err
		}
		expired++
		s.notifyExpired(ctx, &app)
	}
	return expired, nil
}

// notifyExpired tells the applicant and every involved node coordinator that
// the offer lapsed. Deterministic dedup keys keep sweep reruns quiet.
func (s *acceptanceService) notifyExpired(ctx context.Context, app *domain.Application) {
	_ = s.emailSvc.SendAcceptanceExpired(ctx, app.ApplicantEmail, app.ApplicantName, app.Code)
	_ = s.repos.Notifications.Create(ctx, &domain.Notification{
		UserID:        app.ApplicantID,
		ApplicationID: &app.ID,
		Event:         domain.EventAcceptanceExpired,
		Title:         "Acceptance expired",
		Message:       fmt.Sprintf("The confirmation window for application %s elapsed; the offer lapsed", app.Code),
		DedupKey:      fmt.Sprintf("acceptance_expired:%d", app.ID),
	})

	nodes, err := s.repos.AccessRequests.InvolvedNodeIDs(ctx, app.ID)
	if err != nil {
		return
	}
	for _, nodeID := range nodes {
		coordinators, err := s.repos.Nodes.ListCoordinators(ctx, nodeID)
		if err != nil {
			continue
		}
		for _, c := range coordinators {
			_ = s.emailSvc.SendAcceptanceExpired(ctx, c.Email, c.Name, app.Code)
			_ = s.repos.Notifications.Create(ctx, &domain.Notification{
				UserID:        c.ID,
				ApplicationID: &app.ID,
				Event:         domain.EventAcceptanceExpired,
				Title:         "Acceptance expired",
				Message:       fmt.Sprintf("Application %s was not confirmed in time; the approved hours were released", app.Code),
				DedupKey:      fmt.Sprintf("acceptance_expired:%d:%d", app.ID, c.ID),
			})
		}
	}
}

// SendReminders nudges applicants whose acceptance deadline falls within the
// reminder lead. The dedup key keeps reruns from double-notifying.
func (s *acceptanceService) SendReminders(ctx context.Context) (int, error) {
	now := s.now()
	to := now.AddDate(0, 0, s.reminderLeadDays)
	due, err := s.repos.Applications.ListForAcceptanceReminder(ctx, now, to)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		app := due[i]
		daysLeft := int(app.AcceptanceDeadline.Sub(now).Hours() / 24)
		if daysLeft < 1 {
			daysLeft = 1
		}
		_ = s.emailSvc.SendAcceptanceReminder(ctx, app.ApplicantEmail, app.ApplicantName, app.Code, daysLeft)
		_ = s.repos.Notifications.Create(ctx, &domain.Notification{
			UserID:        app.ApplicantID,
			ApplicationID: &app.ID,
			Event:         domain.EventAcceptanceReminder,
			Title:         "Confirmation deadline approaching",
			Message:       fmt.Sprintf("Application %s must be confirmed within %d day(s)", app.Code, daysLeft),
			DedupKey:      fmt.Sprintf("acceptance_reminder:%d", app.ID),
		})
		sent++
	}
	return sent, nil
}
