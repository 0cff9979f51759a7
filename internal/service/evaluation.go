package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"

	"github.com/google/uuid"
)

type evaluationService struct {
	repos        *repository.Repos
	tx           repository.TxManager
	authz        Authorizer
	emailSvc     EmailService
	perAppTarget int
}

// NewEvaluationService builds the evaluation workflow. perAppTarget is how
// many evaluators each application should get.
func NewEvaluationService(repos *repository.Repos, tx repository.TxManager, authz Authorizer, emailSvc EmailService, perAppTarget int) EvaluationService {
	if perAppTarget < 1 {
		perAppTarget = 1
	}
	return &evaluationService{repos: repos, tx: tx, authz: authz, emailSvc: emailSvc, perAppTarget: perAppTarget}
}

// AssignEvaluators draws evaluators at random from the pool, preferring the
// application's specialization area and excluding anyone from the
// applicant's entity.
func (s *evaluationService) AssignEvaluators(ctx context.Context, coordinatorID, applicationID int32) ([]domain.Evaluation, error) {
	if err := s.authz.RequireRole(ctx, coordinatorID, domain.RoleCoordinator, nil); err != nil {
		return nil, err
	}

	var (
		app         *domain.Application
		evaluations []domain.Evaluation
		chosen      []domain.User
	)
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		app, err = r.Applications.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.Status != domain.StatusPendingEvaluation {
			return &domain.InvalidTransitionError{From: app.Status, To: domain.StatusUnderEvaluation}
		}

		chosen, err = s.pickEvaluators(ctx, r, app)
		if err != nil {
			return err
		}

		for _, ev := range chosen {
			row := domain.Evaluation{ApplicationID: app.ID, EvaluatorID: ev.ID}
			if err := r.Evaluations.Create(ctx, &row); err != nil {
				return err
			}
			evaluations = append(evaluations, row)
		}

		if err := app.TransitionTo(domain.StatusUnderEvaluation); err != nil {
			return err
		}
		return r.Applications.Update(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range chosen {
		_ = s.emailSvc.SendEvaluationAssigned(ctx, ev.Email, ev.Name, app.Code)
		_ = s.repos.Notifications.Create(ctx, &domain.Notification{
			UserID:        ev.ID,
			ApplicationID: &app.ID,
			Event:         domain.EventEvaluationAssigned,
			Title:         "Evaluation assigned",
			Message:       fmt.Sprintf("You were assigned to evaluate application %s", app.Code),
			DedupKey:      uuid.NewString(),
		})
	}
	return evaluations, nil
}

func (s *evaluationService) pickEvaluators(ctx context.Context, r *repository.Repos, app *domain.Application) ([]domain.User, error) {
	users, roles, err := r.Users.ListEvaluators(ctx)
	if err != nil {
		return nil, err
	}

	areaOf := make(map[int32]string, len(roles))
	for _, role := range roles {
		areaOf[role.UserID] = role.Area
	}

	var inArea, outOfArea []domain.User
	for _, u := range users {
		if u.ID == app.ApplicantID {
			continue
		}
		// Conflict of interest: same entity as the applicant.
		if u.Entity != "" && strings.EqualFold(u.Entity, app.ApplicantEntity) {
			continue
		}
		if area := areaOf[u.ID]; area != "" && strings.EqualFold(area, app.SpecializationArea) {
			inArea = append(inArea, u)
		} else {
			outOfArea = append(outOfArea, u)
		}
	}

	rand.Shuffle(len(inArea), func(i, j int) { inArea[i], inArea[j] = inArea[j], inArea[i] })
	rand.Shuffle(len(outOfArea), func(i, j int) { outOfArea[i], outOfArea[j] = outOfArea[j], outOfArea[i] })

	pool := append(inArea, outOfArea...)
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no eligible evaluators for application %s", domain.ErrValidation, app.Code)
	}
	if len(pool) > s.perAppTarget {
		pool = pool[:s.perAppTarget]
	}
	return pool, nil
}

// SubmitEvaluation stores one completed scorecard. When the last assigned
// evaluator finishes, the final score is set to the mean of the totals, the
// application becomes evaluated and a pending resolution opens per node.
func (s *evaluationService) SubmitEvaluation(ctx context.Context, evaluatorID, evaluationID int32, scores domain.ScoreSet, recommendation domain.Recommendation, comments string) (*domain.Evaluation, error) {
	if !scores.InRange() {
		return nil, fmt.Errorf("%w: each score must be between %d and %d", domain.ErrValidation, domain.ScoreMin, domain.ScoreMax)
	}
	if recommendation != domain.RecommendationApproved && recommendation != domain.RecommendationDenied {
		return nil, fmt.Errorf("%w: recommendation must be approved or denied", domain.ErrValidation)
	}

	var (
		ev         *domain.Evaluation
		app        *domain.Application
		allDone    bool
		finalScore float64
	)
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		var err error
		ev, err = r.Evaluations.GetByID(ctx, evaluationID)
		if err != nil {
			return err
		}
		if ev.EvaluatorID != evaluatorID {
			return domain.ErrPermission
		}

		app, err = r.Applications.GetByID(ctx, ev.ApplicationID)
		if err != nil {
			return err
		}
		if app.Status != domain.StatusUnderEvaluation {
			return fmt.Errorf("%w: application %s is not under evaluation", domain.ErrValidation, app.Code)
		}

		now := time.Now()
		ev.Scores = scores
		ev.TotalScore = scores.Sum()
		ev.Recommendation = recommendation
		ev.Comments = comments
		ev.CompletedAt = &now
		if err := r.Evaluations.Complete(ctx, ev); err != nil {
			return err
		}

		all, err := r.Evaluations.ListByApplication(ctx, ev.ApplicationID)
		if err != nil {
			return err
		}
		var sum int32
		for _, e := range all {
			if !e.IsComplete() {
				return nil // still waiting on other evaluators
			}
			sum += e.TotalScore
		}
		allDone = true
		finalScore = float64(sum) / float64(len(all))
		app.FinalScore = &finalScore

		if err := app.TransitionTo(domain.StatusEvaluated); err != nil {
			return err
		}
		if err := r.Applications.Update(ctx, app); err != nil {
			return err
		}

		nodes, err := r.AccessRequests.InvolvedNodeIDs(ctx, app.ID)
		if err != nil {
			return err
		}
		for _, nodeID := range nodes {
			nr := &domain.NodeResolution{ApplicationID: app.ID, NodeID: nodeID}
			if err := r.NodeResolutions.Create(ctx, nr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if allDone {
		s.notifyEvaluated(ctx, app, finalScore)
	}
	return ev, nil
}

func (s *evaluationService) notifyEvaluated(ctx context.Context, app *domain.Application, finalScore float64) {
	coordinators, err := s.repos.Users.ListCoordinators(ctx)
	if err == nil {
		for _, c := range coordinators {
			_ = s.emailSvc.SendEvaluationComplete(ctx, c.Email, c.Name, app.Code, finalScore)
			_ = s.repos.Notifications.Create(ctx, &domain.Notification{
				UserID:        c.ID,
				ApplicationID: &app.ID,
				Event:         domain.EventEvaluationComplete,
				Title:         "Evaluation complete",
				Message:       fmt.Sprintf("Application %s scored %.1f and awaits node resolutions", app.Code, finalScore),
				DedupKey:      uuid.NewString(),
			})
		}
	}

	nodes, err := s.repos.AccessRequests.InvolvedNodeIDs(ctx, app.ID)
	if err != nil {
		return
	}
	for _, nodeID := range nodes {
		nodeCoordinators, err := s.repos.Nodes.ListCoordinators(ctx, nodeID)
		if err != nil {
			continue
		}
		for _, c := range nodeCoordinators {
			_ = s.emailSvc.SendEvaluationComplete(ctx, c.Email, c.Name, app.Code, finalScore)
			_ = s.repos.Notifications.Create(ctx, &domain.Notification{
				UserID:        c.ID,
				ApplicationID: &app.ID,
				Event:         domain.EventEvaluationComplete,
				Title:         "Resolution requested",
				Message:       fmt.Sprintf("Application %s was evaluated (%.1f); your node's resolution is pending", app.Code, finalScore),
				DedupKey:      uuid.NewString(),
			})
		}
	}
}

func (s *evaluationService) ListPending(ctx context.Context, evaluatorID int32) ([]domain.Evaluation, error) {
	return s.repos.Evaluations.ListPendingByEvaluator(ctx, evaluatorID)
}

func (s *evaluationService) ListForApplication(ctx context.Context, userID, applicationID int32) ([]domain.Evaluation, error) {
	if err := s.authz.RequireRole(ctx, userID, domain.RoleCoordinator, nil); err != nil {
		return nil, err
	}
	return s.repos.Evaluations.ListByApplication(ctx, applicationID)
}
