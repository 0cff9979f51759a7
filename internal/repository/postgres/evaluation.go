package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type evaluationRepository struct {
	db DBTX
}

func NewEvaluationRepository(db DBTX) repository.EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, ev *domain.Evaluation) error {
	query := `INSERT INTO evaluations (application_id, evaluator_id, assigned_at, updated_on)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	now := time.Now()
	ev.AssignedAt = now
	return r.db.QueryRowContext(ctx, query,
		ev.ApplicationID, ev.EvaluatorID, now, now).Scan(&ev.ID)
}

const evaluationColumns = `id, application_id, evaluator_id,
	score_quality_originality, score_methodology_design, score_expected_contributions,
	score_knowledge_advancement, score_social_economic_impact, score_exploitation_dissemination,
	recommendation, total_score, comments, assigned_at, completed_at, updated_on`

func scanEvaluation(row interface{ Scan(...interface{}) error }) (*domain.Evaluation, error) {
	ev := &domain.Evaluation{}
	err := row.Scan(&ev.ID, &ev.ApplicationID, &ev.EvaluatorID,
		&ev.Scores.QualityOriginality, &ev.Scores.MethodologyDesign, &ev.Scores.ExpectedContributions,
		&ev.Scores.KnowledgeAdvancement, &ev.Scores.SocialEconomicImpact, &ev.Scores.ExploitationDissemination,
		&ev.Recommendation, &ev.TotalScore, &ev.Comments, &ev.AssignedAt, &ev.CompletedAt, &ev.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

func (r *evaluationRepository) GetByID(ctx context.Context, id int32) (*domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = $1`
	return scanEvaluation(r.db.QueryRowContext(ctx, query, id))
}

func (r *evaluationRepository) queryEvaluations(ctx context.Context, query string, args ...interface{}) ([]domain.Evaluation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []domain.Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, *ev)
	}
	return evals, rows.Err()
}

func (r *evaluationRepository) ListByApplication(ctx context.Context, applicationID int32) ([]domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations
	          WHERE application_id = $1 ORDER BY evaluator_id`
	return r.queryEvaluations(ctx, query, applicationID)
}

func (r *evaluationRepository) ListPendingByEvaluator(ctx context.Context, evaluatorID int32) ([]domain.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations
	          WHERE evaluator_id = $1 AND completed_at IS NULL ORDER BY assigned_at`
	return r.queryEvaluations(ctx, query, evaluatorID)
}

// Complete is guarded by `completed_at IS NULL`: evaluations are write-once.
func (r *evaluationRepository) Complete(ctx context.Context, ev *domain.Evaluation) error {
	query := `UPDATE evaluations SET
	            score_quality_originality = $1, score_methodology_design = $2,
	            score_expected_contributions = $3, score_knowledge_advancement = $4,
	            score_social_economic_impact = $5, score_exploitation_dissemination = $6,
	            recommendation = $7, total_score = $8, comments = $9, completed_at = $10, updated_on = $11
	          WHERE id = $12 AND completed_at IS NULL`
	res, err := r.db.ExecContext(ctx, query,
		ev.Scores.QualityOriginality, ev.Scores.MethodologyDesign,
		ev.Scores.ExpectedContributions, ev.Scores.KnowledgeAdvancement,
		ev.Scores.SocialEconomicImpact, ev.Scores.ExploitationDissemination,
		ev.Recommendation, ev.TotalScore, ev.Comments, ev.CompletedAt, time.Now(), ev.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAlreadyCompleted
	}
	return nil
}

func (r *evaluationRepository) Delete(ctx context.Context, id int32) error {
	query := `DELETE FROM evaluations WHERE id = $1 AND completed_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAlreadyCompleted
	}
	return nil
}
