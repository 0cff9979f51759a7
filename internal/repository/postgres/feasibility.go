package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type feasibilityRepository struct {
	db DBTX
}

func NewFeasibilityRepository(db DBTX) repository.FeasibilityRepository {
	return &feasibilityRepository{db: db}
}

func (r *feasibilityRepository) Create(ctx context.Context, fr *domain.FeasibilityReview) error {
	query := `INSERT INTO feasibility_reviews (application_id, node_id, reviewer_id, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		fr.ApplicationID, fr.NodeID, fr.ReviewerID, now, now).Scan(&fr.ID)
}

const feasibilityColumns = `id, application_id, node_id, reviewer_id, is_feasible, comments, reviewed_at, created_on, updated_on`

func scanFeasibility(row interface{ Scan(...interface{}) error }) (*domain.FeasibilityReview, error) {
	fr := &domain.FeasibilityReview{}
	err := row.Scan(&fr.ID, &fr.ApplicationID, &fr.NodeID, &fr.ReviewerID,
		&fr.IsFeasible, &fr.Comments, &fr.ReviewedAt, &fr.CreatedOn, &fr.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return fr, nil
}

func (r *feasibilityRepository) GetByApplicationAndNode(ctx context.Context, applicationID, nodeID int32) (*domain.FeasibilityReview, error) {
	query := `SELECT ` + feasibilityColumns + ` FROM feasibility_reviews
	          WHERE application_id = $1 AND node_id = $2`
	return scanFeasibility(r.db.QueryRowContext(ctx, query, applicationID, nodeID))
}

func (r *feasibilityRepository) ListByApplication(ctx context.Context, applicationID int32) ([]domain.FeasibilityReview, error) {
	query := `SELECT ` + feasibilityColumns + ` FROM feasibility_reviews
	          WHERE application_id = $1 ORDER BY node_id`
	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.FeasibilityReview
	for rows.Next() {
		fr, err := scanFeasibility(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *fr)
	}
	return reviews, rows.Err()
}

// RecordDecision is guarded by `is_feasible IS NULL` so a second submission
// for the same (application, node) fails instead of overwriting. This is the
// serialization point for racing reviewers of the same node.
func (r *feasibilityRepository) RecordDecision(ctx context.Context, fr *domain.FeasibilityReview) error {
	query := `UPDATE feasibility_reviews
	          SET is_feasible = $1, comments = $2, reviewer_id = $3, reviewed_at = $4, updated_on = $5
	          WHERE application_id = $6 AND node_id = $7 AND is_feasible IS NULL`
	res, err := r.db.ExecContext(ctx, query,
		fr.IsFeasible, fr.Comments, fr.ReviewerID, fr.ReviewedAt, time.Now(),
		fr.ApplicationID, fr.NodeID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAlreadyDecided
	}
	return nil
}

func (r *feasibilityRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.FeasibilityReview, error) {
	query := `SELECT fr.id, fr.application_id, fr.node_id, fr.reviewer_id, fr.is_feasible,
	            fr.comments, fr.reviewed_at, fr.created_on, fr.updated_on
	          FROM feasibility_reviews fr
	          JOIN applications a ON a.id = fr.application_id
	          WHERE fr.is_feasible IS NULL
	            AND a.status = 'under_feasibility_review'
	            AND a.submitted_at <= $1
	          ORDER BY a.submitted_at`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.FeasibilityReview
	for rows.Next() {
		fr, err := scanFeasibility(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *fr)
	}
	return reviews, rows.Err()
}
