package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type nodeResolutionRepository struct {
	db DBTX
}

func NewNodeResolutionRepository(db DBTX) repository.NodeResolutionRepository {
	return &nodeResolutionRepository{db: db}
}

func (r *nodeResolutionRepository) Create(ctx context.Context, nr *domain.NodeResolution) error {
	query := `INSERT INTO node_resolutions (application_id, node_id, decision, created_on, updated_on)
	          VALUES ($1, $2, '', $3, $4) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		nr.ApplicationID, nr.NodeID, now, now).Scan(&nr.ID)
}

const nodeResolutionColumns = `id, application_id, node_id, reviewer_id, decision, comments, decided_at, created_on, updated_on`

func scanNodeResolution(row interface{ Scan(...interface{}) error }) (*domain.NodeResolution, error) {
	nr := &domain.NodeResolution{}
	err := row.Scan(&nr.ID, &nr.ApplicationID, &nr.NodeID, &nr.ReviewerID,
		&nr.Decision, &nr.Comments, &nr.DecidedAt, &nr.CreatedOn, &nr.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return nr, nil
}

func (r *nodeResolutionRepository) GetByApplicationAndNode(ctx context.Context, applicationID, nodeID int32) (*domain.NodeResolution, error) {
	query := `SELECT ` + nodeResolutionColumns + ` FROM node_resolutions
	          WHERE application_id = $1 AND node_id = $2`
	return scanNodeResolution(r.db.QueryRowContext(ctx, query, applicationID, nodeID))
}

func (r *nodeResolutionRepository) ListByApplication(ctx context.Context, applicationID int32) ([]domain.NodeResolution, error) {
	query := `SELECT ` + nodeResolutionColumns + ` FROM node_resolutions
	          WHERE application_id = $1 ORDER BY node_id`
	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resolutions []domain.NodeResolution
	for rows.Next() {
		nr, err := scanNodeResolution(rows)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, *nr)
	}
	return resolutions, rows.Err()
}

// RecordDecision is guarded by `decision = ''` so each node decides exactly
// once; a racing second writer gets ErrAlreadyDecided.
func (r *nodeResolutionRepository) RecordDecision(ctx context.Context, nr *domain.NodeResolution) error {
	query := `UPDATE node_resolutions
	          SET decision = $1, comments = $2, reviewer_id = $3, decided_at = $4, updated_on = $5
	          WHERE application_id = $6 AND node_id = $7 AND decision = ''`
	res, err := r.db.ExecContext(ctx, query,
		nr.Decision, nr.Comments, nr.ReviewerID, nr.DecidedAt, time.Now(),
		nr.ApplicationID, nr.NodeID)
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
