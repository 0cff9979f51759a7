package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type accessRequestRepository struct {
	db DBTX
}

func NewAccessRequestRepository(db DBTX) repository.AccessRequestRepository {
	return &accessRequestRepository{db: db}
}

func (r *accessRequestRepository) Create(ctx context.Context, ar *domain.AccessRequest) error {
	query := `INSERT INTO access_requests (application_id, equipment_id, hours_requested, created_on)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		ar.ApplicationID, ar.EquipmentID, ar.HoursRequested, time.Now()).Scan(&ar.ID)
}

func (r *accessRequestRepository) Delete(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM access_requests WHERE id = $1`, id)
	return err
}

const accessRequestSelect = `SELECT ar.id, ar.application_id, ar.equipment_id, e.node_id, e.name,
	    ar.hours_requested, ar.hours_approved, ar.completed_at, ar.completed_by, ar.actual_hours, ar.created_on
	FROM access_requests ar
	JOIN equipment e ON e.id = ar.equipment_id`

func (r *accessRequestRepository) GetByID(ctx context.Context, id int32) (*domain.AccessRequest, error) {
	query := accessRequestSelect + ` WHERE ar.id = $1`
	var ar domain.AccessRequest
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ar.ID, &ar.ApplicationID, &ar.EquipmentID, &ar.NodeID, &ar.EquipmentName,
		&ar.HoursRequested, &ar.HoursApproved, &ar.CompletedAt, &ar.CompletedBy, &ar.ActualHours, &ar.CreatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &ar, nil
}

func (r *accessRequestRepository) queryRequests(ctx context.Context, query string, args ...interface{}) ([]domain.AccessRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.AccessRequest
	for rows.Next() {
		var ar domain.AccessRequest
		if err := rows.Scan(&ar.ID, &ar.ApplicationID, &ar.EquipmentID, &ar.NodeID, &ar.EquipmentName,
			&ar.HoursRequested, &ar.HoursApproved, &ar.CompletedAt, &ar.CompletedBy, &ar.ActualHours, &ar.CreatedOn); err != nil {
			return nil, err
		}
		requests = append(requests, ar)
	}
	return requests, rows.Err()
}

func (r *accessRequestRepository) ListByApplication(ctx context.Context, applicationID int32) ([]domain.AccessRequest, error) {
	query := accessRequestSelect + ` WHERE ar.application_id = $1 ORDER BY e.node_id, ar.equipment_id`
	return r.queryRequests(ctx, query, applicationID)
}

func (r *accessRequestRepository) ListByApplicationAndNode(ctx context.Context, applicationID, nodeID int32) ([]domain.AccessRequest, error) {
	query := accessRequestSelect + ` WHERE ar.application_id = $1 AND e.node_id = $2 ORDER BY ar.equipment_id`
	return r.queryRequests(ctx, query, applicationID, nodeID)
}

func (r *accessRequestRepository) InvolvedNodeIDs(ctx context.Context, applicationID int32) ([]int32, error) {
	query := `SELECT DISTINCT e.node_id
	          FROM access_requests ar
	          JOIN equipment e ON e.id = ar.equipment_id
	          WHERE ar.application_id = $1
	          ORDER BY e.node_id`
	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodeIDs []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		nodeIDs = append(nodeIDs, id)
	}
	return nodeIDs, rows.Err()
}

func (r *accessRequestRepository) SetApprovedHours(ctx context.Context, applicationID, equipmentID int32, hours float64) error {
	query := `UPDATE access_requests SET hours_approved = $1
	          WHERE application_id = $2 AND equipment_id = $3`
	res, err := r.db.ExecContext(ctx, query, hours, applicationID, equipmentID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accessRequestRepository) ReleaseApprovedHours(ctx context.Context, applicationID int32) error {
	query := `UPDATE access_requests SET hours_approved = NULL WHERE application_id = $1`
	_, err := r.db.ExecContext(ctx, query, applicationID)
	return err
}

func (r *accessRequestRepository) MarkCompleted(ctx context.Context, id, completedBy int32, actualHours float64, at time.Time) error {
	query := `UPDATE access_requests SET completed_at = $1, completed_by = $2, actual_hours = $3
	          WHERE id = $4 AND completed_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, at, completedBy, actualHours, id)
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

func (r *accessRequestRepository) CountIncomplete(ctx context.Context, applicationID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM access_requests WHERE application_id = $1 AND completed_at IS NULL`
	err := r.db.QueryRowContext(ctx, query, applicationID).Scan(&count)
	return count, err
}
