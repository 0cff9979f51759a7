package postgres

import (
	"context"
	"database/sql"
	"errors"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type nodeRepository struct {
	db DBTX
}

func NewNodeRepository(db DBTX) repository.NodeRepository {
	return &nodeRepository{db: db}
}

const nodeColumns = `id, name, code, location, contact_email, acknowledgment_text, is_active, created_on, updated_on`

func scanNode(row interface{ Scan(...interface{}) error }) (*domain.Node, error) {
	n := &domain.Node{}
	err := row.Scan(&n.ID, &n.Name, &n.Code, &n.Location, &n.ContactEmail,
		&n.AcknowledgmentText, &n.IsActive, &n.CreatedOn, &n.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *nodeRepository) GetByID(ctx context.Context, id int32) (*domain.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE id = $1`
	return scanNode(r.db.QueryRowContext(ctx, query, id))
}

func (r *nodeRepository) List(ctx context.Context) ([]domain.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes ORDER BY code`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *n)
	}
	return nodes, rows.Err()
}

func (r *nodeRepository) ListCoordinators(ctx context.Context, nodeID int32) ([]domain.User, error) {
	query := `SELECT u.id, u.name, u.email, u.phone, u.entity, u.orcid, u.password_hash, u.is_active, u.created_on, u.updated_on
	          FROM users u
	          JOIN user_roles ur ON ur.user_id = u.id
	          WHERE ur.role = 'node_coordinator' AND ur.node_id = $1 AND ur.is_active AND u.is_active
	          ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query, nodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Entity, &u.ORCID,
			&u.PasswordHash, &u.IsActive, &u.CreatedOn, &u.UpdatedOn); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type equipmentRepository struct {
	db DBTX
}

func NewEquipmentRepository(db DBTX) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

const equipmentColumns = `id, node_id, name, category, description, is_active, created_on, updated_on`

func scanEquipment(row interface{ Scan(...interface{}) error }) (*domain.Equipment, error) {
	e := &domain.Equipment{}
	err := row.Scan(&e.ID, &e.NodeID, &e.Name, &e.Category, &e.Description,
		&e.IsActive, &e.CreatedOn, &e.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *equipmentRepository) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	return scanEquipment(r.db.QueryRowContext(ctx, query, id))
}

func (r *equipmentRepository) queryEquipment(ctx context.Context, query string, args ...interface{}) ([]domain.Equipment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

func (r *equipmentRepository) ListByNode(ctx context.Context, nodeID int32) ([]domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE node_id = $1 ORDER BY name`
	return r.queryEquipment(ctx, query, nodeID)
}

func (r *equipmentRepository) ListActive(ctx context.Context) ([]domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE is_active ORDER BY node_id, name`
	return r.queryEquipment(ctx, query)
}
