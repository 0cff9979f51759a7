package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, phone, entity, orcid, password_hash, is_active, created_on, updated_on`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Entity, &u.ORCID,
		&u.PasswordHash, &u.IsActive, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (name, email, phone, entity, orcid, password_hash, is_active, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Phone, user.Entity, user.ORCID,
		user.PasswordHash, user.IsActive, now, now).Scan(&user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET name=$1, email=$2, phone=$3, entity=$4, orcid=$5,
	            password_hash=$6, is_active=$7, updated_on=$8 WHERE id=$9`
	_, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.Phone, user.Entity, user.ORCID,
		user.PasswordHash, user.IsActive, time.Now(), user.ID)
	return err
}

func (r *userRepository) HasActiveRole(ctx context.Context, userID int32, role domain.Role, nodeID *int32) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM user_roles
	            WHERE user_id = $1 AND role = $2 AND is_active
	              AND ($3::int IS NULL OR node_id = $3))`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, role, nodeID).Scan(&exists)
	return exists, err
}

func (r *userRepository) ListRoles(ctx context.Context, userID int32) ([]domain.UserRole, error) {
	query := `SELECT id, user_id, role, node_id, area, is_active, created_on
	          FROM user_roles WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.UserRole
	for rows.Next() {
		var ur domain.UserRole
		if err := rows.Scan(&ur.ID, &ur.UserID, &ur.Role, &ur.NodeID, &ur.Area, &ur.IsActive, &ur.CreatedOn); err != nil {
			return nil, err
		}
		roles = append(roles, ur)
	}
	return roles, rows.Err()
}

func (r *userRepository) ListEvaluators(ctx context.Context) ([]domain.User, []domain.UserRole, error) {
	query := `SELECT u.id, u.name, u.email, u.phone, u.entity, u.orcid, u.password_hash, u.is_active, u.created_on, u.updated_on,
	            ur.id, ur.user_id, ur.role, ur.node_id, ur.area, ur.is_active, ur.created_on
	          FROM users u
	          JOIN user_roles ur ON ur.user_id = u.id
	          WHERE ur.role = 'evaluator' AND ur.is_active AND u.is_active
	          ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var users []domain.User
	var roles []domain.UserRole
	for rows.Next() {
		var u domain.User
		var ur domain.UserRole
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Entity, &u.ORCID,
			&u.PasswordHash, &u.IsActive, &u.CreatedOn, &u.UpdatedOn,
			&ur.ID, &ur.UserID, &ur.Role, &ur.NodeID, &ur.Area, &ur.IsActive, &ur.CreatedOn); err != nil {
			return nil, nil, err
		}
		users = append(users, u)
		roles = append(roles, ur)
	}
	return users, roles, rows.Err()
}

func (r *userRepository) ListCoordinators(ctx context.Context) ([]domain.User, error) {
	query := `SELECT DISTINCT u.id, u.name, u.email, u.phone, u.entity, u.orcid, u.password_hash, u.is_active, u.created_on, u.updated_on
	          FROM users u
	          JOIN user_roles ur ON ur.user_id = u.id
	          WHERE ur.role = 'coordinator' AND ur.is_active AND u.is_active
	          ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query)
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
