package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type callRepository struct {
	db DBTX
}

func NewCallRepository(db DBTX) repository.CallRepository {
	return &callRepository{db: db}
}

const callColumns = `id, code, title, status, submission_start, submission_end, evaluation_deadline,
	execution_start, execution_end, description, published_at, created_on, updated_on`

func scanCall(row interface{ Scan(...interface{}) error }) (*domain.Call, error) {
	c := &domain.Call{}
	err := row.Scan(&c.ID, &c.Code, &c.Title, &c.Status,
		&c.SubmissionStart, &c.SubmissionEnd, &c.EvaluationDeadline,
		&c.ExecutionStart, &c.ExecutionEnd, &c.Description,
		&c.PublishedAt, &c.CreatedOn, &c.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *callRepository) GetByID(ctx context.Context, id int32) (*domain.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE id = $1`
	return scanCall(r.db.QueryRowContext(ctx, query, id))
}

func (r *callRepository) GetByCode(ctx context.Context, code string) (*domain.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE code = $1`
	return scanCall(r.db.QueryRowContext(ctx, query, code))
}

func (r *callRepository) List(ctx context.Context) ([]domain.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls ORDER BY submission_start DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []domain.Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, *c)
	}
	return calls, rows.Err()
}

func (r *callRepository) Update(ctx context.Context, call *domain.Call) error {
	query := `UPDATE calls SET title=$1, status=$2, submission_start=$3, submission_end=$4,
	            evaluation_deadline=$5, execution_start=$6, execution_end=$7, description=$8,
	            published_at=$9, updated_on=$10 WHERE id=$11`
	_, err := r.db.ExecContext(ctx, query,
		call.Title, call.Status, call.SubmissionStart, call.SubmissionEnd,
		call.EvaluationDeadline, call.ExecutionStart, call.ExecutionEnd, call.Description,
		call.PublishedAt, time.Now(), call.ID)
	return err
}
