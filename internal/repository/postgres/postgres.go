package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"redib-coa-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// standalone or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.ApplicationRepository
	repository.AccessRequestRepository
	repository.FeasibilityRepository
	repository.EvaluationRepository
	repository.NodeResolutionRepository
	repository.NodeRepository
	repository.EquipmentRepository
	repository.CallRepository
	repository.UserRepository
	repository.NotificationRepository
	repository.PublicationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                       db,
		ApplicationRepository:    NewApplicationRepository(db),
		AccessRequestRepository:  NewAccessRequestRepository(db),
		FeasibilityRepository:    NewFeasibilityRepository(db),
		EvaluationRepository:     NewEvaluationRepository(db),
		NodeResolutionRepository: NewNodeResolutionRepository(db),
		NodeRepository:           NewNodeRepository(db),
		EquipmentRepository:      NewEquipmentRepository(db),
		CallRepository:           NewCallRepository(db),
		UserRepository:           NewUserRepository(db),
		NotificationRepository:   NewNotificationRepository(db),
		PublicationRepository:    NewPublicationRepository(db),
	}
}

// Repos returns the store's repositories bound to the shared *sql.DB.
func (s *Store) Repos() *repository.Repos {
	return reposOver(s.db)
}

// RunInTx implements repository.TxManager. fn gets repositories bound to one
// transaction; returning an error rolls the whole transaction back.
func (s *Store) RunInTx(ctx context.Context, fn func(r *repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(reposOver(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func reposOver(db DBTX) *repository.Repos {
	return &repository.Repos{
		Applications:    NewApplicationRepository(db),
		AccessRequests:  NewAccessRequestRepository(db),
		Feasibility:     NewFeasibilityRepository(db),
		Evaluations:     NewEvaluationRepository(db),
		NodeResolutions: NewNodeResolutionRepository(db),
		Nodes:           NewNodeRepository(db),
		Equipment:       NewEquipmentRepository(db),
		Calls:           NewCallRepository(db),
		Users:           NewUserRepository(db),
		Notifications:   NewNotificationRepository(db),
		Publications:    NewPublicationRepository(db),
	}
}
