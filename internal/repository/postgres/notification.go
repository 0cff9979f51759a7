package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

type notificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	// dedup_key carries a unique index; a duplicate event for the same user
	// and application collapses into the existing row.
	query := `INSERT INTO notifications (user_id, application_id, event, title, message, dedup_key, is_read, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, false, $7)
	          ON CONFLICT (dedup_key) DO NOTHING
	          RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		note.UserID, note.ApplicationID, note.Event, note.Title, note.Message,
		note.DedupKey, now).Scan(&note.ID)
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row for a duplicate.
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	note.CreatedOn = now
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	var total int32
	countQuery := `SELECT COUNT(*) FROM notifications WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, application_id, event, title, message, dedup_key, is_read, created_on
	          FROM notifications WHERE user_id = $1
	          ORDER BY created_on DESC
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.ApplicationID, &n.Event, &n.Title,
			&n.Message, &n.DedupKey, &n.IsRead, &n.CreatedOn); err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	return notes, total, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
