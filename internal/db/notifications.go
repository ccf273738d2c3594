package db

import (
	"context"

	"github.com/google/uuid"

	"serptrack/internal/models"
)

// CreateNotification inserts one unread notification row. Only the ranking
// diff path calls this.
func (d *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	return d.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, keyword_id, type, title, message, old_position, new_position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_read, created_at
	`, n.UserID, n.KeywordID, n.Type, n.Title, n.Message, n.OldPosition, n.NewPosition).
		Scan(&n.ID, &n.IsRead, &n.CreatedAt)
}

// ListNotificationsByUser returns a user's notifications, newest first.
func (d *DB) ListNotificationsByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, keyword_id, type, title, message, old_position, new_position, is_read, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := d.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.KeywordID, &n.Type, &n.Title, &n.Message,
			&n.OldPosition, &n.NewPosition, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flips the read flag, the only permitted mutation.
func (d *DB) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification for a user.
func (d *DB) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := d.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read
	`, userID)
	return err
}

// CountNotificationsByType returns per-type notification totals for the
// metrics collector.
func (d *DB) CountNotificationsByType(ctx context.Context) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT type, COUNT(*) FROM notifications GROUP BY type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var typ string
		var count int64
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		counts[typ] = count
	}
	return counts, rows.Err()
}
