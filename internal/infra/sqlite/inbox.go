package sqlite

import (
	"database/sql"
	"time"

	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification stores a notification.
func (d *DB) InsertNotification(n domain.Notification) error {
	_, err := d.db.Exec(
		`INSERT INTO notifications (id, message, level, duration_ms, persistent, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Message, string(n.Level), n.Duration.Milliseconds(), n.Persistent,
		unixMillis(n.CreatedAt), n.Shown,
	)
	return err
}

// ListPendingNotifications returns unshown notifications, oldest first.
func (d *DB) ListPendingNotifications(limit int) ([]domain.Notification, error) {
	rows, err := d.db.Query(
		`SELECT id, message, level, duration_ms, persistent, created_at, shown
		 FROM notifications WHERE shown = 0 ORDER BY created_at ASC, rowid ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifs = append(notifs, *n)
	}
	return notifs, rows.Err()
}

// MarkNotificationShown marks a notification as shown. Returns false if the
// id is unknown.
func (d *DB) MarkNotificationShown(id string) (bool, error) {
	result, err := d.db.Exec(`UPDATE notifications SET shown = 1 WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteNotifications removes every stored notification.
func (d *DB) DeleteNotifications() error {
	_, err := d.db.Exec(`DELETE FROM notifications`)
	return err
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var n domain.Notification
	var level string
	var durationMs, createdAt int64
	err := s.Scan(&n.ID, &n.Message, &level, &durationMs, &n.Persistent, &createdAt, &n.Shown)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n.Level = domain.NotifyLevel(level)
	n.Duration = time.Duration(durationMs) * time.Millisecond
	n.CreatedAt = fromUnixMillis(createdAt)
	return &n, nil
}
