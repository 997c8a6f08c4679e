package engagement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rachamuffin/rachamuffin/internal/domain"
	"github.com/rachamuffin/rachamuffin/internal/infra/metrics"
)

// errorNotifyDuration is the fixed display time of error notifications.
const errorNotifyDuration = 6 * time.Second

// NotificationStore persists notifications. *sqlite.DB implements it.
type NotificationStore interface {
	InsertNotification(n domain.Notification) error
	ListPendingNotifications(limit int) ([]domain.Notification, error)
	MarkNotificationShown(id string) (bool, error)
}

// Inbox is the Notifier used by the engines. Every notification is logged
// and queued until a client marks it as shown.
type Inbox struct {
	db    NotificationStore // optional
	clock domain.Clock
	log   zerolog.Logger
}

var _ domain.Notifier = (*Inbox)(nil)

// NewInbox creates an inbox. db may be nil, in which case notifications
// are only logged.
func NewInbox(db NotificationStore, clock domain.Clock, logger zerolog.Logger) *Inbox {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Inbox{
		db:    db,
		clock: clock,
		log:   logger.With().Str("component", "notifier").Logger(),
	}
}

// Notify queues a message and returns its handle. It never fails; storage
// errors are logged.
func (n *Inbox) Notify(message string, level domain.NotifyLevel, opts domain.NotifyOptions) string {
	if level == "" {
		level = domain.NotifyInfo
	}
	dur := opts.Duration
	switch {
	case level == domain.NotifyError:
		dur = errorNotifyDuration
	case dur <= 0:
		dur = domain.DefaultNotifyDuration
	}

	notif := domain.Notification{
		ID:         uuid.NewString(),
		Message:    message,
		Level:      level,
		Duration:   dur,
		Persistent: opts.Persistent,
		CreatedAt:  n.clock.Now(),
	}

	metrics.Notifications.WithLabelValues(string(level)).Inc()
	n.log.Info().Str("id", notif.ID).Str("level", string(level)).Msg(message)

	if n.db != nil {
		if err := n.db.InsertNotification(notif); err != nil {
			n.log.Warn().Err(err).Str("id", notif.ID).Msg("notification not stored")
		}
	}
	return notif.ID
}

// Pending returns unshown notifications, oldest first.
func (n *Inbox) Pending(limit int) ([]domain.Notification, error) {
	if n.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return n.db.ListPendingNotifications(limit)
}

// MarkShown marks a notification as shown.
func (n *Inbox) MarkShown(id string) error {
	if n.db == nil {
		return fmt.Errorf("notification %q: %w", id, domain.ErrNotificationNotFound)
	}
	ok, err := n.db.MarkNotificationShown(id)
	if err != nil {
		return fmt.Errorf("mark notification %q: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("notification %q: %w", id, domain.ErrNotificationNotFound)
	}
	return nil
}

// Drain returns the pending notifications and marks them shown. Used by
// the CLI, which prints everything an operation produced.
func (n *Inbox) Drain(limit int) ([]domain.Notification, error) {
	pending, err := n.Pending(limit)
	if err != nil {
		return nil, err
	}
	for _, p := range pending {
		if err := n.MarkShown(p.ID); err != nil {
			return pending, err
		}
	}
	return pending, nil
}
