package domain

import "time"

// ─── Collaborator Interfaces ────────────────────────────────────────────────
// Infrastructure implements them; the engagement engines depend on them.

// Store is the persistent key-value store. Values are JSON documents.
// No method returns an error: failures degrade to a default (Get) or false.
type Store interface {
	// Get decodes the value under key into dst. Returns false, leaving dst
	// untouched, when the key is missing or the stored value is corrupt.
	Get(key string, dst any) bool

	// Set encodes value as JSON and stores it under key.
	Set(key string, value any) bool

	// Remove deletes key. Removing a missing key succeeds.
	Remove(key string) bool

	// Clear removes every key of this save domain.
	Clear() bool

	// Keys lists every key of this save domain.
	Keys() []string
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Notifier presents leveled messages to the user. Fire-and-forget: the
// returned handle is opaque and callers never wait on it.
type Notifier interface {
	Notify(message string, level NotifyLevel, opts NotifyOptions) string
}

// NotifyLevel is the severity of a notification.
type NotifyLevel string

const (
	NotifyInfo    NotifyLevel = "info"
	NotifySuccess NotifyLevel = "success"
	NotifyWarning NotifyLevel = "warning"
	NotifyError   NotifyLevel = "error"
)

// NotifyOptions tunes how long a notification stays visible.
type NotifyOptions struct {
	Duration   time.Duration `json:"duration"`
	Persistent bool          `json:"persistent"`
}

// DefaultNotifyDuration is used when NotifyOptions.Duration is zero.
const DefaultNotifyDuration = 4 * time.Second

// Notification is a stored user-facing message.
type Notification struct {
	ID         string        `json:"id"`
	Message    string        `json:"message"`
	Level      NotifyLevel   `json:"level"`
	Duration   time.Duration `json:"duration"`
	Persistent bool          `json:"persistent"`
	CreatedAt  time.Time     `json:"created_at"`
	Shown      bool          `json:"shown"`
}

// LedgerKind categorizes a coin movement.
type LedgerKind string

const (
	LedgerMission   LedgerKind = "mission"
	LedgerReward    LedgerKind = "reward"
	LedgerChallenge LedgerKind = "challenge"
	LedgerPenalty   LedgerKind = "penalty"
	LedgerSpend     LedgerKind = "spend"
)

// LedgerEntry records one coin movement and the resulting balance.
type LedgerEntry struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Kind        LedgerKind `json:"kind"`
	Amount      int        `json:"amount"` // signed: negative for debits
	Description string     `json:"description"`
	Balance     int        `json:"balance"`
}

// CoinLedger is the append-only audit log of coin movements.
type CoinLedger interface {
	AppendLedgerEntry(e LedgerEntry) error
	ListLedgerEntries(limit int) ([]LedgerEntry, error)
}
