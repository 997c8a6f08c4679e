package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, with no infrastructure dependency.

var (
	// Coin errors
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientCoins = errors.New("insufficient coins")

	// Challenge errors
	ErrChallengeNotFound  = errors.New("daily challenge not found")
	ErrChallengeCompleted = errors.New("daily challenge already completed")

	// Avatar errors
	ErrPresetNotFound = errors.New("avatar preset not found")

	// Account errors
	ErrMissingFields      = errors.New("username and password are required")
	ErrInvalidUsername    = errors.New("username must be an email or at least 3 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotLoggedIn        = errors.New("no user is logged in")
	ErrUnknownStreakType  = errors.New("unknown streak type")
	ErrMissingCustomText  = errors.New("custom streak type needs a description")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Save data errors
	ErrUnsupportedVersion = errors.New("unsupported save data version")
	ErrInvalidSaveData    = errors.New("invalid save data")
)
