// Package health runs periodic checks of the save store with auto-recovery.
package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// probeKey is written and removed by the store round-trip check.
const probeKey = "__health_probe__"

// DB is the subset of *sqlite.DB the checks use.
type DB interface {
	Ping() error
	PutRaw(key, value string) error
	GetRaw(key string) (string, bool, error)
	DeleteRaw(key string) error
}

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	log      zerolog.Logger
}

// NewChecker creates a health checker for the database and data directory.
func NewChecker(db DB, dataDir string, logger zerolog.Logger) *Checker {
	return &Checker{
		interval: 60 * time.Second,
		log:      logger.With().Str("component", "health").Logger(),
		checks: []Check{
			{
				Name: "sqlite",
				CheckFn: func(ctx context.Context) error {
					return db.Ping()
				},
			},
			{
				Name: "store_roundtrip",
				CheckFn: func(ctx context.Context) error {
					return checkRoundTrip(db)
				},
				RecoverFn: func(ctx context.Context) error {
					return db.DeleteRaw(probeKey)
				},
			},
			{
				Name: "data_dir",
				CheckFn: func(ctx context.Context) error {
					return checkDataDir(dataDir)
				},
				RecoverFn: func(ctx context.Context) error {
					return os.MkdirAll(dataDir, 0700)
				},
			},
		},
	}
}

// NewCheckerWithChecks creates a checker running the given checks.
func NewCheckerWithChecks(checks []Check, interval time.Duration, logger zerolog.Logger) *Checker {
	return &Checker{
		checks:   checks,
		interval: interval,
		log:      logger.With().Str("component", "health").Logger(),
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce runs every check and attempts recovery for failures.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
			c.log.Warn().Err(err).Str("check", check.Name).Msg("health check failed")
			if check.RecoverFn != nil {
				if rerr := check.RecoverFn(ctx); rerr != nil {
					c.log.Error().Err(rerr).Str("check", check.Name).Msg("recovery failed")
				}
			}
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkRoundTrip(db DB) error {
	want := time.Now().UTC().Format(time.RFC3339Nano)
	if err := db.PutRaw(probeKey, fmt.Sprintf("%q", want)); err != nil {
		return fmt.Errorf("write probe: %w", err)
	}
	got, found, err := db.GetRaw(probeKey)
	if err != nil {
		return fmt.Errorf("read probe: %w", err)
	}
	if !found || got != fmt.Sprintf("%q", want) {
		return fmt.Errorf("probe mismatch")
	}
	return db.DeleteRaw(probeKey)
}

func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}
