package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachamuffin/rachamuffin/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Checker Tests ──────────────────────────────────────────────────────────

func TestNewChecker(t *testing.T) {
	c := NewChecker(newTestDB(t), t.TempDir(), zerolog.Nop())
	require.NotNil(t, c)
	assert.Len(t, c.checks, 3)
}

func TestChecker_RunAllHealthy(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, t.TempDir(), zerolog.Nop())
	c.RunOnce(context.Background())

	statuses := c.Statuses()
	require.Len(t, statuses, 3)
	for _, s := range statuses {
		assert.True(t, s.Healthy, "check %q: %s", s.Name, s.Error)
	}
	assert.True(t, c.IsHealthy())

	_, found, err := db.GetRaw(probeKey)
	require.NoError(t, err)
	assert.False(t, found, "probe key is cleaned up")
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	c := NewChecker(newTestDB(t), t.TempDir(), zerolog.Nop())
	// No statuses yet, so vacuously healthy.
	assert.True(t, c.IsHealthy())
}

func TestChecker_MissingDataDirRecovers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	c := NewChecker(newTestDB(t), dir, zerolog.Nop())

	c.RunOnce(context.Background())
	assert.False(t, c.IsHealthy())

	info, err := os.Stat(dir)
	require.NoError(t, err, "recovery recreates the data dir")
	assert.True(t, info.IsDir())

	c.RunOnce(context.Background())
	assert.True(t, c.IsHealthy())
}

func TestChecker_ClosedDB(t *testing.T) {
	db, err := sqlite.Open(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	c := NewChecker(db, t.TempDir(), zerolog.Nop())
	c.RunOnce(context.Background())
	assert.False(t, c.IsHealthy())

	for _, s := range c.Statuses() {
		if s.Name == "sqlite" {
			assert.False(t, s.Healthy)
			assert.NotEmpty(t, s.Error)
		}
	}
}

func TestChecker_RecoverCalledOnFailure(t *testing.T) {
	recovered := 0
	c := NewCheckerWithChecks([]Check{{
		Name:      "flaky",
		CheckFn:   func(ctx context.Context) error { return errors.New("down") },
		RecoverFn: func(ctx context.Context) error { recovered++; return nil },
	}}, time.Hour, zerolog.Nop())

	c.RunOnce(context.Background())
	assert.Equal(t, 1, recovered)
	require.Len(t, c.Statuses(), 1)
	assert.Equal(t, "down", c.Statuses()[0].Error)
}

func TestChecker_RunStopsOnCancel(t *testing.T) {
	c := NewCheckerWithChecks([]Check{{
		Name:    "ok",
		CheckFn: func(ctx context.Context) error { return nil },
	}}, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(c.Statuses()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCheckDataDir_NotADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0600))
	assert.Error(t, checkDataDir(f))
}
