package daemon

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	t.Setenv("RACHAMUFFIN_HOME", t.TempDir())
	cfg := DefaultConfig()
	d, err := NewWithConfig(cfg, fixedClock{time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestNewWithConfig_Wires(t *testing.T) {
	d := newTestDaemon(t)
	require.NotNil(t, d.Engine)
	require.NotNil(t, d.Accounts)
	require.NotNil(t, d.SaveData)
	require.NotNil(t, d.Server)
	assert.Equal(t, "rachamuffin_", d.Store.Namespace())

	_, err := d.Accounts.Register("ana@example.com", "secreto")
	require.NoError(t, err)
	_, _, err = d.Accounts.SetStreakType("study", "")
	require.NoError(t, err)

	d.Engine.CompleteMission()
	res := d.Engine.CompleteMission()
	assert.Equal(t, 1, res.State.Streak)

	pending, err := d.Inbox.Pending(0)
	require.NoError(t, err)
	var named bool
	for _, n := range pending {
		if n.Message == "¡Ya cumpliste tu misión de estudio hoy, Guerrero!" {
			named = true
		}
	}
	assert.True(t, named, "repeat message uses the account's streak name")
}

func TestReset_ClearsLedgerAndInbox(t *testing.T) {
	d := newTestDaemon(t)
	d.Engine.CompleteMission()

	entries, err := d.Engine.Wallet.History(0)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	require.True(t, d.Reset())

	entries, err = d.Engine.Wallet.History(0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	pending, err := d.Inbox.Pending(0)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, 0, d.Engine.Status().State.Streak)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	d := newTestDaemon(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	d.Config.API.Port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Serve(ctx) }()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestLock_SharedWithAPI(t *testing.T) {
	d := newTestDaemon(t)
	h := d.Server.Handler()

	d.Lock()
	done := make(chan int, 1)
	go func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
		done <- rec.Code
	}()

	select {
	case <-done:
		t.Fatal("API request ran while the daemon lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	d.Unlock()
	select {
	case code := <-done:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("API request did not finish after Unlock")
	}
}
