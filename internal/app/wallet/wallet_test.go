package wallet

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachamuffin/rachamuffin/internal/domain"
	"github.com/rachamuffin/rachamuffin/internal/infra/sqlite"
)

var at = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestWallet(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir(), zerolog.Nop())
	require.NoError(t, err, "Open()")
	t.Cleanup(func() { db.Close() })
	store := sqlite.NewStore(db, "", zerolog.Nop())
	return NewService(store, db, zerolog.Nop()), store
}

// ─── Service Tests ──────────────────────────────────────────────────────────

func TestService_InitialBalance(t *testing.T) {
	w, _ := newTestWallet(t)
	assert.Equal(t, 0, w.Balance())
}

func TestService_NegativeStoredBalanceReadsZero(t *testing.T) {
	w, store := newTestWallet(t)
	store.Set(CoinsKey, -15)
	assert.Equal(t, 0, w.Balance())
}

func TestService_Earn(t *testing.T) {
	w, store := newTestWallet(t)

	assert.Equal(t, 10, w.Earn(at, 10, domain.LedgerMission, "mission"))
	assert.Equal(t, 60, w.Earn(at, 50, domain.LedgerReward, "first_streak"))
	assert.Equal(t, 60, w.Earn(at, 0, domain.LedgerReward, "nothing"), "zero is ignored")

	var raw int
	require.True(t, store.Get(CoinsKey, &raw))
	assert.Equal(t, 60, raw)

	hist, err := w.History(10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 60, hist[0].Balance)
}

func TestService_DebitClampsAtZero(t *testing.T) {
	w, _ := newTestWallet(t)
	w.Earn(at, 15, domain.LedgerMission, "mission")

	taken, bal := w.Debit(at, 20, domain.LedgerPenalty, "streak broken")
	assert.Equal(t, 15, taken)
	assert.Equal(t, 0, bal)

	taken, bal = w.Debit(at, 20, domain.LedgerPenalty, "streak broken")
	assert.Equal(t, 0, taken)
	assert.Equal(t, 0, bal)

	hist, err := w.History(10)
	require.NoError(t, err)
	assert.Len(t, hist, 2, "no ledger entry for an empty debit")
	assert.Equal(t, -15, hist[0].Amount)
}

func TestService_Spend(t *testing.T) {
	w, _ := newTestWallet(t)
	w.Earn(at, 100, domain.LedgerReward, "gift")

	bal, err := w.Spend(at, 30, "hat")
	require.NoError(t, err)
	assert.Equal(t, 70, bal)

	_, err = w.Spend(at, 500, "castle")
	assert.True(t, errors.Is(err, domain.ErrInsufficientCoins))
	assert.Equal(t, 70, w.Balance())

	_, err = w.Spend(at, 0, "nothing")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestService_NilLedger(t *testing.T) {
	_, store := newTestWallet(t)
	w := NewService(store, nil, zerolog.Nop())

	assert.Equal(t, 5, w.Earn(at, 5, domain.LedgerMission, "mission"))
	hist, err := w.History(10)
	require.NoError(t, err)
	assert.Nil(t, hist)
}
