// Package wallet implements the coin store shared by the streak and
// gamification engines. The balance lives under the "coins" key; every
// movement is also appended to the coin ledger for auditing.
package wallet

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rachamuffin/rachamuffin/internal/domain"
	"github.com/rachamuffin/rachamuffin/internal/infra/metrics"
)

// CoinsKey is the persisted balance key.
const CoinsKey = "coins"

// Service manages the coin balance.
type Service struct {
	store  domain.Store
	ledger domain.CoinLedger // optional
	log    zerolog.Logger
}

// NewService creates a wallet. ledger may be nil.
func NewService(store domain.Store, ledger domain.CoinLedger, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		log:    logger.With().Str("component", "wallet").Logger(),
	}
}

// Balance returns the current balance. Missing or corrupt values read as 0.
func (s *Service) Balance() int {
	var coins int
	s.store.Get(CoinsKey, &coins)
	if coins < 0 {
		coins = 0
	}
	return coins
}

// Earn credits amount coins and returns the new balance.
func (s *Service) Earn(at time.Time, amount int, kind domain.LedgerKind, reason string) int {
	if amount <= 0 {
		return s.Balance()
	}
	bal := s.Balance() + amount
	s.persist(at, kind, amount, reason, bal)
	metrics.CoinsEarned.WithLabelValues(string(kind)).Add(float64(amount))
	return bal
}

// Debit removes up to amount coins, clamping the balance at 0.
// Returns the amount actually removed and the new balance.
func (s *Service) Debit(at time.Time, amount int, kind domain.LedgerKind, reason string) (int, int) {
	bal := s.Balance()
	if amount <= 0 || bal == 0 {
		return 0, bal
	}
	taken := min(amount, bal)
	bal -= taken
	s.persist(at, kind, -taken, reason, bal)
	metrics.CoinsDebited.WithLabelValues(string(kind)).Add(float64(taken))
	return taken, bal
}

// Spend removes exactly amount coins or fails without touching the balance.
func (s *Service) Spend(at time.Time, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("spend %d: %w", amount, domain.ErrInvalidAmount)
	}
	bal := s.Balance()
	if bal < amount {
		return bal, fmt.Errorf("have %d, need %d: %w", bal, amount, domain.ErrInsufficientCoins)
	}
	bal -= amount
	s.persist(at, domain.LedgerSpend, -amount, reason, bal)
	metrics.CoinsDebited.WithLabelValues(string(domain.LedgerSpend)).Add(float64(amount))
	return bal, nil
}

// History returns recent ledger entries, newest first.
func (s *Service) History(limit int) ([]domain.LedgerEntry, error) {
	if s.ledger == nil {
		return nil, nil
	}
	return s.ledger.ListLedgerEntries(limit)
}

// persist writes the balance, then the ledger entry. Both are best-effort.
func (s *Service) persist(at time.Time, kind domain.LedgerKind, delta int, reason string, bal int) {
	s.store.Set(CoinsKey, bal)
	metrics.CoinsBalance.Set(float64(bal))

	if s.ledger == nil {
		return
	}
	err := s.ledger.AppendLedgerEntry(domain.LedgerEntry{
		ID:          uuid.NewString(),
		Timestamp:   at,
		Kind:        kind,
		Amount:      delta,
		Description: reason,
		Balance:     bal,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Int("amount", delta).Msg("ledger append failed")
	}
}
