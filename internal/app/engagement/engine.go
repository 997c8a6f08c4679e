package engagement

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rachamuffin/rachamuffin/internal/app/wallet"
	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// defaultStreakName is used when no streak type is configured.
const defaultStreakName = "racha"

// Engine wires the streak, gamification and avatar components over one
// Store and drives them from the injected Clock. It is the entry point
// used by the CLI and the HTTP API. Engine is not safe for concurrent use;
// callers serialize access.
type Engine struct {
	Streak *StreakEngine
	Game   *GamificationEngine
	Avatar *AvatarService
	Wallet *wallet.Service

	clock      domain.Clock
	notifier   domain.Notifier
	streakName func() string
}

// Completion is the result of CompleteMission.
type Completion struct {
	CompletionResult
	Break  BreakResult         `json:"break"`
	Avatar domain.AvatarStatus `json:"avatar"`
}

// Snapshot is the full status view.
type Snapshot struct {
	State   domain.StreakState  `json:"state"`
	Stats   domain.DisplayStats `json:"stats"`
	Avatar  domain.AvatarStatus `json:"avatar"`
	Profile domain.Avatar       `json:"profile"`
}

// New builds an engine. ledger may be nil.
func New(store domain.Store, ledger domain.CoinLedger, notifier domain.Notifier, clock domain.Clock, rules Rules, logger zerolog.Logger) *Engine {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	w := wallet.NewService(store, ledger, logger)
	game := NewGamificationEngine(store, w, notifier, rules, logger)
	return &Engine{
		Streak:   NewStreakEngine(store, w, game, notifier, rules, logger),
		Game:     game,
		Avatar:   NewAvatarService(store, notifier, logger),
		Wallet:   w,
		clock:    clock,
		notifier: notifier,
	}
}

// SetStreakNamer sets the function naming the user's streak in messages.
func (e *Engine) SetStreakNamer(fn func() string) {
	e.streakName = fn
}

// Clock returns the engine clock.
func (e *Engine) Clock() domain.Clock { return e.clock }

// CompleteMission applies any pending streak break, completes today's
// mission and checks avatar evolution.
func (e *Engine) CompleteMission() Completion {
	now := e.clock.Now()
	brk := e.Streak.CheckAndApplyStreakBreak(now)
	res := e.Streak.RecordDailyCompletion(now)
	if res.Outcome == domain.OutcomeAlreadyCompleted {
		e.notifier.Notify(fmt.Sprintf("¡Ya cumpliste tu misión de %s hoy, Guerrero!", e.name()),
			domain.NotifyInfo, domain.NotifyOptions{})
		return Completion{CompletionResult: res, Break: brk, Avatar: e.Avatar.Status()}
	}

	e.notifier.Notify("¡Misión completada! 🎯", domain.NotifySuccess, domain.NotifyOptions{})
	return Completion{CompletionResult: res, Break: brk, Avatar: e.Avatar.CheckEvolution()}
}

// CheckStreak applies a pending streak break.
func (e *Engine) CheckStreak() BreakResult {
	return e.Streak.CheckAndApplyStreakBreak(e.clock.Now())
}

// Spend spends coins on a reward.
func (e *Engine) Spend(amount int, reason string) (int, []domain.Achievement, error) {
	return e.Streak.SpendCoins(e.clock.Now(), amount, reason)
}

// Share records that the user shared their progress.
func (e *Engine) Share() []domain.Achievement {
	return e.Game.RecordShare(e.clock.Now())
}

// Challenges returns today's challenges.
func (e *Engine) Challenges() []domain.DailyChallenge {
	return e.Game.Challenges(e.clock.Now())
}

// ProgressChallenge advances one of today's challenges.
func (e *Engine) ProgressChallenge(id string, increment int) (ChallengeResult, error) {
	return e.Game.UpdateChallengeProgress(e.clock.Now(), id, increment)
}

// Status returns the full status view.
func (e *Engine) Status() Snapshot {
	return Snapshot{
		State:   e.Streak.State(),
		Stats:   e.Game.DisplayStats(e.clock.Now()),
		Avatar:  e.Avatar.Status(),
		Profile: e.Avatar.Avatar(),
	}
}

// Reset wipes all progress.
func (e *Engine) Reset() bool {
	return e.Streak.ResetAll()
}

func (e *Engine) name() string {
	if e.streakName != nil {
		if n := e.streakName(); n != "" {
			return n
		}
	}
	return defaultStreakName
}
