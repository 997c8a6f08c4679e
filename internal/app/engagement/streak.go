package engagement

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rachamuffin/rachamuffin/internal/app/wallet"
	"github.com/rachamuffin/rachamuffin/internal/domain"
	"github.com/rachamuffin/rachamuffin/internal/infra/metrics"
)

// Recorder receives the streak engine's events. GamificationEngine
// implements it.
type Recorder interface {
	RecordMissionCompletion(now time.Time) MissionReport
	RecordStreakBreak(now time.Time)
	RecordCoinsSpent(now time.Time, amount int) []domain.Achievement
}

// CompletionResult is returned by RecordDailyCompletion. State is the
// streak state right after the streak engine's own update; Report is nil
// for a same-day repeat.
type CompletionResult struct {
	Outcome domain.CompletionOutcome `json:"outcome"`
	State   domain.StreakState       `json:"state"`
	Report  *MissionReport           `json:"report,omitempty"`
}

// BreakResult is returned by CheckAndApplyStreakBreak.
type BreakResult struct {
	Broken     bool    `json:"broken"`
	HoursSince float64 `json:"hoursSince"`
	Lost       int     `json:"lost"` // streak length that was lost
	CoinsLost  int     `json:"coinsLost"`
}

// StreakEngine owns the streak counter and the last completion day.
// Coins go through the shared wallet.
type StreakEngine struct {
	store    domain.Store
	wallet   *wallet.Service
	recorder Recorder
	notifier domain.Notifier
	rules    Rules
	log      zerolog.Logger
}

// NewStreakEngine creates a streak engine.
func NewStreakEngine(store domain.Store, w *wallet.Service, recorder Recorder, notifier domain.Notifier, rules Rules, logger zerolog.Logger) *StreakEngine {
	return &StreakEngine{
		store:    store,
		wallet:   w,
		recorder: recorder,
		notifier: notifier,
		rules:    rules.withDefaults(),
		log:      logger.With().Str("component", "streak").Logger(),
	}
}

// State loads the streak state. Missing values read as zero.
func (e *StreakEngine) State() domain.StreakState {
	var st domain.StreakState
	e.store.Get(KeyStreak, &st.Streak)
	e.store.Get(KeyLastCheck, &st.LastCompletionDate)
	st.Streak = max(st.Streak, 0)
	st.Coins = e.wallet.Balance()
	return st
}

// RecordDailyCompletion completes today's mission. A second call on the
// same calendar day changes nothing and reports OutcomeAlreadyCompleted.
// The streak state is persisted before gamification sees the completion.
func (e *StreakEngine) RecordDailyCompletion(now time.Time) CompletionResult {
	st := e.State()
	today := domain.StreakDay(now)

	if sameDay(st.LastCompletionDate, now) {
		metrics.MissionsRepeated.Inc()
		e.log.Debug().Str("day", today).Msg("mission already completed today")
		return CompletionResult{Outcome: domain.OutcomeAlreadyCompleted, State: st}
	}

	st.Streak++
	st.LastCompletionDate = today
	st.Coins = e.wallet.Earn(now, e.rules.MissionReward, domain.LedgerMission, "daily mission")
	e.save(st)

	metrics.MissionsCompleted.Inc()
	metrics.CurrentStreak.Set(float64(st.Streak))
	e.log.Info().Int("streak", st.Streak).Int("coins", st.Coins).Msg("mission completed")

	report := e.recorder.RecordMissionCompletion(now)
	return CompletionResult{Outcome: domain.OutcomeCompleted, State: st, Report: &report}
}

// CheckAndApplyStreakBreak breaks the streak when more than BreakWindow has
// passed since the start of the last completion day. The window is exact;
// it is not rounded to whole days.
func (e *StreakEngine) CheckAndApplyStreakBreak(now time.Time) BreakResult {
	st := e.State()
	if st.LastCompletionDate == "" {
		return BreakResult{}
	}

	last, ok := parseDay(st.LastCompletionDate, now.Location())
	if !ok {
		e.log.Warn().Str("lastCheck", st.LastCompletionDate).Msg("unreadable last completion day")
		return BreakResult{}
	}

	since := now.Sub(last)
	res := BreakResult{HoursSince: since.Hours()}
	if since <= e.rules.BreakWindow {
		return res
	}

	res.Broken = true
	res.Lost = st.Streak
	st.Streak = 0
	res.CoinsLost, st.Coins = e.wallet.Debit(now, e.rules.BreakPenalty, domain.LedgerPenalty, "streak broken")
	e.save(st)

	metrics.StreakBreaks.Inc()
	metrics.CurrentStreak.Set(0)
	e.log.Info().Int("lost", res.Lost).Int("coins_lost", res.CoinsLost).Float64("hours", res.HoursSince).Msg("streak broken")

	e.recorder.RecordStreakBreak(now)
	e.notifier.Notify("¡Has roto tu racha!", domain.NotifyWarning,
		domain.NotifyOptions{Duration: 6 * time.Second})
	return res
}

// SpendCoins spends exactly amount coins and records the spend.
func (e *StreakEngine) SpendCoins(now time.Time, amount int, reason string) (int, []domain.Achievement, error) {
	bal, err := e.wallet.Spend(now, amount, reason)
	if err != nil {
		return bal, nil, err
	}
	unlocked := e.recorder.RecordCoinsSpent(now, amount)
	return e.wallet.Balance(), unlocked, nil
}

// ResetAll removes every key of the save domain. Callers must confirm with
// the user first.
func (e *StreakEngine) ResetAll() bool {
	ok := e.store.Clear()
	metrics.CurrentStreak.Set(0)
	metrics.CoinsBalance.Set(0)
	e.log.Warn().Bool("ok", ok).Msg("all progress reset")
	return ok
}

func (e *StreakEngine) save(st domain.StreakState) {
	okStreak := e.store.Set(KeyStreak, st.Streak)
	okDay := e.store.Set(KeyLastCheck, st.LastCompletionDate)
	if !okStreak || !okDay {
		e.log.Warn().Msg("streak state not fully persisted")
	}
}

// sameDay reports whether the stored completion day is now's calendar day,
// in either accepted layout.
func sameDay(stored string, now time.Time) bool {
	if stored == "" {
		return false
	}
	day, ok := parseDay(stored, now.Location())
	if !ok {
		return false
	}
	y, m, d := now.Date()
	dy, dm, dd := day.Date()
	return y == dy && m == dm && d == dd
}

// parseDay reads a stored completion day as midnight in loc. Both the
// current day layout and ISO dates are accepted.
func parseDay(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range []string{domain.StreakDayLayout, domain.ISODayLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
