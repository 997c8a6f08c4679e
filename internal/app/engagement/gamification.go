package engagement

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/rachamuffin/rachamuffin/internal/app/wallet"
	"github.com/rachamuffin/rachamuffin/internal/domain"
	"github.com/rachamuffin/rachamuffin/internal/infra/metrics"
)

// Hour bands for time-of-day achievements.
const (
	nightEndHour = 6 // [0, 6) counts as a night completion
	earlyEndHour = 9 // [6, 9) counts as an early completion
)

// perfectWeekLen is the perfect-week window, in history entries.
// PerfectMonths is never advanced by completions; it only arrives through
// imported saves.
const perfectWeekLen = 7

// MissionReport describes what a mission completion changed beyond the streak.
type MissionReport struct {
	Unlocked            []domain.Achievement `json:"unlocked"`
	LevelUps            []int                `json:"levelUps"`
	PerfectWeek         bool                 `json:"perfectWeek"`
	ChallengesRefreshed bool                 `json:"challengesRefreshed"`
}

// ChallengeResult is returned by UpdateChallengeProgress.
type ChallengeResult struct {
	Challenge domain.DailyChallenge `json:"challenge"`
	Completed bool                  `json:"completed"` // true only on the completing call
	LevelUps  []int                 `json:"levelUps"`
	Unlocked  []domain.Achievement  `json:"unlocked"`
}

// GamificationEngine owns the statistics record, the streak history, the
// achievement set, levels and the daily challenges.
type GamificationEngine struct {
	store     domain.Store
	wallet    *wallet.Service
	notifier  domain.Notifier
	rules     Rules
	catalog   []domain.Achievement
	templates []domain.ChallengeTemplate
	rng       *rand.Rand
	log       zerolog.Logger
}

// NewGamificationEngine creates a gamification engine with the standard
// achievement and challenge catalogs.
func NewGamificationEngine(store domain.Store, w *wallet.Service, notifier domain.Notifier, rules Rules, logger zerolog.Logger) *GamificationEngine {
	return &GamificationEngine{
		store:     store,
		wallet:    w,
		notifier:  notifier,
		rules:     rules.withDefaults(),
		catalog:   AllAchievements(),
		templates: ChallengeTemplates(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       logger.With().Str("component", "gamification").Logger(),
	}
}

// SetRand replaces the random source used for challenge draws.
func (g *GamificationEngine) SetRand(rng *rand.Rand) {
	g.rng = rng
}

// ─── Recording ──────────────────────────────────────────────────────────────

// RecordMissionCompletion updates stats after a successful daily completion.
// Order: counters, hour band, history, perfect week, achievements, exp,
// challenge refresh, persist.
func (g *GamificationEngine) RecordMissionCompletion(now time.Time) MissionReport {
	var report MissionReport
	s := g.Stats()
	history := g.History()

	s.TotalCompletions++
	s.CurrentStreakCount++
	s.MaxStreak = max(s.MaxStreak, s.CurrentStreakCount)
	at := now
	s.LastCheckIn = &at
	s.LastMissionTime = &at

	hour := now.Hour()
	switch {
	case hour < nightEndHour:
		s.NightCompletions++
	case hour < earlyEndHour:
		s.EarlyCompletions++
	}

	history = append(history, domain.StreakHistoryEntry{
		Date: domain.ISODay(now), Completed: true, Time: now, Hour: hour,
	})

	if perfectRun(history, perfectWeekLen) {
		s.PerfectWeeks++
		report.PerfectWeek = true
		g.notifier.Notify("¡Semana perfecta completada! 📅", domain.NotifySuccess,
			domain.NotifyOptions{Duration: 5 * time.Second})
	}

	report.Unlocked = g.unlockAchievements(now, &s)
	report.LevelUps = g.gainExp(&s, g.rules.ExpPerMission)
	report.ChallengesRefreshed = g.refreshChallenges(now)

	g.saveStats(s)
	g.store.Set(KeyHistory, history)

	g.log.Debug().
		Int("total", s.TotalCompletions).
		Int("current", s.CurrentStreakCount).
		Int("level", s.Level).
		Int("unlocked", len(report.Unlocked)).
		Msg("mission recorded")
	return report
}

// RecordStreakBreak updates stats after the streak engine broke the streak.
// A break of a streak of at least ComebackThreshold counts as a comeback.
func (g *GamificationEngine) RecordStreakBreak(now time.Time) {
	s := g.Stats()
	history := g.History()

	if s.CurrentStreakCount >= g.rules.ComebackThreshold {
		s.Comebacks++
	}
	s.CurrentStreakCount = 0
	history = append(history, domain.StreakHistoryEntry{
		Date: domain.ISODay(now), Completed: false, Time: now, Hour: now.Hour(),
	})

	g.saveStats(s)
	g.store.Set(KeyHistory, history)
	g.log.Debug().Int("comebacks", s.Comebacks).Msg("streak break recorded")
}

// RecordCoinsSpent adds amount to the spent total and evaluates achievements.
func (g *GamificationEngine) RecordCoinsSpent(now time.Time, amount int) []domain.Achievement {
	if amount <= 0 {
		return nil
	}
	return g.bump(now, func(s *domain.GamificationStats) { s.TotalCoinsSpent += amount })
}

// RecordShare counts a progress share and evaluates achievements.
func (g *GamificationEngine) RecordShare(now time.Time) []domain.Achievement {
	return g.bump(now, func(s *domain.GamificationStats) { s.Shares++ })
}

// RecordStreakTypeUsed counts a newly tried streak type and evaluates achievements.
func (g *GamificationEngine) RecordStreakTypeUsed(now time.Time) []domain.Achievement {
	return g.bump(now, func(s *domain.GamificationStats) { s.StreakTypesUsed++ })
}

func (g *GamificationEngine) bump(now time.Time, fn func(*domain.GamificationStats)) []domain.Achievement {
	s := g.Stats()
	fn(&s)
	unlocked := g.unlockAchievements(now, &s)
	g.saveStats(s)
	return unlocked
}

// ─── Daily Challenges ───────────────────────────────────────────────────────

// Challenges returns today's challenge set, drawing a new one if the stored
// set belongs to another day.
func (g *GamificationEngine) Challenges(now time.Time) []domain.DailyChallenge {
	g.refreshChallenges(now)
	return g.storedChallenges()
}

// UpdateChallengeProgress adds increment to a challenge of today's set. The
// transition to completed credits the coin reward and the experience.
func (g *GamificationEngine) UpdateChallengeProgress(now time.Time, id string, increment int) (ChallengeResult, error) {
	if increment <= 0 {
		return ChallengeResult{}, fmt.Errorf("progress %d: %w", increment, domain.ErrInvalidAmount)
	}

	set := g.Challenges(now)
	idx := -1
	for i := range set {
		if set[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ChallengeResult{}, fmt.Errorf("challenge %q: %w", id, domain.ErrChallengeNotFound)
	}
	c := &set[idx]
	if c.Completed {
		return ChallengeResult{Challenge: *c}, fmt.Errorf("challenge %q: %w", id, domain.ErrChallengeCompleted)
	}

	c.Progress += increment
	res := ChallengeResult{}
	if c.Progress >= c.Target {
		c.Progress = c.Target
		c.Completed = true
		res.Completed = true

		s := g.Stats()
		g.wallet.Earn(now, c.Reward.Coins, domain.LedgerChallenge, "challenge "+c.ID)
		s.TotalCoinsEarned += c.Reward.Coins
		res.LevelUps = g.gainExp(&s, c.Reward.Exp)
		res.Unlocked = g.unlockAchievements(now, &s)
		g.saveStats(s)

		metrics.ChallengesCompleted.WithLabelValues(string(c.Type)).Inc()
		g.notifier.Notify(fmt.Sprintf("¡Desafío completado! %s %s", c.Icon, c.Name),
			domain.NotifySuccess, domain.NotifyOptions{Duration: 4 * time.Second})
	}
	g.store.Set(KeyChallenges, set)

	res.Challenge = *c
	return res, nil
}

func (g *GamificationEngine) refreshChallenges(now time.Time) bool {
	day := domain.ISODay(now)
	if !challengesStale(g.storedChallenges(), day) {
		return false
	}
	set := DrawChallenges(g.templates, day, g.rng)
	g.store.Set(KeyChallenges, set)
	g.log.Debug().Str("day", day).Int("count", len(set)).Msg("daily challenges drawn")
	return true
}

func (g *GamificationEngine) storedChallenges() []domain.DailyChallenge {
	var set []domain.DailyChallenge
	g.store.Get(KeyChallenges, &set)
	return set
}

// ─── Views ──────────────────────────────────────────────────────────────────

// Stats loads the statistics record, upgrading older schemas. A missing,
// corrupt or unsupported record reads as fresh stats.
func (g *GamificationEngine) Stats() domain.GamificationStats {
	fresh := domain.NewGamificationStats(g.rules.InitialExpToNext)
	s := fresh
	s.SchemaVersion = 0
	if !g.store.Get(KeyStats, &s) {
		return fresh
	}
	migrated, err := MigrateStats(s, g.rules.InitialExpToNext)
	if err != nil {
		g.log.Warn().Err(err).Msg("ignoring stored stats")
		return fresh
	}
	return migrated
}

// History returns the streak history, oldest first.
func (g *GamificationEngine) History() []domain.StreakHistoryEntry {
	var h []domain.StreakHistoryEntry
	g.store.Get(KeyHistory, &h)
	return h
}

// Achievements returns the catalog with unlock state.
func (g *GamificationEngine) Achievements() []domain.AchievementStatus {
	return AchievementStatuses(g.catalog, g.Stats())
}

// DisplayStats returns the summary shown on status screens.
func (g *GamificationEngine) DisplayStats(now time.Time) domain.DisplayStats {
	s := g.Stats()
	return domain.DisplayStats{
		Level:         s.Level,
		Exp:           s.Exp,
		ExpToNext:     s.ExpToNext,
		Progress:      s.ExpProgressPct(),
		CurrentStreak: s.CurrentStreakCount,
		MaxStreak:     s.MaxStreak,
		TotalStreaks:  s.TotalCompletions,
		Titles:        s.Titles,
		Achievements:  len(s.AchievementsUnlocked),
		Challenges:    g.Challenges(now),
	}
}

// ─── Internals ──────────────────────────────────────────────────────────────

// unlockAchievements evaluates the catalog against a snapshot of s and
// applies the reward of every newly true entry.
func (g *GamificationEngine) unlockAchievements(now time.Time, s *domain.GamificationStats) []domain.Achievement {
	unlocked := NewlyUnlocked(g.catalog, *s)
	for _, a := range unlocked {
		s.AchievementsUnlocked = append(s.AchievementsUnlocked, a.ID)
		if a.Reward.Coins > 0 {
			g.wallet.Earn(now, a.Reward.Coins, domain.LedgerReward, "achievement "+a.ID)
			s.TotalCoinsEarned += a.Reward.Coins
		}
		if a.Reward.Title != "" {
			s.Titles = append(s.Titles, a.Reward.Title)
		}

		metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
		g.log.Info().Str("achievement", a.ID).Int("coins", a.Reward.Coins).Msg("achievement unlocked")
		g.notifier.Notify(fmt.Sprintf("¡Logro desbloqueado! %s %s", a.Icon, a.Name),
			domain.NotifySuccess, domain.NotifyOptions{Duration: 6 * time.Second})
	}
	return unlocked
}

func (g *GamificationEngine) gainExp(s *domain.GamificationStats, amount int) []int {
	reached := ApplyExp(s, amount, g.rules.ExpGrowth, g.rules.InitialExpToNext)
	for _, lvl := range reached {
		metrics.LevelUps.Inc()
		g.log.Info().Int("level", lvl).Msg("level up")
		g.notifier.Notify(fmt.Sprintf("¡Subiste a nivel %d! 🎉", lvl),
			domain.NotifySuccess, domain.NotifyOptions{Duration: 4 * time.Second})
	}
	return reached
}

func (g *GamificationEngine) saveStats(s domain.GamificationStats) {
	s.SchemaVersion = domain.StatsSchemaVersion
	if !g.store.Set(KeyStats, s) {
		g.log.Warn().Msg("stats not persisted")
	}
}

// perfectRun reports whether the last n history entries exist and are all
// completed.
func perfectRun(history []domain.StreakHistoryEntry, n int) bool {
	if len(history) < n {
		return false
	}
	for _, e := range history[len(history)-n:] {
		if !e.Completed {
			return false
		}
	}
	return true
}
