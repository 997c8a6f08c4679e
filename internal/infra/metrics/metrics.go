// Package metrics provides Prometheus metrics for Rachamuffin: missions,
// streak breaks, achievements, levels, coins, and notifications.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Streak ─────────────────────────────────────────────────────────────────

// MissionsCompleted counts successful daily completions.
var MissionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "rachamuffin",
	Name:      "missions_completed_total",
	Help:      "Total successful daily mission completions.",
})

// MissionsRepeated counts same-day repeats that were ignored.
var MissionsRepeated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "rachamuffin",
	Name:      "missions_repeated_total",
	Help:      "Completion attempts ignored because the mission was already done today.",
})

// StreakBreaks counts applied streak breaks.
var StreakBreaks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "rachamuffin",
	Name:      "streak_breaks_total",
	Help:      "Total streak breaks applied.",
})

// CurrentStreak tracks the streak after the last mutation.
var CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "rachamuffin",
	Name:      "current_streak",
	Help:      "Current streak in days.",
})

// ─── Gamification ───────────────────────────────────────────────────────────

// AchievementsUnlocked counts unlocks by achievement id.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rachamuffin",
	Name:      "achievements_unlocked_total",
	Help:      "Achievements unlocked.",
}, []string{"id"})

// LevelUps counts level-up steps.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "rachamuffin",
	Name:      "level_ups_total",
	Help:      "Total level-ups.",
})

// ChallengesCompleted counts completed daily challenges by type.
var ChallengesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rachamuffin",
	Name:      "challenges_completed_total",
	Help:      "Daily challenges completed.",
}, []string{"type"})

// ─── Coins ──────────────────────────────────────────────────────────────────

// CoinsEarned counts coins credited, by ledger kind.
var CoinsEarned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rachamuffin",
	Name:      "coins_earned_total",
	Help:      "Coins credited.",
}, []string{"kind"})

// CoinsDebited counts coins removed, by ledger kind (penalty, spend).
var CoinsDebited = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rachamuffin",
	Name:      "coins_debited_total",
	Help:      "Coins debited.",
}, []string{"kind"})

// CoinsBalance tracks the coin balance after the last mutation.
var CoinsBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "rachamuffin",
	Name:      "coins_balance",
	Help:      "Current coin balance.",
})

// ─── Notifications ──────────────────────────────────────────────────────────

// Notifications counts notifications by level.
var Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rachamuffin",
	Name:      "notifications_total",
	Help:      "Notifications emitted.",
}, []string{"level"})
