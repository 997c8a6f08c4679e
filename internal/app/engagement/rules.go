// Package engagement implements the Rachamuffin engines: the daily streak,
// gamification (stats, achievements, levels, daily challenges) and the
// avatar evolution view. Engines hold no state of their own; every
// operation reads what it needs from the Store and writes it back.
package engagement

import "time"

// Persisted keys. The Store adds its own namespace prefix.
const (
	KeyStreak           = "streak"
	KeyLastCheck        = "lastCheck"
	KeyStats            = "gamification_stats"
	KeyHistory          = "streak_history"
	KeyChallenges       = "daily_challenges"
	KeyAvatar           = "currentAvatar"
	KeyLastAvatarUpdate = "lastAvatarUpdate"
	KeyAvatarPresets    = "avatar_presets"
)

// Rules holds the tunable constants of the engines.
type Rules struct {
	MissionReward     int           // coins per completed mission
	BreakPenalty      int           // coins debited when a streak breaks
	BreakWindow       time.Duration // silence after which a streak breaks
	ExpPerMission     int
	ExpGrowth         float64 // expToNext multiplier per level-up
	InitialExpToNext  int
	ComebackThreshold int // streak length at break time that counts as a comeback
}

// DefaultRules returns the standard game rules.
func DefaultRules() Rules {
	return Rules{
		MissionReward:     10,
		BreakPenalty:      20,
		BreakWindow:       48 * time.Hour,
		ExpPerMission:     10,
		ExpGrowth:         1.2,
		InitialExpToNext:  100,
		ComebackThreshold: 7,
	}
}

// withDefaults replaces out-of-range fields with DefaultRules values.
// Zero is a valid reward, penalty, exp gain or comeback threshold; only
// negative values fall back. The break window and the first level's exp
// must be positive, and growth at least 1.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.MissionReward < 0 {
		r.MissionReward = d.MissionReward
	}
	if r.BreakPenalty < 0 {
		r.BreakPenalty = d.BreakPenalty
	}
	if r.BreakWindow <= 0 {
		r.BreakWindow = d.BreakWindow
	}
	if r.ExpPerMission < 0 {
		r.ExpPerMission = d.ExpPerMission
	}
	if r.ExpGrowth < 1 {
		r.ExpGrowth = d.ExpGrowth
	}
	if r.InitialExpToNext <= 0 {
		r.InitialExpToNext = d.InitialExpToNext
	}
	if r.ComebackThreshold < 0 {
		r.ComebackThreshold = d.ComebackThreshold
	}
	return r
}
