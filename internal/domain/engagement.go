// Package domain holds the pure Rachamuffin types: streak state, gamification
// statistics, achievements, daily challenges, avatar evolution, and the
// collaborator interfaces the engines depend on.
package domain

import "time"

// Calendar-day layouts. StreakDayLayout matches the browser's
// Date.toDateString(), which is what older save files carry in "lastCheck".
const (
	StreakDayLayout = "Mon Jan 02 2006"
	ISODayLayout    = "2006-01-02"
)

// StreakDay returns the calendar-day identifier stored as lastCompletionDate.
func StreakDay(t time.Time) string {
	return t.Format(StreakDayLayout)
}

// ISODay returns the YYYY-MM-DD day used by history and challenges.
func ISODay(t time.Time) string {
	return t.Format(ISODayLayout)
}

// ─── Streak ─────────────────────────────────────────────────────────────────

// StreakState is owned by the streak engine.
// LastCompletionDate is empty iff no mission was ever completed (or after reset).
type StreakState struct {
	Streak             int    `json:"streak"`
	Coins              int    `json:"coins"`
	LastCompletionDate string `json:"lastCheck"`
}

// CompletionOutcome distinguishes a fresh completion from a same-day repeat.
type CompletionOutcome string

const (
	OutcomeCompleted        CompletionOutcome = "completed"
	OutcomeAlreadyCompleted CompletionOutcome = "already_completed"
)

// ─── Gamification ───────────────────────────────────────────────────────────

// StatsSchemaVersion is the current GamificationStats schema.
const StatsSchemaVersion = 1

// GamificationStats is the cumulative statistics record. JSON names follow
// the original browser storage so old saves decode unchanged.
type GamificationStats struct {
	SchemaVersion int `json:"schemaVersion"`

	TotalCompletions   int `json:"totalStreaks"`
	MaxStreak          int `json:"maxStreak"`
	CurrentStreakCount int `json:"currentStreak"`

	TotalCoinsEarned int `json:"totalCoinsEarned"`
	TotalCoinsSpent  int `json:"totalCoinsSpent"`

	PerfectWeeks     int `json:"perfectWeeks"`
	PerfectMonths    int `json:"perfectMonths"`
	NightCompletions int `json:"nightCompletions"`
	EarlyCompletions int `json:"earlyCompletions"`
	Comebacks        int `json:"comebacks"`
	StreakTypesUsed  int `json:"streakTypesUsed"`
	Shares           int `json:"shares"`

	Level     int `json:"level"`
	Exp       int `json:"exp"`
	ExpToNext int `json:"expToNext"`

	Titles               []string `json:"titles"`
	AchievementsUnlocked []string `json:"achievementsUnlocked"`

	LastCheckIn     *time.Time `json:"lastCheckIn"`
	LastMissionTime *time.Time `json:"lastMissionTime"`
}

// NewGamificationStats returns the zero-progress record.
func NewGamificationStats(initialExpToNext int) GamificationStats {
	return GamificationStats{
		SchemaVersion:        StatsSchemaVersion,
		Level:                1,
		ExpToNext:            initialExpToNext,
		Titles:               []string{},
		AchievementsUnlocked: []string{},
	}
}

// HasAchievement reports whether id is in the unlocked set.
func (s GamificationStats) HasAchievement(id string) bool {
	for _, u := range s.AchievementsUnlocked {
		if u == id {
			return true
		}
	}
	return false
}

// ExpProgressPct returns exp progress toward the next level (0 to 100).
func (s GamificationStats) ExpProgressPct() float64 {
	if s.ExpToNext <= 0 {
		return 0
	}
	return float64(s.Exp) / float64(s.ExpToNext) * 100.0
}

// StreakHistoryEntry is one record of the append-only streak log.
type StreakHistoryEntry struct {
	Date      string    `json:"date"`
	Completed bool      `json:"completed"`
	Time      time.Time `json:"time"`
	Hour      int       `json:"hour"`
}

// DisplayStats is the summary shown by status screens.
type DisplayStats struct {
	Level         int              `json:"level"`
	Exp           int              `json:"exp"`
	ExpToNext     int              `json:"expToNext"`
	Progress      float64          `json:"progress"`
	CurrentStreak int              `json:"currentStreak"`
	MaxStreak     int              `json:"maxStreak"`
	TotalStreaks  int              `json:"totalStreaks"`
	Titles        []string         `json:"titles"`
	Achievements  int              `json:"achievements"`
	Challenges    []DailyChallenge `json:"challenges"`
}

// ─── Achievements ───────────────────────────────────────────────────────────

// AchievementCategory groups achievements by theme.
type AchievementCategory string

const (
	CatStreak      AchievementCategory = "streak"
	CatConsistency AchievementCategory = "consistency"
	CatCoins       AchievementCategory = "coins"
	CatSpecial     AchievementCategory = "special"
	CatVariety     AchievementCategory = "variety"
	CatSocial      AchievementCategory = "social"
)

// Stat names a numeric field of GamificationStats readable by a Condition.
type Stat string

const (
	StatTotalCompletions Stat = "totalCompletions"
	StatMaxStreak        Stat = "maxStreak"
	StatTotalCoinsEarned Stat = "totalCoinsEarned"
	StatTotalCoinsSpent  Stat = "totalCoinsSpent"
	StatPerfectWeeks     Stat = "perfectWeeks"
	StatPerfectMonths    Stat = "perfectMonths"
	StatNightCompletions Stat = "nightCompletions"
	StatEarlyCompletions Stat = "earlyCompletions"
	StatComebacks        Stat = "comebacks"
	StatStreakTypesUsed  Stat = "streakTypesUsed"
	StatShares           Stat = "shares"
	StatLevel            Stat = "level"
)

// Value reads the named stat. Unknown stats read as 0.
func (s GamificationStats) Value(stat Stat) int {
	switch stat {
	case StatTotalCompletions:
		return s.TotalCompletions
	case StatMaxStreak:
		return s.MaxStreak
	case StatTotalCoinsEarned:
		return s.TotalCoinsEarned
	case StatTotalCoinsSpent:
		return s.TotalCoinsSpent
	case StatPerfectWeeks:
		return s.PerfectWeeks
	case StatPerfectMonths:
		return s.PerfectMonths
	case StatNightCompletions:
		return s.NightCompletions
	case StatEarlyCompletions:
		return s.EarlyCompletions
	case StatComebacks:
		return s.Comebacks
	case StatStreakTypesUsed:
		return s.StreakTypesUsed
	case StatShares:
		return s.Shares
	case StatLevel:
		return s.Level
	}
	return 0
}

// Comparator is the relation a Condition applies.
type Comparator string

const (
	AtLeast Comparator = ">="
	Greater Comparator = ">"
	Equal   Comparator = "=="
)

// Condition is a declarative achievement predicate: Stat Comparator Threshold.
type Condition struct {
	Stat       Stat       `json:"stat"`
	Comparator Comparator `json:"comparator"`
	Threshold  int        `json:"threshold"`
}

// Holds evaluates the condition against a stats snapshot.
func (c Condition) Holds(s GamificationStats) bool {
	v := s.Value(c.Stat)
	switch c.Comparator {
	case AtLeast:
		return v >= c.Threshold
	case Greater:
		return v > c.Threshold
	case Equal:
		return v == c.Threshold
	}
	return false
}

// Reward is granted once, when an achievement unlocks.
type Reward struct {
	Coins int    `json:"coins"`
	Title string `json:"title"`
}

// Achievement is one entry of the static catalog.
type Achievement struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Category    AchievementCategory `json:"category"`
	Condition   Condition           `json:"condition"`
	Reward      Reward              `json:"reward"`
}

// AchievementStatus pairs a catalog entry with its unlock state.
type AchievementStatus struct {
	Achievement
	Unlocked bool `json:"unlocked"`
}

// ─── Daily Challenges ───────────────────────────────────────────────────────

// ChallengeType categorizes a daily challenge.
type ChallengeType string

const (
	ChallengeStreak ChallengeType = "streak"
	ChallengeTime   ChallengeType = "time"
	ChallengeCustom ChallengeType = "custom"
	ChallengeCombo  ChallengeType = "combo"
)

// ChallengeReward is granted when a challenge reaches its target.
type ChallengeReward struct {
	Coins int `json:"coins"`
	Exp   int `json:"exp"`
}

// ChallengeTemplate is one entry of the static challenge catalog.
type ChallengeTemplate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Type        ChallengeType   `json:"type"`
	Target      int             `json:"target"`
	Reward      ChallengeReward `json:"reward"`
}

// DailyChallenge is a drawn challenge for one calendar day.
type DailyChallenge struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Type        ChallengeType   `json:"type"`
	Target      int             `json:"target"`
	Progress    int             `json:"progress"`
	Completed   bool            `json:"completed"`
	Date        string          `json:"date"`
	Reward      ChallengeReward `json:"reward"`
}

// ProgressPct returns completion percentage (0-100).
func (c DailyChallenge) ProgressPct() float64 {
	if c.Target <= 0 {
		return 100.0
	}
	pct := float64(c.Progress) / float64(c.Target) * 100.0
	if pct > 100.0 {
		pct = 100.0
	}
	return pct
}

// ─── Avatar ─────────────────────────────────────────────────────────────────

// EvolutionLevel is one row of the avatar evolution table.
type EvolutionLevel struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	MinStreak int    `json:"minStreak"`
}

// AvatarCustomization holds the cosmetic avatar options.
type AvatarCustomization struct {
	HairColor  string `json:"hairColor"`
	EyeColor   string `json:"eyeColor"`
	Accessory  string `json:"accessory"`
	Clothing   string `json:"clothing"`
	Background string `json:"background"`
	Mood       string `json:"mood"`
	Pet        string `json:"pet"`
	Effect     string `json:"effect"`
}

// Avatar is the persisted "currentAvatar" record.
type Avatar struct {
	Name          string              `json:"name"`
	Style         string              `json:"style"`
	Seed          string              `json:"seed"`
	Customization AvatarCustomization `json:"customization"`
	LastUpdate    int64               `json:"lastUpdate"` // unix millis
}

// AvatarPreset is a saved avatar look, persisted under "avatar_presets".
type AvatarPreset struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    Avatar `json:"avatar"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// AvatarStatus is the avatar view for a given streak.
type AvatarStatus struct {
	Streak    int            `json:"streak"`
	Level     EvolutionLevel `json:"level"`
	Progress  float64        `json:"progress"`
	Triggered bool           `json:"triggered"`
}
