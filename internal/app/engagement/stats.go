package engagement

import (
	"fmt"

	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// MigrateStats upgrades a decoded stats record to the current schema.
//
// Version 0 is the unversioned browser record: missing fields are filled,
// negative counters are zeroed and exp above expToNext is normalized
// through the level-up loop. Records newer than this build are rejected.
func MigrateStats(s domain.GamificationStats, initialExpToNext int) (domain.GamificationStats, error) {
	if s.SchemaVersion > domain.StatsSchemaVersion {
		return s, fmt.Errorf("stats schema %d: %w", s.SchemaVersion, domain.ErrUnsupportedVersion)
	}

	if s.SchemaVersion < 1 {
		for _, c := range []*int{
			&s.TotalCompletions, &s.MaxStreak, &s.CurrentStreakCount,
			&s.TotalCoinsEarned, &s.TotalCoinsSpent,
			&s.PerfectWeeks, &s.PerfectMonths, &s.NightCompletions, &s.EarlyCompletions,
			&s.Comebacks, &s.StreakTypesUsed, &s.Shares, &s.Exp,
		} {
			if *c < 0 {
				*c = 0
			}
		}
		if s.Level < 1 {
			s.Level = 1
		}
		if s.MaxStreak < s.CurrentStreakCount {
			s.MaxStreak = s.CurrentStreakCount
		}
		ApplyExp(&s, 0, DefaultRules().ExpGrowth, initialExpToNext)
		s.SchemaVersion = 1
	}

	if s.ExpToNext <= 0 {
		s.ExpToNext = initialExpToNext
	}
	if s.Titles == nil {
		s.Titles = []string{}
	}
	if s.AchievementsUnlocked == nil {
		s.AchievementsUnlocked = []string{}
	}
	return s, nil
}
