package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err, "Gather()")
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestStreakMetrics(t *testing.T) {
	before := testutil.ToFloat64(MissionsCompleted)
	MissionsCompleted.Inc()
	StreakBreaks.Inc()
	CurrentStreak.Set(5)

	assert.Equal(t, before+1, testutil.ToFloat64(MissionsCompleted))
	assert.Equal(t, 5.0, testutil.ToFloat64(CurrentStreak))

	names := gatheredNames(t)
	for _, name := range []string{
		"rachamuffin_missions_completed_total",
		"rachamuffin_streak_breaks_total",
		"rachamuffin_current_streak",
	} {
		assert.True(t, names[name], "metric %q not found", name)
	}
}

func TestLabelledCounters(t *testing.T) {
	AchievementsUnlocked.WithLabelValues("first_streak").Inc()
	CoinsEarned.WithLabelValues("mission").Add(10)
	CoinsDebited.WithLabelValues("penalty").Add(20)
	Notifications.WithLabelValues("success").Inc()
	ChallengesCompleted.WithLabelValues("streak").Inc()

	assert.GreaterOrEqual(t, testutil.ToFloat64(CoinsEarned.WithLabelValues("mission")), 10.0)

	names := gatheredNames(t)
	for _, name := range []string{
		"rachamuffin_achievements_unlocked_total",
		"rachamuffin_coins_earned_total",
		"rachamuffin_coins_debited_total",
		"rachamuffin_notifications_total",
		"rachamuffin_challenges_completed_total",
	} {
		assert.True(t, names[name], "metric %q not found", name)
	}
}
