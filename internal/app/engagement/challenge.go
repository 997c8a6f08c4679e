package engagement

import (
	"math/rand"

	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// challengePool is the set of possible daily challenge templates.
var challengePool = []domain.ChallengeTemplate{
	{ID: "daily_streak", Name: "Mantén tu Racha", Description: "Completa tu misión diaria", Icon: "🔥",
		Type: domain.ChallengeStreak, Target: 1, Reward: domain.ChallengeReward{Coins: 25, Exp: 10}},
	{ID: "early_bird_daily", Name: "Madrugador del Día", Description: "Completa tu misión antes de las 9 AM", Icon: "🌅",
		Type: domain.ChallengeTime, Target: 1, Reward: domain.ChallengeReward{Coins: 50, Exp: 15}},
	{ID: "motivational_daily", Name: "Motivador", Description: "Escribe una nota motivacional", Icon: "💭",
		Type: domain.ChallengeCustom, Target: 1, Reward: domain.ChallengeReward{Coins: 30, Exp: 12}},
	{ID: "perfect_day_daily", Name: "Día Perfecto", Description: "Completa tu misión y establece una meta para mañana", Icon: "⭐",
		Type: domain.ChallengeCombo, Target: 2, Reward: domain.ChallengeReward{Coins: 75, Exp: 25}},
}

// ChallengeTemplates returns a copy of the template catalog.
func ChallengeTemplates() []domain.ChallengeTemplate {
	return append([]domain.ChallengeTemplate(nil), challengePool...)
}

// DrawChallenges picks 2 or 3 distinct templates uniformly at random and
// instantiates them for day (YYYY-MM-DD).
func DrawChallenges(pool []domain.ChallengeTemplate, day string, rng *rand.Rand) []domain.DailyChallenge {
	count := 2 + rng.Intn(2)
	if count > len(pool) {
		count = len(pool)
	}

	perm := rng.Perm(len(pool))
	out := make([]domain.DailyChallenge, 0, count)
	for _, idx := range perm[:count] {
		t := pool[idx]
		out = append(out, domain.DailyChallenge{
			ID:          t.ID + "_" + day,
			Name:        t.Name,
			Description: t.Description,
			Icon:        t.Icon,
			Type:        t.Type,
			Target:      t.Target,
			Date:        day,
			Reward:      t.Reward,
		})
	}
	return out
}

// challengesStale reports whether the stored set must be redrawn for day.
func challengesStale(set []domain.DailyChallenge, day string) bool {
	return len(set) == 0 || set[0].Date != day
}
