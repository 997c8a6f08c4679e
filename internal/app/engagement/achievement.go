package engagement

import (
	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// ─── Achievement Catalog ────────────────────────────────────────────────────
// 15 achievements across 6 categories. Each has a declarative condition
// evaluated against a GamificationStats snapshot. Catalog order is the
// evaluation order.

func atLeast(stat domain.Stat, n int) domain.Condition {
	return domain.Condition{Stat: stat, Comparator: domain.AtLeast, Threshold: n}
}

// AllAchievements returns the full achievement catalog.
func AllAchievements() []domain.Achievement {
	return []domain.Achievement{
		// Streak
		{ID: "first_streak", Name: "Primeros Pasos", Description: "Completa tu primera misión", Icon: "🎯",
			Category: domain.CatStreak, Condition: atLeast(domain.StatTotalCompletions, 1),
			Reward: domain.Reward{Coins: 50, Title: "Novato"}},
		{ID: "streak_5", Name: "Constante", Description: "Mantén una racha de 5 días", Icon: "🔥",
			Category: domain.CatStreak, Condition: atLeast(domain.StatMaxStreak, 5),
			Reward: domain.Reward{Coins: 100, Title: "Constante"}},
		{ID: "streak_10", Name: "Dedicado", Description: "Mantén una racha de 10 días", Icon: "💪",
			Category: domain.CatStreak, Condition: atLeast(domain.StatMaxStreak, 10),
			Reward: domain.Reward{Coins: 200, Title: "Dedicado"}},
		{ID: "streak_25", Name: "Héroe", Description: "Mantén una racha de 25 días", Icon: "🦸",
			Category: domain.CatStreak, Condition: atLeast(domain.StatMaxStreak, 25),
			Reward: domain.Reward{Coins: 500, Title: "Héroe"}},
		{ID: "streak_50", Name: "Leyenda", Description: "Mantén una racha de 50 días", Icon: "👑",
			Category: domain.CatStreak, Condition: atLeast(domain.StatMaxStreak, 50),
			Reward: domain.Reward{Coins: 1000, Title: "Leyenda"}},
		{ID: "streak_100", Name: "Mítico", Description: "Mantén una racha de 100 días", Icon: "⚡",
			Category: domain.CatStreak, Condition: atLeast(domain.StatMaxStreak, 100),
			Reward: domain.Reward{Coins: 2000, Title: "Mítico"}},

		// Consistency
		{ID: "perfect_week", Name: "Semana Perfecta", Description: "Completa misiones 7 días seguidos", Icon: "📅",
			Category: domain.CatConsistency, Condition: atLeast(domain.StatPerfectWeeks, 1),
			Reward: domain.Reward{Coins: 300, Title: "Perfeccionista"}},
		{ID: "perfect_month", Name: "Mes Perfecto", Description: "Completa misiones 30 días seguidos", Icon: "🌟",
			Category: domain.CatConsistency, Condition: atLeast(domain.StatPerfectMonths, 1),
			Reward: domain.Reward{Coins: 1500, Title: "Maestro"}},

		// Coins
		{ID: "coin_collector", Name: "Coleccionista", Description: "Acumula 1000 monedas", Icon: "💰",
			Category: domain.CatCoins, Condition: atLeast(domain.StatTotalCoinsEarned, 1000),
			Reward: domain.Reward{Coins: 100, Title: "Millonario"}},
		{ID: "big_spender", Name: "Gran Gastador", Description: "Gasta 500 monedas en recompensas", Icon: "🛍️",
			Category: domain.CatCoins, Condition: atLeast(domain.StatTotalCoinsSpent, 500),
			Reward: domain.Reward{Coins: 50, Title: "Comprador"}},

		// Special
		{ID: "comeback_kid", Name: "Regreso Triunfal", Description: "Recupera tu racha después de romperla", Icon: "🔄",
			Category: domain.CatSpecial, Condition: atLeast(domain.StatComebacks, 1),
			Reward: domain.Reward{Coins: 200, Title: "Resiliente"}},
		{ID: "night_owl", Name: "Búho Nocturno", Description: "Completa una misión después de medianoche", Icon: "🦉",
			Category: domain.CatSpecial, Condition: atLeast(domain.StatNightCompletions, 1),
			Reward: domain.Reward{Coins: 75, Title: "Nocturno"}},
		{ID: "early_bird", Name: "Madrugador", Description: "Completa una misión entre las 6 y las 9 AM", Icon: "🐦",
			Category: domain.CatSpecial, Condition: atLeast(domain.StatEarlyCompletions, 1),
			Reward: domain.Reward{Coins: 75, Title: "Madrugador"}},

		// Variety
		{ID: "streak_explorer", Name: "Explorador", Description: "Prueba todos los tipos de rachas", Icon: "🧭",
			Category: domain.CatVariety, Condition: atLeast(domain.StatStreakTypesUsed, 7),
			Reward: domain.Reward{Coins: 300, Title: "Explorador"}},

		// Social
		{ID: "social_butterfly", Name: "Mariposa Social", Description: "Comparte tu progreso", Icon: "🦋",
			Category: domain.CatSocial, Condition: atLeast(domain.StatShares, 1),
			Reward: domain.Reward{Coins: 100, Title: "Social"}},
	}
}

// NewlyUnlocked returns the catalog entries whose condition holds for
// snapshot and that are not yet unlocked, in catalog order. Conditions read
// only the snapshot, so unlocking one entry never changes another's outcome
// within the same pass.
func NewlyUnlocked(catalog []domain.Achievement, snapshot domain.GamificationStats) []domain.Achievement {
	var out []domain.Achievement
	for _, a := range catalog {
		if snapshot.HasAchievement(a.ID) {
			continue
		}
		if a.Condition.Holds(snapshot) {
			out = append(out, a)
		}
	}
	return out
}

// AchievementStatuses pairs every catalog entry with its unlock state.
func AchievementStatuses(catalog []domain.Achievement, stats domain.GamificationStats) []domain.AchievementStatus {
	out := make([]domain.AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		out = append(out, domain.AchievementStatus{Achievement: a, Unlocked: stats.HasAchievement(a.ID)})
	}
	return out
}
