package engagement

import (
	"math"

	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// ApplyExp adds amount experience to s and performs every level-up it
// crosses. expToNext grows by floor(expToNext * growth) per level.
// Returns the levels reached, in order.
func ApplyExp(s *domain.GamificationStats, amount int, growth float64, initialExpToNext int) []int {
	if amount > 0 {
		s.Exp += amount
	}
	if s.ExpToNext <= 0 {
		s.ExpToNext = initialExpToNext
	}

	var reached []int
	for s.Exp >= s.ExpToNext {
		s.Exp -= s.ExpToNext
		s.Level++
		s.ExpToNext = int(math.Floor(float64(s.ExpToNext) * growth))
		if s.ExpToNext <= 0 {
			s.ExpToNext = initialExpToNext
		}
		reached = append(reached, s.Level)
	}
	return reached
}
