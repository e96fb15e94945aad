package progress

import "github.com/ledfit-api/internal/domain"

// Evaluation is the outcome of checking a user's achievements against their totals.
type Evaluation struct {
	// Updated holds every record in display order, with new unlocks applied.
	Updated []domain.Achievement
	// Unlocked holds only the records that moved from locked to unlocked in this call.
	Unlocked []domain.Achievement
}

// Evaluate unlocks every locked achievement whose threshold the totals have reached.
// The input slice is not modified. Records with a non-numeric key or an unknown
// kind are treated as unreachable.
func Evaluate(totals domain.Totals, achievements []domain.Achievement) Evaluation {
	ev := Evaluation{Updated: make([]domain.Achievement, len(achievements))}
	for i, a := range achievements {
		if !a.Unlocked && reached(totals, a) {
			ev.Unlocked = append(ev.Unlocked, a)
			a.Unlocked = true
		}
		ev.Updated[i] = a
	}
	return ev
}

func reached(totals domain.Totals, a domain.Achievement) bool {
	threshold, err := a.Threshold()
	if err != nil {
		return false
	}
	value, ok := metricFor(totals, a.Kind)
	return ok && value >= threshold
}

func metricFor(totals domain.Totals, kind domain.AchievementKind) (float64, bool) {
	switch kind {
	case domain.KindTime:
		return totals.TimeTrained, true
	case domain.KindPlus:
		return float64(totals.SessionsCompleted), true
	case domain.KindCheck:
		return totals.CaloriesBurned, true
	}
	return 0, false
}
