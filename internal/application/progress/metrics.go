package progress

import (
	"fmt"
	"math"

	"github.com/ledfit-api/internal/domain"
)

// ApplyMetrics adds one finished session to the running totals.
// Negative or non-finite deltas are rejected and current is returned unchanged.
func ApplyMetrics(current domain.Totals, delta domain.MetricsDelta) (domain.Totals, error) {
	if !validDelta(delta.Time) {
		return current, fmt.Errorf("time must be a non-negative number: %w", domain.ErrBadRequest)
	}
	if !validDelta(delta.Calories) {
		return current, fmt.Errorf("calories must be a non-negative number: %w", domain.ErrBadRequest)
	}
	return domain.Totals{
		TimeTrained:       current.TimeTrained + delta.Time,
		CaloriesBurned:    current.CaloriesBurned + delta.Calories,
		SessionsCompleted: current.SessionsCompleted + 1,
	}, nil
}

func validDelta(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
