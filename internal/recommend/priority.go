package recommend

import (
	"errors"

	"github.com/motorlog/vehicle-maintenance/internal/models"
)

var (
	// ErrInvalidInterval reports a category rule with a zero or negative
	// service interval. Intervals are validated when rules are loaded;
	// hitting this during evaluation means a rule bypassed loading.
	ErrInvalidInterval = errors.New("maintenance interval must be positive")
)

// ClassifyPriority maps how overdue a maintenance item is to a discrete
// urgency level. elapsed and interval share a unit (miles or months).
// The overdue percentage elapsed/interval*100 is checked against the
// level thresholds from highest to lowest:
//
//	>= 150% critical, >= 125% high, >= 100% medium, otherwise low.
//
// A negative elapsed value (odometer rollback, data-entry error) is
// clamped to zero so it reads as not-yet-due rather than hugely overdue.
func ClassifyPriority(elapsed, interval float64) (models.Priority, error) {
	if interval <= 0 {
		return "", ErrInvalidInterval
	}
	if elapsed < 0 {
		elapsed = 0
	}

	percentage := elapsed / interval * 100

	switch {
	case percentage >= 150:
		return models.PriorityCritical, nil
	case percentage >= 125:
		return models.PriorityHigh, nil
	case percentage >= 100:
		return models.PriorityMedium, nil
	default:
		return models.PriorityLow, nil
	}
}
