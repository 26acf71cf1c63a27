package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motorlog/vehicle-maintenance/internal/models"
)

func TestClassifyPriority_Thresholds(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  float64
		interval float64
		expected models.Priority
	}{
		{"exactly 150 percent is critical", 1500, 1000, models.PriorityCritical},
		{"just under 150 percent is high", 1499.999, 1000, models.PriorityHigh},
		{"exactly 125 percent is high", 1250, 1000, models.PriorityHigh},
		{"just under 125 percent is medium", 1249, 1000, models.PriorityMedium},
		{"exactly 100 percent is medium", 1000, 1000, models.PriorityMedium},
		{"just under 100 percent is low", 999, 1000, models.PriorityLow},
		{"zero elapsed is low", 0, 1000, models.PriorityLow},
		{"far overdue is critical", 20000, 1000, models.PriorityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priority, err := ClassifyPriority(tt.elapsed, tt.interval)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, priority)
		})
	}
}

func TestClassifyPriority_NegativeElapsedClampsToLow(t *testing.T) {
	// Odometer rollback must never read as overdue.
	priority, err := ClassifyPriority(-500, 1000)
	assert.NoError(t, err)
	assert.Equal(t, models.PriorityLow, priority)
}

func TestClassifyPriority_RejectsNonPositiveInterval(t *testing.T) {
	for _, interval := range []float64{0, -10} {
		_, err := ClassifyPriority(1000, interval)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	}
}

func TestClassifyPriority_Deterministic(t *testing.T) {
	first, err := ClassifyPriority(1200, 1000)
	assert.NoError(t, err)
	second, err := ClassifyPriority(1200, 1000)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}
