package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motorlog/vehicle-maintenance/internal/models"
)

func TestAlertWorthy(t *testing.T) {
	tests := []struct {
		priority models.Priority
		expected bool
	}{
		{models.PriorityLow, false},
		{models.PriorityMedium, false},
		{models.PriorityHigh, true},
		{models.PriorityCritical, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			assert.Equal(t, tt.expected, AlertWorthy(tt.priority))
		})
	}
}

func TestAlertTopic(t *testing.T) {
	assert.Equal(t, "maintenance/alerts/veh-42", alertTopic("veh-42"))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishRecommendation(models.Recommendation{VehicleID: "veh-1"}))
}
