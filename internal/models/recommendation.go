package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Priority represents the urgency of a maintenance recommendation.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValidPriority checks if a priority is one of the known levels.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Recommendation represents a maintenance action suggested for a vehicle.
// The evaluation core produces these; the store owns persistence,
// deduplication and acknowledgment.
type Recommendation struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleID          string             `json:"vehicle_id" bson:"vehicle_id"`
	Component          string             `json:"component" bson:"component"` // e.g. "Engine Oil"
	Description        string             `json:"description" bson:"description"`
	RecommendedDate    time.Time          `json:"recommended_date" bson:"recommended_date"`       // evaluation date
	RecommendedMileage float64            `json:"recommended_mileage" bson:"recommended_mileage"` // odometer at evaluation
	Priority           Priority           `json:"priority" bson:"priority"`
	Acknowledged       bool               `json:"acknowledged" bson:"acknowledged"`
	AcknowledgedAt     *time.Time         `json:"acknowledged_at,omitempty" bson:"acknowledged_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
}
