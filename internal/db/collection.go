package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/motorlog/vehicle-maintenance/internal/models"
)

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error)
	FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	UpdateOdometer(ctx context.Context, id string, mileage float64) error
	DeleteVehicle(ctx context.Context, id string) error
}

// MaintenanceCollection defines the interface for maintenance record operations.
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, record models.Maintenance) (string, error)
	FindMaintenance(ctx context.Context, filter bson.M) ([]models.Maintenance, error)
	FindMaintenanceByID(ctx context.Context, id string) (*models.Maintenance, error)
	UpdateMaintenance(ctx context.Context, id string, record models.Maintenance) error
	DeleteMaintenance(ctx context.Context, id string) error
	LatestServiceByType(ctx context.Context, vehicleID string) (map[string]models.Maintenance, error)
}

// RecommendationCollection defines the interface for persisted recommendations.
// The store, not the evaluation core, owns deduplication: re-evaluating a
// vehicle replaces its unacknowledged recommendations.
type RecommendationCollection interface {
	ReplaceForVehicle(ctx context.Context, vehicleID string, recs []models.Recommendation) ([]models.Recommendation, error)
	FindByVehicle(ctx context.Context, vehicleID string) ([]models.Recommendation, error)
	Acknowledge(ctx context.Context, id string, at time.Time) error
}
