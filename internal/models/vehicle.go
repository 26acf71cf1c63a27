package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Vehicle represents a registered vehicle.
type Vehicle struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID        string             `bson:"owner_id" json:"owner_id"`
	VIN            string             `bson:"vin" json:"vin"`
	LicensePlate   string             `bson:"license_plate" json:"license_plate"`
	Make           string             `bson:"make" json:"make"`
	Model          string             `bson:"model" json:"model"`
	Year           int                `bson:"year" json:"year"`
	CurrentMileage float64            `bson:"current_mileage" json:"current_mileage"` // odometer reading, unit-consistent across the system
	Status         string             `bson:"status" json:"status"`                   // "active" or "retired"
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
