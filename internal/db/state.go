package db

import (
	"github.com/motorlog/vehicle-maintenance/internal/models"
	"github.com/motorlog/vehicle-maintenance/internal/recommend"
)

// ServiceState maps a vehicle and its latest-per-type maintenance
// history into the evaluation core's input. Categories with no history
// entry are left absent, which the core treats as never serviced.
func ServiceState(vehicle models.Vehicle, latest map[string]models.Maintenance) recommend.VehicleState {
	history := make(map[string]recommend.CategoryState, len(latest))
	for serviceType, record := range latest {
		date := record.ServiceDate
		mileage := record.Mileage
		history[serviceType] = recommend.CategoryState{
			LastServiceDate:    &date,
			LastServiceMileage: &mileage,
		}
	}

	return recommend.VehicleState{
		VehicleID:      vehicle.ID.Hex(),
		CurrentMileage: vehicle.CurrentMileage,
		History:        history,
	}
}
