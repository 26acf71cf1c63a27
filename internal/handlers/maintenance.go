package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/motorlog/vehicle-maintenance/internal/db"
	"github.com/motorlog/vehicle-maintenance/internal/models"
)

// MaintenanceHandler handles maintenance record logging requests.
type MaintenanceHandler struct {
	records  db.MaintenanceCollection
	vehicles db.VehicleCollection
}

// NewMaintenanceHandler creates a new maintenance handler.
func NewMaintenanceHandler(records db.MaintenanceCollection, vehicles db.VehicleCollection) *MaintenanceHandler {
	return &MaintenanceHandler{
		records:  records,
		vehicles: vehicles,
	}
}

// Collection handles /api/maintenance
func (h *MaintenanceHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ByID handles /api/maintenance/{id}
func (h *MaintenanceHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/maintenance/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Maintenance ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := h.records.FindMaintenanceByID(r.Context(), id)
		if err != nil {
			http.Error(w, "Maintenance record not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(record)

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var record models.Maintenance
		if err := json.Unmarshal(body, &record); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.records.UpdateMaintenance(r.Context(), id, record); err != nil {
			http.Error(w, "Failed to update maintenance record", http.StatusInternalServerError)
			return
		}
		updated, err := h.records.FindMaintenanceByID(r.Context(), id)
		if err != nil {
			http.Error(w, "Maintenance record not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)

	case http.MethodDelete:
		if err := h.records.DeleteMaintenance(r.Context(), id); err != nil {
			http.Error(w, "Maintenance record not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MaintenanceHandler) create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var record models.Maintenance
	if err := json.Unmarshal(body, &record); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if record.VehicleID == "" || record.ServiceType == "" {
		http.Error(w, "Vehicle ID and service type are required", http.StatusBadRequest)
		return
	}
	if record.ServiceDate.IsZero() {
		http.Error(w, "Service date is required", http.StatusBadRequest)
		return
	}
	if record.Mileage < 0 {
		http.Error(w, "Mileage must not be negative", http.StatusBadRequest)
		return
	}
	if record.Status == "" {
		record.Status = "completed"
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), record.VehicleID)
	if err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	id, err := h.records.InsertMaintenance(r.Context(), record)
	if err != nil {
		http.Error(w, "Failed to create maintenance record", http.StatusInternalServerError)
		return
	}

	// A completed service at a higher mileage advances the odometer.
	if record.Status == "completed" && record.Mileage > vehicle.CurrentMileage {
		if err := h.vehicles.UpdateOdometer(r.Context(), record.VehicleID, record.Mileage); err != nil {
			http.Error(w, "Failed to update vehicle odometer", http.StatusInternalServerError)
			return
		}
	}

	created, err := h.records.FindMaintenanceByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load created record", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *MaintenanceHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	if serviceType := r.URL.Query().Get("service_type"); serviceType != "" {
		filter["service_type"] = serviceType
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	records, err := h.records.FindMaintenance(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to list maintenance records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
