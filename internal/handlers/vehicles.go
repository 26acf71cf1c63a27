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

// VehicleHandler handles vehicle registration and lookup requests.
type VehicleHandler struct {
	vehicles        db.VehicleCollection
	recommendations *RecommendationHandler
}

// NewVehicleHandler creates a new vehicle handler. The recommendation
// handler serves the /api/vehicles/{id}/recommendations subresource.
func NewVehicleHandler(vehicles db.VehicleCollection, recommendations *RecommendationHandler) *VehicleHandler {
	return &VehicleHandler{
		vehicles:        vehicles,
		recommendations: recommendations,
	}
}

// Collection handles /api/vehicles
func (h *VehicleHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ByID handles /api/vehicles/{id} and its subresources:
// {id}/odometer, {id}/recommendations, {id}/recommendations/evaluate
func (h *VehicleHandler) ByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/vehicles/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Vehicle ID required", http.StatusBadRequest)
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		h.byID(w, r, id)
	case len(parts) == 2 && parts[1] == "odometer":
		h.updateOdometer(w, r, id)
	case len(parts) == 2 && parts[1] == "recommendations":
		h.recommendations.ForVehicle(w, r, id)
	case len(parts) == 3 && parts[1] == "recommendations" && parts[2] == "evaluate":
		h.recommendations.Evaluate(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *VehicleHandler) create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var vehicle models.Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if vehicle.Make == "" || vehicle.Model == "" {
		http.Error(w, "Make and model are required", http.StatusBadRequest)
		return
	}
	if vehicle.CurrentMileage < 0 {
		http.Error(w, "Mileage must not be negative", http.StatusBadRequest)
		return
	}
	if vehicle.Status == "" {
		vehicle.Status = "active"
	}

	id, err := h.vehicles.InsertVehicle(r.Context(), vehicle)
	if err != nil {
		http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
		return
	}

	created, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load created vehicle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *VehicleHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if owner := r.URL.Query().Get("owner_id"); owner != "" {
		filter["owner_id"] = owner
	}

	vehicles, err := h.vehicles.FindVehicles(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to list vehicles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicles)
}

func (h *VehicleHandler) byID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
		if err != nil {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(vehicle)

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var vehicle models.Vehicle
		if err := json.Unmarshal(body, &vehicle); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := h.vehicles.UpdateVehicle(r.Context(), id, vehicle); err != nil {
			http.Error(w, "Failed to update vehicle", http.StatusInternalServerError)
			return
		}
		updated, err := h.vehicles.FindVehicleByID(r.Context(), id)
		if err != nil {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)

	case http.MethodDelete:
		if err := h.vehicles.DeleteVehicle(r.Context(), id); err != nil {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *VehicleHandler) updateOdometer(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req struct {
		CurrentMileage float64 `json:"current_mileage"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.CurrentMileage < 0 {
		http.Error(w, "Mileage must not be negative", http.StatusBadRequest)
		return
	}

	if err := h.vehicles.UpdateOdometer(r.Context(), id, req.CurrentMileage); err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
