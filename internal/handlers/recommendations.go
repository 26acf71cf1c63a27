package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/motorlog/vehicle-maintenance/internal/db"
	"github.com/motorlog/vehicle-maintenance/internal/models"
	"github.com/motorlog/vehicle-maintenance/internal/notify"
	"github.com/motorlog/vehicle-maintenance/internal/recommend"
)

// RecommendationHandler serves persisted recommendations and runs
// on-demand evaluations.
type RecommendationHandler struct {
	vehicles        db.VehicleCollection
	records         db.MaintenanceCollection
	recommendations db.RecommendationCollection
	rules           []recommend.CategoryRule
	notifier        notify.Publisher
	now             func() time.Time
}

// NewRecommendationHandler creates a new recommendation handler. The
// clock is injected so evaluations are reproducible in tests.
func NewRecommendationHandler(
	vehicles db.VehicleCollection,
	records db.MaintenanceCollection,
	recommendations db.RecommendationCollection,
	rules []recommend.CategoryRule,
	notifier notify.Publisher,
	now func() time.Time,
) *RecommendationHandler {
	if notifier == nil {
		notifier = notify.NopPublisher{}
	}
	if now == nil {
		now = time.Now
	}
	return &RecommendationHandler{
		vehicles:        vehicles,
		records:         records,
		recommendations: recommendations,
		rules:           rules,
		notifier:        notifier,
		now:             now,
	}
}

// evaluationResponse is the payload for an evaluation run.
type evaluationResponse struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	SkippedRules    []string                `json:"skipped_rules,omitempty"`
}

// ForVehicle handles GET /api/vehicles/{id}/recommendations
func (h *RecommendationHandler) ForVehicle(w http.ResponseWriter, r *http.Request, vehicleID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := h.vehicles.FindVehicleByID(r.Context(), vehicleID); err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	recs, err := h.recommendations.FindByVehicle(r.Context(), vehicleID)
	if err != nil {
		http.Error(w, "Failed to load recommendations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recs)
}

// Evaluate handles POST /api/vehicles/{id}/recommendations/evaluate:
// it rebuilds the vehicle's service state from its maintenance history,
// runs the rule set, and replaces the persisted recommendations.
func (h *RecommendationHandler) Evaluate(w http.ResponseWriter, r *http.Request, vehicleID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), vehicleID)
	if err != nil {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	latest, err := h.records.LatestServiceByType(r.Context(), vehicleID)
	if err != nil {
		http.Error(w, "Failed to load maintenance history", http.StatusInternalServerError)
		return
	}

	state := db.ServiceState(*vehicle, latest)
	recs, skipped := recommend.GenerateRecommendations(state, h.rules, h.now())

	stored, err := h.recommendations.ReplaceForVehicle(r.Context(), vehicleID, recs)
	if err != nil {
		http.Error(w, "Failed to store recommendations", http.StatusInternalServerError)
		return
	}

	for _, rec := range stored {
		if !notify.AlertWorthy(rec.Priority) {
			continue
		}
		if err := h.notifier.PublishRecommendation(rec); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"vehicle_id": rec.VehicleID,
				"component":  rec.Component,
			}).Warn("Failed to publish recommendation alert")
		}
	}

	response := evaluationResponse{Recommendations: stored}
	for _, skip := range skipped {
		log.WithError(skip.Err).WithField("service_type", skip.ServiceType).Warn("Skipped misconfigured maintenance rule")
		response.SkippedRules = append(response.SkippedRules, skip.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Acknowledge handles POST /api/recommendations/{id}/ack
func (h *RecommendationHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/recommendations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "ack" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	if err := h.recommendations.Acknowledge(r.Context(), parts[0], h.now()); err != nil {
		http.Error(w, "Recommendation not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
