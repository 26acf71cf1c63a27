// Package scheduler periodically re-evaluates maintenance
// recommendations for the whole fleet.
package scheduler

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/motorlog/vehicle-maintenance/internal/db"
	"github.com/motorlog/vehicle-maintenance/internal/models"
	"github.com/motorlog/vehicle-maintenance/internal/notify"
	"github.com/motorlog/vehicle-maintenance/internal/recommend"
)

// Scheduler walks all active vehicles on a fixed interval, rebuilds
// each vehicle's service state, runs the rule set, and persists the
// results. High-urgency recommendations go to the notifier.
type Scheduler struct {
	vehicles        db.VehicleCollection
	records         db.MaintenanceCollection
	recommendations db.RecommendationCollection
	rules           []recommend.CategoryRule
	notifier        notify.Publisher
	interval        time.Duration
	now             func() time.Time
}

// New creates a scheduler. A nil notifier disables alerts and a nil
// clock uses wall time.
func New(
	vehicles db.VehicleCollection,
	records db.MaintenanceCollection,
	recommendations db.RecommendationCollection,
	rules []recommend.CategoryRule,
	notifier notify.Publisher,
	interval time.Duration,
	now func() time.Time,
) *Scheduler {
	if notifier == nil {
		notifier = notify.NopPublisher{}
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		vehicles:        vehicles,
		records:         records,
		recommendations: recommendations,
		rules:           rules,
		notifier:        notifier,
		interval:        interval,
		now:             now,
	}
}

// Run evaluates the fleet immediately, then on every tick until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log.WithField("interval", s.interval).Info("Recommendation scheduler started")

	s.EvaluateAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Recommendation scheduler stopped")
			return
		case <-ticker.C:
			s.EvaluateAll(ctx)
		}
	}
}

// EvaluateAll runs one evaluation pass over all active vehicles and
// returns the total number of recommendations issued. Per-vehicle
// failures are logged and do not stop the pass.
func (s *Scheduler) EvaluateAll(ctx context.Context) int {
	vehicles, err := s.vehicles.FindVehicles(ctx, bson.M{"status": "active"})
	if err != nil {
		log.WithError(err).Error("Failed to list vehicles for evaluation")
		return 0
	}

	total := 0
	for _, vehicle := range vehicles {
		count, err := s.evaluateVehicle(ctx, vehicle)
		if err != nil {
			log.WithError(err).WithField("vehicle_id", vehicle.ID.Hex()).Error("Failed to evaluate vehicle")
			continue
		}
		total += count
	}

	log.WithFields(log.Fields{
		"vehicles":        len(vehicles),
		"recommendations": total,
	}).Info("Fleet evaluation pass completed")
	return total
}

func (s *Scheduler) evaluateVehicle(ctx context.Context, vehicle models.Vehicle) (int, error) {
	latest, err := s.records.LatestServiceByType(ctx, vehicle.ID.Hex())
	if err != nil {
		return 0, err
	}

	state := db.ServiceState(vehicle, latest)
	recs, skipped := recommend.GenerateRecommendations(state, s.rules, s.now())
	for _, skip := range skipped {
		log.WithError(skip.Err).WithField("service_type", skip.ServiceType).Warn("Skipped misconfigured maintenance rule")
	}

	stored, err := s.recommendations.ReplaceForVehicle(ctx, vehicle.ID.Hex(), recs)
	if err != nil {
		return 0, err
	}

	for _, rec := range stored {
		if !notify.AlertWorthy(rec.Priority) {
			continue
		}
		if err := s.notifier.PublishRecommendation(rec); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"vehicle_id": rec.VehicleID,
				"component":  rec.Component,
			}).Warn("Failed to publish recommendation alert")
		}
	}

	return len(stored), nil
}
