package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/motorlog/vehicle-maintenance/internal/models"
	"github.com/motorlog/vehicle-maintenance/internal/recommend"
)

type fakeVehicles struct {
	vehicles []models.Vehicle
}

func (f *fakeVehicles) InsertVehicle(ctx context.Context, v models.Vehicle) (string, error) {
	return "", nil
}

func (f *fakeVehicles) FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error) {
	return f.vehicles, nil
}

func (f *fakeVehicles) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	return nil, nil
}

func (f *fakeVehicles) UpdateVehicle(ctx context.Context, id string, v models.Vehicle) error {
	return nil
}

func (f *fakeVehicles) UpdateOdometer(ctx context.Context, id string, mileage float64) error {
	return nil
}

func (f *fakeVehicles) DeleteVehicle(ctx context.Context, id string) error { return nil }

type fakeRecords struct {
	history map[string]map[string]models.Maintenance // vehicleID -> latest per type
}

func (f *fakeRecords) InsertMaintenance(ctx context.Context, r models.Maintenance) (string, error) {
	return "", nil
}

func (f *fakeRecords) FindMaintenance(ctx context.Context, filter bson.M) ([]models.Maintenance, error) {
	return nil, nil
}

func (f *fakeRecords) FindMaintenanceByID(ctx context.Context, id string) (*models.Maintenance, error) {
	return nil, nil
}

func (f *fakeRecords) UpdateMaintenance(ctx context.Context, id string, r models.Maintenance) error {
	return nil
}

func (f *fakeRecords) DeleteMaintenance(ctx context.Context, id string) error { return nil }

func (f *fakeRecords) LatestServiceByType(ctx context.Context, vehicleID string) (map[string]models.Maintenance, error) {
	return f.history[vehicleID], nil
}

type fakeRecommendations struct {
	stored map[string][]models.Recommendation
}

func (f *fakeRecommendations) ReplaceForVehicle(ctx context.Context, vehicleID string, recs []models.Recommendation) ([]models.Recommendation, error) {
	if f.stored == nil {
		f.stored = make(map[string][]models.Recommendation)
	}
	f.stored[vehicleID] = recs
	return recs, nil
}

func (f *fakeRecommendations) FindByVehicle(ctx context.Context, vehicleID string) ([]models.Recommendation, error) {
	return f.stored[vehicleID], nil
}

func (f *fakeRecommendations) Acknowledge(ctx context.Context, id string, at time.Time) error {
	return nil
}

type fakePublisher struct {
	published []models.Recommendation
}

func (f *fakePublisher) PublishRecommendation(rec models.Recommendation) error {
	f.published = append(f.published, rec)
	return nil
}

func TestScheduler_EvaluateAll(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rules := []recommend.CategoryRule{
		{ServiceType: "oil_change", Component: "Engine Oil", MileageInterval: 5000, TimeIntervalMonths: 6},
	}

	overdue := models.Vehicle{ID: primitive.NewObjectID(), CurrentMileage: 58000, Status: "active"}
	fresh := models.Vehicle{ID: primitive.NewObjectID(), CurrentMileage: 51000, Status: "active"}

	vehicles := &fakeVehicles{vehicles: []models.Vehicle{overdue, fresh}}
	records := &fakeRecords{history: map[string]map[string]models.Maintenance{
		overdue.ID.Hex(): {
			"oil_change": {ServiceType: "oil_change", ServiceDate: now.AddDate(0, -2, 0), Mileage: 50000},
		},
		fresh.ID.Hex(): {
			"oil_change": {ServiceType: "oil_change", ServiceDate: now.AddDate(0, -1, 0), Mileage: 50000},
		},
	}}
	recs := &fakeRecommendations{}
	publisher := &fakePublisher{}

	s := New(vehicles, records, recs, rules, publisher, time.Hour, func() time.Time { return now })

	total := s.EvaluateAll(context.Background())
	assert.Equal(t, 1, total)

	// 8000 of 5000 miles since the last oil change: critical, alerted.
	stored := recs.stored[overdue.ID.Hex()]
	require.Len(t, stored, 1)
	assert.Equal(t, models.PriorityCritical, stored[0].Priority)
	require.Len(t, publisher.published, 1)

	assert.Empty(t, recs.stored[fresh.ID.Hex()])
}

func TestScheduler_Run_StopsOnCancel(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s := New(&fakeVehicles{}, &fakeRecords{}, &fakeRecommendations{}, nil, nil, 10*time.Millisecond, func() time.Time { return now })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestScheduler_EvaluateAll_EmptyFleet(t *testing.T) {
	s := New(&fakeVehicles{}, &fakeRecords{}, &fakeRecommendations{}, nil, nil, time.Hour, nil)
	assert.Equal(t, 0, s.EvaluateAll(context.Background()))
}
