package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/motorlog/vehicle-maintenance/internal/models"
)

// ConnectMongo connects to MongoDB at the given URI and verifies the
// connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record and returns its generated ID.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, vehicle)
	if err != nil {
		return "", err
	}
	return vehicle.ID.Hex(), nil
}

// FindVehicles queries vehicle records matching the filter.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, filter bson.M) ([]models.Vehicle, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vehicles := make([]models.Vehicle, 0)
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", err)
	}

	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("vehicle not found")
		}
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehicle updates a vehicle by its ID.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}

	vehicle.ID = objectID
	vehicle.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, vehicle)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle not found")
	}
	return nil
}

// UpdateOdometer sets a vehicle's current mileage.
func (c *MongoVehicleCollection) UpdateOdometer(ctx context.Context, id string, mileage float64) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"current_mileage": mileage, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle not found")
	}
	return nil
}

// DeleteVehicle deletes a vehicle by its ID.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("vehicle not found")
	}
	return nil
}

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

// InsertMaintenance inserts a maintenance record and returns its generated ID.
func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, record models.Maintenance) (string, error) {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID.Hex(), nil
}

// FindMaintenance queries maintenance records matching the filter,
// newest service first.
func (c *MongoMaintenanceCollection) FindMaintenance(ctx context.Context, filter bson.M) ([]models.Maintenance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "service_date", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]models.Maintenance, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FindMaintenanceByID finds a maintenance record by its ID.
func (c *MongoMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.Maintenance, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance ID: %w", err)
	}

	var record models.Maintenance
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("maintenance record not found")
		}
		return nil, err
	}
	return &record, nil
}

// UpdateMaintenance updates a maintenance record by its ID.
func (c *MongoMaintenanceCollection) UpdateMaintenance(ctx context.Context, id string, record models.Maintenance) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid maintenance ID: %w", err)
	}

	record.ID = objectID
	record.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, record)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("maintenance record not found")
	}
	return nil
}

// DeleteMaintenance deletes a maintenance record by its ID.
func (c *MongoMaintenanceCollection) DeleteMaintenance(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid maintenance ID: %w", err)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("maintenance record not found")
	}
	return nil
}

// LatestServiceByType returns the most recent completed maintenance
// record per service type for a vehicle. This is the history the
// evaluation core consumes.
func (c *MongoMaintenanceCollection) LatestServiceByType(ctx context.Context, vehicleID string) (map[string]models.Maintenance, error) {
	records, err := c.FindMaintenance(ctx, bson.M{
		"vehicle_id": vehicleID,
		"status":     "completed",
	})
	if err != nil {
		return nil, err
	}

	// Records arrive newest first, so the first per type wins.
	latest := make(map[string]models.Maintenance)
	for _, record := range records {
		if _, ok := latest[record.ServiceType]; !ok {
			latest[record.ServiceType] = record
		}
	}
	return latest, nil
}

// MongoRecommendationCollection implements RecommendationCollection for MongoDB.
type MongoRecommendationCollection struct {
	Collection *mongo.Collection
}

// ReplaceForVehicle drops a vehicle's unacknowledged recommendations and
// inserts the freshly evaluated set, returning the stored records with
// their generated IDs. Acknowledged recommendations stay untouched.
func (c *MongoRecommendationCollection) ReplaceForVehicle(ctx context.Context, vehicleID string, recs []models.Recommendation) ([]models.Recommendation, error) {
	_, err := c.Collection.DeleteMany(ctx, bson.M{
		"vehicle_id":   vehicleID,
		"acknowledged": false,
	})
	if err != nil {
		return nil, err
	}

	if len(recs) == 0 {
		return []models.Recommendation{}, nil
	}

	docs := make([]interface{}, 0, len(recs))
	stored := make([]models.Recommendation, 0, len(recs))
	for _, rec := range recs {
		rec.ID = primitive.NewObjectID()
		rec.VehicleID = vehicleID
		docs = append(docs, rec)
		stored = append(stored, rec)
	}

	if _, err := c.Collection.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return stored, nil
}

// FindByVehicle returns a vehicle's persisted recommendations, most
// urgent evaluation first by recommended date.
func (c *MongoRecommendationCollection) FindByVehicle(ctx context.Context, vehicleID string) ([]models.Recommendation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recommended_date", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	recs := make([]models.Recommendation, 0)
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Acknowledge marks a recommendation as handled.
func (c *MongoRecommendationCollection) Acknowledge(ctx context.Context, id string, at time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid recommendation ID: %w", err)
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"acknowledged": true, "acknowledged_at": at}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("recommendation not found")
	}
	return nil
}
