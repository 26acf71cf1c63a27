package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Vehicle mirrors the API's vehicle payload.
type Vehicle struct {
	VIN            string  `json:"vin"`
	LicensePlate   string  `json:"license_plate"`
	Make           string  `json:"make"`
	Model          string  `json:"model"`
	Year           int     `json:"year"`
	CurrentMileage float64 `json:"current_mileage"`
	Status         string  `json:"status"`
}

// Maintenance mirrors the API's maintenance record payload.
type Maintenance struct {
	VehicleID   string    `json:"vehicle_id"`
	ServiceType string    `json:"service_type"`
	Description string    `json:"description"`
	ServiceDate time.Time `json:"service_date"`
	Mileage     float64   `json:"mileage"`
	Cost        float64   `json:"cost"`
	Technician  string    `json:"technician"`
	Status      string    `json:"status"`
}

var makes = []string{"Ford", "Chevrolet", "Toyota", "Honda", "BMW", "Nissan"}
var modelsByMake = map[string][]string{
	"Ford":      {"F-150", "Focus", "Explorer"},
	"Chevrolet": {"Silverado", "Malibu", "Equinox"},
	"Toyota":    {"Camry", "Corolla", "RAV4"},
	"Honda":     {"Civic", "Accord", "CR-V"},
	"BMW":       {"X5", "3 Series", "5 Series"},
	"Nissan":    {"Altima", "Rogue", "Sentra"},
}

var serviceTypes = []string{"oil_change", "tire_rotation", "brake_service", "battery_service", "inspection"}

const vinChars = "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"

func randomVIN() string {
	b := make([]byte, 17)
	for i := range b {
		b[i] = vinChars[rand.Intn(len(vinChars))]
	}
	return string(b)
}

func randomPlate() string {
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	return fmt.Sprintf("%c%c%c-%04d",
		letters[rand.Intn(26)], letters[rand.Intn(26)], letters[rand.Intn(26)], rand.Intn(10000))
}

func randomVehicle() Vehicle {
	mk := makes[rand.Intn(len(makes))]
	return Vehicle{
		VIN:            randomVIN(),
		LicensePlate:   randomPlate(),
		Make:           mk,
		Model:          modelsByMake[mk][rand.Intn(len(modelsByMake[mk]))],
		Year:           2015 + rand.Intn(10),
		CurrentMileage: 20000 + rand.Float64()*80000,
		Status:         "active",
	}
}

// backdatedHistory builds completed service records for a vehicle. Each
// record sits 4-18 months and 3000-15000 miles in the past, so a fleet
// seeded with it contains a mix of due and not-yet-due categories.
func backdatedHistory(vehicleID string, currentMileage float64, now time.Time) []Maintenance {
	history := make([]Maintenance, 0, len(serviceTypes))
	for _, st := range serviceTypes {
		monthsAgo := 4 + rand.Intn(15)
		milesAgo := 3000 + rand.Float64()*12000
		mileage := currentMileage - milesAgo
		if mileage < 0 {
			mileage = 0
		}
		history = append(history, Maintenance{
			VehicleID:   vehicleID,
			ServiceType: st,
			Description: fmt.Sprintf("Seeded %s", st),
			ServiceDate: now.AddDate(0, -monthsAgo, 0),
			Mileage:     mileage,
			Cost:        50 + rand.Float64()*450,
			Technician:  "Seed Script",
			Status:      "completed",
		})
	}
	return history
}

var authToken string

func authorizedRequest(method, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(method, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func postJSON(url string, payload interface{}) (map[string]interface{}, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal payload: %w", err)
	}
	resp, err := authorizedRequest(http.MethodPost, url, data)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, nil
	}
	return result, resp.StatusCode, nil
}

// login obtains a token, registering the seed user first when needed.
func login(apiURL, username, password string) error {
	creds := map[string]string{"username": username, "password": password}

	result, status, err := postJSON(apiURL+"/auth/login", creds)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if status == http.StatusUnauthorized {
		register := map[string]string{
			"username": username,
			"email":    username + "@seed.local",
			"password": password,
			"role":     "manager",
		}
		if _, status, err = postJSON(apiURL+"/auth/register", register); err != nil {
			return fmt.Errorf("register request failed: %w", err)
		}
		if status != http.StatusCreated {
			return fmt.Errorf("registration failed with status: %d", status)
		}
		if result, status, err = postJSON(apiURL+"/auth/login", creds); err != nil {
			return fmt.Errorf("login request failed: %w", err)
		}
	}
	if status != http.StatusOK {
		return fmt.Errorf("login failed with status: %d", status)
	}

	token, ok := result["token"].(string)
	if !ok || token == "" {
		return fmt.Errorf("no token in login response")
	}
	authToken = token
	return nil
}

func createVehicle(apiURL string, v Vehicle) (string, error) {
	result, status, err := postJSON(apiURL+"/vehicles", v)
	if err != nil {
		return "", fmt.Errorf("failed to create vehicle: %w", err)
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("vehicle creation failed with status: %d", status)
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("invalid vehicle ID in response")
	}
	log.WithFields(log.Fields{
		"vehicle_id": id,
		"make":       v.Make,
		"model":      v.Model,
	}).Info("Created vehicle")
	return id, nil
}

func seedHistory(apiURL, vehicleID string, currentMileage float64) {
	for _, record := range backdatedHistory(vehicleID, currentMileage, time.Now()) {
		if _, status, err := postJSON(apiURL+"/maintenance", record); err != nil {
			log.WithError(err).Error("Failed to create maintenance record")
		} else if status != http.StatusCreated {
			log.WithFields(log.Fields{
				"vehicle_id":   vehicleID,
				"service_type": record.ServiceType,
				"status":       status,
			}).Error("Maintenance record rejected")
		}
	}
}

func evaluate(apiURL, vehicleID string) {
	result, status, err := postJSON(apiURL+"/vehicles/"+vehicleID+"/recommendations/evaluate", nil)
	if err != nil {
		log.WithError(err).Error("Evaluation request failed")
		return
	}
	if status != http.StatusOK {
		log.WithFields(log.Fields{"vehicle_id": vehicleID, "status": status}).Error("Evaluation failed")
		return
	}
	count := 0
	if recs, ok := result["recommendations"].([]interface{}); ok {
		count = len(recs)
	}
	log.WithFields(log.Fields{
		"vehicle_id":      vehicleID,
		"recommendations": count,
	}).Info("Evaluated vehicle")
}

func main() {
	fleetSize := 10
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			fleetSize = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	authToken = os.Getenv("SEED_AUTH_TOKEN")
	if authToken == "" {
		username := getEnvDefault("SEED_USERNAME", "seeder")
		password := getEnvDefault("SEED_PASSWORD", "seed-password-1")
		if err := login(apiURL, username, password); err != nil {
			log.WithError(err).Fatal("Failed to authenticate")
		}
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
	}).Info("Seeding fleet")

	created := 0
	for i := 0; i < fleetSize; i++ {
		vehicle := randomVehicle()
		id, err := createVehicle(apiURL, vehicle)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		seedHistory(apiURL, id, vehicle.CurrentMileage)
		evaluate(apiURL, id)
		created++
	}

	if created == 0 {
		log.Error("No vehicles created. Ensure the API is reachable. Exiting.")
		os.Exit(1)
	}
	log.WithField("created_vehicles", created).Info("Seeding completed")
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
