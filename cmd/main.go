package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/motorlog/vehicle-maintenance/internal/auth"
	"github.com/motorlog/vehicle-maintenance/internal/config"
	"github.com/motorlog/vehicle-maintenance/internal/db"
	"github.com/motorlog/vehicle-maintenance/internal/handlers"
	"github.com/motorlog/vehicle-maintenance/internal/middleware"
	"github.com/motorlog/vehicle-maintenance/internal/notify"
	"github.com/motorlog/vehicle-maintenance/internal/recommend"
	"github.com/motorlog/vehicle-maintenance/internal/scheduler"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.Load()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	database := client.Database(cfg.Database)
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	records := &db.MongoMaintenanceCollection{Collection: database.Collection("maintenance")}
	recommendations := &db.MongoRecommendationCollection{Collection: database.Collection("recommendations")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}

	if err := users.EnsureIndexes(context.Background()); err != nil {
		log.WithError(err).Fatal("Failed to create user indexes")
	}

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize auth service")
	}

	rules := loadRules(cfg)
	notifier := buildNotifier(cfg)

	authHandler := handlers.NewAuthHandler(authService, users)
	recHandler := handlers.NewRecommendationHandler(vehicles, records, recommendations, rules, notifier, nil)
	vehicleHandler := handlers.NewVehicleHandler(vehicles, recHandler)
	maintenanceHandler := handlers.NewMaintenanceHandler(records, vehicles)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimit := middleware.NewRateLimitMiddleware()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/profile", authHandler.Profile)
	mux.HandleFunc("/api/vehicles", vehicleHandler.Collection)
	mux.HandleFunc("/api/vehicles/", vehicleHandler.ByID)
	mux.HandleFunc("/api/maintenance", maintenanceHandler.Collection)
	mux.HandleFunc("/api/maintenance/", maintenanceHandler.ByID)
	mux.Handle("/api/recommendations/",
		authMiddleware.RequirePermission("ack_recommendation")(http.HandlerFunc(recHandler.Acknowledge)))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	handler := rateLimit.RateLimit(100, 60)(authMiddleware.Authenticate(mux))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(vehicles, records, recommendations, rules, notifier, cfg.EvalInterval, nil)
	go sched.Run(ctx)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: handler}
	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown error")
	}
	if closer, ok := notifier.(interface{ Close() }); ok {
		closer.Close()
	}
	if err := client.Disconnect(context.Background()); err != nil {
		log.WithError(err).Error("Mongo disconnect error")
	}
}

// loadRules reads the rule table from RULES_FILE when set, otherwise
// falls back to the built-in defaults.
func loadRules(cfg config.Config) []recommend.CategoryRule {
	if cfg.RulesFile == "" {
		return config.DefaultRules()
	}
	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		log.WithError(err).WithField("file", cfg.RulesFile).Fatal("Failed to load maintenance rules")
	}
	log.WithFields(log.Fields{"file": cfg.RulesFile, "rules": len(rules)}).Info("Loaded maintenance rules")
	return rules
}

// buildNotifier connects the MQTT alert publisher when a broker is
// configured. Alerts are optional; without a broker they are dropped.
func buildNotifier(cfg config.Config) notify.Publisher {
	if cfg.MQTTBrokerURL == "" {
		return notify.NopPublisher{}
	}
	publisher, err := notify.NewMQTTPublisher(cfg.MQTTBrokerURL, "maintenance-api")
	if err != nil {
		log.WithError(err).Warn("MQTT broker unavailable, alerts disabled")
		return notify.NopPublisher{}
	}
	log.WithField("broker", cfg.MQTTBrokerURL).Info("Connected to MQTT broker")
	return publisher
}
