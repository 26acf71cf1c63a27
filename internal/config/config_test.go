package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MONGO_URI", "MONGO_DATABASE", "PORT", "JWT_SECRET", "JWT_EXPIRY", "RULES_FILE", "MQTT_BROKER_URL", "EVAL_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "maintenance", cfg.Database)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, time.Hour, cfg.EvalInterval)
	assert.Empty(t, cfg.RulesFile)
	assert.Empty(t, cfg.MQTTBrokerURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRY", "12h")
	t.Setenv("EVAL_INTERVAL", "30m")
	t.Setenv("RULES_FILE", "/etc/maintenance/rules.yaml")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 12*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 30*time.Minute, cfg.EvalInterval)
	assert.Equal(t, "/etc/maintenance/rules.yaml", cfg.RulesFile)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
}
