package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"simulation/internal/models"
)

// clearSimulationEnv neutralise les variables d'environnement lues par
// LoadConfig pour la durée du test, restauration comprise
func clearSimulationEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearSimulationEnv(t,
		"SERVER_HOST", "SERVER_PORT", "SERVER_DEBUG",
		"DATABASE_NAME", "DATABASE_HOST",
		"SIMULATION_TRADE_WINDOW_MS", "SIMULATION_DEFAULT_FORCE_THRESHOLD", "SIMULATION_MAX_QUEUED_JOBS",
		"RATE_LIMIT_REQUESTS_PER_MINUTE",
		"MONITORING_METRICS_PATH", "LOG_LEVEL", "LOG_FORMAT",
	)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8085 {
		t.Fatalf("server defaults = %s:%d, want 0.0.0.0:8085", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Database.Name != "manager_simulation" {
		t.Fatalf("database name = %q, want %q", cfg.Database.Name, "manager_simulation")
	}
	if cfg.Simulation.TradeWindowMs != models.DefaultTradeWindowMs {
		t.Fatalf("trade window = %d, want %d", cfg.Simulation.TradeWindowMs, models.DefaultTradeWindowMs)
	}
	if cfg.Simulation.DefaultForceThreshold != 2500 {
		t.Fatalf("force threshold = %d, want 2500", cfg.Simulation.DefaultForceThreshold)
	}
	if cfg.Simulation.MaxQueuedJobs != 64 {
		t.Fatalf("max queued jobs = %d, want 64", cfg.Simulation.MaxQueuedJobs)
	}
	if cfg.RateLimit.RequestsPerMinute != 100 {
		t.Fatalf("rate limit = %d, want 100", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Monitoring.MetricsPath != "/metrics" || cfg.Monitoring.HealthPath != "/health" {
		t.Fatalf("monitoring paths = %s/%s, want /metrics and /health", cfg.Monitoring.MetricsPath, cfg.Monitoring.HealthPath)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("logging defaults = %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_DEBUG", "false")
	t.Setenv("DATABASE_NAME", "simdb")
	t.Setenv("SIMULATION_MAX_QUEUED_JOBS", "128")
	t.Setenv("SIMULATION_SYNC_TIMEOUT", "90s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("server port = %d, want the 9090 override", cfg.Server.Port)
	}
	if cfg.Server.Debug {
		t.Fatal("server debug is still true despite the override")
	}
	if cfg.Database.Name != "simdb" {
		t.Fatalf("database name = %q, want the simdb override", cfg.Database.Name)
	}
	if cfg.Simulation.MaxQueuedJobs != 128 {
		t.Fatalf("max queued jobs = %d, want the 128 override", cfg.Simulation.MaxQueuedJobs)
	}
	if cfg.Simulation.SyncTimeout != 90*time.Second {
		t.Fatalf("sync timeout = %s, want 90s", cfg.Simulation.SyncTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q, want the debug override", cfg.Logging.Level)
	}
}

func TestLoadConfig_RejectsBadEnvironment(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"port above range", "SERVER_PORT", "70000", "invalid server port"},
		{"short jwt secret", "JWT_SECRET", "too-short", "JWT secret"},
		{"force threshold below range", "SIMULATION_DEFAULT_FORCE_THRESHOLD", "100", "out of range"},
		{"zero trade window", "SIMULATION_TRADE_WINDOW_MS", "0", "trade window"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := LoadConfig()
			if err == nil {
				t.Fatalf("LoadConfig() accepted %s=%s", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), "invalid configuration") {
				t.Fatalf("error %q does not carry the validation prefix", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func validTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8085},
		Database: DatabaseConfig{
			Host: "localhost", Port: 5432, Name: "manager_simulation",
			User: "postgres", Password: "postgres", SSLMode: "disable",
		},
		JWT: JWTConfig{Secret: strings.Repeat("k", 64)},
		Simulation: SimulationConfig{
			TradeWindowMs:         models.DefaultTradeWindowMs,
			DefaultForceThreshold: 2500,
			MaxQueuedJobs:         64,
			SyncTimeout:           time.Minute,
		},
		RateLimit: RateLimitConfig{RequestsPerMinute: 100},
	}
}

func TestConfig_ValidateBounds(t *testing.T) {
	if err := validTestConfig().Validate(); err != nil {
		t.Fatalf("Validate() rejected a valid config: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"short jwt secret", func(c *Config) { c.JWT.Secret = "short" }, "JWT secret"},
		{"missing database name", func(c *Config) { c.Database.Name = "" }, "database name"},
		{"negative trade window", func(c *Config) { c.Simulation.TradeWindowMs = -1 }, "trade window"},
		{"threshold above range", func(c *Config) { c.Simulation.DefaultForceThreshold = models.ForceThresholdMax + 1 }, "out of range"},
		{"zero queue capacity", func(c *Config) { c.Simulation.MaxQueuedJobs = 0 }, "max queued jobs"},
		{"zero sync timeout", func(c *Config) { c.Simulation.SyncTimeout = 0 }, "sync timeout"},
		{"zero rate limit", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, "requests per minute"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() accepted the %s case", tc.name)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "sim", Password: "pw",
		Name: "matches", SSLMode: "require",
	}
	want := "host=db.internal port=5433 user=sim password=pw dbname=matches sslmode=require"
	if dsn := db.GetDSN(); dsn != want {
		t.Fatalf("GetDSN() = %q, want %q", dsn, want)
	}
}
