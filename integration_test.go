package main

import (
	"os"
	"testing"
	"time"

	"taskly/backend/internal/auth"
	"taskly/backend/internal/config"
	"taskly/backend/internal/database"
	"taskly/backend/internal/events"
	"taskly/backend/internal/logging"
	"taskly/backend/internal/monitoring"
	"taskly/backend/internal/router"
	"taskly/backend/internal/services"
)

func TestApplicationStartup(t *testing.T) {
	os.Setenv("ENVIRONMENT", "development")
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("REDIS_HOST", "localhost")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("REDIS_HOST")
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg == nil {
		t.Fatal("Configuration should not be nil")
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Errorf("Expected 7-day token TTL by default, got %v", cfg.Auth.TokenTTL)
	}
}

// The full dependency graph must assemble without touching the database;
// the connector only dials on first use.
func TestRouterAssembly(t *testing.T) {
	os.Setenv("ENVIRONMENT", "development")
	os.Setenv("DB_HOST", "localhost")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("DB_HOST")
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	issuer := auth.NewLocalIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	firebaseVerifier := auth.NewFirebaseVerifier(cfg.Auth.FirebaseProjectID)

	engine := router.New(router.Deps{
		Config:           cfg,
		Connector:        database.NewConnector(cfg),
		TaskService:      services.NewTaskService(),
		AuthService:      services.NewAuthService(),
		RegisterService:  services.NewRegisterService(cfg.Auth.BCryptCost),
		FederatedService: services.NewFederatedService(),
		Verifier:         auth.NewChain(firebaseVerifier, issuer),
		IDTokenVerifier:  firebaseVerifier,
		Issuer:           issuer,
		Bus:              events.NewBus(),
		Metrics:          monitoring.NewMetrics(),
		Health:           monitoring.NewHealthChecker(),
		Logger:           logging.NewNop(),
	})

	if engine == nil {
		t.Fatal("Router should not be nil")
	}

	routes := engine.Routes()
	want := map[string]bool{
		"POST /api/auth/register":  false,
		"POST /api/auth/login":     false,
		"POST /api/auth/federated": false,
		"GET /api/tasks":           false,
		"POST /api/tasks":          false,
		"PUT /api/tasks":           false,
		"DELETE /api/tasks":        false,
	}
	for _, route := range routes {
		key := route.Method + " " + route.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, found := range want {
		if !found {
			t.Errorf("Route %s is not registered", key)
		}
	}
}

func TestConfigurationValues(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
	}{
		{
			name:     "ENVIRONMENT environment variable",
			envVar:   "ENVIRONMENT",
			envValue: "production",
		},
		{
			name:     "TOKEN_ISSUER environment variable",
			envVar:   "TOKEN_ISSUER",
			envValue: "taskly-backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv(tt.envVar, tt.envValue)
			defer os.Unsetenv(tt.envVar)

			if value := os.Getenv(tt.envVar); value != tt.envValue {
				t.Errorf("Expected %v, got %v", tt.envValue, value)
			}
		})
	}
}
