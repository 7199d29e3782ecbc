// Package integration contains integration tests for the arbitrage scanner.
//
// These tests verify the correct interaction between components:
// - API integration tests: full HTTP request cycle
// - WebSocket tests: connection, broadcast messaging
// - Database tests: migrations, transactions
//
// The files carry no build tag, so they run together with the unit tests;
// tests that need PostgreSQL skip themselves when it cannot be reached.
// Run with: go test -tags=integration ./tests/integration/...
package integration

import (
	"database/sql"
	"fmt"
	"log"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"arbitrage/internal/api"
	"arbitrage/internal/api/handlers"
	"arbitrage/internal/repository"
	"arbitrage/internal/service"
	"arbitrage/internal/websocket"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

// testEncryptionKey - 32-byte AES-256 key used by CredentialRepository in tests.
const testEncryptionKey = "test-encryption-key-32-bytes!!!!"

// TestConfig contains configuration for integration tests
type TestConfig struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

// TestServer encapsulates all components needed for integration testing
type TestServer struct {
	DB       *sql.DB
	Router   *mux.Router
	Server   *httptest.Server
	Hub      *websocket.Hub
	Repos    *TestRepositories
	Services *TestServices
	Handlers *TestHandlers
	Cleanup  func()
}

// TestRepositories contains all repository instances for testing
type TestRepositories struct {
	Credential   *repository.CredentialRepository
	Notification *repository.NotificationRepository
	Settings     *repository.SettingsRepository
	Blacklist    *repository.BlacklistRepository
	Stats        *repository.StatsRepository
	ScanRun      *repository.ScanRunRepository
}

// TestServices contains all service instances for testing
type TestServices struct {
	Venue        *service.VenueService
	Stats        *service.StatsService
	Settings     *service.SettingsService
	Notification *service.NotificationService
	Blacklist    *service.BlacklistService
}

// TestHandlers contains all handler instances for testing
type TestHandlers struct {
	Stats        *handlers.StatsHandler
	Settings     *handlers.SettingsHandler
	Notification *handlers.NotificationHandler
	Blacklist    *handlers.BlacklistHandler
}

// getTestConfig returns configuration from environment variables or defaults
func getTestConfig() TestConfig {
	return TestConfig{
		DBDriver:   getEnv("TEST_DB_DRIVER", "postgres"),
		DBHost:     getEnv("TEST_DB_HOST", "localhost"),
		DBPort:     getEnv("TEST_DB_PORT", "5432"),
		DBName:     getEnv("TEST_DB_NAME", "arbitrage_test"),
		DBUser:     getEnv("TEST_DB_USER", "postgres"),
		DBPassword: getEnv("TEST_DB_PASSWORD", "postgres"),
		DBSSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SetupTestDB creates a test database connection
func SetupTestDB(t *testing.T) (*sql.DB, func()) {
	config := getTestConfig()

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName, config.DBSSLMode,
	)

	db, err := sql.Open(config.DBDriver, connStr)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil, func() {}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Skipf("Skipping integration test: cannot ping database: %v", err)
		return nil, func() {}
	}

	// Set connection pool settings
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	return db, cleanup
}

// SetupTestServer creates a complete test server with all components
func SetupTestServer(t *testing.T) *TestServer {
	db, dbCleanup := SetupTestDB(t)
	if db == nil {
		return nil
	}

	// Initialize tables
	if err := initTestTables(db); err != nil {
		t.Skipf("Skipping integration test: cannot initialize tables: %v", err)
		return nil
	}

	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	credentialRepo, err := repository.NewCredentialRepository(db, []byte(testEncryptionKey))
	if err != nil {
		t.Fatalf("Failed to init credential repository: %v", err)
	}

	// Create repositories
	repos := &TestRepositories{
		Credential:   credentialRepo,
		Notification: repository.NewNotificationRepository(db),
		Settings:     repository.NewSettingsRepository(db),
		Blacklist:    repository.NewBlacklistRepository(db),
		Stats:        repository.NewStatsRepository(db),
		ScanRun:      repository.NewScanRunRepository(db),
	}

	// Create services
	services := &TestServices{
		Venue:        service.NewVenueService(repos.Credential, nil),
		Stats:        service.NewStatsService(repos.Stats, repos.ScanRun),
		Settings:     service.NewSettingsService(repos.Settings),
		Notification: service.NewNotificationService(repos.Notification, repos.Settings),
		Blacklist:    service.NewBlacklistService(repos.Blacklist),
	}
	// Wire WebSocket hub into the services that broadcast over it
	services.Notification.SetWebSocketHub(hub)
	services.Stats.SetWebSocketHub(hub)

	// Create handlers
	testHandlers := &TestHandlers{
		Stats:        handlers.NewStatsHandler(services.Stats),
		Settings:     handlers.NewSettingsHandler(services.Settings),
		Notification: handlers.NewNotificationHandler(services.Notification),
		Blacklist:    handlers.NewBlacklistHandler(services.Blacklist),
	}

	// Setup router
	deps := &api.Dependencies{
		VenueService:        services.Venue,
		StatsService:        services.Stats,
		SettingsService:     services.Settings,
		NotificationService: services.Notification,
		BlacklistService:    services.Blacklist,
		Hub:                 hub,
	}
	router := api.SetupRoutes(deps)

	// Create test server
	server := httptest.NewServer(router)

	cleanup := func() {
		server.Close()
		hub.Stop()
		cleanupTestTables(db)
		dbCleanup()
	}

	return &TestServer{
		DB:       db,
		Router:   router,
		Server:   server,
		Hub:      hub,
		Repos:    repos,
		Services: services,
		Handlers: testHandlers,
		Cleanup:  cleanup,
	}
}

// initTestTables creates or truncates tables for testing
func initTestTables(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS exchanges (
			id SERIAL PRIMARY KEY,
			name VARCHAR(50) UNIQUE NOT NULL,
			api_key TEXT NOT NULL DEFAULT '',
			secret_key TEXT NOT NULL DEFAULT '',
			passphrase TEXT DEFAULT '',
			connected BOOLEAN DEFAULT false,
			last_error TEXT DEFAULT '',
			updated_at TIMESTAMP DEFAULT NOW(),
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id SERIAL PRIMARY KEY,
			timestamp TIMESTAMP DEFAULT NOW(),
			type VARCHAR(50) NOT NULL,
			severity VARCHAR(10) DEFAULT 'info',
			symbol VARCHAR(20),
			message TEXT NOT NULL,
			meta JSONB DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INT PRIMARY KEY DEFAULT 1,
			depth_mode BOOLEAN DEFAULT false,
			min_profit_ratio DECIMAL(10, 4) DEFAULT 1.0,
			scan_interval_ms INT DEFAULT 0,
			max_concurrent_scans INT DEFAULT 0,
			notification_prefs JSONB DEFAULT '{"opportunity":true,"scan_error":true,"rate_limited":false,"venue_dropped":true,"scan_complete":false}',
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS blacklist (
			id SERIAL PRIMARY KEY,
			target VARCHAR(20) UNIQUE NOT NULL,
			kind VARCHAR(10) NOT NULL DEFAULT 'symbol',
			reason TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id SERIAL PRIMARY KEY,
			started_at TIMESTAMP NOT NULL DEFAULT NOW(),
			finished_at TIMESTAMP,
			venues_polled INT DEFAULT 0,
			symbols_scanned INT DEFAULT 0,
			opportunities_found INT DEFAULT 0,
			errors JSONB DEFAULT '[]'
		)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Insert default settings if not exists
	_, err := db.Exec(`INSERT INTO settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to insert default settings: %w", err)
	}

	return nil
}

// cleanupTestTables truncates all test tables
func cleanupTestTables(db *sql.DB) {
	tables := []string{
		"scan_runs",
		"notifications",
		"blacklist",
		"exchanges",
	}

	for _, table := range tables {
		db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
	}
}

// TruncateTable truncates a specific table for testing
func TruncateTable(db *sql.DB, tableName string) error {
	_, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", tableName))
	return err
}
