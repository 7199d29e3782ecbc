package repository

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"arbitrage/internal/models"
)

func TestNewSettingsRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := NewSettingsRepository(db)
	if repo == nil {
		t.Fatal("NewSettingsRepository returned nil")
	}
}

func TestSettingsRepositoryGet_ExistingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	maxScans := 3
	prefsJSON, _ := json.Marshal(defaultNotificationPrefs())
	rows := sqlmock.NewRows([]string{"id", "depth_mode", "min_profit_ratio", "scan_interval_ms", "max_concurrent_scans", "notification_prefs", "updated_at"}).
		AddRow(1, true, 1.0, 30000, &maxScans, prefsJSON, now)

	mock.ExpectQuery(`SELECT .+ FROM settings WHERE id = 1`).WillReturnRows(rows)

	repo := NewSettingsRepository(db)
	s, err := repo.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !s.DepthMode || s.ScanIntervalMs != 30000 {
		t.Errorf("unexpected settings: %+v", s)
	}
	if !s.NotificationPrefs.Opportunity {
		t.Errorf("expected default opportunity notifications on")
	}
}

func TestSettingsRepositoryGet_CreatesDefaultWhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM settings WHERE id = 1`).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs(false, 1.0, 0, (*int)(nil), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewSettingsRepository(db)
	s, err := repo.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.MinProfitRatio != 1.0 {
		t.Errorf("expected default MinProfitRatio 1.0, got %v", s.MinProfitRatio)
	}
}

func TestSettingsRepositoryUpdateNotificationPrefs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE settings SET notification_prefs`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSettingsRepository(db)
	if err := repo.UpdateNotificationPrefs(models.NotificationPreferences{Opportunity: true}); err != nil {
		t.Fatalf("UpdateNotificationPrefs failed: %v", err)
	}
}
