package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"arbitrage/internal/models"
)

func TestNewNotificationRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := NewNotificationRepository(db)
	if repo == nil {
		t.Fatal("NewNotificationRepository returned nil")
	}
}

func TestNotificationRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	symbol := "BTC/USDT"
	n := &models.Notification{
		Type:     models.NotificationTypeOpportunity,
		Severity: models.SeverityInfo,
		Symbol:   &symbol,
		Message:  "profitable cycle found",
	}

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(sqlmock.AnyArg(), models.NotificationTypeOpportunity, models.SeverityInfo, &symbol, "profitable cycle found", []byte(nil)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	if err := (&NotificationRepository{db: db}).Create(n); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if n.ID != 1 {
		t.Errorf("expected ID 1, got %d", n.ID)
	}
}

func TestNotificationRepositoryGetRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "timestamp", "type", "severity", "symbol", "message", "meta"}).
		AddRow(2, now, models.NotificationTypeScanComplete, models.SeverityInfo, nil, "scan complete", nil)

	mock.ExpectQuery(`SELECT .+ FROM notifications`).
		WithArgs(5).
		WillReturnRows(rows)

	repo := NewNotificationRepository(db)
	out, err := repo.GetRecent(5)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(out) != 1 || out[0].Type != models.NotificationTypeScanComplete {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestNotificationRepositoryDeleteOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM notifications WHERE timestamp < \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewNotificationRepository(db)
	if err := repo.DeleteOlderThan(time.Now()); err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
}
