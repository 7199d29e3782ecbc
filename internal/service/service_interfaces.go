package service

import (
	"context"

	"arbitrage/internal/models"
)

// Интерфейсы, которыми пользуется internal/api/handlers - позволяют
// подменять сервисы тестовыми двойниками, не завязываясь на конкретные
// *service.Xxx типы.

type BlacklistServiceInterface interface {
	AddToBlacklist(symbol, reason string) (*models.BlacklistEntry, error)
	AddVenueToBlacklist(venueID, reason string) (*models.BlacklistEntry, error)
	GetBlacklist() ([]*models.BlacklistEntry, error)
	RemoveFromBlacklist(target string) error
	GetBySymbol(target string) (*models.BlacklistEntry, error)
	IsBlacklisted(target string) (bool, error)
	UpdateReason(target, reason string) error
	Search(query string) ([]*models.BlacklistEntry, error)
	GetCount() (int, error)
	ClearAll() error
}

type SettingsServiceInterface interface {
	GetSettings() (*models.Settings, error)
	UpdateSettings(req *UpdateSettingsRequest) (*models.Settings, error)
	UpdateNotificationPrefs(prefs models.NotificationPreferences) error
}

type NotificationServiceInterface interface {
	CreateNotification(notifType, severity, message string, symbol *string, meta map[string]interface{}) (*models.Notification, error)
	GetNotifications(types []string, limit int) ([]*models.Notification, error)
	ClearNotifications() error
}

type StatsServiceInterface interface {
	GetStats() (*models.Stats, error)
	GetRecentScanRuns(limit int) ([]*models.ScanRun, error)
	StartScanRun() (*models.ScanRun, error)
	RecordScanCompletion(run *models.ScanRun) error
}

type VenueServiceInterface interface {
	ConnectVenue(ctx context.Context, name, apiKey, secretKey, passphrase string) error
	DisconnectVenue(name string) error
	GetAllVenues() ([]*models.VenueAccount, error)
	GetVenueByName(name string) (*models.VenueAccount, error)
	CountConnected() (int, error)
}

type ScanServiceInterface interface {
	TriggerScan(ctx context.Context, req ScanRequest) (*ScanResult, error)
}

var _ BlacklistServiceInterface = (*BlacklistService)(nil)
var _ SettingsServiceInterface = (*SettingsService)(nil)
var _ NotificationServiceInterface = (*NotificationService)(nil)
var _ StatsServiceInterface = (*StatsService)(nil)
var _ VenueServiceInterface = (*VenueService)(nil)
var _ ScanServiceInterface = (*ScanService)(nil)
