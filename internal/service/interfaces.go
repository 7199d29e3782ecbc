package service

import (
	"time"

	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// BlacklistRepositoryInterface определяет интерфейс репозитория черного списка
type BlacklistRepositoryInterface interface {
	Create(entry *models.BlacklistEntry) error
	GetAll() ([]*models.BlacklistEntry, error)
	GetByTarget(target string) (*models.BlacklistEntry, error)
	Delete(target string) error
	Exists(target string) (bool, error)
	UpdateReason(target, reason string) error
	Count() (int, error)
	DeleteAll() error
	Search(query string) ([]*models.BlacklistEntry, error)
}

// SettingsRepositoryInterface определяет интерфейс репозитория настроек сканера
type SettingsRepositoryInterface interface {
	Get() (*models.Settings, error)
	Update(settings *models.Settings) error
	UpdateNotificationPrefs(prefs models.NotificationPreferences) error
}

// NotificationRepositoryInterface определяет интерфейс репозитория уведомлений
// о событиях сканера (найдена возможность, ошибка скана, площадка
// отброшена/ограничена, скан завершён).
type NotificationRepositoryInterface interface {
	Create(notif *models.Notification) error
	GetRecent(limit int) ([]*models.Notification, error)
	GetByTypes(types []string) ([]*models.Notification, error)
	DeleteAll() error
	DeleteOlderThan(before time.Time) error
}

// StatsRepositoryInterface определяет интерфейс репозитория статистики сканов.
// Торговых агрегатов нет - модуль не исполняет сделки (Non-goal).
type StatsRepositoryInterface interface {
	GetStats() (*models.Stats, error)
}

// ScanRunRepositoryInterface определяет интерфейс репозитория прогонов
// сканера (C8, GET /api/stats/scans).
type ScanRunRepositoryInterface interface {
	Create(run *models.ScanRun) error
	Finish(run *models.ScanRun) error
	GetRecent(limit int) ([]*models.ScanRun, error)
}

// CredentialRepositoryInterface определяет интерфейс репозитория учётных
// данных площадок - для получения более высоких лимитов частоты запросов
// на рыночные данные, а не для торговли.
type CredentialRepositoryInterface interface {
	Upsert(account *models.VenueAccount) error
	GetByName(name string) (*models.VenueAccount, error)
	GetAll() ([]*models.VenueAccount, error)
	SetConnected(name string, connected bool, lastErr string) error
	Delete(name string) error
}

// Проверяем, что реальные репозитории реализуют интерфейсы
var _ BlacklistRepositoryInterface = (*repository.BlacklistRepository)(nil)
var _ SettingsRepositoryInterface = (*repository.SettingsRepository)(nil)
var _ NotificationRepositoryInterface = (*repository.NotificationRepository)(nil)
var _ StatsRepositoryInterface = (*repository.StatsRepository)(nil)
var _ ScanRunRepositoryInterface = (*repository.ScanRunRepository)(nil)
var _ CredentialRepositoryInterface = (*repository.CredentialRepository)(nil)
