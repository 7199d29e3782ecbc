package service

import (
	"errors"

	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// Ошибки сервиса настроек
var (
	ErrInvalidMaxConcurrentScans = errors.New("max_concurrent_scans must be >= 1 or null")
	ErrInvalidMinProfitRatio     = errors.New("min_profit_ratio must be >= 1.0")
	ErrInvalidScanInterval       = errors.New("scan_interval_ms must be >= 0")
)

// SettingsService предоставляет бизнес-логику для управления глобальными
// настройками сканера.
//
// Отвечает за:
// - Получение и обновление глобальных настроек (depth mode, порог прибыли,
//   интервал скана, лимит параллельных сканов)
// - Валидацию параметров настроек
// - Управление подписками на уведомления
type SettingsService struct {
	settingsRepo SettingsRepositoryInterface
}

// NewSettingsService создает новый экземпляр SettingsService.
func NewSettingsService(settingsRepo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// GetSettings возвращает текущие глобальные настройки.
//
// Если записи в БД нет, создается запись с дефолтными значениями.
func (s *SettingsService) GetSettings() (*models.Settings, error) {
	return s.settingsRepo.Get()
}

// UpdateSettingsRequest представляет запрос на обновление настроек.
// Все поля опциональны - обновляются только переданные.
type UpdateSettingsRequest struct {
	DepthMode          *bool                            `json:"depth_mode,omitempty"`
	MinProfitRatio     *float64                         `json:"min_profit_ratio,omitempty"`
	ScanIntervalMs     *int                             `json:"scan_interval_ms,omitempty"`
	MaxConcurrentScans *int                             `json:"max_concurrent_scans,omitempty"`
	NotificationPrefs  *models.NotificationPreferences `json:"notification_prefs,omitempty"`
	// Флаг для явного сброса max_concurrent_scans в null (без ограничений)
	ClearMaxConcurrentScans bool `json:"clear_max_concurrent_scans,omitempty"`
}

// UpdateSettings обновляет глобальные настройки.
//
// Принимает только те поля, которые нужно обновить.
// Валидирует параметры перед сохранением.
//
// Правила валидации:
// - min_profit_ratio: >= 1.0 (1.0 = без фильтра по прибыли)
// - scan_interval_ms: >= 0
// - max_concurrent_scans: >= 1 или null (без ограничений)
func (s *SettingsService) UpdateSettings(req *UpdateSettingsRequest) (*models.Settings, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}

	if req.DepthMode != nil {
		settings.DepthMode = *req.DepthMode
	}

	if req.MinProfitRatio != nil {
		if *req.MinProfitRatio < 1.0 {
			return nil, ErrInvalidMinProfitRatio
		}
		settings.MinProfitRatio = *req.MinProfitRatio
	}

	if req.ScanIntervalMs != nil {
		if *req.ScanIntervalMs < 0 {
			return nil, ErrInvalidScanInterval
		}
		settings.ScanIntervalMs = *req.ScanIntervalMs
	}

	if req.ClearMaxConcurrentScans {
		settings.MaxConcurrentScans = nil
	} else if req.MaxConcurrentScans != nil {
		if *req.MaxConcurrentScans < 1 {
			return nil, ErrInvalidMaxConcurrentScans
		}
		settings.MaxConcurrentScans = req.MaxConcurrentScans
	}

	if req.NotificationPrefs != nil {
		settings.NotificationPrefs = *req.NotificationPrefs
	}

	if err := s.settingsRepo.Update(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// UpdateNotificationPrefs обновляет только настройки уведомлений.
func (s *SettingsService) UpdateNotificationPrefs(prefs models.NotificationPreferences) error {
	return s.settingsRepo.UpdateNotificationPrefs(prefs)
}
