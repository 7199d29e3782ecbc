package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"arbitrage/internal/models"
)

// SettingsRepository - работа с таблицей settings: единственная строка
// (id=1) с глобальными параметрами сканера (depth mode, порог прибыли,
// интервал скана, лимит одновременных сканов, подписки на уведомления).
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func defaultNotificationPrefs() models.NotificationPreferences {
	return models.NotificationPreferences{
		Opportunity:  true,
		ScanError:    true,
		RateLimited:  false,
		VenueDropped: true,
		ScanComplete: false,
	}
}

// Get возвращает текущие настройки, создавая запись по умолчанию при
// первом обращении.
func (r *SettingsRepository) Get() (*models.Settings, error) {
	query := `
		SELECT id, depth_mode, min_profit_ratio, scan_interval_ms, max_concurrent_scans, notification_prefs, updated_at
		FROM settings
		WHERE id = 1`

	s := &models.Settings{}
	var prefsJSON []byte
	err := r.db.QueryRow(query).Scan(
		&s.ID,
		&s.DepthMode,
		&s.MinProfitRatio,
		&s.ScanIntervalMs,
		&s.MaxConcurrentScans,
		&prefsJSON,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r.createDefault()
	}
	if err != nil {
		return nil, err
	}
	if len(prefsJSON) > 0 {
		if err := json.Unmarshal(prefsJSON, &s.NotificationPrefs); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (r *SettingsRepository) createDefault() (*models.Settings, error) {
	prefs := defaultNotificationPrefs()
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}

	s := &models.Settings{
		ID:                1,
		MinProfitRatio:    1.0,
		NotificationPrefs: prefs,
		UpdatedAt:         time.Now(),
	}

	_, err = r.db.Exec(
		`INSERT INTO settings (depth_mode, min_profit_ratio, scan_interval_ms, max_concurrent_scans, notification_prefs, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		s.DepthMode, s.MinProfitRatio, s.ScanIntervalMs, s.MaxConcurrentScans, prefsJSON, s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Update сохраняет настройки целиком.
func (r *SettingsRepository) Update(s *models.Settings) error {
	prefsJSON, err := json.Marshal(s.NotificationPrefs)
	if err != nil {
		return err
	}
	s.UpdatedAt = time.Now()

	query := `
		UPDATE settings
		SET depth_mode = $1, min_profit_ratio = $2, scan_interval_ms = $3, max_concurrent_scans = $4, notification_prefs = $5, updated_at = $6
		WHERE id = 1`

	_, err = r.db.Exec(query, s.DepthMode, s.MinProfitRatio, s.ScanIntervalMs, s.MaxConcurrentScans, prefsJSON, s.UpdatedAt)
	return err
}

// UpdateNotificationPrefs обновляет только подписки на уведомления.
func (r *SettingsRepository) UpdateNotificationPrefs(prefs models.NotificationPreferences) error {
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE settings SET notification_prefs = $1, updated_at = $2 WHERE id = 1`, prefsJSON, time.Now())
	return err
}
