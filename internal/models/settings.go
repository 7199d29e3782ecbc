package models

import "time"

// Settings представляет глобальные настройки сканера
type Settings struct {
	ID                int                     `json:"id" db:"id"`
	DepthMode         bool                    `json:"depth_mode" db:"depth_mode"`                 // учитывать объём при поиске цикла (§4.5.4)
	MinProfitRatio    float64                 `json:"min_profit_ratio" db:"min_profit_ratio"`     // отсечение по ProfitRatio (1.0 = без фильтра)
	ScanIntervalMs    int                     `json:"scan_interval_ms" db:"scan_interval_ms"`     // интервал между сканами
	MaxConcurrentScans *int                   `json:"max_concurrent_scans" db:"max_concurrent_scans"` // null = без ограничений
	NotificationPrefs NotificationPreferences `json:"notification_prefs" db:"notification_prefs"` // JSON в БД
	UpdatedAt         time.Time               `json:"updated_at" db:"updated_at"`
}

// NotificationPreferences представляет настройки уведомлений
type NotificationPreferences struct {
	Opportunity  bool `json:"opportunity"`
	ScanError    bool `json:"scan_error"`
	RateLimited  bool `json:"rate_limited"`
	VenueDropped bool `json:"venue_dropped"`
	ScanComplete bool `json:"scan_complete"`
}
