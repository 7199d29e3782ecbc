package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"arbitrage/internal/service"
)

// SettingsHandler отвечает за управление глобальными настройками сканера.
//
// Endpoints:
// - GET /api/settings - получение текущих настроек
// - PATCH /api/settings - обновление настроек
//
// Настройки включают:
// - depth_mode: строить ли графы с учетом глубины ликвидности
// - min_profit_ratio: минимальный множитель прибыли, достойный уведомления
// - scan_interval_ms: интервал между автоматическими сканами
// - max_concurrent_scans: ограничение на число параллельных сканов (null = без ограничений)
// - notification_prefs: какие типы событий сканера поднимают уведомление
type SettingsHandler struct {
	settingsService service.SettingsServiceInterface
}

// NewSettingsHandler создает новый SettingsHandler с внедрением зависимостей.
func NewSettingsHandler(settingsService service.SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// GetSettings возвращает текущие глобальные настройки.
//
// GET /api/settings
//
// Response 200 OK:
//
//	{
//	  "id": 1,
//	  "depth_mode": false,
//	  "min_profit_ratio": 1.001,
//	  "scan_interval_ms": 5000,
//	  "max_concurrent_scans": null,
//	  "notification_prefs": {
//	    "opportunity": true,
//	    "scan_error": true,
//	    "rate_limited": false,
//	    "venue_dropped": true,
//	    "scan_complete": false
//	  },
//	  "updated_at": "2025-12-01T12:00:00Z"
//	}
//
// Response 500 Internal Server Error:
//
//	{"error": "failed to get settings", "details": "..."}
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	settings, err := h.settingsService.GetSettings()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "failed to get settings",
			"details": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(settings)
}

// updateSettingsRequest представляет тело запроса на обновление настроек.
// Все поля опциональны - обновляются только переданные.
type updateSettingsRequest struct {
	DepthMode               *bool                      `json:"depth_mode,omitempty"`
	MinProfitRatio          *float64                   `json:"min_profit_ratio,omitempty"`
	ScanIntervalMs          *int                       `json:"scan_interval_ms,omitempty"`
	MaxConcurrentScans      *int                       `json:"max_concurrent_scans,omitempty"`
	ClearMaxConcurrentScans bool                       `json:"clear_max_concurrent_scans,omitempty"`
	NotificationPrefs       *notificationPrefsUpdate   `json:"notification_prefs,omitempty"`
}

// notificationPrefsUpdate представляет частичное обновление настроек уведомлений.
type notificationPrefsUpdate struct {
	Opportunity  *bool `json:"opportunity,omitempty"`
	ScanError    *bool `json:"scan_error,omitempty"`
	RateLimited  *bool `json:"rate_limited,omitempty"`
	VenueDropped *bool `json:"venue_dropped,omitempty"`
	ScanComplete *bool `json:"scan_complete,omitempty"`
}

// UpdateSettings обновляет глобальные настройки.
//
// PATCH /api/settings
//
// Request Body (все поля опциональны):
//
//	{
//	  "depth_mode": true,
//	  "max_concurrent_scans": 5,
//	  "notification_prefs": {"rate_limited": true}
//	}
//
// Обновляются только переданные поля; notification_prefs поддерживает
// частичное обновление. Для сброса max_concurrent_scans в null используйте
// "clear_max_concurrent_scans": true.
//
// Response 200 OK: обновленные настройки.
//
// Response 400 Bad Request:
//
//	{"error": "validation error", "details": "min_profit_ratio must be >= 1.0"}
//
// Response 500 Internal Server Error:
//
//	{"error": "failed to update settings", "details": "..."}
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	currentSettings, err := h.settingsService.GetSettings()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "failed to get current settings",
			"details": err.Error(),
		})
		return
	}

	updateReq := &service.UpdateSettingsRequest{
		DepthMode:               req.DepthMode,
		MinProfitRatio:          req.MinProfitRatio,
		ScanIntervalMs:          req.ScanIntervalMs,
		MaxConcurrentScans:      req.MaxConcurrentScans,
		ClearMaxConcurrentScans: req.ClearMaxConcurrentScans,
	}

	if req.NotificationPrefs != nil {
		prefs := currentSettings.NotificationPrefs
		if req.NotificationPrefs.Opportunity != nil {
			prefs.Opportunity = *req.NotificationPrefs.Opportunity
		}
		if req.NotificationPrefs.ScanError != nil {
			prefs.ScanError = *req.NotificationPrefs.ScanError
		}
		if req.NotificationPrefs.RateLimited != nil {
			prefs.RateLimited = *req.NotificationPrefs.RateLimited
		}
		if req.NotificationPrefs.VenueDropped != nil {
			prefs.VenueDropped = *req.NotificationPrefs.VenueDropped
		}
		if req.NotificationPrefs.ScanComplete != nil {
			prefs.ScanComplete = *req.NotificationPrefs.ScanComplete
		}
		updateReq.NotificationPrefs = &prefs
	}

	updatedSettings, err := h.settingsService.UpdateSettings(updateReq)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMaxConcurrentScans),
			errors.Is(err, service.ErrInvalidMinProfitRatio),
			errors.Is(err, service.ErrInvalidScanInterval):
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "validation error",
				"details": err.Error(),
			})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "failed to update settings",
				"details": err.Error(),
			})
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updatedSettings)
}
