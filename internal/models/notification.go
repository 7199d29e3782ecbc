package models

import "time"

// Notification представляет уведомление о событии сканера
type Notification struct {
	ID        int                    `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	Type      string                 `json:"type" db:"type"`           // OPPORTUNITY, SCAN_ERROR, VENUE_RATE_LIMITED, VENUE_DROPPED, SCAN_COMPLETE
	Severity  string                 `json:"severity" db:"severity"`   // info, warn, error
	Symbol    *string                `json:"symbol,omitempty" db:"symbol"`
	Message   string                 `json:"message" db:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty" db:"meta"` // дополнительные данные (JSON в БД)
}

// Типы уведомлений
const (
	NotificationTypeOpportunity  = "OPPORTUNITY"        // найдена арбитражная возможность
	NotificationTypeScanError    = "SCAN_ERROR"         // ошибка во время скана
	NotificationTypeRateLimited  = "VENUE_RATE_LIMITED" // площадка временно ограничила частоту запросов
	NotificationTypeVenueDropped = "VENUE_DROPPED"      // площадка исключена из скана из-за постоянной ошибки
	NotificationTypeScanComplete = "SCAN_COMPLETE"      // скан завершён
)

// Уровни важности
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)
