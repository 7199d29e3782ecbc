package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"arbitrage/internal/service"
)

// NotificationHandler отвечает за журнал уведомлений о событиях сканера.
//
// Endpoints:
// - GET /api/notifications - получение списка уведомлений
// - GET /api/notifications?types=OPPORTUNITY,SCAN_ERROR - с фильтрацией по типам
// - GET /api/notifications?limit=50 - с ограничением количества
// - DELETE /api/notifications - очистка журнала уведомлений
type NotificationHandler struct {
	notificationService service.NotificationServiceInterface
}

// NewNotificationHandler создает новый NotificationHandler с внедрением зависимости
func NewNotificationHandler(notificationService service.NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotificationsResponse представляет ответ списка уведомлений
type GetNotificationsResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	Total         int               `json:"total"`
}

// NotificationDTO представляет уведомление в API
type NotificationDTO struct {
	ID        int                    `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Type      string                 `json:"type"`
	Severity  string                 `json:"severity"`
	Symbol    *string                `json:"symbol,omitempty"`
	Message   string                 `json:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// GetNotifications возвращает список уведомлений с фильтрацией.
//
// GET /api/notifications
//
// Query параметры:
// - types (string): фильтр по типам через запятую (OPPORTUNITY, SCAN_ERROR,
//   VENUE_RATE_LIMITED, VENUE_DROPPED, SCAN_COMPLETE)
// - limit (int): количество записей (по умолчанию 100)
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	typesParam := r.URL.Query().Get("types")
	limitParam := r.URL.Query().Get("limit")

	var types []string
	if typesParam != "" {
		parts := strings.Split(typesParam, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				types = append(types, strings.ToUpper(trimmed))
			}
		}
	}

	limit := 100
	if limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := h.notificationService.GetNotifications(types, limit)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get notifications: "+err.Error())
		return
	}

	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, NotificationDTO{
			ID:        n.ID,
			Timestamp: n.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Type:      n.Type,
			Severity:  n.Severity,
			Symbol:    n.Symbol,
			Message:   n.Message,
			Meta:      n.Meta,
		})
	}

	h.respondWithJSON(w, http.StatusOK, GetNotificationsResponse{
		Notifications: dtos,
		Total:         len(dtos),
	})
}

// ClearNotificationsResponse представляет ответ очистки уведомлений
type ClearNotificationsResponse struct {
	Message string `json:"message"`
}

// ClearNotifications очищает журнал уведомлений.
//
// DELETE /api/notifications
func (h *NotificationHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.ClearNotifications(); err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to clear notifications: "+err.Error())
		return
	}

	h.respondWithJSON(w, http.StatusOK, ClearNotificationsResponse{
		Message: "Notifications cleared successfully",
	})
}

func (h *NotificationHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

func (h *NotificationHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
