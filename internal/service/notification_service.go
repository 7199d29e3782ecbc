package service

import (
	"arbitrage/internal/metrics"
	"arbitrage/internal/models"
	"arbitrage/internal/repository"
)

// NotificationBroadcaster - интерфейс для рассылки уведомлений через WebSocket
type NotificationBroadcaster interface {
	BroadcastNotification(notif *models.Notification)
}

// NotificationService - бизнес-логика для уведомлений о событиях сканера.
//
// Функции:
// - CreateNotification: создать уведомление, если этот тип включен в
//   Settings.NotificationPrefs, сохранить в БД и разослать через WebSocket
// - GetNotifications: получить уведомления с фильтрацией по типам
// - ClearNotifications: очистить журнал
//
// Типы уведомлений: models.NotificationType* (OPPORTUNITY, SCAN_ERROR,
// VENUE_RATE_LIMITED, VENUE_DROPPED, SCAN_COMPLETE).
type NotificationService struct {
	notifRepo    NotificationRepositoryInterface
	settingsRepo SettingsRepositoryInterface
	wsHub        NotificationBroadcaster
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(notifRepo *repository.NotificationRepository, settingsRepo *repository.SettingsRepository) *NotificationService {
	return &NotificationService{
		notifRepo:    notifRepo,
		settingsRepo: settingsRepo,
	}
}

// SetWebSocketHub устанавливает WebSocket hub для broadcast уведомлений.
func (s *NotificationService) SetWebSocketHub(hub NotificationBroadcaster) {
	s.wsHub = hub
}

// enabled проверяет, включен ли данный тип уведомления в текущих настройках.
func enabled(prefs models.NotificationPreferences, notifType string) bool {
	switch notifType {
	case models.NotificationTypeOpportunity:
		return prefs.Opportunity
	case models.NotificationTypeScanError:
		return prefs.ScanError
	case models.NotificationTypeRateLimited:
		return prefs.RateLimited
	case models.NotificationTypeVenueDropped:
		return prefs.VenueDropped
	case models.NotificationTypeScanComplete:
		return prefs.ScanComplete
	default:
		return true
	}
}

// CreateNotification создает уведомление о событии сканера, если этот тип
// включен в настройках. Сохраняет в БД и рассылает через WebSocket.
//
// Возвращает (nil, nil), если уведомление подавлено настройками - это не
// ошибка, вызывающая сторона просто ничего не делает дальше.
func (s *NotificationService) CreateNotification(notifType, severity, message string, symbol *string, meta map[string]interface{}) (*models.Notification, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}
	if !enabled(settings.NotificationPrefs, notifType) {
		return nil, nil
	}

	notif := &models.Notification{
		Type:     notifType,
		Severity: severity,
		Symbol:   symbol,
		Message:  message,
		Meta:     meta,
	}
	if err := s.notifRepo.Create(notif); err != nil {
		return nil, err
	}

	switch notifType {
	case models.NotificationTypeRateLimited:
		if symbol != nil {
			metrics.RecordRateLimit(*symbol)
		}
	case models.NotificationTypeVenueDropped:
		if symbol != nil {
			metrics.RecordVenueDrop(*symbol)
		}
	}

	if s.wsHub != nil {
		s.wsHub.BroadcastNotification(notif)
	}

	return notif, nil
}

// GetNotifications возвращает последние уведомления. Если types непуст,
// результат ограничивается этими типами.
func (s *NotificationService) GetNotifications(types []string, limit int) ([]*models.Notification, error) {
	if len(types) > 0 {
		notifs, err := s.notifRepo.GetByTypes(types)
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(notifs) > limit {
			notifs = notifs[:limit]
		}
		return notifs, nil
	}

	if limit <= 0 {
		limit = 100
	}
	return s.notifRepo.GetRecent(limit)
}

// ClearNotifications очищает журнал уведомлений целиком.
func (s *NotificationService) ClearNotifications() error {
	return s.notifRepo.DeleteAll()
}
