package websocket

import (
	"time"

	"arbitrage/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeCycle - найден внутрибиржевой или мультиграфовый цикл (§4.5)
	MessageTypeCycle MessageType = "cycle"

	// MessageTypeOpportunity - найдена межбиржевая возможность (C7, §4.6)
	MessageTypeOpportunity MessageType = "opportunity"

	// MessageTypeNotification - новое уведомление сканера (C8)
	MessageTypeNotification MessageType = "notification"

	// MessageTypeStatsUpdate - обновление агрегированной статистики
	MessageTypeStatsUpdate MessageType = "statsUpdate"

	// MessageTypeScanRunUpdate - старт или завершение одноразового скана
	MessageTypeScanRunUpdate MessageType = "scanRunUpdate"
)

// BaseMessage - базовая структура для всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// CycleData - данные найденного цикла: последовательность узлов графа
// обмена, суммарный профит и, при depth-aware поиске, узкое место по объёму.
type CycleData struct {
	Venue      string               `json:"venue"` // имя площадки или "multi-venue"
	Nodes      []string             `json:"nodes"`
	ProfitRate float64              `json:"profit_rate"`
	Depth      *float64             `json:"depth,omitempty"`
	Ledger     []models.LedgerEntry `json:"ledger,omitempty"`
}

// CycleMessage - сообщение о цикле, найденном одноразовым или фоновым сканом.
type CycleMessage struct {
	BaseMessage
	Data *CycleData `json:"data"`
}

// NewCycleMessage создает сообщение о найденном цикле
func NewCycleMessage(venue string, c *models.Cycle) *CycleMessage {
	return &CycleMessage{
		BaseMessage: BaseMessage{Type: MessageTypeCycle, Timestamp: time.Now()},
		Data: &CycleData{
			Venue:      venue,
			Nodes:      c.Nodes,
			ProfitRate: c.ProfitRate,
			Depth:      c.Depth,
			Ledger:     c.Ledger,
		},
	}
}

// OpportunityData - данные межбиржевой возможности: лучший бид/аск по
// площадкам и итоговое отношение профита без учёта комиссий.
type OpportunityData struct {
	Symbol      string                  `json:"symbol"`
	HighestBid  *models.CrossVenueQuote `json:"highest_bid,omitempty"`
	LowestAsk   *models.CrossVenueQuote `json:"lowest_ask,omitempty"`
	ProfitRatio float64                 `json:"profit_ratio"`
}

// OpportunityMessage - сообщение о межбиржевой возможности (C7)
type OpportunityMessage struct {
	BaseMessage
	Data *OpportunityData `json:"data"`
}

// NewOpportunityMessage создает сообщение о межбиржевой возможности
func NewOpportunityMessage(opp *models.Opportunity) *OpportunityMessage {
	return &OpportunityMessage{
		BaseMessage: BaseMessage{Type: MessageTypeOpportunity, Timestamp: time.Now()},
		Data: &OpportunityData{
			Symbol:      opp.Symbol,
			HighestBid:  opp.HighestBid,
			LowestAsk:   opp.LowestAsk,
			ProfitRatio: opp.ProfitRatio(),
		},
	}
}

// NotificationMessage - сообщение о новом уведомлении сканера
//
// Содержит информацию о событии:
// - Тип события (OPPORTUNITY, SCAN_ERROR, VENUE_RATE_LIMITED, VENUE_DROPPED, SCAN_COMPLETE)
// - Уровень важности (info, warn, error)
// - Текст сообщения
// - Дополнительные метаданные
type NotificationMessage struct {
	BaseMessage
	Data *NotificationData `json:"data"`
}

// NotificationData - данные уведомления
type NotificationData struct {
	ID        int                    `json:"id"`
	Type      string                 `json:"notification_type"`
	Severity  string                 `json:"severity"`
	Symbol    *string                `json:"symbol,omitempty"`
	Message   string                 `json:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewNotificationMessage создает сообщение уведомления
func NewNotificationMessage(notif *models.Notification) *NotificationMessage {
	return &NotificationMessage{
		BaseMessage: BaseMessage{Type: MessageTypeNotification, Timestamp: time.Now()},
		Data: &NotificationData{
			ID:        notif.ID,
			Type:      notif.Type,
			Severity:  notif.Severity,
			Symbol:    notif.Symbol,
			Message:   notif.Message,
			Meta:      notif.Meta,
			Timestamp: notif.Timestamp,
		},
	}
}

// StatsUpdateMessage - сообщение об обновлении агрегированной статистики
//
// Отправляется после завершения каждого скана
type StatsUpdateMessage struct {
	BaseMessage
	Data *models.Stats `json:"data"`
}

// NewStatsUpdateMessage создает сообщение обновления статистики
func NewStatsUpdateMessage(stats *models.Stats) *StatsUpdateMessage {
	return &StatsUpdateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeStatsUpdate, Timestamp: time.Now()},
		Data:        stats,
	}
}

// ScanRunData - снимок одного прогона сканера (старт или завершение)
type ScanRunData struct {
	ID                 int      `json:"id"`
	VenuesPolled        int      `json:"venues_polled"`
	SymbolsScanned     int      `json:"symbols_scanned"`
	OpportunitiesFound int      `json:"opportunities_found"`
	Errors             []string `json:"errors,omitempty"`
	Finished           bool     `json:"finished"`
}

// ScanRunMessage - сообщение о старте/завершении одноразового скана
type ScanRunMessage struct {
	BaseMessage
	Data *ScanRunData `json:"data"`
}

// NewScanRunMessage создает сообщение о прогоне сканера
func NewScanRunMessage(run *models.ScanRun) *ScanRunMessage {
	return &ScanRunMessage{
		BaseMessage: BaseMessage{Type: MessageTypeScanRunUpdate, Timestamp: time.Now()},
		Data: &ScanRunData{
			ID:                 run.ID,
			VenuesPolled:       run.VenuesPolled,
			SymbolsScanned:     run.SymbolsScanned,
			OpportunitiesFound: run.OpportunitiesFound,
			Errors:             run.Errors,
			Finished:           !run.FinishedAt.IsZero(),
		},
	}
}
