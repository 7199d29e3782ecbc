package websocket

import (
	"log"
	"sync"
	"sync/atomic"

	"arbitrage/internal/metrics"
	"arbitrage/internal/models"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ============ sync.Pool для буферов сериализации ============
// Broadcast берёт буфер из пула и возвращает его, но jsonAPI.Marshal
// буфер не использует: каждое сообщение сериализуется в новый срез.

var byteSlicePool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 512)
		return &buf
	},
}

// Hub управляет всеми активными WebSocket соединениями
//
// Назначение:
// Центральный менеджер для broadcast сообщений всем подключенным клиентам.
// Обеспечивает real-time обновления данных на frontend без необходимости polling.
//
// Функции:
// - Регистрация новых WebSocket клиентов
// - Отмена регистрации отключенных клиентов
// - Broadcast сообщений всем активным клиентам
// - Маршрутизация сообщений по типам (cycle, opportunity, notification, statsUpdate, scanRunUpdate)
// - Обработка переподключений
// - Очистка отключенных соединений
// - Потокобезопасная работа с клиентами (sync.RWMutex)
//
// Использование:
// 1. Создать hub: hub := NewHub()
// 2. Запустить в горутине: go hub.Run()
// 3. Отправлять сообщения: hub.Broadcast(message)
// 4. Остановить: hub.Stop()
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]bool

	// Broadcast канал для отправки сообщений всем клиентам
	broadcast chan []byte

	// Регистрация нового клиента
	register chan *Client

	// Отмена регистрации клиента
	unregister chan *Client

	// Сигнал остановки Run()
	done chan struct{}

	// Счетчик сообщений, отброшенных из-за переполненного канала broadcast
	// или медленных клиентов
	dropped int64

	// Mutex для потокобезопасного доступа к clients
	mu sync.RWMutex
}

// NewHub создает новый Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run запускает главный цикл Hub
//
// Должен запускаться в отдельной горутине: go hub.Run()
// Обрабатывает регистрацию, отмену регистрации и broadcast.
// Возвращается, как только вызван Stop().
//
// ОПТИМИЗАЦИЯ: исправлен race condition при удалении клиентов под RLock
// Теперь: копируем список → отправляем без Lock → удаляем под Write Lock
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(count))
			log.Printf("Client connected. Total clients: %d", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(count))
			log.Printf("Client disconnected. Total clients: %d", count)

		case message := <-h.broadcast:
			// ОПТИМИЗАЦИЯ: копируем список клиентов под коротким RLock
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			// Отправляем сообщения БЕЗ блокировки (не блокируем register/unregister)
			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
					// Сообщение отправлено успешно
				default:
					// Клиент не успевает обрабатывать сообщения - помечаем для удаления
					toRemove = append(toRemove, client)
					atomic.AddInt64(&h.dropped, 1)
					metrics.WebSocketDropped.Inc()
				}
			}

			// Удаляем медленных клиентов под Write Lock
			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				h.mu.Unlock()
				log.Printf("Removed %d slow clients. Total clients: %d", len(toRemove), len(h.clients))
			}
		}
	}
}

// Stop останавливает Run(). Безопасно вызывать не более одного раза на Hub.
func (h *Hub) Stop() {
	close(h.done)
}

// DroppedMessages возвращает количество сообщений, отброшенных из-за
// медленных клиентов с момента создания Hub.
func (h *Hub) DroppedMessages() int64 {
	return atomic.LoadInt64(&h.dropped)
}

// Broadcast сериализует message через jsoniter и отправляет всем
// подключенным клиентам. Если канал broadcast переполнен (Run не успевает
// разбирать очередь), сообщение отбрасывается, а не блокирует вызывающего.
func (h *Hub) Broadcast(message interface{}) {
	bufPtr := byteSlicePool.Get().(*[]byte)
	defer byteSlicePool.Put(bufPtr)

	data, err := jsonAPI.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling broadcast message: %v", err)
		return
	}

	h.BroadcastRaw(data)
}

// BroadcastRaw отправляет уже сериализованные байты всем подключенным
// клиентам, не блокируясь, если канал broadcast заполнен.
func (h *Hub) BroadcastRaw(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		atomic.AddInt64(&h.dropped, 1)
		metrics.WebSocketDropped.Inc()
	}
}

// BroadcastCycle отправляет найденный цикл графа обмена (§4.5)
func (h *Hub) BroadcastCycle(venue string, c *models.Cycle) {
	h.Broadcast(NewCycleMessage(venue, c))
}

// BroadcastOpportunity отправляет найденную межбиржевую возможность (C7)
func (h *Hub) BroadcastOpportunity(opportunity *models.Opportunity) {
	h.Broadcast(NewOpportunityMessage(opportunity))
}

// BroadcastNotification отправляет новое уведомление сканера (C8)
func (h *Hub) BroadcastNotification(notification *models.Notification) {
	h.Broadcast(NewNotificationMessage(notification))
}

// BroadcastStatsUpdate отправляет обновление агрегированной статистики
func (h *Hub) BroadcastStatsUpdate(stats *models.Stats) {
	h.Broadcast(NewStatsUpdateMessage(stats))
}

// BroadcastScanRun отправляет старт/завершение одноразового скана
func (h *Hub) BroadcastScanRun(run *models.ScanRun) {
	h.Broadcast(NewScanRunMessage(run))
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
