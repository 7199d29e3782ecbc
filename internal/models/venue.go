package models

// MarketInfo описывает один рынок (торговую пару) на площадке: комиссию
// тейкера, применяемую при расчёте веса ребра графа.
type MarketInfo struct {
	Taker float64
}

// RateLimitPolicy описывает ограничение частоты запросов к площадке,
// используемое планировщиком опроса (C2/C7) для разнесения запросов по времени.
type RateLimitPolicy struct {
	RequestsPerSecond float64
	Burst             int
}

// Venue - торговая площадка, загруженная через LoadMarkets клиента.
// Symbols и Currencies хранятся как множества (map[string]bool) по аналогии
// с ccxt-подобными клиентами: дешёвая проверка принадлежности без линейного поиска.
type Venue struct {
	ID           string
	Name         string
	Countries    []string
	Capabilities map[string]bool
	Currencies   map[string]bool
	Symbols      map[string]bool
	Markets      map[string]MarketInfo
	RateLimit    RateLimitPolicy
}

// NewVenue создаёт площадку с инициализированными картами, чтобы вызывающий
// код мог сразу писать в Markets/Symbols/Currencies без лишних nil-проверок.
func NewVenue(id, name string) *Venue {
	return &Venue{
		ID:           id,
		Name:         name,
		Capabilities: make(map[string]bool),
		Currencies:   make(map[string]bool),
		Symbols:      make(map[string]bool),
		Markets:      make(map[string]MarketInfo),
	}
}

// Has сообщает, поддерживает ли площадка указанную возможность
// (например "fetchTickers", "fetchOrderBook").
func (v *Venue) Has(capability string) bool {
	return v.Capabilities[capability]
}

// HasSymbol проверяет, торгуется ли символ на площадке.
func (v *Venue) HasSymbol(symbol string) bool {
	return v.Symbols[symbol]
}

// TakerFee возвращает комиссию тейкера для символа; ok=false, если рынок неизвестен.
func (v *Venue) TakerFee(symbol string) (float64, bool) {
	m, ok := v.Markets[symbol]
	if !ok {
		return 0, false
	}
	return m.Taker, true
}
