package models

import "time"

// PriceLevel - один уровень цены/объёма в книге ордеров.
type PriceLevel struct {
	Price  float64
	Volume float64
}

// OrderBook - снимок книги ордеров по символу на площадке.
// Bids упорядочены по убыванию цены, Asks - по возрастанию, как отдают
// все поддерживаемые клиенты площадок.
type OrderBook struct {
	Symbol    string
	Venue     string
	Bids      []PriceLevel
	Asks      []PriceLevel
	Timestamp time.Time
}

// BestBid возвращает лучший (максимальный) бид; ok=false для пустой книги.
func (ob *OrderBook) BestBid() (PriceLevel, bool) {
	if len(ob.Bids) == 0 {
		return PriceLevel{}, false
	}
	return ob.Bids[0], true
}

// BestAsk возвращает лучший (минимальный) аск; ok=false для пустой книги.
func (ob *OrderBook) BestAsk() (PriceLevel, bool) {
	if len(ob.Asks) == 0 {
		return PriceLevel{}, false
	}
	return ob.Asks[0], true
}
