package models

import "time"

// CrossVenueQuote - котировка одной площадки, участвующая в межбиржевом
// сравнении цен символа (C7).
type CrossVenueQuote struct {
	Venue  string
	Price  float64
	Volume float64
}

// Opportunity - межбиржевая возможность (inter-venue): лучший бид на одной
// площадке превышает лучший аск на другой для одного и того же символа.
// HighestBid/LowestAsk - nil, пока соответствующая сторона ещё не получена
// от всех площадок символа (см. §4.7 state machine).
type Opportunity struct {
	Symbol     string
	HighestBid *CrossVenueQuote
	LowestAsk  *CrossVenueQuote
	Timestamp  time.Time
}

// Valuable сообщает, представляет ли пара котировок реальную возможность
// арбитража: обе стороны известны, и бид строго превышает аск.
func (o *Opportunity) Valuable() bool {
	return o.HighestBid != nil && o.LowestAsk != nil && o.HighestBid.Price > o.LowestAsk.Price
}

// ProfitRatio возвращает отношение бида к аску - во сколько раз продажа
// выгоднее покупки, без учёта комиссий. 0, если Valuable() == false.
func (o *Opportunity) ProfitRatio() float64 {
	if !o.Valuable() {
		return 0
	}
	return o.HighestBid.Price / o.LowestAsk.Price
}

// LedgerEntry - один шаг в цепочке конверсий прибыльного цикла (§4.5.5):
// на каком рынке, по какому курсу (без учёта и с учётом комиссии) и с каким
// объёмом произошёл переход.
type LedgerEntry struct {
	Market    string
	NoFeeRate float64
	Fee       float64
	Volume    float64
	TradeType TradeType
}

// Cycle - обнаруженный отрицательный цикл графа обмена (внутрибиржевой или
// межбиржевой, в зависимости от того, какой граф искался): последовательность
// валют Nodes, рёбер Edges между ними, суммарный вес WeightSum и
// соответствующий множитель прибыли ProfitRatio = exp(-WeightSum).
// Depth != nil, если цикл найден depth-aware поиском (§4.5.4) - тогда это
// узкое место по объёму вдоль цикла.
type Cycle struct {
	Nodes      []string
	Edges      []RateEdge
	WeightSum  float64
	ProfitRate float64
	Depth      *float64
	Ledger     []LedgerEntry
}
