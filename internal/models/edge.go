package models

// TradeType различает направление сделки, представленной ребром графа.
type TradeType int

const (
	TradeSell TradeType = iota
	TradeBuy
)

func (t TradeType) String() string {
	if t == TradeBuy {
		return "buy"
	}
	return "sell"
}

// RateEdge - ребро графа обмена валют (C3/C4): переход From -> To по рынку
// MarketName на площадке Venue. Weight = -ln(rate*(1-fee)) (см. pkg/utils.EdgeWeight),
// уже включает комиссию, поэтому поиск цикла работает с чистым суммированием весов.
// NoFeeRate хранит исходный курс без комиссии - нужен для восстановления
// фактического объёма конверсии при расчёте прибыли (§4.5.5).
type RateEdge struct {
	From       string
	To         string
	Weight     float64
	HasDepth   bool
	Depth      float64
	MarketName string
	Venue      string
	TradeType  TradeType
	Fee        float64
	NoFeeRate  float64
}
