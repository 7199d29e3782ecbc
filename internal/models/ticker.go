package models

import "time"

// Ticker - срез лучшей цены/объёма символа на площадке в момент опроса.
// BidVolume/AskVolume - указатели, т.к. не все площадки отдают объём
// лучшей котировки; depth-режим строителя графа (C3) требует их наличия.
type Ticker struct {
	Symbol    string
	Venue     string
	Bid       float64
	Ask       float64
	BidVolume *float64
	AskVolume *float64
	Timestamp time.Time
}

// Usable сообщает, пригоден ли тикер для построения ребра графа.
// В depth-режиме дополнительно требуются объёмы обеих сторон книги.
func (t *Ticker) Usable(depthMode bool) bool {
	if t.Bid <= 0 || t.Ask <= 0 {
		return false
	}
	if !depthMode {
		return true
	}
	return t.BidVolume != nil && t.AskVolume != nil && *t.BidVolume > 0 && *t.AskVolume > 0
}
