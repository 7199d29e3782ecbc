package models

import "time"

// BlacklistKind различает природу исключённой записи - конкретный символ
// пары или площадка целиком.
type BlacklistKind string

const (
	BlacklistKindSymbol BlacklistKind = "symbol"
	BlacklistKindVenue  BlacklistKind = "venue"
)

// BlacklistEntry - запись в списке исключений построения каталога (C1).
// Target хранит либо символ пары (BTCUSDT), либо ID площадки (okx);
// Kind указывает, что именно исключено. build_specific/build_all
// пропускают площадку или символ, для которых Exists(target) вернёт true.
type BlacklistEntry struct {
	ID        int           `json:"id" db:"id"`
	Target    string        `json:"target" db:"target"` // BTCUSDT или okx
	Kind      BlacklistKind `json:"kind" db:"kind"`
	Reason    string        `json:"reason" db:"reason"` // пользовательская заметка
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}
