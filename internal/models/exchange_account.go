package models

import "time"

// VenueAccount представляет опциональные учётные данные площадки.
// Торговых операций модуль не выполняет (см. Non-goals), но часть площадок
// выдаёт более высокие лимиты частоты запросов на рыночные данные
// авторизованным клиентам - отсюда необходимость хранить подписанные
// учётные данные даже в read-only сканере.
type VenueAccount struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"` // bybit, bitget, okx, gate, htx, bingx
	APIKey     string    `json:"-" db:"api_key"` // зашифрован, не возвращается в JSON
	SecretKey  string    `json:"-" db:"secret_key"`
	Passphrase string    `json:"-" db:"passphrase"` // для OKX
	Connected  bool      `json:"connected" db:"connected"`
	LastError  string    `json:"last_error,omitempty" db:"last_error"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
