package venueclient

import (
	"fmt"
	"strings"

	"arbitrage/pkg/ratelimit"
)

// SupportedVenues - список встроенно поддерживаемых площадок.
var SupportedVenues = []string{
	"bybit",
	"bitget",
	"okx",
	"gate",
	"htx",
	"bingx",
}

// NewDefaultLimiter создаёт MultiLimiter с лимитами публичных market-data
// эндпоинтов каждой площадки (см. pkg/ratelimit.RateLimiter doc comment).
func NewDefaultLimiter() *ratelimit.MultiLimiter {
	ml := ratelimit.NewMultiLimiter()
	ml.Add("bybit", 10, 20)
	ml.Add("bitget", 10, 20)
	ml.Add("okx", 20, 40)
	ml.Add("gate", 10, 20)
	ml.Add("htx", 10, 20)
	ml.Add("bingx", 10, 20)
	return ml
}

// New создаёт клиент площадки по имени. creds может быть нулевым значением -
// большинство рыночных данных доступны анонимно. limiter может быть nil -
// тогда запросы не ограничиваются локально (полагаемся только на
// классификацию 429 от самой площадки).
func New(name string, creds Credentials, limiter *ratelimit.MultiLimiter) (VenueClient, error) {
	name = strings.ToLower(name)

	switch name {
	case "bybit":
		return NewBybit(creds, limiter), nil
	case "bitget":
		return NewBitget(creds, limiter), nil
	case "okx":
		return NewOKX(creds, limiter), nil
	case "gate":
		return NewGate(creds, limiter), nil
	case "htx":
		return NewHTX(creds, limiter), nil
	case "bingx":
		return NewBingX(creds, limiter), nil
	default:
		return nil, fmt.Errorf("unsupported venue: %s", name)
	}
}

// IsSupported проверяет, поддерживается ли площадка.
func IsSupported(name string) bool {
	name = strings.ToLower(name)
	for _, supported := range SupportedVenues {
		if name == supported {
			return true
		}
	}
	return false
}
