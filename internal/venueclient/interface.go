package venueclient

import (
	"context"
	"time"

	"arbitrage/internal/models"
)

// VenueClient - интерфейс клиента площадки, ограниченный поверхностью,
// нужной сканеру: загрузка списка рынков и получение рыночных данных.
// Размещение ордеров, баланс счёта и управление позициями не входят в эту
// поверхность - сканер не торгует (см. Non-goals).
type VenueClient interface {
	// Name возвращает идентификатор площадки (как в venueclient.SupportedVenues).
	Name() string

	// LoadMarkets загружает список рынков и их метаданные (комиссии,
	// лимиты). Должен быть вызван до первого обращения к Markets/Symbols.
	LoadMarkets(ctx context.Context) (*models.Venue, error)

	// FetchTicker получает лучшую котировку по одному символу.
	FetchTicker(ctx context.Context, symbol string) (*models.Ticker, error)

	// FetchTickers получает котировки по всем символам площадки за один
	// запрос, если площадка это поддерживает (см. models.Venue.Has("fetchTickers")).
	FetchTickers(ctx context.Context) (map[string]*models.Ticker, error)

	// FetchOrderBook получает книгу ордеров по символу.
	FetchOrderBook(ctx context.Context, symbol string) (*models.OrderBook, error)

	// Close освобождает соединения клиента. Вызывается ровно один раз на
	// каждом пути завершения скана, включая отмену и ошибку (§5 Resource lifetime).
	Close() error
}

// Credentials - опциональные подписывающие учётные данные. Некоторые
// площадки выдают более высокие лимиты частоты запросов на публичные
// рыночные данные авторизованным клиентам.
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string
}

// defaultTimeout - таймаут одного HTTP-запроса к площадке, если вызывающий
// код не передал свой контекст с дедлайном.
const defaultTimeout = 10 * time.Second
