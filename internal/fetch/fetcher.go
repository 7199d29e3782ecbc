package fetch

import (
	"context"
	"sync"

	"arbitrage/internal/models"
	"arbitrage/internal/venueclient"
	"arbitrage/pkg/utils"
)

// Fetcher реализует C2 - конкурентный диспетчер рыночных данных поверх
// клиентов площадок. Каждый исходящий вызов независимо отменяем через свой
// контекст; отказ одного рынка не блокирует и не отменяет остальные.
type Fetcher struct {
	logger *utils.Logger
}

func NewFetcher(logger *utils.Logger) *Fetcher {
	return &Fetcher{logger: logger}
}

// FetchTickers возвращает тикеры по всем символам площадки. Если площадка
// поддерживает массовый запрос (Has("fetchTickers")), используется он;
// иначе тикеры собираются конкурентным обходом по одному символу за раз.
func (f *Fetcher) FetchTickers(ctx context.Context, client venueclient.VenueClient, venue *models.Venue) (map[string]*models.Ticker, error) {
	if venue.Has("fetchTickers") {
		tickers, err := client.FetchTickers(ctx)
		if err != nil {
			return nil, err
		}
		return tickers, nil
	}
	return f.fetchTickersOneByOne(ctx, client, venue)
}

type tickerResult struct {
	symbol string
	ticker *models.Ticker
	err    error
}

func (f *Fetcher) fetchTickersOneByOne(ctx context.Context, client venueclient.VenueClient, venue *models.Venue) (map[string]*models.Ticker, error) {
	results := make(chan tickerResult, len(venue.Symbols))
	var wg sync.WaitGroup

	for symbol := range venue.Symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			ticker, err := client.FetchTicker(ctx, symbol)
			results <- tickerResult{symbol: symbol, ticker: ticker, err: err}
		}(symbol)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[string]*models.Ticker, len(venue.Symbols))
	for r := range results {
		if r.err != nil {
			if f.logger != nil && !venueclient.IsRetryable(r.err) {
				f.logger.Sugar().Debugw("fetch: market dropped", "venue", client.Name(), "symbol", r.symbol, "error", r.err)
			}
			continue
		}
		out[r.symbol] = r.ticker
	}
	return out, nil
}

// FetchOrderBook получает книгу ордеров по одному символу на площадке.
// Тонкая обёртка над клиентом - присутствует для единообразия с
// FetchTickers и как точка расширения (логирование, метрики).
func (f *Fetcher) FetchOrderBook(ctx context.Context, client venueclient.VenueClient, symbol string) (*models.OrderBook, error) {
	return client.FetchOrderBook(ctx, symbol)
}

type orderBookResult struct {
	symbol string
	book   *models.OrderBook
	err    error
}

// FetchOrderBooks получает книги ордеров по набору символов на одной
// площадке конкурентно; рынок, вернувший постоянную ошибку, просто не
// попадает в результат - остальные не блокируются.
func (f *Fetcher) FetchOrderBooks(ctx context.Context, client venueclient.VenueClient, symbols []string) (map[string]*models.OrderBook, map[string]error) {
	results := make(chan orderBookResult, len(symbols))
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			book, err := client.FetchOrderBook(ctx, symbol)
			results <- orderBookResult{symbol: symbol, book: book, err: err}
		}(symbol)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	books := make(map[string]*models.OrderBook, len(symbols))
	errs := make(map[string]error)
	for r := range results {
		if r.err != nil {
			errs[r.symbol] = r.err
			continue
		}
		books[r.symbol] = r.book
	}
	return books, errs
}
