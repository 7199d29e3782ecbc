package graph

import (
	"context"
	"time"

	"arbitrage/internal/models"
	"arbitrage/internal/venueclient"
	"arbitrage/pkg/utils"
)

const (
	maxMarketLoadRetries = 20
	marketLoadRetryDelay = 100 * time.Millisecond
)

// LoadVenueWithRetry гарантирует, что метаданные рынков площадки (в
// частности комиссии) загружены, прежде чем строить рёбра графа. Это
// единственный блокирующий retry-цикл в ядре: до 20 попыток со сном
// 100мс между ними при rate-limit/unavailable ошибках площадки.
func LoadVenueWithRetry(ctx context.Context, client venueclient.VenueClient, logger *utils.Logger) (*models.Venue, error) {
	return LoadVenueWithRetryConfig(ctx, client, logger, maxMarketLoadRetries, marketLoadRetryDelay)
}

// LoadVenueWithRetryConfig - то же самое, но с числом попыток и паузой,
// взятыми из конфигурации (internal/config.ScannerConfig), вместо
// дефолтов §4.3 (20 попыток, 100мс).
func LoadVenueWithRetryConfig(ctx context.Context, client venueclient.VenueClient, logger *utils.Logger, maxRetries int, retryDelay time.Duration) (*models.Venue, error) {
	if maxRetries <= 0 {
		maxRetries = maxMarketLoadRetries
	}
	if retryDelay <= 0 {
		retryDelay = marketLoadRetryDelay
	}
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		venue, err := client.LoadMarkets(ctx)
		if err == nil {
			return venue, nil
		}
		lastErr = err
		if !retryableForMarketLoad(err) {
			return nil, err
		}
		if logger != nil {
			logger.Sugar().Debugw("graph: market load retry", "venue", client.Name(), "attempt", attempt+1, "error", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, lastErr
}

func retryableForMarketLoad(err error) bool {
	ve, ok := err.(*venueclient.VenueError)
	if !ok {
		return false
	}
	return ve.Kind == venueclient.KindRateLimited || ve.Kind == venueclient.KindNotAvailable
}

// BuildSingleVenue реализует C3: из набора тикеров одной площадки строит
// однобиржевой граф курсов обмена. Символы с некорректным разбиением на
// base/quote и непригодные тикеры (см. models.Ticker.Usable) пропускаются
// без остановки построения.
func BuildSingleVenue(venue *models.Venue, tickers map[string]*models.Ticker, depthMode bool, logger *utils.Logger) *models.RateGraph {
	g := models.NewRateGraph()

	for symbol, ticker := range tickers {
		fee := 0.0
		if info, ok := venue.Markets[symbol]; ok {
			fee = info.Taker
		}

		sellEdge, buyEdge, ok := buildSymbolEdges(venue.ID, symbol, ticker, fee, depthMode)
		if !ok {
			if logger != nil {
				logger.Sugar().Debugw("graph: skipping symbol in single-venue build", "venue", venue.ID, "symbol", symbol)
			}
			continue
		}
		g.AddEdge(sellEdge)
		g.AddEdge(buyEdge)
	}

	return g
}
