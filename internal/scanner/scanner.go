package scanner

import (
	"context"
	"sync"
	"time"

	"arbitrage/internal/fetch"
	"arbitrage/internal/models"
	"arbitrage/internal/venueclient"
	"arbitrage/pkg/utils"
)

// Scanner реализует однократный межбиржевой скан символа (C7, §4.6 шаги 1-3):
// по каждой площадке из списка параллельно запрашивается книга ордеров,
// и по мере завершения запросов обновляется наблюдаемая лучшая пара
// (лучший бид / лучший аск).
type Scanner struct {
	clients map[string]venueclient.VenueClient
	fetcher *fetch.Fetcher
	logger  *utils.Logger
}

// NewScanner создаёт сканер поверх уже подключённых клиентов площадок.
func NewScanner(clients map[string]venueclient.VenueClient, fetcher *fetch.Fetcher, logger *utils.Logger) *Scanner {
	return &Scanner{clients: clients, fetcher: fetcher, logger: logger}
}

// ScanSymbol запрашивает книги ордеров symbol на всех venues параллельно.
// Площадка, у которой бид или аск пуст, исключается из этой возможности
// без остановки остальных (§4.6 шаг 2). Запись в пару (HighestBid,
// LowestAsk) сериализована одним мьютексом, как того требует §5 Ordering -
// разные горутины никогда не пишут в опорную пару одновременно.
func (s *Scanner) ScanSymbol(ctx context.Context, symbol string, venues []string) *models.Opportunity {
	opp := &models.Opportunity{Symbol: symbol}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, venueID := range venues {
		client, ok := s.clients[venueID]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(venueID string, client venueclient.VenueClient) {
			defer wg.Done()
			book, err := s.fetcher.FetchOrderBook(ctx, client, symbol)
			if err != nil {
				if s.logger != nil {
					s.logger.Sugar().Debugw("scanner: venue dropped from opportunity", "symbol", symbol, "venue", venueID, "error", err)
				}
				return
			}
			bestBid, okBid := book.BestBid()
			bestAsk, okAsk := book.BestAsk()
			if !okBid || !okAsk {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if opp.HighestBid == nil || bestBid.Price > opp.HighestBid.Price {
				opp.HighestBid = &models.CrossVenueQuote{Venue: venueID, Price: bestBid.Price, Volume: bestBid.Volume}
			}
			if opp.LowestAsk == nil || bestAsk.Price < opp.LowestAsk.Price {
				opp.LowestAsk = &models.CrossVenueQuote{Venue: venueID, Price: bestAsk.Price, Volume: bestAsk.Volume}
			}
		}(venueID, client)
	}

	wg.Wait()
	opp.Timestamp = time.Now()
	return opp
}
