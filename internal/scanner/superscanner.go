package scanner

import (
	"context"
	"sort"
	"sync"
	"time"

	"arbitrage/internal/models"
	"arbitrage/internal/venueclient"
	"arbitrage/pkg/utils"
)

// SuperScanner реализует bulk mode (§4.6): сканирует каждую запись
// коллекции, координируя отбой перегруженных площадок между параллельными
// возможностями через общее множество rate_limited_venues.
type SuperScanner struct {
	scanner *Scanner
	logger  *utils.Logger

	rateLimitedMu sync.Mutex
	rateLimited   map[string]struct{}

	gateInterval     time.Duration
	rateLimitBackoff time.Duration
	staggerInterval  time.Duration
}

// NewSuperScanner создаёт bulk-сканер с таймингами по умолчанию из §4.6:
// 100мс gate, 200мс backoff на rate-limit, 20мс шаг для staggered dispatch.
func NewSuperScanner(scanner *Scanner, logger *utils.Logger) *SuperScanner {
	return &SuperScanner{
		scanner:          scanner,
		logger:           logger,
		rateLimited:      make(map[string]struct{}),
		gateInterval:     100 * time.Millisecond,
		rateLimitBackoff: 200 * time.Millisecond,
		staggerInterval:  20 * time.Millisecond,
	}
}

// NewSuperScannerWithTimings создаёт bulk-сканер с таймингами, взятыми из
// конфигурации (internal/config.ScannerConfig), вместо дефолтов §4.6.
func NewSuperScannerWithTimings(scanner *Scanner, logger *utils.Logger, gateInterval, rateLimitBackoff, staggerInterval time.Duration) *SuperScanner {
	ss := NewSuperScanner(scanner, logger)
	if gateInterval > 0 {
		ss.gateInterval = gateInterval
	}
	if rateLimitBackoff > 0 {
		ss.rateLimitBackoff = rateLimitBackoff
	}
	if staggerInterval > 0 {
		ss.staggerInterval = staggerInterval
	}
	return ss
}

func (ss *SuperScanner) markRateLimited(venue string) {
	ss.rateLimitedMu.Lock()
	ss.rateLimited[venue] = struct{}{}
	ss.rateLimitedMu.Unlock()
}

func (ss *SuperScanner) clearRateLimited(venue string) {
	ss.rateLimitedMu.Lock()
	delete(ss.rateLimited, venue)
	ss.rateLimitedMu.Unlock()
}

func (ss *SuperScanner) anyRateLimited(venues []string) bool {
	ss.rateLimitedMu.Lock()
	defer ss.rateLimitedMu.Unlock()
	for _, v := range venues {
		if _, ok := ss.rateLimited[v]; ok {
			return true
		}
	}
	return false
}

// ScanCollection сканирует каждую запись collection.Multi (возможность
// межбиржевого арбитража требует минимум двух площадок - записи Singleton
// в bulk-скан не участвуют). Возвращает возможности в алфавитном порядке
// символов (символы сортируются до запуска опроса); символ без результата
// в срез не попадает.
func (ss *SuperScanner) ScanCollection(ctx context.Context, collection *models.Collection) []*models.Opportunity {
	symbols := make([]string, 0, len(collection.Multi))
	for symbol := range collection.Multi {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var collectionMu sync.Mutex
	results := make([]*models.Opportunity, len(symbols))

	var wg sync.WaitGroup
	for i, symbol := range symbols {
		venues := append([]string{}, collection.Multi[symbol]...)
		wg.Add(1)
		go func(idx int, symbol string, venues []string) {
			defer wg.Done()
			delay := time.Duration(idx) * ss.staggerInterval
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			results[idx] = ss.scanOpportunity(ctx, symbol, venues, collection, &collectionMu)
		}(i, symbol, venues)
	}
	wg.Wait()

	out := make([]*models.Opportunity, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// scanOpportunity сканирует одну возможность, повторно разрешая её против
// урезанного набора площадок при постоянной ошибке (§4.6 Permanent error
// handling), пока площадок остаётся минимум 2.
func (ss *SuperScanner) scanOpportunity(ctx context.Context, symbol string, venues []string, collection *models.Collection, collectionMu *sync.Mutex) *models.Opportunity {
	opp := &models.Opportunity{Symbol: symbol}
	active := venues

	for {
		for ss.anyRateLimited(active) {
			select {
			case <-ctx.Done():
				opp.Timestamp = time.Now()
				return opp
			case <-time.After(ss.gateInterval):
			}
		}

		var oppMu sync.Mutex
		var permanentMu sync.Mutex
		var permanentlyLost []string
		var wg sync.WaitGroup

		for _, venueID := range active {
			client, ok := ss.scanner.clients[venueID]
			if !ok {
				continue
			}
			task := NewVenueTask(venueID)
			wg.Add(1)
			go func(client venueclient.VenueClient, task *VenueTask) {
				defer wg.Done()
				ss.runVenueTask(ctx, symbol, task, client,
					func(bid, ask *models.CrossVenueQuote) {
						oppMu.Lock()
						if opp.HighestBid == nil || bid.Price > opp.HighestBid.Price {
							opp.HighestBid = bid
						}
						if opp.LowestAsk == nil || ask.Price < opp.LowestAsk.Price {
							opp.LowestAsk = ask
						}
						oppMu.Unlock()
					},
					func(venue string) {
						permanentMu.Lock()
						permanentlyLost = append(permanentlyLost, venue)
						permanentMu.Unlock()
					},
				)
			}(client, task)
		}
		wg.Wait()

		if len(permanentlyLost) == 0 {
			opp.Timestamp = time.Now()
			return opp
		}

		collectionMu.Lock()
		remaining := removeVenues(collection.Multi[symbol], permanentlyLost)
		collection.Multi[symbol] = remaining
		collectionMu.Unlock()

		if ss.logger != nil {
			ss.logger.Sugar().Warnw("scanner: venues dropped from collection entry", "symbol", symbol, "venues", permanentlyLost, "remaining", remaining)
		}

		if len(remaining) < 2 {
			opp.Timestamp = time.Now()
			return opp
		}
		active = remaining
	}
}

// runVenueTask управляет жизненным циклом одной задачи опроса площадки в
// рамках одной возможности (§4.7): переключается в FETCHING, уходит в
// RATE_LIMITED и ждёт кулдаун при ретраибл-ошибке (DDoS/timeout), переходит
// в DROPPED при постоянной ошибке (рынок пропал, неразбираемый формат,
// отказ авторизации), и в COMPLETED при валидной котировке.
func (ss *SuperScanner) runVenueTask(
	ctx context.Context,
	symbol string,
	task *VenueTask,
	client venueclient.VenueClient,
	onResult func(bid, ask *models.CrossVenueQuote),
	onPermanent func(venue string),
) {
	for {
		for ss.anyRateLimited([]string{task.Venue}) {
			select {
			case <-ctx.Done():
				task.ForceTransition(StateDropped)
				return
			case <-time.After(ss.gateInterval):
			}
		}

		if err := task.TryTransition(StateFetching); err != nil {
			return
		}

		book, err := ss.scanner.fetcher.FetchOrderBook(ctx, client, symbol)
		if err != nil {
			if venueclient.IsUnknownMarket(err) || isMalformed(err) || venueclient.IsPermanent(err) {
				task.TryTransition(StateDropped)
				onPermanent(task.Venue)
				return
			}
			if venueclient.IsRetryable(err) {
				task.TryTransition(StateRateLimited)
				ss.markRateLimited(task.Venue)
				select {
				case <-ctx.Done():
					ss.clearRateLimited(task.Venue)
					task.ForceTransition(StateDropped)
					return
				case <-time.After(ss.rateLimitBackoff):
				}
				ss.clearRateLimited(task.Venue)
				task.TryTransition(StatePending)
				continue
			}
			task.TryTransition(StateDropped)
			return
		}

		bestBid, okBid := book.BestBid()
		bestAsk, okAsk := book.BestAsk()
		if !okBid || !okAsk {
			task.TryTransition(StateDropped)
			return
		}

		task.TryTransition(StateCompleted)
		onResult(
			&models.CrossVenueQuote{Venue: task.Venue, Price: bestBid.Price, Volume: bestBid.Volume},
			&models.CrossVenueQuote{Venue: task.Venue, Price: bestAsk.Price, Volume: bestAsk.Volume},
		)
		return
	}
}

func isMalformed(err error) bool {
	ve, ok := err.(*venueclient.VenueError)
	return ok && ve.Kind == venueclient.KindMalformed
}

func removeVenues(venues []string, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, v := range remove {
		drop[v] = struct{}{}
	}
	out := make([]string, 0, len(venues))
	for _, v := range venues {
		if _, ok := drop[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
