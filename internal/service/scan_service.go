package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"arbitrage/internal/catalog"
	"arbitrage/internal/cycle"
	"arbitrage/internal/fetch"
	"arbitrage/internal/graph"
	"arbitrage/internal/metrics"
	"arbitrage/internal/models"
	"arbitrage/internal/scanner"
	"arbitrage/internal/venueclient"
	"arbitrage/pkg/utils"
)

// Ошибки сервиса сканирования
var (
	ErrScanVenueRequired   = errors.New("venue is required for this scan mode")
	ErrScanSymbolRequired  = errors.New("symbol is required for a cross-venue scan")
	ErrScanSourceRequired  = errors.New("source currency is required for a graph-based scan")
	ErrScanUnknownMode     = errors.New("unknown scan mode")
	ErrScanVenueNotFound   = errors.New("venue has no live connection")
)

// Режимы одноразового скана, запускаемого через POST /api/scans (C9).
const (
	ScanModeSingleVenue = "single_venue" // §4.3/§4.5 - внутрибиржевой цикл на одной площадке
	ScanModeMultiVenue  = "multi_venue"  // §4.4/§4.5.2 - мультиграф по нескольким площадкам
	ScanModeCrossVenue  = "cross_venue"  // §4.6 - межбиржевое сравнение бид/аск по символу (C7)
)

// ScanRequest описывает параметры одноразового скана, выбираемые телом
// POST /api/scans: режим (single_venue/multi_venue/cross_venue),
// площадка(и), символ, исходная валюта и флаги depth mode и unique-path.
type ScanRequest struct {
	Mode       string
	Venue      string   // для ScanModeSingleVenue
	Venues     []string // для ScanModeMultiVenue/ScanModeCrossVenue (пусто = все площадки символа)
	Symbol     string   // для ScanModeCrossVenue
	Source     string   // исходная валюта для поиска циклов
	DepthMode  bool
	UniquePath bool
}

// ScanResult - результат одноразового скана: либо набор найденных циклов
// (single/multi venue), либо одна межбиржевая возможность (cross venue).
type ScanResult struct {
	Mode        string
	Cycles      []*models.Cycle
	Opportunity *models.Opportunity
}

// OpportunityBroadcaster - интерфейс для рассылки найденных циклов и
// межбиржевых возможностей через WebSocket (live opportunity stream, C9).
type OpportunityBroadcaster interface {
	BroadcastCycle(venue string, c *models.Cycle)
	BroadcastOpportunity(opportunity *models.Opportunity)
	BroadcastScanRun(run *models.ScanRun)
}

// ScanService оркестрирует одноразовые сканы поверх уже подключённых
// клиентов площадок (C1-C7), записывает их как models.ScanRun (C8) и
// поднимает уведомления о найденных возможностях.
type ScanService struct {
	clients      map[string]venueclient.VenueClient
	fetcher      *fetch.Fetcher
	catalog      *catalog.Catalog
	scanner      *scanner.Scanner
	superScanner *scanner.SuperScanner
	logger       *utils.Logger

	stats         *StatsService
	notifications *NotificationService
	wsHub         OpportunityBroadcaster
}

// NewScanService создает новый экземпляр ScanService.
func NewScanService(
	clients map[string]venueclient.VenueClient,
	fetcher *fetch.Fetcher,
	cat *catalog.Catalog,
	sc *scanner.Scanner,
	superScanner *scanner.SuperScanner,
	logger *utils.Logger,
	stats *StatsService,
	notifications *NotificationService,
) *ScanService {
	return &ScanService{
		clients:       clients,
		fetcher:       fetcher,
		catalog:       cat,
		scanner:       sc,
		superScanner:  superScanner,
		logger:        logger,
		stats:         stats,
		notifications: notifications,
	}
}

// SetWebSocketHub устанавливает WebSocket hub для broadcast найденных
// циклов, возможностей и прогонов скана.
func (s *ScanService) SetWebSocketHub(hub OpportunityBroadcaster) {
	s.wsHub = hub
}

// TriggerScan выполняет один скан в соответствии с req.Mode, записывает его
// как ScanRun (START/FINISH, даже при ошибке - с заполненным Errors) и
// возвращает найденные циклы или возможность.
func (s *ScanService) TriggerScan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	run, err := s.stats.StartScanRun()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, scanErr := s.runScan(ctx, req, run)
	metrics.RecordScan(req.Mode, float64(time.Since(started).Milliseconds()), scanErr)

	if scanErr != nil {
		run.AddError(scanErr.Error())
		if s.notifications != nil {
			_, _ = s.notifications.CreateNotification(models.NotificationTypeScanError, models.SeverityError, scanErr.Error(), symbolPtr(req.Symbol), nil)
		}
	}
	if finishErr := s.stats.RecordScanCompletion(run); finishErr != nil && scanErr == nil {
		return nil, finishErr
	}
	if s.wsHub != nil {
		s.wsHub.BroadcastScanRun(run)
	}

	return result, scanErr
}

func (s *ScanService) runScan(ctx context.Context, req ScanRequest, run *models.ScanRun) (*ScanResult, error) {
	switch req.Mode {
	case ScanModeSingleVenue:
		return s.scanSingleVenue(ctx, req, run)
	case ScanModeMultiVenue:
		return s.scanMultiVenue(ctx, req, run)
	case ScanModeCrossVenue:
		return s.scanCrossVenue(ctx, req, run)
	default:
		return nil, ErrScanUnknownMode
	}
}

func (s *ScanService) scanSingleVenue(ctx context.Context, req ScanRequest, run *models.ScanRun) (*ScanResult, error) {
	if req.Venue == "" {
		return nil, ErrScanVenueRequired
	}
	if req.Source == "" {
		return nil, ErrScanSourceRequired
	}

	client, ok := s.clients[strings.ToLower(req.Venue)]
	if !ok {
		return nil, ErrScanVenueNotFound
	}

	venue, err := client.LoadMarkets(ctx)
	if err != nil {
		return nil, err
	}
	tickers, err := s.fetcher.FetchTickers(ctx, client, venue)
	if err != nil {
		return nil, err
	}

	run.VenuesPolled = 1
	run.SymbolsScanned = len(tickers)

	g := graph.BuildSingleVenue(venue, tickers, req.DepthMode, s.logger)
	finder, err := cycle.NewFinder(g, req.Source, req.UniquePath)
	if err != nil {
		return nil, err
	}

	cycles := collectCycles(finder, req.DepthMode)
	run.OpportunitiesFound = len(cycles)
	s.notifyCycles(cycles, req.Venue)

	return &ScanResult{Mode: req.Mode, Cycles: cycles}, nil
}

func (s *ScanService) scanMultiVenue(ctx context.Context, req ScanRequest, run *models.ScanRun) (*ScanResult, error) {
	if req.Source == "" {
		return nil, ErrScanSourceRequired
	}

	venueIDs := req.Venues
	if len(venueIDs) == 0 {
		for id := range s.clients {
			venueIDs = append(venueIDs, id)
		}
	}

	venues := make(map[string]*models.Venue, len(venueIDs))
	tickersByVenue := make(map[string]map[string]*models.Ticker, len(venueIDs))
	symbolsScanned := 0

	for _, id := range venueIDs {
		client, ok := s.clients[strings.ToLower(id)]
		if !ok {
			continue
		}
		venue, err := client.LoadMarkets(ctx)
		if err != nil {
			continue
		}
		tickers, err := s.fetcher.FetchTickers(ctx, client, venue)
		if err != nil {
			continue
		}
		venues[id] = venue
		tickersByVenue[id] = tickers
		symbolsScanned += len(tickers)
	}

	run.VenuesPolled = len(venues)
	run.SymbolsScanned = symbolsScanned

	mg := graph.BuildMultiVenue(venues, tickersByVenue, req.DepthMode, s.logger)
	finder, err := cycle.NewMultigraphFinder(mg, req.Source, req.UniquePath)
	if err != nil {
		return nil, err
	}

	cycles := collectCycles(finder, req.DepthMode)
	run.OpportunitiesFound = len(cycles)
	s.notifyCycles(cycles, "multi-venue")

	return &ScanResult{Mode: req.Mode, Cycles: cycles}, nil
}

func (s *ScanService) scanCrossVenue(ctx context.Context, req ScanRequest, run *models.ScanRun) (*ScanResult, error) {
	if req.Symbol == "" {
		return nil, ErrScanSymbolRequired
	}

	venueIDs := req.Venues
	if len(venueIDs) == 0 {
		var err error
		venueIDs, err = s.catalog.ExchangesFor(ctx, req.Symbol)
		if err != nil {
			return nil, err
		}
	}

	run.VenuesPolled = len(venueIDs)
	run.SymbolsScanned = 1

	opp := s.scanner.ScanSymbol(ctx, req.Symbol, venueIDs)
	if opp.Valuable() {
		run.OpportunitiesFound = 1
		metrics.RecordOpportunity("cross_venue", 1)
		if s.notifications != nil {
			symbol := req.Symbol
			_, _ = s.notifications.CreateNotification(models.NotificationTypeOpportunity, models.SeverityInfo, "cross-venue opportunity found", &symbol, nil)
		}
		if s.wsHub != nil {
			s.wsHub.BroadcastOpportunity(opp)
		}
	}

	return &ScanResult{Mode: req.Mode, Opportunity: opp}, nil
}

// collectCycles перечисляет все циклы Finder, используя depth-aware вариант
// Next, когда граф построен в depth mode.
func collectCycles(f *cycle.Finder, depthMode bool) []*models.Cycle {
	var out []*models.Cycle
	for {
		var c *models.Cycle
		var ok bool
		if depthMode {
			c, ok = f.NextDepthAware()
		} else {
			c, ok = f.Next()
		}
		if !ok {
			return out
		}
		out = append(out, c)
	}
}

func (s *ScanService) notifyCycles(cycles []*models.Cycle, label string) {
	if len(cycles) == 0 {
		return
	}
	metrics.RecordOpportunity("cycle", len(cycles))
	if s.notifications != nil {
		_, _ = s.notifications.CreateNotification(models.NotificationTypeOpportunity, models.SeverityInfo, "graph cycle scan found opportunities", &label, map[string]interface{}{"count": len(cycles)})
	}
	if s.wsHub != nil {
		for _, c := range cycles {
			s.wsHub.BroadcastCycle(label, c)
		}
	}
}

func symbolPtr(symbol string) *string {
	if symbol == "" {
		return nil
	}
	return &symbol
}
