package fetch

import (
	"context"
	"testing"

	"arbitrage/internal/models"
	"arbitrage/internal/venueclient"
)

type stubClient struct {
	name       string
	tickers    map[string]*models.Ticker
	tickersErr map[string]error // per-symbol error for FetchTicker fallback path
	bulkErr    error
	books      map[string]*models.OrderBook
	booksErr   map[string]error
}

func (s *stubClient) Name() string { return s.name }
func (s *stubClient) LoadMarkets(ctx context.Context) (*models.Venue, error) { return nil, nil }

func (s *stubClient) FetchTicker(ctx context.Context, symbol string) (*models.Ticker, error) {
	if err, ok := s.tickersErr[symbol]; ok {
		return nil, err
	}
	return s.tickers[symbol], nil
}

func (s *stubClient) FetchTickers(ctx context.Context) (map[string]*models.Ticker, error) {
	if s.bulkErr != nil {
		return nil, s.bulkErr
	}
	return s.tickers, nil
}

func (s *stubClient) FetchOrderBook(ctx context.Context, symbol string) (*models.OrderBook, error) {
	if err, ok := s.booksErr[symbol]; ok {
		return nil, err
	}
	return s.books[symbol], nil
}

func (s *stubClient) Close() error { return nil }

func TestFetchTickers_UsesBulkWhenSupported(t *testing.T) {
	venue := models.NewVenue("bybit", "Bybit")
	venue.Capabilities["fetchTickers"] = true
	venue.Symbols["BTC/USDT"] = true

	client := &stubClient{
		name: "bybit",
		tickers: map[string]*models.Ticker{
			"BTC/USDT": {Symbol: "BTC/USDT", Venue: "bybit", Bid: 100, Ask: 101},
		},
	}

	f := NewFetcher(nil)
	out, err := f.FetchTickers(context.Background(), client, venue)
	if err != nil {
		t.Fatalf("FetchTickers: %v", err)
	}
	if len(out) != 1 || out["BTC/USDT"].Bid != 100 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestFetchTickers_FallsBackToPerSymbolWhenBulkUnsupported(t *testing.T) {
	venue := models.NewVenue("htx", "HTX")
	venue.Symbols["BTC/USDT"] = true
	venue.Symbols["ETH/USDT"] = true

	client := &stubClient{
		name: "htx",
		tickers: map[string]*models.Ticker{
			"BTC/USDT": {Symbol: "BTC/USDT", Venue: "htx", Bid: 100, Ask: 101},
			"ETH/USDT": {Symbol: "ETH/USDT", Venue: "htx", Bid: 10, Ask: 11},
		},
	}

	f := NewFetcher(nil)
	out, err := f.FetchTickers(context.Background(), client, venue)
	if err != nil {
		t.Fatalf("FetchTickers: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 tickers, got %d", len(out))
	}
}

func TestFetchTickers_DropsFailingSymbolsInFallbackPath(t *testing.T) {
	venue := models.NewVenue("htx", "HTX")
	venue.Symbols["BTC/USDT"] = true
	venue.Symbols["BAD/USDT"] = true

	client := &stubClient{
		name: "htx",
		tickers: map[string]*models.Ticker{
			"BTC/USDT": {Symbol: "BTC/USDT", Venue: "htx", Bid: 100, Ask: 101},
		},
		tickersErr: map[string]error{
			"BAD/USDT": &venueclient.VenueError{Venue: "htx", Kind: venueclient.KindUnknownMarket},
		},
	}

	f := NewFetcher(nil)
	out, err := f.FetchTickers(context.Background(), client, venue)
	if err != nil {
		t.Fatalf("FetchTickers: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected failing symbol dropped, got %d entries", len(out))
	}
}

func TestFetchOrderBooks_IsolatesPerSymbolFailures(t *testing.T) {
	client := &stubClient{
		name: "okx",
		books: map[string]*models.OrderBook{
			"BTC/USDT": {Symbol: "BTC/USDT", Venue: "okx"},
		},
		booksErr: map[string]error{
			"ETH/USDT": &venueclient.VenueError{Venue: "okx", Kind: venueclient.KindNotAvailable},
		},
	}

	f := NewFetcher(nil)
	books, errs := f.FetchOrderBooks(context.Background(), client, []string{"BTC/USDT", "ETH/USDT"})
	if len(books) != 1 {
		t.Fatalf("expected 1 successful book, got %d", len(books))
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if _, ok := errs["ETH/USDT"]; !ok {
		t.Fatal("expected ETH/USDT to carry the error")
	}
}
