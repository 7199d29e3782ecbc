package venueclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"arbitrage/internal/models"
	"arbitrage/pkg/ratelimit"
)

const bybitBaseURL = "https://api.bybit.com"

// Bybit - клиент площадки Bybit (категория spot), ограниченный рыночными данными.
type Bybit struct {
	creds      Credentials
	httpClient *http.Client
	limiter    *ratelimit.MultiLimiter
}

func NewBybit(creds Credentials, limiter *ratelimit.MultiLimiter) *Bybit {
	return &Bybit{creds: creds, httpClient: GetGlobalHTTPClient().GetClient(), limiter: limiter}
}

func (b *Bybit) Name() string { return "bybit" }

func (b *Bybit) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, "bybit"); err != nil {
			return nil, &VenueError{Venue: "bybit", Kind: KindTransient, Message: err.Error(), Err: err}
		}
	}
	reqURL := bybitBaseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &VenueError{Venue: "bybit", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, &VenueError{Venue: "bybit", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &VenueError{Venue: "bybit", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &VenueError{Venue: "bybit", Kind: KindRateLimited, Message: "too many requests"}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &VenueError{Venue: "bybit", Kind: KindAuthRefused, Message: resp.Status}
	case resp.StatusCode >= 500:
		return nil, &VenueError{Venue: "bybit", Kind: KindNotAvailable, Message: resp.Status}
	}
	return body, nil
}

func (b *Bybit) LoadMarkets(ctx context.Context) (*models.Venue, error) {
	body, err := b.get(ctx, "/v5/market/instruments-info", url.Values{"category": {"spot"}})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			List []struct {
				Symbol     string `json:"symbol"`
				BaseCoin   string `json:"baseCoin"`
				QuoteCoin  string `json:"quoteCoin"`
				Status     string `json:"status"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bybit", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	venue := models.NewVenue("bybit", "Bybit")
	venue.Capabilities["fetchOrderBook"] = true
	for _, m := range resp.Result.List {
		if m.Status != "Trading" {
			continue
		}
		symbol := models.JoinSymbol(m.BaseCoin, m.QuoteCoin)
		venue.Symbols[symbol] = true
		venue.Currencies[m.BaseCoin] = true
		venue.Currencies[m.QuoteCoin] = true
		venue.Markets[symbol] = models.MarketInfo{Taker: 0.001}
	}
	return venue, nil
}

func (b *Bybit) bybitSymbol(symbol string) string {
	base, quote, ok := models.SplitSymbol(symbol)
	if !ok {
		return strings.ReplaceAll(symbol, "/", "")
	}
	return base + quote
}

func (b *Bybit) FetchTicker(ctx context.Context, symbol string) (*models.Ticker, error) {
	params := url.Values{"category": {"spot"}, "symbol": {b.bybitSymbol(symbol)}}
	body, err := b.get(ctx, "/v5/market/tickers", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			List []struct {
				Bid1Price string `json:"bid1Price"`
				Bid1Size  string `json:"bid1Size"`
				Ask1Price string `json:"ask1Price"`
				Ask1Size  string `json:"ask1Size"`
			} `json:"list"`
		} `json:"result"`
		Time int64 `json:"time"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bybit", Kind: KindMalformed, Message: err.Error(), Err: err}
	}
	if len(resp.Result.List) == 0 {
		return nil, &VenueError{Venue: "bybit", Kind: KindUnknownMarket, Message: "no ticker for " + symbol}
	}

	t := resp.Result.List[0]
	bid, _ := strconv.ParseFloat(t.Bid1Price, 64)
	ask, _ := strconv.ParseFloat(t.Ask1Price, 64)
	bidVol, _ := strconv.ParseFloat(t.Bid1Size, 64)
	askVol, _ := strconv.ParseFloat(t.Ask1Size, 64)
	if bid <= 0 || ask <= 0 {
		return nil, &VenueError{Venue: "bybit", Kind: KindMalformed, Message: "non-positive bid/ask for " + symbol}
	}

	return &models.Ticker{
		Symbol: symbol, Venue: "bybit", Bid: bid, Ask: ask,
		BidVolume: &bidVol, AskVolume: &askVol,
		Timestamp: time.UnixMilli(resp.Time),
	}, nil
}

func (b *Bybit) FetchTickers(ctx context.Context) (map[string]*models.Ticker, error) {
	body, err := b.get(ctx, "/v5/market/tickers", url.Values{"category": {"spot"}})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			List []struct {
				Symbol    string `json:"symbol"`
				Bid1Price string `json:"bid1Price"`
				Bid1Size  string `json:"bid1Size"`
				Ask1Price string `json:"ask1Price"`
				Ask1Size  string `json:"ask1Size"`
			} `json:"list"`
		} `json:"result"`
		Time int64 `json:"time"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bybit", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	ts := time.UnixMilli(resp.Time)
	out := make(map[string]*models.Ticker, len(resp.Result.List))
	for _, t := range resp.Result.List {
		bid, _ := strconv.ParseFloat(t.Bid1Price, 64)
		ask, _ := strconv.ParseFloat(t.Ask1Price, 64)
		if bid <= 0 || ask <= 0 {
			continue
		}
		bidVol, _ := strconv.ParseFloat(t.Bid1Size, 64)
		askVol, _ := strconv.ParseFloat(t.Ask1Size, 64)
		out[t.Symbol] = &models.Ticker{
			Symbol: t.Symbol, Venue: "bybit", Bid: bid, Ask: ask,
			BidVolume: &bidVol, AskVolume: &askVol, Timestamp: ts,
		}
	}
	return out, nil
}

func (b *Bybit) FetchOrderBook(ctx context.Context, symbol string) (*models.OrderBook, error) {
	params := url.Values{"category": {"spot"}, "symbol": {b.bybitSymbol(symbol)}, "limit": {"50"}}
	body, err := b.get(ctx, "/v5/market/orderbook", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			B [][]string `json:"b"`
			A [][]string `json:"a"`
		} `json:"result"`
		Time int64 `json:"time"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bybit", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	ob := &models.OrderBook{Symbol: symbol, Venue: "bybit", Timestamp: time.UnixMilli(resp.Time)}
	for _, lvl := range resp.Result.B {
		if len(lvl) < 2 {
			continue
		}
		p, _ := strconv.ParseFloat(lvl[0], 64)
		v, _ := strconv.ParseFloat(lvl[1], 64)
		ob.Bids = append(ob.Bids, models.PriceLevel{Price: p, Volume: v})
	}
	for _, lvl := range resp.Result.A {
		if len(lvl) < 2 {
			continue
		}
		p, _ := strconv.ParseFloat(lvl[0], 64)
		v, _ := strconv.ParseFloat(lvl[1], 64)
		ob.Asks = append(ob.Asks, models.PriceLevel{Price: p, Volume: v})
	}
	return ob, nil
}

func (b *Bybit) Close() error { return nil }
