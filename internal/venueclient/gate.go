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

const gateBaseURL = "https://api.gateio.ws/api/v4"

// Gate - клиент площадки Gate.io (spot), ограниченный рыночными данными.
type Gate struct {
	creds      Credentials
	httpClient *http.Client
	limiter    *ratelimit.MultiLimiter
}

func NewGate(creds Credentials, limiter *ratelimit.MultiLimiter) *Gate {
	return &Gate{creds: creds, httpClient: GetGlobalHTTPClient().GetClient(), limiter: limiter}
}

func (g *Gate) Name() string { return "gate" }

func (g *Gate) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx, "gate"); err != nil {
			return nil, &VenueError{Venue: "gate", Kind: KindTransient, Message: err.Error(), Err: err}
		}
	}
	reqURL := gateBaseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &VenueError{Venue: "gate", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &VenueError{Venue: "gate", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &VenueError{Venue: "gate", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &VenueError{Venue: "gate", Kind: KindRateLimited, Message: "too many requests"}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &VenueError{Venue: "gate", Kind: KindAuthRefused, Message: resp.Status}
	case resp.StatusCode >= 500:
		return nil, &VenueError{Venue: "gate", Kind: KindNotAvailable, Message: resp.Status}
	}
	return body, nil
}

func (g *Gate) LoadMarkets(ctx context.Context) (*models.Venue, error) {
	body, err := g.get(ctx, "/spot/currency_pairs", nil)
	if err != nil {
		return nil, err
	}

	var pairs []struct {
		ID        string `json:"id"`
		Base      string `json:"base"`
		Quote     string `json:"quote"`
		TradeStatus string `json:"trade_status"`
		FeeRate   string `json:"fee"`
	}
	if err := json.Unmarshal(body, &pairs); err != nil {
		return nil, &VenueError{Venue: "gate", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	venue := models.NewVenue("gate", "Gate")
	venue.Capabilities["fetchOrderBook"] = true
	for _, p := range pairs {
		if p.TradeStatus != "tradable" {
			continue
		}
		taker, _ := strconv.ParseFloat(p.FeeRate, 64)
		taker /= 100
		if taker == 0 {
			taker = 0.002
		}
		symbol := models.JoinSymbol(p.Base, p.Quote)
		venue.Symbols[symbol] = true
		venue.Currencies[p.Base] = true
		venue.Currencies[p.Quote] = true
		venue.Markets[symbol] = models.MarketInfo{Taker: taker}
	}
	return venue, nil
}

func (g *Gate) gatePair(symbol string) string {
	base, quote, ok := models.SplitSymbol(symbol)
	if !ok {
		return strings.ToUpper(symbol)
	}
	return strings.ToUpper(base) + "_" + strings.ToUpper(quote)
}

func (g *Gate) FetchTicker(ctx context.Context, symbol string) (*models.Ticker, error) {
	params := url.Values{"currency_pair": {g.gatePair(symbol)}}
	body, err := g.get(ctx, "/spot/tickers", params)
	if err != nil {
		return nil, err
	}

	var resp []struct {
		HighestBid string `json:"highest_bid"`
		LowestAsk  string `json:"lowest_ask"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "gate", Kind: KindMalformed, Message: err.Error(), Err: err}
	}
	if len(resp) == 0 {
		return nil, &VenueError{Venue: "gate", Kind: KindUnknownMarket, Message: "no ticker for " + symbol}
	}

	bid, _ := strconv.ParseFloat(resp[0].HighestBid, 64)
	ask, _ := strconv.ParseFloat(resp[0].LowestAsk, 64)
	if bid <= 0 || ask <= 0 {
		return nil, &VenueError{Venue: "gate", Kind: KindMalformed, Message: "non-positive bid/ask for " + symbol}
	}

	return &models.Ticker{Symbol: symbol, Venue: "gate", Bid: bid, Ask: ask, Timestamp: time.Now()}, nil
}

func (g *Gate) FetchTickers(ctx context.Context) (map[string]*models.Ticker, error) {
	body, err := g.get(ctx, "/spot/tickers", nil)
	if err != nil {
		return nil, err
	}

	var resp []struct {
		CurrencyPair string `json:"currency_pair"`
		HighestBid   string `json:"highest_bid"`
		LowestAsk    string `json:"lowest_ask"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "gate", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	now := time.Now()
	out := make(map[string]*models.Ticker, len(resp))
	for _, d := range resp {
		bid, _ := strconv.ParseFloat(d.HighestBid, 64)
		ask, _ := strconv.ParseFloat(d.LowestAsk, 64)
		if bid <= 0 || ask <= 0 {
			continue
		}
		symbol := strings.ReplaceAll(d.CurrencyPair, "_", "/")
		out[symbol] = &models.Ticker{Symbol: symbol, Venue: "gate", Bid: bid, Ask: ask, Timestamp: now}
	}
	return out, nil
}

func (g *Gate) FetchOrderBook(ctx context.Context, symbol string) (*models.OrderBook, error) {
	params := url.Values{"currency_pair": {g.gatePair(symbol)}, "limit": {"50"}}
	body, err := g.get(ctx, "/spot/order_book", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "gate", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	ob := &models.OrderBook{Symbol: symbol, Venue: "gate", Timestamp: time.Now()}
	for _, lvl := range resp.Bids {
		if len(lvl) < 2 {
			continue
		}
		p, _ := strconv.ParseFloat(lvl[0], 64)
		v, _ := strconv.ParseFloat(lvl[1], 64)
		ob.Bids = append(ob.Bids, models.PriceLevel{Price: p, Volume: v})
	}
	for _, lvl := range resp.Asks {
		if len(lvl) < 2 {
			continue
		}
		p, _ := strconv.ParseFloat(lvl[0], 64)
		v, _ := strconv.ParseFloat(lvl[1], 64)
		ob.Asks = append(ob.Asks, models.PriceLevel{Price: p, Volume: v})
	}
	return ob, nil
}

func (g *Gate) Close() error { return nil }
