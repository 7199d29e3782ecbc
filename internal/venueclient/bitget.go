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

const bitgetBaseURL = "https://api.bitget.com"

// Bitget - клиент площадки Bitget (spot), ограниченный рыночными данными.
type Bitget struct {
	creds      Credentials
	httpClient *http.Client
	limiter    *ratelimit.MultiLimiter
}

func NewBitget(creds Credentials, limiter *ratelimit.MultiLimiter) *Bitget {
	return &Bitget{creds: creds, httpClient: GetGlobalHTTPClient().GetClient(), limiter: limiter}
}

func (bg *Bitget) Name() string { return "bitget" }

func (bg *Bitget) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if bg.limiter != nil {
		if err := bg.limiter.Wait(ctx, "bitget"); err != nil {
			return nil, &VenueError{Venue: "bitget", Kind: KindTransient, Message: err.Error(), Err: err}
		}
	}
	reqURL := bitgetBaseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &VenueError{Venue: "bitget", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	resp, err := bg.httpClient.Do(req)
	if err != nil {
		return nil, &VenueError{Venue: "bitget", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &VenueError{Venue: "bitget", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &VenueError{Venue: "bitget", Kind: KindRateLimited, Message: "too many requests"}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &VenueError{Venue: "bitget", Kind: KindAuthRefused, Message: resp.Status}
	case resp.StatusCode >= 500:
		return nil, &VenueError{Venue: "bitget", Kind: KindNotAvailable, Message: resp.Status}
	}
	return body, nil
}

func (bg *Bitget) LoadMarkets(ctx context.Context) (*models.Venue, error) {
	body, err := bg.get(ctx, "/api/v2/spot/public/symbols", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Symbol       string `json:"symbol"`
			BaseCoin     string `json:"baseCoin"`
			QuoteCoin    string `json:"quoteCoin"`
			Status       string `json:"status"`
			TakerFeeRate string `json:"takerFeeRate"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bitget", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	venue := models.NewVenue("bitget", "Bitget")
	venue.Capabilities["fetchOrderBook"] = true
	for _, m := range resp.Data {
		if m.Status != "online" {
			continue
		}
		taker, _ := strconv.ParseFloat(m.TakerFeeRate, 64)
		if taker == 0 {
			taker = 0.001
		}
		symbol := models.JoinSymbol(m.BaseCoin, m.QuoteCoin)
		venue.Symbols[symbol] = true
		venue.Currencies[m.BaseCoin] = true
		venue.Currencies[m.QuoteCoin] = true
		venue.Markets[symbol] = models.MarketInfo{Taker: taker}
	}
	return venue, nil
}

func (bg *Bitget) bitgetSymbol(symbol string) string {
	base, quote, ok := models.SplitSymbol(symbol)
	if !ok {
		return strings.ReplaceAll(symbol, "/", "")
	}
	return base + quote
}

func (bg *Bitget) FetchTicker(ctx context.Context, symbol string) (*models.Ticker, error) {
	params := url.Values{"symbol": {bg.bitgetSymbol(symbol)}}
	body, err := bg.get(ctx, "/api/v2/spot/market/tickers", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			BidPr  string `json:"bidPr"`
			BidSz  string `json:"bidSz"`
			AskPr  string `json:"askPr"`
			AskSz  string `json:"askSz"`
			Ts     string `json:"ts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bitget", Kind: KindMalformed, Message: err.Error(), Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &VenueError{Venue: "bitget", Kind: KindUnknownMarket, Message: "no ticker for " + symbol}
	}

	d := resp.Data[0]
	bid, _ := strconv.ParseFloat(d.BidPr, 64)
	ask, _ := strconv.ParseFloat(d.AskPr, 64)
	bidVol, _ := strconv.ParseFloat(d.BidSz, 64)
	askVol, _ := strconv.ParseFloat(d.AskSz, 64)
	tsMillis, _ := strconv.ParseInt(d.Ts, 10, 64)
	if bid <= 0 || ask <= 0 {
		return nil, &VenueError{Venue: "bitget", Kind: KindMalformed, Message: "non-positive bid/ask for " + symbol}
	}

	return &models.Ticker{
		Symbol: symbol, Venue: "bitget", Bid: bid, Ask: ask,
		BidVolume: &bidVol, AskVolume: &askVol,
		Timestamp: time.UnixMilli(tsMillis),
	}, nil
}

func (bg *Bitget) FetchTickers(ctx context.Context) (map[string]*models.Ticker, error) {
	body, err := bg.get(ctx, "/api/v2/spot/market/tickers", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Symbol string `json:"symbol"`
			BidPr  string `json:"bidPr"`
			BidSz  string `json:"bidSz"`
			AskPr  string `json:"askPr"`
			AskSz  string `json:"askSz"`
			Ts     string `json:"ts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bitget", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	out := make(map[string]*models.Ticker, len(resp.Data))
	for _, d := range resp.Data {
		bid, _ := strconv.ParseFloat(d.BidPr, 64)
		ask, _ := strconv.ParseFloat(d.AskPr, 64)
		if bid <= 0 || ask <= 0 {
			continue
		}
		bidVol, _ := strconv.ParseFloat(d.BidSz, 64)
		askVol, _ := strconv.ParseFloat(d.AskSz, 64)
		tsMillis, _ := strconv.ParseInt(d.Ts, 10, 64)
		out[d.Symbol] = &models.Ticker{
			Symbol: d.Symbol, Venue: "bitget", Bid: bid, Ask: ask,
			BidVolume: &bidVol, AskVolume: &askVol, Timestamp: time.UnixMilli(tsMillis),
		}
	}
	return out, nil
}

func (bg *Bitget) FetchOrderBook(ctx context.Context, symbol string) (*models.OrderBook, error) {
	params := url.Values{"symbol": {bg.bitgetSymbol(symbol)}, "limit": {"50"}}
	body, err := bg.get(ctx, "/api/v2/spot/market/orderbook", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Bids [][]string `json:"bids"`
			Asks [][]string `json:"asks"`
			Ts   string     `json:"ts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bitget", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	tsMillis, _ := strconv.ParseInt(resp.Data.Ts, 10, 64)
	ob := &models.OrderBook{Symbol: symbol, Venue: "bitget", Timestamp: time.UnixMilli(tsMillis)}
	for _, lvl := range resp.Data.Bids {
		if len(lvl) < 2 {
			continue
		}
		p, _ := strconv.ParseFloat(lvl[0], 64)
		v, _ := strconv.ParseFloat(lvl[1], 64)
		ob.Bids = append(ob.Bids, models.PriceLevel{Price: p, Volume: v})
	}
	for _, lvl := range resp.Data.Asks {
		if len(lvl) < 2 {
			continue
		}
		p, _ := strconv.ParseFloat(lvl[0], 64)
		v, _ := strconv.ParseFloat(lvl[1], 64)
		ob.Asks = append(ob.Asks, models.PriceLevel{Price: p, Volume: v})
	}
	return ob, nil
}

func (bg *Bitget) Close() error { return nil }
