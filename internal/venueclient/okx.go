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

const okxBaseURL = "https://www.okx.com"

// OKX - клиент площадки OKX (SPOT), ограниченный рыночными данными.
type OKX struct {
	creds      Credentials
	httpClient *http.Client
	limiter    *ratelimit.MultiLimiter
}

func NewOKX(creds Credentials, limiter *ratelimit.MultiLimiter) *OKX {
	return &OKX{creds: creds, httpClient: GetGlobalHTTPClient().GetClient(), limiter: limiter}
}

func (o *OKX) Name() string { return "okx" }

func (o *OKX) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx, "okx"); err != nil {
			return nil, &VenueError{Venue: "okx", Kind: KindTransient, Message: err.Error(), Err: err}
		}
	}
	reqURL := okxBaseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &VenueError{Venue: "okx", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &VenueError{Venue: "okx", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &VenueError{Venue: "okx", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &VenueError{Venue: "okx", Kind: KindRateLimited, Message: "too many requests"}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &VenueError{Venue: "okx", Kind: KindAuthRefused, Message: resp.Status}
	case resp.StatusCode >= 500:
		return nil, &VenueError{Venue: "okx", Kind: KindNotAvailable, Message: resp.Status}
	}
	return body, nil
}

func (o *OKX) LoadMarkets(ctx context.Context) (*models.Venue, error) {
	body, err := o.get(ctx, "/api/v5/public/instruments", url.Values{"instType": {"SPOT"}})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			InstId  string `json:"instId"`
			BaseCcy string `json:"baseCcy"`
			QuoteCcy string `json:"quoteCcy"`
			State   string `json:"state"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "okx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	venue := models.NewVenue("okx", "OKX")
	venue.Capabilities["fetchOrderBook"] = true
	for _, m := range resp.Data {
		if m.State != "live" {
			continue
		}
		symbol := models.JoinSymbol(m.BaseCcy, m.QuoteCcy)
		venue.Symbols[symbol] = true
		venue.Currencies[m.BaseCcy] = true
		venue.Currencies[m.QuoteCcy] = true
		venue.Markets[symbol] = models.MarketInfo{Taker: 0.001}
	}
	return venue, nil
}

func (o *OKX) okxInstID(symbol string) string {
	base, quote, ok := models.SplitSymbol(symbol)
	if !ok {
		return strings.ToUpper(symbol)
	}
	return strings.ToUpper(base) + "-" + strings.ToUpper(quote)
}

func (o *OKX) FetchTicker(ctx context.Context, symbol string) (*models.Ticker, error) {
	params := url.Values{"instId": {o.okxInstID(symbol)}}
	body, err := o.get(ctx, "/api/v5/market/ticker", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			BidPx string `json:"bidPx"`
			BidSz string `json:"bidSz"`
			AskPx string `json:"askPx"`
			AskSz string `json:"askSz"`
			Ts    string `json:"ts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "okx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &VenueError{Venue: "okx", Kind: KindUnknownMarket, Message: "no ticker for " + symbol}
	}

	d := resp.Data[0]
	bid, _ := strconv.ParseFloat(d.BidPx, 64)
	ask, _ := strconv.ParseFloat(d.AskPx, 64)
	bidVol, _ := strconv.ParseFloat(d.BidSz, 64)
	askVol, _ := strconv.ParseFloat(d.AskSz, 64)
	tsMillis, _ := strconv.ParseInt(d.Ts, 10, 64)
	if bid <= 0 || ask <= 0 {
		return nil, &VenueError{Venue: "okx", Kind: KindMalformed, Message: "non-positive bid/ask for " + symbol}
	}

	return &models.Ticker{
		Symbol: symbol, Venue: "okx", Bid: bid, Ask: ask,
		BidVolume: &bidVol, AskVolume: &askVol, Timestamp: time.UnixMilli(tsMillis),
	}, nil
}

func (o *OKX) FetchTickers(ctx context.Context) (map[string]*models.Ticker, error) {
	body, err := o.get(ctx, "/api/v5/market/tickers", url.Values{"instType": {"SPOT"}})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			InstId string `json:"instId"`
			BidPx  string `json:"bidPx"`
			BidSz  string `json:"bidSz"`
			AskPx  string `json:"askPx"`
			AskSz  string `json:"askSz"`
			Ts     string `json:"ts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "okx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	out := make(map[string]*models.Ticker, len(resp.Data))
	for _, d := range resp.Data {
		bid, _ := strconv.ParseFloat(d.BidPx, 64)
		ask, _ := strconv.ParseFloat(d.AskPx, 64)
		if bid <= 0 || ask <= 0 {
			continue
		}
		bidVol, _ := strconv.ParseFloat(d.BidSz, 64)
		askVol, _ := strconv.ParseFloat(d.AskSz, 64)
		tsMillis, _ := strconv.ParseInt(d.Ts, 10, 64)
		symbol := strings.ReplaceAll(d.InstId, "-", "/")
		out[symbol] = &models.Ticker{
			Symbol: symbol, Venue: "okx", Bid: bid, Ask: ask,
			BidVolume: &bidVol, AskVolume: &askVol, Timestamp: time.UnixMilli(tsMillis),
		}
	}
	return out, nil
}

func (o *OKX) FetchOrderBook(ctx context.Context, symbol string) (*models.OrderBook, error) {
	params := url.Values{"instId": {o.okxInstID(symbol)}, "sz": {"50"}}
	body, err := o.get(ctx, "/api/v5/market/books", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Bids [][]string `json:"bids"`
			Asks [][]string `json:"asks"`
			Ts   string     `json:"ts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "okx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &VenueError{Venue: "okx", Kind: KindUnknownMarket, Message: "no book for " + symbol}
	}

	d := resp.Data[0]
	tsMillis, _ := strconv.ParseInt(d.Ts, 10, 64)
	ob := &models.OrderBook{Symbol: symbol, Venue: "okx", Timestamp: time.UnixMilli(tsMillis)}
	for _, lvl := range d.Bids {
		if len(lvl) < 2 {
			continue
		}
		p, _ := strconv.ParseFloat(lvl[0], 64)
		v, _ := strconv.ParseFloat(lvl[1], 64)
		ob.Bids = append(ob.Bids, models.PriceLevel{Price: p, Volume: v})
	}
	for _, lvl := range d.Asks {
		if len(lvl) < 2 {
			continue
		}
		p, _ := strconv.ParseFloat(lvl[0], 64)
		v, _ := strconv.ParseFloat(lvl[1], 64)
		ob.Asks = append(ob.Asks, models.PriceLevel{Price: p, Volume: v})
	}
	return ob, nil
}

func (o *OKX) Close() error { return nil }
