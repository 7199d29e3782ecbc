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

const bingxBaseURL = "https://open-api.bingx.com"

// BingX - клиент площадки BingX (spot), ограниченный рыночными данными.
type BingX struct {
	creds      Credentials
	httpClient *http.Client
	limiter    *ratelimit.MultiLimiter
}

func NewBingX(creds Credentials, limiter *ratelimit.MultiLimiter) *BingX {
	return &BingX{creds: creds, httpClient: GetGlobalHTTPClient().GetClient(), limiter: limiter}
}

func (bx *BingX) Name() string { return "bingx" }

func (bx *BingX) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if bx.limiter != nil {
		if err := bx.limiter.Wait(ctx, "bingx"); err != nil {
			return nil, &VenueError{Venue: "bingx", Kind: KindTransient, Message: err.Error(), Err: err}
		}
	}
	reqURL := bingxBaseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &VenueError{Venue: "bingx", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	resp, err := bx.httpClient.Do(req)
	if err != nil {
		return nil, &VenueError{Venue: "bingx", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &VenueError{Venue: "bingx", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &VenueError{Venue: "bingx", Kind: KindRateLimited, Message: "too many requests"}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &VenueError{Venue: "bingx", Kind: KindAuthRefused, Message: resp.Status}
	case resp.StatusCode >= 500:
		return nil, &VenueError{Venue: "bingx", Kind: KindNotAvailable, Message: resp.Status}
	}
	return body, nil
}

func (bx *BingX) LoadMarkets(ctx context.Context) (*models.Venue, error) {
	body, err := bx.get(ctx, "/openApi/spot/v1/common/symbols", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Symbols []struct {
				Symbol         string `json:"symbol"`
				Status         int    `json:"status"`
				TakerFeeRate   string `json:"takerFeeRate"`
			} `json:"symbols"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bingx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	venue := models.NewVenue("bingx", "BingX")
	venue.Capabilities["fetchOrderBook"] = true
	for _, m := range resp.Data.Symbols {
		if m.Status != 1 {
			continue
		}
		base, quote, ok := splitBingXSymbol(m.Symbol)
		if !ok {
			continue
		}
		taker, _ := strconv.ParseFloat(m.TakerFeeRate, 64)
		if taker == 0 {
			taker = 0.001
		}
		symbol := models.JoinSymbol(base, quote)
		venue.Symbols[symbol] = true
		venue.Currencies[base] = true
		venue.Currencies[quote] = true
		venue.Markets[symbol] = models.MarketInfo{Taker: taker}
	}
	return venue, nil
}

func splitBingXSymbol(raw string) (base, quote string, ok bool) {
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (bx *BingX) bingxSymbol(symbol string) string {
	base, quote, ok := models.SplitSymbol(symbol)
	if !ok {
		return symbol
	}
	return strings.ToUpper(base) + "-" + strings.ToUpper(quote)
}

func (bx *BingX) FetchTicker(ctx context.Context, symbol string) (*models.Ticker, error) {
	params := url.Values{"symbol": {bx.bingxSymbol(symbol)}}
	body, err := bx.get(ctx, "/openApi/spot/v1/ticker/24hr", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Symbol    string `json:"symbol"`
			BidPrice  string `json:"bidPrice"`
			BidVolume string `json:"bidVolume"`
			AskPrice  string `json:"askPrice"`
			AskVolume string `json:"askVolume"`
			CloseTime int64  `json:"closeTime"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bingx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &VenueError{Venue: "bingx", Kind: KindUnknownMarket, Message: "no ticker for " + symbol}
	}

	d := resp.Data[0]
	bid, _ := strconv.ParseFloat(d.BidPrice, 64)
	ask, _ := strconv.ParseFloat(d.AskPrice, 64)
	bidVol, _ := strconv.ParseFloat(d.BidVolume, 64)
	askVol, _ := strconv.ParseFloat(d.AskVolume, 64)
	if bid <= 0 || ask <= 0 {
		return nil, &VenueError{Venue: "bingx", Kind: KindMalformed, Message: "non-positive bid/ask for " + symbol}
	}

	ts := time.Now()
	if d.CloseTime > 0 {
		ts = time.UnixMilli(d.CloseTime)
	}
	return &models.Ticker{
		Symbol: symbol, Venue: "bingx", Bid: bid, Ask: ask,
		BidVolume: &bidVol, AskVolume: &askVol, Timestamp: ts,
	}, nil
}

func (bx *BingX) FetchTickers(ctx context.Context) (map[string]*models.Ticker, error) {
	body, err := bx.get(ctx, "/openApi/spot/v1/ticker/24hr", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Symbol    string `json:"symbol"`
			BidPrice  string `json:"bidPrice"`
			BidVolume string `json:"bidVolume"`
			AskPrice  string `json:"askPrice"`
			AskVolume string `json:"askVolume"`
			CloseTime int64  `json:"closeTime"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bingx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	now := time.Now()
	out := make(map[string]*models.Ticker, len(resp.Data))
	for _, d := range resp.Data {
		bid, _ := strconv.ParseFloat(d.BidPrice, 64)
		ask, _ := strconv.ParseFloat(d.AskPrice, 64)
		if bid <= 0 || ask <= 0 {
			continue
		}
		base, quote, ok := splitBingXSymbol(d.Symbol)
		if !ok {
			continue
		}
		bidVol, _ := strconv.ParseFloat(d.BidVolume, 64)
		askVol, _ := strconv.ParseFloat(d.AskVolume, 64)
		ts := now
		if d.CloseTime > 0 {
			ts = time.UnixMilli(d.CloseTime)
		}
		symbol := models.JoinSymbol(base, quote)
		out[symbol] = &models.Ticker{
			Symbol: symbol, Venue: "bingx", Bid: bid, Ask: ask,
			BidVolume: &bidVol, AskVolume: &askVol, Timestamp: ts,
		}
	}
	return out, nil
}

func (bx *BingX) FetchOrderBook(ctx context.Context, symbol string) (*models.OrderBook, error) {
	params := url.Values{"symbol": {bx.bingxSymbol(symbol)}, "limit": {"50"}}
	body, err := bx.get(ctx, "/openApi/spot/v1/market/depth", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Bids [][]string `json:"bids"`
			Asks [][]string `json:"asks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "bingx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	ob := &models.OrderBook{Symbol: symbol, Venue: "bingx", Timestamp: time.Now()}
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

func (bx *BingX) Close() error { return nil }
