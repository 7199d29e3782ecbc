package venueclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"arbitrage/internal/models"
	"arbitrage/pkg/ratelimit"
)

const (
	htxBaseURL = "https://api.huobi.pro"
)

// HTX - клиент площадки HTX (бывший Huobi), ограниченный рыночными данными.
// Подпись запросов сохранена (sign) на случай будущего использования
// приватных эндпойнтов с более высоким лимитом частоты запросов; текущие
// вызовы идут через публичные, неподписанные эндпойнты.
type HTX struct {
	creds      Credentials
	httpClient *http.Client
	limiter    *ratelimit.MultiLimiter
}

func NewHTX(creds Credentials, limiter *ratelimit.MultiLimiter) *HTX {
	return &HTX{
		creds:      creds,
		httpClient: GetGlobalHTTPClient().GetClient(),
		limiter:    limiter,
	}
}

func (h *HTX) Name() string { return "htx" }

func (h *HTX) sign(method, host, path string, params url.Values) string {
	signStr := fmt.Sprintf("%s\n%s\n%s\n%s", method, host, path, params.Encode())
	mac := hmac.New(sha256.New, []byte(h.creds.APISecret))
	mac.Write([]byte(signStr))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (h *HTX) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx, "htx"); err != nil {
			return nil, &VenueError{Venue: "htx", Kind: KindTransient, Message: err.Error(), Err: err}
		}
	}
	reqURL := htxBaseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &VenueError{Venue: "htx", Kind: KindTransient, Message: err.Error(), Err: err}
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, &VenueError{Venue: "htx", Kind: KindTransient, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &VenueError{Venue: "htx", Kind: KindTransient, Message: err.Error(), Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &VenueError{Venue: "htx", Kind: KindRateLimited, Message: "too many requests"}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &VenueError{Venue: "htx", Kind: KindAuthRefused, Message: resp.Status}
	}
	if resp.StatusCode >= 500 {
		return nil, &VenueError{Venue: "htx", Kind: KindNotAvailable, Message: resp.Status}
	}

	return body, nil
}

func (h *HTX) LoadMarkets(ctx context.Context) (*models.Venue, error) {
	body, err := h.get(ctx, "/v2/settings/common/symbols", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Bc             string  `json:"bc"` // base currency
			Qc             string  `json:"qc"` // quote currency
			Sc             string  `json:"sc"` // symbol code, e.g. btcusdt
			State          string  `json:"state"`
			TakerFeeRate   float64 `json:"tfr"` // может отсутствовать
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "htx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	venue := models.NewVenue("htx", "HTX")
	venue.Capabilities["fetchTickers"] = true
	venue.Capabilities["fetchOrderBook"] = true

	for _, m := range resp.Data {
		if m.State != "online" {
			continue
		}
		symbol := models.JoinSymbol(strings.ToUpper(m.Bc), strings.ToUpper(m.Qc))
		taker := m.TakerFeeRate
		if taker == 0 {
			taker = 0.002
		}
		venue.Symbols[symbol] = true
		venue.Currencies[strings.ToUpper(m.Bc)] = true
		venue.Currencies[strings.ToUpper(m.Qc)] = true
		venue.Markets[symbol] = models.MarketInfo{Taker: taker}
	}

	return venue, nil
}

func (h *HTX) toHTXSymbol(symbol string) string {
	base, quote, ok := models.SplitSymbol(symbol)
	if !ok {
		return strings.ToLower(strings.ReplaceAll(symbol, "/", ""))
	}
	return strings.ToLower(base + quote)
}

func (h *HTX) FetchTicker(ctx context.Context, symbol string) (*models.Ticker, error) {
	params := url.Values{"symbol": {h.toHTXSymbol(symbol)}}
	body, err := h.get(ctx, "/market/detail/merged", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Status string `json:"status"`
		Tick   struct {
			Bid []float64 `json:"bid"`
			Ask []float64 `json:"ask"`
		} `json:"tick"`
		Ts int64 `json:"ts"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "htx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}
	if resp.Status != "ok" || len(resp.Tick.Bid) < 2 || len(resp.Tick.Ask) < 2 {
		return nil, &VenueError{Venue: "htx", Kind: KindUnknownMarket, Message: "no tick for " + symbol}
	}

	bidVol, askVol := resp.Tick.Bid[1], resp.Tick.Ask[1]
	return &models.Ticker{
		Symbol:    symbol,
		Venue:     "htx",
		Bid:       resp.Tick.Bid[0],
		Ask:       resp.Tick.Ask[0],
		BidVolume: &bidVol,
		AskVolume: &askVol,
		Timestamp: time.UnixMilli(resp.Ts),
	}, nil
}

func (h *HTX) FetchTickers(ctx context.Context) (map[string]*models.Ticker, error) {
	body, err := h.get(ctx, "/market/tickers", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Symbol string  `json:"symbol"`
			Bid    float64 `json:"bid"`
			BidVol float64 `json:"bidSize"`
			Ask    float64 `json:"ask"`
			AskVol float64 `json:"askSize"`
		} `json:"data"`
		Ts int64 `json:"ts"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "htx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}

	out := make(map[string]*models.Ticker, len(resp.Data))
	ts := time.UnixMilli(resp.Ts)
	for _, d := range resp.Data {
		if d.Bid <= 0 || d.Ask <= 0 {
			continue
		}
		bidVol, askVol := d.BidVol, d.AskVol
		out[strings.ToUpper(d.Symbol)] = &models.Ticker{
			Symbol:    strings.ToUpper(d.Symbol),
			Venue:     "htx",
			Bid:       d.Bid,
			Ask:       d.Ask,
			BidVolume: &bidVol,
			AskVolume: &askVol,
			Timestamp: ts,
		}
	}
	return out, nil
}

func (h *HTX) FetchOrderBook(ctx context.Context, symbol string) (*models.OrderBook, error) {
	params := url.Values{"symbol": {h.toHTXSymbol(symbol)}, "depth": {"20"}, "type": {"step0"}}
	body, err := h.get(ctx, "/market/depth", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Status string `json:"status"`
		Tick   struct {
			Bids [][]float64 `json:"bids"`
			Asks [][]float64 `json:"asks"`
		} `json:"tick"`
		Ts int64 `json:"ts"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &VenueError{Venue: "htx", Kind: KindMalformed, Message: err.Error(), Err: err}
	}
	if resp.Status != "ok" {
		return nil, &VenueError{Venue: "htx", Kind: KindUnknownMarket, Message: "no depth for " + symbol}
	}

	ob := &models.OrderBook{Symbol: symbol, Venue: "htx", Timestamp: time.UnixMilli(resp.Ts)}
	for _, b := range resp.Tick.Bids {
		if len(b) >= 2 {
			ob.Bids = append(ob.Bids, models.PriceLevel{Price: b[0], Volume: b[1]})
		}
	}
	for _, a := range resp.Tick.Asks {
		if len(a) >= 2 {
			ob.Asks = append(ob.Asks, models.PriceLevel{Price: a[0], Volume: a[1]})
		}
	}
	sort.Slice(ob.Bids, func(i, j int) bool { return ob.Bids[i].Price > ob.Bids[j].Price })
	sort.Slice(ob.Asks, func(i, j int) bool { return ob.Asks[i].Price < ob.Asks[j].Price })
	return ob, nil
}

func (h *HTX) Close() error { return nil }
