package graph

import (
	"sort"

	"arbitrage/internal/models"
	"arbitrage/pkg/utils"
)

// buildSymbolEdges вычисляет пару рёбер B->Q/Q->B для один рынок на одной
// площадке. Общая логика для однобиржевого (C3) и межбиржевого (C4)
// строителей - правила конвертации тикера в ребро одинаковы, меняется
// только то, в какой граф ребро попадает (RateGraph или RateMultigraph).
func buildSymbolEdges(venueID, symbol string, ticker *models.Ticker, fee float64, depthMode bool) (sell, buy models.RateEdge, ok bool) {
	base, quote, split := models.SplitSymbol(symbol)
	if !split || !ticker.Usable(depthMode) {
		return models.RateEdge{}, models.RateEdge{}, false
	}

	sell = models.RateEdge{
		From:       base,
		To:         quote,
		Weight:     utils.EdgeWeight(ticker.Bid, fee),
		MarketName: symbol,
		Venue:      venueID,
		TradeType:  models.TradeSell,
		Fee:        fee,
		NoFeeRate:  ticker.Bid,
	}
	if depthMode && ticker.BidVolume != nil {
		sell.HasDepth = true
		sell.Depth = utils.EdgeDepth(*ticker.BidVolume)
	}

	noFeeRate := 1 / ticker.Ask
	buy = models.RateEdge{
		From:       quote,
		To:         base,
		Weight:     utils.EdgeWeight(noFeeRate, fee),
		MarketName: symbol,
		Venue:      venueID,
		TradeType:  models.TradeBuy,
		Fee:        fee,
		NoFeeRate:  noFeeRate,
	}
	if depthMode && ticker.AskVolume != nil {
		buy.HasDepth = true
		buy.Depth = utils.EdgeDepth(*ticker.AskVolume * ticker.Ask)
	}

	return sell, buy, true
}

// BuildMultiVenue реализует C4: из тикеров нескольких площадок строит
// межбиржевой мультиграф, где на паре (from,to) может существовать
// несколько параллельных рёбер - по одному на площадку, торгующую символом.
// Площадки обходятся в отсортированном порядке, чтобы Reduce() детерминированно
// выбирал победителя при равенстве весов (см. models.RateMultigraph.Reduce).
func BuildMultiVenue(venues map[string]*models.Venue, tickersByVenue map[string]map[string]*models.Ticker, depthMode bool, logger *utils.Logger) *models.RateMultigraph {
	g := models.NewRateMultigraph()

	venueIDs := make([]string, 0, len(venues))
	for id := range venues {
		venueIDs = append(venueIDs, id)
	}
	sort.Strings(venueIDs)

	for _, venueID := range venueIDs {
		venue := venues[venueID]
		tickers := tickersByVenue[venueID]
		for symbol, ticker := range tickers {
			fee := 0.0
			if info, ok := venue.Markets[symbol]; ok {
				fee = info.Taker
			}
			sell, buy, ok := buildSymbolEdges(venueID, symbol, ticker, fee, depthMode)
			if !ok {
				if logger != nil {
					logger.Sugar().Debugw("graph: skipping symbol in multi-venue build", "venue", venueID, "symbol", symbol)
				}
				continue
			}
			g.AddEdge(sell)
			g.AddEdge(buy)
		}
	}

	return g
}
