package cycle

import (
	"math"

	"arbitrage/internal/models"
)

// BuildLedger реализует учёт прибыли цикла (§4.5.5): валовой множитель
// прибыли (произведение no_fee_rate*(1-fee) по всем рёбрам - совпадает с
// exp(-WeightSum), но считается отдельно как явная проверка) и, если цикл
// построен в depth mode (startingVolume задан), по-рёберный журнал сделок с
// объёмами, зажатыми доступной ёмкостью ребра. Объём ребра типа BUY переведён
// в единицах базовой валюты (умножением на NoFeeRate = 1/ask), так как сама
// сделка исполняется в котируемой валюте.
func BuildLedger(edges []models.RateEdge, startingVolume *float64) (grossMultiplier float64, ledger []models.LedgerEntry) {
	grossMultiplier = 1.0
	ledger = make([]models.LedgerEntry, 0, len(edges))

	var current float64
	hasVolume := startingVolume != nil
	if hasVolume {
		current = *startingVolume
	}

	for _, e := range edges {
		grossMultiplier *= e.NoFeeRate * (1 - e.Fee)

		entry := models.LedgerEntry{
			Market:    e.MarketName,
			NoFeeRate: e.NoFeeRate,
			Fee:       e.Fee,
			TradeType: e.TradeType,
		}

		if hasVolume {
			traded := current
			if e.HasDepth {
				if capacity := edgeCapacity(e); capacity < traded {
					traded = capacity
				}
			}
			entry.Volume = traded
			if e.TradeType == models.TradeBuy {
				entry.Volume = traded * e.NoFeeRate
			}
			current = traded * e.NoFeeRate * (1 - e.Fee)
		}

		ledger = append(ledger, entry)
	}

	return grossMultiplier, ledger
}

func edgeCapacity(e models.RateEdge) float64 {
	return math.Exp(-e.Depth)
}
