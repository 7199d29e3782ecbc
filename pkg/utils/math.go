package utils

import "math"

// RoundToLotSize округляет количество вниз до ближайшего кратного lotSize.
// lotSize <= 0 возвращает qty без изменений.
func RoundToLotSize(qty, lotSize float64) float64 {
	if lotSize <= 0 {
		return qty
	}
	steps := math.Floor(qty/lotSize + 1e-9)
	return steps * lotSize
}

// RoundToLotSizeUp округляет количество вверх до ближайшего кратного lotSize.
func RoundToLotSizeUp(qty, lotSize float64) float64 {
	if lotSize <= 0 {
		return qty
	}
	steps := math.Ceil(qty/lotSize - 1e-9)
	return steps * lotSize
}

// RoundToLotSizeNearest округляет количество до ближайшего кратного lotSize.
func RoundToLotSizeNearest(qty, lotSize float64) float64 {
	if lotSize <= 0 {
		return qty
	}
	steps := math.Round(qty / lotSize)
	return steps * lotSize
}

// CalculateSpread возвращает спред в процентах между двумя ценами одного символа.
// Formula: (priceHigh - priceLow) / priceLow * 100
func CalculateSpread(priceHigh, priceLow float64) float64 {
	if priceLow <= 0 {
		return 0
	}
	return (priceHigh - priceLow) / priceLow * 100
}

// CalculateSpreadFromPrices возвращает абсолютный спред между двумя ценами
// независимо от того, какая из них выше.
func CalculateSpreadFromPrices(priceA, priceB float64) float64 {
	if priceA >= priceB {
		return CalculateSpread(priceA, priceB)
	}
	return CalculateSpread(priceB, priceA)
}

// CalculateNetSpread вычитает из спреда комиссии обеих сторон сделки (в процентах).
func CalculateNetSpread(spreadPct, feeA, feeB float64) float64 {
	return spreadPct - 2*(feeA+feeB)*100
}

// CalculateNetSpreadDirect считает чистый спред прямо по двум ценам и комиссиям.
func CalculateNetSpreadDirect(priceHigh, priceLow, feeA, feeB float64) float64 {
	return CalculateNetSpread(CalculateSpread(priceHigh, priceLow), feeA, feeB)
}

// CalculateWeightedAverage возвращает средневзвешенное значение values по weights.
// Отрицательные веса игнорируются. Несовпадение длин или нулевая сумма весов даёт 0.
func CalculateWeightedAverage(values, weights []float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}
	var totalValue, totalWeight float64
	for i, w := range weights {
		if w < 0 {
			continue
		}
		totalValue += values[i] * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return totalValue / totalWeight
}

// OrderBookLevel - один уровень цены/объёма в стакане ордеров.
type OrderBookLevel struct {
	Price  float64
	Volume float64
}

// simulateMarketFill проходит по уровням стакана, набирая targetVolume,
// и возвращает средневзвешенную цену исполнения, фактически заполненный
// объём и проскальзывание в процентах относительно цены первого уровня.
func simulateMarketFill(levels []OrderBookLevel, targetVolume float64) (avgPrice, filled, slippagePct float64) {
	if len(levels) == 0 || targetVolume <= 0 {
		return 0, 0, 0
	}

	remaining := targetVolume
	var totalValue float64
	for _, lvl := range levels {
		if remaining <= 0 {
			break
		}
		take := math.Min(remaining, lvl.Volume)
		totalValue += lvl.Price * take
		filled += take
		remaining -= take
	}

	if filled == 0 {
		return 0, 0, 0
	}

	avgPrice = totalValue / filled
	slippagePct = (avgPrice - levels[0].Price) / levels[0].Price * 100
	return avgPrice, filled, slippagePct
}

// SimulateMarketBuy симулирует рыночную покупку targetVolume против книги asks.
func SimulateMarketBuy(asks []OrderBookLevel, targetVolume float64) (avgPrice, filled, slippagePct float64) {
	return simulateMarketFill(asks, targetVolume)
}

// SimulateMarketSell симулирует рыночную продажу targetVolume против книги bids.
func SimulateMarketSell(bids []OrderBookLevel, targetVolume float64) (avgPrice, filled, slippagePct float64) {
	return simulateMarketFill(bids, targetVolume)
}

// SplitVolume делит totalVolume на nParts равных частей, округлённых вниз до lotSize.
func SplitVolume(totalVolume float64, nParts int, lotSize float64) []float64 {
	if nParts <= 0 || totalVolume <= 0 {
		return nil
	}
	part := RoundToLotSize(totalVolume/float64(nParts), lotSize)
	parts := make([]float64, nParts)
	for i := range parts {
		parts[i] = part
	}
	return parts
}

// IsSpreadSufficient проверяет, что наблюдаемый спред достиг порога входа.
func IsSpreadSufficient(spread, threshold float64) bool {
	return spread >= threshold
}

// ShouldExit проверяет, сошёлся ли спред до порога выхода.
func ShouldExit(spread, exitThreshold float64) bool {
	return spread <= exitThreshold
}

// IsStopLossHit проверяет, пробит ли stop-loss по накопленному убытку.
// stopLoss <= 0 считается отключённым (всегда false).
func IsStopLossHit(pnl, stopLoss float64) bool {
	if stopLoss <= 0 {
		return false
	}
	return pnl <= -stopLoss
}

// Clamp ограничивает value диапазоном [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// EdgeWeight возвращает вес ребра графа обмена для задачи поиска негативного цикла:
// weight = -ln(rate * (1 - fee)). rate <= 0 или fee >= 1 делают ребро непроходимым (+Inf).
func EdgeWeight(rate, fee float64) float64 {
	effective := rate * (1 - fee)
	if effective <= 0 {
		return math.Inf(1)
	}
	return -math.Log(effective)
}

// EdgeDepth возвращает "глубину" ребра по доступному объёму: depth = -ln(volume).
// volume <= 0 считается бесконечно мелким ребром (+Inf), непроходимым в depth-aware поиске.
func EdgeDepth(volume float64) float64 {
	if volume <= 0 {
		return math.Inf(1)
	}
	return -math.Log(volume)
}

// ProfitRatio переводит сумму весов рёбер цикла обратно в множитель прибыли:
// ratio = exp(-sum(weights)). ratio > 1 означает прибыльный цикл.
func ProfitRatio(weightSum float64) float64 {
	return math.Exp(-weightSum)
}
