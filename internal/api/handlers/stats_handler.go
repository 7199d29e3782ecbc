package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"arbitrage/internal/models"
	"arbitrage/internal/service"
)

// StatsHandler обрабатывает HTTP запросы для статистики сканера.
//
// Endpoints:
// - GET /api/stats - агрегированная статистика (C8: scan_runs totals/today/week/month)
// - GET /api/stats/scans - последние ScanRun
type StatsHandler struct {
	statsService service.StatsServiceInterface
}

// NewStatsHandler создает новый StatsHandler с внедрением зависимостей.
func NewStatsHandler(statsService service.StatsServiceInterface) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats возвращает агрегированную статистику сканов.
//
// GET /api/stats
//
// Response 200 OK:
//
//	{
//	  "total_scans": 150, "total_opportunities": 42,
//	  "today_scans": 5, "today_opportunities": 2,
//	  ...
//	}
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stats, err := h.statsService.GetStats()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "failed to get stats",
			"details": err.Error(),
		})
		return
	}

	if stats.TopSymbolsByOpportunity == nil {
		stats.TopSymbolsByOpportunity = []models.SymbolStat{}
	}
	if stats.TopSymbolsByProfit == nil {
		stats.TopSymbolsByProfit = []models.SymbolStat{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}

// GetRecentScans возвращает последние запуски сканера (C8).
//
// GET /api/stats/scans?limit=50
//
// Response 200 OK:
//
//	[
//	  {"id": 12, "started_at": "...", "finished_at": "...", "venues_polled": 6,
//	   "symbols_scanned": 340, "opportunities_found": 1, "errors": []}
//	]
func (h *StatsHandler) GetRecentScans(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.statsService.GetRecentScanRuns(limit)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "failed to get scan runs",
			"details": err.Error(),
		})
		return
	}
	if runs == nil {
		runs = []*models.ScanRun{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(runs)
}
