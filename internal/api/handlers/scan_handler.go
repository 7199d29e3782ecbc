package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"arbitrage/internal/service"
)

// ScanHandler запускает одноразовые сканы по запросу (C9).
//
// Endpoints:
// - POST /api/scans
type ScanHandler struct {
	scanService service.ScanServiceInterface
}

// NewScanHandler создает новый ScanHandler.
func NewScanHandler(scanService service.ScanServiceInterface) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// triggerScanRequest - тело запроса POST /api/scans.
//
//	{
//	  "mode": "single_venue" | "multi_venue" | "cross_venue",
//	  "venue": "bybit",            // single_venue
//	  "venues": ["bybit", "okx"],  // multi_venue/cross_venue, опционально
//	  "symbol": "BTC/USDT",        // cross_venue
//	  "source": "USDT",            // single_venue/multi_venue
//	  "depth_mode": false,
//	  "unique_path": false
//	}
type triggerScanRequest struct {
	Mode       string   `json:"mode"`
	Venue      string   `json:"venue,omitempty"`
	Venues     []string `json:"venues,omitempty"`
	Symbol     string   `json:"symbol,omitempty"`
	Source     string   `json:"source,omitempty"`
	DepthMode  bool     `json:"depth_mode,omitempty"`
	UniquePath bool     `json:"unique_path,omitempty"`
}

// TriggerScan запускает одноразовый скан и возвращает найденные циклы или
// межбиржевую возможность.
//
// POST /api/scans
//
// Response 400 Bad Request: неизвестный режим или отсутствует обязательное поле.
// Response 500 Internal Server Error: ошибка во время скана (также записывается
// в ScanRun.Errors и поднимает уведомление SCAN_ERROR).
func (h *ScanHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	var req triggerScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.scanService.TriggerScan(r.Context(), service.ScanRequest{
		Mode:       req.Mode,
		Venue:      req.Venue,
		Venues:     req.Venues,
		Symbol:     req.Symbol,
		Source:     req.Source,
		DepthMode:  req.DepthMode,
		UniquePath: req.UniquePath,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScanUnknownMode),
			errors.Is(err, service.ErrScanVenueRequired),
			errors.Is(err, service.ErrScanSymbolRequired),
			errors.Is(err, service.ErrScanSourceRequired):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrScanVenueNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}
