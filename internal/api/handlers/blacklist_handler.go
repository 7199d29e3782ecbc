package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"arbitrage/internal/models"
	"arbitrage/internal/service"

	"github.com/gorilla/mux"
)

// BlacklistHandler отвечает за управление черным списком построения каталога
//
// Endpoints:
// - GET /api/blacklist - получение черного списка
// - POST /api/blacklist - добавление символа или площадки в черный список
// - DELETE /api/blacklist/{symbol} - удаление из черного списка
//
// Назначение:
// Обрабатывает запросы для черного списка build_specific/build_all (C1).
// Запись исключает из каталога либо конкретный торговый символ, либо
// площадку целиком - Kind различает эти два случая.
type BlacklistHandler struct {
	blacklistService service.BlacklistServiceInterface
}

// NewBlacklistHandler создает новый BlacklistHandler с внедрением зависимостей.
func NewBlacklistHandler(blacklistService service.BlacklistServiceInterface) *BlacklistHandler {
	return &BlacklistHandler{
		blacklistService: blacklistService,
	}
}

// addToBlacklistRequest - структура запроса для добавления в черный список.
// Kind необязателен, по умолчанию "symbol"; единственное другое значение - "venue".
type addToBlacklistRequest struct {
	Symbol string `json:"symbol"` // Торговый символ (например, "BTCUSDT") или ID площадки при kind=venue
	Reason string `json:"reason"` // Причина добавления (опционально)
	Kind   string `json:"kind"`
}

// blacklistResponse - структура ответа со списком записей
type blacklistResponse struct {
	Entries []blacklistEntryResponse `json:"entries"`
	Total   int                      `json:"total"`
}

// blacklistEntryResponse - структура одной записи черного списка
type blacklistEntryResponse struct {
	ID        int    `json:"id"`
	Symbol    string `json:"symbol"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}

// GetBlacklist возвращает весь черный список
//
// GET /api/blacklist
//
// Response 200:
//
//	{
//	  "entries": [
//	    {"id": 1, "symbol": "BTCUSDT", "kind": "symbol", "reason": "Высокая волатильность", "created_at": "2025-01-15T10:30:00Z"},
//	    {"id": 2, "symbol": "ETHUSDT", "kind": "symbol", "reason": "Низкая ликвидность", "created_at": "2025-01-14T09:00:00Z"}
//	  ],
//	  "total": 2
//	}
//
// Response 500:
//
//	{"error": "Failed to get blacklist"}
func (h *BlacklistHandler) GetBlacklist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.blacklistService.GetBlacklist()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get blacklist")
		return
	}

	// Формируем ответ
	response := blacklistResponse{
		Entries: make([]blacklistEntryResponse, 0, len(entries)),
		Total:   len(entries),
	}

	for _, entry := range entries {
		response.Entries = append(response.Entries, blacklistEntryResponse{
			ID:        entry.ID,
			Symbol:    entry.Target,
			Kind:      string(entry.Kind),
			Reason:    entry.Reason,
			CreatedAt: entry.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	respondJSON(w, http.StatusOK, response)
}

// AddToBlacklist добавляет символ или площадку в черный список
//
// POST /api/blacklist
//
// Request:
//
//	{
//	  "symbol": "BTCUSDT",
//	  "reason": "Высокая волатильность"
//	}
//
// Response 201:
//
//	{
//	  "id": 1,
//	  "symbol": "BTCUSDT",
//	  "kind": "symbol",
//	  "reason": "Высокая волатильность",
//	  "created_at": "2025-01-15T10:30:00Z"
//	}
//
// Response 400:
//
//	{"error": "symbol is required"}
//
// Response 409:
//
//	{"error": "symbol already in blacklist"}
//
// Response 500:
//
//	{"error": "Failed to add to blacklist"}
func (h *BlacklistHandler) AddToBlacklist(w http.ResponseWriter, r *http.Request) {
	var req addToBlacklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Валидация
	if req.Symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	// Добавляем в черный список - kind=venue исключает площадку целиком,
	// иначе (по умолчанию) исключается конкретный торговый символ
	var entry *models.BlacklistEntry
	var err error
	if strings.EqualFold(req.Kind, string(models.BlacklistKindVenue)) {
		entry, err = h.blacklistService.AddVenueToBlacklist(req.Symbol, req.Reason)
	} else {
		entry, err = h.blacklistService.AddToBlacklist(req.Symbol, req.Reason)
	}
	if err != nil {
		if errors.Is(err, service.ErrBlacklistSymbolEmpty) {
			respondError(w, http.StatusBadRequest, "symbol is required")
			return
		}
		if errors.Is(err, service.ErrBlacklistSymbolExists) {
			respondError(w, http.StatusConflict, "symbol already in blacklist")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to add to blacklist")
		return
	}

	// Формируем ответ
	response := blacklistEntryResponse{
		ID:        entry.ID,
		Symbol:    entry.Target,
		Kind:      string(entry.Kind),
		Reason:    entry.Reason,
		CreatedAt: entry.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}

	respondJSON(w, http.StatusCreated, response)
}

// RemoveFromBlacklist удаляет запись из черного списка
//
// DELETE /api/blacklist/{symbol}
//
// Response 204: No Content (успешное удаление)
//
// Response 400:
//
//	{"error": "symbol is required"}
//
// Response 404:
//
//	{"error": "symbol not found in blacklist"}
//
// Response 500:
//
//	{"error": "Failed to remove from blacklist"}
func (h *BlacklistHandler) RemoveFromBlacklist(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	err := h.blacklistService.RemoveFromBlacklist(symbol)
	if err != nil {
		if errors.Is(err, service.ErrBlacklistSymbolEmpty) {
			respondError(w, http.StatusBadRequest, "symbol is required")
			return
		}
		if errors.Is(err, service.ErrBlacklistEntryNotFound) {
			respondError(w, http.StatusNotFound, "symbol not found in blacklist")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to remove from blacklist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
