package handlers

import (
	"context"
	"errors"
	"net/http"

	"arbitrage/internal/catalog"

	"github.com/gorilla/mux"
)

// CollectionProvider отвязывает CollectionsHandler от конкретного типа
// *catalog.Catalog (C1).
type CollectionProvider interface {
	ExchangesFor(ctx context.Context, symbol string) ([]string, error)
}

var _ CollectionProvider = (*catalog.Catalog)(nil)

// CollectionsHandler отдаёт площадки, на которых торгуется символ.
//
// Endpoints:
// - GET /api/collections/{symbol}
type CollectionsHandler struct {
	catalog CollectionProvider
}

// NewCollectionsHandler создает новый CollectionsHandler.
func NewCollectionsHandler(catalog CollectionProvider) *CollectionsHandler {
	return &CollectionsHandler{catalog: catalog}
}

// collectionResponse - ответ на GET /api/collections/{symbol}.
type collectionResponse struct {
	Symbol  string   `json:"symbol"`
	Venues  []string `json:"venues"`
	Tradable bool    `json:"tradable"`
}

// GetCollection возвращает список площадок, торгующих данным символом.
//
// GET /api/collections/{symbol}
//
// Response 404 Not Found: символ не найден ни на одной известной площадке.
func (h *CollectionsHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	venues, err := h.catalog.ExchangesFor(r.Context(), symbol)
	if err != nil {
		var unknown *catalog.UnknownSymbolError
		if errors.As(err, &unknown) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, collectionResponse{
		Symbol:   symbol,
		Venues:   venues,
		Tradable: len(venues) > 1,
	})
}
