package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"arbitrage/internal/service"
	"arbitrage/internal/venueclient"

	"github.com/gorilla/mux"
)

// ConnectVenueRequest - тело запроса для подключения площадки
type ConnectVenueRequest struct {
	APIKey     string `json:"api_key"`
	SecretKey  string `json:"secret_key"`
	Passphrase string `json:"passphrase,omitempty"` // для OKX
}

// VenueResponse - ответ с информацией о площадке
type VenueResponse struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	LastError string `json:"last_error,omitempty"`
}

// MaxRequestBodySize ограничение размера тела запроса (1 MB)
const MaxRequestBodySize = 1 << 20 // 1 MB

// VenueHandler управляет (опциональными) учётными данными площадок - не
// торговыми счетами. Подписанный доступ лишь снимает ограничение частоты
// запросов на рыночные данные у части площадок (см. VenueService).
//
// Endpoints:
// - GET /api/venues - список площадок и статус подключения
// - POST /api/venues/{name}/connect - подключить площадку
// - DELETE /api/venues/{name}/connect - отключить площадку
type VenueHandler struct {
	venueService service.VenueServiceInterface
}

// NewVenueHandler создает новый VenueHandler
func NewVenueHandler(venueService service.VenueServiceInterface) *VenueHandler {
	return &VenueHandler{
		venueService: venueService,
	}
}

// ConnectVenue подключает площадку с API ключами.
// POST /api/venues/{name}/connect
func (h *VenueHandler) ConnectVenue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := strings.ToLower(vars["name"])

	if !venueclient.IsSupported(name) {
		h.respondWithError(w, http.StatusBadRequest, "Unsupported venue", "Supported venues: "+strings.Join(venueclient.SupportedVenues, ", "))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	var req ConnectVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if req.APIKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "API key is required", "")
		return
	}
	if req.SecretKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "Secret key is required", "")
		return
	}
	if name == "okx" && req.Passphrase == "" {
		h.respondWithError(w, http.StatusBadRequest, "Passphrase is required for OKX", "")
		return
	}

	ctx := r.Context()
	err := h.venueService.ConnectVenue(ctx, name, req.APIKey, req.SecretKey, req.Passphrase)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVenueNotSupported):
			h.respondWithError(w, http.StatusBadRequest, "Venue not supported", err.Error())
		case errors.Is(err, service.ErrVenueAlreadyConnected):
			h.respondWithError(w, http.StatusConflict, "Venue is already connected", "Disconnect first to change credentials")
		case errors.Is(err, service.ErrInvalidCredentials):
			h.respondWithError(w, http.StatusUnauthorized, "Invalid API credentials", err.Error())
		case errors.Is(err, service.ErrConnectionFailed):
			h.respondWithError(w, http.StatusBadGateway, "Failed to connect to venue", err.Error())
		default:
			h.respondWithError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		}
		return
	}

	account, err := h.venueService.GetVenueByName(name)
	if err != nil {
		h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":   "Venue connected successfully",
			"name":      name,
			"connected": true,
		})
		return
	}

	h.respondWithJSON(w, http.StatusOK, VenueResponse{
		Name:      account.Name,
		Connected: account.Connected,
		LastError: account.LastError,
	})
}

// DisconnectVenue удаляет сохранённые учётные данные площадки.
// DELETE /api/venues/{name}/connect
func (h *VenueHandler) DisconnectVenue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := strings.ToLower(vars["name"])

	if !venueclient.IsSupported(name) {
		h.respondWithError(w, http.StatusBadRequest, "Unsupported venue", "Supported venues: "+strings.Join(venueclient.SupportedVenues, ", "))
		return
	}

	if err := h.venueService.DisconnectVenue(name); err != nil {
		switch {
		case errors.Is(err, service.ErrVenueNotConnected):
			h.respondWithError(w, http.StatusNotFound, "Venue is not connected", "")
		default:
			h.respondWithError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		}
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Venue disconnected successfully",
		"name":      name,
		"connected": false,
	})
}

// GetVenues возвращает список всех поддерживаемых площадок с их статусами.
// GET /api/venues
func (h *VenueHandler) GetVenues(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.venueService.GetAllVenues()
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get venues", err.Error())
		return
	}

	response := make([]VenueResponse, 0, len(accounts))
	for _, account := range accounts {
		response = append(response, VenueResponse{
			Name:      account.Name,
			Connected: account.Connected,
			LastError: account.LastError,
		})
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

func (h *VenueHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h *VenueHandler) respondWithError(w http.ResponseWriter, code int, message string, details string) {
	h.respondWithJSON(w, code, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
