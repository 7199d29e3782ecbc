package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"arbitrage/internal/models"
)

// ============ StatsHandler Tests ============

func TestStatsHandler_GetStats(t *testing.T) {
	t.Run("returns stats successfully", func(t *testing.T) {
		mockSvc := NewMockStatsService()
		handler := NewStatsHandler(mockSvc)

		mockSvc.SetStats(&models.Stats{
			TotalScans:         100,
			TotalOpportunities: 12,
			TodayScans:         5,
			TodayOpportunities: 1,
			WeekScans:          25,
			WeekOpportunities:  4,
			MonthScans:         80,
			MonthOpportunities: 9,
		})

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		w := httptest.NewRecorder()

		handler.GetStats(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var response models.Stats
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.TotalScans != 100 {
			t.Errorf("expected TotalScans 100, got %d", response.TotalScans)
		}
		if response.TotalOpportunities != 12 {
			t.Errorf("expected TotalOpportunities 12, got %d", response.TotalOpportunities)
		}
	})

	t.Run("returns empty arrays instead of null for top symbols", func(t *testing.T) {
		mockSvc := NewMockStatsService()
		handler := NewStatsHandler(mockSvc)

		mockSvc.SetStats(&models.Stats{})

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		w := httptest.NewRecorder()

		handler.GetStats(w, req)

		var response map[string]interface{}
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["top_symbols_by_opportunity"] == nil {
			t.Error("top_symbols_by_opportunity should be [] not null")
		}
		if response["top_symbols_by_profit"] == nil {
			t.Error("top_symbols_by_profit should be [] not null")
		}
	})

	t.Run("returns 500 on service error", func(t *testing.T) {
		mockSvc := NewMockStatsService()
		handler := NewStatsHandler(mockSvc)

		mockSvc.SetError("get", ErrMockDatabase)

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		w := httptest.NewRecorder()

		handler.GetStats(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestStatsHandler_GetRecentScans(t *testing.T) {
	t.Run("returns recent scan runs", func(t *testing.T) {
		mockSvc := NewMockStatsService()
		handler := NewStatsHandler(mockSvc)

		mockSvc.AddScanRun(&models.ScanRun{ID: 1, VenuesPolled: 6, SymbolsScanned: 340, OpportunitiesFound: 1})
		mockSvc.AddScanRun(&models.ScanRun{ID: 2, VenuesPolled: 6, SymbolsScanned: 340, OpportunitiesFound: 0})

		req := httptest.NewRequest(http.MethodGet, "/api/stats/scans", nil)
		w := httptest.NewRecorder()

		handler.GetRecentScans(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var response []models.ScanRun
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if len(response) != 2 {
			t.Errorf("expected 2 scan runs, got %d", len(response))
		}
	})

	t.Run("respects limit query parameter", func(t *testing.T) {
		mockSvc := NewMockStatsService()
		handler := NewStatsHandler(mockSvc)

		for i := 0; i < 5; i++ {
			mockSvc.AddScanRun(&models.ScanRun{ID: i + 1})
		}

		req := httptest.NewRequest(http.MethodGet, "/api/stats/scans?limit=3", nil)
		w := httptest.NewRecorder()

		handler.GetRecentScans(w, req)

		var response []models.ScanRun
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if len(response) != 3 {
			t.Errorf("expected 3 scan runs (limited), got %d", len(response))
		}
	})

	t.Run("returns empty array instead of null", func(t *testing.T) {
		mockSvc := NewMockStatsService()
		handler := NewStatsHandler(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/stats/scans", nil)
		w := httptest.NewRecorder()

		handler.GetRecentScans(w, req)

		body := w.Body.String()
		if body != "[]\n" && body != "[]" {
			t.Errorf("expected empty JSON array, got %q", body)
		}
	})

	t.Run("returns 500 on service error", func(t *testing.T) {
		mockSvc := NewMockStatsService()
		handler := NewStatsHandler(mockSvc)

		mockSvc.SetError("runs", ErrMockDatabase)

		req := httptest.NewRequest(http.MethodGet, "/api/stats/scans", nil)
		w := httptest.NewRecorder()

		handler.GetRecentScans(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}
