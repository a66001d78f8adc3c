package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"purpleair_display/internal/display"
	"purpleair_display/internal/models"
	"purpleair_display/internal/service"
)

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
}

func TestGetReading(t *testing.T) {
	mon := &mockMonitoring{reading: models.Reading{ID: 4, Status: models.StatusOK, AQI: 33, Category: "Good"}}
	r := newTestRouter(&service.Service{Monitoring: mon})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reading", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got models.Reading
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 4 || got.AQI != 33 {
		t.Fatalf("unexpected reading: %+v", got)
	}

	mon.err = errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reading", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetReadings(t *testing.T) {
	mon := &mockMonitoring{history: []models.Reading{{ID: 1}, {ID: 2}}}
	r := newTestRouter(&service.Service{Monitoring: mon})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/readings?from=2025-08-01T00:00:00Z&to=2025-08-02&limit=50", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count    int              `json:"count"`
		Readings []models.Reading `json:"readings"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Readings) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if mon.lastFilter.Limit != 50 {
		t.Fatalf("limit: got %d", mon.lastFilter.Limit)
	}
	if !mon.lastFilter.From.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from: got %v", mon.lastFilter.From)
	}
	if !mon.lastFilter.To.Equal(time.Date(2025, 8, 2, 23, 59, 59, 999999999, time.UTC)) {
		t.Fatalf("to: got %v", mon.lastFilter.To)
	}

	for _, q := range []string{"?limit=0", "?limit=abc", "?from=yesterday"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/readings"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, w.Code)
		}
	}

	mon.histErr = errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/readings", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetDisplay(t *testing.T) {
	mon := &mockMonitoring{frame: display.Frame{Lines: []string{"AQI 12 Good", "", "", "kitchen"}, Color: "#00e400"}}
	r := newTestRouter(&service.Service{Monitoring: mon})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/display", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got display.Frame
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Color != "#00e400" || got.Lines[0] != "AQI 12 Good" {
		t.Fatalf("unexpected frame: %+v", got)
	}

	mon.frameErr = errors.New("boom")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/display", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetDevice(t *testing.T) {
	dev := &mockDevice{info: models.DeviceInfo{Hostname: "PurpleAir Display", SSID: "Starbucks Wifi", OTAProtected: true}}
	r := newTestRouter(&service.Service{Device: dev})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/device", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got models.DeviceInfo
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got != dev.info {
		t.Fatalf("got %+v; want %+v", got, dev.info)
	}
}
