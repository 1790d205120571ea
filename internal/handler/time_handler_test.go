package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raylabs/timeapp/internal/worldtime"
)

// mockClock はWorldClockInterfaceのモック実装。
type mockClock struct {
	times []worldtime.CityTime
}

func (m *mockClock) Now() []worldtime.CityTime { return m.times }

func TestTimeHandler_Now_ReturnsAllEntriesInOrder(t *testing.T) {
	clock := &mockClock{times: []worldtime.CityTime{
		{Label: "New York", TZ: "America/New_York", ISO: "2026-01-15T07:00:00-05:00"},
		{Label: "Beijing", TZ: "Asia/Shanghai", ISO: "2026-01-15T20:00:00+08:00"},
		{Label: "Sydney", TZ: "Australia/Sydney", ISO: "2026-01-15T23:00:00+11:00"},
		{Label: "Delhi", TZ: "Asia/Kolkata", ISO: "2026-01-15T17:30:00+05:30"},
	}}
	h := NewTimeHandler(clock)

	req := httptest.NewRequest(http.MethodGet, "/time/now", nil)
	w := httptest.NewRecorder()
	h.Now(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body timeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(body.Times) != 4 {
		t.Fatalf("len(times) = %d, want 4", len(body.Times))
	}

	wantLabels := []string{"New York", "Beijing", "Sydney", "Delhi"}
	for i, want := range wantLabels {
		if body.Times[i].Label != want {
			t.Errorf("times[%d].label = %q, want %q", i, body.Times[i].Label, want)
		}
	}
}

// 実サービスとの結合: 常に4件・固定順・オフセット付きタイムスタンプであること。
func TestTimeHandler_Now_WithRealService(t *testing.T) {
	svc, err := worldtime.NewService()
	if err != nil {
		t.Fatalf("worldtime.NewService() = %v", err)
	}
	h := NewTimeHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/time/now", nil)
	w := httptest.NewRecorder()
	h.Now(w, req)

	var body timeResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(body.Times) != 4 {
		t.Fatalf("len(times) = %d, want 4", len(body.Times))
	}
	for _, entry := range body.Times {
		if _, err := time.Parse(time.RFC3339, entry.ISO); err != nil {
			t.Errorf("iso %q is not valid RFC3339: %v", entry.ISO, err)
		}
	}
}
