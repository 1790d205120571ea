package handler

import (
	"net/http"

	"github.com/raylabs/timeapp/internal/worldtime"
)

// WorldClockInterface は時刻ハンドラーが必要とするサービスインターフェース。
type WorldClockInterface interface {
	Now() []worldtime.CityTime
}

// TimeHandler は都市別現在時刻のHTTPハンドラー。
type TimeHandler struct {
	clock WorldClockInterface
}

// NewTimeHandler はTimeHandlerを生成する。
func NewTimeHandler(clock WorldClockInterface) *TimeHandler {
	return &TimeHandler{clock: clock}
}

// timeEntry は1都市分の時刻レスポンス。
type timeEntry struct {
	Label string `json:"label"`
	TZ    string `json:"tz"`
	ISO   string `json:"iso"`
}

// timeResponse は現在時刻のレスポンス。
type timeResponse struct {
	Times []timeEntry `json:"times"`
}

// Now は固定4都市の現在時刻を固定順で返す。
// GET /time/now
func (h *TimeHandler) Now(w http.ResponseWriter, r *http.Request) {
	cityTimes := h.clock.Now()
	entries := make([]timeEntry, len(cityTimes))
	for i, ct := range cityTimes {
		entries[i] = timeEntry{Label: ct.Label, TZ: ct.TZ, ISO: ct.ISO}
	}
	writeJSON(w, http.StatusOK, timeResponse{Times: entries})
}
