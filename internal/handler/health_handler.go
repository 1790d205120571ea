package handler

import "net/http"

// AvailabilityReporter はバックエンドストアの現在の可用性状態を報告する。
// database.Postgres / database.Redis が実装する。再接続は試みない。
type AvailabilityReporter interface {
	Available() bool
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	pg    AvailabilityReporter
	redis AvailabilityReporter
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(pg, redis AvailabilityReporter) *HealthHandler {
	return &HealthHandler{pg: pg, redis: redis}
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	OK    bool `json:"ok"`
	PG    bool `json:"pg"`
	Redis bool `json:"redis"`
}

// Healthz は両ストアの現在の可用性状態を返す。
// GET /healthz
// ストアが両方未設定でもエラーにはならない。
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		OK:    true,
		PG:    h.pg.Available(),
		Redis: h.redis.Available(),
	})
}
