package handler

import (
	"context"
	"net/http"
)

// VisitServiceInterface は訪問カウンターハンドラーが必要とするサービスインターフェース。
type VisitServiceInterface interface {
	// Record は訪問1回を記録する。ベストエフォートであり失敗しない。
	Record(ctx context.Context)
	// Total は現在の訪問数を返す。
	Total(ctx context.Context) int64
}

// VisitHandler は訪問カウンターのHTTPハンドラー。
type VisitHandler struct {
	service VisitServiceInterface
}

// NewVisitHandler はVisitHandlerを生成する。
func NewVisitHandler(service VisitServiceInterface) *VisitHandler {
	return &VisitHandler{service: service}
}

// totalResponse は訪問数のレスポンス。
type totalResponse struct {
	Total int64 `json:"total"`
}

// RecordVisit は訪問1回を記録する。ストア障害は呼び出し元には見せない。
// POST /metrics/visit
func (h *VisitHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	h.service.Record(r.Context())
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Total は現在の訪問数を返す。
// GET /metrics/total
func (h *VisitHandler) Total(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, totalResponse{Total: h.service.Total(r.Context())})
}
