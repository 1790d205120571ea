// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// okResponse は成功応答の共通フォーマット。
type okResponse struct {
	OK bool `json:"ok"`
}

// errorResponse はエラー応答の共通フォーマット。
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeError は統一フォーマットでエラーレスポンスを書き込む。
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func writeInternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
