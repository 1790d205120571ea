package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/raylabs/timeapp/internal/auth"
)

// accessTokenCookie はセッショントークンを格納するCookie名。
const accessTokenCookie = "access_token"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, bool, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure bool
	TokenTTL     time.Duration
}

// AuthHandler はユーザー登録・ログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// credentialsRequest は登録・ログイン共通のリクエストボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログインのレスポンス。
type loginResponse struct {
	OK bool `json:"ok"`
}

// Register は新規ユーザーを登録する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := h.service.Register(r.Context(), req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrStoreUnavailable):
			writeError(w, http.StatusServiceUnavailable, "credential store is not configured or unavailable")
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			writeInternalServerError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Login は認証情報を検証し、成功時にセッショントークンをHTTP-only Cookieとして設定する。
// 認証失敗（未登録メール・パスワード不一致）はエラーではなく {"ok": false} を返す。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, authenticated, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrStoreUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "credential store is not configured or unavailable")
			return
		}
		writeInternalServerError(w, err)
		return
	}

	if !authenticated {
		writeJSON(w, http.StatusOK, loginResponse{OK: false})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{OK: true})
}

// decodeCredentials はリクエストボディを読み取り、入力検証を行う。
// 検証失敗時は400を書き込んでfalseを返す。
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return req, false
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return req, false
	}

	return req, true
}

// validEmail はメールアドレスの構文を検証する。
// 表示名付きの形式（"Name <a@b.c>"）は受け付けず、ドメインにドットを要求する。
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return strings.Contains(s[at+1:], ".")
}
