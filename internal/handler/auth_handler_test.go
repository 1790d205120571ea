package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raylabs/timeapp/internal/auth"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn func(ctx context.Context, email, password string) error
	loginFn    func(ctx context.Context, email, password string) (string, bool, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password string) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password)
	}
	return nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, bool, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return "", false, nil
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		CookieSecure: false,
		TokenTTL:     time.Hour,
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w.Result()
}

// --- POST /auth/register テスト ---

func TestAuthHandler_Register_Success(t *testing.T) {
	var gotEmail, gotPassword string
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password string) error {
			gotEmail = email
			gotPassword = password
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	resp := postJSON(t, h.Register, "/auth/register", `{"email":"user@example.com","password":"s3cret"}`)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if gotEmail != "user@example.com" || gotPassword != "s3cret" {
		t.Errorf("service called with (%q, %q)", gotEmail, gotPassword)
	}

	var body okResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !body.OK {
		t.Error("ok = false, want true")
	}
}

func TestAuthHandler_Register_InvalidBody_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	resp := postJSON(t, h.Register, "/auth/register", `{not json`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Register_MissingFields_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	tests := []struct {
		name string
		body string
	}{
		{"missing password", `{"email":"user@example.com"}`},
		{"missing email", `{"password":"s3cret"}`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, h.Register, "/auth/register", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestAuthHandler_Register_InvalidEmail_Returns400(t *testing.T) {
	called := false
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password string) error {
			called = true
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	tests := []string{"not-an-email", "user@", "@example.com", "user@localhost", "Name <user@example.com>"}
	for _, email := range tests {
		body, _ := json.Marshal(map[string]string{"email": email, "password": "s3cret"})
		resp := postJSON(t, h.Register, "/auth/register", string(body))
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("email %q: status = %d, want %d", email, resp.StatusCode, http.StatusBadRequest)
		}
	}
	if called {
		t.Error("service should not be called for invalid input")
	}
}

func TestAuthHandler_Register_StoreUnavailable_Returns503(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password string) error {
			return auth.ErrStoreUnavailable
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	resp := postJSON(t, h.Register, "/auth/register", `{"email":"user@example.com","password":"s3cret"}`)

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}

	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error == "" {
		t.Error("expected an explanatory error message")
	}
}

func TestAuthHandler_Register_EmailTaken_Returns409(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password string) error {
			return auth.ErrEmailTaken
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	resp := postJSON(t, h.Register, "/auth/register", `{"email":"user@example.com","password":"s3cret"}`)

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestAuthHandler_Register_UnexpectedError_Returns500(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password string) error {
			return errors.New("connection reset")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	resp := postJSON(t, h.Register, "/auth/register", `{"email":"user@example.com","password":"s3cret"}`)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
}

// --- POST /auth/login テスト ---

func TestAuthHandler_Login_Success_SetsCookie(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, bool, error) {
			return "signed-token", true, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	resp := postJSON(t, h.Login, "/auth/login", `{"email":"user@example.com","password":"s3cret"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !body.OK {
		t.Error("ok = false, want true")
	}

	var tokenCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == accessTokenCookie {
			tokenCookie = c
		}
	}
	if tokenCookie == nil {
		t.Fatal("access_token cookie not set")
	}
	if tokenCookie.Value != "signed-token" {
		t.Errorf("cookie value = %q, want %q", tokenCookie.Value, "signed-token")
	}
	if !tokenCookie.HttpOnly {
		t.Error("cookie should be HTTP-only")
	}
	if tokenCookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite = %v, want Lax", tokenCookie.SameSite)
	}
	if tokenCookie.Secure {
		t.Error("cookie Secure = true, want false with CookieSecure disabled")
	}
	if tokenCookie.MaxAge != 3600 {
		t.Errorf("cookie MaxAge = %d, want 3600", tokenCookie.MaxAge)
	}
}

func TestAuthHandler_Login_SecureCookiesEnabled(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, bool, error) {
			return "signed-token", true, nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{CookieSecure: true, TokenTTL: time.Hour})

	resp := postJSON(t, h.Login, "/auth/login", `{"email":"user@example.com","password":"s3cret"}`)

	for _, c := range resp.Cookies() {
		if c.Name == accessTokenCookie && !c.Secure {
			t.Error("cookie Secure = false, want true with CookieSecure enabled")
		}
	}
}

func TestAuthHandler_Login_BadCredentials_ReturnsOKFalseWithoutCookie(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, bool, error) {
			return "", false, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	resp := postJSON(t, h.Login, "/auth/login", `{"email":"user@example.com","password":"wrong"}`)

	// 認証失敗は業務上の結果でありエラーではない
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.OK {
		t.Error("ok = true, want false")
	}
	if len(resp.Cookies()) != 0 {
		t.Errorf("no cookie should be set on failed login, got %v", resp.Cookies())
	}
}

func TestAuthHandler_Login_StoreUnavailable_Returns503(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, bool, error) {
			return "", false, auth.ErrStoreUnavailable
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	resp := postJSON(t, h.Login, "/auth/login", `{"email":"user@example.com","password":"s3cret"}`)

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}
