// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultJWTSecret はJWT_SECRET未設定時のプレースホルダー。
// 本番デプロイでは必ず上書きすること（起動時に警告ログを出す）。
const DefaultJWTSecret = "change_me"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// PG_DSN / REDIS_URL はどちらも任意で、未設定の場合は該当ストアを
// 使う機能が縮退動作になる（必須環境変数は存在しない）。
type Config struct {
	// Auth
	JWTSecret     string
	SecureCookies bool
	TokenTTL      time.Duration

	// Stores
	PGDSN    string
	RedisURL string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// すべての項目が任意のため、エラーは返さない。
func Load() *Config {
	return &Config{
		JWTSecret:         getEnvString("JWT_SECRET", DefaultJWTSecret),
		SecureCookies:     getEnvBool("SECURE_COOKIES", false),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 24*time.Hour),
		PGDSN:             os.Getenv("PG_DSN"),
		RedisURL:          os.Getenv("REDIS_URL"),
		ServerPort:        getEnvString("SERVER_PORT", "8080"),
		CORSAllowedOrigin: getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
	}
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
