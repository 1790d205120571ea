package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/raylabs/timeapp/internal/metrics"
	"github.com/raylabs/timeapp/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	StatusRecorder    middleware.HTTPStatusRecorder

	// ストア可用性（ヘルスチェック用）
	PGStatus    AvailabilityReporter
	RedisStatus AvailabilityReporter

	// サービス
	AuthService  AuthServiceInterface
	AuthConfig   AuthHandlerConfig
	WorldClock   WorldClockInterface
	VisitService VisitServiceInterface

	// Prometheusスクレイプ用
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → CORS → SecurityHeaders
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	healthHandler := NewHealthHandler(deps.PGStatus, deps.RedisStatus)
	timeHandler := NewTimeHandler(deps.WorldClock)
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	visitHandler := NewVisitHandler(deps.VisitService)

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/time/now", timeHandler.Now)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// 訪問カウンターAPIとPrometheusスクレイプの両方を/metrics配下に置く
	r.Post("/metrics/visit", visitHandler.RecordVisit)
	r.Get("/metrics/total", visitHandler.Total)
	if deps.Gatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	}

	return r
}
