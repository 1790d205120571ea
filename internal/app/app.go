// Package app はアプリケーションの初期化と起動を行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/raylabs/timeapp/internal/auth"
	"github.com/raylabs/timeapp/internal/config"
	"github.com/raylabs/timeapp/internal/database"
	"github.com/raylabs/timeapp/internal/handler"
	"github.com/raylabs/timeapp/internal/logger"
	"github.com/raylabs/timeapp/internal/metrics"
	"github.com/raylabs/timeapp/internal/visit"
	"github.com/raylabs/timeapp/internal/worldtime"
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップした上で、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) *config.Config {
	logger.SetupDefault(w)
	return config.Load()
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg := Init(w)

	slog.Info("starting application",
		slog.String("port", cfg.ServerPort),
		slog.Bool("pg_configured", cfg.PGDSN != ""),
		slog.Bool("redis_configured", cfg.RedisURL != ""),
	)

	if cfg.JWTSecret == config.DefaultJWTSecret {
		slog.Warn("JWT_SECRET is using the insecure default placeholder; override it in any real deployment")
	}

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// 両ストアアダプタを初期化して全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ストアへの初回接続は試みるが、失敗しても起動は継続する（縮退動作）。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx := context.Background()

	// 1. ストアアダプタの初期化（接続失敗は致命的ではない）
	pg := database.NewPostgres(cfg.PGDSN)
	rds := database.NewRedis(cfg.RedisURL)
	mem := database.NewMemoryCounter()
	defer pg.Close()
	defer rds.Close()

	pg.Connect(ctx)
	rds.Connect(ctx)

	// 2. メトリクスの初期化
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	// 3. ドメインサービスの初期化
	clock, err := worldtime.NewService()
	if err != nil {
		// タイムゾーン解決の失敗は起動時の構成不良であり即時終了する
		return fmt.Errorf("failed to initialize time service: %w", err)
	}

	authService := auth.NewService(pg, auth.ServiceConfig{
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  cfg.TokenTTL,
	})

	visitService := visit.NewService(
		visit.NewRedisSource(rds, visit.VisitsKey),
		visit.NewPostgresSource(pg),
		visit.NewMemorySource(mem),
		collector,
	)

	// 4. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		StatusRecorder:    collector,
		PGStatus:          pg,
		RedisStatus:       rds,
		AuthService:       authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieSecure: cfg.SecureCookies,
			TokenTTL:     cfg.TokenTTL,
		},
		WorldClock:   clock,
		VisitService: visitService,
		Gatherer:     reg,
	})

	// 5. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
