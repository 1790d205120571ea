package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Redis はキャッシュストアへの接続ライフサイクルと可用性状態を管理するアダプタ。
// 訪問カウンターのプライマリ格納先として使用する。
// キーにTTLは設定しない（外部でフラッシュされるまで永続する）。
type Redis struct {
	url string

	mu     sync.Mutex
	client *redis.Client // nilはUnavailable状態を表す
}

// NewRedis はRedisアダプタを生成する。接続はまだ行わない。
// urlが空の場合、アダプタは常にUnavailableとして振る舞う。
func NewRedis(url string) *Redis {
	return &Redis{url: url}
}

// Configured は接続URLが設定されているかどうかを返す。
func (r *Redis) Configured() bool {
	return r.url != ""
}

// Available は現在の可用性状態を返す。再接続は試みない。
func (r *Redis) Available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client != nil
}

// Connect はRedisへ接続し、PINGで疎通を確認する。
// 失敗してもエラーはログに記録し、アダプタをUnavailable状態のままにする。
func (r *Redis) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectLocked(ctx)
}

func (r *Redis) connectLocked(ctx context.Context) error {
	if r.client != nil {
		return nil
	}
	if r.url == "" {
		return ErrUnavailable
	}

	opts, err := redis.ParseURL(r.url)
	if err != nil {
		slog.Error("redis url parse failed", slog.String("error", err.Error()))
		return ErrUnavailable
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		slog.Error("redis connect failed", slog.String("error", err.Error()))
		return ErrUnavailable
	}

	r.client = client
	slog.Info("redis connected")
	return nil
}

// handle は接続済みのクライアントを返す。Unavailableの場合は1回だけ再接続を試みる。
func (r *Redis) handle(ctx context.Context) (*redis.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		if err := r.connectLocked(ctx); err != nil {
			return nil, err
		}
	}
	return r.client, nil
}

// downgrade は操作失敗時にアダプタをUnavailable状態へ降格する。
func (r *Redis) downgrade() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		r.client.Close()
		r.client = nil
	}
}

// Increment は指定キーの値をアトミックに1加算する。
// キーが存在しない場合は0として作成される（RedisのINCRの仕様）。
func (r *Redis) Increment(ctx context.Context, key string) error {
	client, err := r.handle(ctx)
	if err != nil {
		return err
	}

	if err := client.Incr(ctx, key).Err(); err != nil {
		slog.Error("redis increment failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		r.downgrade()
		return fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return nil
}

// Get は指定キーの現在値を返す。キーが存在しない場合は(0, false, nil)を返す。
func (r *Redis) Get(ctx context.Context, key string) (int64, bool, error) {
	client, err := r.handle(ctx)
	if err != nil {
		return 0, false, err
	}

	val, err := client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		slog.Error("redis get failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		r.downgrade()
		return 0, false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return val, true, nil
}

// Close は接続を閉じ、アダプタをUnavailable状態にする。
func (r *Redis) Close() {
	r.downgrade()
}
