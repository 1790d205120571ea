package visit

import (
	"context"

	"github.com/raylabs/timeapp/internal/database"
)

// VisitsKey は訪問カウンターのキャッシュキー。
const VisitsKey = "visits:total"

// Source は訪問数の格納先1つ分の統一インターフェース。
// フォールバックチェーンの各要素として使用する。
type Source interface {
	// Name は格納先の識別名（redis / postgres / memory）を返す。
	Name() string
	// Increment はカウンターを1加算する。格納先が利用できない場合はエラーを返す。
	Increment(ctx context.Context) error
	// Total は現在値を返す。値が存在しない場合は(0, false, nil)を返す。
	Total(ctx context.Context) (int64, bool, error)
}

// redisSource はRedisアダプタをSourceに適合させるアダプタ。キーは固定。
type redisSource struct {
	cache *database.Redis
	key   string
}

// NewRedisSource はRedisをバックエンドとするSourceを生成する。
func NewRedisSource(cache *database.Redis, key string) Source {
	return &redisSource{cache: cache, key: key}
}

func (s *redisSource) Name() string { return "redis" }

func (s *redisSource) Increment(ctx context.Context) error {
	return s.cache.Increment(ctx, s.key)
}

func (s *redisSource) Total(ctx context.Context) (int64, bool, error) {
	return s.cache.Get(ctx, s.key)
}

// postgresSource はPostgresアダプタをSourceに適合させるアダプタ。
type postgresSource struct {
	store *database.Postgres
}

// NewPostgresSource はPostgreSQLをバックエンドとするSourceを生成する。
func NewPostgresSource(store *database.Postgres) Source {
	return &postgresSource{store: store}
}

func (s *postgresSource) Name() string { return "postgres" }

func (s *postgresSource) Increment(ctx context.Context) error {
	return s.store.IncrementVisits(ctx)
}

func (s *postgresSource) Total(ctx context.Context) (int64, bool, error) {
	return s.store.VisitTotal(ctx)
}

// memorySource はプロセス内カウンターをSourceに適合させるアダプタ。
// 最終フォールバックであり、IncrementもTotalも失敗しない。
type memorySource struct {
	counter *database.MemoryCounter
}

// NewMemorySource はプロセス内カウンターをバックエンドとするSourceを生成する。
func NewMemorySource(counter *database.MemoryCounter) Source {
	return &memorySource{counter: counter}
}

func (s *memorySource) Name() string { return "memory" }

func (s *memorySource) Increment(context.Context) error {
	s.counter.Increment()
	return nil
}

func (s *memorySource) Total(context.Context) (int64, bool, error) {
	return s.counter.Total(), true, nil
}
