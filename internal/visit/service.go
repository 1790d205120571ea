// Package visit は訪問カウンターのフォールバックチェーンを提供する。
//
// 書き込みはキャッシュ優先（不可ならプロセス内カウンター）、加えて
// リレーショナルストアが利用可能なら独立に加算する。読み出しは
// キャッシュ → リレーショナルストア → プロセス内カウンターの優先順で、
// 最初に値を返せた格納先が勝つ。格納先間の整合はとらない。
package visit

import (
	"context"
	"log/slog"
)

// MetricsRecorder は訪問記録時にどのバックエンドが使われたかを記録する。
type MetricsRecorder interface {
	RecordVisit(backend string)
}

// Service は訪問カウンターサービス。
type Service struct {
	cache   Source
	store   Source
	memory  Source
	metrics MetricsRecorder

	// sources は読み出しの優先順リスト（cache → store → memory）。
	sources []Source
}

// NewService はServiceを生成する。
// metricsはnil可（記録しない）。
func NewService(cache, store, memory Source, metrics MetricsRecorder) *Service {
	return &Service{
		cache:   cache,
		store:   store,
		memory:  memory,
		metrics: metrics,
		sources: []Source{cache, store, memory},
	}
}

// Record は訪問1回を記録する。ベストエフォートであり、エラーは返さない。
//
// キャッシュへの加算が失敗した場合のみプロセス内カウンターへ加算する。
// リレーショナルストアへの加算は排他的ではなく、キャッシュの成否に
// かかわらず独立に行う。2つの永続カウンターが時間とともに乖離しうるのは
// 設計上許容された性質であり、ここで隠蔽的に修復しない。
func (s *Service) Record(ctx context.Context) {
	if err := s.cache.Increment(ctx); err != nil {
		// キャッシュ不可: プロセス内フォールバック（失敗しない）
		s.memory.Increment(ctx)
		s.recordMetric(s.memory.Name())
	} else {
		s.recordMetric(s.cache.Name())
	}

	if err := s.store.Increment(ctx); err != nil {
		slog.Debug("visit not persisted to relational store",
			slog.String("error", err.Error()),
		)
	} else {
		s.recordMetric(s.store.Name())
	}
}

// Total は現在の訪問数を返す。
// 優先順リストを先頭から走査し、値を返せた最初の格納先の値を採用する。
// プロセス内カウンターは常に値を返すため、結果が得られないことはない。
func (s *Service) Total(ctx context.Context) int64 {
	for _, src := range s.sources {
		total, ok, err := src.Total(ctx)
		if err != nil || !ok {
			continue
		}
		return total
	}
	return 0
}

func (s *Service) recordMetric(backend string) {
	if s.metrics != nil {
		s.metrics.RecordVisit(backend)
	}
}
