package database

import "sync/atomic"

// MemoryCounter はプロセス内フォールバックカウンター。
// RedisもPostgreSQLも利用できない場合の最終フォールバックとして使用する。
// プロセス再起動で0にリセットされ、永続化保証は一切ない。
type MemoryCounter struct {
	total atomic.Int64
}

// NewMemoryCounter はMemoryCounterを生成する。初期値は0。
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{}
}

// Increment はカウンターを1加算する。
func (m *MemoryCounter) Increment() {
	m.total.Add(1)
}

// Total は現在のカウンター値を返す。
func (m *MemoryCounter) Total() int64 {
	return m.total.Load()
}
