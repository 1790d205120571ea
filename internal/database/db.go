// Package database はバックエンドストア（PostgreSQL / Redis）のアダプタと
// プロセス内フォールバックカウンターを提供する。
//
// 各アダプタはAvailable/Unavailableの2状態を持つ。接続失敗はエラーとして
// 呼び出し元に伝播せず、ログに記録してUnavailable状態に降格する。
// Unavailable状態のアダプタは次の操作時に1回だけ再接続を試みる
// （遅延再接続）。バックグラウンドのヘルスチェックループは持たない。
package database

import (
	"errors"
	"strings"
)

// ErrUnavailable はストアが未設定または接続不能であることを示す。
var ErrUnavailable = errors.New("store is not configured or unavailable")

// ErrDuplicateEmail は同じ正規化済みメールアドレスが既に登録済みであることを示す。
var ErrDuplicateEmail = errors.New("email is already registered")

// NormalizeDSN はPostgreSQLのDSNを接続前に正規化する。
// Azure Database for PostgreSQLのエンドポイントを指していてsslmodeパラメータを
// 含まない場合、sslmode=requireを自動で補う。URL形式とキーワード形式の両方に対応する。
func NormalizeDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	if !strings.Contains(dsn, "postgres.database.azure.com") || strings.Contains(dsn, "sslmode=") {
		return dsn
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "sslmode=require"
	}

	// キーワード形式（host=... dbname=...）
	return strings.TrimSpace(dsn) + " sslmode=require"
}
