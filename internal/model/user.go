// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Emailは常に小文字正規化された形で保存・比較される。
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// SiteCounter はサイト全体の訪問数を保持するシングルトンレコードを表す。
// site_countersテーブルには常にid=1の1行のみが存在する。
type SiteCounter struct {
	ID        int
	Total     int64
	UpdatedAt time.Time
}

// SiteCounterID はsite_countersテーブルの固定主キー値。
const SiteCounterID = 1
