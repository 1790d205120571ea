package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/lib/pq"

	"github.com/raylabs/timeapp/internal/model"
)

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = "23505"

// Postgres はPostgreSQLへの接続ライフサイクルと可用性状態を管理するアダプタ。
// 認証機能と訪問カウンターの永続化に使用する。
// 接続確立時にusers / site_countersテーブルを冪等に作成し、
// カウンターのシングルトン行を必ず1行存在させる。
type Postgres struct {
	dsn string

	mu sync.Mutex
	db *sql.DB // nilはUnavailable状態を表す
}

// NewPostgres はPostgresアダプタを生成する。接続はまだ行わない。
// dsnが空の場合、アダプタは常にUnavailableとして振る舞う。
func NewPostgres(dsn string) *Postgres {
	return &Postgres{dsn: NormalizeDSN(dsn)}
}

// Configured はDSNが設定されているかどうかを返す。
func (p *Postgres) Configured() bool {
	return p.dsn != ""
}

// Available は現在の可用性状態を返す。再接続は試みない。
func (p *Postgres) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db != nil
}

// Connect はPostgreSQLへ接続し、スキーマを冪等に作成する。
// 失敗してもエラーはログに記録し、アダプタをUnavailable状態のままにする。
// 既に接続済みの場合は何もしない。
func (p *Postgres) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectLocked(ctx)
}

// connectLocked は接続とスキーマ作成を行う。muを保持した状態で呼ぶこと。
func (p *Postgres) connectLocked(ctx context.Context) error {
	if p.db != nil {
		return nil
	}
	if p.dsn == "" {
		return ErrUnavailable
	}

	db, err := sql.Open("postgres", p.dsn)
	if err != nil {
		slog.Error("postgres open failed", slog.String("error", err.Error()))
		return ErrUnavailable
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		slog.Error("postgres connect failed", slog.String("error", err.Error()))
		return ErrUnavailable
	}

	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		slog.Error("postgres schema init failed", slog.String("error", err.Error()))
		return ErrUnavailable
	}

	p.db = db
	slog.Info("postgres connected and schema ensured")
	return nil
}

// ensureSchema はusers / site_countersテーブルを冪等に作成し、
// カウンターのシングルトン行を存在させる。
// users.emailはTEXTで保持し、大小文字の区別は読み書き時のLOWER()で吸収する。
func ensureSchema(ctx context.Context, db *sql.DB) error {
	creates := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS site_counters (
			id INT PRIMARY KEY DEFAULT 1,
			total BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ DEFAULT now()
		)`,
	}
	for _, stmt := range creates {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// カウンターのシングルトン行を存在させる（既にあれば何もしない）
	_, err := db.ExecContext(ctx,
		`INSERT INTO site_counters (id, total) VALUES ($1, 0) ON CONFLICT (id) DO NOTHING`,
		model.SiteCounterID,
	)
	if err != nil {
		return fmt.Errorf("failed to seed counter row: %w", err)
	}
	return nil
}

// handle は接続済みのDBハンドルを返す。Unavailableの場合は1回だけ再接続を試みる。
func (p *Postgres) handle(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		if err := p.connectLocked(ctx); err != nil {
			return nil, err
		}
	}
	return p.db, nil
}

// downgrade は操作失敗時にアダプタをUnavailable状態へ降格する。
// 次の操作時の遅延再接続で自己回復する。
func (p *Postgres) downgrade() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		p.db.Close()
		p.db = nil
	}
}

// CreateUser は新規ユーザーを登録する。
// メールアドレスはGo側で小文字化した上で、SQL側でもLOWER()を適用する（多層防御）。
// 一意制約違反はErrDuplicateEmailを返す（接続断ではないため状態は降格しない）。
func (p *Postgres) CreateUser(ctx context.Context, email, passwordHash string) error {
	db, err := p.handle(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES (LOWER($1), $2)`,
		strings.ToLower(email), passwordHash,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateEmail
		}
		slog.Error("postgres insert user failed", slog.String("error", err.Error()))
		p.downgrade()
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindUserByEmail は小文字正規化済みメールアドレスでユーザーを検索する。
// 見つからない場合は(nil, nil)を返す。
func (p *Postgres) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	db, err := p.handle(ctx)
	if err != nil {
		return nil, err
	}

	user := &model.User{}
	err = db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = LOWER($1)`,
		strings.ToLower(email),
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("postgres find user failed", slog.String("error", err.Error()))
		p.downgrade()
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// IncrementVisits はシングルトンカウンター行のtotalを1加算し、
// updated_atを同一ステートメントで更新する。即時コミットされる。
// total = total + 1 の形はDBのトランザクション保証により並行更新でも安全。
func (p *Postgres) IncrementVisits(ctx context.Context) error {
	db, err := p.handle(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE site_counters SET total = total + 1, updated_at = now() WHERE id = $1`,
		model.SiteCounterID,
	)
	if err != nil {
		slog.Error("postgres increment visits failed", slog.String("error", err.Error()))
		p.downgrade()
		return fmt.Errorf("failed to increment visits: %w", err)
	}
	return nil
}

// VisitTotal はシングルトンカウンター行のtotalを返す。
// 行が存在しない場合は(0, false, nil)を返す。
func (p *Postgres) VisitTotal(ctx context.Context) (int64, bool, error) {
	db, err := p.handle(ctx)
	if err != nil {
		return 0, false, err
	}

	var total int64
	err = db.QueryRowContext(ctx,
		`SELECT total FROM site_counters WHERE id = $1`,
		model.SiteCounterID,
	).Scan(&total)

	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		slog.Error("postgres read visit total failed", slog.String("error", err.Error()))
		p.downgrade()
		return 0, false, fmt.Errorf("failed to read visit total: %w", err)
	}

	return total, true, nil
}

// Close は接続を閉じ、アダプタをUnavailable状態にする。
func (p *Postgres) Close() {
	p.downgrade()
}
