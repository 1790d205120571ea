// Package auth はユーザー登録・ログインとセッショントークンの発行を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/raylabs/timeapp/internal/database"
	"github.com/raylabs/timeapp/internal/model"
)

// ErrStoreUnavailable は認証に必要なリレーショナルストアが利用できないことを示す。
// HTTP境界では503として応答される。
var ErrStoreUnavailable = errors.New("credential store is unavailable")

// ErrEmailTaken は同じメールアドレスが既に登録済みであることを示す。
var ErrEmailTaken = errors.New("email is already registered")

// UserStore は認証サービスが必要とするストア操作のインターフェース。
// database.Postgresが実装する。各操作は内部で遅延再接続を1回試みる。
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) error
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	JWTSecret []byte
	TokenTTL  time.Duration
}

// Service は認証サービス。
type Service struct {
	store  UserStore
	config ServiceConfig
}

// NewService はServiceを生成する。
func NewService(store UserStore, config ServiceConfig) *Service {
	return &Service{
		store:  store,
		config: config,
	}
}

// Register は新規ユーザーを登録する。
// パスワードはbcrypt（デフォルトコスト）でハッシュ化し、平文は保存もログもしない。
// メールアドレスは小文字正規化して一意に保存する。
func (s *Service) Register(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.store.CreateUser(ctx, strings.ToLower(email), string(hash))
	if errors.Is(err, database.ErrUnavailable) {
		return ErrStoreUnavailable
	}
	if errors.Is(err, database.ErrDuplicateEmail) {
		return ErrEmailTaken
	}
	return err
}

// Login は認証情報を検証し、成功時にセッショントークンを発行する。
// 未登録メールとパスワード不一致は同一の(ok=false)として返し、
// どちらのケースかを呼び出し元から区別できないようにする。
func (s *Service) Login(ctx context.Context, email, password string) (string, bool, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, database.ErrUnavailable) {
		return "", false, ErrStoreUnavailable
	}
	if err != nil {
		return "", false, err
	}
	if user == nil {
		return "", false, nil
	}

	// bcryptの比較は定数時間で行われる
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", false, nil
	}

	token, err := GenerateToken(user.ID, s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return "", false, fmt.Errorf("failed to generate session token: %w", err)
	}

	return token, true, nil
}
