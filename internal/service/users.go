package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/devconnector/internal/apperr"
	"github.com/nao1215/devconnector/internal/db"
	"github.com/nao1215/devconnector/internal/gravatar"
	"github.com/nao1215/devconnector/internal/model"
	"github.com/nao1215/devconnector/pkg/middleware"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid Credentials"
	msgUserNotFound       = "User not found"
)

// Users は登録・ログイン・本人情報の取得を扱う。
type Users struct {
	conn  *sql.DB
	codec *middleware.TokenCodec
	cost  int
	now   func() time.Time
}

// NewUsers はUsersを生成する。costが0以下の場合はbcrypt.DefaultCostを使う。
func NewUsers(conn *sql.DB, codec *middleware.TokenCodec, cost int) *Users {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Users{conn: conn, codec: codec, cost: cost, now: time.Now}
}

// RegisterInput は登録の入力。形式の検証は済んでいる前提。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register はユーザーを登録し、署名済みトークンを返す。
// メールアドレスが登録済みの場合はフィールドエラー形式のKindBadRequestを返す。
func (s *Users) Register(ctx context.Context, in RegisterInput) (string, error) {
	q := db.New(s.conn)
	email := normalizeEmail(in.Email)

	_, err := q.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return "", apperr.Rejected(msgUserExists)
	case !errors.Is(err, db.ErrNotFound):
		return "", storeError(err, msgUserNotFound)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "password hashing failed", err)
	}

	u := model.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
		Avatar:       gravatar.URL(email),
		Date:         s.now(),
	}
	if err := q.CreateUser(ctx, u); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return "", apperr.Rejected(msgUserExists)
		}
		return "", storeError(err, msgUserNotFound)
	}
	return s.sign(u.ID)
}

// Login は認証情報を確認し、署名済みトークンを返す。
// メールアドレスとパスワードのどちらが誤っていても同じエラーを返す。
func (s *Users) Login(ctx context.Context, email, password string) (string, error) {
	u, err := db.New(s.conn).GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", apperr.Rejected(msgInvalidCredentials)
		}
		return "", storeError(err, msgUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Rejected(msgInvalidCredentials)
	}
	return s.sign(u.ID)
}

// Me は呼び出し元のユーザー情報を返す。パスワードハッシュはJSONに出力されない。
func (s *Users) Me(ctx context.Context, userID string) (model.User, error) {
	u, err := db.New(s.conn).GetUserByID(ctx, userID)
	if err != nil {
		return model.User{}, storeError(err, msgUserNotFound)
	}
	return u, nil
}

func (s *Users) sign(userID string) (string, error) {
	token, err := s.codec.Sign(userID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "token signing failed", err)
	}
	return token, nil
}
