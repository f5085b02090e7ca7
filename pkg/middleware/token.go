package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL はトークンの既定の有効期間（360000秒）。
const DefaultTokenTTL = 360000 * time.Second

// ErrInvalidToken はトークンの署名・有効期限・形式のいずれかが不正であることを表す。
var ErrInvalidToken = errors.New("invalid token")

// Identity はトークンの検証で得られる呼び出し元の身元。
type Identity struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
}

// Claims はトークンのクレーム（ペイロード）を表す。
type Claims struct {
	jwt.RegisteredClaims
	// User は認証済みユーザーの身元。
	User Identity `json:"user"`
}

// TokenCodec はトークンの署名と検証を行う。
// 秘密鍵と有効期間は生成時に設定から渡す。
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenCodec は新しいTokenCodecを生成する。ttlが0以下の場合はDefaultTokenTTLを使用する。
func NewTokenCodec(secret string, ttl time.Duration, issuer string) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// Sign はユーザーIDに紐づいたHS256トークンを生成する。有効期限は現在時刻+TTL。
func (tc *TokenCodec) Sign(userID string) (string, error) {
	now := tc.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tc.issuer,
		},
		User: Identity{ID: userID},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、呼び出し元の身元を返す。
// 署名の不一致、期限切れ、形式不正、ユーザーIDの欠落はすべてErrInvalidTokenになる。
func (tc *TokenCodec) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return tc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.User.ID == "" {
		return Identity{}, ErrInvalidToken
	}
	return claims.User, nil
}
