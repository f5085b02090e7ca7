// Package github はGitHub APIからユーザーの公開リポジトリ一覧を取得する。
//
// レスポンスは加工せずそのまま返す。Cacheを設定した場合はユーザー名ごとに
// レスポンスを保持し、同じユーザーへの問い合わせを減らす。
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/nao1215/devconnector/pkg/httpclient"
	"github.com/nao1215/devconnector/pkg/logging"
)

// ErrProfileNotFound はGitHubが2xx以外を返したことを表す。
var ErrProfileNotFound = errors.New("github: profile not found")

// userAgent はGitHub APIが要求するUser-Agentヘッダーの値。
const userAgent = "devconnector"

// DefaultBaseURL はBaseURLが空の場合に使うGitHub APIのURL。
const DefaultBaseURL = "https://api.github.com"

// Cache はリポジトリ一覧のキャッシュ。
type Cache interface {
	// Get はキャッシュされた値を返す。存在しない場合はfalseを返す。
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set は値を保存する。
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config はClientの設定。
type Config struct {
	// BaseURL はGitHub APIのベースURL。
	BaseURL string
	// Token は認証用のトークン。空の場合は匿名でアクセスする。
	Token string
	// Timeout はリクエストのタイムアウト。
	Timeout time.Duration
	// CacheTTL はキャッシュの保持期間。
	CacheTTL time.Duration
}

// Client はGitHub APIのクライアント。
type Client struct {
	http   *httpclient.Client
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

// NewClient はClientを生成する。cacheとloggerはnilでもよい。
func NewClient(cfg Config, cache Cache, logger logging.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = logging.Discard()
	}
	opts := []httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithHeader("User-Agent", userAgent),
	}
	if cfg.Token != "" {
		opts = append(opts, httpclient.WithHeader("Authorization", "Bearer "+cfg.Token))
	}
	return &Client{
		http:   httpclient.New(cfg.BaseURL, opts...),
		cache:  cache,
		ttl:    cfg.CacheTTL,
		logger: logger,
	}
}

// Repos はユーザーの公開リポジトリを作成日の古い順に最大5件返す。
// GitHubが2xx以外を返した場合はErrProfileNotFoundを返す。
func (c *Client) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	key := "github:repos:" + username
	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn(ctx, "GitHubキャッシュの読み込みに失敗", "username", username, "error", err)
		} else if ok {
			return json.RawMessage(cached), nil
		}
	}

	path := "/users/" + url.PathEscape(username) + "/repos?per_page=5&sort=created:asc"
	var body json.RawMessage
	if err := c.http.GetJSON(ctx, path, &body); err != nil {
		if se, ok := httpclient.IsStatusError(err); ok {
			return nil, fmt.Errorf("%w: status=%d", ErrProfileNotFound, se.StatusCode)
		}
		return nil, fmt.Errorf("GitHub APIの呼び出しに失敗: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
			c.logger.Warn(ctx, "GitHubキャッシュの保存に失敗", "username", username, "error", err)
		}
	}
	return body, nil
}
