// Package server はdevconnector APIのHTTPサーバーを提供する。
//
// ルーティング、リクエストの検証、サービス層のエラーからレスポンスへの変換を担当する。
// 認証が必要なルートは middleware.Auth を通過したリクエストのみを受け付ける。
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/devconnector/internal/github"
	"github.com/nao1215/devconnector/internal/service"
	"github.com/nao1215/devconnector/pkg/logging"
	"github.com/nao1215/devconnector/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RepoLister はGitHubの公開リポジトリ一覧を取得する。
type RepoLister interface {
	Repos(ctx context.Context, username string) (json.RawMessage, error)
}

// Deps はServerが依存するコンポーネント。
type Deps struct {
	// DB はSQLiteデータベース接続。
	DB *sql.DB
	// Codec は認証トークンの署名・検証を行う。
	Codec *middleware.TokenCodec
	// GitHub はGitHub APIのクライアント。nilの場合はキャッシュ無しの既定クライアントを使う。
	GitHub RepoLister
	// Logger はアプリケーションログの出力先。
	Logger logging.Logger
	// Registry はメトリクスの登録先。nilの場合は新しいレジストリを作る。
	Registry *prometheus.Registry
	// CORSOrigins はCORSで許可するオリジン。
	CORSOrigins []string
	// BcryptCost はパスワードハッシュのコスト。0以下なら既定値。
	BcryptCost int
	// AccessLog がtrueの場合はgin.Loggerでアクセスログを出力する。
	AccessLog bool
}

// Server はdevconnector APIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はヘルスチェックに使うデータベース接続。
	db *sql.DB
	// codec は認証ゲートで使うトークンコーデック。
	codec *middleware.TokenCodec
	// logger はアプリケーションログの出力先。
	logger logging.Logger
	// registry は/metricsで公開するレジストリ。
	registry *prometheus.Registry

	// users はユーザー登録・認証のサービス。
	users *service.Users
	// profiles はプロフィールとアカウント削除のサービス。
	profiles *service.Profiles
	// posts は投稿・いいね・コメントのサービス。
	posts *service.Posts
	// github はGitHubのリポジトリ一覧を取得する。
	github RepoLister
}

// NewServer は新しいサーバーを生成する。
func NewServer(port string, deps Deps) *Server {
	registerValidation()

	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	gh := deps.GitHub
	if gh == nil {
		gh = github.NewClient(github.Config{}, nil, logger)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	if deps.AccessLog {
		router.Use(gin.Logger())
	}
	router.Use(middleware.NewMetrics(registry).Handler())
	router.Use(middleware.CORS(deps.CORSOrigins))

	s := &Server{
		router:   router,
		port:     port,
		db:       deps.DB,
		codec:    deps.Codec,
		logger:   logger,
		registry: registry,
		users:    service.NewUsers(deps.DB, deps.Codec, deps.BcryptCost),
		profiles: service.NewProfiles(deps.DB),
		posts:    service.NewPosts(deps.DB),
		github:   gh,
	}
	s.setupRoutes()
	return s
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルに停止する。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTPサーバーを起動します", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info(shutdownCtx, "HTTPサーバーを停止します")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
	}
	return <-errCh
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	auth := middleware.Auth(s.codec)
	api := s.router.Group("/api")

	// ユーザー登録と認証
	api.POST("/users", s.handleRegister())
	api.POST("/auth", s.handleLogin())
	api.GET("/auth", auth, s.handleMe())

	// プロフィール
	profile := api.Group("/profile")
	{
		profile.GET("", s.handleListProfiles())
		profile.GET("/user/:user_id", s.handleProfileByUser())
		profile.GET("/github/:username", s.handleGitHubRepos())

		profile.GET("/me", auth, s.handleMyProfile())
		profile.POST("", auth, s.handleUpsertProfile())
		profile.DELETE("", auth, s.handleDeleteAccount())
		profile.PUT("/experience", auth, s.handleAddExperience())
		profile.DELETE("/experience/:exp_id", auth, s.handleRemoveExperience())
		profile.PUT("/education", auth, s.handleAddEducation())
		profile.DELETE("/education/:edu_id", auth, s.handleRemoveEducation())
	}

	// 投稿（全て認証必須）
	posts := api.Group("/posts")
	posts.Use(auth)
	{
		posts.POST("", s.handleCreatePost())
		posts.GET("", s.handleListPosts())
		posts.GET("/:id", s.handleGetPost())
		posts.DELETE("/:id", s.handleDeletePost())
		posts.PUT("/like/:id", s.handleLike())
		posts.PUT("/unlike/:id", s.handleUnlike())
		posts.POST("/comment/:id", s.handleAddComment())
		posts.DELETE("/comment/:id/:comment_id", s.handleRemoveComment())
	}

	// ヘルスチェックとメトリクス
	s.router.GET("/health", s.handleHealth())
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// handleHealth はデータベースへの疎通を確認するハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.db.PingContext(c.Request.Context()); err != nil {
			s.logger.Warn(c.Request.Context(), "ヘルスチェックに失敗", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "devconnector"})
	}
}
