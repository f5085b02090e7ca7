// devconnector APIサーバーのエントリポイント。
// 設定を読み込み、データベース・GitHubクライアント・HTTPサーバーを組み立てて起動する。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/devconnector/internal/config"
	"github.com/nao1215/devconnector/internal/db"
	"github.com/nao1215/devconnector/internal/github"
	"github.com/nao1215/devconnector/internal/server"
	"github.com/nao1215/devconnector/pkg/logging"
	"github.com/nao1215/devconnector/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "devconnector: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", os.Getenv(config.EnvPrefix+"_CONFIG"), "設定ファイル(YAML)のパス")
	flag.Parse()

	cfg, devSecret, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.Log.Level)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if devSecret {
		logger.Warn(ctx, "署名鍵が未設定のため開発用の鍵を使用します", "env", config.EnvPrefix+"_JWT_SECRET")
	}

	conn, err := db.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	var cache github.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn(ctx, "Redisのクローズに失敗", "error", err)
			}
		}()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("Redisへの接続に失敗: %w", err)
		}
		cache = github.NewRedisCache(rdb)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.NewServer(cfg.Server.Port, server.Deps{
		DB:    conn,
		Codec: middleware.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer),
		GitHub: github.NewClient(github.Config{
			BaseURL:  cfg.GitHub.BaseURL,
			Token:    cfg.GitHub.Token,
			Timeout:  cfg.GitHub.Timeout,
			CacheTTL: cfg.Redis.CacheTTL,
		}, cache, logger),
		Logger:      logger,
		Registry:    registry,
		CORSOrigins: cfg.Server.CORSOrigins,
		AccessLog:   true,
	})
	return srv.Run(ctx)
}
