// Package config はアプリケーションの設定を読み込む。
//
// 既定値、任意のYAMLファイル、DEVCONNECTOR_ で始まる環境変数の順に上書きする。
// 例: jwt.secret は DEVCONNECTOR_JWT_SECRET で指定できる。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix は環境変数の接頭辞。
const EnvPrefix = "DEVCONNECTOR"

// devSecret は署名鍵が未設定の場合に使う開発用の鍵。
const devSecret = "dev-secret-key"

// Config はアプリケーション全体の設定。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig はHTTPサーバーの設定。
type ServerConfig struct {
	// Port はリッスンポート。
	Port string `mapstructure:"port"`
	// CORSOrigins はCORSで許可するオリジン。"*" は全て許可する。
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig はSQLiteの設定。
type DatabaseConfig struct {
	// Path はデータベースファイルのパス。":memory:" も指定できる。
	Path string `mapstructure:"path"`
}

// JWTConfig は認証トークンの設定。
type JWTConfig struct {
	// Secret は署名鍵。
	Secret string `mapstructure:"secret"`
	// TTL はトークンの有効期間。
	TTL time.Duration `mapstructure:"ttl"`
	// Issuer はトークンの発行者。
	Issuer string `mapstructure:"issuer"`
}

// GitHubConfig はGitHub APIの設定。
type GitHubConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig はGitHubレスポンスキャッシュの設定。Addrが空ならキャッシュしない。
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LogConfig はログ出力の設定。
type LogConfig struct {
	// Level は debug, info, warn, error のいずれか。
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.path", "devconnector.db")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 360000*time.Second)
	v.SetDefault("jwt.issuer", "devconnector")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.token", "")
	v.SetDefault("github.timeout", 10*time.Second)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)
	v.SetDefault("log.level", "info")
}

// Load は設定を読み込む。fileが空の場合は設定ファイルを読まない。
// 署名鍵が未設定の場合は開発用の鍵を使い、usedDevSecretをtrueで返す。
func Load(file string) (cfg *Config, usedDevSecret bool, err error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, false, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, false, fmt.Errorf("設定の解析に失敗: %w", err)
	}

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = devSecret
		usedDevSecret = true
	}
	if err := cfg.validate(); err != nil {
		return nil, false, err
	}
	return cfg, usedDevSecret, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port が空です"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path が空です"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("jwt.ttl は正の値である必要があります"))
	}
	return errors.Join(errs...)
}
