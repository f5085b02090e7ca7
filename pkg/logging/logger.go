// Package logging はアプリケーション全体で使用する構造化ロガーを提供する。
//
// 可変長引数はキーと値の組として解釈する。
//
//	logger.Error(ctx, "投稿の削除に失敗", "post_id", id, "error", err)
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Logger はコンテキストを受け取る構造化ロガー。
type Logger interface {
	// Info は情報メッセージを出力する。
	Info(ctx context.Context, msg string, args ...any)
	// Warn は処理は継続できる異常を出力する。
	Warn(ctx context.Context, msg string, args ...any)
	// Error は失敗を出力する。
	Error(ctx context.Context, msg string, args ...any)
	// With は指定したキーと値を常に含む子ロガーを返す。
	With(args ...any) Logger
}

// SlogLogger はlog/slogを使ったLoggerの実装。
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger はslog.LoggerをラップしたLoggerを生成する。
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// New は出力先とレベル名からテキスト形式のLoggerを生成する。
// レベル名は debug, info, warn, error のいずれか。不明な値はinfoとして扱う。
func New(w io.Writer, level string) *SlogLogger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return NewSlogLogger(slog.New(h))
}

// Discard は何も出力しないLoggerを返す。テストで使用する。
func Discard() *SlogLogger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Info は情報メッセージを出力する。
func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

// Warn は警告メッセージを出力する。
func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

// Error はエラーメッセージを出力する。
func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

// With は属性を追加した子ロガーを返す。
func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
