// Package db はSQLiteに対するユーザー・プロフィール・投稿の永続化を提供する。
//
// sqlcの生成コードと同じ形で、*sql.DB と *sql.Tx のどちらでも動く Queries を公開する。
// 職歴・学歴・いいね・コメントなどのサブレコードはJSONとしてTEXT列に保存し、
// 集約単位で読み込み・書き戻す。
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/devconnector/pkg/logging"
	"github.com/nao1215/devconnector/pkg/migration"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

var (
	// ErrNotFound は対象の行が存在しないことを表す。
	ErrNotFound = errors.New("db: not found")
	// ErrDuplicate は一意制約に違反したことを表す。
	ErrDuplicate = errors.New("db: duplicate")
)

// timeLayout は日時列の保存形式。固定幅のため文字列比較で時系列順に並ぶ。
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DBTX は *sql.DB と *sql.Tx の共通インターフェース。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries はテーブルへの問い合わせをまとめたもの。
type Queries struct {
	db DBTX
}

// New は指定した接続でQueriesを生成する。
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Open はSQLiteデータベースを開き、マイグレーションを適用する。
// 接続は1本に制限する。読み込みから書き戻しまでを1トランザクションで行う更新が
// 直列化され、同じ投稿への同時いいねなどが両方成功することはない。
func Open(ctx context.Context, path string, logger logging.Logger) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("データベースのオープンに失敗: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("外部キー制約の有効化に失敗: %w", err)
	}
	if _, err := migration.Run(ctx, conn, migrations, "migrations", logger); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// RunInTx はトランザクションを開始してfnを実行し、成功時はコミット、
// エラーまたはパニック時はロールバックする。fn内ではtxに紐づいたQueriesのみを使うこと。
// 接続が1本のため、外側のQueriesを使うとデッドロックする。
func RunInTx(ctx context.Context, conn *sql.DB, fn func(q *Queries) error) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(New(tx))
}

// scanner は *sql.Row と *sql.Rows の共通インターフェース。
type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日時の解析に失敗: %w", err)
	}
	return t, nil
}

// notFound はsql.ErrNoRowsをErrNotFoundに置き換える。
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation は一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// 拡張エラーコードが無効な場合はメッセージで判定する
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}
