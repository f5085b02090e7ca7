// Package service はユーザー・プロフィール・投稿のユースケースを実装する。
//
// 失敗は apperr.Error として返し、HTTP層がKindからレスポンスを決定する。
// 読み込みから書き戻しまでを伴う更新は全て1トランザクション内で行う。
package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/nao1215/devconnector/internal/apperr"
	"github.com/nao1215/devconnector/internal/db"
)

// parseID は識別子がUUIDとして正しいかを確認する。不正な場合はKindMalformedIDを返す。
func parseID(id, notFoundMsg string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.New(apperr.KindMalformedID, notFoundMsg)
	}
	return nil
}

// storeError はストアのエラーをapperrに変換する。
// nilはnilのまま、既にapperr.Errorの場合はそのまま返す。
func storeError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Wrap(apperr.KindUpstream, "store failure", err)
}

// normalizeEmail はメールアドレスを比較用に正規化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
