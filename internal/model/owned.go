package model

import "github.com/nao1215/devconnector/internal/apperr"

// Owned は所有者を持つリソース。
type Owned interface {
	// OwnerID は所有者のユーザーIDを返す。
	OwnerID() string
}

// Authorize は呼び出し元がリソースの所有者であることを確認する。
// 一致しない場合はKindForbiddenを返す。
func Authorize(res Owned, callerID string) error {
	if callerID == "" || res.OwnerID() != callerID {
		return apperr.Forbidden()
	}
	return nil
}
