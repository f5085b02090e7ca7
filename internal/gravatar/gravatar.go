// Package gravatar はメールアドレスからGravatarの画像URLを組み立てる。
package gravatar

import (
	"crypto/md5" //nolint:gosec // Gravatarのハッシュ形式
	"encoding/hex"
	"strings"
)

// URL はメールアドレスに対応するGravatarのURLを返す。
// サイズ200、レーティングpg、未登録時はミステリーマンの画像を使う。
func URL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)))) //nolint:gosec
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
