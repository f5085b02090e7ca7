// Package model はユーザー・プロフィール・投稿のドメインモデルを定義する。
//
// プロフィールの職歴・学歴、投稿のいいね・コメントはそれぞれ所有者の
// ドキュメントに埋め込まれたサブレコードとして扱う。追加は先頭への挿入
// （新しい順）、削除は識別子による線形探索で行う。
package model

import "time"

// User は登録済みユーザーを表す。
type User struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Name は表示名。
	Name string `json:"name"`
	// Email はログインに使用するメールアドレス。
	Email string `json:"email"`
	// PasswordHash はbcryptでハッシュ化したパスワード。レスポンスには含めない。
	PasswordHash string `json:"-"`
	// Avatar はGravatarのURL。
	Avatar string `json:"avatar"`
	// Date は登録日時。
	Date time.Time `json:"date"`
}

// UserSummary はプロフィールに埋め込むユーザーの公開情報。
type UserSummary struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Name は表示名。
	Name string `json:"name"`
	// Avatar はGravatarのURL。
	Avatar string `json:"avatar"`
}

// Social はSNSのプラットフォーム名からURLへの対応。
type Social map[string]string

// SocialPlatforms はプロフィールで受け付けるSNSのプラットフォーム名。
var SocialPlatforms = []string{"youtube", "twitter", "facebook", "linkedin", "instagram"}

// Experience は職歴のエントリ。
type Experience struct {
	// ID はエントリの一意識別子。
	ID string `json:"id"`
	// Title は役職名。
	Title string `json:"title"`
	// Company は会社名。
	Company string `json:"company"`
	// Location は勤務地。
	Location string `json:"location,omitempty"`
	// From は開始日（YYYY-MM-DD）。
	From string `json:"from"`
	// To は終了日（YYYY-MM-DD）。在職中は空。
	To string `json:"to,omitempty"`
	// Current は在職中かどうか。
	Current bool `json:"current"`
	// Description は業務内容。
	Description string `json:"description,omitempty"`
}

// Education は学歴のエントリ。
type Education struct {
	// ID はエントリの一意識別子。
	ID string `json:"id"`
	// School は学校名。
	School string `json:"school"`
	// Degree は学位。
	Degree string `json:"degree"`
	// FieldOfStudy は専攻。
	FieldOfStudy string `json:"fieldofstudy"`
	// From は開始日（YYYY-MM-DD）。
	From string `json:"from"`
	// To は終了日（YYYY-MM-DD）。在学中は空。
	To string `json:"to,omitempty"`
	// Current は在学中かどうか。
	Current bool `json:"current"`
	// Description は補足。
	Description string `json:"description,omitempty"`
}

// Profile はユーザーのプロフィール。ユーザーごとに最大1件。
type Profile struct {
	// ID はプロフィールの一意識別子。
	ID string `json:"id"`
	// User は所有者の公開情報。
	User UserSummary `json:"user"`
	// Company は所属企業。
	Company string `json:"company,omitempty"`
	// Website は個人サイトのURL。
	Website string `json:"website,omitempty"`
	// Location は所在地。
	Location string `json:"location,omitempty"`
	// Bio は自己紹介。
	Bio string `json:"bio,omitempty"`
	// Status は職業上のステータス（例: Developer）。
	Status string `json:"status"`
	// GitHubUsername はGitHubのユーザー名。
	GitHubUsername string `json:"githubusername,omitempty"`
	// Skills はスキルの一覧。
	Skills []string `json:"skills"`
	// Social はSNSリンク。
	Social Social `json:"social"`
	// Experience は職歴。新しい順。
	Experience []Experience `json:"experience"`
	// Education は学歴。新しい順。
	Education []Education `json:"education"`
	// Date は作成日時。
	Date time.Time `json:"date"`
}

// OwnerID はプロフィールの所有者を返す。
func (p *Profile) OwnerID() string { return p.User.ID }

// Like は投稿へのいいね。ユーザーごとに最大1件。
type Like struct {
	// User はいいねしたユーザーのID。
	User string `json:"user"`
}

// Comment は投稿へのコメント。
type Comment struct {
	// ID はコメントの一意識別子。
	ID string `json:"id"`
	// User はコメントしたユーザーのID。
	User string `json:"user"`
	// Text は本文。
	Text string `json:"text"`
	// Name はコメント時点のユーザー名。
	Name string `json:"name"`
	// Avatar はコメント時点のアバターURL。
	Avatar string `json:"avatar"`
	// Date はコメント日時。
	Date time.Time `json:"date"`
}

// OwnerID はコメントの所有者を返す。
func (c *Comment) OwnerID() string { return c.User }

// Post は投稿を表す。
type Post struct {
	// ID は投稿の一意識別子。
	ID string `json:"id"`
	// User は投稿者のID。
	User string `json:"user"`
	// Text は本文。
	Text string `json:"text"`
	// Name は投稿時点のユーザー名。
	Name string `json:"name"`
	// Avatar は投稿時点のアバターURL。
	Avatar string `json:"avatar"`
	// Likes はいいねの一覧。新しい順。
	Likes []Like `json:"likes"`
	// Comments はコメントの一覧。新しい順。
	Comments []Comment `json:"comments"`
	// Date は投稿日時。
	Date time.Time `json:"date"`
}

// OwnerID は投稿の所有者を返す。
func (p *Post) OwnerID() string { return p.User }
