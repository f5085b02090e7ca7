package model

import (
	"github.com/nao1215/devconnector/internal/apperr"
)

// prepend は要素を先頭に挿入した新しいスライスを返す。
func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

// indexOf は条件に一致する最初の要素の位置を返す。見つからない場合は-1。
func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

// removeAt は指定位置の要素を1つだけ取り除く。残りの要素の順序は維持する。
func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// AddExperience は職歴を先頭に追加する。
func (p *Profile) AddExperience(e Experience) {
	p.Experience = prepend(p.Experience, e)
}

// RemoveExperience は指定IDの職歴を削除する。存在しない場合はKindNotFoundを返す。
func (p *Profile) RemoveExperience(id string) error {
	i := indexOf(p.Experience, func(e Experience) bool { return e.ID == id })
	if i == -1 {
		return apperr.NotFound("Experience not found")
	}
	p.Experience = removeAt(p.Experience, i)
	return nil
}

// AddEducation は学歴を先頭に追加する。
func (p *Profile) AddEducation(e Education) {
	p.Education = prepend(p.Education, e)
}

// RemoveEducation は指定IDの学歴を削除する。存在しない場合はKindNotFoundを返す。
func (p *Profile) RemoveEducation(id string) error {
	i := indexOf(p.Education, func(e Education) bool { return e.ID == id })
	if i == -1 {
		return apperr.NotFound("Education not found")
	}
	p.Education = removeAt(p.Education, i)
	return nil
}

// LikedBy はユーザーが投稿にいいね済みかを返す。
func (p *Post) LikedBy(userID string) bool {
	return indexOf(p.Likes, func(l Like) bool { return l.User == userID }) != -1
}

// Like はユーザーのいいねを先頭に追加する。いいね済みの場合はKindAlreadyLikedを返す。
func (p *Post) Like(userID string) error {
	if p.LikedBy(userID) {
		return apperr.New(apperr.KindAlreadyLiked, "Post already liked")
	}
	p.Likes = prepend(p.Likes, Like{User: userID})
	return nil
}

// Unlike はユーザーのいいねを取り消す。いいねしていない場合はKindNotLikedを返す。
func (p *Post) Unlike(userID string) error {
	i := indexOf(p.Likes, func(l Like) bool { return l.User == userID })
	if i == -1 {
		return apperr.New(apperr.KindNotLiked, "Post has not yet been liked")
	}
	p.Likes = removeAt(p.Likes, i)
	return nil
}

// AddComment はコメントを先頭に追加する。
func (p *Post) AddComment(c Comment) {
	p.Comments = prepend(p.Comments, c)
}

// RemoveComment は指定IDのコメントを削除する。
// コメントが存在しない場合はKindNotFound、所有者が呼び出し元と異なる場合はKindForbiddenを返す。
func (p *Post) RemoveComment(commentID, callerID string) error {
	i := indexOf(p.Comments, func(c Comment) bool { return c.ID == commentID })
	if i == -1 {
		return apperr.NotFound("Comment does not exist")
	}
	if err := Authorize(&p.Comments[i], callerID); err != nil {
		return err
	}
	p.Comments = removeAt(p.Comments, i)
	return nil
}
