package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/devconnector/internal/db"
	"github.com/nao1215/devconnector/internal/model"
)

const msgPostNotFound = "Post not found"

// Posts は投稿といいね・コメントを扱う。
type Posts struct {
	conn *sql.DB
	now  func() time.Time
}

// NewPosts はPostsを生成する。
func NewPosts(conn *sql.DB) *Posts {
	return &Posts{conn: conn, now: time.Now}
}

// Create は呼び出し元の投稿を作成する。投稿者の名前とアバターは投稿時点のものを保持する。
func (s *Posts) Create(ctx context.Context, userID, text string) (model.Post, error) {
	q := db.New(s.conn)
	u, err := q.GetUserByID(ctx, userID)
	if err != nil {
		return model.Post{}, storeError(err, msgUserNotFound)
	}

	p := model.Post{
		ID:       uuid.NewString(),
		User:     u.ID,
		Text:     text,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Likes:    []model.Like{},
		Comments: []model.Comment{},
		Date:     s.now(),
	}
	if err := q.CreatePost(ctx, p); err != nil {
		return model.Post{}, storeError(err, msgPostNotFound)
	}
	return p, nil
}

// List は全投稿を新しい順に返す。
func (s *Posts) List(ctx context.Context) ([]model.Post, error) {
	posts, err := db.New(s.conn).ListPosts(ctx)
	if err != nil {
		return nil, storeError(err, msgPostNotFound)
	}
	return posts, nil
}

// Get は投稿を1件返す。
func (s *Posts) Get(ctx context.Context, id string) (model.Post, error) {
	if err := parseID(id, msgPostNotFound); err != nil {
		return model.Post{}, err
	}
	p, err := db.New(s.conn).GetPostByID(ctx, id)
	if err != nil {
		return model.Post{}, storeError(err, msgPostNotFound)
	}
	return p, nil
}

// Delete は投稿を削除する。投稿者以外はKindForbiddenとなり、投稿は残る。
func (s *Posts) Delete(ctx context.Context, callerID, id string) error {
	if err := parseID(id, msgPostNotFound); err != nil {
		return err
	}
	_, err := mutateOwned(ctx, s.conn, callerID,
		s.loadPost(ctx, id),
		func(*model.Post) error { return nil },
		func(q *db.Queries, p *model.Post) error {
			return storeError(q.DeletePost(ctx, p.ID), msgPostNotFound)
		},
	)
	return err
}

// Like は呼び出し元のいいねを追加し、更新後のいいね一覧を返す。
func (s *Posts) Like(ctx context.Context, callerID, id string) ([]model.Like, error) {
	p, err := s.react(ctx, id, func(p *model.Post) error { return p.Like(callerID) })
	if err != nil {
		return nil, err
	}
	return p.Likes, nil
}

// Unlike は呼び出し元のいいねを取り消し、更新後のいいね一覧を返す。
func (s *Posts) Unlike(ctx context.Context, callerID, id string) ([]model.Like, error) {
	p, err := s.react(ctx, id, func(p *model.Post) error { return p.Unlike(callerID) })
	if err != nil {
		return nil, err
	}
	return p.Likes, nil
}

// AddComment はコメントを先頭に追加し、更新後のコメント一覧を返す。
func (s *Posts) AddComment(ctx context.Context, callerID, id, text string) ([]model.Comment, error) {
	if err := parseID(id, msgPostNotFound); err != nil {
		return nil, err
	}
	u, err := db.New(s.conn).GetUserByID(ctx, callerID)
	if err != nil {
		return nil, storeError(err, msgUserNotFound)
	}

	c := model.Comment{
		ID:     uuid.NewString(),
		User:   u.ID,
		Text:   text,
		Name:   u.Name,
		Avatar: u.Avatar,
		Date:   s.now(),
	}
	p, err := s.react(ctx, id, func(p *model.Post) error {
		p.AddComment(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

// RemoveComment は指定IDのコメントを削除し、更新後のコメント一覧を返す。
// コメントの投稿者以外はKindForbiddenとなる。
func (s *Posts) RemoveComment(ctx context.Context, callerID, id, commentID string) ([]model.Comment, error) {
	p, err := s.react(ctx, id, func(p *model.Post) error {
		return p.RemoveComment(commentID, callerID)
	})
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

// react は投稿のいいね・コメントを変更して書き戻す。投稿自体の所有者は問わない。
func (s *Posts) react(ctx context.Context, id string, change func(p *model.Post) error) (*model.Post, error) {
	if err := parseID(id, msgPostNotFound); err != nil {
		return nil, err
	}
	return mutate(ctx, s.conn,
		s.loadPost(ctx, id),
		change,
		func(q *db.Queries, p *model.Post) error {
			return storeError(q.UpdatePostReactions(ctx, p.ID, p.Likes, p.Comments), msgPostNotFound)
		},
	)
}

func (s *Posts) loadPost(ctx context.Context, id string) func(q *db.Queries) (*model.Post, error) {
	return func(q *db.Queries) (*model.Post, error) {
		p, err := q.GetPostByID(ctx, id)
		if err != nil {
			return nil, storeError(err, msgPostNotFound)
		}
		return &p, nil
	}
}
