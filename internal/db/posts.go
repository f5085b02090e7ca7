package db

import (
	"context"
	"fmt"

	"github.com/nao1215/devconnector/internal/model"
)

const createPost = `
INSERT INTO posts (id, user_id, text, name, avatar, likes, comments, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// CreatePost は投稿を保存する。
func (q *Queries) CreatePost(ctx context.Context, p model.Post) error {
	likes, err := encodeList(p.Likes)
	if err != nil {
		return err
	}
	comments, err := encodeList(p.Comments)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, createPost,
		p.ID, p.User, p.Text, p.Name, p.Avatar, likes, comments, formatTime(p.Date))
	if err != nil {
		return fmt.Errorf("投稿の保存に失敗: %w", err)
	}
	return nil
}

const postColumns = `id, user_id, text, name, avatar, likes, comments, created_at`

const getPostByID = `SELECT ` + postColumns + ` FROM posts WHERE id = ?`

// GetPostByID はIDで投稿を取得する。
func (q *Queries) GetPostByID(ctx context.Context, id string) (model.Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPostByID, id))
}

const listPosts = `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, rowid DESC`

// ListPosts は全投稿を新しい順に返す。
func (q *Queries) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, listPosts)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投稿一覧の走査に失敗: %w", err)
	}
	return posts, nil
}

const updatePostReactions = `UPDATE posts SET likes = ?, comments = ? WHERE id = ?`

// UpdatePostReactions はいいねとコメントを書き戻す。
func (q *Queries) UpdatePostReactions(ctx context.Context, id string, likes []model.Like, comments []model.Comment) error {
	l, err := encodeList(likes)
	if err != nil {
		return err
	}
	c, err := encodeList(comments)
	if err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, updatePostReactions, l, c, id)
	if err != nil {
		return fmt.Errorf("いいね・コメントの更新に失敗: %w", err)
	}
	return expectAffected(res)
}

const deletePost = `DELETE FROM posts WHERE id = ?`

// DeletePost は投稿を削除する。存在しない場合はErrNotFoundを返す。
func (q *Queries) DeletePost(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, deletePost, id)
	if err != nil {
		return fmt.Errorf("投稿の削除に失敗: %w", err)
	}
	return expectAffected(res)
}

const deletePostsByUserID = `DELETE FROM posts WHERE user_id = ?`

// DeletePostsByUserID はユーザーの全投稿を削除し、削除した件数を返す。
func (q *Queries) DeletePostsByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePostsByUserID, userID)
	if err != nil {
		return 0, fmt.Errorf("投稿の一括削除に失敗: %w", err)
	}
	return res.RowsAffected()
}

func scanPost(row scanner) (model.Post, error) {
	var (
		p                        model.Post
		likes, comments, created string
	)
	if err := row.Scan(&p.ID, &p.User, &p.Text, &p.Name, &p.Avatar, &likes, &comments, &created); err != nil {
		return model.Post{}, notFound(err)
	}

	var err error
	if p.Likes, err = decodeList[model.Like](likes); err != nil {
		return model.Post{}, err
	}
	if p.Comments, err = decodeList[model.Comment](comments); err != nil {
		return model.Post{}, err
	}
	if p.Date, err = parseTime(created); err != nil {
		return model.Post{}, err
	}
	return p, nil
}
