package db

import (
	"context"
	"fmt"

	"github.com/nao1215/devconnector/internal/model"
)

const createUser = `
INSERT INTO users (id, name, email, password_hash, avatar, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

// CreateUser はユーザーを登録する。メールアドレスが重複する場合はErrDuplicateを返す。
func (q *Queries) CreateUser(ctx context.Context, u model.User) error {
	_, err := q.db.ExecContext(ctx, createUser,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Avatar, formatTime(u.Date))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("ユーザーの登録に失敗: %w", err)
	}
	return nil
}

const userColumns = `id, name, email, password_hash, avatar, created_at`

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

// GetUserByID はIDでユーザーを取得する。
func (q *Queries) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

// GetUserByEmail はメールアドレスでユーザーを取得する。
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const deleteUser = `DELETE FROM users WHERE id = ?`

// DeleteUser はユーザーを削除する。存在しない場合はErrNotFoundを返す。
func (q *Queries) DeleteUser(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗: %w", err)
	}
	return expectAffected(res)
}

func scanUser(row scanner) (model.User, error) {
	var (
		u       model.User
		created string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Avatar, &created); err != nil {
		return model.User{}, notFound(err)
	}
	t, err := parseTime(created)
	if err != nil {
		return model.User{}, err
	}
	u.Date = t
	return u, nil
}
