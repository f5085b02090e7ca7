package db

import (
	"context"
	"fmt"

	"github.com/nao1215/devconnector/internal/model"
)

const upsertProfile = `
INSERT INTO profiles (
    id, user_id, company, website, location, bio, status, github_username,
    skills, social, experience, education, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    company = excluded.company,
    website = excluded.website,
    location = excluded.location,
    bio = excluded.bio,
    status = excluded.status,
    github_username = excluded.github_username,
    skills = excluded.skills,
    social = excluded.social,
    experience = excluded.experience,
    education = excluded.education
`

// UpsertProfile はプロフィールを作成、または既存のものを更新する。
// 既存の場合、IDと作成日時は保持される。
func (q *Queries) UpsertProfile(ctx context.Context, p model.Profile) error {
	skills, err := encodeList(p.Skills)
	if err != nil {
		return err
	}
	social, err := encodeMap(p.Social)
	if err != nil {
		return err
	}
	experience, err := encodeList(p.Experience)
	if err != nil {
		return err
	}
	education, err := encodeList(p.Education)
	if err != nil {
		return err
	}

	_, err = q.db.ExecContext(ctx, upsertProfile,
		p.ID, p.User.ID, p.Company, p.Website, p.Location, p.Bio, p.Status, p.GitHubUsername,
		skills, social, experience, education, formatTime(p.Date))
	if err != nil {
		return fmt.Errorf("プロフィールの保存に失敗: %w", err)
	}
	return nil
}

const updateProfileEntries = `
UPDATE profiles SET experience = ?, education = ? WHERE user_id = ?
`

// UpdateProfileEntries は職歴と学歴を書き戻す。
func (q *Queries) UpdateProfileEntries(ctx context.Context, userID string, experience []model.Experience, education []model.Education) error {
	exp, err := encodeList(experience)
	if err != nil {
		return err
	}
	edu, err := encodeList(education)
	if err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, updateProfileEntries, exp, edu, userID)
	if err != nil {
		return fmt.Errorf("職歴・学歴の更新に失敗: %w", err)
	}
	return expectAffected(res)
}

const profileSelect = `
SELECT p.id, p.user_id, u.name, u.avatar, p.company, p.website, p.location, p.bio,
       p.status, p.github_username, p.skills, p.social, p.experience, p.education, p.created_at
FROM profiles p
JOIN users u ON u.id = p.user_id
`

const getProfileByUserID = profileSelect + `WHERE p.user_id = ?`

// GetProfileByUserID はユーザーIDでプロフィールを取得する。
func (q *Queries) GetProfileByUserID(ctx context.Context, userID string) (model.Profile, error) {
	return scanProfile(q.db.QueryRowContext(ctx, getProfileByUserID, userID))
}

const listProfiles = profileSelect + `ORDER BY p.created_at, p.rowid`

// ListProfiles は全プロフィールを作成順に返す。
func (q *Queries) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := q.db.QueryContext(ctx, listProfiles)
	if err != nil {
		return nil, fmt.Errorf("プロフィール一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	profiles := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("プロフィール一覧の走査に失敗: %w", err)
	}
	return profiles, nil
}

const deleteProfileByUserID = `DELETE FROM profiles WHERE user_id = ?`

// DeleteProfileByUserID はユーザーのプロフィールを削除し、削除した件数を返す。
// プロフィールが無くてもエラーにはしない。
func (q *Queries) DeleteProfileByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteProfileByUserID, userID)
	if err != nil {
		return 0, fmt.Errorf("プロフィールの削除に失敗: %w", err)
	}
	return res.RowsAffected()
}

func scanProfile(row scanner) (model.Profile, error) {
	var (
		p                                              model.Profile
		skills, social, experience, education, created string
	)
	err := row.Scan(&p.ID, &p.User.ID, &p.User.Name, &p.User.Avatar,
		&p.Company, &p.Website, &p.Location, &p.Bio, &p.Status, &p.GitHubUsername,
		&skills, &social, &experience, &education, &created)
	if err != nil {
		return model.Profile{}, notFound(err)
	}

	if p.Skills, err = decodeList[string](skills); err != nil {
		return model.Profile{}, err
	}
	if p.Social, err = decodeMap(social); err != nil {
		return model.Profile{}, err
	}
	if p.Experience, err = decodeList[model.Experience](experience); err != nil {
		return model.Profile{}, err
	}
	if p.Education, err = decodeList[model.Education](education); err != nil {
		return model.Profile{}, err
	}
	if p.Date, err = parseTime(created); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}
