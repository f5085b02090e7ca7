package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/devconnector/internal/apperr"
	"github.com/nao1215/devconnector/internal/db"
	"github.com/nao1215/devconnector/internal/model"
)

const (
	msgNoProfile       = "There is no profile for this user"
	msgProfileNotFound = "Profile not found"
)

// Profiles はプロフィールと職歴・学歴、アカウント削除を扱う。
type Profiles struct {
	conn *sql.DB
	now  func() time.Time
}

// NewProfiles はProfilesを生成する。
func NewProfiles(conn *sql.DB) *Profiles {
	return &Profiles{conn: conn, now: time.Now}
}

// ProfileInput はプロフィール作成・更新の入力。
// 空文字のフィールドは未指定として扱い、既存の値を保持する。
type ProfileInput struct {
	Company        string
	Website        string
	Location       string
	Bio            string
	Status         string
	GitHubUsername string
	// Skills はカンマ区切りのスキル一覧。
	Skills string
	// Social はプラットフォーム名からURLへの対応。model.SocialPlatforms 以外は無視する。
	Social map[string]string
}

// Me は呼び出し元のプロフィールを返す。
func (s *Profiles) Me(ctx context.Context, userID string) (model.Profile, error) {
	p, err := db.New(s.conn).GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return model.Profile{}, apperr.New(apperr.KindBadRequest, msgNoProfile)
		}
		return model.Profile{}, storeError(err, msgNoProfile)
	}
	return p, nil
}

// Upsert は呼び出し元のプロフィールを作成、または更新する。
// SNSリンクは毎回入力から作り直す。
func (s *Profiles) Upsert(ctx context.Context, userID string, in ProfileInput) (model.Profile, error) {
	var out model.Profile
	err := db.RunInTx(ctx, s.conn, func(q *db.Queries) error {
		p, err := q.GetProfileByUserID(ctx, userID)
		switch {
		case errors.Is(err, db.ErrNotFound):
			// 削除済みアカウントのトークンでは作成しない
			if _, err := q.GetUserByID(ctx, userID); err != nil {
				return storeError(err, msgUserNotFound)
			}
			p = model.Profile{
				ID:         uuid.NewString(),
				User:       model.UserSummary{ID: userID},
				Experience: []model.Experience{},
				Education:  []model.Education{},
				Date:       s.now(),
			}
		case err != nil:
			return storeError(err, msgNoProfile)
		}

		applyProfileInput(&p, in)
		if err := q.UpsertProfile(ctx, p); err != nil {
			return storeError(err, msgNoProfile)
		}
		out, err = q.GetProfileByUserID(ctx, userID)
		return storeError(err, msgNoProfile)
	})
	if err != nil {
		return model.Profile{}, err
	}
	return out, nil
}

func applyProfileInput(p *model.Profile, in ProfileInput) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Company, in.Company)
	set(&p.Website, in.Website)
	set(&p.Location, in.Location)
	set(&p.Bio, in.Bio)
	set(&p.Status, in.Status)
	set(&p.GitHubUsername, in.GitHubUsername)
	if in.Skills != "" {
		p.Skills = splitSkills(in.Skills)
	}

	p.Social = model.Social{}
	for _, platform := range model.SocialPlatforms {
		if v := strings.TrimSpace(in.Social[platform]); v != "" {
			p.Social[platform] = v
		}
	}
}

// splitSkills はカンマ区切りの文字列を前後の空白を除いたスライスに分割する。空要素は捨てる。
func splitSkills(s string) []string {
	skills := []string{}
	for _, skill := range strings.Split(s, ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

// List は全プロフィールを返す。
func (s *Profiles) List(ctx context.Context) ([]model.Profile, error) {
	profiles, err := db.New(s.conn).ListProfiles(ctx)
	if err != nil {
		return nil, storeError(err, msgProfileNotFound)
	}
	return profiles, nil
}

// ByUserID は指定ユーザーのプロフィールを返す。
func (s *Profiles) ByUserID(ctx context.Context, userID string) (model.Profile, error) {
	if err := parseID(userID, msgProfileNotFound); err != nil {
		return model.Profile{}, err
	}
	p, err := db.New(s.conn).GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return model.Profile{}, apperr.New(apperr.KindBadRequest, msgProfileNotFound)
		}
		return model.Profile{}, storeError(err, msgProfileNotFound)
	}
	return p, nil
}

// DeleteAccount は呼び出し元の投稿・プロフィール・ユーザーを1トランザクションで削除する。
func (s *Profiles) DeleteAccount(ctx context.Context, userID string) error {
	return db.RunInTx(ctx, s.conn, func(q *db.Queries) error {
		if _, err := q.DeletePostsByUserID(ctx, userID); err != nil {
			return storeError(err, msgUserNotFound)
		}
		if _, err := q.DeleteProfileByUserID(ctx, userID); err != nil {
			return storeError(err, msgUserNotFound)
		}
		return storeError(q.DeleteUser(ctx, userID), msgUserNotFound)
	})
}

// AddExperience は職歴を先頭に追加し、更新後のプロフィールを返す。
func (s *Profiles) AddExperience(ctx context.Context, userID string, e model.Experience) (model.Profile, error) {
	e.ID = uuid.NewString()
	return s.mutateEntries(ctx, userID, func(p *model.Profile) error {
		p.AddExperience(e)
		return nil
	})
}

// RemoveExperience は指定IDの職歴を削除し、更新後のプロフィールを返す。
func (s *Profiles) RemoveExperience(ctx context.Context, userID, expID string) (model.Profile, error) {
	return s.mutateEntries(ctx, userID, func(p *model.Profile) error {
		return p.RemoveExperience(expID)
	})
}

// AddEducation は学歴を先頭に追加し、更新後のプロフィールを返す。
func (s *Profiles) AddEducation(ctx context.Context, userID string, e model.Education) (model.Profile, error) {
	e.ID = uuid.NewString()
	return s.mutateEntries(ctx, userID, func(p *model.Profile) error {
		p.AddEducation(e)
		return nil
	})
}

// RemoveEducation は指定IDの学歴を削除し、更新後のプロフィールを返す。
func (s *Profiles) RemoveEducation(ctx context.Context, userID, eduID string) (model.Profile, error) {
	return s.mutateEntries(ctx, userID, func(p *model.Profile) error {
		return p.RemoveEducation(eduID)
	})
}

// mutateEntries は呼び出し元のプロフィールの職歴・学歴を変更して書き戻す。
func (s *Profiles) mutateEntries(ctx context.Context, userID string, change func(p *model.Profile) error) (model.Profile, error) {
	p, err := mutateOwned(ctx, s.conn, userID,
		func(q *db.Queries) (*model.Profile, error) {
			p, err := q.GetProfileByUserID(ctx, userID)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return nil, apperr.New(apperr.KindBadRequest, msgNoProfile)
				}
				return nil, storeError(err, msgNoProfile)
			}
			return &p, nil
		},
		change,
		func(q *db.Queries, p *model.Profile) error {
			return storeError(q.UpdateProfileEntries(ctx, p.User.ID, p.Experience, p.Education), msgNoProfile)
		},
	)
	if err != nil {
		return model.Profile{}, err
	}
	return *p, nil
}
