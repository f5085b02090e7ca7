package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/devconnector/internal/github"
	"github.com/nao1215/devconnector/internal/model"
	"github.com/nao1215/devconnector/internal/service"
	"github.com/nao1215/devconnector/pkg/middleware"
)

// handleMyProfile は認証済みユーザーのプロフィールを返すハンドラを返す。
func (s *Server) handleMyProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.profiles.Me(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// handleUpsertProfile はプロフィールの作成・更新のハンドラを返す。
func (s *Server) handleUpsertProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req profileRequest
		if err := bindJSON(c, &req); err != nil {
			s.fail(c, err)
			return
		}

		p, err := s.profiles.Upsert(c.Request.Context(), middleware.GetUserID(c), service.ProfileInput{
			Company:        req.Company,
			Website:        req.Website,
			Location:       req.Location,
			Bio:            req.Bio,
			Status:         req.Status,
			GitHubUsername: req.GitHubUsername,
			Skills:         req.Skills,
			Social: map[string]string{
				"youtube":   req.YouTube,
				"twitter":   req.Twitter,
				"facebook":  req.Facebook,
				"linkedin":  req.LinkedIn,
				"instagram": req.Instagram,
			},
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// handleListProfiles は全プロフィールを返すハンドラを返す。
func (s *Server) handleListProfiles() gin.HandlerFunc {
	return func(c *gin.Context) {
		profiles, err := s.profiles.List(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, profiles)
	}
}

// handleProfileByUser はユーザーIDでプロフィールを返すハンドラを返す。
func (s *Server) handleProfileByUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.profiles.ByUserID(c.Request.Context(), c.Param("user_id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// handleDeleteAccount は投稿・プロフィール・ユーザーを削除するハンドラを返す。
func (s *Server) handleDeleteAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.profiles.DeleteAccount(c.Request.Context(), middleware.GetUserID(c)); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}

// handleAddExperience は職歴を追加するハンドラを返す。
func (s *Server) handleAddExperience() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req experienceRequest
		if err := bindJSON(c, &req); err != nil {
			s.fail(c, err)
			return
		}

		p, err := s.profiles.AddExperience(c.Request.Context(), middleware.GetUserID(c), model.Experience{
			Title:       req.Title,
			Company:     req.Company,
			Location:    req.Location,
			From:        req.From,
			To:          req.To,
			Current:     req.Current,
			Description: req.Description,
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// handleRemoveExperience は職歴を削除するハンドラを返す。
func (s *Server) handleRemoveExperience() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.profiles.RemoveExperience(c.Request.Context(), middleware.GetUserID(c), c.Param("exp_id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// handleAddEducation は学歴を追加するハンドラを返す。
func (s *Server) handleAddEducation() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req educationRequest
		if err := bindJSON(c, &req); err != nil {
			s.fail(c, err)
			return
		}

		p, err := s.profiles.AddEducation(c.Request.Context(), middleware.GetUserID(c), model.Education{
			School:       req.School,
			Degree:       req.Degree,
			FieldOfStudy: req.FieldOfStudy,
			From:         req.From,
			To:           req.To,
			Current:      req.Current,
			Description:  req.Description,
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// handleRemoveEducation は学歴を削除するハンドラを返す。
func (s *Server) handleRemoveEducation() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.profiles.RemoveEducation(c.Request.Context(), middleware.GetUserID(c), c.Param("edu_id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// handleGitHubRepos はGitHubの公開リポジトリ一覧をそのまま返すハンドラを返す。
func (s *Server) handleGitHubRepos() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := s.github.Repos(c.Request.Context(), c.Param("username"))
		if err != nil {
			if errors.Is(err, github.ErrProfileNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "No Github profile found"})
				return
			}
			s.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}
