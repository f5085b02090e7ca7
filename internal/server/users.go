package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/devconnector/internal/service"
	"github.com/nao1215/devconnector/pkg/middleware"
)

// handleRegister はユーザー登録のハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := bindJSON(c, &req); err != nil {
			s.fail(c, err)
			return
		}

		token, err := s.users.Register(c.Request.Context(), service.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// handleLogin はログインのハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := bindJSON(c, &req); err != nil {
			s.fail(c, err)
			return
		}

		token, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// handleMe は認証済みユーザーの情報を返すハンドラを返す。
func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := s.users.Me(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}
