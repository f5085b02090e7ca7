package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/devconnector/pkg/middleware"
)

// handleCreatePost は投稿を作成するハンドラを返す。
func (s *Server) handleCreatePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req textRequest
		if err := bindJSON(c, &req); err != nil {
			s.fail(c, err)
			return
		}

		p, err := s.posts.Create(c.Request.Context(), middleware.GetUserID(c), req.Text)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// handleListPosts は全投稿を新しい順に返すハンドラを返す。
func (s *Server) handleListPosts() gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := s.posts.List(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, posts)
	}
}

// handleGetPost は投稿を1件返すハンドラを返す。
func (s *Server) handleGetPost() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.posts.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// handleDeletePost は投稿を削除するハンドラを返す。投稿者以外は401となる。
func (s *Server) handleDeletePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.posts.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Post removed"})
	}
}

// handleLike はいいねを追加するハンドラを返す。
func (s *Server) handleLike() gin.HandlerFunc {
	return func(c *gin.Context) {
		likes, err := s.posts.Like(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, likes)
	}
}

// handleUnlike はいいねを取り消すハンドラを返す。
func (s *Server) handleUnlike() gin.HandlerFunc {
	return func(c *gin.Context) {
		likes, err := s.posts.Unlike(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, likes)
	}
}

// handleAddComment はコメントを追加するハンドラを返す。
func (s *Server) handleAddComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req textRequest
		if err := bindJSON(c, &req); err != nil {
			s.fail(c, err)
			return
		}

		comments, err := s.posts.AddComment(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Text)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, comments)
	}
}

// handleRemoveComment はコメントを削除するハンドラを返す。コメントの投稿者以外は401となる。
func (s *Server) handleRemoveComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		comments, err := s.posts.RemoveComment(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), c.Param("comment_id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, comments)
	}
}
