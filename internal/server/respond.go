package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/devconnector/internal/apperr"
	"github.com/nao1215/devconnector/pkg/middleware"
)

// fail はエラーをKindに応じたレスポンスに変換する。
// 想定外のエラーはログに出力し、詳細を隠して500を返す。
func (s *Server) fail(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Wrap(apperr.KindInternal, "unexpected error", err)
	}

	switch ae.Kind {
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"errors": ae.Fields})
	case apperr.KindBadRequest:
		if len(ae.Fields) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": ae.Fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": ae.Message})
	case apperr.KindMalformedID, apperr.KindAlreadyLiked, apperr.KindNotLiked:
		c.JSON(http.StatusBadRequest, gin.H{"message": ae.Message})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": ae.Message})
	case apperr.KindMissingToken, apperr.KindInvalidToken, apperr.KindForbidden:
		c.JSON(http.StatusUnauthorized, gin.H{"message": ae.Message})
	default:
		s.logger.Error(c.Request.Context(), "リクエストの処理に失敗",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"kind", ae.Kind.String(),
			"error", err,
		)
		c.String(http.StatusInternalServerError, middleware.ServerErrorBody)
	}
}
