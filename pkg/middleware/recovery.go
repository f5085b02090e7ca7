package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/devconnector/pkg/logging"
)

// ServerErrorBody は想定外の失敗時に返すプレーンテキストの本文。
const ServerErrorBody = "Server Error"

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時にリクエスト情報をログに出力し、500エラーを返す。
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "パニックから回復しました",
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"panic", r,
				)
				c.Abort()
				c.String(http.StatusInternalServerError, ServerErrorBody)
			}
		}()
		c.Next()
	}
}
