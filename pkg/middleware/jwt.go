package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAuthToken は認証トークンを運ぶHTTPヘッダー名。
const HeaderAuthToken = "x-auth-token"

// contextKeyUserID はGinコンテキストにユーザーIDを格納するキー。
const contextKeyUserID = "user_id"

// Auth はトークンを検証するGinミドルウェアを返す。
// ヘッダーが無い場合と検証に失敗した場合は401を返して後続の処理を中断する。
// 検証に成功した場合、コンテキストに "user_id" を設定する。
func Auth(codec *TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderAuthToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "No token, authorization denied",
			})
			return
		}

		identity, err := codec.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token is not valid",
			})
			return
		}

		c.Set(contextKeyUserID, identity.ID)
		c.Next()
	}
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
// Authミドルウェアが事前に適用されている必要がある。
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get(contextKeyUserID)
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}
