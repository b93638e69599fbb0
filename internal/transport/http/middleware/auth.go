package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-marketplace/internal/core/auth"
	resp "go-gin-marketplace/internal/transport/http/response"
)

const KeyUID = "uid"

// Authenticate 校验 Bearer 令牌并把 uid 放进上下文；v 为 nil（auth.mode=none）时直接放行
func Authenticate(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error("missing token"))
			return
		}
		id, err := v.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error("invalid token"))
			return
		}
		c.Set(KeyUID, id.UID)
		c.Next()
	}
}

// UID 已认证调用方；未开启鉴权时为空串
func UID(c *gin.Context) string { return c.GetString(KeyUID) }
