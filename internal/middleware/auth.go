package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/utils"
)

const (
	ctxUserID   = "userID"
	ctxUserName = "userName"
)

// AuthMiddleware JWT认证中间件，只负责把令牌解析成用户ID
type AuthMiddleware struct {
	jwt *utils.JWTManager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwt *utils.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth 需要认证的中间件
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			AbortWithError(c, apperrors.New(apperrors.ErrUnauthorized, "缺少认证令牌"))
			return
		}

		claims, err := m.jwt.ValidateAccessToken(token)
		if err != nil {
			code := apperrors.ErrTokenInvalid
			if errors.Is(err, utils.ErrExpiredToken) {
				code = apperrors.ErrTokenExpired
			}
			AbortWithError(c, apperrors.Wrap(err, code))
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserName, claims.Name)
		c.Next()
	}
}

// extractToken 从请求中提取令牌
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	// 1. Authorization Header (Bearer Token)
	if bearer := c.GetHeader("Authorization"); bearer != "" {
		parts := strings.SplitN(bearer, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// 2. X-Access-Token Header
	if token := c.GetHeader("X-Access-Token"); token != "" {
		return token
	}

	// 3. Query参数，浏览器建立 WebSocket 时无法设置 Header
	return c.Query("token")
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) (string, bool) {
	if v, exists := c.Get(ctxUserID); exists {
		if id, ok := v.(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// GetUserName 从上下文获取令牌中的显示名
func GetUserName(c *gin.Context) string {
	return c.GetString(ctxUserName)
}
