package api

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/middleware"
	"github.com/wfunc/bunker-game/internal/utils"
)

const maxGuestNameLength = 50

// AuthHandler 令牌签发。
// 账号体系由外部身份服务负责，这里只为游客签发令牌。
type AuthHandler struct {
	jwt *utils.JWTManager
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(jwt *utils.JWTManager) *AuthHandler {
	return &AuthHandler{jwt: jwt}
}

// GuestRequest 游客登录参数
type GuestRequest struct {
	Name string `json:"name" binding:"required"`
}

// RefreshRequest 刷新令牌参数
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
	Name         string `json:"name"`
}

// TokenResponse 令牌
type TokenResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"` // 秒
}

// Guest 获取游客令牌
// @Summary 获取游客令牌
// @Description 生成新的游客身份并签发访问令牌和刷新令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body GuestRequest true "显示名"
// @Success 200 {object} Response{data=TokenResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/auth/guest [post]
func (h *AuthHandler) Guest(c *gin.Context) {
	var req GuestRequest
	if !bindJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > maxGuestNameLength {
		middleware.AbortWithError(c, apperrors.Newf(apperrors.ErrValidationFailed, "名字长度需在1到%d之间", maxGuestNameLength))
		return
	}

	userID := uuid.NewString()
	access, err := h.jwt.GenerateAccessToken(userID, name)
	if err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrInternal, "签发令牌失败"))
		return
	}
	refresh, err := h.jwt.GenerateRefreshToken(userID)
	if err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrInternal, "签发令牌失败"))
		return
	}

	respond(c, TokenResponse{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(h.jwt.GetTokenExpiry("access").Seconds()),
	})
}

// Refresh 刷新访问令牌
// @Summary 刷新访问令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "刷新令牌"
// @Success 200 {object} Response{data=TokenResponse}
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	claims, err := h.jwt.ValidateToken(req.RefreshToken)
	if err != nil {
		code := apperrors.ErrTokenInvalid
		if errors.Is(err, utils.ErrExpiredToken) {
			code = apperrors.ErrTokenExpired
		}
		middleware.AbortWithError(c, apperrors.Wrap(err, code))
		return
	}
	access, err := h.jwt.RefreshAccessToken(req.RefreshToken, strings.TrimSpace(req.Name))
	if err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrTokenInvalid))
		return
	}

	respond(c, TokenResponse{
		UserID:      claims.UserID,
		AccessToken: access,
		ExpiresIn:   int64(h.jwt.GetTokenExpiry("access").Seconds()),
	})
}
