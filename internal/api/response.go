package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/middleware"
)

// Response 成功响应
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// pathID 解析路径中的数字ID
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		middleware.AbortWithError(c, apperrors.Newf(apperrors.ErrValidationFailed, "无效的%s: %q", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}

// bindJSON 解析请求体，失败时写出校验错误
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrValidationFailed, err.Error()))
		return false
	}
	return true
}

// caller 读取当前用户ID，认证中间件保证存在
func caller(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.New(apperrors.ErrUnauthorized))
	}
	return userID, ok
}

// roomCaller 房间路由的公共参数
func roomCaller(c *gin.Context) (uint, string, bool) {
	roomID, ok := pathID(c, "id")
	if !ok {
		return 0, "", false
	}
	userID, ok := caller(c)
	return roomID, userID, ok
}
