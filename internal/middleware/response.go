package middleware

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/logger"
	"go.uber.org/zap"
)

// AbortWithError 按错误分类写出统一错误响应并终止请求
func AbortWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err, apperrors.ErrInternal)

	status := appErr.HTTPStatus()
	if status >= 500 {
		logger.WithModule("http").Error("请求处理失败",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(ctxRequestID)),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, apperrors.NewErrorResponse(appErr, c.GetString(ctxRequestID)))
}
