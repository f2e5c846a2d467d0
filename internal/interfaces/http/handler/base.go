package handler

import (
	"github.com/gin-gonic/gin"

	"readrecall-api/internal/interfaces/http/dto"
	"readrecall-api/pkg/errors"
	"readrecall-api/pkg/logger"
)

// currentUserID 取认证中间件注入的用户 ID
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// respondError 统一错误出口
// AppError 按其携带的 HTTP 状态码返回，其余错误记日志后返回 500。
func respondError(c *gin.Context, err error, fallbackMsg string) {
	if errors.IsAppError(err) {
		dto.ErrorFromApp(c, errors.AsAppError(err))
		return
	}
	logger.Error(c.Request.Context(), fallbackMsg, err)
	dto.InternalError(c, fallbackMsg)
}
