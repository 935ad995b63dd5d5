package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"openmind/internal/middleware"
	"openmind/internal/model"
	"openmind/internal/service"
)

// mapServiceError 把 Service 层哨兵错误转换为 HTTP 状态码和对外消息。
// 统一映射的价值：
// 1. Handler 不必散落大量 if/else 判断。
// 2. 对外返回口径稳定，避免泄露内部实现细节。
func mapServiceError(err error) (httpStatus int, message string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request parameters"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid employee id or password"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, service.ErrOpinionNotFound):
		return http.StatusNotFound, "Opinion not found"
	case errors.Is(err, service.ErrOpinionBlinded):
		return http.StatusForbidden, "Opinion is not available"
	case errors.Is(err, service.ErrNothingToExport):
		return http.StatusNotFound, "Nothing to export"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeServiceError 写出 Service 层错误。字段级校验错误带上 fields 明细，
// 其余错误走 mapServiceError 的统一映射。
func writeServiceError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Validation failed",
			"fields":  ve.Fields,
		})
		return
	}
	status, msg := mapServiceError(err)
	c.JSON(status, gin.H{
		"code":    status,
		"message": msg,
	})
}

// getSessionFromContext 从 Gin 上下文中读取 AuthMiddleware 注入的会话快照。
// 如果上下文异常，该函数会直接写错误响应并返回 false，调用方只需 `if !ok { return }`。
func getSessionFromContext(c *gin.Context) (*model.Session, bool) {
	sessVal, exists := c.Get(middleware.SessionKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"message": "Session not found in context",
		})
		return nil, false
	}

	sess, ok := sessVal.(*model.Session)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "Failed to get session",
		})
		return nil, false
	}
	return sess, true
}
