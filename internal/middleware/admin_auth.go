package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"openmind/internal/model"
)

// AdminAuthMiddleware 是管理员认证中间件，用于保护需要管理员权限才能访问的接口。
// 该中间件必须在 AuthMiddleware 之后执行，因为管理员判定依赖会话快照。
// 判定只看 JWT 里签发的 Role，不信任请求携带的任何其他声明。
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从 AuthMiddleware 中获取会话
		sessVal, exists := c.Get(SessionKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "Session not found in context",
			})
			return
		}
		// 类型断言：将 any 转换为 *model.Session
		sess, ok := sessVal.(*model.Session)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Failed to get session",
			})
			return
		}
		// 检查用户是否是管理员（Role 为 "관리자"）
		if !sess.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    http.StatusForbidden,
				"message": "Forbidden: Only admin can access this resource",
			})
			return
		}
		// 放行
		c.Next()
	}
}
