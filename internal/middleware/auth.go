package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"openmind/pkg/database"
	"openmind/pkg/token"
)

// AccessTokenCookie 是浏览器端存放访问令牌的 Cookie 名。
const AccessTokenCookie = "access_token"

// SessionKey 是认证通过后注入 Gin 上下文的会话键。
const SessionKey = "session"

// AuthMiddleware 是 JWT 认证中间件，用于保护需要登录才能访问的接口。
// 工作流程：
//  1. 从 access_token Cookie 或 Authorization 请求头中提取 Token
//  2. 验证 Token 签名和有效期
//  3. 检查 Token 类型必须是 access（防止 refresh token 被滥用访问 API）
//  4. 检查 token 是否在 Redis 黑名单中（已登出 token 不再可用）
//  5. 将 claims 里的会话快照注入 Gin 上下文，后续 Handler 通过
//     c.Get("session") 获取 *model.Session
//
// 会话身份完全以 JWT claims 为准，不再查库、也不读任何其他 Cookie 字段。
func AuthMiddleware(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 0. 防御性检查：确保依赖已正确注入
		if jwtManager == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Internal server error",
			})
			return
		}

		// 1. 先取 Cookie，浏览器以外的调用方可以用 Authorization 头
		tokenString, err := ExtractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "Authentication required",
			})
			return
		}

		// 2. 验证 Token 的签名、有效期等
		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil || claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "Invalid or expired access token",
			})
			return
		}

		// 3. 检查 Token 类型：受保护接口只接受 access token，不接受 refresh token
		if claims.TokenType != token.TokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "Invalid token type",
			})
			return
		}

		// 4. 检查 Redis 黑名单：命中表示该 token 已被主动撤销（如用户登出）。
		// 这里与 Logout 使用同一 key 前缀，确保"写黑名单"和"读黑名单"一致。
		if database.RDB != nil {
			blacklistKey := "token_blacklist:" + tokenString
			exists, err := database.RDB.Exists(context.Background(), blacklistKey).Result()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    http.StatusInternalServerError,
					"message": "Internal server error",
				})
				return
			}
			if exists > 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code":    http.StatusUnauthorized,
					"message": "Invalid or expired access token",
				})
				return
			}
		}

		// 5. 认证通过：会话快照注入 Gin 上下文
		sess := claims.Session
		c.Set(SessionKey, &sess)

		// 6. 调用下一个中间件或 Handler
		c.Next()
	}
}

// ExtractToken 按 Cookie 优先、Authorization 头兜底的顺序提取访问令牌。
func ExtractToken(c *gin.Context) (string, error) {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

// extractBearerToken 从 Authorization 请求头中提取 Bearer Token。
// 期望格式：Bearer <token>
// 使用 strings.EqualFold 做大小写不敏感比较，兼容 "bearer"、"BEARER" 等写法。
func extractBearerToken(authHeader string) (string, error) {
	// strings.Fields 按空白字符分割，自动处理多余空格
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	if parts[1] == "" {
		return "", errors.New("empty token")
	}
	return parts[1], nil
}
