package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"openmind/pkg/log"
)

// BodyLogWriter 用于记录请求和响应的body
type BodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现了 io.Writer 接口，将响应写入 gin.ResponseWriter 和一个内部的 buffer
func (w *BodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// sensitiveBody 判断该路径的请求/响应体是否含凭证，含凭证的不落日志。
func sensitiveBody(path string) bool {
	return strings.HasPrefix(path, "/api/auth/")
}

// RequestLogger 作为gin.HandlerFunc，记录请求和响应的body。
// 认证相关路径（登录/注册）携带明文密码，请求体和响应体一律不记录。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path
		sensitive := sensitiveBody(path)

		// 读取并重新缓存请求体
		var requestBody []byte
		if !sensitive && c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			// 将读取的请求体重新设置回 c.Request.Body，以便后续处理函数可以正常读取
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		// 使用自定义的 ResponseWriter 捕获响应
		blw := &BodyLogWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		if !sensitive {
			c.Writer = blw
		}

		// 继续处理请求
		c.Next()

		// 记录相关信息
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		requestLogged := string(requestBody)
		responseLogged := blw.body.String()
		if sensitive {
			requestLogged = "[redacted]"
			responseLogged = "[redacted]"
		}

		// 记录完整的请求和响应信息
		log.Infow("HTTP request",
			"latency", latency,
			"status", statusCode,
			"client_ip", clientIP,
			"method", method,
			"path", path,
			"request_body", requestLogged,
			"response_body", responseLogged,
		)
	}
}
