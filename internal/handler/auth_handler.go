package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"openmind/internal/config"
	"openmind/internal/middleware"
	"openmind/internal/service"
	"openmind/pkg/log"
)

// AuthHandler 负责登录、注册、登出和个人信息接口。
type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest 是登录接口请求体。
type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 是注册接口请求体。
// passwordConfirm 的驼峰写法沿用前端既有契约。
type RegisterRequest struct {
	Company         string `json:"company" binding:"required"`
	Dept            string `json:"dept" binding:"required"`
	ID              string `json:"id" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// cookieMaxAge 登录 Cookie 的有效期（秒）。配置缺省时按 7 天。
func cookieMaxAge() int {
	days := config.Conf.JWT.CookieExpireDays
	if days <= 0 {
		days = 7
	}
	return days * 24 * 60 * 60
}

// Login 处理登录请求：认证通过后把 access token 写入 HttpOnly Cookie，
// 同时在响应体里返回令牌，浏览器以外的调用方可以走 Authorization 头。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: failed to bind request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		log.Warnf("Login: failed to login %q: %v", req.ID, err)
		writeServiceError(c, err)
		return
	}

	c.SetCookie(middleware.AccessTokenCookie, result.AccessToken, cookieMaxAge(), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Login successful",
		"data": gin.H{
			"user":         result.Session,
			"accessToken":  result.AccessToken,
			"refreshToken": result.RefreshToken,
		},
	})
}

// Register 处理注册请求。注册由外部系统落库，这里只做校验和转发。
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Register: failed to bind request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return
	}

	err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Company:         req.Company,
		Dept:            req.Dept,
		EmployeeID:      req.ID,
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		log.Warnf("Register: failed to register %q: %v", req.ID, err)
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    http.StatusCreated,
		"message": "Registration submitted",
	})
}

// Logout 处理退出登录：token 入黑名单并清除 Cookie。
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString, err := middleware.ExtractToken(c)
	if err != nil {
		log.Warnf("Logout: no token found: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"message": "Authentication required",
		})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), tokenString); err != nil {
		log.Warnf("Logout: failed to logout: %v", err)
		writeServiceError(c, err)
		return
	}

	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Logout successful",
	})
}

// Profile 返回当前会话快照。身份完全来自 JWT，不查库。
func (h *AuthHandler) Profile(c *gin.Context) {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "OK",
		"data":    sess,
	})
}
