package token

import (
	"time"

	"openmind/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType 常量，用于区分访问令牌和刷新令牌
// 防止攻击者拿 refresh token 冒充 access token 来访问 API
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTManager 是 JWT 管理器，负责生成和验证 JWT
type JWTManager struct {
	secretKey            []byte        // 密钥
	accessTokenDuration  time.Duration // 访问令牌过期时间
	refreshTokenDuration time.Duration // 刷新令牌过期时间
}

// CustomClaims 是自定义的 Claims，完整携带一份会话身份快照。
// 会话只在登录时构造一次，之后每个请求都从这里还原，
// 不再有第二条（Cookie 散列字段）身份读取路径。
type CustomClaims struct {
	model.Session
	// TokenType 用于区分 access 和 refresh token，防止 token 类型混用攻击
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// NewJWTManager 创建一个新的 JWTManager
// secretKey 是 JWT 的密钥
// accessTokenDuration 是访问令牌的过期时间
// refreshTokenDuration 是刷新令牌的过期时间
func NewJWTManager(secretKey string, accessTokenDuration, refreshTokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:            []byte(secretKey),
		accessTokenDuration:  accessTokenDuration,
		refreshTokenDuration: refreshTokenDuration,
	}
}

// GenerateToken 基于会话快照生成访问令牌和刷新令牌
func (manager *JWTManager) GenerateToken(sess model.Session) (string, string, error) {
	now := time.Now()
	// 访问令牌 Claims
	accessClaims := &CustomClaims{
		Session:   sess,
		TokenType: TokenTypeAccess, // 标记为访问令牌，防止与刷新令牌混用
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "openmind",
			ExpiresAt: jwt.NewNumericDate(now.Add(manager.accessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	accessTokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(manager.secretKey)
	if err != nil {
		return "", "", err
	}

	// 刷新令牌 Claims
	refreshClaims := &CustomClaims{
		Session:   sess,
		TokenType: TokenTypeRefresh, // 标记为刷新令牌，防止与访问令牌混用
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "openmind",
			ExpiresAt: jwt.NewNumericDate(now.Add(manager.refreshTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	refreshTokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(manager.secretKey)
	if err != nil {
		return "", "", err
	}
	return accessTokenString, refreshTokenString, nil
}

// VerifyToken 验证令牌
// tokenString 是 JWT 字符串
// 返回 CustomClaims 和 error
func (manager *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return manager.secretKey, nil
	},
		// 使用 WithValidMethods 精确限制只允许 HS256 算法
		// 替代手动类型断言，防止算法篡改攻击（如 alg=none 或 alg=RS256）
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return nil, err
	}
	return token.Claims.(*CustomClaims), nil
}
