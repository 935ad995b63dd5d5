package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"openmind/internal/model"
	"openmind/internal/repository"
	"openmind/internal/webhook"
	"openmind/pkg/hash"
	"openmind/pkg/log"
	"openmind/pkg/token"
)

// 哨兵错误：对外统一语义，隐藏底层实现细节
var (
	// ErrInvalidCredentials 工号或密码错误（登录时统一返回，防止用户枚举）
	ErrInvalidCredentials = errors.New("invalid employee id or password")
	// ErrInvalidInput 请求参数校验失败
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal 内部错误（对外不暴露细节）
	ErrInternal = errors.New("internal server error")
)

// blacklistKeyPrefix 已登出 token 在 Redis 黑名单中的键前缀。
// 必须与认证中间件的读取前缀保持一致。
const blacklistKeyPrefix = "token_blacklist:"

// LoginResult 登录成功后的完整产物。
type LoginResult struct {
	Session      model.Session
	AccessToken  string
	RefreshToken string
}

// RegisterInput 注册请求。密码确认在本地校验，不依赖外部系统拒绝。
type RegisterInput struct {
	Company         string
	Dept            string
	EmployeeID      string
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// AuthService 处理登录、注册、登出。
// 身份数据源是外部登录 Webhook：本服务不保管密码，只在 Webhook
// 回带 password_hash 时做一次本地 bcrypt 复核。授权（管理员判定）
// 完全依据签发进 JWT 的 Session.Role，不信任后续请求中的任何声明。
type AuthService interface {
	Login(ctx context.Context, employeeID, password string) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) error
	Logout(ctx context.Context, tokenString string) error
}

type authService struct {
	hook       webhook.Caller
	userRepo   repository.UserRepository
	rdb        *redis.Client
	jwtManager *token.JWTManager
}

func NewAuthService(hook webhook.Caller, userRepo repository.UserRepository, rdb *redis.Client, jwtManager *token.JWTManager) AuthService {
	return &authService{
		hook:       hook,
		userRepo:   userRepo,
		rdb:        rdb,
		jwtManager: jwtManager,
	}
}

func (s *authService) Login(ctx context.Context, employeeID, password string) (*LoginResult, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if s.jwtManager == nil {
		return nil, ErrInternal
	}

	// 1. 调用登录 Webhook。网络/配置错误不外泄细节
	records, err := s.hook.Login(ctx, employeeID, password)
	if err != nil {
		log.Errorf("Login: webhook call failed for %q: %v", employeeID, err)
		return nil, ErrInternal
	}

	// 2. 从返回数组里找 id 匹配的第一条；找不到统一按凭证错误处理
	var matched *webhook.UserRecord
	for i := range records {
		if records[i].ID == employeeID {
			matched = &records[i]
			break
		}
	}
	if matched == nil {
		return nil, ErrInvalidCredentials
	}

	// 3. Webhook 回带 password_hash 时做本地 bcrypt 复核，
	//    防止外部系统误把未认证记录回包
	if matched.PasswordHash != "" && !hash.CheckPasswordHash(password, matched.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	sess := model.Session{
		EmployeeID: matched.ID,
		Name:       matched.Name,
		Email:      matched.Email,
		Company:    matched.Company,
		Dept:       matched.Dept,
		Role:       matched.Role,
		Status:     matched.Status,
	}

	// 4. 签发 JWT。Session 整体进 claims，后续请求不再查外部系统
	accessToken, refreshToken, err := s.jwtManager.GenerateToken(sess)
	if err != nil {
		log.Errorf("Login: failed to generate token for %q: %v", employeeID, err)
		return nil, ErrInternal
	}

	// 5. 更新最后登录时间。只记日志，不影响登录结果
	if s.userRepo != nil {
		if err := s.userRepo.TouchLastLogin(matched.ID, time.Now()); err != nil {
			log.Warnf("Login: failed to touch last_login_at for %q: %v", employeeID, err)
		}
	}

	return &LoginResult{
		Session:      sess,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) error {
	// 1. 所有字段必填
	in.Company = strings.TrimSpace(in.Company)
	in.Dept = strings.TrimSpace(in.Dept)
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Company == "" || in.Dept == "" || in.EmployeeID == "" ||
		in.Name == "" || in.Email == "" || in.Password == "" || in.PasswordConfirm == "" {
		return ErrInvalidInput
	}
	// 2. 两次密码必须一致，在本地拦下，不把明显的坏请求推给外部系统
	if in.Password != in.PasswordConfirm {
		return ErrInvalidInput
	}

	// 3. 注册本身由外部系统落库，本服务只转发
	err := s.hook.Register(ctx, webhook.RegisterRequest{
		Company:         in.Company,
		Dept:            in.Dept,
		ID:              in.EmployeeID,
		Name:            in.Name,
		Email:           in.Email,
		Password:        in.Password,
		PasswordConfirm: in.PasswordConfirm,
	})
	if err != nil {
		log.Errorf("Register: webhook call failed for %q: %v", in.EmployeeID, err)
		return ErrInternal
	}
	return nil
}

// Logout 把 access token 写入 Redis 黑名单，TTL 取 token 剩余有效期。
// 已过期的 token 无需入黑名单，直接视为登出成功。
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return ErrInvalidInput
	}
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if s.rdb == nil {
		return ErrInternal
	}
	if err := s.rdb.Set(ctx, blacklistKeyPrefix+tokenString, "1", ttl).Err(); err != nil {
		log.Errorf("Logout: failed to blacklist token: %v", err)
		return ErrInternal
	}
	return nil
}
