package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"openmind/internal/model"
	"openmind/internal/webhook"
	"openmind/pkg/token"
)

func bcryptHash(t *testing.T, password string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(b)
}

func newJWT() *token.JWTManager {
	return token.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func TestAuthService_Login_Success(t *testing.T) {
	hook := &fakeHook{
		loginFn: func(ctx context.Context, id, password string) ([]webhook.UserRecord, error) {
			if id != "2024001" || password != "password123" {
				t.Errorf("unexpected webhook payload: id=%q password=%q", id, password)
			}
			return []webhook.UserRecord{
				{ID: "2024001", Name: "김직원", Email: "kim@example.com", Company: "계열사A", Dept: "생산팀", Role: "사원", Status: "active"},
			}, nil
		},
	}
	touched := ""
	repo := &fakeUserRepo{
		touchLastLoginFn: func(id string, at time.Time) error {
			touched = id
			return nil
		},
	}
	svc := NewAuthService(hook, repo, nil, newJWT())

	result, err := svc.Login(context.Background(), "2024001", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Session.EmployeeID != "2024001" || result.Session.Name != "김직원" {
		t.Errorf("unexpected session: %+v", result.Session)
	}
	if result.Session.IsAdmin() {
		t.Error("사원 role should not be admin")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("tokens should be issued")
	}
	if touched != "2024001" {
		t.Errorf("last_login_at not touched: %q", touched)
	}

	// 签发出来的 access token 能还原出同一个 Session
	claims, err := newJWT().VerifyToken(result.AccessToken)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Session.EmployeeID != "2024001" || claims.Session.Role != "사원" {
		t.Errorf("claims mismatch: %+v", claims.Session)
	}
}

func TestAuthService_Login_AdminRole(t *testing.T) {
	hook := &fakeHook{
		loginFn: func(ctx context.Context, id, password string) ([]webhook.UserRecord, error) {
			return []webhook.UserRecord{{ID: "9999001", Name: "관리자김", Role: model.RoleAdmin}}, nil
		},
	}
	svc := NewAuthService(hook, &fakeUserRepo{}, nil, newJWT())

	result, err := svc.Login(context.Background(), "9999001", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !result.Session.IsAdmin() {
		t.Error("관리자 role should be admin")
	}
}

func TestAuthService_Login_NoMatchingRecord(t *testing.T) {
	hook := &fakeHook{
		loginFn: func(ctx context.Context, id, password string) ([]webhook.UserRecord, error) {
			// id 不匹配的记录不算认证通过
			return []webhook.UserRecord{{ID: "someone-else"}}, nil
		},
	}
	svc := NewAuthService(hook, &fakeUserRepo{}, nil, newJWT())

	_, err := svc.Login(context.Background(), "2024001", "password123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_Login_EmptyEnvelope(t *testing.T) {
	hook := &fakeHook{
		loginFn: func(ctx context.Context, id, password string) ([]webhook.UserRecord, error) {
			return []webhook.UserRecord{}, nil
		},
	}
	svc := NewAuthService(hook, &fakeUserRepo{}, nil, newJWT())

	_, err := svc.Login(context.Background(), "2024001", "password123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_Login_PasswordHashMismatch(t *testing.T) {
	other := bcryptHash(t, "different-password")
	hook := &fakeHook{
		loginFn: func(ctx context.Context, id, password string) ([]webhook.UserRecord, error) {
			return []webhook.UserRecord{{ID: "2024001", PasswordHash: other}}, nil
		},
	}
	svc := NewAuthService(hook, &fakeUserRepo{}, nil, newJWT())

	_, err := svc.Login(context.Background(), "2024001", "password123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_Login_PasswordHashMatch(t *testing.T) {
	hashed := bcryptHash(t, "password123")
	hook := &fakeHook{
		loginFn: func(ctx context.Context, id, password string) ([]webhook.UserRecord, error) {
			return []webhook.UserRecord{{ID: "2024001", Name: "김직원", PasswordHash: hashed}}, nil
		},
	}
	svc := NewAuthService(hook, &fakeUserRepo{}, nil, newJWT())

	if _, err := svc.Login(context.Background(), "2024001", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestAuthService_Login_WebhookError(t *testing.T) {
	hook := &fakeHook{
		loginFn: func(ctx context.Context, id, password string) ([]webhook.UserRecord, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewAuthService(hook, &fakeUserRepo{}, nil, newJWT())

	_, err := svc.Login(context.Background(), "2024001", "password123")
	if !errors.Is(err, ErrInternal) {
		t.Errorf("err = %v, want ErrInternal", err)
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	svc := NewAuthService(&fakeHook{}, &fakeUserRepo{}, nil, newJWT())
	if _, err := svc.Login(context.Background(), "", "password"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Login(context.Background(), "2024001", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	var sent *webhook.RegisterRequest
	hook := &fakeHook{
		registerFn: func(ctx context.Context, req webhook.RegisterRequest) error {
			sent = &req
			return nil
		},
	}
	svc := NewAuthService(hook, &fakeUserRepo{}, nil, newJWT())

	err := svc.Register(context.Background(), RegisterInput{
		Company:         "계열사A",
		Dept:            "생산팀",
		EmployeeID:      "2024001",
		Name:            "김직원",
		Email:           "kim@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sent == nil {
		t.Fatal("webhook not called")
	}
	if sent.ID != "2024001" || sent.PasswordConfirm != "password123" {
		t.Errorf("unexpected payload: %+v", sent)
	}
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	called := false
	hook := &fakeHook{
		registerFn: func(ctx context.Context, req webhook.RegisterRequest) error {
			called = true
			return nil
		},
	}
	svc := NewAuthService(hook, &fakeUserRepo{}, nil, newJWT())

	err := svc.Register(context.Background(), RegisterInput{
		Company: "계열사A", Dept: "생산팀", EmployeeID: "2024001",
		Name: "김직원", Email: "kim@example.com",
		Password: "password123", PasswordConfirm: "password456",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if called {
		t.Error("webhook should not be called on validation failure")
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	svc := NewAuthService(&fakeHook{}, &fakeUserRepo{}, nil, newJWT())
	err := svc.Register(context.Background(), RegisterInput{EmployeeID: "2024001"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAuthService_Logout_InvalidToken(t *testing.T) {
	svc := NewAuthService(&fakeHook{}, &fakeUserRepo{}, nil, newJWT())
	// 无法验证的 token 直接视为已登出，不报错
	if err := svc.Logout(context.Background(), "not-a-jwt"); err != nil {
		t.Errorf("Logout: %v", err)
	}
}

func TestAuthService_Logout_EmptyToken(t *testing.T) {
	svc := NewAuthService(&fakeHook{}, &fakeUserRepo{}, nil, newJWT())
	if err := svc.Logout(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
