package service

import (
	"context"
	"strings"

	"openmind/internal/model"
	"openmind/internal/webhook"
	"openmind/pkg/log"
)

// UserService 管理员侧的用户管理：名单来自用户列表 Webhook，
// 关键词过滤在内存中完成（姓名/工号/邮箱的子串匹配，大小写不敏感）。
type UserService interface {
	ListUsers(ctx context.Context, sess *model.Session, search string) ([]webhook.UserRecord, error)
}

type userService struct {
	hook webhook.Caller
}

func NewUserService(hook webhook.Caller) UserService {
	return &userService{hook: hook}
}

func (s *userService) ListUsers(ctx context.Context, sess *model.Session, search string) ([]webhook.UserRecord, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}

	records, err := s.hook.ListUsers(ctx)
	if err != nil {
		log.Errorf("ListUsers: webhook call failed: %v", err)
		return nil, ErrInternal
	}

	// 回包里可能带 password_hash，对外清零
	for i := range records {
		records[i].PasswordHash = ""
	}

	search = strings.TrimSpace(search)
	if search == "" {
		return records, nil
	}
	needle := strings.ToLower(search)
	out := make([]webhook.UserRecord, 0, len(records))
	for _, u := range records {
		if strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.ID), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, u)
		}
	}
	return out, nil
}
