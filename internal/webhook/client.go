package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"openmind/internal/config"
	"openmind/internal/model"
)

// UserRecord 是登录/用户列表 Webhook 返回的一条用户记录。
// password_hash 是可选字段：外部系统较新的版本会回带，用于本地二次校验。
type UserRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	Dept         string `json:"dept"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// RegisterRequest 是用户注册 Webhook 的请求体。
// 字段名与外部系统的契约一致（passwordConfirm 的驼峰写法是历史契约，不要改）。
type RegisterRequest struct {
	Company         string `json:"company"`
	Dept            string `json:"dept"`
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Timestamp       string `json:"timestamp"`
}

// SubmitRequest 是意见提交 Webhook 的请求体。
// seq 必须送 null：id/seq 由外部存储分配，客户端从不自己生成。
type SubmitRequest struct {
	Seq              *int64            `json:"seq"`
	Category         string            `json:"category"`
	Company          string            `json:"company"`
	Department       string            `json:"department"`
	EmployeeID       string            `json:"employeeId"`
	Name             string            `json:"name"`
	Title            string            `json:"title"`
	CurrentSituation string            `json:"currentSituation"`
	Suggestion       string            `json:"suggestion"`
	UserInfo         map[string]string `json:"userInfo"`
	Timestamp        string            `json:"timestamp"`
}

// UpdateRequest 是管理员处理意见的 Webhook 请求体：
// 完整的意见快照加上 {status, proc_id, proc_name, proc_desc, proc_date}。
type UpdateRequest struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	Name          string `json:"name"`
	Dept          string `json:"dept"`
	Company       string `json:"company"`
	Category      string `json:"category"`
	Title         string `json:"title"`
	Asis          string `json:"asis"`
	Tobe          string `json:"tobe"`
	Effect        string `json:"effect"`
	CaseStudy     string `json:"case"`
	Status        string `json:"status"`
	ProcID        string `json:"proc_id"`
	ProcName      string `json:"proc_name"`
	ProcDesc      string `json:"proc_desc"`
	ProcDate      string `json:"proc_date"`
	NegativeScore int    `json:"negative_score"`
	RegDate       string `json:"reg_date"`
}

// SearchRequest 是管理员检索意见的 Webhook 请求体。
// sDate/eDate 为 YYYYMM；空字符串表示该条件不过滤。
type SearchRequest struct {
	SDate      string `json:"sDate"`
	EDate      string `json:"eDate"`
	Company    string `json:"company"`
	EmployeeID string `json:"employeeId"`
	Category   string `json:"category"`
	Status     string `json:"status"`
}

// Caller 抽象六个外部端点的调用面，业务层依赖该接口方便测试替身。
type Caller interface {
	Login(ctx context.Context, id, password string) ([]UserRecord, error)
	Register(ctx context.Context, req RegisterRequest) error
	SubmitOpinion(ctx context.Context, req SubmitRequest) error
	UpdateOpinion(ctx context.Context, req UpdateRequest) error
	SearchOpinions(ctx context.Context, req SearchRequest) ([]model.OpinionRecord, error)
	ListUsers(ctx context.Context) ([]UserRecord, error)
}

// Client 是六个外部端点的调用方。每个方法一次 HTTP 往返，
// 无重试、无去重；超时由构造时注入的 http.Client 统一控制。
type Client struct {
	httpClient *http.Client
	cfg        config.WebhookConfig
}

var _ Caller = (*Client)(nil)

// NewClient 创建 Webhook 调用方。timeout_second <= 0 时退回 10 秒。
func NewClient(cfg config.WebhookConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecond) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
	}
}

// post 发送一次 JSON POST，返回响应体。非 2xx 状态码视为调用失败。
func (c *Client) post(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return respBody, nil
}

// Login 调用登录端点。契约：响应为数组时，第一个 id 等于提交工号的元素
// 即认证通过的用户记录；其他任何形态都按登录失败处理（返回空切片）。
func (c *Client) Login(ctx context.Context, id, password string) ([]UserRecord, error) {
	payload := map[string]string{
		"id":        id,
		"password":  password,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	body, err := c.post(ctx, c.cfg.LoginURL, payload)
	if err != nil {
		return nil, err
	}

	var records []UserRecord
	if _, err := DecodeEnvelope(body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Register 调用注册端点。fire-and-forget：只关心 HTTP 成败，不解析响应体。
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	req.Timestamp = time.Now().UTC().Format(time.RFC3339)
	_, err := c.post(ctx, c.cfg.RegisterURL, req)
	return err
}

// SubmitOpinion 调用意见提交端点。只关心 HTTP 成败。
func (c *Client) SubmitOpinion(ctx context.Context, req SubmitRequest) error {
	req.Timestamp = time.Now().UTC().Format(time.RFC3339)
	_, err := c.post(ctx, c.cfg.SubmitURL, req)
	return err
}

// UpdateOpinion 调用意见处理端点。只关心 HTTP 成败。
func (c *Client) UpdateOpinion(ctx context.Context, req UpdateRequest) error {
	_, err := c.post(ctx, c.cfg.UpdateURL, req)
	return err
}

// SearchOpinions 调用意见检索端点并解码三种响应形态之一。
func (c *Client) SearchOpinions(ctx context.Context, req SearchRequest) ([]model.OpinionRecord, error) {
	body, err := c.post(ctx, c.cfg.SearchURL, req)
	if err != nil {
		return nil, err
	}

	var records []model.OpinionRecord
	if _, err := DecodeEnvelope(body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListUsers 调用用户列表端点并解码三种响应形态之一。
func (c *Client) ListUsers(ctx context.Context) ([]UserRecord, error) {
	payload := map[string]string{
		"action":    "get_users",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	body, err := c.post(ctx, c.cfg.UserListURL, payload)
	if err != nil {
		return nil, err
	}

	var records []UserRecord
	if _, err := DecodeEnvelope(body, &records); err != nil {
		return nil, err
	}
	return records, nil
}
