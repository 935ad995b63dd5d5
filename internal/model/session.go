package model

// Session 是一次登录会话的身份快照，在登录成功时构造一次，
// 之后通过 JWT 还原并由中间件注入上下文，全程只有这一条身份读取路径
// （取代原系统里 Cookie 与 localStorage 双份冗余状态）。
type Session struct {
	EmployeeID string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Company    string `json:"company"`
	Dept       string `json:"dept"`
	Role       string `json:"role"`
	Status     string `json:"status"`
}

// IsAdmin 判断当前会话是否具有管理员权限。
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
