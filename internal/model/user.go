package model

import "time"

// RoleAdmin 是管理员角色在外部系统中的取值。
// 注意这是韩文业务数据（"관리자" = 管理员），不是代码内部的枚举，判断时必须原样比较。
const RoleAdmin = "관리자"

// User 对应数据库中 users 表。
// id 即员工工号（사번），同时也是登录键；密码只保存哈希。
type User struct {
	ID           string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	EmployeeID   string     `gorm:"type:varchar(64);index" json:"employee_id"`
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	Email        string     `gorm:"type:varchar(255)" json:"email"`
	CompanyID    *string    `gorm:"type:varchar(64);index" json:"company_id"`
	Dept         string     `gorm:"type:varchar(100)" json:"dept"`
	Role         string     `gorm:"type:varchar(50)" json:"role"`
	PasswordHash string     `gorm:"type:varchar(255)" json:"-"` // Hide password hash in json output
	Status       string     `gorm:"type:varchar(50)" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定 GORM 使用的表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 判断用户是否为管理员。
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
