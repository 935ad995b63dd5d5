package repository

import (
	"time"

	"openmind/internal/model"

	"gorm.io/gorm"
)

// UserRepository 接口定义了用户数据的读侧操作。
// 用户的创建走外部注册 Webhook；本地表是外部存储的镜像，只回写登录时间。
type UserRepository interface {
	FindByID(id string) (*model.User, error)
	FindAll() ([]model.User, error)
	TouchLastLogin(id string, at time.Time) error
}

// userRepository 是 UserRepository 接口的 GORM 实现。
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByID 根据工号（登录键）查找用户。
func (r *userRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll 查找所有用户。
func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// TouchLastLogin 更新最近登录时间。用户不存在时静默成功：
// 登录的权威判定在外部系统，本地镜像可能尚未同步到这条记录。
func (r *userRepository) TouchLastLogin(id string, at time.Time) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
