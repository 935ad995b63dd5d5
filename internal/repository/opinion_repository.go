package repository

import (
	"fmt"

	"openmind/internal/model"

	"gorm.io/gorm"
)

// OpinionRepository 接口定义了意见行数据的读侧操作。
// 写侧（创建、状态流转）一律走外部 Webhook，这里不提供任何写入意见表的方法。
type OpinionRepository interface {
	FindAll() ([]model.Opinion, error)
	FindByID(id string) (*model.Opinion, error)
	FindRecent(limit int) ([]model.Opinion, error)
}

// opinionRepository 是 OpinionRepository 接口的 GORM 实现。
type opinionRepository struct {
	db *gorm.DB
}

// NewOpinionRepository 创建一个新的 OpinionRepository 实例。
func NewOpinionRepository(db *gorm.DB) OpinionRepository {
	return &opinionRepository{db: db}
}

// FindAll 返回全部意见行。聚合引擎按整表全量重算，数据量级是千行而不是百万行。
func (r *opinionRepository) FindAll() ([]model.Opinion, error) {
	var opinions []model.Opinion
	if err := r.db.Order("reg_date DESC, seq DESC").Find(&opinions).Error; err != nil {
		return nil, err
	}
	return opinions, nil
}

// FindByID 根据 ID 查找单条意见。
func (r *opinionRepository) FindByID(id string) (*model.Opinion, error) {
	var opinion model.Opinion
	if err := r.db.Where("id = ?", id).First(&opinion).Error; err != nil {
		return nil, err
	}
	return &opinion, nil
}

// FindRecent 按 reg_date 倒序返回最近的 limit 条意见，seq 作为同时间的次序键。
func (r *opinionRepository) FindRecent(limit int) ([]model.Opinion, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	var opinions []model.Opinion
	if err := r.db.Order("reg_date DESC, seq DESC").Limit(limit).Find(&opinions).Error; err != nil {
		return nil, err
	}
	return opinions, nil
}
