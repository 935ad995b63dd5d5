package repository

import (
	"fmt"

	"openmind/internal/model"

	"gorm.io/gorm"
)

// HistoryRepository 接口定义处理履历表的持久化操作。
// 每次管理员处理动作在外部 Webhook 确认成功后追加一行，从不修改、从不删除。
type HistoryRepository interface {
	Create(h *model.ProcessingHistory) error
	FindByOpinionID(opinionID string) ([]model.ProcessingHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository 创建一个新的 HistoryRepository 实例。
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// Create 追加一条处理履历。
func (r *historyRepository) Create(h *model.ProcessingHistory) error {
	if h == nil {
		return fmt.Errorf("history is nil")
	}
	return r.db.Create(h).Error
}

// FindByOpinionID 按处理时间倒序返回某条意见的全部处理履历。
func (r *historyRepository) FindByOpinionID(opinionID string) ([]model.ProcessingHistory, error) {
	var histories []model.ProcessingHistory
	if err := r.db.Where("opinion_id = ?", opinionID).
		Order("processed_at DESC").
		Find(&histories).Error; err != nil {
		return nil, err
	}
	return histories, nil
}
