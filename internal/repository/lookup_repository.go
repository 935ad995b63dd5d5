package repository

import (
	"openmind/internal/model"

	"gorm.io/gorm"
)

// LookupRepository 接口定义分类与关联子公司两张字典表的读取操作。
// 聚合引擎用这两张表把外键展开成名称。
type LookupRepository interface {
	FindCategories() ([]model.Category, error)
	FindCompanies() ([]model.CompanyAffiliate, error)
}

type lookupRepository struct {
	db *gorm.DB
}

// NewLookupRepository 创建一个新的 LookupRepository 实例。
func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &lookupRepository{db: db}
}

// FindCategories 返回全部意见分类，按 sort_order 排列。
func (r *lookupRepository) FindCategories() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("sort_order ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindCompanies 返回全部关联子公司。
func (r *lookupRepository) FindCompanies() ([]model.CompanyAffiliate, error) {
	var companies []model.CompanyAffiliate
	if err := r.db.Order("id ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}
