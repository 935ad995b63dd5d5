package model

import "time"

// Opinion 对应数据库中 opinion 表，表示一条员工提交的意见。
// id/seq 由外部存储分配，本服务创建时从不自己生成（提交 Webhook 时 seq 送 null）。
// effect/case_study/ai 摘要类字段由外部流程异步回填，本服务只读。
type Opinion struct {
	ID            string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	Seq           int64      `gorm:"index" json:"seq"`
	Title         string     `gorm:"type:varchar(200);not null" json:"title"`
	Asis          string     `gorm:"type:text" json:"asis"`
	Tobe          string     `gorm:"type:text;not null" json:"tobe"`
	Effect        string     `gorm:"type:text" json:"effect"`
	CaseStudy     string     `gorm:"type:text" json:"case_study"`
	CategoryID    *string    `gorm:"type:varchar(64);index" json:"category_id"`
	CompanyID     *string    `gorm:"type:varchar(64);index" json:"company_id"`
	UserID        *string    `gorm:"type:varchar(64);index" json:"user_id"`
	Status        string     `gorm:"type:varchar(50)" json:"status"`
	NegativeScore int        `gorm:"default:0" json:"negative_score"`
	Quarter       string     `gorm:"type:varchar(10);not null" json:"quarter"`
	RegDate       time.Time  `gorm:"column:reg_date" json:"reg_date"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

// TableName 指定 GORM 使用的表名
func (Opinion) TableName() string {
	return "opinion"
}

// Category 对应数据库中 category 表（意见分类字典）。
type Category struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Code      string    `gorm:"type:varchar(50)" json:"code"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	Status    string    `gorm:"type:varchar(50)" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Category) TableName() string {
	return "category"
}

// CompanyAffiliate 对应数据库中 company_affiliate 表（集团关联子公司字典）。
type CompanyAffiliate struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Code      string    `gorm:"type:varchar(50)" json:"code"`
	Status    string    `gorm:"type:varchar(50)" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CompanyAffiliate) TableName() string {
	return "company_affiliate"
}

// ProcessingHistory 对应数据库中 processing_history 表，记录管理员的每次处理动作。
type ProcessingHistory struct {
	ID                string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	OpinionID         *string    `gorm:"type:varchar(64);index" json:"opinion_id"`
	ProcessorID       *string    `gorm:"type:varchar(64);index" json:"processor_id"`
	ProcName          string     `gorm:"type:varchar(100)" json:"proc_name"`
	ProcDesc          string     `gorm:"type:text" json:"proc_desc"`
	ProcessingContent string     `gorm:"type:text" json:"processing_content"`
	Status            string     `gorm:"type:varchar(50);not null" json:"status"`
	ProcessedAt       *time.Time `json:"processed_at"`
}

func (ProcessingHistory) TableName() string {
	return "processing_history"
}

// OpinionRecord 是外部检索 Webhook 返回的一行意见数据（已做过字典展开）。
// 与 Opinion（数据库模型）的区别：
//   - category/company 已解析成名称而不是外键
//   - 附带提交人姓名/部门与处理元数据
//   - json 标签与 Webhook 的旧字段名保持一致（含 prod_dept 这种历史拼写）
type OpinionRecord struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	UserID        string `json:"user_id,omitempty"`
	Name          string `json:"name"`
	Dept          string `json:"dept"`
	Company       string `json:"company"`
	Category      string `json:"category"`
	Title         string `json:"title"`
	Asis          string `json:"asis"`
	Tobe          string `json:"tobe"`
	Effect        string `json:"effect,omitempty"`
	CaseStudy     string `json:"case,omitempty"`
	Status        string `json:"status"`
	RegDate       string `json:"reg_date"`
	NegativeScore int    `json:"negative_score"`
	ProdDept      string `json:"prod_dept,omitempty"`
	ProcID        string `json:"proc_id,omitempty"`
	ProcName      string `json:"proc_name,omitempty"`
	ProcDesc      string `json:"proc_desc,omitempty"`
}

// regDateLayouts Webhook 历史上送过的几种日期格式，按出现频率排序。
var regDateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseRegDate 尝试解析 reg_date 字符串，解析失败时 ok 为 false。
func (r OpinionRecord) ParseRegDate() (t time.Time, ok bool) {
	for _, layout := range regDateLayouts {
		if parsed, err := time.Parse(layout, r.RegDate); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
