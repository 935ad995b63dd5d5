package service

import (
	"fmt"
	"strings"
	"time"

	"openmind/internal/model"
)

// 检索/过滤引擎。
// 所有条件在内存中对意见行做 AND 组合过滤，空字符串或 "all" 表示该维度不限。
// 文本检索是大小写不敏感的子串匹配，作用于标题、现状（asis）和改进方案（tobe）。

// FilterAll 表示某个维度不做过滤的哨兵值。
const FilterAll = "all"

// Criteria 意见过滤条件。零值表示不过滤、全量返回。
type Criteria struct {
	// Text 关键词，匹配标题/现状/改进方案的子串（大小写不敏感）
	Text string
	// Status 状态标签（如 "대기"、"처리완료"），"all" 或空表示不限
	Status string
	// Category 安件分类名，"all" 或空表示不限
	Category string
	// Company 系列社名，"all" 或空表示不限
	Company string
	// EmployeeID 提交人工号，精确匹配
	EmployeeID string
	// DateFrom / DateTo 登记日期闭区间（按天比较），零值表示不限
	DateFrom time.Time
	DateTo   time.Time
}

// wildcard 判断某个维度是否不限。
func wildcard(v string) bool {
	return v == "" || strings.EqualFold(v, FilterAll)
}

// Match 判断单条意见行是否满足全部条件。
// 注意：脱敏应在过滤之后做，条件始终作用于原始字段，
// 否则被遮蔽意见的状态过滤会被替换文案干扰。
func (c Criteria) Match(rec model.OpinionRecord) bool {
	if c.Text != "" {
		needle := strings.ToLower(c.Text)
		if !strings.Contains(strings.ToLower(rec.Title), needle) &&
			!strings.Contains(strings.ToLower(rec.Asis), needle) &&
			!strings.Contains(strings.ToLower(rec.Tobe), needle) {
			return false
		}
	}
	if !wildcard(c.Status) && model.StatusLabel(rec.Status) != model.StatusLabel(c.Status) {
		return false
	}
	if !wildcard(c.Category) && rec.Category != c.Category {
		return false
	}
	if !wildcard(c.Company) && rec.Company != c.Company {
		return false
	}
	if c.EmployeeID != "" && rec.UserID != c.EmployeeID {
		return false
	}
	if !c.DateFrom.IsZero() || !c.DateTo.IsZero() {
		t, ok := rec.ParseRegDate()
		if !ok {
			return false
		}
		day := t.Truncate(24 * time.Hour)
		if !c.DateFrom.IsZero() && day.Before(c.DateFrom.Truncate(24*time.Hour)) {
			return false
		}
		if !c.DateTo.IsZero() && day.After(c.DateTo.Truncate(24*time.Hour)) {
			return false
		}
	}
	return true
}

// Filter 按条件过滤意见行，保持输入顺序。
func Filter(recs []model.OpinionRecord, c Criteria) []model.OpinionRecord {
	out := make([]model.OpinionRecord, 0, len(recs))
	for _, r := range recs {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// quarterMonths 各季度的起止月份（两位数字符串）。
var quarterMonths = map[string][2]string{
	"Q1": {"01", "03"},
	"Q2": {"04", "06"},
	"Q3": {"07", "09"},
	"Q4": {"10", "12"},
}

// QuarterRange 把 年+季度 翻译成 webhook 检索要求的 YYYYMM 起止串。
// quarter 取 "1"~"4" 或 "Q1"~"Q4"（大小写不敏感），返回如 ("202501", "202503")。
func QuarterRange(year int, quarter string) (sDate, eDate string, err error) {
	q := strings.ToUpper(strings.TrimSpace(quarter))
	if len(q) == 1 && q >= "1" && q <= "4" {
		q = "Q" + q
	}
	m, ok := quarterMonths[q]
	if !ok {
		return "", "", fmt.Errorf("invalid quarter %q", quarter)
	}
	if year < 2000 || year > 2100 {
		return "", "", fmt.Errorf("invalid year %d", year)
	}
	return fmt.Sprintf("%d%s", year, m[0]), fmt.Sprintf("%d%s", year, m[1]), nil
}

// CurrentQuarter 返回某个时间点所在的 年+季度，用于检索默认值。
func CurrentQuarter(t time.Time) (year int, quarter string) {
	q := (int(t.Month())-1)/3 + 1
	return t.Year(), fmt.Sprintf("Q%d", q)
}
