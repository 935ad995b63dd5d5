package service

import (
	"fmt"
	"sort"
	"time"

	"openmind/internal/model"
)

// 仪表盘统计的纯计算部分。
// 输入是数据库读出的意见全量 + 分类/系列社字典，输出一个可直接序列化的快照。
// 计算全部在内存完成，幂等：同样的输入永远得到同样的输出（GeneratedAt 除外）。

// FallbackBucket 分类/系列社无法解析时落入的兜底桶（韩语"其他"）。
const FallbackBucket = "기타"

// NameCount 单维度计数项。
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CompanyStat 系列社参与统计，Percent 是相对最大值的百分比。
type CompanyStat struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// Activity 最近动态条目（已脱敏）。
type Activity struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Time     string `json:"time"`
	Blinded  bool   `json:"blinded"`
}

// DashboardStats 仪表盘快照。
type DashboardStats struct {
	TotalCount        int           `json:"total_count"`
	ParticipantCount  int           `json:"participant_count"`
	ProcessedCount    int           `json:"processed_count"`
	ParticipationRate int           `json:"participation_rate"`
	ProcessingRate    int           `json:"processing_rate"`
	CategoryStats     []NameCount   `json:"category_stats"`
	CompanyStats      []CompanyStat `json:"company_stats"`
	RecentActivities  []Activity    `json:"recent_activities"`
	GeneratedAt       time.Time     `json:"generated_at"`
}

// floorPercent 向下取整的百分比，分母为 0 时返回 0。
func floorPercent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return part * 100 / whole
}

// formatKoreanShort 按仪表盘的韩语短格式输出时间，如 "1월 15일 14:30"。
func formatKoreanShort(t time.Time) string {
	return fmt.Sprintf("%d월 %d일 %02d:%02d", int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

// Aggregate 对意见全量做一次仪表盘统计。
// 规则：
//  1. 参与人数 = 去重后的非空 user_id 个数
//  2. 处理完成数 = 状态标签为"처리완료"的条数
//  3. 参与率 = floor(参与人数 / population * 100)，population 来自配置
//  4. 处理率 = floor(处理完成数 / 总数 * 100)
//  5. 分类/系列社外键解析不到字典时计入"기타"
//  6. 系列社百分比以计数最大的系列社为 100% 基准
//  7. 最近动态取 reg_date 倒序前 recentLimit 条，内容过审核门脱敏
func Aggregate(opinions []model.Opinion, categories []model.Category, companies []model.CompanyAffiliate, users []model.User, population, recentLimit int) *DashboardStats {
	catName := make(map[string]string, len(categories))
	for _, c := range categories {
		catName[c.ID] = c.Name
	}
	companyName := make(map[string]string, len(companies))
	for _, c := range companies {
		companyName[c.ID] = c.Name
	}
	userName := make(map[string]string, len(users))
	for _, u := range users {
		userName[u.ID] = u.Name
	}

	stats := &DashboardStats{
		TotalCount:  len(opinions),
		GeneratedAt: time.Now(),
	}

	participants := make(map[string]struct{})
	catCount := make(map[string]int)
	companyCount := make(map[string]int)

	for _, op := range opinions {
		if op.UserID != nil && *op.UserID != "" {
			participants[*op.UserID] = struct{}{}
		}
		if model.StatusLabel(op.Status) == model.LabelActioned {
			stats.ProcessedCount++
		}

		cat := FallbackBucket
		if op.CategoryID != nil {
			if name, ok := catName[*op.CategoryID]; ok {
				cat = name
			}
		}
		catCount[cat]++

		comp := FallbackBucket
		if op.CompanyID != nil {
			if name, ok := companyName[*op.CompanyID]; ok {
				comp = name
			}
		}
		companyCount[comp]++
	}

	stats.ParticipantCount = len(participants)
	stats.ParticipationRate = floorPercent(stats.ParticipantCount, population)
	stats.ProcessingRate = floorPercent(stats.ProcessedCount, stats.TotalCount)

	// 分类统计按字典顺序输出，保证快照稳定；兜底桶排最后。
	// 字典里的重名条目和叫 "기타" 的条目要跳过，避免同一个桶输出两次。
	emittedCat := map[string]bool{FallbackBucket: true}
	for _, c := range categories {
		if emittedCat[c.Name] {
			continue
		}
		if n := catCount[c.Name]; n > 0 {
			stats.CategoryStats = append(stats.CategoryStats, NameCount{Name: c.Name, Count: n})
			emittedCat[c.Name] = true
		}
	}
	if n := catCount[FallbackBucket]; n > 0 {
		stats.CategoryStats = append(stats.CategoryStats, NameCount{Name: FallbackBucket, Count: n})
	}

	maxCompany := 0
	for _, n := range companyCount {
		if n > maxCompany {
			maxCompany = n
		}
	}
	emittedComp := map[string]bool{FallbackBucket: true}
	for _, c := range companies {
		if emittedComp[c.Name] {
			continue
		}
		if n := companyCount[c.Name]; n > 0 {
			stats.CompanyStats = append(stats.CompanyStats, CompanyStat{
				Name:    c.Name,
				Count:   n,
				Percent: floorPercent(n, maxCompany),
			})
			emittedComp[c.Name] = true
		}
	}
	if n := companyCount[FallbackBucket]; n > 0 {
		stats.CompanyStats = append(stats.CompanyStats, CompanyStat{
			Name:    FallbackBucket,
			Count:   n,
			Percent: floorPercent(n, maxCompany),
		})
	}

	stats.RecentActivities = recentActivities(opinions, catName, userName, recentLimit)
	return stats
}

// recentActivities 取 reg_date 倒序前 limit 条并脱敏。
func recentActivities(opinions []model.Opinion, catName, userName map[string]string, limit int) []Activity {
	sorted := make([]model.Opinion, len(opinions))
	copy(sorted, opinions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RegDate.After(sorted[j].RegDate)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	acts := make([]Activity, 0, len(sorted))
	for _, op := range sorted {
		a := Activity{
			Category: FallbackBucket,
			Status:   model.StatusLabel(op.Status),
			Time:     formatKoreanShort(op.RegDate),
		}
		if op.CategoryID != nil {
			if name, ok := catName[*op.CategoryID]; ok {
				a.Category = name
			}
		}
		if op.UserID != nil {
			a.Author = userName[*op.UserID]
		}
		if IsBlinded(op.NegativeScore) {
			a.Blinded = true
			a.Title = BlindNotice
			a.Author = AnonymousName
			a.Status = model.LabelBlinded
		} else {
			a.Title = op.Title
		}
		acts = append(acts, a)
	}
	return acts
}
