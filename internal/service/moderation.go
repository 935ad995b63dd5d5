package service

import "openmind/internal/model"

// 内容审核门（Moderation Gate）。
// 上游 AI 工作流在意见落库时已经写入 negative_score（0~5 的整数），
// 本服务只负责根据分数做统一的遮蔽判定和脱敏，不重新跑 AI 分析。
//
// 遮蔽规则：
//  1. negative_score >= BlindThreshold 的意见视为"被遮蔽"（blinded）
//  2. 被遮蔽的意见在列表/搜索/导出中：标题和正文替换为固定提示文案，
//     作者替换为"익명"（匿名），状态标签显示"비공개"（非公开）
//  3. 被遮蔽的意见不允许查看详情（由 OpinionService 拦截）
//
// 所有读出口（列表、搜索、详情、导出、统计最近动态）必须走同一套判定，
// 避免某个出口漏掉脱敏。

const (
	// BlindThreshold 负面分数达到该值即遮蔽
	BlindThreshold = 3

	// AnonymousName 被遮蔽意见对外展示的作者名（韩语"匿名"）
	AnonymousName = "익명"

	// BlindNotice 被遮蔽意见的标题/正文统一替换文案
	BlindNotice = "AI 자동 분석 결과, 부적절한 내용이 감지되어 비공개 처리 되었습니다."
)

// IsBlinded 判定某条意见是否被遮蔽。
func IsBlinded(negativeScore int) bool {
	return negativeScore >= BlindThreshold
}

// RedactRecord 对 webhook 返回的意见行做脱敏（原地修改副本并返回）。
// 未被遮蔽的行原样返回。
func RedactRecord(rec model.OpinionRecord) model.OpinionRecord {
	if !IsBlinded(rec.NegativeScore) {
		return rec
	}
	rec.Name = AnonymousName
	rec.Title = BlindNotice
	rec.Asis = BlindNotice
	rec.Tobe = ""
	rec.Effect = ""
	rec.CaseStudy = ""
	rec.Status = model.LabelBlinded
	// 处理记录同样不对外暴露
	rec.ProcID = ""
	rec.ProcName = ""
	rec.ProcDesc = ""
	return rec
}

// RedactRecords 批量脱敏。
func RedactRecords(recs []model.OpinionRecord) []model.OpinionRecord {
	out := make([]model.OpinionRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, RedactRecord(r))
	}
	return out
}
