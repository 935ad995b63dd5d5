package model

// Status 是意见的生命周期状态。
// 内部使用英文状态码；数据库与 Webhook 中存放的是韩文标签，两者通过本文件互转。
type Status string

const (
	// StatusSubmitted 新提交，等待管理员处理（"대기"）。
	StatusSubmitted Status = "submitted"
	// StatusInReview 管理员处理中（"처리중"）。
	StatusInReview Status = "in_review"
	// StatusRejected 已驳回（"반려"）。实际意义上的终态。
	StatusRejected Status = "rejected"
	// StatusActioned 处理完成（"처리완료"）。实际意义上的终态。
	StatusActioned Status = "actioned"
	// StatusDeferred 暂缓（"보류"）。
	StatusDeferred Status = "deferred"
)

// 韩文标签常量。聚合、过滤、导出都以这些字面值为准。
const (
	LabelSubmitted = "대기"
	LabelInReview  = "처리중"
	LabelRejected  = "반려"
	LabelActioned  = "처리완료"
	LabelDeferred  = "보류"
	// LabelBlinded 是被屏蔽意见在列表中展示的状态替身。
	LabelBlinded = "비공개"
)

var statusLabels = map[Status]string{
	StatusSubmitted: LabelSubmitted,
	StatusInReview:  LabelInReview,
	StatusRejected:  LabelRejected,
	StatusActioned:  LabelActioned,
	StatusDeferred:  LabelDeferred,
}

// labelAliases 兼容历史数据中出现过的旧标签写法。
var labelAliases = map[string]Status{
	LabelSubmitted: StatusSubmitted,
	"신규등록":         StatusSubmitted,
	"접수":           StatusSubmitted,
	LabelInReview:  StatusInReview,
	"검토중":          StatusInReview,
	LabelRejected:  StatusRejected,
	LabelActioned:  StatusActioned,
	"완료":           StatusActioned,
	"답변완료":         StatusActioned,
	LabelDeferred:  StatusDeferred,
}

// Label 返回状态的韩文标签；未知状态返回空串。
func (s Status) Label() string {
	return statusLabels[s]
}

// Valid 判断是否为五个已定义状态之一。
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal 判断是否为实际意义上的终态（처리완료/반려）。
// UI 不会再要求后续流转，但也不从技术上禁止管理员改回其他状态。
func (s Status) IsTerminal() bool {
	return s == StatusActioned || s == StatusRejected
}

// StatusFromLabel 把韩文标签（含历史别名）解析为内部状态码。
// 无法识别的标签返回 false，调用方自行决定兜底行为。
func StatusFromLabel(label string) (Status, bool) {
	s, ok := labelAliases[label]
	return s, ok
}

// StatusLabel 把数据库里存储的状态字符串规范化成标准韩文标签。
// 存储值可能是韩文标签（含历史别名）也可能是内部状态码，无法识别时原样返回。
func StatusLabel(raw string) string {
	if s, ok := StatusFromLabel(raw); ok {
		return s.Label()
	}
	if s := Status(raw); s.Valid() {
		return s.Label()
	}
	return raw
}

// CanTransition 判断管理员是否允许把意见从 from 流转到 to。
// 规则：目标必须是已定义状态；任何起点都允许（终态也不技术性封锁）。
func CanTransition(from, to Status) bool {
	return to.Valid()
}

// ProcessingVisibleToSubmitter 判断普通用户是否可以看到处理结果区块。
// 只有 반려/처리완료 两种状态下才把 status + proc_desc 开放给提交人，
// 其余状态下处理区块整体不渲染（不是留空，而是不出现）。
func ProcessingVisibleToSubmitter(label string) bool {
	s, ok := StatusFromLabel(label)
	if !ok {
		return false
	}
	return s == StatusRejected || s == StatusActioned
}
