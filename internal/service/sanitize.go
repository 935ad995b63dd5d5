package service

import "strings"

// emoji 及其组合用修饰符的码位区间。
// 只清理明确的表情类区间，避免误伤韩文/汉字等正文字符。
var emojiRanges = [][2]rune{
	{0x1F000, 0x1F0FF}, // 麻将、骨牌、扑克
	{0x1F1E6, 0x1F1FF}, // 区域指示符（国旗）
	{0x1F300, 0x1FAFF}, // 各类表情、图形符号
	{0x2600, 0x27BF},   // 杂项符号、装饰符号
	{0x2B00, 0x2BFF},   // 箭头、星形
	{0xFE00, 0xFE0F},   // 变体选择符
	{0x200D, 0x200D},   // 零宽连接符
	{0x20E3, 0x20E3},   // 组合键帽
}

func isEmojiRune(r rune) bool {
	for _, rg := range emojiRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// stripEmoji 删除字符串里的 emoji 码位，其余字符原样保留。
func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isEmojiRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
