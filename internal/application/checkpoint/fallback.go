package checkpoint

// truncationMarker 追加在降级内容末尾，标记内容是原文截断而非生成结果
const truncationMarker = " …[truncated]"

const defaultFallbackRunes = 400

// FallbackContent 重试耗尽后的确定性降级内容：原文前缀截断加标记。
// 降级产物以 ProvenanceFallback 落库，读取方可与生成内容区分。
func FallbackContent(textSlice string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = defaultFallbackRunes
	}
	runes := []rune(textSlice)
	if len(runes) > maxRunes {
		runes = runes[:maxRunes]
	}
	return string(runes) + truncationMarker
}
