package reading

import (
	"fmt"
	"strings"
	"time"

	"github.com/SlpAus/tarot-reading-backend/internal/augment"
	"github.com/SlpAus/tarot-reading-backend/internal/spread"
)

// Merge 把本地解读与AI解读结果合并为最终文本。
// result为nil时，最终文本就是本地解读，末尾附一条说明缺席原因的短注——
// 未启用、配额用尽、远端失败要区分开，让用户知道发生了什么。
// result存在时，在对应卡牌块之后插入该位置的评述（没有评述的位置
// 直接跳过，不视为错误），并在末尾追加总评块。
// 合并从不改动本地解读的逐卡内容，只做插入和追加。
func Merge(tpl spread.Template, cards []DrawnCard, useLongText bool, result *augment.Result, state AugmentState, resetTime time.Time) string {
	parts := synthesizeParts(tpl, cards, useLongText)

	if result == nil {
		return parts.join() + "\n\n" + absenceNote(state, resetTime)
	}

	merged := make([]string, 0, len(parts.cardBlocks)+3)
	merged = append(merged, parts.head)
	for i, block := range parts.cardBlocks {
		if comment, ok := result.CommentFor(i); ok {
			block = block + "\n▷ 解读者补充: " + comment.Message
		}
		merged = append(merged, block)
	}
	merged = append(merged, parts.tail)
	merged = append(merged, renderOverall(result.OverallComment))

	return strings.Join(merged, "\n\n")
}

// absenceNote 生成AI解读缺席时的说明短注
func absenceNote(state AugmentState, resetTime time.Time) string {
	switch state {
	case AugmentNotRequested:
		return "（本次解读未启用AI补充评述。）"
	case AugmentQuotaExceeded:
		return fmt.Sprintf("（今日的AI解读次数已用完，以上为本地解读。配额将于 %s 重置。）",
			resetTime.Format("2006-01-02 15:04 UTC"))
	case AugmentPending:
		return "（AI补充评述尚未完成，以上为本地解读。）"
	default:
		// AugmentFailed 以及任何意外状态都落到中性的失败说明
		return "（AI补充评述暂时不可用，以上为完整的本地解读。）"
	}
}

// renderOverall 生成AI总评块
func renderOverall(overall augment.OverallComment) string {
	var b strings.Builder
	b.WriteString("【AI解读者总评】\n")
	fmt.Fprintf(&b, "整体流向: %s\n", overall.Summary)
	fmt.Fprintf(&b, "建议: %s\n", overall.Advice)
	b.WriteString(overall.Closing)
	return b.String()
}
