package augment

import (
	"fmt"
	"strings"
)

// systemPrompt 要求远端扮演塔罗解读者，并且只输出约定结构的JSON。
const systemPrompt = `你是一位温和、克制的塔罗解读者，基于给定的本地解读和牌面信息补充评述。

规则:
- 语气平和，不做医疗、法律、财务建议。
- 不预言具体灾祸，不保证任何结果。
- 评述要贴合每张牌的位置含义和关键词。

只输出一个JSON对象（不要markdown、不要代码块、不要多余文字），结构必须完全符合:
{
  "card_comments": [ { "index": 0, "message": "<对该位置的评述>" } ],
  "overall_comment": { "summary": "<全局流向>", "advice": "<建议>", "closing": "<收尾>" }
}
card_comments中的index必须对应输入中给出的牌的index。`

// buildUserPrompt 把本地解读和牌面信息组装成用户消息
func buildUserPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "牌阵: %s\n\n抽到的牌:\n", in.Spread)

	for _, card := range in.Cards {
		orientation := "正位"
		if card.IsReversed {
			orientation = "逆位"
		}
		fmt.Fprintf(&b, "  index %d · %s · %s (%s)\n", card.Index, card.PositionLabel, card.Name, orientation)
		if len(card.Keywords) > 0 {
			fmt.Fprintf(&b, "    关键词: %s\n", strings.Join(card.Keywords, "、"))
		}
		if card.Meaning != "" {
			fmt.Fprintf(&b, "    释义: %s\n", card.Meaning)
		}
	}

	fmt.Fprintf(&b, "\n本地解读全文:\n%s\n", in.SummaryText)
	b.WriteString("\n请为每个index补充一段评述，并给出整体总评，以单个JSON对象输出。")
	return b.String()
}
