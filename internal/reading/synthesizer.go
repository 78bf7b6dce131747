package reading

import (
	"fmt"
	"strings"

	"github.com/SlpAus/tarot-reading-backend/internal/card"
	"github.com/SlpAus/tarot-reading-backend/internal/spread"
)

// 关键词聚合的取量：全体取前6个，逆位单独取前4个
const (
	topKeywordCount         = 6
	topReversedKeywordCount = 4
	cardBlockKeywordCount   = 4
)

// summaryParts 是本地解读的结构化形态。
// 合并器按块插入AI评述，因此卡牌块需要保持独立。
type summaryParts struct {
	head       string
	cardBlocks []string
	tail       string
}

// join 把各块拼接为最终文本，块之间以空行分隔
func (p summaryParts) join() string {
	sections := make([]string, 0, len(p.cardBlocks)+2)
	sections = append(sections, p.head)
	sections = append(sections, p.cardBlocks...)
	sections = append(sections, p.tail)
	return strings.Join(sections, "\n\n")
}

// Synthesize 由牌阵和翻开的牌合成本地解读全文。
// 纯函数：相同的输入（含useLongText开关）必然产生逐字节相同的输出，
// 函数内部没有任何随机性。
func Synthesize(tpl spread.Template, cards []DrawnCard, useLongText bool) string {
	return synthesizeParts(tpl, cards, useLongText).join()
}

// synthesizeParts 按固定顺序生成各个文本块：
// 标题、开场、逐张卡牌块、整体流向、要点汇总、结论、行动建议、免责声明。
func synthesizeParts(tpl spread.Template, cards []DrawnCard, useLongText bool) summaryParts {
	var head strings.Builder
	fmt.Fprintf(&head, "【%s·综合解读】\n\n", tpl.Name)
	head.WriteString("此刻展开的牌面彼此相连，构成一条完整的脉络。\n")
	head.WriteString("让我们按位置顺序，逐张读出它们带来的讯息。")

	cardBlocks := make([]string, len(cards))
	for i, c := range cards {
		cardBlocks[i] = renderCardBlock(i, c, useLongText)
	}

	return summaryParts{
		head:       head.String(),
		cardBlocks: cardBlocks,
		tail:       renderTail(tpl, cards),
	}
}

// renderCardBlock 生成单张卡牌的解读块
func renderCardBlock(index int, c DrawnCard, useLongText bool) string {
	variant := c.Variant()
	orientation := "正位"
	if c.Reversed {
		orientation = "逆位"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s — %s（%s）· %s\n", index+1, c.PositionLabel, c.Card.Name, c.Card.NameEN, orientation)

	keywords := variant.Keywords
	if len(keywords) > cardBlockKeywordCount {
		keywords = keywords[:cardBlockKeywordCount]
	}
	if len(keywords) > 0 {
		fmt.Fprintf(&b, "关键词: %s\n", strings.Join(keywords, "、"))
	}
	b.WriteString(variant.Text(useLongText))
	return b.String()
}

// renderTail 生成卡牌块之后的全部收尾内容
func renderTail(tpl spread.Template, cards []DrawnCard) string {
	var b strings.Builder

	// 1. 整体流向：按大阿卡纳占比和逆位占比选择基调
	majorCount, reversedCount := 0, 0
	for _, c := range cards {
		if c.Card.Arcana == card.ArcanaMajor {
			majorCount++
		}
		if c.Reversed {
			reversedCount++
		}
	}
	half := (len(cards) + 1) / 2

	b.WriteString("【整体流向】\n")
	toneWritten := false
	if majorCount >= half {
		b.WriteString("大阿卡纳占比很高，这段时期的主题带有明显的转折意味，分量超出日常琐事。\n")
		toneWritten = true
	}
	if reversedCount >= half {
		b.WriteString("逆位较多，牌面提醒你放慢节奏，先厘清阻力所在，再决定行动。\n")
		toneWritten = true
	}
	if !toneWritten {
		b.WriteString("牌面整体平稳，这更像一个在时间之中逐步展开的过程，当下的选择与态度将影响后续走向。\n")
	}

	// 2. 要点汇总：关键词频次聚合
	allKeywords := make([]string, 0, len(cards)*4)
	reversedKeywords := make([]string, 0, len(cards)*2)
	for _, c := range cards {
		kws := c.Variant().Keywords
		allKeywords = append(allKeywords, kws...)
		if c.Reversed {
			reversedKeywords = append(reversedKeywords, kws...)
		}
	}
	topAll := topKeywords(allKeywords, topKeywordCount)
	topReversed := topKeywords(reversedKeywords, topReversedKeywordCount)

	b.WriteString("\n【要点汇总】\n")
	if len(topAll) > 0 {
		fmt.Fprintf(&b, "- 核心关键词: %s\n", strings.Join(topAll, " · "))
	}
	if len(topReversed) > 0 {
		fmt.Fprintf(&b, "- 注意（逆位）要点: %s\n", strings.Join(topReversed, " · "))
	}

	// 3. 按牌阵结构给出结论
	b.WriteString("\n【解读的结论】\n")
	writeConclusion(&b, tpl, cards)

	// 4. 行动建议
	b.WriteString("\n【三个行动建议】\n")
	b.WriteString("1) 选定一件今天就能完成的最小行动，立刻去做。\n")
	b.WriteString("2) 逆位所指向的部分（急躁、不安、控制欲等），先降速再处理。\n")
	b.WriteString("3) 把目标拆成七天内可验证的小步，记录结果并复盘。\n")

	// 5. 免责声明
	b.WriteString("\n塔罗不断言未来。请把这次解读当作参考，做出最适合你的选择。")
	return b.String()
}

// writeConclusion 按牌阵代号写出结构化结论
func writeConclusion(b *strings.Builder, tpl spread.Template, cards []DrawnCard) {
	switch tpl.Code {
	case "3":
		fmt.Fprintf(b, "- 过去（%s）: 显示走到今天的铺垫与根基。\n", cards[0].Card.Name)
		fmt.Fprintf(b, "- 现在（%s）: 当下最核心的议题与能量。\n", cards[1].Card.Name)
		fmt.Fprintf(b, "- 未来（%s）: 保持现状时将要展开的方向。\n", cards[2].Card.Name)
	case "5":
		b.WriteString("- 按现状→阻碍→建议→结果→潜在影响的顺序，可以看到一条\"因与解\"的完整链条。\n")
	case "10":
		b.WriteString("- 凯尔特十字以现在/交叉/根源/过去/意识/未来/自我/环境/希望/结局的结构铺陈出全局图景。\n")
	default:
		b.WriteString("- 请把各位置的含义连起来读，留意相邻位置之间的呼应。\n")
	}
}

// topKeywords 按出现频次降序取前n个关键词。
// 频次相同时保持首次出现的先后顺序，保证结果的确定性。
func topKeywords(keywords []string, n int) []string {
	freq := make(map[string]int, len(keywords))
	order := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, seen := freq[kw]; !seen {
			order = append(order, kw)
		}
		freq[kw]++
	}

	// 对首次出现顺序做稳定的按频次排序（插入排序，规模很小）
	sorted := make([]string, len(order))
	copy(sorted, order)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && freq[sorted[j]] > freq[sorted[j-1]]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
