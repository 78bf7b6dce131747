package reading

import (
	"strings"
	"testing"

	"github.com/SlpAus/tarot-reading-backend/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeCardFixture 构造一组含义和方向完全已知的三张牌
func threeCardFixture(t *testing.T) []DrawnCard {
	t.Helper()
	tpl := mustTemplate(t, "3")

	infos := []card.Info{
		{
			CardID: "major_00", Name: "愚者", NameEN: "The Fool", Arcana: card.ArcanaMajor,
			Upright:  card.MeaningVariant{Meaning: "新的开始正在召唤。", Keywords: []string{"开端", "自由", "冒险"}},
			Reversed: card.MeaningVariant{Meaning: "鲁莽让你偏离方向。", Keywords: []string{"鲁莽", "犹豫"}},
		},
		{
			CardID: "major_01", Name: "魔术师", NameEN: "The Magician", Arcana: card.ArcanaMajor,
			Upright:  card.MeaningVariant{Meaning: "资源已在你手中。", Keywords: []string{"创造", "开端", "意志"}},
			Reversed: card.MeaningVariant{Meaning: "能力被分散消耗。", Keywords: []string{"拖延", "分心"}},
		},
		{
			CardID: "major_02", Name: "女祭司", NameEN: "The High Priestess", Arcana: card.ArcanaMajor,
			Upright:  card.MeaningVariant{Meaning: "答案藏在直觉里。", Keywords: []string{"直觉", "沉静"}},
			Reversed: card.MeaningVariant{Meaning: "内心的声音被噪音盖过。", Keywords: []string{"失衡", "开端"}},
		},
	}

	drawn := make([]DrawnCard, 3)
	for i, info := range infos {
		drawn[i] = DrawnCard{
			Card:          info,
			Reversed:      i == 2, // 只有第三张逆位
			Position:      i,
			PositionLabel: tpl.Positions[i],
		}
	}
	return drawn
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	tpl := mustTemplate(t, "3")
	cards := threeCardFixture(t)

	first := Synthesize(tpl, cards, false)
	second := Synthesize(tpl, cards, false)
	assert.Equal(t, first, second, "相同输入必须产生逐字节相同的输出")
}

func TestSynthesizeBlockOrderAndContent(t *testing.T) {
	tpl := mustTemplate(t, "3")
	cards := threeCardFixture(t)

	text := Synthesize(tpl, cards, false)

	// 各块按固定顺序出现
	markers := []string{
		"【过去·现在·未来（3张）·综合解读】",
		"1. 过去 — 愚者（The Fool）· 正位",
		"2. 现在 — 魔术师（The Magician）· 正位",
		"3. 未来 — 女祭司（The High Priestess）· 逆位",
		"【整体流向】",
		"【要点汇总】",
		"【解读的结论】",
		"【三个行动建议】",
		"塔罗不断言未来。",
	}
	last := -1
	for _, marker := range markers {
		idx := strings.Index(text, marker)
		require.GreaterOrEqual(t, idx, 0, "缺少文本块: %s", marker)
		assert.Greater(t, idx, last, "文本块顺序错误: %s", marker)
		last = idx
	}

	// 逆位的牌使用逆位含义，正位的牌使用正位含义
	assert.Contains(t, text, "新的开始正在召唤。")
	assert.Contains(t, text, "内心的声音被噪音盖过。")
	assert.NotContains(t, text, "答案藏在直觉里。")

	// 三牌阵的结论按位置逐条展开
	assert.Contains(t, text, "- 过去（愚者）")
	assert.Contains(t, text, "- 现在（魔术师）")
	assert.Contains(t, text, "- 未来（女祭司）")
}

func TestSynthesizeToneByComposition(t *testing.T) {
	tpl := mustTemplate(t, "3")

	// 全部大阿卡纳且一张逆位：触发大阿卡纳基调，不触发逆位基调
	cards := threeCardFixture(t)
	text := Synthesize(tpl, cards, false)
	assert.Contains(t, text, "大阿卡纳占比很高")
	assert.NotContains(t, text, "逆位较多")

	// 小阿卡纳全正位：两种基调都不触发，落入平稳基调
	for i := range cards {
		cards[i].Card.Arcana = "minor"
		cards[i].Reversed = false
	}
	text = Synthesize(tpl, cards, false)
	assert.Contains(t, text, "牌面整体平稳")

	// 过半逆位：触发逆位基调
	cards[0].Reversed = true
	cards[1].Reversed = true
	text = Synthesize(tpl, cards, false)
	assert.Contains(t, text, "逆位较多")
}

func TestTopKeywordsRankingAndTieBreak(t *testing.T) {
	keywords := []string{"开端", "信任", "开端", "冒险", "信任", "开端", "沉静"}

	// 频次降序：开端(3) > 信任(2) > 冒险(1)、沉静(1)按首次出现顺序
	assert.Equal(t, []string{"开端", "信任", "冒险", "沉静"}, topKeywords(keywords, 6))
	assert.Equal(t, []string{"开端", "信任"}, topKeywords(keywords, 2))

	// 全部同频时保持首次出现顺序
	assert.Equal(t, []string{"b", "a", "c"}, topKeywords([]string{"b", "a", "c"}, 3))

	// 空白关键词被忽略
	assert.Equal(t, []string{"x"}, topKeywords([]string{" ", "x", ""}, 3))
}

func TestSynthesizeKeywordAggregation(t *testing.T) {
	tpl := mustTemplate(t, "3")
	cards := threeCardFixture(t)

	text := Synthesize(tpl, cards, false)

	// "开端"出现3次（两张正位+一张逆位的关键词里都有），应当排在核心关键词首位
	idx := strings.Index(text, "- 核心关键词: 开端")
	assert.GreaterOrEqual(t, idx, 0)

	// 只有第三张逆位，其关键词进入逆位要点
	assert.Contains(t, text, "- 注意（逆位）要点: 失衡 · 开端")
}
