package reading

import (
	"github.com/SlpAus/tarot-reading-backend/internal/card"
	"github.com/SlpAus/tarot-reading-backend/internal/spread"
)

// RNG 抽象随机数来源，便于在测试中注入确定性的序列。
type RNG interface {
	// Intn 返回 [0, n) 内的非负随机整数
	Intn(n int) int
	// Float64 返回 [0.0, 1.0) 内的随机浮点数
	Float64() float64
}

// DrawCards 从目录中为一个牌阵抽牌。
// 对目录做一次完整的随机置换后截取前N张，因此抽出的牌必然互不相同；
// 目录不足N张时返回ErrInsufficientCatalog，不做部分抽取。
// 每张牌的正逆位独立判定：allowReversed为false时全部正位，
// 否则以reversalProbability的概率逆位。全正位和全逆位都是合法结果。
// 目录是只读输入，本函数除返回新序列外没有任何副作用。
func DrawCards(catalog []card.Info, tpl spread.Template, allowReversed bool, reversalProbability float64, rng RNG) ([]DrawnCard, error) {
	if len(catalog) < tpl.Count {
		return nil, ErrInsufficientCatalog
	}

	// Fisher-Yates 洗牌，置换的是下标而不是目录本身
	indices := make([]int, len(catalog))
	for i := range indices {
		indices[i] = i
	}
	for i := len(indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}

	drawn := make([]DrawnCard, tpl.Count)
	for i := 0; i < tpl.Count; i++ {
		reversed := allowReversed && rng.Float64() < reversalProbability
		drawn[i] = DrawnCard{
			Card:          catalog[indices[i]],
			Reversed:      reversed,
			Position:      i,
			PositionLabel: tpl.Positions[i],
		}
	}

	return drawn, nil
}
