package spread

import "errors"

// ErrUnknownSpread 表示请求了一个不存在的牌阵
var ErrUnknownSpread = errors.New("未知的牌阵类型")

// Template 定义了一个牌阵：固定的抽牌数量和每个位置的含义标签。
// 不变量: len(Positions) == Count，由 init 中的校验保证。
type Template struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Count     int      `json:"count"`
	Positions []string `json:"positions"`
}

// registry 是全部可用牌阵的只读注册表，启动后不再变化
var registry = map[string]Template{
	"3": {
		Code:      "3",
		Name:      "过去·现在·未来（3张）",
		Count:     3,
		Positions: []string{"过去", "现在", "未来"},
	},
	"5": {
		Code:      "5",
		Name:      "五张牌解读",
		Count:     5,
		Positions: []string{"现状", "阻碍/课题", "建议", "结果", "潜在影响"},
	},
	"10": {
		Code:      "10",
		Name:      "凯尔特十字（10张）",
		Count:     10,
		Positions: []string{"现在", "阻碍/助力（交叉）", "根本原因", "过去", "意识/目标", "近未来", "自我态度", "环境/他人", "希望/恐惧", "结局"},
	},
}

// order 控制对外列出牌阵时的顺序
var order = []string{"3", "5", "10"}

func init() {
	for code, tpl := range registry {
		if len(tpl.Positions) != tpl.Count {
			panic("牌阵 " + code + " 的位置标签数量与牌数不一致")
		}
	}
}

// GetTemplate 按代号查找牌阵
func GetTemplate(code string) (Template, error) {
	tpl, ok := registry[code]
	if !ok {
		return Template{}, ErrUnknownSpread
	}
	return tpl, nil
}

// ListTemplates 按固定顺序返回全部牌阵
func ListTemplates() []Template {
	result := make([]Template, 0, len(order))
	for _, code := range order {
		result = append(result, registry[code])
	}
	return result
}
