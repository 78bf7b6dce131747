package card

import "gorm.io/gorm"

// Card 定义了数据库中塔罗牌的数据结构
type Card struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// CardID 是卡牌的唯一字符串ID, 例如 "major_00"
	// 我们将使用它作为业务逻辑中的主键
	CardID string `gorm:"uniqueIndex;not null" json:"id"`

	// Name 是卡牌的中文名称, 例如 "愚者"
	Name string `json:"name"`

	// NameEN 是卡牌的英文名称, 例如 "The Fool"
	NameEN string `json:"name_en"`

	// Arcana 是卡牌的大类: "major" 或 "minor"
	Arcana string `json:"arcana"`

	// Suit 是小阿卡纳的花色（权杖/圣杯/宝剑/星币），大阿卡纳为空
	Suit string `json:"suit"`

	// Image 是指向卡面图片的相对路径, 例如 "cards/major_00.png"
	Image string `json:"image"`

	// --- 正位含义 ---

	// UprightMeaning 是正位的一句话核心释义
	UprightMeaning string `json:"upright_meaning"`

	// UprightMeaningLong 是正位的详细解说，可以为空
	UprightMeaningLong string `json:"upright_meaning_long"`

	// UprightKeywords 是正位关键词列表的JSON序列化，保持原始顺序
	UprightKeywords string `json:"upright_keywords"`

	// --- 逆位含义 ---

	ReversedMeaning     string `json:"reversed_meaning"`
	ReversedMeaningLong string `json:"reversed_meaning_long"`
	ReversedKeywords    string `json:"reversed_keywords"`
}

// ArcanaMajor 是大阿卡纳在Arcana字段中的取值
const ArcanaMajor = "major"

// MeaningVariant 是一个方向（正位或逆位）的完整含义。
// 不变量: Meaning 和 Keywords 均非空，由导入时的校验保证。
type MeaningVariant struct {
	Meaning     string   `json:"meaning"`
	MeaningLong string   `json:"meaning_long,omitempty"`
	Keywords    []string `json:"keywords"`
}

// Text 按需返回长释义，长释义缺失时回退到核心释义
func (m MeaningVariant) Text(useLong bool) string {
	if useLong && m.MeaningLong != "" {
		return m.MeaningLong
	}
	return m.Meaning
}
