package card

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
)

// rawVariant 对应卡牌目录JSON中一个方向的含义。
// 历史数据中 meaning / meaning_short / meaning_long 三个字段出现得并不一致，
// 这里在导入时统一收敛: 核心释义取 meaning_short，缺失则回退到 meaning；
// 详细解说只取 meaning_long。
type rawVariant struct {
	Keywords     []string `json:"keywords"`
	Meaning      string   `json:"meaning"`
	MeaningShort string   `json:"meaning_short"`
	MeaningLong  string   `json:"meaning_long"`
}

// rawCard 对应卡牌目录JSON中的一张牌
type rawCard struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	NameEN   string     `json:"name_en"`
	Arcana   string     `json:"arcana"`
	Suit     string     `json:"suit"`
	Image    string     `json:"image"`
	Upright  rawVariant `json:"upright"`
	Reversed rawVariant `json:"reversed"`
}

// resolve 将松散的原始字段收敛为规范的MeaningVariant
func (v rawVariant) resolve() MeaningVariant {
	meaning := v.MeaningShort
	if meaning == "" {
		meaning = v.Meaning
	}
	return MeaningVariant{
		Meaning:     meaning,
		MeaningLong: v.MeaningLong,
		Keywords:    v.Keywords,
	}
}

// validate 校验一张牌的完整性。每张牌必须同时具备非空的正位和逆位含义，
// 这个校验只在导入时做一次，之后的调用方可以信任目录数据。
func (c rawCard) validate() error {
	if c.ID == "" {
		return fmt.Errorf("存在缺少id的卡牌记录")
	}
	if c.Name == "" {
		return fmt.Errorf("卡牌 %s 缺少名称", c.ID)
	}
	for dir, v := range map[string]MeaningVariant{"正位": c.Upright.resolve(), "逆位": c.Reversed.resolve()} {
		if v.Meaning == "" {
			return fmt.Errorf("卡牌 %s 缺少%s释义", c.ID, dir)
		}
		if len(v.Keywords) == 0 {
			return fmt.Errorf("卡牌 %s 缺少%s关键词", c.ID, dir)
		}
	}
	return nil
}

// ImportCatalog 从JSON文件读取卡牌目录，校验后写入SQLite。
// 只在cards表为空时执行，已有数据时直接跳过。
func ImportCatalog(path string) error {
	var count int64
	if err := database.DB.Model(&Card{}).Count(&count).Error; err != nil {
		return fmt.Errorf("无法统计现有卡牌数量: %w", err)
	}
	if count > 0 {
		fmt.Printf("卡牌目录已存在（%d 张），跳过导入。\n", count)
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("无法读取卡牌目录文件 %s: %w", path, err)
	}

	var rawCards []rawCard
	if err := json.Unmarshal(raw, &rawCards); err != nil {
		return fmt.Errorf("卡牌目录JSON解析失败: %w", err)
	}
	if len(rawCards) == 0 {
		return fmt.Errorf("卡牌目录为空")
	}

	cards := make([]Card, 0, len(rawCards))
	seen := make(map[string]bool, len(rawCards))
	for _, rc := range rawCards {
		if err := rc.validate(); err != nil {
			return fmt.Errorf("卡牌目录校验失败: %w", err)
		}
		if seen[rc.ID] {
			return fmt.Errorf("卡牌目录中存在重复的id: %s", rc.ID)
		}
		seen[rc.ID] = true

		record, err := toRecord(rc)
		if err != nil {
			return err
		}
		cards = append(cards, record)
	}

	if err := database.DB.Create(&cards).Error; err != nil {
		return fmt.Errorf("无法将卡牌目录写入SQLite: %w", err)
	}

	fmt.Printf("成功导入 %d 张卡牌到SQLite。\n", len(cards))
	return nil
}

// toRecord 将校验后的原始卡牌转换为数据库记录
func toRecord(rc rawCard) (Card, error) {
	up := rc.Upright.resolve()
	rev := rc.Reversed.resolve()

	upKeywords, err := json.Marshal(up.Keywords)
	if err != nil {
		return Card{}, fmt.Errorf("卡牌 %s 的正位关键词无法序列化: %w", rc.ID, err)
	}
	revKeywords, err := json.Marshal(rev.Keywords)
	if err != nil {
		return Card{}, fmt.Errorf("卡牌 %s 的逆位关键词无法序列化: %w", rc.ID, err)
	}

	return Card{
		CardID:              rc.ID,
		Name:                rc.Name,
		NameEN:              rc.NameEN,
		Arcana:              rc.Arcana,
		Suit:                rc.Suit,
		Image:               rc.Image,
		UprightMeaning:      up.Meaning,
		UprightMeaningLong:  up.MeaningLong,
		UprightKeywords:     string(upKeywords),
		ReversedMeaning:     rev.Meaning,
		ReversedMeaningLong: rev.MeaningLong,
		ReversedKeywords:    string(revKeywords),
	}, nil
}
