package card

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
)

// ErrCardNotFound 表示按ID找不到卡牌
var ErrCardNotFound = errors.New("找不到卡牌")

// Info 持有卡牌的静态数据，在程序启动时加载到内存中，之后只读。
// 抽牌引擎和解读生成器都直接消费这个结构，不再接触数据库。
type Info struct {
	CardID   string
	Name     string
	NameEN   string
	Arcana   string
	Suit     string
	Image    string
	Upright  MeaningVariant
	Reversed MeaningVariant
}

// Variant 按方向返回对应的含义
func (i Info) Variant(reversed bool) MeaningVariant {
	if reversed {
		return i.Reversed
	}
	return i.Upright
}

// repository 是card模块的中央数据仓库
type repository struct {
	// 内存中的静态数据，启动后只读
	idToIndex   map[string]int
	indexToInfo []Info
}

// globalRepository 是仓库的私有单例实例
var globalRepository *repository

// InitializeRepository 从SQLite加载卡牌静态数据，初始化内存仓库。
// 这个函数应该在应用启动时且仅调用一次。
func InitializeRepository() error {
	var cardsFromDB []Card
	if err := database.DB.Order("id asc").Find(&cardsFromDB).Error; err != nil {
		return fmt.Errorf("无法从SQLite加载卡牌静态数据: %w", err)
	}

	size := len(cardsFromDB)
	if size == 0 {
		return fmt.Errorf("卡牌静态数据为空，无法初始化仓库")
	}

	repo := &repository{
		idToIndex:   make(map[string]int, size),
		indexToInfo: make([]Info, size),
	}

	for i, c := range cardsFromDB {
		info, err := toInfo(c)
		if err != nil {
			return err
		}
		repo.idToIndex[c.CardID] = i
		repo.indexToInfo[i] = info
	}

	globalRepository = repo
	fmt.Printf("卡牌仓库 (Repository) 初始化成功，加载了 %d 张卡牌。\n", size)
	return nil
}

// toInfo 将数据库记录还原为内存结构
func toInfo(c Card) (Info, error) {
	var upKeywords, revKeywords []string
	if err := json.Unmarshal([]byte(c.UprightKeywords), &upKeywords); err != nil {
		return Info{}, fmt.Errorf("卡牌 %s 的正位关键词数据损坏: %w", c.CardID, err)
	}
	if err := json.Unmarshal([]byte(c.ReversedKeywords), &revKeywords); err != nil {
		return Info{}, fmt.Errorf("卡牌 %s 的逆位关键词数据损坏: %w", c.CardID, err)
	}

	return Info{
		CardID: c.CardID,
		Name:   c.Name,
		NameEN: c.NameEN,
		Arcana: c.Arcana,
		Suit:   c.Suit,
		Image:  c.Image,
		Upright: MeaningVariant{
			Meaning:     c.UprightMeaning,
			MeaningLong: c.UprightMeaningLong,
			Keywords:    upKeywords,
		},
		Reversed: MeaningVariant{
			Meaning:     c.ReversedMeaning,
			MeaningLong: c.ReversedMeaningLong,
			Keywords:    revKeywords,
		},
	}, nil
}

// --- Public Methods for Data Access ---
// 这些方法是线程安全的，因为它们访问的是启动后只读的数据。

// GetCardCount 返回目录中的卡牌总数
func GetCardCount() int {
	if globalRepository == nil {
		return 0
	}
	return len(globalRepository.indexToInfo)
}

// GetCardInfoByIndex 按内存索引取卡牌
func GetCardInfoByIndex(index int) (Info, bool) {
	if globalRepository == nil || index < 0 || index >= len(globalRepository.indexToInfo) {
		return Info{}, false
	}
	return globalRepository.indexToInfo[index], true
}

// GetCardInfoByID 按业务ID取卡牌
func GetCardInfoByID(id string) (Info, bool) {
	if globalRepository == nil {
		return Info{}, false
	}
	index, ok := globalRepository.idToIndex[id]
	if !ok {
		return Info{}, false
	}
	return globalRepository.indexToInfo[index], true
}

// AllCardInfos 返回全部卡牌的只读视图（调用方不得修改）
func AllCardInfos() []Info {
	if globalRepository == nil {
		return nil
	}
	return globalRepository.indexToInfo
}
