package card

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- API响应模型 ---

type CardResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	NameEN   string         `json:"name_en"`
	Arcana   string         `json:"arcana"`
	Suit     string         `json:"suit,omitempty"`
	ImageURL string         `json:"imageUrl"`
	Upright  MeaningVariant `json:"upright"`
	Reversed MeaningVariant `json:"reversed"`
}

// formatCard 将内存中的卡牌信息格式化为API响应
func formatCard(info Info, c *gin.Context) CardResponse {
	imageURL := fmt.Sprintf("http://%s/images/cards/%s", c.Request.Host, info.Image)
	return CardResponse{
		ID:       info.CardID,
		Name:     info.Name,
		NameEN:   info.NameEN,
		Arcana:   info.Arcana,
		Suit:     info.Suit,
		ImageURL: imageURL,
		Upright:  info.Upright,
		Reversed: info.Reversed,
	}
}

// GetAllCards 返回完整的卡牌目录
func GetAllCards(c *gin.Context) {
	infos := AllCardInfos()
	response := make([]CardResponse, len(infos))
	for i, info := range infos {
		response[i] = formatCard(info, c)
	}
	c.JSON(http.StatusOK, response)
}

// GetCardByID 按ID返回单张卡牌
func GetCardByID(c *gin.Context) {
	id := c.Param("id")
	info, ok := GetCardInfoByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrCardNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, formatCard(info, c))
}
