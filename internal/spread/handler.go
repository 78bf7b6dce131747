package spread

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type TemplateResponse struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	CardCount int      `json:"card_count"`
	Positions []string `json:"positions"`
}

// GetAllSpreads 返回全部可用的牌阵模板
func GetAllSpreads(c *gin.Context) {
	templates := ListTemplates()
	response := make([]TemplateResponse, len(templates))
	for i, tpl := range templates {
		response[i] = TemplateResponse{
			Code:      tpl.Code,
			Name:      tpl.Name,
			CardCount: tpl.Count,
			Positions: tpl.Positions,
		}
	}
	c.JSON(http.StatusOK, response)
}
