package reading

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SlpAus/tarot-reading-backend/internal/quota"
	"github.com/gin-gonic/gin"
)

// defaultService 是handler层使用的服务单例，由setup注入
var defaultService *Service

// InitHandler 注入handler层依赖的服务实例
func InitHandler(svc *Service) {
	defaultService = svc
}

// --- API请求/响应模型 ---

type CreateReadingRequest struct {
	Spread           string `json:"spread" binding:"required"`
	AllowReversed    bool   `json:"allow_reversed"`
	UseLongText      bool   `json:"use_long_text"`
	AugmentRequested bool   `json:"augment"`
}

type CreateReadingResponse struct {
	ReadingID  string   `json:"reading_id"`
	Token      string   `json:"token"`
	Spread     string   `json:"spread"`
	SpreadName string   `json:"spread_name"`
	Positions  []string `json:"positions"`
	CardCount  int      `json:"card_count"`
}

type RevealRequest struct {
	Token    string `json:"token" binding:"required"`
	Position *int   `json:"position" binding:"required"`
}

// RevealedCardResponse 只携带本次生效方向的释义，
// 完整的正逆位数据走卡牌目录接口。
type RevealedCardResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	NameEN        string   `json:"name_en"`
	ImageURL      string   `json:"imageUrl"`
	IsReversed    bool     `json:"is_reversed"`
	Position      int      `json:"position"`
	PositionLabel string   `json:"position_label"`
	Keywords      []string `json:"keywords"`
	Meaning       string   `json:"meaning"`
}

type RevealResponse struct {
	Card          RevealedCardResponse `json:"card"`
	RevealedCount int                  `json:"revealed_count"`
	Completed     bool                 `json:"completed"`
	AugmentState  string               `json:"augment_state"`
	Summary       string               `json:"summary,omitempty"`
}

type SummaryResponse struct {
	ReadingID    string `json:"reading_id"`
	AugmentState string `json:"augment_state"`
	Summary      string `json:"summary"`
}

type AugmentRequest struct {
	Token string `json:"token" binding:"required"`
}

type UsageResponse struct {
	Limit     int    `json:"limit"`
	Used      int64  `json:"used"`
	Remaining int64  `json:"remaining"`
	ResetsAt  string `json:"resets_at"`
}

// formatRevealedCard 格式化一张已翻开的牌
func formatRevealedCard(d DrawnCard, useLongText bool, c *gin.Context) RevealedCardResponse {
	variant := d.Variant()
	imageURL := fmt.Sprintf("http://%s/images/cards/%s", c.Request.Host, d.Card.Image)
	return RevealedCardResponse{
		ID:            d.Card.CardID,
		Name:          d.Card.Name,
		NameEN:        d.Card.NameEN,
		ImageURL:      imageURL,
		IsReversed:    d.Reversed,
		Position:      d.Position,
		PositionLabel: d.PositionLabel,
		Keywords:      variant.Keywords,
		Meaning:       variant.Text(useLongText),
	}
}

// authorizeSession 按路径里的ID和请求携带的签名定位会话。
// 失败时直接写出响应并返回false。
func authorizeSession(c *gin.Context, signature string) (*Session, bool) {
	session, err := defaultService.AuthorizeSession(c.Param("id"), signature)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "找不到解读会话"})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": "会话签名无效"})
		}
		return nil, false
	}
	return session, true
}

// CreateReading 开始一次新的解读会话
func CreateReading(c *gin.Context) {
	var req CreateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	session, signature, err := defaultService.CreateReading(
		c.ClientIP(), req.Spread, req.AllowReversed, req.UseLongText, req.AugmentRequested)
	if err != nil {
		if errors.Is(err, ErrInsufficientCatalog) {
			// 目录装载不完整是部署问题，不是客户端问题
			c.JSON(http.StatusInternalServerError, gin.H{"error": "卡牌目录不完整，无法抽牌"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, CreateReadingResponse{
		ReadingID:  session.ID,
		Token:      signature,
		Spread:     session.Template.Code,
		SpreadName: session.Template.Name,
		Positions:  session.Template.Positions,
		CardCount:  len(session.Cards),
	})
}

// RevealCard 翻开一张牌，会话完成时附带最终解读文本
func RevealCard(c *gin.Context) {
	var req RevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	session, ok := authorizeSession(c, req.Token)
	if !ok {
		return
	}

	outcome, err := defaultService.RevealCard(c.Request.Context(), session, *req.Position)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := RevealResponse{
		Card:          formatRevealedCard(outcome.Card, session.UseLongText, c),
		RevealedCount: outcome.RevealedCount,
		Completed:     outcome.Completed,
		AugmentState:  string(session.AugmentState()),
	}
	if outcome.Completed {
		if summary, err := defaultService.FinalSummary(session); err == nil {
			response.Summary = summary
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetSummary 返回已完成会话的最终解读文本
func GetSummary(c *gin.Context) {
	session, ok := authorizeSession(c, c.Query("token"))
	if !ok {
		return
	}

	summary, err := defaultService.FinalSummary(session)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "还有未翻开的卡牌"})
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{
		ReadingID:    session.ID,
		AugmentState: string(session.AugmentState()),
		Summary:      summary,
	})
}

// TriggerAugment 对已完成的会话显式发起AI解读。
// 会话已处于终态时不再触碰远端，直接返回当前文本。
func TriggerAugment(c *gin.Context) {
	var req AugmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	session, ok := authorizeSession(c, req.Token)
	if !ok {
		return
	}

	err := defaultService.TriggerAugmentation(c.Request.Context(), session)
	switch {
	case err == nil, errors.Is(err, ErrAugmentAlreadyDone):
		// 幂等：终态会话直接返回当前结果
	case errors.Is(err, ErrNotCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "还有未翻开的卡牌"})
		return
	case errors.Is(err, ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "LIMIT_EXCEEDED",
			"limit":   defaultService.Gate().Limit(),
			"message": "今日AI解读次数已用完，明天再来吧",
		})
		return
	case errors.Is(err, quota.ErrStoreUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "SERVER_ERROR", "message": "配额服务暂时不可用"})
		return
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI_API_ERROR", "detail": err.Error()})
		return
	}

	summary, err := defaultService.FinalSummary(session)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "还有未翻开的卡牌"})
		return
	}
	c.JSON(http.StatusOK, SummaryResponse{
		ReadingID:    session.ID,
		AugmentState: string(session.AugmentState()),
		Summary:      summary,
	})
}

// ClearReading 显式清除会话
func ClearReading(c *gin.Context) {
	session, ok := authorizeSession(c, c.Query("token"))
	if !ok {
		return
	}

	defaultService.ClearReading(session)
	c.JSON(http.StatusOK, gin.H{"message": "会话已清除"})
}

// GetUsage 返回调用方当日的AI解读用量
func GetUsage(c *gin.Context) {
	gate := defaultService.Gate()

	used, err := gate.Used(c.Request.Context(), c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "SERVER_ERROR", "message": "配额服务暂时不可用"})
		return
	}

	remaining := int64(gate.Limit()) - used
	if remaining < 0 {
		remaining = 0
	}

	c.JSON(http.StatusOK, UsageResponse{
		Limit:     gate.Limit(),
		Used:      used,
		Remaining: remaining,
		ResetsAt:  gate.ResetTime().UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}
