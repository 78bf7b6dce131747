package reading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SlpAus/tarot-reading-backend/internal/augment"
	"github.com/SlpAus/tarot-reading-backend/internal/card"
	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
	"github.com/SlpAus/tarot-reading-backend/internal/quota"
	"github.com/SlpAus/tarot-reading-backend/internal/spread"
	"github.com/SlpAus/tarot-reading-backend/pkg/token"
	"github.com/google/uuid"
)

// ErrQuotaExceeded 表示当日AI解读配额已用完
var ErrQuotaExceeded = errors.New("今日AI解读次数已用完")

// Service 封装一次解读会话的全部业务流程：抽牌、翻牌、
// 本地解读合成、配额守门之后的AI解读，以及最终文本的合并。
type Service struct {
	gate                *quota.Gate
	augmenter           augment.Augmenter // nil 表示AI解读未启用
	rng                 RNG
	reversalProbability float64
}

// NewService 组装解读服务
func NewService(gate *quota.Gate, augmenter augment.Augmenter, rng RNG, reversalProbability float64) *Service {
	return &Service{
		gate:                gate,
		augmenter:           augmenter,
		rng:                 rng,
		reversalProbability: reversalProbability,
	}
}

// Gate 暴露配额守门器，用量查询接口直接读它
func (svc *Service) Gate() *quota.Gate {
	return svc.gate
}

// CreateReading 开始一次新的解读会话：抽牌、签名、登记。
// 同一客户端之前的会话被直接替换，不保留任何部分状态。
// 返回会话和绑定它的签名，后续操作都要带着签名来。
func (svc *Service) CreateReading(clientKey, spreadCode string, allowReversed, useLongText, augmentRequested bool) (*Session, string, error) {
	tpl, err := spread.GetTemplate(spreadCode)
	if err != nil {
		return nil, "", err
	}

	cards, err := DrawCards(card.AllCardInfos(), tpl, allowReversed, svc.reversalProbability, svc.rng)
	if err != nil {
		return nil, "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, "", fmt.Errorf("无法生成会话ID: %w", err)
	}

	session := newSession(id.String(), clientKey, tpl, cards, useLongText, augmentRequested)

	signature, err := token.GenerateReadingSignature(token.ReadingPayload{
		ReadingID: session.ID,
		IssuedAt:  session.CreatedAt.Unix(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("无法签发会话签名: %w", err)
	}

	PutSession(session)
	return session, signature, nil
}

// AuthorizeSession 按ID取会话并校验签名。
// 签名不匹配时返回ErrInvalidToken，不泄露会话是否存在以外的信息。
func (svc *Service) AuthorizeSession(id, signature string) (*Session, error) {
	session, err := GetSession(id)
	if err != nil {
		return nil, err
	}

	payload := token.ReadingPayload{ReadingID: session.ID, IssuedAt: session.CreatedAt.Unix()}
	if !token.ValidateReadingSignature(payload, signature) {
		return nil, ErrInvalidToken
	}
	return session, nil
}

// RevealCard 翻开指定位置的牌。
// 恰好翻开最后一张时，完成事件在这里触发且只触发一次：
// 合成本地解读，按需发起AI解读（失败只降级不报错），然后归档。
func (svc *Service) RevealCard(ctx context.Context, session *Session, position int) (RevealOutcome, error) {
	outcome, err := session.Reveal(position)
	if err != nil {
		return RevealOutcome{}, err
	}

	if outcome.NewlyCompleted {
		session.SetLocalSummary(Synthesize(session.Template, session.Cards, session.UseLongText))

		if session.AugmentRequested {
			if err := svc.attemptAugmentation(ctx, session); err != nil {
				// 翻牌的成功不受AI解读影响，结果文本里会说明缺席原因
				fmt.Printf("会话 %s 的AI解读未能并入: %v\n", session.ID, err)
			}
		}

		svc.archiveCompleted(session)
	}

	return outcome, nil
}

// FinalSummary 返回会话的最终解读文本。
// AI解读可用时逐位并入，不可用时在本地文本后追加缺席说明。
func (svc *Service) FinalSummary(session *Session) (string, error) {
	if !session.IsCompleted() {
		return "", ErrNotCompleted
	}
	return Merge(session.Template, session.Cards, session.UseLongText,
		session.Augmentation(), session.AugmentState(), svc.gate.ResetTime()), nil
}

// TriggerAugmentation 对已完成的会话显式发起AI解读。
// 已处于终态的会话直接返回ErrAugmentAlreadyDone，绝不会重复调用远端。
func (svc *Service) TriggerAugmentation(ctx context.Context, session *Session) error {
	if !session.IsCompleted() {
		return ErrNotCompleted
	}
	if err := session.BeginAugmentation(); err != nil {
		return err
	}
	return svc.attemptAugmentation(ctx, session)
}

// ClearReading 清除会话，对应界面上的"重新开始"
func (svc *Service) ClearReading(session *Session) {
	DeleteSession(session.ID)
}

// attemptAugmentation 执行一次配额守门之后的AI解读。
// 远端只尝试一次，任何失败都落入终态并降级为本地解读；
// 调用失败不退还已占用的当日名额。
func (svc *Service) attemptAugmentation(ctx context.Context, session *Session) error {
	allowed, err := svc.gate.TryConsume(ctx, session.ClientKey)
	if err != nil {
		session.FinishAugmentation(AugmentFailed, nil)
		return err
	}
	if !allowed {
		session.FinishAugmentation(AugmentQuotaExceeded, nil)
		return ErrQuotaExceeded
	}

	if svc.augmenter == nil {
		session.FinishAugmentation(AugmentFailed, nil)
		return augment.ErrUpstreamFailure
	}

	result, err := svc.augmenter.Augment(ctx, buildAugmentInput(session))
	if err != nil {
		session.FinishAugmentation(AugmentFailed, nil)
		return err
	}

	session.FinishAugmentation(AugmentDone, result)
	return nil
}

// buildAugmentInput 把会话打包成远端需要的输入。
// 关键词和释义取本次生效的方向，远端不需要自己理解塔罗牌。
func buildAugmentInput(session *Session) augment.Input {
	cards := make([]augment.CardInput, len(session.Cards))
	for i, c := range session.Cards {
		variant := c.Variant()
		cards[i] = augment.CardInput{
			Index:         c.Position,
			Name:          c.Card.Name,
			IsReversed:    c.Reversed,
			PositionLabel: c.PositionLabel,
			Keywords:      variant.Keywords,
			Meaning:       variant.Meaning,
		}
	}
	return augment.Input{
		SummaryText: session.LocalSummary(),
		Spread:      session.Template.Code,
		Cards:       cards,
	}
}

// cardSnapshot 是归档记录里单张牌的JSON形态
type cardSnapshot struct {
	CardID        string `json:"card_id"`
	IsReversed    bool   `json:"is_reversed"`
	Position      int    `json:"position"`
	PositionLabel string `json:"position_label"`
}

// archiveCompleted 把已完成的会话写入SQLite留痕。
// 归档失败只记日志，不影响会话本身。
func (svc *Service) archiveCompleted(session *Session) {
	snapshots := make([]cardSnapshot, len(session.Cards))
	for i, c := range session.Cards {
		snapshots[i] = cardSnapshot{
			CardID:        c.Card.CardID,
			IsReversed:    c.Reversed,
			Position:      c.Position,
			PositionLabel: c.PositionLabel,
		}
	}
	cardsJSON, err := json.Marshal(snapshots)
	if err != nil {
		fmt.Printf("会话 %s 的抽牌快照序列化失败: %v\n", session.ID, err)
		return
	}

	record := Reading{
		ReadingID:    session.ID,
		SpreadCode:   session.Template.Code,
		CardsJSON:    string(cardsJSON),
		LocalSummary: session.LocalSummary(),
		AugmentState: string(session.AugmentState()),
		CompletedAt:  session.CompletedAt,
	}
	if err := database.DB.Create(&record).Error; err != nil {
		fmt.Printf("会话 %s 归档失败: %v\n", session.ID, err)
	}
}
