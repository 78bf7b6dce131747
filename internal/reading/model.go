package reading

import (
	"errors"
	"sync"
	"time"

	"github.com/SlpAus/tarot-reading-backend/internal/augment"
	"github.com/SlpAus/tarot-reading-backend/internal/card"
	"github.com/SlpAus/tarot-reading-backend/internal/spread"
	"gorm.io/gorm"
)

var (
	// ErrInsufficientCatalog 表示牌阵要求的张数超过了目录里的卡牌数。
	// 这是配置层面的问题，直接使抽牌失败，不做部分抽取。
	ErrInsufficientCatalog = errors.New("卡牌目录数量不足，无法完成抽牌")
	// ErrSessionNotFound 表示会话不存在或已被清理
	ErrSessionNotFound = errors.New("找不到解读会话")
	// ErrInvalidPosition 表示翻牌位置越界
	ErrInvalidPosition = errors.New("无效的翻牌位置")
	// ErrNotCompleted 表示会话尚未翻完全部卡牌
	ErrNotCompleted = errors.New("还有未翻开的卡牌")
	// ErrInvalidToken 表示会话签名校验失败
	ErrInvalidToken = errors.New("会话签名无效")
	// ErrAugmentAlreadyDone 表示会话已经持有终态的AI解读结果
	ErrAugmentAlreadyDone = errors.New("本次会话的AI解读已经完成")
)

// DrawnCard 是一次抽牌中的一张牌：卡牌静态信息加上本次抽取时
// 固定下来的方向和位置。创建后不再修改。
type DrawnCard struct {
	Card          card.Info
	Reversed      bool
	Position      int // 0起始的位置下标
	PositionLabel string
}

// Variant 返回这张牌本次生效的含义（按正逆位）
func (d DrawnCard) Variant() card.MeaningVariant {
	return d.Card.Variant(d.Reversed)
}

// AugmentState 描述会话中AI解读的状态
type AugmentState string

const (
	// AugmentNotRequested 本次会话未启用AI解读
	AugmentNotRequested AugmentState = "not_requested"
	// AugmentPending 已启用但尚未尝试（完成翻牌前的状态）
	AugmentPending AugmentState = "pending"
	// AugmentDone 远端解读已成功并入
	AugmentDone AugmentState = "done"
	// AugmentQuotaExceeded 当日配额已用完，降级为本地解读
	AugmentQuotaExceeded AugmentState = "quota_exceeded"
	// AugmentFailed 远端调用失败，降级为本地解读
	AugmentFailed AugmentState = "failed"
)

// terminal 返回该状态是否为终态。终态的会话绝不会再次发起远端调用。
func (s AugmentState) terminal() bool {
	return s == AugmentDone || s == AugmentQuotaExceeded || s == AugmentFailed
}

// Session 是一次解读会话的聚合根：一个牌阵、一组抽出的牌、
// 每个位置的翻开状态，以及可选的AI解读结果。
// 会话由下一次抽牌或显式清除替换，不跨抽牌保留任何部分状态。
type Session struct {
	ID        string
	ClientKey string
	Template  spread.Template
	Cards     []DrawnCard

	UseLongText      bool
	AugmentRequested bool

	CreatedAt   time.Time
	CompletedAt time.Time

	mu            sync.Mutex
	revealed      []bool
	revealedCount int
	localSummary  string
	augmentState  AugmentState
	augmentation  *augment.Result
}

// newSession 组装一个全新的会话，所有位置初始为未翻开
func newSession(id, clientKey string, tpl spread.Template, cards []DrawnCard, useLongText, augmentRequested bool) *Session {
	state := AugmentNotRequested
	if augmentRequested {
		state = AugmentPending
	}
	return &Session{
		ID:               id,
		ClientKey:        clientKey,
		Template:         tpl,
		Cards:            cards,
		UseLongText:      useLongText,
		AugmentRequested: augmentRequested,
		CreatedAt:        time.Now(),
		revealed:         make([]bool, len(cards)),
		augmentState:     state,
	}
}

// --- 持久化归档模型 ---

// Reading 定义了已完成解读在SQLite中的归档记录。
// 会话本身是易失的，归档只用于留痕，不提供查询接口。
type Reading struct {
	gorm.Model

	// ReadingID 是会话的UUID
	ReadingID string `gorm:"uniqueIndex;not null"`

	// SpreadCode 是牌阵代号
	SpreadCode string

	// CardsJSON 是抽牌结果的JSON快照（卡牌ID、正逆位、位置标签）
	CardsJSON string

	// LocalSummary 是本地合成的解读全文
	LocalSummary string

	// AugmentState 是归档时AI解读的状态
	AugmentState string

	// CompletedAt 是全部翻开的时刻
	CompletedAt time.Time
}
