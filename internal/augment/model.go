package augment

import (
	"context"
	"errors"
)

var (
	// ErrUpstreamFailure 表示网络错误或远端服务返回了非成功状态
	ErrUpstreamFailure = errors.New("远端解读服务调用失败")
	// ErrInvalidResponse 表示远端返回的内容不符合约定的结构
	ErrInvalidResponse = errors.New("远端解读服务返回了无效的结构")
)

// CardInput 是提交给远端服务的单张牌的描述。
// 它携带了足够的本地语义（关键词、释义），远端不需要自己理解塔罗牌。
type CardInput struct {
	Index         int      `json:"index"`
	Name          string   `json:"name"`
	IsReversed    bool     `json:"is_reversed"`
	PositionLabel string   `json:"position_label"`
	Keywords      []string `json:"keywords,omitempty"`
	Meaning       string   `json:"meaning,omitempty"`
}

// Input 是一次AI解读请求的完整输入
type Input struct {
	SummaryText string      `json:"summaryText"`
	Spread      string      `json:"spread"`
	Cards       []CardInput `json:"cards"`
}

// CardComment 是远端针对某个抽牌位置的评述
type CardComment struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// OverallComment 是远端对整个牌阵的总评
type OverallComment struct {
	Summary string `json:"summary"`
	Advice  string `json:"advice"`
	Closing string `json:"closing"`
}

// Result 是一次成功的AI解读结果，创建后不再修改。
type Result struct {
	CardComments   []CardComment  `json:"card_comments"`
	OverallComment OverallComment `json:"overall_comment"`
}

// CommentFor 返回指定位置的评述，没有则返回false。
// 远端允许只评述部分位置，缺失的位置直接跳过，不视为错误。
func (r *Result) CommentFor(index int) (CardComment, bool) {
	for _, comment := range r.CardComments {
		if comment.Index == index {
			return comment, true
		}
	}
	return CardComment{}, false
}

// Augmenter 是AI解读能力的抽象，便于在测试中替换。
type Augmenter interface {
	Augment(ctx context.Context, in Input) (*Result, error)
}
