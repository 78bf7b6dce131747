package reading

import (
	"time"

	"github.com/SlpAus/tarot-reading-backend/internal/augment"
)

// RevealOutcome 是一次翻牌动作的结果。
// 已翻开的位置重复翻开时，Card仍会返回（界面要重新展示详情视图），
// 但计数和完成状态不会有任何变化。
type RevealOutcome struct {
	Card          DrawnCard
	RevealedCount int
	// Completed 表示会话当前是否已全部翻开
	Completed bool
	// NewlyCompleted 只在本次翻牌恰好翻开最后一张时为true。
	// 完成事件依赖它精确触发一次：重复翻牌和乱序翻牌都不会再次置位。
	NewlyCompleted bool
}

// Reveal 将指定位置从未翻开转为已翻开。
// 状态转移是单向的：Hidden -> Revealed，没有回退。
// 完成判定只看已翻开的计数是否第一次达到N，与翻开顺序无关。
func (s *Session) Reveal(position int) (RevealOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 0 || position >= len(s.Cards) {
		return RevealOutcome{}, ErrInvalidPosition
	}

	outcome := RevealOutcome{Card: s.Cards[position]}

	if s.revealed[position] {
		// 幂等：重复翻开不改变任何持久状态
		outcome.RevealedCount = s.revealedCount
		outcome.Completed = s.revealedCount == len(s.Cards)
		return outcome, nil
	}

	s.revealed[position] = true
	s.revealedCount++

	outcome.RevealedCount = s.revealedCount
	if s.revealedCount == len(s.Cards) {
		s.CompletedAt = time.Now()
		outcome.Completed = true
		outcome.NewlyCompleted = true
	}

	return outcome, nil
}

// IsCompleted 返回会话是否已全部翻开
func (s *Session) IsCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealedCount == len(s.Cards)
}

// RevealedCount 返回已翻开的数量
func (s *Session) RevealedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealedCount
}

// SetLocalSummary 记录完成时合成的本地解读
func (s *Session) SetLocalSummary(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localSummary = summary
}

// LocalSummary 返回本地解读全文（未完成时为空）
func (s *Session) LocalSummary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localSummary
}

// AugmentState 返回AI解读的当前状态
func (s *Session) AugmentState() AugmentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.augmentState
}

// Augmentation 返回AI解读结果，没有则为nil
func (s *Session) Augmentation() *augment.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.augmentation
}

// BeginAugmentation 尝试把会话标记为正在进行AI解读。
// 只有非终态的会话可以开始；已持有结果（或已降级）的会话
// 返回ErrAugmentAlreadyDone，保证每个会话至多发起一次远端调用。
func (s *Session) BeginAugmentation() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.augmentState.terminal() {
		return ErrAugmentAlreadyDone
	}
	s.augmentState = AugmentPending
	return nil
}

// FinishAugmentation 把会话置入终态。result只在state为AugmentDone时记录。
func (s *Session) FinishAugmentation(state AugmentState, result *augment.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.augmentState = state
	if state == AugmentDone && result != nil {
		s.augmentation = result
	}
}
