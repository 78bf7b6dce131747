package reading

import (
	"testing"

	"github.com/SlpAus/tarot-reading-backend/internal/augment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, spreadCode string, augmentRequested bool) *Session {
	t.Helper()
	tpl := mustTemplate(t, spreadCode)
	drawn, err := DrawCards(testCatalog(78), tpl, true, 0.35, &scriptedRNG{floats: []float64{0.1, 0.9, 0.9}})
	require.NoError(t, err)
	return newSession("test-"+t.Name(), "client-"+t.Name(), tpl, drawn, false, augmentRequested)
}

func TestRevealCompletesOnceRegardlessOfOrder(t *testing.T) {
	session := newTestSession(t, "3", false)

	// 乱序翻牌：2, 0, 1
	outcome, err := session.Reveal(2)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.RevealedCount)
	assert.False(t, outcome.Completed)
	assert.False(t, outcome.NewlyCompleted)

	outcome, err = session.Reveal(0)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.RevealedCount)
	assert.False(t, outcome.Completed)

	outcome, err = session.Reveal(1)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.RevealedCount)
	assert.True(t, outcome.Completed)
	assert.True(t, outcome.NewlyCompleted, "最后一张翻开时完成事件必须触发")
	assert.False(t, session.CompletedAt.IsZero())

	// 完成之后再翻任何位置，完成事件都不会再次触发
	outcome, err = session.Reveal(0)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.RevealedCount)
	assert.True(t, outcome.Completed)
	assert.False(t, outcome.NewlyCompleted)
}

func TestRevealIsIdempotent(t *testing.T) {
	session := newTestSession(t, "3", false)

	first, err := session.Reveal(1)
	require.NoError(t, err)
	second, err := session.Reveal(1)
	require.NoError(t, err)

	// 重复翻开返回同一张牌，但不推进任何计数
	assert.Equal(t, first.Card.Card.CardID, second.Card.Card.CardID)
	assert.Equal(t, 1, second.RevealedCount)
	assert.False(t, second.Completed)
}

func TestRevealRejectsInvalidPosition(t *testing.T) {
	session := newTestSession(t, "3", false)

	_, err := session.Reveal(-1)
	assert.ErrorIs(t, err, ErrInvalidPosition)
	_, err = session.Reveal(3)
	assert.ErrorIs(t, err, ErrInvalidPosition)
	assert.Equal(t, 0, session.RevealedCount())
}

func TestBeginAugmentationGuardsTerminalStates(t *testing.T) {
	session := newTestSession(t, "3", true)
	assert.Equal(t, AugmentPending, session.AugmentState())

	// 非终态可以开始
	require.NoError(t, session.BeginAugmentation())

	// 进入终态后，任何再次开始的尝试都被拒绝
	session.FinishAugmentation(AugmentDone, &augment.Result{
		OverallComment: augment.OverallComment{Summary: "s", Advice: "a", Closing: "c"},
	})
	assert.ErrorIs(t, session.BeginAugmentation(), ErrAugmentAlreadyDone)

	for _, state := range []AugmentState{AugmentQuotaExceeded, AugmentFailed} {
		other := newTestSession(t, "3", true)
		other.FinishAugmentation(state, nil)
		assert.ErrorIs(t, other.BeginAugmentation(), ErrAugmentAlreadyDone)
	}
}

func TestBeginAugmentationUpgradesNotRequested(t *testing.T) {
	session := newTestSession(t, "3", false)
	assert.Equal(t, AugmentNotRequested, session.AugmentState())

	// 未启用的会话可以通过显式请求升级
	require.NoError(t, session.BeginAugmentation())
}
