package reading

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/SlpAus/tarot-reading-backend/internal/augment"
	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
	"github.com/SlpAus/tarot-reading-backend/internal/quota"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeAugmenter 记录调用次数，按预设返回结果或错误
type fakeAugmenter struct {
	calls  int32
	result *augment.Result
	err    error
}

func (f *fakeAugmenter) Augment(_ context.Context, _ augment.Input) (*augment.Result, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func validResult() *augment.Result {
	return &augment.Result{
		CardComments: []augment.CardComment{{Index: 0, Message: "补充评述。"}},
		OverallComment: augment.OverallComment{
			Summary: "整体向好。", Advice: "保持节奏。", Closing: "祝顺利。",
		},
	}
}

func setupArchiveDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.DB = db
	require.NoError(t, db.AutoMigrate(&Reading{}))
}

func newTestService(augmenter augment.Augmenter, dailyLimit int) *Service {
	gate := quota.NewGate(quota.NewMemoryUsageStore(), dailyLimit)
	return NewService(gate, augmenter, &scriptedRNG{}, 0.35)
}

func revealAll(t *testing.T, svc *Service, session *Session) {
	t.Helper()
	for i := range session.Cards {
		_, err := svc.RevealCard(context.Background(), session, i)
		require.NoError(t, err)
	}
}

func TestServiceCompletionSynthesizesAndArchives(t *testing.T) {
	setupArchiveDB(t)
	svc := newTestService(nil, 3)
	session := newTestSession(t, "3", false)

	revealAll(t, svc, session)

	require.True(t, session.IsCompleted())
	assert.NotEmpty(t, session.LocalSummary())

	// 未启用AI时最终文本是本地解读加一条说明
	summary, err := svc.FinalSummary(session)
	require.NoError(t, err)
	assert.Contains(t, summary, session.LocalSummary())
	assert.Contains(t, summary, "本次解读未启用AI补充评述")

	// 完成的解读已归档
	var record Reading
	require.NoError(t, database.DB.Where("reading_id = ?", session.ID).First(&record).Error)
	assert.Equal(t, "3", record.SpreadCode)
	assert.Equal(t, string(AugmentNotRequested), record.AugmentState)
	assert.Equal(t, session.LocalSummary(), record.LocalSummary)
}

func TestServiceCompletionRunsAugmentationOnce(t *testing.T) {
	setupArchiveDB(t)
	fake := &fakeAugmenter{result: validResult()}
	svc := newTestService(fake, 3)
	session := newTestSession(t, "3", true)

	revealAll(t, svc, session)

	assert.Equal(t, AugmentDone, session.AugmentState())
	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.calls))

	summary, err := svc.FinalSummary(session)
	require.NoError(t, err)
	assert.Contains(t, summary, "【AI解读者总评】")
	assert.Contains(t, summary, "▷ 解读者补充: 补充评述。")

	// 成功的调用消耗一次当日配额
	used, err := svc.Gate().Used(context.Background(), session.ClientKey)
	require.NoError(t, err)
	assert.EqualValues(t, 1, used)

	// 完成后再翻牌或再触发都不会产生第二次远端调用
	_, err = svc.RevealCard(context.Background(), session, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.TriggerAugmentation(context.Background(), session), ErrAugmentAlreadyDone)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.calls))
}

func TestServiceAugmentationQuotaExceeded(t *testing.T) {
	setupArchiveDB(t)
	fake := &fakeAugmenter{result: validResult()}
	svc := newTestService(fake, 0)
	session := newTestSession(t, "3", true)

	revealAll(t, svc, session)

	// 配额为0：远端从未被触碰，会话落入终态
	assert.Equal(t, AugmentQuotaExceeded, session.AugmentState())
	assert.EqualValues(t, 0, atomic.LoadInt32(&fake.calls))

	summary, err := svc.FinalSummary(session)
	require.NoError(t, err)
	assert.Contains(t, summary, session.LocalSummary())
	assert.Contains(t, summary, "今日的AI解读次数已用完")

	// 终态会话拒绝再次触发
	assert.ErrorIs(t, svc.TriggerAugmentation(context.Background(), session), ErrAugmentAlreadyDone)
}

func TestServiceAugmentationFailureDegradesToLocal(t *testing.T) {
	setupArchiveDB(t)
	fake := &fakeAugmenter{err: augment.ErrUpstreamFailure}
	svc := newTestService(fake, 3)
	session := newTestSession(t, "3", true)

	revealAll(t, svc, session)

	assert.Equal(t, AugmentFailed, session.AugmentState())
	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.calls))

	// 失败只降级：本地解读完整保留，末尾附失败说明
	summary, err := svc.FinalSummary(session)
	require.NoError(t, err)
	assert.Contains(t, summary, session.LocalSummary())
	assert.Contains(t, summary, "AI补充评述暂时不可用")

	// 失败的调用不退还已占用的名额
	used, err := svc.Gate().Used(context.Background(), session.ClientKey)
	require.NoError(t, err)
	assert.EqualValues(t, 1, used)

	assert.ErrorIs(t, svc.TriggerAugmentation(context.Background(), session), ErrAugmentAlreadyDone)
}

func TestServiceTriggerAugmentationRequiresCompletion(t *testing.T) {
	setupArchiveDB(t)
	fake := &fakeAugmenter{result: validResult()}
	svc := newTestService(fake, 3)
	session := newTestSession(t, "3", true)

	_, err := svc.RevealCard(context.Background(), session, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.TriggerAugmentation(context.Background(), session), ErrNotCompleted)
	assert.EqualValues(t, 0, atomic.LoadInt32(&fake.calls))

	_, err = svc.FinalSummary(session)
	assert.ErrorIs(t, err, ErrNotCompleted)
}

func TestServiceTriggerAugmentationUpgradesLocalSession(t *testing.T) {
	setupArchiveDB(t)
	fake := &fakeAugmenter{result: validResult()}
	svc := newTestService(fake, 3)
	session := newTestSession(t, "3", false)

	revealAll(t, svc, session)
	assert.Equal(t, AugmentNotRequested, session.AugmentState())

	// 未启用的会话可以在完成后显式补做AI解读
	require.NoError(t, svc.TriggerAugmentation(context.Background(), session))
	assert.Equal(t, AugmentDone, session.AugmentState())
	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.calls))
}
