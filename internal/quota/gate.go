package quota

import (
	"context"
	"fmt"
	"time"
)

// Gate 实现AI解读的每日配额控制。
// 它不关心计数存放在哪里，存储由注入的UsageStore决定。
type Gate struct {
	store UsageStore
	limit int
}

// NewGate 创建一个配额门
func NewGate(store UsageStore, dailyLimit int) *Gate {
	return &Gate{store: store, limit: dailyLimit}
}

// dayKey 返回当前UTC日历日的键，格式 2006-01-02。
// 固定使用UTC，与历史实现中 toISOString().slice(0,10) 的语义一致。
func dayKey(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// usageKey 组装 (日历日, 客户端Key) 的存储键
func usageKey(clientKey string, now time.Time) string {
	return fmt.Sprintf("%s:%s", dayKey(now), clientKey)
}

// Limit 返回配置的每日上限
func (g *Gate) Limit() int {
	return g.limit
}

// TryConsume 尝试为clientKey消耗一次当日配额。
// 检查与递增必须是不可分割的一步：先原子递增，若新值超出上限则
// 立刻回滚并拒绝。这样当只剩一个名额时，并发调用中至多一个会成功。
// 这是唯一会改变计数的方法；本地解读永远不经过这里。
func (g *Gate) TryConsume(ctx context.Context, clientKey string) (bool, error) {
	if g.limit <= 0 {
		return false, nil
	}

	key := usageKey(clientKey, time.Now())
	newCount, err := g.store.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if newCount > int64(g.limit) {
		// 超限的递增需要补偿回滚，保证计数始终等于已批准的次数。
		// 回滚失败只记录，不影响拒绝结果。
		if derr := g.store.Decr(ctx, key); derr != nil {
			fmt.Printf("警告: 配额计数回滚失败: %v\n", derr)
		}
		return false, nil
	}

	return true, nil
}

// Used 返回clientKey当日已消耗的次数
func (g *Gate) Used(ctx context.Context, clientKey string) (int64, error) {
	return g.store.Get(ctx, usageKey(clientKey, time.Now()))
}

// Remaining 返回clientKey当日剩余的次数
func (g *Gate) Remaining(ctx context.Context, clientKey string) (int64, error) {
	used, err := g.Used(ctx, clientKey)
	if err != nil {
		return 0, err
	}
	remaining := int64(g.limit) - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ResetTime 返回配额下一次重置的时刻（下一个UTC零点）
func (g *Gate) ResetTime() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
