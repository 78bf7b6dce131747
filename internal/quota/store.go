package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable 表示计数存储暂时不可用（例如Redis不健康）。
// 配额门只守护AI解读路径，存储不可用时本地解读不受任何影响。
var ErrStoreUnavailable = errors.New("配额计数存储暂时不可用")

// UsageStore 是每日用量计数的存储接口。
// 实现必须保证 Incr 是原子的：并发调用不会丢失计数。
// key 由配额门负责组装，已经包含日历日，存储层不理解其结构。
type UsageStore interface {
	// Incr 将key的计数加一并返回新值，key不存在时从0开始。
	Incr(ctx context.Context, key string) (int64, error)
	// Decr 将key的计数减一，用于回滚一次未被批准的递增。
	Decr(ctx context.Context, key string) error
	// Get 返回key的当前计数，key不存在时返回0。
	Get(ctx context.Context, key string) (int64, error)
}

// --- Redis实现 ---

const (
	// usageKeyPrefix 是Redis中用量计数键的前缀
	usageKeyPrefix = "quota:usage:"
	// usageKeyTTL 是计数键的生存时间。日历日切换后旧键不再被读取，
	// 两天后由Redis自动清理，避免键无限累积。
	usageKeyTTL = 48 * time.Hour
)

// RedisUsageStore 把每日用量计数存放在Redis中。
// INCR本身是原子命令，因此多实例部署下的检查-递增竞争也是安全的。
type RedisUsageStore struct{}

// NewRedisUsageStore 创建一个基于全局Redis客户端的用量存储
func NewRedisUsageStore() *RedisUsageStore {
	return &RedisUsageStore{}
}

func (s *RedisUsageStore) Incr(ctx context.Context, key string) (int64, error) {
	if !database.IsRedisHealthy() {
		return 0, ErrStoreUnavailable
	}

	pipe := database.RDB.TxPipeline()
	incrCmd := pipe.Incr(ctx, usageKeyPrefix+key)
	pipe.Expire(ctx, usageKeyPrefix+key, usageKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("执行用量递增事务失败: %w", err)
	}
	return incrCmd.Val(), nil
}

func (s *RedisUsageStore) Decr(ctx context.Context, key string) error {
	if !database.IsRedisHealthy() {
		return ErrStoreUnavailable
	}
	if err := database.RDB.Decr(ctx, usageKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("回滚用量计数失败: %w", err)
	}
	return nil
}

func (s *RedisUsageStore) Get(ctx context.Context, key string) (int64, error) {
	if !database.IsRedisHealthy() {
		return 0, ErrStoreUnavailable
	}
	count, err := database.RDB.Get(ctx, usageKeyPrefix+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("读取用量计数失败: %w", err)
	}
	return count, nil
}

// --- 内存实现 ---

// MemoryUsageStore 是UsageStore的进程内实现，用于测试和无Redis的本地运行。
// 注意：它不跨实例共享，也不在重启后保留。
type MemoryUsageStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemoryUsageStore 创建一个空的内存用量存储
func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{counts: make(map[string]int64)}
}

func (s *MemoryUsageStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func (s *MemoryUsageStore) Decr(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[key] > 0 {
		s.counts[key]--
	}
	return nil
}

func (s *MemoryUsageStore) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key], nil
}
