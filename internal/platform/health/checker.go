package health

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
	"github.com/SlpAus/tarot-reading-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// PerformCheck 执行一次Redis健康检查，并更新全局状态。
func PerformCheck() {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()

	err := database.RDB.Ping(ctx).Err()
	database.UpdateRedisStatus(err == nil)
}

// StartRedisHealthCheck 启动一个后台的持续健康检查循环。
// 配额计数器存储在Redis中且可自然重建（新的一天从零开始），
// 因此恢复时不需要任何缓存重建动作，只需翻转状态位。
func StartRedisHealthCheck(handle *lifecycle.Handle) {
	defer handle.Close()

	fmt.Println("Redis健康检查器已启动。")
	for {
		if err := handle.Sleep(checkInterval); err != nil {
			fmt.Println("Redis健康检查器已停止。")
			return
		}
		PerformCheck()
	}
}
