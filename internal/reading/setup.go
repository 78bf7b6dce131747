package reading

import (
	"fmt"

	"github.com/SlpAus/tarot-reading-backend/internal/augment"
	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
	"github.com/SlpAus/tarot-reading-backend/internal/quota"
)

// PrimeDB 负责初始化reading模块的归档表
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Reading{}); err != nil {
		return fmt.Errorf("无法迁移reading归档表: %w", err)
	}
	fmt.Println("Reading归档表迁移成功。")
	return nil
}

// SetupService 组装解读服务并注入handler层
func SetupService(gate *quota.Gate, augmenter augment.Augmenter, rng RNG, reversalProbability float64) *Service {
	svc := NewService(gate, augmenter, rng, reversalProbability)
	InitHandler(svc)
	return svc
}
