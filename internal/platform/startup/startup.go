package startup

import (
	"fmt"

	"github.com/SlpAus/tarot-reading-backend/internal/card"
	"github.com/SlpAus/tarot-reading-backend/internal/platform/config"
	"github.com/SlpAus/tarot-reading-backend/internal/reading"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication(cfg *config.Config) error {
	fmt.Println("开始应用首次初始化...")

	if err := card.PrimeCachedDB(cfg.Reading.CatalogPath); err != nil {
		return err
	}
	if err := reading.PrimeDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}
