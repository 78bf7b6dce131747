package card

import (
	"fmt"

	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
)

// PrimeCachedDB 负责初始化card模块的数据库和内存仓库
func PrimeCachedDB(catalogPath string) error {
	// 1. 迁移数据库表结构
	if err := migrateDB(); err != nil {
		return err
	}
	// 2. 首次启动时从JSON导入卡牌目录
	if err := ImportCatalog(catalogPath); err != nil {
		return err
	}
	// 3. 从数据库加载静态数据到内存仓库
	if err := InitializeRepository(); err != nil {
		return err
	}
	return nil
}

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Card{}); err != nil {
		return fmt.Errorf("无法迁移card表: %w", err)
	}
	fmt.Println("Card数据库表迁移成功。")
	return nil
}
