package database

import (
	"fmt"

	"github.com/wfunc/mc-community/internal/logger"
	"github.com/wfunc/mc-community/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// migrationLockKey Postgres咨询锁键，避免多个实例同时迁移
const migrationLockKey = 7_331_001

// Models 需要迁移的模型
func Models() []interface{} {
	return []interface{}{
		&models.ClickerGameData{},
		&models.ChatToken{},
	}
}

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("数据库未初始化")
	}

	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("SELECT pg_advisory_lock(?)", migrationLockKey).Error; err != nil {
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer func() {
			if err := db.Exec("SELECT pg_advisory_unlock(?)", migrationLockKey).Error; err != nil {
				logger.Warn("释放迁移锁失败", zap.Error(err))
			}
		}()
	}

	logger.Info("开始数据库迁移...")

	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	logger.Info("数据库迁移完成")
	return nil
}
