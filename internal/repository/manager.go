package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 仓储实例（使用懒加载）
	gameDataOnce sync.Once
	gameData     GameDataRepository

	chatTokenOnce sync.Once
	chatToken     ChatTokenRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// GetDB 获取数据库实例
func (m *Manager) GetDB() *gorm.DB {
	return m.db
}

// GameData 获取存档仓储
func (m *Manager) GameData() GameDataRepository {
	m.gameDataOnce.Do(func() {
		m.gameData = NewGameDataRepository(m.db)
	})
	return m.gameData
}

// ChatToken 获取聊天令牌仓储
func (m *Manager) ChatToken() ChatTokenRepository {
	m.chatTokenOnce.Do(func() {
		m.chatToken = NewChatTokenRepository(m.db)
	})
	return m.chatToken
}

// WithTransaction 在事务中执行函数，fn收到绑定到事务的仓储管理器
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *Manager) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewManager(tx))
	})
}
