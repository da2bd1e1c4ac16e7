package service

import (
	"time"

	"github.com/wfunc/mc-community/internal/clicker"
	"github.com/wfunc/mc-community/internal/repository"
	"go.uber.org/zap"
)

// Config 服务配置
type Config struct {
	ChatTokenTTL   time.Duration
	ChatAdminToken string
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		ChatTokenTTL: 30 * 24 * time.Hour,
	}
}

// Services 服务集合
type Services struct {
	GameData GameDataService
	Chat     ChatService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Manager, catalog *clicker.Catalog, config *Config, log *zap.Logger) *Services {
	return &Services{
		GameData: NewGameDataService(repos, catalog, log),
		Chat:     NewChatService(repos.ChatToken(), config, log),
	}
}
