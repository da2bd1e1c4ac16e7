package service

import (
	"context"

	"github.com/wfunc/mc-community/internal/clicker"
	"github.com/wfunc/mc-community/internal/models"
)

// GameDataService 点击小游戏存档服务接口
type GameDataService interface {
	// Fetch 读取存档并执行登录补算，存档不存在时返回nil
	Fetch(ctx context.Context, discordID string) (*GameDataView, error)
	// Save 保存前端提交的完整存档
	Save(ctx context.Context, discordID string, req *SaveGameDataRequest) error
	// MarkLogout 记录登出时间
	MarkLogout(ctx context.Context, discordID string) error
	// Catalog 前端使用的固定数据表
	Catalog() *CatalogView
}

// ChatService 网页聊天服务接口
type ChatService interface {
	// VerifyToken 校验聊天令牌
	VerifyToken(ctx context.Context, token string) (*ChatUser, error)
	// IssueToken 为Discord用户签发聊天令牌
	IssueToken(ctx context.Context, discordID, discordName string) (*models.ChatToken, error)
	// PurgeExpired 清理过期令牌
	PurgeExpired(ctx context.Context) (int64, error)
}

// GameDataView 存档响应，附带离线熔炼与离线收益摘要
type GameDataView struct {
	*models.ClickerGameData
	OfflineSmelted clicker.SmeltSummary `json:"offline_smelted"`
	OfflineEarned  *clicker.Earnings    `json:"offline_earned"`
}

// SaveGameDataRequest 保存存档请求
type SaveGameDataRequest struct {
	Points               float64        `json:"points"`
	Tool                 string         `json:"tool"`
	Inventory            []string       `json:"inventory" binding:"required"`
	Materials            map[string]int `json:"materials"`
	AutoClickLevel       int            `json:"auto_click_level"`
	OfflineEarningsLevel int            `json:"offline_earnings_level"`
	FurnaceLevel         *int           `json:"furnace_level" binding:"required"`
	CoalReserve          *float64       `json:"coal_reserve" binding:"required"`
	SmeltingQueue        []string       `json:"smelting_queue" binding:"required"`
	SmeltAmounts         map[string]int `json:"smelt_amounts" binding:"required"`
}

// CatalogView 数据表响应
type CatalogView struct {
	*clicker.Catalog
	FurnaceUpgradeCosts []clicker.FurnaceCost `json:"furnace_upgrade_costs"`
	MaxFurnaceLevel     int                   `json:"max_furnace_level"`
	CoalPerTick         float64               `json:"coal_per_tick"`
	BaseSmeltPeriodMs   int64                 `json:"base_smelt_period_ms"`
	ClicksPerBlock      int                   `json:"clicks_per_block"`
}

// ChatUser 聊天令牌对应的用户
type ChatUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Admin bool   `json:"-"`
}
