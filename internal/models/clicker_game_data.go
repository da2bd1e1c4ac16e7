package models

import (
	"time"
)

// ClickerGameData 挖矿点击小游戏存档，每个Discord用户一行
type ClickerGameData struct {
	DiscordID            string     `gorm:"primaryKey;size:32" json:"discord_id"`
	Points               float64    `gorm:"not null;default:0" json:"points"`
	Tool                 string     `gorm:"size:20;not null;default:'hand'" json:"tool"`
	Inventory            StringList `json:"inventory"`
	Materials            CountMap   `json:"materials"`
	AutoClickLevel       int        `gorm:"not null;default:0" json:"auto_click_level"`
	OfflineEarningsLevel int        `gorm:"not null;default:0" json:"offline_earnings_level"`
	FurnaceLevel         int        `gorm:"not null;default:0" json:"furnace_level"`
	CoalReserve          float64    `gorm:"not null;default:0" json:"coal_reserve"`
	SmeltingQueue        StringList `json:"smelting_queue"`
	SmeltAmounts         CountMap   `json:"smelt_amounts"`               // 前端熔炼数量选择，原样保存
	LastLogoutAt         *time.Time `gorm:"index" json:"last_logout_at"` // 会话活跃时为空
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (ClickerGameData) TableName() string {
	return "clicker_game_data"
}
