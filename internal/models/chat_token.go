package models

import (
	"time"
)

// ChatToken 网页聊天令牌，每个Discord用户最多一个
type ChatToken struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Token       string    `gorm:"uniqueIndex;size:64;not null" json:"token"`
	DiscordID   string    `gorm:"uniqueIndex;size:32;not null" json:"discord_id"`
	DiscordName string    `gorm:"size:100;not null" json:"discord_name"`
	ExpiresAt   time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ChatToken) TableName() string {
	return "chat_tokens"
}

// IsExpired 是否已过期
func (t *ChatToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
