package repository

import (
	"context"
	"time"

	"github.com/wfunc/mc-community/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatTokenRepository 聊天令牌仓储接口
type ChatTokenRepository interface {
	BaseRepository
	// Issue 为Discord用户签发令牌，已有令牌时覆盖
	Issue(ctx context.Context, token *models.ChatToken) error
	FindValid(ctx context.Context, token string, now time.Time) (*models.ChatToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type chatTokenRepo struct {
	*BaseRepo
}

// NewChatTokenRepository 创建聊天令牌仓储
func NewChatTokenRepository(db *gorm.DB) ChatTokenRepository {
	return &chatTokenRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

func (r *chatTokenRepo) Issue(ctx context.Context, token *models.ChatToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "discord_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "discord_name", "expires_at", "updated_at"}),
	}).Create(token).Error
}

func (r *chatTokenRepo) FindValid(ctx context.Context, token string, now time.Time) (*models.ChatToken, error) {
	var t models.ChatToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now).
		First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// DeleteExpired 清理过期令牌
func (r *chatTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.ChatToken{})
	return result.RowsAffected, result.Error
}
