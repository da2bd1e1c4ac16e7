package repository

import (
	"context"
	"time"

	"github.com/wfunc/mc-community/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameDataRepository 点击小游戏存档仓储接口
type GameDataRepository interface {
	BaseRepository
	FindByDiscordID(ctx context.Context, discordID string) (*models.ClickerGameData, error)
	// FindForUpdate 读取并锁定存档行，需在事务中调用
	FindForUpdate(ctx context.Context, discordID string) (*models.ClickerGameData, error)
	Upsert(ctx context.Context, data *models.ClickerGameData) error
	SaveProgress(ctx context.Context, data *models.ClickerGameData) error
	MarkLogout(ctx context.Context, discordID string, at time.Time) (bool, error)
}

// gameDataRepo 存档仓储实现
type gameDataRepo struct {
	*BaseRepo
}

// upsertColumns 前端保存时覆盖的列
var upsertColumns = []string{
	"points", "tool", "inventory", "materials",
	"auto_click_level", "offline_earnings_level", "furnace_level",
	"coal_reserve", "smelting_queue", "smelt_amounts",
	"last_logout_at", "updated_at",
}

// NewGameDataRepository 创建存档仓储
func NewGameDataRepository(db *gorm.DB) GameDataRepository {
	return &gameDataRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// FindByDiscordID 根据Discord ID查找存档
func (r *gameDataRepo) FindByDiscordID(ctx context.Context, discordID string) (*models.ClickerGameData, error) {
	var data models.ClickerGameData
	err := r.db.WithContext(ctx).Where("discord_id = ?", discordID).First(&data).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &data, nil
}

// FindForUpdate 根据Discord ID查找存档并加行锁
func (r *gameDataRepo) FindForUpdate(ctx context.Context, discordID string) (*models.ClickerGameData, error) {
	query := r.db.WithContext(ctx)
	if supportsRowLock(query) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var data models.ClickerGameData
	if err := query.Where("discord_id = ?", discordID).First(&data).Error; err != nil {
		return nil, notFound(err)
	}
	return &data, nil
}

// Upsert 保存完整存档，不存在时创建
func (r *gameDataRepo) Upsert(ctx context.Context, data *models.ClickerGameData) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "discord_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(data).Error
}

// SaveProgress 写回登录补算的结果
func (r *gameDataRepo) SaveProgress(ctx context.Context, data *models.ClickerGameData) error {
	return r.db.WithContext(ctx).
		Model(&models.ClickerGameData{}).
		Where("discord_id = ?", data.DiscordID).
		Updates(map[string]interface{}{
			"points":         data.Points,
			"materials":      data.Materials,
			"coal_reserve":   data.CoalReserve,
			"smelting_queue": data.SmeltingQueue,
			"last_logout_at": data.LastLogoutAt,
			"updated_at":     data.UpdatedAt,
		}).Error
}

// MarkLogout 记录登出时间，存档不存在时返回false
func (r *gameDataRepo) MarkLogout(ctx context.Context, discordID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ClickerGameData{}).
		Where("discord_id = ?", discordID).
		UpdateColumn("last_logout_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
