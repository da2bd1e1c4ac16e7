package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/wfunc/mc-community/internal/clicker"
	"github.com/wfunc/mc-community/internal/errors"
	"github.com/wfunc/mc-community/internal/logger"
	"github.com/wfunc/mc-community/internal/models"
	"github.com/wfunc/mc-community/internal/repository"
	"go.uber.org/zap"
)

// gameDataService 存档服务实现
type gameDataService struct {
	repos   *repository.Manager
	catalog *clicker.Catalog
	roller  clicker.Roller
	now     func() time.Time
	log     *zap.Logger
}

// GameDataOption 存档服务选项
type GameDataOption func(*gameDataService)

// WithRoller 指定掉落随机源
func WithRoller(r clicker.Roller) GameDataOption {
	return func(s *gameDataService) { s.roller = r }
}

// WithClock 指定时钟
func WithClock(now func() time.Time) GameDataOption {
	return func(s *gameDataService) { s.now = now }
}

// NewGameDataService 创建存档服务
func NewGameDataService(repos *repository.Manager, catalog *clicker.Catalog, log *zap.Logger, opts ...GameDataOption) GameDataService {
	s := &gameDataService{
		repos:   repos,
		catalog: catalog,
		roller:  clicker.DefaultRoller,
		now:     time.Now,
		log:     log.Named("game_data"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch 在事务中锁定存档行后执行补算，避免并发请求重复发放同一段离线收益
func (s *gameDataService) Fetch(ctx context.Context, discordID string) (*GameDataView, error) {
	var view *GameDataView

	err := s.repos.WithTransaction(ctx, func(tx *repository.Manager) error {
		data, err := tx.GameData().FindForUpdate(ctx, discordID)
		if err != nil {
			if stderrors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return errors.Wrap(err, errors.ErrDatabaseQuery)
		}

		now := s.now()
		result := s.catalog.Reconcile(toState(data), now, s.roller)

		if result.Changed() {
			applyState(data, result.State)
			if result.ClearLogout() {
				data.LastLogoutAt = nil
			} else {
				data.LastLogoutAt = &now
			}
			data.UpdatedAt = now
			if err := tx.GameData().SaveProgress(ctx, data); err != nil {
				return errors.Wrap(err, errors.ErrDatabaseUpdate)
			}

			var points float64
			var minutes int
			if result.OfflineEarned != nil {
				points = result.OfflineEarned.Points
				minutes = result.OfflineEarned.Minutes
			}
			logger.LogCatchup(discordID, result.OfflineSmelted, points, minutes)
		}

		view = &GameDataView{
			ClickerGameData: data,
			OfflineSmelted:  result.OfflineSmelted,
			OfflineEarned:   result.OfflineEarned,
		}
		return nil
	})
	if err != nil {
		s.log.Error("读取存档失败", zap.String("discord_id", discordID), zap.Error(err))
		return nil, err
	}
	return view, nil
}

// Save 校验后整体覆盖存档，并把登出时间记为当前时间
func (s *gameDataService) Save(ctx context.Context, discordID string, req *SaveGameDataRequest) error {
	if req == nil || req.FurnaceLevel == nil || req.CoalReserve == nil {
		return errors.New(errors.ErrGameDataInvalid, "缺少必填字段")
	}

	now := s.now()
	data := &models.ClickerGameData{
		DiscordID:            discordID,
		Points:               req.Points,
		Tool:                 req.Tool,
		Inventory:            models.StringList(req.Inventory),
		Materials:            models.CountMap(req.Materials),
		AutoClickLevel:       req.AutoClickLevel,
		OfflineEarningsLevel: req.OfflineEarningsLevel,
		FurnaceLevel:         *req.FurnaceLevel,
		CoalReserve:          *req.CoalReserve,
		SmeltingQueue:        models.StringList(req.SmeltingQueue),
		SmeltAmounts:         models.CountMap(req.SmeltAmounts),
		LastLogoutAt:         &now,
		UpdatedAt:            now,
	}
	if data.Tool == "" {
		data.Tool = clicker.ToolHand
	}

	if err := s.catalog.ValidateState(toState(data)); err != nil {
		s.log.Warn("存档校验失败", zap.String("discord_id", discordID), zap.Error(err))
		return errors.Wrap(err, errors.ErrGameDataInvalid, err.Error())
	}

	if err := s.repos.GameData().Upsert(ctx, data); err != nil {
		s.log.Error("保存存档失败", zap.String("discord_id", discordID), zap.Error(err))
		return errors.Wrap(err, errors.ErrDatabaseInsert)
	}
	return nil
}

// MarkLogout 记录登出时间，没有存档时忽略
func (s *gameDataService) MarkLogout(ctx context.Context, discordID string) error {
	ok, err := s.repos.GameData().MarkLogout(ctx, discordID, s.now())
	if err != nil {
		s.log.Error("记录登出失败", zap.String("discord_id", discordID), zap.Error(err))
		return errors.Wrap(err, errors.ErrDatabaseUpdate)
	}
	s.log.Debug("收到登出信标", zap.String("discord_id", discordID), zap.Bool("found", ok))
	return nil
}

// Catalog 返回数据表及熔炉升级花费
func (s *gameDataService) Catalog() *CatalogView {
	costs := make([]clicker.FurnaceCost, 0, clicker.MaxFurnaceLevel)
	for lvl := 0; ; lvl++ {
		cost, ok := clicker.FurnaceUpgradeCost(lvl)
		if !ok {
			break
		}
		costs = append(costs, cost)
	}
	return &CatalogView{
		Catalog:             s.catalog,
		FurnaceUpgradeCosts: costs,
		MaxFurnaceLevel:     clicker.MaxFurnaceLevel,
		CoalPerTick:         clicker.CoalPerTick,
		BaseSmeltPeriodMs:   clicker.BaseSmeltPeriod.Milliseconds(),
		ClicksPerBlock:      clicker.ClicksPerBlock,
	}
}

func toState(m *models.ClickerGameData) clicker.State {
	return clicker.State{
		Points:               m.Points,
		Tool:                 m.Tool,
		Inventory:            []string(m.Inventory),
		Materials:            map[string]int(m.Materials),
		AutoClickLevel:       m.AutoClickLevel,
		OfflineEarningsLevel: m.OfflineEarningsLevel,
		FurnaceLevel:         m.FurnaceLevel,
		CoalReserve:          m.CoalReserve,
		SmeltingQueue:        []string(m.SmeltingQueue),
		LastLogoutAt:         m.LastLogoutAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// applyState 只回写补算会改动的字段
func applyState(m *models.ClickerGameData, s clicker.State) {
	m.Points = s.Points
	m.Materials = models.CountMap(s.Materials)
	m.CoalReserve = s.CoalReserve
	m.SmeltingQueue = models.StringList(s.SmeltingQueue)
}
