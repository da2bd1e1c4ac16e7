package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/mc-community/internal/clicker"
	"github.com/wfunc/mc-community/internal/errors"
	"github.com/wfunc/mc-community/internal/models"
	"github.com/wfunc/mc-community/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GameDataServiceTestSuite 存档服务测试套件
type GameDataServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	repos   *repository.Manager
	service GameDataService
	now     time.Time
}

func (suite *GameDataServiceTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.repos = repository.NewManager(suite.db)
	suite.now = time.Date(2024, 8, 1, 20, 0, 0, 0, time.UTC)
	suite.service = NewGameDataService(
		suite.repos,
		clicker.DefaultCatalog(),
		zap.NewNop(),
		WithClock(func() time.Time { return suite.now }),
		WithRoller(clicker.NewSequenceRoller(0.1)),
	)
}

func (suite *GameDataServiceTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

func (suite *GameDataServiceTestSuite) seed(data *models.ClickerGameData) {
	require.NoError(suite.T(), suite.repos.GameData().Upsert(context.Background(), data))
}

func (suite *GameDataServiceTestSuite) reload(discordID string) *models.ClickerGameData {
	data, err := suite.repos.GameData().FindByDiscordID(context.Background(), discordID)
	require.NoError(suite.T(), err)
	return data
}

// TestFetch_NoSave 没有存档时返回nil
func (suite *GameDataServiceTestSuite) TestFetch_NoSave() {
	view, err := suite.service.Fetch(context.Background(), "nobody")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), view)
}

// TestFetch_SmeltCatchup 离线熔炼受煤量限制
func (suite *GameDataServiceTestSuite) TestFetch_SmeltCatchup() {
	logout := suite.now.Add(-time.Minute)
	suite.seed(&models.ClickerGameData{
		DiscordID:     "2001",
		Tool:          "hand",
		Inventory:     models.StringList{"hand"},
		Materials:     models.CountMap{"copper_ore": 3},
		FurnaceLevel:  1,
		CoalReserve:   0.5,
		SmeltingQueue: models.StringList{"copper_ore", "copper_ore", "copper_ore"},
		LastLogoutAt:  &logout,
		UpdatedAt:     logout,
	})

	view, err := suite.service.Fetch(context.Background(), "2001")
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), view)
	assert.Equal(suite.T(), clicker.SmeltSummary{"copper_ingot": 2}, view.OfflineSmelted)
	assert.Nil(suite.T(), view.OfflineEarned)
	assert.Equal(suite.T(), 0.0, view.CoalReserve)
	assert.Equal(suite.T(), models.StringList{"copper_ore"}, view.SmeltingQueue)

	stored := suite.reload("2001")
	assert.Equal(suite.T(), 1, stored.Materials["copper_ore"])
	assert.Equal(suite.T(), 2, stored.Materials["copper_ingot"])
	assert.Equal(suite.T(), 0.0, stored.CoalReserve)
	require.NotNil(suite.T(), stored.LastLogoutAt)
	assert.True(suite.T(), stored.LastLogoutAt.Equal(suite.now))
}

// TestFetch_OfflineEarnings 离线收益按上限截断且只发放一次
func (suite *GameDataServiceTestSuite) TestFetch_OfflineEarnings() {
	logout := suite.now.Add(-2 * time.Hour)
	suite.seed(&models.ClickerGameData{
		DiscordID:            "2002",
		Points:               10,
		Tool:                 "wooden",
		Inventory:            models.StringList{"hand", "wooden"},
		Materials:            models.CountMap{"cobble_stone": 5},
		AutoClickLevel:       1,
		OfflineEarningsLevel: 1,
		LastLogoutAt:         &logout,
		UpdatedAt:            logout,
	})

	view, err := suite.service.Fetch(context.Background(), "2002")
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), view.OfflineEarned)
	// 30分钟 * 60秒 * 0.5次/秒 = 900次点击，每次1点，90次破坏
	assert.Equal(suite.T(), 900.0, view.OfflineEarned.Points)
	assert.Equal(suite.T(), 30, view.OfflineEarned.Minutes)
	assert.Equal(suite.T(), map[string]int{"cobble_stone": 90}, view.OfflineEarned.Materials)
	assert.Empty(suite.T(), view.OfflineSmelted)
	assert.Equal(suite.T(), 910.0, view.Points)

	stored := suite.reload("2002")
	assert.Equal(suite.T(), 910.0, stored.Points)
	assert.Equal(suite.T(), 95, stored.Materials["cobble_stone"])
	assert.Nil(suite.T(), stored.LastLogoutAt)

	// 同一段离线时间不能再次发放
	suite.now = suite.now.Add(time.Minute)
	again, err := suite.service.Fetch(context.Background(), "2002")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), again.OfflineEarned)
	assert.Equal(suite.T(), 910.0, again.Points)
}

// TestFetch_NoChanges 没有补算时不写库
func (suite *GameDataServiceTestSuite) TestFetch_NoChanges() {
	updated := suite.now.Add(-time.Hour)
	suite.seed(&models.ClickerGameData{
		DiscordID: "2003",
		Tool:      "hand",
		Inventory: models.StringList{"hand"},
		UpdatedAt: updated,
	})

	view, err := suite.service.Fetch(context.Background(), "2003")
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), view.OfflineSmelted)
	assert.Nil(suite.T(), view.OfflineEarned)

	stored := suite.reload("2003")
	assert.True(suite.T(), stored.UpdatedAt.Equal(updated))
	assert.Nil(suite.T(), stored.LastLogoutAt)
}

// TestSave 保存并记录登出时间
func (suite *GameDataServiceTestSuite) TestSave() {
	furnace := 2
	coal := 1.25
	err := suite.service.Save(context.Background(), "2004", &SaveGameDataRequest{
		Points:               42,
		Tool:                 "wooden",
		Inventory:            []string{"hand", "wooden"},
		Materials:            map[string]int{"iron_ore": 2},
		AutoClickLevel:       1,
		OfflineEarningsLevel: 2,
		FurnaceLevel:         &furnace,
		CoalReserve:          &coal,
		SmeltingQueue:        []string{"iron_ore"},
		SmeltAmounts:         map[string]int{"iron_ore": 1},
	})
	require.NoError(suite.T(), err)

	stored := suite.reload("2004")
	assert.Equal(suite.T(), 42.0, stored.Points)
	assert.Equal(suite.T(), 2, stored.OfflineEarningsLevel)
	assert.Equal(suite.T(), 2, stored.FurnaceLevel)
	assert.Equal(suite.T(), 1.25, stored.CoalReserve)
	assert.Equal(suite.T(), models.StringList{"iron_ore"}, stored.SmeltingQueue)
	require.NotNil(suite.T(), stored.LastLogoutAt)
	assert.True(suite.T(), stored.LastLogoutAt.Equal(suite.now))
}

// TestSave_Invalid 非法存档被拒绝
func (suite *GameDataServiceTestSuite) TestSave_Invalid() {
	furnace := 9
	coal := 0.0
	err := suite.service.Save(context.Background(), "2005", &SaveGameDataRequest{
		Tool:          "hand",
		Inventory:     []string{"hand"},
		FurnaceLevel:  &furnace,
		CoalReserve:   &coal,
		SmeltingQueue: []string{},
		SmeltAmounts:  map[string]int{},
	})
	assert.True(suite.T(), errors.Is(err, errors.ErrGameDataInvalid))

	err = suite.service.Save(context.Background(), "2005", &SaveGameDataRequest{})
	assert.True(suite.T(), errors.Is(err, errors.ErrGameDataInvalid))

	_, err = suite.repos.GameData().FindByDiscordID(context.Background(), "2005")
	assert.ErrorIs(suite.T(), err, repository.ErrNotFound)
}

func (suite *GameDataServiceTestSuite) TestMarkLogout() {
	suite.seed(&models.ClickerGameData{
		DiscordID: "2006",
		Tool:      "hand",
		Inventory: models.StringList{"hand"},
	})

	require.NoError(suite.T(), suite.service.MarkLogout(context.Background(), "2006"))
	stored := suite.reload("2006")
	require.NotNil(suite.T(), stored.LastLogoutAt)
	assert.True(suite.T(), stored.LastLogoutAt.Equal(suite.now))

	// 没有存档也不报错
	assert.NoError(suite.T(), suite.service.MarkLogout(context.Background(), "ghost"))
}

func (suite *GameDataServiceTestSuite) TestCatalog() {
	view := suite.service.Catalog()
	require.Len(suite.T(), view.FurnaceUpgradeCosts, clicker.MaxFurnaceLevel)
	assert.Equal(suite.T(), clicker.FurnaceCost{CobbleStone: 20, Coal: 1}, view.FurnaceUpgradeCosts[0])
	assert.Equal(suite.T(), clicker.FurnaceCost{CobbleStone: 90, Coal: 4}, view.FurnaceUpgradeCosts[7])
	assert.Equal(suite.T(), int64(5000), view.BaseSmeltPeriodMs)
	assert.NotEmpty(suite.T(), view.Recipes)
}

func TestGameDataServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GameDataServiceTestSuite))
}
