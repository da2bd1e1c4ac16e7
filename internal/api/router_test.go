package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/mc-community/internal/clicker"
	"github.com/wfunc/mc-community/internal/middleware"
	"github.com/wfunc/mc-community/internal/models"
	"github.com/wfunc/mc-community/internal/repository"
	"github.com/wfunc/mc-community/internal/service"
	"github.com/wfunc/mc-community/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouterTestSuite API测试套件
type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	repos  *repository.Manager
	jwt    *utils.JWTManager
	engine *gin.Engine
}

func (suite *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (suite *RouterTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.repos = repository.NewManager(suite.db)
	suite.jwt = utils.NewJWTManager("test-secret", time.Hour)

	services := &service.Services{
		GameData: service.NewGameDataService(suite.repos, clicker.DefaultCatalog(), zap.NewNop(),
			service.WithRoller(clicker.NewSequenceRoller(0.1))),
		Chat: service.NewChatService(suite.repos.ChatToken(), service.DefaultConfig(), zap.NewNop()),
	}
	session := middleware.NewSessionMiddleware(suite.jwt, "user_session")
	suite.engine = NewRouter(suite.db, services, session, nil, zap.NewNop()).GetEngine()
}

func (suite *RouterTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

func (suite *RouterTestSuite) do(method, path string, body interface{}, discordID, role string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if discordID != "" {
		token, err := suite.jwt.GenerateSessionToken(discordID, "tester", role)
		require.NoError(suite.T(), err)
		req.AddCookie(&http.Cookie{Name: "user_session", Value: token})
	}
	w := httptest.NewRecorder()
	suite.engine.ServeHTTP(w, req)
	return w
}

func (suite *RouterTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil, "", "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "healthy")
}

func (suite *RouterTestSuite) TestGameData_Unauthorized() {
	w := suite.do(http.MethodGet, "/api/game-data", nil, "", "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.JSONEq(suite.T(), `{"error":"Unauthorized"}`, w.Body.String())

	w = suite.do(http.MethodPost, "/api/game-logout", nil, "", "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *RouterTestSuite) TestGameData_MissingReturnsNull() {
	w := suite.do(http.MethodGet, "/api/game-data", nil, "3001", "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "null", w.Body.String())
}

// TestGameData_SaveThenFetch 保存后立即读取，离线时间不足不发放收益
func (suite *RouterTestSuite) TestGameData_SaveThenFetch() {
	body := map[string]interface{}{
		"points":                 15.5,
		"tool":                   "wooden",
		"inventory":              []string{"hand", "wooden"},
		"materials":              map[string]int{"cobble_stone": 12},
		"auto_click_level":       1,
		"offline_earnings_level": 1,
		"furnace_level":          0,
		"coal_reserve":           0,
		"smelting_queue":         []string{},
		"smelt_amounts":          map[string]int{},
	}
	w := suite.do(http.MethodPost, "/api/game-data", body, "3002", "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"success":true}`, w.Body.String())

	w = suite.do(http.MethodGet, "/api/game-data", nil, "3002", "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "3002", resp["discord_id"])
	assert.Equal(suite.T(), 15.5, resp["points"])
	assert.Equal(suite.T(), map[string]interface{}{}, resp["offline_smelted"])
	assert.Nil(suite.T(), resp["offline_earned"])
	assert.Equal(suite.T(), 1.0, resp["offline_earnings_level"])
}

// TestGameData_FetchWithOfflineEarnings 离线两小时，按30分钟上限结算
func (suite *RouterTestSuite) TestGameData_FetchWithOfflineEarnings() {
	logout := time.Now().Add(-2 * time.Hour)
	require.NoError(suite.T(), suite.repos.GameData().Upsert(context.Background(), &models.ClickerGameData{
		DiscordID:            "3003",
		Tool:                 "wooden",
		Inventory:            models.StringList{"hand", "wooden"},
		AutoClickLevel:       1,
		OfflineEarningsLevel: 1,
		LastLogoutAt:         &logout,
		UpdatedAt:            logout,
	}))

	w := suite.do(http.MethodGet, "/api/game-data", nil, "3003", "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Points        float64 `json:"points"`
		OfflineEarned *struct {
			Points    float64        `json:"points"`
			Materials map[string]int `json:"materials"`
			Minutes   int            `json:"minutes"`
		} `json:"offline_earned"`
		LastLogoutAt *time.Time `json:"last_logout_at"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(suite.T(), resp.OfflineEarned)
	assert.Equal(suite.T(), 900.0, resp.OfflineEarned.Points)
	assert.Equal(suite.T(), 30, resp.OfflineEarned.Minutes)
	assert.Equal(suite.T(), 90, resp.OfflineEarned.Materials["cobble_stone"])
	assert.Equal(suite.T(), 900.0, resp.Points)
	assert.Nil(suite.T(), resp.LastLogoutAt)
}

func (suite *RouterTestSuite) TestGameData_InvalidSave() {
	w := suite.do(http.MethodPost, "/api/game-data", map[string]interface{}{
		"inventory": []string{"hand"},
	}, "3004", "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.JSONEq(suite.T(), `{"error":"Invalid game data"}`, w.Body.String())

	w = suite.do(http.MethodPost, "/api/game-data", map[string]interface{}{
		"tool":           "diamond",
		"inventory":      []string{"hand"},
		"furnace_level":  1,
		"coal_reserve":   1,
		"smelting_queue": []string{},
		"smelt_amounts":  map[string]int{},
	}, "3004", "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *RouterTestSuite) TestGameLogout() {
	w := suite.do(http.MethodPost, "/api/game-logout", nil, "3005", "")
	assert.Equal(suite.T(), http.StatusNoContent, w.Code)
}

func (suite *RouterTestSuite) TestCatalog() {
	w := suite.do(http.MethodGet, "/api/clicker/catalog", nil, "", "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(suite.T(), resp, "recipes")
	assert.Contains(suite.T(), resp, "furnace_upgrade_costs")
	assert.Equal(suite.T(), 8.0, resp["max_furnace_level"])
}

// TestChatTokens 管理员签发令牌后校验
func (suite *RouterTestSuite) TestChatTokens() {
	req := map[string]string{"discord_id": "42", "discord_name": "steve"}

	w := suite.do(http.MethodPost, "/api/admin/chat-tokens", req, "42", "")
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.do(http.MethodPost, "/api/admin/chat-tokens", req, "1", "admin")
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	var issued IssueTokenResponse
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &issued))
	require.NotEmpty(suite.T(), issued.Token)

	w = suite.do(http.MethodPost, "/api/verify-token", map[string]string{"token": issued.Token}, "", "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"success":true,"user":{"id":"42","name":"steve"}}`, w.Body.String())

	w = suite.do(http.MethodPost, "/api/verify-token", map[string]string{}, "", "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.JSONEq(suite.T(), `{"success":false,"error":"Missing token"}`, w.Body.String())

	w = suite.do(http.MethodPost, "/api/verify-token", map[string]string{"token": "nope"}, "", "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.JSONEq(suite.T(), `{"success":false,"error":"Token expired or invalid"}`, w.Body.String())
}

func (suite *RouterTestSuite) TestIssueToken_BadRequest() {
	w := suite.do(http.MethodPost, "/api/admin/chat-tokens", map[string]string{}, "1", "admin")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"success":false`)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
