package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/mc-community/internal/errors"
	"github.com/wfunc/mc-community/internal/middleware"
	"github.com/wfunc/mc-community/internal/service"
)

// GameDataHandler 点击小游戏存档处理器
type GameDataHandler struct {
	gameData service.GameDataService
}

// NewGameDataHandler 创建存档处理器
func NewGameDataHandler(gameData service.GameDataService) *GameDataHandler {
	return &GameDataHandler{gameData: gameData}
}

// GetGameData 读取存档
// @Summary 读取存档并结算离线进度
// @Tags Clicker
// @Produce json
// @Success 200 {object} service.GameDataView
// @Failure 401 {object} map[string]string
// @Router /api/game-data [get]
func (h *GameDataHandler) GetGameData(c *gin.Context) {
	discordID, _ := middleware.GetDiscordID(c)

	view, err := h.gameData.Fetch(c.Request.Context(), discordID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game data"})
		return
	}
	if view == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SaveGameData 保存存档
// @Summary 保存存档
// @Tags Clicker
// @Accept json
// @Produce json
// @Param request body service.SaveGameDataRequest true "存档"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Router /api/game-data [post]
func (h *GameDataHandler) SaveGameData(c *gin.Context) {
	discordID, _ := middleware.GetDiscordID(c)

	var req service.SaveGameDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game data"})
		return
	}

	if err := h.gameData.Save(c.Request.Context(), discordID, &req); err != nil {
		if errors.Is(err, errors.ErrGameDataInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game data"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save game data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout 登出信标
func (h *GameDataHandler) Logout(c *gin.Context) {
	discordID, _ := middleware.GetDiscordID(c)

	if err := h.gameData.MarkLogout(c.Request.Context(), discordID); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}

// Catalog 固定数据表
func (h *GameDataHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.gameData.Catalog())
}
