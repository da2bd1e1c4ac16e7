package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/mc-community/internal/chat"
	"github.com/wfunc/mc-community/internal/database"
	"github.com/wfunc/mc-community/internal/middleware"
	"github.com/wfunc/mc-community/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine   *gin.Engine
	db       *gorm.DB
	session  *middleware.SessionMiddleware
	gameData *GameDataHandler
	chat     *ChatHandler
	hub      *chat.Hub
	log      *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, services *service.Services, session *middleware.SessionMiddleware, hub *chat.Hub, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog())

	router := &Router{
		engine:   engine,
		db:       db,
		session:  session,
		gameData: NewGameDataHandler(services.GameData),
		chat:     NewChatHandler(services.Chat),
		hub:      hub,
		log:      log,
	}

	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	api := r.engine.Group("/api")
	{
		api.GET("/clicker/catalog", r.gameData.Catalog)
		api.POST("/verify-token", r.chat.VerifyToken)

		// 需要登录的路由
		player := api.Group("")
		player.Use(r.session.RequireSession())
		{
			player.GET("/game-data", r.gameData.GetGameData)
			player.POST("/game-data", r.gameData.SaveGameData)
			player.POST("/game-logout", r.gameData.Logout)
		}

		// 管理员路由
		admin := api.Group("/admin")
		admin.Use(r.session.RequireRole("admin"))
		{
			admin.POST("/chat-tokens", r.chat.IssueToken)
		}
	}

	// WebSocket路由
	if r.hub != nil {
		r.engine.GET("/ws/chat", gin.WrapF(r.hub.ServeWS))
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	if !database.IsConnected(r.db) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	body := gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	}
	if r.hub != nil {
		body["chat_clients"] = r.hub.OnlineCount()
	}
	c.JSON(http.StatusOK, body)
}

// Handler 获取HTTP处理器
func (r *Router) Handler() http.Handler {
	return r.engine
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
