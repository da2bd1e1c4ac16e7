package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/mc-community/internal/api"
	"github.com/wfunc/mc-community/internal/chat"
	"github.com/wfunc/mc-community/internal/clicker"
	"github.com/wfunc/mc-community/internal/config"
	"github.com/wfunc/mc-community/internal/database"
	"github.com/wfunc/mc-community/internal/errors"
	"github.com/wfunc/mc-community/internal/logger"
	"github.com/wfunc/mc-community/internal/middleware"
	"github.com/wfunc/mc-community/internal/repository"
	"github.com/wfunc/mc-community/internal/service"
	"github.com/wfunc/mc-community/internal/utils"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// tokenPurgeInterval 过期聊天令牌清理周期
const tokenPurgeInterval = time.Hour

// Server 服务器实例
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	services *service.Services
	hub      *chat.Hub
	http     *http.Server

	// 关闭控制
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	setupSystem(&cfg.System)

	server := NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	server.WaitForShutdown()

	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		logger: logger.GetLogger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("正在启动社区服务器...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode),
	)

	if err := s.initDatabase(); err != nil {
		return err
	}

	catalog, err := loadCatalog(s.cfg.Clicker.CatalogFile)
	if err != nil {
		return errors.Wrap(err, errors.ErrCatalogInvalid, "加载游戏数据表失败")
	}

	repos := repository.NewManager(database.DB)
	s.services = service.NewServices(repos, catalog, &service.Config{
		ChatTokenTTL:   s.cfg.Chat.TokenTTL,
		ChatAdminToken: s.cfg.Chat.AdminToken,
	}, s.logger)

	s.hub = chat.NewHub(s.services.Chat, chat.Options{
		Cooldown:        s.cfg.Chat.Cooldown,
		HistorySize:     s.cfg.Chat.HistorySize,
		ReadBufferSize:  s.cfg.Chat.ReadBufferSize,
		WriteBufferSize: s.cfg.Chat.WriteBufferSize,
		MaxMessageSize:  s.cfg.Chat.MaxMessageSize,
	}, logger.GetModuleLogger("chat"))

	jwt := utils.NewJWTManager(s.cfg.Security.JWT.Secret, time.Duration(s.cfg.Security.JWT.ExpireHours)*time.Hour)
	session := middleware.NewSessionMiddleware(jwt, s.cfg.Session.CookieName)

	gin.SetMode(s.cfg.Server.Mode)
	router := api.NewRouter(database.DB, s.services, session, s.hub, s.logger)

	s.http = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.Run(s.ctx)
	}()

	s.wg.Add(1)
	go s.purgeChatTokens()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.http.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP服务异常退出", zap.Error(err))
		}
	}()

	// 监听配置变化
	config.Watch(func(newCfg *config.Config) {
		s.logger.Info("配置已更新，正在重新加载...")
		s.reloadConfig(newCfg)
	})

	s.logger.Info("服务器启动成功", zap.String("http", s.cfg.Server.Addr()))
	return nil
}

// initDatabase 初始化数据库
func (s *Server) initDatabase() error {
	if err := database.Init(&s.cfg.Database); err != nil {
		return errors.Wrap(err, errors.ErrDatabaseConnect, "初始化数据库连接失败")
	}

	if s.cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(database.DB); err != nil {
			return errors.Wrap(err, errors.ErrDatabaseConnect, "数据库迁移失败")
		}
	}
	return nil
}

// purgeChatTokens 定期清理过期聊天令牌
func (s *Server) purgeChatTokens() {
	defer s.wg.Done()

	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		if _, err := s.services.Chat.PurgeExpired(s.ctx); err != nil {
			s.logger.Warn("清理过期聊天令牌失败", zap.Error(err))
		}
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// WaitForShutdown 等待关闭信号
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	s.logger.Info("收到退出信号", zap.String("signal", sig.String()))
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// 停止接收新请求
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP服务关闭失败", zap.Error(err))
	}

	// 取消主上下文，触发所有goroutine退出
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("所有服务已正常关闭")
	case <-shutdownCtx.Done():
		s.logger.Warn("关闭超时，强制退出")
		return errors.New(errors.ErrTimeout, "关闭超时")
	}

	if err := database.Close(); err != nil {
		s.logger.Error("关闭数据库失败", zap.Error(err))
	}

	if err := logger.Sync(); err != nil {
		fmt.Printf("同步日志失败: %v\n", err)
	}
	return nil
}

// reloadConfig 重新加载配置，目前只有日志级别可热更新
func (s *Server) reloadConfig(newCfg *config.Config) {
	logger.SetLevel(newCfg.Log.Level)
	s.logger.Info("配置重新加载完成", zap.String("log_level", newCfg.Log.Level))
}

// loadCatalog 加载游戏数据表，未配置文件时使用内置数据
func loadCatalog(path string) (*clicker.Catalog, error) {
	if path == "" {
		return clicker.DefaultCatalog(), nil
	}
	catalog, err := clicker.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	logger.Info("已加载游戏数据表", zap.String("path", path))
	return catalog, nil
}

// setupSystem 设置系统参数
func setupSystem(cfg *config.SystemConfig) {
	if cfg.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
			time.Local = loc
		}
	}
	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("社区服务器\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
}
