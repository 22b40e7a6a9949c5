package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rick-johnn/TruckSigns.com/internal/config"
	"github.com/rick-johnn/TruckSigns.com/internal/middleware"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/canvas"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/entity"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/handler"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/repository"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/service"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/sse"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting signstudio service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Design{},
		&entity.Inquiry{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// 初始化Redis(刷新token存储)
	rdb := initRedis(cfg.Redis)

	// 初始化字体库与渲染引擎
	fonts, err := canvas.NewFontLibrary(cfg.Canvas.FontDir, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to load font library", zap.Error(err))
	}
	engine := canvas.NewGGEngine(fonts, zapLogger)

	// SSE hub
	hub := sse.NewHub()

	// 仓储、服务、处理器
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, engine, hub, cfg, zapLogger)
	handlers := handler.NewHandlers(services, hub, cfg)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证 (无需登录)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 目录 (无需登录:尺寸/字体/颜色/模板)
		catalogGroup := v1.Group("/catalog")
		{
			catalogGroup.GET("/sizes", h.Catalog.ListSizes)
			catalogGroup.GET("/sizes/:id/dimensions", h.Catalog.DeriveDimensions)
			catalogGroup.GET("/fonts", h.Catalog.ListFonts)
			catalogGroup.GET("/colors", h.Catalog.ListColors)
			catalogGroup.GET("/templates", h.Catalog.ListTemplates)
			catalogGroup.GET("/templates/:id/preview", h.Catalog.PreviewTemplate)
		}

		// SSE 实时推送（需要认证，支持 query param token）
		sseGroup := v1.Group("/sse")
		sseGroup.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			sseGroup.GET("/events", h.SSE.Stream)
		}

		// 需要认证的接口
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// 当前用户
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 编辑会话
			sessions := authorized.Group("/sessions")
			{
				sessions.POST("", h.Session.Start)
				sessions.GET("/:id", h.Session.Get)
				sessions.DELETE("/:id", h.Session.End)
				sessions.PUT("/:id/selection", h.Session.Select)
				sessions.PATCH("/:id/selection", h.Session.UpdateSelected)
				sessions.DELETE("/:id/selection", h.Session.DeleteSelected)
				sessions.POST("/:id/selection/actions", h.Session.Action)
				sessions.POST("/:id/elements/text", h.Session.AddText)
				sessions.POST("/:id/elements/shape", h.Session.AddShape)
				sessions.POST("/:id/elements/image", h.Session.AddImage)
				sessions.POST("/:id/template", h.Session.ApplyTemplate)
				sessions.PUT("/:id/size", h.Session.ChangeSize)
				sessions.POST("/:id/reset", h.Session.Reset)
				sessions.GET("/:id/export", h.Session.Export)
				sessions.POST("/:id/save", h.Session.Save)
			}

			// 已保存设计
			designs := authorized.Group("/designs")
			{
				designs.GET("", h.Design.List)
				designs.GET("/:id", h.Design.Get)
				designs.DELETE("/:id", h.Design.Delete)
			}

			// 询价
			inquiries := authorized.Group("/inquiries")
			{
				inquiries.POST("", h.Inquiry.Submit)
				inquiries.GET("", h.Inquiry.List)
			}
		}
	}
}
