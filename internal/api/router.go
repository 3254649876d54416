package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/bunker-game/internal/config"
	apperrors "github.com/wfunc/bunker-game/internal/errors"
	"github.com/wfunc/bunker-game/internal/game"
	"github.com/wfunc/bunker-game/internal/middleware"
	"github.com/wfunc/bunker-game/internal/ratelimit"
	"github.com/wfunc/bunker-game/internal/utils"
	"github.com/wfunc/bunker-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	cfg            *config.Config
	rooms          *RoomHandler
	rounds         *RoundHandler
	auth           *AuthHandler
	ws             *WebSocketHandler
	authMiddleware *middleware.AuthMiddleware
	limiter        ratelimit.Limiter
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, cfg *config.Config, svc *game.Service, hub *websocket.Hub, limiter ratelimit.Limiter, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	jwt := utils.NewJWTManager(cfg.Security.JWT.Secret,
		time.Duration(cfg.Security.JWT.ExpireHours)*time.Hour,
		time.Duration(cfg.Security.JWT.RefreshHours)*time.Hour)

	router := &Router{
		engine:         engine,
		db:             db,
		cfg:            cfg,
		rooms:          NewRoomHandler(svc),
		rounds:         NewRoundHandler(svc),
		auth:           NewAuthHandler(jwt),
		ws:             NewWebSocketHandler(svc, hub, log),
		authMiddleware: middleware.NewAuthMiddleware(jwt),
		limiter:        limiter,
		log:            log,
	}

	router.setupRoutes()
	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	limited := middleware.RateLimit(r.limiter)

	v1 := r.engine.Group("/api/v1")
	{
		// 令牌签发（不需要认证）
		auth := v1.Group("/auth")
		auth.Use(limited)
		{
			auth.POST("/guest", r.auth.Guest)
			auth.POST("/refresh", r.auth.Refresh)
		}

		rooms := v1.Group("/rooms")
		rooms.Use(r.authMiddleware.RequireAuth())
		{
			rooms.GET("", r.rooms.List)
			rooms.POST("", r.rooms.Create)
			rooms.POST("/join", r.rooms.Join)
			rooms.GET("/:id", r.rooms.Snapshot)
			rooms.POST("/:id/leave", r.rooms.Leave)
			rooms.POST("/:id/heartbeat", limited, r.rooms.Heartbeat)
			rooms.POST("/:id/ready", r.rooms.Ready)
			rooms.POST("/:id/kick", r.rooms.Kick)
			rooms.POST("/:id/ban", r.rooms.Ban)
			rooms.POST("/:id/chat", limited, r.rooms.Chat)

			// 回合流程
			rooms.POST("/:id/start", r.rounds.Start)
			rooms.POST("/:id/skip-intro", r.rounds.SkipIntro)
			rooms.POST("/:id/voting/start", r.rounds.StartVoting)
			rooms.POST("/:id/voting/end", r.rounds.EndVoting)
			rooms.POST("/:id/rounds/advance", r.rounds.Advance)
			rooms.POST("/:id/finish", r.rounds.Finish)
			rooms.POST("/:id/votes", limited, r.rounds.Vote)
			rooms.POST("/:id/characteristics/:cid/reveal", r.rounds.Reveal)
			rooms.POST("/:id/cards/:card_id/use", r.rounds.UseCard)
		}

		stats := v1.Group("/stats")
		stats.Use(r.authMiddleware.RequireAuth())
		{
			stats.GET("/me", r.rooms.MyStats)
		}
	}

	// WebSocket路由，浏览器通过 ?token= 传递令牌
	ws := r.engine.Group("/ws")
	ws.Use(r.authMiddleware.RequireAuth())
	{
		ws.GET("/rooms/:id", r.ws.Subscribe)
	}

	if r.cfg.Server.EnableSwagger {
		registerSwaggerRoutes(r.engine)
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, apperrors.New(apperrors.ErrNotFound, "接口不存在"))
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Handler 返回 http.Handler，供 http.Server 使用
func (r *Router) Handler() http.Handler {
	return r.engine
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
