package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/socialhub/config"
	"github.com/cppla/socialhub/controllers"
	"github.com/cppla/socialhub/middleware"
	"github.com/cppla/socialhub/static"
	"github.com/cppla/socialhub/utils"
)

// Deps are the process-owned handles the router hands to controllers.
type Deps struct {
	Config   config.AppConfig
	DB       *gorm.DB
	Sessions utils.SessionStore
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(ginzap.Ginzap(accessLogger(cfg), time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(utils.Logger, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		// browsers refuse credentials with a literal "*", so cross-origin
		// cookies need an explicit list
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(middleware.SessionLoader(deps.Sessions, cfg.SessionSecret, cfg.SessionCookie))

	r.GET("/", func(ctx *gin.Context) {
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", static.Index)
	})

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(deps.DB, deps.Sessions, controllers.SessionCookie{
		Name:   cfg.SessionCookie,
		Secret: cfg.SessionSecret,
		Secure: cfg.SessionCookieSecure,
	})
	postController := controllers.NewPostController(deps.DB)
	interactionController := controllers.NewInteractionController(deps.DB)
	userController := controllers.NewUserController(deps.DB)

	api := r.Group("/api")
	api.POST("/register", authController.Register)
	api.POST("/login", authController.Login)
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/comments", postController.ListComments)
	api.GET("/users/:id", userController.GetUser)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.POST("/logout", authController.Logout)
	protected.GET("/me", authController.Me)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/like", interactionController.LikePost)
	protected.POST("/posts/:id/comment", postController.CreateComment)
	protected.POST("/posts/:id/share", interactionController.SharePost)
	protected.DELETE("/comments/:id", postController.DeleteComment)
	protected.PUT("/users/:id", userController.UpdateUser)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "Not found")
			return
		}
		ctx.Data(http.StatusNotFound, "text/plain; charset=utf-8", []byte("404 page not found"))
	})

	return r
}

// accessLogger writes gin access logs to their own rolling file, falling back to the app logger.
func accessLogger(cfg config.AppConfig) *zap.Logger {
	if cfg.GinPath == "" {
		return utils.Logger
	}
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		utils.Sugar.Warnf("gin access log disabled: %v", err)
		return utils.Logger
	}
	return gl
}
