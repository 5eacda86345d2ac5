package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appsvc "bloglist-api/internal/app"
	"bloglist-api/internal/bootstrap"
	"bloglist-api/internal/cache"
	"bloglist-api/internal/logging"
	"bloglist-api/internal/platform/rabbitmq"
	"bloglist-api/internal/repository"
	"bloglist-api/internal/transport/http/handler"
	"bloglist-api/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		logging.RequestLogger(),
		cors.New(corsConfig(app.Config.App.CORSOrigins)),
		middleware.TokenExtractor(),
		middleware.ErrorHandler(),
	)

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	// Leave the interfaces nil, not typed-nil, when a backend is disabled.
	var listCache appsvc.ListCache
	if app.Redis != nil {
		listCache = cache.NewListCache(
			app.Redis,
			time.Duration(app.Config.Redis.BlogListTTLSeconds)*time.Second,
			time.Duration(app.Config.Redis.DirtyTTLSeconds)*time.Second,
		)
	}
	var publisher appsvc.EventPublisher
	if app.MQConn != nil {
		publisher = rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.BlogEventQueue)
	}

	userRepo := repository.NewUserRepository(app.DB)
	blogRepo := repository.NewBlogRepository(app.DB)
	eventRepo := repository.NewBlogEventRepository(app.DB)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	userService := appsvc.NewUserService(userRepo, listCache)
	blogService := appsvc.NewBlogService(blogRepo, userRepo, eventRepo, listCache, publisher)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	blogHandler := handler.NewBlogHandler(blogService)

	api := router.Group("/api")
	api.POST("/login", authHandler.Login)
	api.GET("/stats", blogHandler.Stats)

	usersGroup := api.Group("/users")
	usersGroup.GET("", userHandler.List)
	usersGroup.POST("", userHandler.Register)

	blogsGroup := api.Group("/blogs")
	blogsGroup.GET("", blogHandler.List)
	blogsGroup.GET("/:id", blogHandler.Get)
	blogsGroup.GET("/:id/events", blogHandler.Events)

	protected := blogsGroup.Group("")
	protected.Use(middleware.UserExtractor(authService))
	protected.POST("", blogHandler.Create)
	protected.PUT("/:id", blogHandler.Update)
	protected.DELETE("/:id", blogHandler.Delete)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
