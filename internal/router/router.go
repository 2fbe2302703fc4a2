package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskly/backend/internal/auth"
	"taskly/backend/internal/config"
	"taskly/backend/internal/database"
	"taskly/backend/internal/events"
	"taskly/backend/internal/handlers"
	"taskly/backend/internal/middleware"
	"taskly/backend/internal/monitoring"
	"taskly/backend/internal/services"
)

// Deps carries everything the route tree needs, injected from main.
type Deps struct {
	Config           *config.Config
	Connector        *database.Connector
	TaskService      services.TaskService
	AuthService      services.AuthService
	RegisterService  services.RegisterService
	FederatedService services.FederatedService
	Verifier         auth.Verifier
	IDTokenVerifier  handlers.IDTokenVerifier
	Issuer           *auth.LocalIssuer
	Bus              *events.Bus
	Metrics          *monitoring.Metrics
	Health           *monitoring.HealthChecker
	Logger           *zap.SugaredLogger
}

func New(deps Deps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if deps.Config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(deps.Config.RateLimit)
		r.Use(limiter.Middleware())
	}

	authHandler := handlers.NewAuthHandler(deps.Connector, deps.AuthService, deps.Issuer, deps.Logger)
	registerHandler := handlers.NewRegisterHandler(deps.Connector, deps.RegisterService, deps.Issuer, deps.Logger)
	federatedHandler := handlers.NewFederatedHandler(deps.Connector, deps.IDTokenVerifier, deps.FederatedService, deps.Logger)
	taskHandler := handlers.NewTaskHandler(deps.Connector, deps.TaskService, deps.Bus, deps.Logger)

	public := r.Group("/api")
	{
		public.POST("/auth/register", registerHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/federated", federatedHandler.Login)
	}

	private := r.Group("/api")
	private.Use(middleware.AuthMiddleware(deps.Verifier))
	{
		private.GET("/tasks", taskHandler.ListTasks)
		private.POST("/tasks", taskHandler.CreateTask)
		private.PUT("/tasks", taskHandler.UpdateTask)
		private.DELETE("/tasks", taskHandler.DeleteTask)
	}

	if deps.Health != nil {
		r.GET("/health", deps.Health.Handler())
	}
	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}

	return r
}
