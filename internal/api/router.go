package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clienttracker/crm-system/internal/api/handler"
	"github.com/clienttracker/crm-system/internal/api/middleware"
	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/ports"
	"github.com/clienttracker/crm-system/internal/core/service"
	mongodb "github.com/clienttracker/crm-system/internal/infrastructure/db/mongo"
	redisdb "github.com/clienttracker/crm-system/internal/infrastructure/db/redis"
)

// Dependencies holds everything the router needs that is built in main:
// external connections and the side-effecting collaborators.
type Dependencies struct {
	Mongo     *mongo.Database
	Redis     *redis.Client
	Notifier  ports.Notifier
	Files     ports.FileStore
	Workspace ports.Workspace
	JWTSecret string
	TokenTTL  time.Duration
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Repositories ---
	clientRepo := mongodb.NewClientRepository(deps.Mongo)
	taskRepo := mongodb.NewTaskRepository(deps.Mongo)
	userRepo := mongodb.NewUserRepository(deps.Mongo)
	statsCache := redisdb.NewStatsCache(deps.Redis, deps.Logger)

	// --- Services ---
	clientService := service.NewClientService(
		clientRepo, taskRepo, userRepo,
		deps.Notifier, deps.Files, deps.Workspace, deps.Logger,
	)
	taskService := service.NewTaskService(taskRepo, clientRepo, userRepo, deps.Notifier, deps.Workspace, deps.Logger)
	userService := service.NewUserService(userRepo, clientRepo, taskRepo, deps.Notifier, deps.Logger)
	dashboardService := service.NewDashboardService(clientRepo, taskRepo, statsCache, deps.Logger)
	authService := service.NewAuthService(userRepo, deps.JWTSecret, deps.TokenTTL)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, userService)
	clientHandler := handler.NewClientHandler(clientService)
	attachmentHandler := handler.NewAttachmentHandler(clientService)
	taskHandler := handler.NewTaskHandler(taskService)
	userHandler := handler.NewUserHandler(userService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	authRequired := middleware.Auth(deps.JWTSecret)
	adminOnly := middleware.RBAC(string(domain.RoleSuperAdmin), string(domain.RoleAdmin))

	// --- Public routes ---
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/init-super-admin", authHandler.InitSuperAdmin)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Authenticated routes ---
	api := e.Group("/api", authRequired)

	api.POST("/auth/change-password", authHandler.ChangePassword)

	api.POST("/clients", clientHandler.Create)
	api.GET("/clients", clientHandler.List)
	api.GET("/clients/:id", clientHandler.Get)
	api.PUT("/clients/:id", clientHandler.Update)
	api.DELETE("/clients/:id", clientHandler.Delete)
	api.POST("/clients/:id/notes", clientHandler.AddNote)
	api.POST("/clients/:id/attachments", attachmentHandler.UploadToClient)
	api.POST("/clients/:id/notes/:index/attachments", attachmentHandler.UploadToNote)

	api.POST("/tasks", taskHandler.Create)
	api.GET("/tasks", taskHandler.List)
	api.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)

	api.GET("/dashboard/stats", dashboardHandler.Stats)

	// BDE lookup serves client assignment forms; any authenticated role.
	api.GET("/users/bdes", userHandler.ListBDEs)

	// User management is gated to admins at the route level; finer checks
	// (e.g. admins may only mint bde accounts) live in the policy package.
	users := api.Group("/users", adminOnly)
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	return e
}
