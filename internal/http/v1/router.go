// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"taskwell/internal/domain/auth"
	"taskwell/internal/domain/employee"
	"taskwell/internal/domain/file"
	"taskwell/internal/domain/identity"
	"taskwell/internal/domain/project"
	"taskwell/internal/domain/task"
	"taskwell/internal/domain/tenant"
	"taskwell/internal/http/v1/handlers"
	"taskwell/internal/http/v1/middleware"
	"taskwell/internal/storage/postgres"
	"taskwell/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Pool is the database connection (for health checks)
	Pool *postgres.Pool

	// TokenDecoder verifies bearer tokens
	TokenDecoder middleware.TokenDecoder

	// Version is reported by the info endpoint
	Version string

	Identity  *identity.Service
	Tenants   *tenant.Service
	Employees *employee.Service
	Projects  *project.Service
	States    *task.StateService
	Tasks     *task.Service
	Files     *file.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	apiV1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.Identity)
		publicAuth := apiV1.Group("/auth")
		protectedAuth := apiV1.Group("/auth")
		protectedAuth.Use(middleware.Auth(cfg.TokenDecoder))
		authHandler.RegisterRoutes(publicAuth, protectedAuth)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.TokenDecoder))

		registerTenantRoutes(protected, base, cfg)
		registerEmployeeRoutes(protected, base, cfg)
		registerProjectRoutes(protected, base, cfg)
		registerTaskRoutes(protected, base, cfg)
		registerFileRoutes(protected, base, cfg)
	}

	return router
}

// registerTenantRoutes registers tenant endpoints. Creation is open to
// any authenticated account; the rest of the lifecycle is owner-only.
func registerTenantRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewTenantHandler(base, cfg.Tenants)
	owner := middleware.RequirePosition(cfg.Employees, auth.PositionOwner)

	tenants := rg.Group("/tenants")
	{
		tenants.POST("", handler.Create)
		tenants.GET("/:id", handler.Get)
		tenants.PUT("/:id", owner, handler.Rename)
		tenants.PUT("/:id/plan", owner, handler.ChangePlan)
		tenants.DELETE("/:id", owner, handler.Delete)
	}
}

// registerEmployeeRoutes registers employee endpoints. Mutations are
// admin-only; any member can read the roster.
func registerEmployeeRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewEmployeeHandler(base, cfg.Employees)
	admin := middleware.RequirePosition(cfg.Employees, auth.PositionAdmin)

	employees := rg.Group("/employees")
	{
		employees.POST("", admin, handler.Create)
		employees.GET("", handler.ListByTenant)
		employees.GET("/:id", handler.Get)
		employees.PUT("/:id/position", admin, handler.SetPosition)
		employees.POST("/:id/tenants", admin, handler.AddToTenant)
		employees.DELETE("/:id", admin, handler.Deactivate)
	}
}

// registerProjectRoutes registers project and board endpoints.
// Structure changes need manager rank; reads are open to members.
func registerProjectRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewProjectHandler(base, cfg.Projects)
	stateHandler := handlers.NewStateHandler(base, cfg.States)
	manager := middleware.RequirePosition(cfg.Employees, auth.PositionManager)

	projects := rg.Group("/projects")
	{
		projects.POST("", manager, handler.Create)
		projects.GET("", handler.ListProjects)
		projects.GET("/:id", handler.Get)
		projects.PUT("/:id", manager, handler.Update)
		projects.DELETE("/:id", manager, handler.Delete)

		projects.POST("/:id/boards", manager, handler.CreateBoard)
		projects.GET("/:id/boards", handler.ListBoards)
	}

	boards := rg.Group("/boards")
	{
		boards.GET("/:id", handler.GetBoard)
		boards.PUT("/:id", manager, handler.RenameBoard)
		boards.DELETE("/:id", manager, handler.DeleteBoard)

		boards.POST("/:id/states", manager, stateHandler.Create)
		boards.GET("/:id/states", stateHandler.ListByBoard)
	}

	states := rg.Group("/states")
	{
		states.GET("/:id", stateHandler.Get)
		states.PUT("/:id", manager, stateHandler.Update)
		states.POST("/:id/copy", manager, stateHandler.Copy)
		states.DELETE("/:id", manager, stateHandler.Delete)
	}
}

// registerTaskRoutes registers task endpoints. Task mutations need
// employee rank so observers stay read-only.
func registerTaskRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewTaskHandler(base, cfg.Tasks)
	member := middleware.RequirePosition(cfg.Employees, auth.PositionEmployee)

	tasks := rg.Group("/tasks")
	{
		tasks.POST("", member, handler.Create)
		tasks.GET("/:id", handler.Get)
		tasks.PUT("/:id", member, handler.Update)
		tasks.PUT("/:id/state", member, handler.ChangeState)
		tasks.POST("/:id/assignees", member, handler.Assign)
		tasks.DELETE("/:id/assignees/:employeeId", member, handler.Unassign)
		tasks.POST("/:id/files", member, handler.AttachFile)
		tasks.DELETE("/:id", member, handler.Delete)
		tasks.GET("/:id/actions", handler.Actions)
	}

	// Board-scoped task listing lives beside the other board reads.
	rg.GET("/boards/:id/tasks", handler.ListByBoard)
}

// registerFileRoutes registers file endpoints.
func registerFileRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewFileHandler(base, cfg.Files)
	member := middleware.RequirePosition(cfg.Employees, auth.PositionEmployee)

	files := rg.Group("/files")
	{
		files.POST("", member, middleware.RequireAuthority(auth.PermissionFileUpload), handler.Upload)
		files.GET("/:id", handler.Get)
		files.GET("/:id/content", handler.Download)
		files.DELETE("/:id", member, handler.Delete)
	}
}
