// Package main is the entry point for the Taskwell API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskwell/internal/core/id"
	"taskwell/internal/domain/auth"
	"taskwell/internal/domain/employee"
	"taskwell/internal/domain/file"
	"taskwell/internal/domain/identity"
	"taskwell/internal/domain/project"
	"taskwell/internal/domain/task"
	"taskwell/internal/domain/tenant"
	v1 "taskwell/internal/http/v1"
	"taskwell/internal/storage/blob"
	"taskwell/internal/storage/postgres"
	"taskwell/pkg/logger"
	"taskwell/pkg/numerator"
)

var version = "dev"

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting taskwell server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	accountRepo := postgres.NewAccountRepo(txManager)
	roleRepo := postgres.NewRoleRepo(txManager)
	tenantRepo := postgres.NewTenantRepo(txManager)
	employeeRepo := postgres.NewEmployeeRepo(txManager)
	projectRepo := postgres.NewProjectRepo(txManager)
	boardRepo := postgres.NewBoardRepo(txManager)
	stateRepo := postgres.NewTaskStateRepo(txManager)
	taskRepo := postgres.NewTaskRepo(txManager)
	fileRepo := postgres.NewFileRepo(txManager)

	actionRepo, err := postgres.NewTaskActionRepo(txManager)
	if err != nil {
		log.Fatalw("failed to create action repository", "error", err)
	}

	blobStore, err := blob.NewDiskStore(getEnv("BLOB_DIR", "./data/blobs"))
	if err != nil {
		log.Fatalw("failed to create blob store", "error", err)
	}

	// --- Token codec ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	tokenConfig := auth.DefaultTokenConfig(jwtSecret)
	if ttl := getEnvDuration("ACCESS_TOKEN_TTL", 0); ttl > 0 {
		tokenConfig.AccessTokenTTL = ttl
	}
	if ttl := getEnvDuration("REFRESH_TOKEN_TTL", 0); ttl > 0 {
		tokenConfig.RefreshTokenTTL = ttl
	}
	codec := auth.NewTokenCodec(tokenConfig)

	// --- Services ---
	// Employee codes run through the numerator; it joins the surrounding
	// transaction via the TxManager.
	codes := numerator.New(txManager)

	// The tenant service enrolls the creator through the employee service,
	// and the employee service checks seat caps through the tenant service;
	// the func adapter breaks the construction cycle.
	var employeeSvc *employee.Service
	tenantSvc := tenant.NewService(tenantRepo, employeeRepo, projectRepo, tenant.OwnerEnrollerFunc(
		func(ctx context.Context, accountID, tenantID id.ID) error {
			return employeeSvc.EnrollOwner(ctx, accountID, tenantID)
		}), txManager)
	employeeSvc = employee.NewService(employeeRepo, codes, tenantSvc, txManager)
	fileSvc := file.NewService(fileRepo, blobStore, txManager)

	// The project service seeds states through the state service, and the
	// state service resolves boards through the project service; the func
	// adapter breaks the construction cycle.
	var projectSvc *project.Service
	stateSvc := task.NewStateService(stateRepo, task.BoardResolverFunc(
		func(ctx context.Context, boardID id.ID) (*project.Board, error) {
			return projectSvc.GetBoard(ctx, boardID)
		}), txManager)
	projectSvc = project.NewService(projectRepo, boardRepo, stateSvc, txManager)

	taskSvc := task.NewService(taskRepo, stateRepo, actionRepo, projectSvc, employeeSvc, fileSvc, txManager)

	hasher := identity.NewBcryptHasher(getEnvInt("BCRYPT_COST", 0))
	identitySvc := identity.NewService(accountRepo, roleRepo, employeeSvc, codec, hasher, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		Pool:         pool,
		TokenDecoder: codec,
		Version:      version,
		Identity:     identitySvc,
		Tenants:      tenantSvc,
		Employees:    employeeSvc,
		Projects:     projectSvc,
		States:       stateSvc,
		Tasks:        taskSvc,
		Files:        fileSvc,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
