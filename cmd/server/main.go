package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"promptvault/internal/config"
	"promptvault/internal/enhance"
	"promptvault/internal/handler"
	"promptvault/internal/middleware"
	"promptvault/internal/repository/postgres"
	"promptvault/internal/service"
	"promptvault/internal/service/ordering"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names and make sure the schema exists
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	promptRepo := postgres.NewPromptRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Group locks serialize reorders within one ordered group
	locks := ordering.NewGroupLocks()

	// Setup the enhancement collaborator
	presets, err := enhance.NewPresetRegistry()
	if err != nil {
		log.Fatalf("Failed to load enhancement presets: %v", err)
	}
	enhancer, err := enhance.NewEnhancer(cfg.AnthropicAPIKey, cfg.EnhanceModel, cfg.EnhanceTimeout, presets, logger)
	if err != nil {
		log.Fatalf("Failed to setup enhancer: %v", err)
	}
	logger.Info("enhancer initialized", "model", cfg.EnhanceModel)

	// Create services
	folderService := service.NewFolderService(folderRepo, txManager, locks, logger)
	promptService := service.NewPromptService(promptRepo, folderRepo, txManager, locks, logger)
	projectService := service.NewProjectService(projectRepo, txManager, locks, logger)

	// The root folder must exist before anything can be filed under it
	if err := folderService.EnsureRoot(ctx); err != nil {
		log.Fatalf("Failed to ensure root folder: %v", err)
	}

	// Create handlers
	folderHandler := handler.NewFolderHandler(folderService, logger)
	promptHandler := handler.NewPromptHandler(promptService, enhancer, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Folder routes
	mux.HandleFunc("GET /api/folders/tree", folderHandler.GetTree)
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("POST /api/folders/reorder", folderHandler.ReorderFolders)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.RenameFolder)
	mux.HandleFunc("POST /api/folders/{id}/move", folderHandler.MoveFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// Prompt routes
	mux.HandleFunc("GET /api/prompts", promptHandler.ListPrompts)
	mux.HandleFunc("GET /api/prompts/search", promptHandler.SearchPrompts) // Must come before {id} route
	mux.HandleFunc("GET /api/prompts/easy-access", promptHandler.ListEasyAccess)
	mux.HandleFunc("POST /api/prompts/easy-access/reorder", promptHandler.ReorderEasyAccess)
	mux.HandleFunc("POST /api/prompts", promptHandler.CreatePrompt)
	mux.HandleFunc("POST /api/prompts/reorder", promptHandler.ReorderPrompts)
	mux.HandleFunc("GET /api/prompts/{id}", promptHandler.GetPrompt)
	mux.HandleFunc("PATCH /api/prompts/{id}", promptHandler.UpdatePrompt)
	mux.HandleFunc("DELETE /api/prompts/{id}", promptHandler.DeletePrompt)
	mux.HandleFunc("POST /api/prompts/{id}/move", promptHandler.MovePrompt)
	mux.HandleFunc("POST /api/prompts/{id}/duplicate", promptHandler.DuplicatePrompt)
	mux.HandleFunc("POST /api/prompts/{id}/easy-access", promptHandler.SetEasyAccess)
	mux.HandleFunc("POST /api/prompts/{id}/enhance", promptHandler.EnhancePrompt)
	mux.HandleFunc("POST /api/prompts/{id}/apply-enhancement", promptHandler.ApplyEnhancement)

	// Project routes
	mux.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("POST /api/projects/reorder", projectHandler.ReorderProjects)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Request logging → Routes
	root = middleware.RequestLogger(logger)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server. The write timeout leaves headroom for the
	// synchronous enhancement call.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.EnhanceTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
