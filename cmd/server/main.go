package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mstream "github.com/haowjy/meridian-stream-go"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"contentpilot/internal/auth"
	"contentpilot/internal/catalog"
	"contentpilot/internal/config"
	"contentpilot/internal/domain/repositories"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/events"
	"contentpilot/internal/handler"
	"contentpilot/internal/middleware"
	"contentpilot/internal/repository/memory"
	"contentpilot/internal/repository/postgres"
	"contentpilot/internal/service"
	"contentpilot/internal/service/content"
	"contentpilot/internal/service/generation"
	serviceLLM "contentpilot/internal/service/llm"
	"contentpilot/internal/wordpress"
)

// storage groups the repositories of the selected backend.
type storage struct {
	sites     repositories.SiteRepository
	personas  repositories.PersonaRepository
	projects  repositories.ProjectRepository
	articles  repositories.ArticleRepository
	settings  repositories.UserSettingsRepository
	txManager repositories.TransactionManager
	close     func()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"default_model", cfg.DefaultModel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create JWT verifier for identity tokens
	jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.AuthJWKSURL, cfg.FirebaseProjectID, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	identity := auth.NewIdentityClient(cfg.IdentityBaseURL, cfg.FirebaseAPIKey, logger)

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.close()

	eventPublisher, closeEvents := setupEvents(cfg, logger)
	defer closeEvents()

	// Setup LLM providers
	resolver, err := serviceLLM.SetupProviders(cfg, store.settings, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}

	modelCatalog, err := catalog.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load model catalog: %v", err)
	}
	for _, ref := range []string{cfg.DefaultModel, cfg.HumanizeModel, cfg.PersonaModel} {
		if _, err := modelCatalog.Lookup(ref); err != nil {
			logger.Warn("configured model is not in the catalog", "model", ref)
		}
	}

	wpClient := wordpress.NewClient(wordpress.Config{
		RequestsPerSecond: cfg.WordPressRateLimit,
		Burst:             cfg.WordPressBurst,
		Timeout:           cfg.WordPressTimeout,
	}, nil, logger)

	// Services
	siteService := content.NewSiteService(store.sites, store.projects, store.txManager, wpClient, logger)
	personaService := content.NewPersonaService(store.personas, store.sites, store.projects, store.articles,
		store.txManager, resolver, cfg.PersonaModel, logger)
	projectService := content.NewProjectService(store.projects, store.sites, store.personas, logger)
	articleService := content.NewArticleService(store.articles, store.projects, store.sites, store.personas,
		store.txManager, eventPublisher, logger)
	settingsService := service.NewUserSettingsService(store.settings, logger)
	publishingService := service.NewPublishingService(store.articles, store.projects, store.sites, store.settings,
		store.txManager, wpClient, eventPublisher, logger)

	streamRegistry := mstream.NewRegistry()
	generationService := generation.NewService(
		store.articles,
		store.projects,
		store.sites,
		store.personas,
		resolver,
		publishingService,
		generation.NewScraper(&http.Client{Timeout: 20 * time.Second}, 5),
		eventPublisher,
		streamRegistry,
		generation.Config{
			DefaultModel:  cfg.DefaultModel,
			HumanizeModel: cfg.HumanizeModel,
			StageTimeout:  cfg.GenerationStageTimeout,
		},
		logger,
	)

	// Articles left in "generation" by a previous process
	if n, err := generationService.RecoverStale(ctx, cfg.GenerationStaleAfter); err != nil {
		logger.Error("failed to recover stale generations", "error", err)
	} else if n > 0 {
		logger.Warn("recovered stale generations", "count", n)
	}

	// Handlers
	authHandler := handler.NewAuthHandler(identity, logger)
	siteHandler := handler.NewSiteHandler(siteService, logger)
	personaHandler := handler.NewPersonaHandler(personaService, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	articleHandler := handler.NewArticleHandler(articleService, logger)
	generationHandler := handler.NewGenerationHandler(generationService, publishingService, logger)
	settingsHandler := handler.NewUserSettingsHandler(settingsService, logger)
	catalogHandler := handler.NewCatalogHandler(cfg, logger, modelCatalog)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Auth routes (public)
	mux.HandleFunc("POST /api/auth/signup", authHandler.SignUp)
	mux.HandleFunc("POST /api/auth/signin", authHandler.SignIn)
	mux.HandleFunc("POST /api/auth/google", authHandler.SignInWithGoogle)
	mux.HandleFunc("GET /api/me", authHandler.Me)

	// Site routes
	mux.HandleFunc("GET /api/sites", siteHandler.ListSites)
	mux.HandleFunc("POST /api/sites", siteHandler.CreateSite)
	mux.HandleFunc("GET /api/sites/{id}", siteHandler.GetSite)
	mux.HandleFunc("PATCH /api/sites/{id}", siteHandler.UpdateSite)
	mux.HandleFunc("DELETE /api/sites/{id}", siteHandler.DeleteSite)
	mux.HandleFunc("POST /api/sites/{id}/sync", siteHandler.SyncSite)

	// Persona routes
	mux.HandleFunc("GET /api/personas", personaHandler.ListPersonas)
	mux.HandleFunc("POST /api/personas", personaHandler.CreatePersona)
	mux.HandleFunc("POST /api/personas/generate", personaHandler.GeneratePersona)
	mux.HandleFunc("GET /api/personas/{id}", personaHandler.GetPersona)
	mux.HandleFunc("PATCH /api/personas/{id}", personaHandler.UpdatePersona)
	mux.HandleFunc("DELETE /api/personas/{id}", personaHandler.DeletePersona)

	// Project routes
	mux.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)
	mux.HandleFunc("GET /api/projects/{id}/articles", articleHandler.ListProjectArticles)
	mux.HandleFunc("POST /api/projects/{id}/articles", articleHandler.CreateArticle)

	// Article routes
	mux.HandleFunc("GET /api/articles", articleHandler.ListArticles)
	mux.HandleFunc("GET /api/articles/{id}", articleHandler.GetArticle)
	mux.HandleFunc("PATCH /api/articles/{id}", articleHandler.UpdateArticle)
	mux.HandleFunc("DELETE /api/articles/{id}", articleHandler.DeleteArticle)
	mux.HandleFunc("GET /api/articles/{id}/prompt", articleHandler.GetPrompt)
	mux.HandleFunc("POST /api/articles/{id}/generate", generationHandler.StartGeneration)
	mux.HandleFunc("POST /api/articles/{id}/generation/cancel", generationHandler.CancelGeneration)
	mux.HandleFunc("POST /api/articles/{id}/publish", generationHandler.PublishArticle)

	// Catalog routes
	mux.HandleFunc("GET /api/content-types", catalogHandler.GetContentTypes)
	mux.HandleFunc("GET /api/models", catalogHandler.GetModels)

	// User settings routes
	mux.HandleFunc("GET /api/users/me/settings", settingsHandler.GetSettings)
	mux.HandleFunc("PATCH /api/users/me/settings", settingsHandler.UpdateSettings)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute, // persona generation waits on the LLM
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openStorage picks Postgres when DATABASE_URL is set and the in-memory store otherwise.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set - using in-memory store, data is lost on restart")
		mem := memory.NewStore()
		return &storage{
			sites:     mem.Sites(),
			personas:  mem.Personas(),
			projects:  mem.Projects(),
			articles:  mem.Articles(),
			settings:  mem.UserSettings(),
			txManager: mem.TxManager(),
			close:     func() {},
		}, nil
	}

	if cfg.AutoMigrate {
		applied, err := postgres.Migrate(cfg.DatabaseURL, "up", 0)
		if err != nil {
			return nil, err
		}
		logger.Info("migrations checked", "applied", applied)
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.DefaultPoolSettings)
	if err != nil {
		return nil, err
	}

	logger.Info("database connected",
		"max_conns", postgres.DefaultPoolSettings.MaxConns,
		"min_conns", postgres.DefaultPoolSettings.MinConns,
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Logger: logger,
	}
	return &storage{
		sites:     postgres.NewSiteRepository(repoConfig),
		personas:  postgres.NewPersonaRepository(repoConfig),
		projects:  postgres.NewProjectRepository(repoConfig),
		articles:  postgres.NewArticleRepository(repoConfig),
		settings:  postgres.NewUserSettingsRepository(repoConfig),
		txManager: postgres.NewTransactionManager(pool, logger),
		close:     pool.Close,
	}, nil
}

// setupEvents returns the RabbitMQ publisher when RABBITMQ_URL is set, else a log-only one.
func setupEvents(cfg *config.Config, logger *slog.Logger) (services.EventPublisher, func()) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set - events are only logged")
		return events.NewLogPublisher(logger), func() {}
	}

	broker, err := events.NewRabbitMQ(events.Config{
		URL:        cfg.RabbitMQURL,
		Exchange:   cfg.RabbitMQExchange,
		RoutingKey: cfg.RabbitMQRoutingKey,
		QueueName:  cfg.RabbitMQQueue,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	logger.Info("event bus connected", "exchange", cfg.RabbitMQExchange)
	return broker, func() { _ = broker.Close() }
}
