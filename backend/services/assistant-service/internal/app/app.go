package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "chargeassist/backend/libs/db"
	libredis "chargeassist/backend/libs/redis"
	"chargeassist/backend/services/assistant-service/internal/clients"
	"chargeassist/backend/services/assistant-service/internal/config"
	httpserver "chargeassist/backend/services/assistant-service/internal/http"
	"chargeassist/backend/services/assistant-service/internal/http/handlers"
	"chargeassist/backend/services/assistant-service/internal/http/middleware"
	redisstore "chargeassist/backend/services/assistant-service/internal/redis"
	"chargeassist/backend/services/assistant-service/internal/repository"
	"chargeassist/backend/services/assistant-service/internal/service"
	"chargeassist/backend/services/assistant-service/internal/ws"
)

// App wires assistant-service dependencies.
type App struct {
	server      *httpserver.Server
	manager     *ws.Manager
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph. Postgres and JWT are optional;
// without a DSN search history endpoints stay unregistered, without a
// JWT secret session identity falls back to the X-Session-ID header.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	redisClient, err := libredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	var sqlDB *sql.DB
	var searchLog service.SearchLogger
	if cfg.Database.DSN != "" {
		sqlDB, err = libdb.Open(ctx, cfg.Database.DSN)
		if err != nil {
			redisClient.Close()
			return nil, err
		}
		searchLog = repository.NewSearchLogRepository(sqlDB)
	}

	directory := clients.NewDirectoryClient(
		cfg.Directory.BaseURL,
		cfg.Directory.APIKey,
		clients.NewDefaultHTTPClient(cfg.DirectoryTimeout()),
		logger,
	)
	generator := clients.NewGenerationClient(
		cfg.Generation.BaseURL,
		cfg.Generation.APIKey,
		cfg.Generation.Model,
		cfg.Generation.MaxTokens,
		cfg.Generation.Temperature,
		clients.NewDefaultHTTPClient(cfg.GenerationTimeout()),
		logger,
	)

	sessionStore := redisstore.NewStore(redisClient, cfg.SessionTTL())

	assistant := service.NewAssistantService(directory, generator, sessionStore, searchLog, service.Options{
		HistoryLimit:    cfg.Chat.HistoryLimit,
		MaxStoredTurns:  cfg.Chat.MaxStoredTurns,
		ContextStations: cfg.Chat.ContextStations,
		DefaultRadiusKm: cfg.Chat.DefaultRadiusKm,
		MaxResults:      cfg.Directory.MaxResults,
	}, logger)

	var tokens *service.TokenService
	var httpValidator middleware.TokenValidator
	var wsValidator ws.TokenValidator
	if cfg.JWT.Secret != "" {
		tokens = service.NewTokenService(cfg.JWT.Secret, cfg.TokenTTL())
		httpValidator = tokens
		wsValidator = tokens
	}

	manager := ws.NewManager(cfg.PingInterval())
	processor := ws.NewChatProcessor(assistant, logger)
	wsServer := ws.NewServer(manager, processor, assistant, wsValidator, cfg.WriteTimeout(), logger)

	deps := httpserver.RouterDeps{
		Sessions:       handlers.NewSessionsHandler(assistant, tokens, logger),
		Chat:           handlers.NewChatHandler(assistant, logger),
		Search:         handlers.NewSearchHandler(assistant, logger),
		Health:         handlers.NewHealthHandler(),
		WSChat:         wsServer.HandleWS,
		TokenValidator: httpValidator,
		Logger:         logger,
	}
	if searchLog != nil {
		deps.RecentSearches = handlers.NewRecentSearchesHandler(assistant, logger)
	}

	router := httpserver.NewRouter(deps)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		manager:     manager,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the websocket ping loop and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	go a.manager.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
