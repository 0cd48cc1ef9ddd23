package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ayaseru/shiori/internal/bus"
	"github.com/ayaseru/shiori/internal/cache"
	"github.com/ayaseru/shiori/internal/command"
	"github.com/ayaseru/shiori/internal/config"
	"github.com/ayaseru/shiori/internal/database"
	"github.com/ayaseru/shiori/internal/handler"
	"github.com/ayaseru/shiori/internal/mal"
	"github.com/ayaseru/shiori/internal/middleware"
	"github.com/ayaseru/shiori/internal/query"
	"github.com/ayaseru/shiori/internal/queue"
	"github.com/ayaseru/shiori/internal/repository"
	"github.com/ayaseru/shiori/internal/router"
	"github.com/ayaseru/shiori/internal/service"
	"github.com/ayaseru/shiori/internal/youtube"
)

// amqpPublisher forwards domain events to RabbitMQ.  Broker failures are
// logged inside the publisher and never fail the request.
type amqpPublisher struct{}

func (amqpPublisher) ShowCompleted(ctx context.Context, ev queue.ShowCompletedEvent) {
	_ = queue_publisher.PublishShowCompleted(ctx, ev)
}
func (amqpPublisher) ImportCompleted(ctx context.Context, ev queue.ImportCompletedEvent) {
	_ = queue_publisher.PublishImportCompleted(ctx, ev)
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional; without it the response cache and rate limiter
	// degrade to pass-throughs.
	rdb := config.NewRedisClient()

	showRepo := repository.NewShowRepo(db)
	songRepo := repository.NewSongRepo(db)
	playlistRepo := repository.NewPlaylistRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	events := amqpPublisher{}

	lru := cache.NewLRU(cfg.QueryCacheSize)
	commands := bus.NewCommandBus(lru, bus.Logging(logger), bus.Validation())
	queries := bus.NewQueryBus(lru, cfg.QueryCacheTTL, bus.Logging(logger), bus.Validation())

	showCmds := &command.ShowHandlers{Shows: showRepo, Overrides: scheduleRepo, Events: events}
	musicCmds := &command.MusicHandlers{
		Songs:     songRepo,
		Playlists: playlistRepo,
		Source:    youtube.NewScraper(),
		Events:    events,
	}
	importCmds := &command.ImportHandlers{Shows: showRepo, Source: mal.NewClient(), Events: events}
	if err := command.Register(commands, showCmds, musicCmds, importCmds); err != nil {
		logger.Fatal("register commands", zap.Error(err))
	}

	showQueries := &query.ShowQueries{Shows: showRepo, Overrides: scheduleRepo}
	musicQueries := &query.MusicQueries{Songs: songRepo, Playlists: playlistRepo}
	if err := query.Register(queries, showQueries, musicQueries); err != nil {
		logger.Fatal("register queries", zap.Error(err))
	}

	// Activity log consumer; keeps retrying if the broker is down.
	go func() {
		if err := queue.StartActivityConsumer(logger); err != nil {
			logger.Warn("activity consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	responseCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), cfg.JWTSecret)
	router.RegisterTracker(e,
		handler.NewShowHandler(commands, queries),
		handler.NewScheduleHandler(commands, queries),
		handler.NewMusicHandler(commands, queries),
		handler.NewImportHandler(commands),
		cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(queries), responseCache)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
