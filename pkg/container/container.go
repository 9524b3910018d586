package container

import (
	"context"
	"fmt"
	"time"

	"bookcatalog-backend/internal/config"
	bookHandler "bookcatalog-backend/internal/domains/book/handler"
	bookRepo "bookcatalog-backend/internal/domains/book/repository"
	bookService "bookcatalog-backend/internal/domains/book/service"
	infraCache "bookcatalog-backend/internal/infrastructure/cache"
	"bookcatalog-backend/internal/infrastructure/database"
	"bookcatalog-backend/internal/infrastructure/external"
	"bookcatalog-backend/internal/infrastructure/jsonfile"
	"bookcatalog-backend/pkg/cache"
	"bookcatalog-backend/pkg/logger"
)

// Container is the root of the dependency graph. Every component is a
// singleton built once at startup, in dependency order: config, then
// infrastructure, then repositories, services and handlers.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  cache.Cache

	OpenLibrary *external.OpenLibraryClient
	JSONBin     *external.JSONBinClient
	FileMirror  *jsonfile.Mirror

	BookRepo    bookRepo.BookRepository
	BookService bookService.ServiceInterface
	BookHandler *bookHandler.Handler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("config loaded", map[string]interface{}{"environment": cfg.App.Environment})

	db := database.NewPostgresDB(&cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	logger.Info("database connected", nil)

	c.Cache = infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Cache.DefaultTTL,
	)
	if err := c.Cache.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("cache connected", nil)

	c.OpenLibrary = external.NewOpenLibraryClient(cfg.OpenLibrary)

	if cfg.JSONBin.APIKey != "" {
		c.JSONBin = external.NewJSONBinClient(cfg.JSONBin)
	} else {
		logger.Info("remote mirror disabled, no API key configured", nil)
	}

	if cfg.FileMirror.Path != "" {
		c.FileMirror = jsonfile.NewMirror(cfg.FileMirror.Path)
	}

	c.BookRepo = bookRepo.NewPostgresRepository(db.Pool)
	c.BookService = bookService.NewService(
		c.BookRepo,
		c.Cache,
		c.OpenLibrary,
		mirrorOrNil(c.JSONBin),
		fileMirrorOrNil(c.FileMirror),
	)
	c.BookHandler = bookHandler.NewHandler(c.BookService)

	return c, nil
}

// mirrorOrNil keeps a nil *JSONBinClient from becoming a non-nil
// interface inside the service.
func mirrorOrNil(client *external.JSONBinClient) bookService.MirrorClient {
	if client == nil {
		return nil
	}
	return client
}

func fileMirrorOrNil(m *jsonfile.Mirror) bookService.FileMirror {
	if m == nil {
		return nil
	}
	return m
}

// Cleanup releases infrastructure connections in reverse order.
func (c *Container) Cleanup() {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logger.Error("failed to close cache connection", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	logger.Info("container cleaned up", nil)
}
