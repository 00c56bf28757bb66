package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/huhsame/instructor-scout-go/internal/config"
	"github.com/huhsame/instructor-scout-go/internal/domain"
	"github.com/huhsame/instructor-scout-go/internal/server"
	"github.com/huhsame/instructor-scout-go/internal/service"
	"github.com/huhsame/instructor-scout-go/internal/service/cache"
	"github.com/huhsame/instructor-scout-go/internal/service/person"
	"github.com/huhsame/instructor-scout-go/internal/service/relevance"
	"github.com/huhsame/instructor-scout-go/internal/service/sheet"
	"github.com/huhsame/instructor-scout-go/internal/service/synopsis"
	"github.com/huhsame/instructor-scout-go/internal/service/youtube"
	"go.uber.org/zap"
)

// Container bundles the assembled services behind the HTTP handler.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Scout   *service.Scout
	Roster  domain.InstructorStore
	Handler http.Handler

	closers []func()
}

// Close releases held resources in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles the full dependency graph. All heavy-weight initialization
// (cache backend, roster download, model clients) happens here so the serving
// layer stays pure orchestration.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Cache backend
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Host:     cfg.Cache.Host,
			Port:     cfg.Cache.Port,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		store = redisStore
	default:
		store = cache.NewMemoryStore()
	}
	closers = append(closers, func() {
		_ = store.Close()
	})

	// Instructor roster
	var roster domain.InstructorStore
	switch {
	case cfg.Roster.CSVFile != "":
		roster, err = sheet.NewStoreFromFile(cfg.Roster.CSVFile, logger)
	case cfg.Roster.CSVURL != "":
		roster, err = sheet.NewStoreFromURL(ctx, cfg.Roster.CSVURL, logger)
	default:
		logger.Info("No roster source configured, running with an empty roster")
		roster = sheet.NewEmptyStore(logger)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load instructor roster: %w", err)
	}

	// Optional Data API backup for discovery
	var apiBackup *youtube.APIService
	if cfg.YouTube.APIKey != "" {
		apiBackup, err = youtube.NewAPIService(ctx, cfg.YouTube.APIKey, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube API backup: %w", err)
		}
	}

	generator, err := synopsis.NewGenerator(ctx, synopsis.GeneratorConfig{
		GeminiAPIKey: cfg.Gemini.APIKey,
		OpenAIAPIKey: openAIKeyIfEnabled(cfg),
		Models:       cfg.Synopsis.Models,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create synopsis generator: %w", err)
	}

	scout := service.NewScout(service.ScoutDeps{
		Person:      person.NewClient(logger),
		Discovery:   youtube.NewDiscovery(relevance.NewFilter(), apiBackup, logger),
		Resolver:    youtube.NewResolver(logger),
		Transcripts: youtube.NewTranscriptFetcher(logger),
		Metadata:    youtube.NewMetadataClient(logger),
		Generator:   generator,
		Store:       store,
		Lang:        cfg.Synopsis.TranscriptLang,
	}, logger)

	srv := server.New(scout, roster, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Scout:   scout,
		Roster:  roster,
		Handler: srv.Routes(),
		closers: closers,
	}, nil
}

func openAIKeyIfEnabled(cfg *config.Config) string {
	if !cfg.OpenAI.EnableFallback {
		return ""
	}
	return cfg.OpenAI.APIKey
}
