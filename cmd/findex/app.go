package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/findex/internal/config"
	dbRedis "github.com/kailas-cloud/findex/internal/db/redis"
	"github.com/kailas-cloud/findex/internal/domain/search/query"
	"github.com/kailas-cloud/findex/internal/engine/meili"
	logpkg "github.com/kailas-cloud/findex/internal/logger"
	"github.com/kailas-cloud/findex/internal/metrics"
	"github.com/kailas-cloud/findex/internal/repository/embcache"
	"github.com/kailas-cloud/findex/internal/repository/searchcache"
	openaiEmb "github.com/kailas-cloud/findex/internal/transport/openai"
	bootstrapuc "github.com/kailas-cloud/findex/internal/usecase/bootstrap"
	healthuc "github.com/kailas-cloud/findex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/findex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/findex/internal/usecase/search"
	taskuc "github.com/kailas-cloud/findex/internal/usecase/task"
)

// app is the composition root shared by every command.
type app struct {
	env      string
	cfg      config.Config
	logger   *zap.Logger
	engine   *meili.Client
	store    *dbRedis.Store              // nil when the cache is disabled
	cache    *searchcache.CachedSearcher // nil when the cache is disabled
	embedder *openaiEmb.Embedder         // nil without an embedding api key
	tracker  *taskuc.Tracker
}

func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	logger, err := logpkg.NewLogger(flags.env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	// Register engine, cache and task metrics explicitly (no init())
	metrics.Register()

	a := &app{env: flags.env, cfg: cfg, logger: logger}

	a.engine = meili.New(meili.Config{
		Host:    cfg.Engine.Host,
		APIKey:  cfg.Engine.APIKey,
		Timeout: time.Duration(cfg.Engine.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	a.tracker = taskuc.New(a.engine, taskuc.Options{
		Timeout:      time.Duration(cfg.Tasks.TimeoutSec) * time.Second,
		PollInterval: time.Duration(cfg.Tasks.PollIntervalMs) * time.Millisecond,
	}, logger)

	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		a.store = store
		a.cache = searchcache.New(a.engine, store,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.SearchCacheTotal, logger)
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	if cfg.Embedding.APIKey != "" {
		a.embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   "openai",
			Logger:     logger,
		})
	}

	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

// Optional collaborators are returned as interfaces only when present:
// a nil pointer wrapped in an interface is not nil.

func (a *app) cacheInvalidator() ingestuc.CacheInvalidator {
	if a.cache == nil {
		return nil
	}
	return a.cache
}

func (a *app) searcher() searchuc.Searcher {
	if a.cache == nil {
		return nil
	}
	return a.cache
}

func (a *app) queryEmbedder() searchuc.Embedder {
	if a.embedder == nil || !a.cfg.Embedding.ClientSide {
		return nil
	}
	if a.store == nil {
		return a.embedder
	}
	return embcache.New(a.embedder, a.store, embcache.Config{
		Model:      a.cfg.Embedding.Model,
		Dimensions: a.cfg.Embedding.Dimensions,
	}, metrics.EmbeddingCacheTotal, a.logger)
}

func (a *app) searchService() *searchuc.Service {
	return searchuc.New(
		a.engine,
		a.searcher(),
		query.NewCompiler(a.cfg.Engine.Embedder),
		a.queryEmbedder(),
		searchuc.Options{NativeMultiSearch: a.cfg.MultiSearchNative()},
		a.logger,
	)
}

func (a *app) healthService() *healthuc.Service {
	var cache healthuc.CachePinger
	if a.store != nil {
		cache = a.store
	}
	var embedding healthuc.EmbeddingChecker
	if a.embedder != nil {
		embedding = a.embedder
	}
	return healthuc.New(a.engine, cache, embedding)
}

func (a *app) ingestService(batchSize int) *ingestuc.Service {
	if batchSize <= 0 {
		batchSize = a.cfg.Ingest.BatchSize
	}
	return ingestuc.New(a.engine, a.tracker, a.cacheInvalidator(), ingestuc.Options{
		BatchSize:     batchSize,
		BatchesPerSec: a.cfg.Ingest.BatchesPerSec,
	}, a.logger)
}

func (a *app) bootstrapService() *bootstrapuc.Service {
	var emb *bootstrapuc.Embedder
	if a.cfg.Engine.Embedder != "" && (a.cfg.Embedding.APIKey != "" || a.cfg.Embedding.ClientSide) {
		emb = &bootstrapuc.Embedder{
			Name:         a.cfg.Engine.Embedder,
			APIKey:       a.cfg.Embedding.APIKey,
			Model:        a.cfg.Embedding.Model,
			Dimensions:   a.cfg.Embedding.Dimensions,
			UserProvided: a.cfg.Embedding.ClientSide,
		}
	}
	var cache bootstrapuc.CacheInvalidator
	if a.cache != nil {
		cache = a.cache
	}
	return bootstrapuc.New(a.engine, a.tracker, cache, bootstrapuc.Options{Embedder: emb}, a.logger)
}
