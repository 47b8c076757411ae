package config

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/handscript/pkg/ai"
	"github.com/matzehuels/handscript/pkg/cache"
	"github.com/matzehuels/handscript/pkg/history"
	"github.com/matzehuels/handscript/pkg/pipeline"
)

// OpenCache opens the configured cache backend. A file cache with no
// directory configured lives in [CacheDir].
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   c.Cache.RedisPrefix,
		})
	}
	dir := c.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = CacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// OpenHistory opens the configured history backend. A file store with no
// directory configured lives in DataDir()/history.
func (c Config) OpenHistory(ctx context.Context) (history.Store, error) {
	switch c.History.Backend {
	case BackendNone:
		return history.NullStore{}, nil
	case BackendMongo:
		return history.NewMongoStore(ctx, history.MongoOptions{
			URI:        c.History.MongoURI,
			Database:   c.History.Database,
			Collection: c.History.Collection,
		})
	}
	dir := c.History.Dir
	if dir == "" {
		data, err := DataDir()
		if err != nil {
			return history.NullStore{}, nil
		}
		dir = filepath.Join(data, "history")
	}
	return history.NewFileStore(dir)
}

// OpenRunner builds a pipeline runner from the configuration. Cache and
// history backends that fail to open are logged and replaced by no-op
// backends; the AI provider degrades to offline the same way.
func (c Config) OpenRunner(ctx context.Context, noCache bool, logger *log.Logger) *pipeline.Runner {
	var store cache.Cache = cache.NewNullCache()
	if !noCache {
		s, err := c.OpenCache(ctx)
		if err != nil {
			logger.Warn("cache unavailable, continuing without it", "backend", c.Cache.Backend, "error", err)
		} else {
			store = s
		}
	}

	r := pipeline.NewRunner(store, nil, logger)
	r.AI = ai.Open(c.AI, logger)

	h, err := c.OpenHistory(ctx)
	if err != nil {
		logger.Warn("history unavailable, runs will not be recorded", "backend", c.History.Backend, "error", err)
	} else {
		r.History = h
	}
	return r
}

// Options returns pipeline options prefilled with the render defaults.
func (c Config) Options() pipeline.Options {
	return pipeline.Options{
		OCRLanguage: c.OCR.Language,
		StylePrompt: c.Render.Style,
		Formats:     append([]string(nil), c.Render.Formats...),
		Blank:       c.Render.Paper == PaperBlank,
		Scale:       c.Render.Scale,
	}
}
