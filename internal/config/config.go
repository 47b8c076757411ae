// Package config loads handscript settings.
//
// Settings come from a TOML file, by default
// $XDG_CONFIG_HOME/handscript/config.toml, and are then overridden by
// environment variables. A missing file is not an error.
//
//	[ai]
//	provider = "openai"
//	model = "gpt-4o-mini"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[history]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/handscript/pkg/ai"
	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/extract"
	"github.com/matzehuels/handscript/pkg/pipeline"
)

// AppName names the config, cache and data directories.
const AppName = "handscript"

// Backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvConfig         = "HANDSCRIPT_CONFIG"
	EnvAIProvider     = "HANDSCRIPT_AI_PROVIDER"
	EnvAIModel        = "HANDSCRIPT_AI_MODEL"
	EnvAIBaseURL      = "HANDSCRIPT_AI_BASE_URL"
	EnvOCRLanguage    = "HANDSCRIPT_OCR_LANGUAGE"
	EnvCacheBackend   = "HANDSCRIPT_CACHE"
	EnvRedisAddr      = "HANDSCRIPT_REDIS_ADDR"
	EnvRedisPassword  = "HANDSCRIPT_REDIS_PASSWORD"
	EnvRedisDB        = "HANDSCRIPT_REDIS_DB"
	EnvHistoryBackend = "HANDSCRIPT_HISTORY"
	EnvMongoURI       = "HANDSCRIPT_MONGO_URI"
	EnvServerAddr     = "HANDSCRIPT_ADDR"
	EnvDefaultStyle   = "HANDSCRIPT_STYLE"
	EnvDefaultPaper   = "HANDSCRIPT_PAPER"
)

const (
	envXDGConfigHome   = "XDG_CONFIG_HOME"
	envXDGCacheHome    = "XDG_CACHE_HOME"
	envXDGDataHome     = "XDG_DATA_HOME"
	defaultServerAddr  = ":8080"
	defaultMongoDB     = "handscript"
	defaultMongoRuns   = "runs"
	defaultRedisPrefix = "handscript:"
)

// Config holds all settings.
type Config struct {
	AI      ai.Config     `toml:"ai"`
	OCR     OCRConfig     `toml:"ocr"`
	Render  RenderConfig  `toml:"render"`
	Cache   CacheConfig   `toml:"cache"`
	History HistoryConfig `toml:"history"`
	Server  ServerConfig  `toml:"server"`
}

// OCRConfig configures image extraction.
type OCRConfig struct {
	Language string `toml:"language"`
}

// RenderConfig holds defaults for the plan and render commands.
type RenderConfig struct {
	// Style is a handwriting description used when none is given.
	Style   string   `toml:"style"`
	Formats []string `toml:"formats"`
	Paper   string   `toml:"paper"` // ruled or blank
	Scale   float64  `toml:"scale"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// HistoryConfig selects the run history backend.
type HistoryConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures "handscript serve".
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`

	// MaxUploadBytes bounds request bodies.
	MaxUploadBytes int64 `toml:"max_upload_bytes"`
}

// Paper names.
const (
	PaperRuled = "ruled"
	PaperBlank = "blank"
)

// Default returns the built-in settings: offline AI, file cache and file
// history under the XDG directories.
func Default() Config {
	return Config{
		AI:  ai.Config{Provider: ai.ProviderNone}.WithDefaults(),
		OCR: OCRConfig{Language: extract.DefaultOCRLanguage},
		Render: RenderConfig{
			Formats: []string{pipeline.FormatSVG},
			Paper:   PaperRuled,
			Scale:   pipeline.DefaultScale,
		},
		Cache: CacheConfig{
			Backend:     BackendFile,
			RedisPrefix: defaultRedisPrefix,
		},
		History: HistoryConfig{
			Backend:    BackendFile,
			Database:   defaultMongoDB,
			Collection: defaultMongoRuns,
		},
		Server: ServerConfig{
			Addr:           defaultServerAddr,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   5 * time.Minute,
			MaxUploadBytes: 32 << 20,
		},
	}
}

// Load reads path on top of [Default], applies the environment and
// validates the result. An empty path means [Path]. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		var err error
		if path, err = Path(); err != nil {
			return Config{}, err
		}
	}
	cfg := Default()
	if err := cfg.decodeFile(path); err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.AI = cfg.AI.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides settings from the environment. Setting a Redis address
// or a Mongo URI also selects that backend.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.AI.Provider, EnvAIProvider)
	set(&c.AI.Model, EnvAIModel)
	set(&c.AI.BaseURL, EnvAIBaseURL)
	set(&c.OCR.Language, EnvOCRLanguage)
	set(&c.Render.Style, EnvDefaultStyle)
	set(&c.Render.Paper, EnvDefaultPaper)
	set(&c.Server.Addr, EnvServerAddr)

	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
		c.Cache.Backend = BackendRedis
	}
	set(&c.Cache.RedisPassword, EnvRedisPassword)
	if n, err := strconv.Atoi(getenv(EnvRedisDB)); err == nil {
		c.Cache.RedisDB = n
	}
	set(&c.Cache.Backend, EnvCacheBackend)

	if v := getenv(EnvMongoURI); v != "" {
		c.History.MongoURI = v
		c.History.Backend = BackendMongo
	}
	set(&c.History.Backend, EnvHistoryBackend)
}

// Validate checks backend and provider names and the render defaults.
func (c *Config) Validate() error {
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	c.History.Backend = strings.ToLower(c.History.Backend)
	c.Render.Paper = strings.ToLower(c.Render.Paper)

	if !slices.Contains(ai.Providers, strings.ToLower(c.AI.Provider)) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown AI provider %q (valid: %s)", c.AI.Provider, strings.Join(ai.Providers, ", "))
	}
	if !slices.Contains([]string{BackendNone, BackendFile, BackendRedis}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (valid: none, file, redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache backend redis needs redis_addr or %s", EnvRedisAddr)
	}
	if !slices.Contains([]string{BackendNone, BackendFile, BackendMongo}, c.History.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown history backend %q (valid: none, file, mongo)", c.History.Backend)
	}
	if c.History.Backend == BackendMongo && c.History.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "history backend mongo needs mongo_uri or %s", EnvMongoURI)
	}
	if c.Render.Paper != PaperRuled && c.Render.Paper != PaperBlank {
		return errors.New(errors.ErrCodeInvalidInput, "unknown paper %q (valid: ruled, blank)", c.Render.Paper)
	}
	for _, f := range c.Render.Formats {
		if err := errors.ValidateFormat(f, pipeline.ValidFormats); err != nil {
			return err
		}
	}
	return errors.ValidateStylePrompt(c.Render.Style)
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	return enc.Encode(c)
}

// =============================================================================
// Paths
// =============================================================================

// Path returns the config file location: $HANDSCRIPT_CONFIG, or
// config.toml in [Dir].
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Dir returns the config directory (~/.config/handscript/).
func Dir() (string, error) {
	return xdgDir(envXDGConfigHome, ".config")
}

// CacheDir returns the cache directory (~/.cache/handscript/).
func CacheDir() (string, error) {
	return xdgDir(envXDGCacheHome, ".cache")
}

// DataDir returns the data directory (~/.local/share/handscript/).
func DataDir() (string, error) {
	return xdgDir(envXDGDataHome, filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
