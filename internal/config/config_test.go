package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/handscript/pkg/ai"
	"github.com/matzehuels/handscript/pkg/cache"
	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/history"
)

// isolate points every lookup at t's temp dir and clears the overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(envXDGConfigHome, filepath.Join(dir, "config"))
	t.Setenv(envXDGCacheHome, filepath.Join(dir, "cache"))
	t.Setenv(envXDGDataHome, filepath.Join(dir, "data"))
	for _, k := range []string{EnvConfig, EnvAIProvider, EnvAIModel, EnvRedisAddr, EnvMongoURI, EnvCacheBackend, EnvHistoryBackend, EnvDefaultStyle, EnvDefaultPaper} {
		t.Setenv(k, "")
	}
	return dir
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.AI.Provider != ai.ProviderNone || cfg.Cache.Backend != BackendFile || cfg.History.Backend != BackendFile {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Server.Addr != def.Server.Addr || cfg.OCR.Language != def.OCR.Language {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
[ai]
provider = "OpenAI"
timeout = "45s"

[render]
style = "neat cursive"
formats = ["svg", "pdf"]
paper = "blank"

[cache]
backend = "none"

[server]
addr = ":9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AI.Provider != ai.ProviderOpenAI || cfg.AI.Model == "" || cfg.AI.Timeout != 45*time.Second {
		t.Errorf("ai = %+v", cfg.AI)
	}
	if cfg.Render.Style != "neat cursive" || len(cfg.Render.Formats) != 2 || cfg.Render.Paper != PaperBlank {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Cache.Backend != BackendNone || cfg.Server.Addr != ":9000" {
		t.Errorf("cfg = %+v", cfg)
	}

	opts := cfg.Options()
	if !opts.Blank || opts.StylePrompt != "neat cursive" || opts.OCRLanguage != "eng" {
		t.Errorf("options = %+v", opts)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[ai\nprovider = 1"},
		{"unknown key", "[ai]\ncolour = \"red\""},
		{"provider", "[ai]\nprovider = \"skynet\""},
		{"cache backend", "[cache]\nbackend = \"memcached\""},
		{"redis without addr", "[cache]\nbackend = \"redis\""},
		{"mongo without uri", "[history]\nbackend = \"mongo\""},
		{"paper", "[render]\npaper = \"graph\""},
		{"format", "[render]\nformats = [\"gif\"]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidInput) && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAIProvider:   "ollama",
		EnvRedisAddr:    "localhost:6379",
		EnvRedisDB:      "3",
		EnvMongoURI:     "mongodb://localhost",
		EnvServerAddr:   ":7000",
		EnvDefaultStyle: "messy",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.AI.Provider != "ollama" || cfg.Server.Addr != ":7000" || cfg.Render.Style != "messy" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.RedisDB != 3 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.History.Backend != BackendMongo || cfg.History.MongoURI != "mongodb://localhost" {
		t.Errorf("history = %+v", cfg.History)
	}

	env[EnvCacheBackend] = "none"
	cfg.ApplyEnv(func(k string) string { return env[k] })
	if cfg.Cache.Backend != BackendNone {
		t.Errorf("explicit backend should win, got %s", cfg.Cache.Backend)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	t.Setenv(EnvAIProvider, "anthropic")
	cfg, err := Load(writeConfig(t, "[ai]\nprovider = \"openai\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AI.Provider != ai.ProviderAnthropic {
		t.Errorf("provider = %s", cfg.AI.Provider)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Render.Style = "bold"
	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	var got Config
	if _, err := toml.Decode(buf.String(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if got.Render.Style != "bold" || got.Server.WriteTimeout != cfg.Server.WriteTimeout {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestPaths(t *testing.T) {
	dir := isolate(t)
	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", Path, filepath.Join(dir, "config", AppName, "config.toml")},
		{"cache", CacheDir, filepath.Join(dir, "cache", AppName)},
		{"data", DataDir, filepath.Join(dir, "data", AppName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil || got != tt.want {
				t.Errorf("got %q, %v; want %q", got, err, tt.want)
			}
		})
	}

	t.Setenv(EnvConfig, "/etc/handscript.toml")
	if p, _ := Path(); p != "/etc/handscript.toml" {
		t.Errorf("Path = %q", p)
	}
}

func TestPathsWithoutXDG(t *testing.T) {
	isolate(t)
	t.Setenv(envXDGCacheHome, "")
	dir, err := CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if dir != filepath.Join(home, ".cache", AppName) {
		t.Errorf("CacheDir = %q", dir)
	}
}

func TestOpenBackends(t *testing.T) {
	dir := isolate(t)
	ctx := context.Background()
	cfg := Default()

	c, err := cfg.OpenCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok || !strings.HasPrefix(fc.Dir(), dir) {
		t.Errorf("cache = %T", c)
	}

	h, err := cfg.OpenHistory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	fs, ok := h.(*history.FileStore)
	if !ok || fs.Path() != filepath.Join(dir, "data", AppName, "history") {
		t.Errorf("history = %T", h)
	}

	cfg.Cache.Backend, cfg.History.Backend = BackendNone, BackendNone
	if c, _ := cfg.OpenCache(ctx); c == nil {
		t.Error("nil cache")
	}
	if h, _ := cfg.OpenHistory(ctx); h == nil {
		t.Error("nil history")
	}
}

func TestOpenRunnerDegrades(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.Cache.Backend = BackendRedis
	cfg.Cache.RedisAddr = "127.0.0.1:1"
	cfg.AI.Provider = "skynet"

	var logs bytes.Buffer
	r := cfg.OpenRunner(context.Background(), false, log.New(&logs))
	if r.AI.Available() {
		t.Error("unknown provider should leave the runner offline")
	}
	if _, ok := r.Cache.(*cache.NullCache); !ok {
		t.Errorf("cache = %T, want NullCache", r.Cache)
	}
	if !strings.Contains(logs.String(), "cache unavailable") {
		t.Errorf("logs = %s", logs.String())
	}
}
