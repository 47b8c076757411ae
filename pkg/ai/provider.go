package ai

import (
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/matzehuels/handscript/pkg/errors"
)

// Supported providers.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMistral   = "mistral"
	ProviderOllama    = "ollama"
)

// Providers lists the provider names accepted by [NewModel].
var Providers = []string{ProviderNone, ProviderOpenAI, ProviderAnthropic, ProviderMistral, ProviderOllama}

// Default model per provider.
var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderMistral:   "mistral-small-latest",
	ProviderOllama:    "llama3.1",
}

// DefaultOllamaHost is used when neither Config.BaseURL nor OLLAMA_HOST is set.
const DefaultOllamaHost = "http://127.0.0.1:11434"

// Config selects and tunes a provider.
type Config struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`

	// APIKeyEnv names the environment variable holding the key. Empty means
	// the provider's conventional variable (OPENAI_API_KEY and so on).
	APIKeyEnv string `toml:"api_key_env"`

	Temperature float64       `toml:"temperature"`
	MaxTokens   int           `toml:"max_tokens"`
	Timeout     time.Duration `toml:"timeout"`
	Attempts    int           `toml:"attempts"`
	RetryDelay  time.Duration `toml:"retry_delay"`
}

// Defaults.
const (
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 8192
	DefaultTimeout     = 90 * time.Second
	DefaultAttempts    = 2
	DefaultRetryDelay  = time.Second
)

// WithDefaults fills zero fields. It is idempotent.
func (c Config) WithDefaults() Config {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderNone
	}
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Attempts <= 0 {
		c.Attempts = DefaultAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// NewModel builds the model for cfg.Provider. It returns (nil, nil) for
// [ProviderNone], and an AI_UNAVAILABLE error when the provider is unknown
// or its credentials are missing.
func NewModel(cfg Config) (llms.Model, error) {
	cfg = cfg.WithDefaults()
	switch cfg.Provider {
	case ProviderNone:
		return nil, nil
	case ProviderOpenAI:
		return createOpenAIClient(cfg)
	case ProviderAnthropic:
		return createAnthropicClient(cfg)
	case ProviderMistral:
		return createMistralClient(cfg)
	case ProviderOllama:
		return createOllamaClient(cfg)
	default:
		return nil, errors.New(errors.ErrCodeAIUnavailable, "unknown AI provider %q (valid: %s)", cfg.Provider, strings.Join(Providers, ", "))
	}
}

func apiKey(cfg Config, fallback string) (string, error) {
	env := cfg.APIKeyEnv
	if env == "" {
		env = fallback
	}
	key := strings.TrimSpace(os.Getenv(env))
	if key == "" {
		return "", errors.New(errors.ErrCodeAIUnavailable, "%s is not set", env)
	}
	return key, nil
}

// createOpenAIClient also serves OpenAI-compatible endpoints via BaseURL.
func createOpenAIClient(cfg Config) (llms.Model, error) {
	key, err := apiKey(cfg, "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(key),
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	return wrapModel(openai.New(opts...))
}

func createAnthropicClient(cfg Config) (llms.Model, error) {
	key, err := apiKey(cfg, "ANTHROPIC_API_KEY")
	if err != nil {
		return nil, err
	}
	opts := []anthropic.Option{
		anthropic.WithModel(cfg.Model),
		anthropic.WithToken(key),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	return wrapModel(anthropic.New(opts...))
}

func createMistralClient(cfg Config) (llms.Model, error) {
	key, err := apiKey(cfg, "MISTRAL_API_KEY")
	if err != nil {
		return nil, err
	}
	opts := []mistral.Option{
		mistral.WithModel(cfg.Model),
		mistral.WithAPIKey(key),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, mistral.WithEndpoint(cfg.BaseURL))
	}
	return wrapModel(mistral.New(opts...))
}

func createOllamaClient(cfg Config) (llms.Model, error) {
	host := cfg.BaseURL
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = DefaultOllamaHost
	}
	return wrapModel(ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(host),
	))
}

// wrapModel converts the concrete client into an llms.Model, mapping
// construction errors to AI_UNAVAILABLE.
func wrapModel(m llms.Model, err error) (llms.Model, error) {
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAIUnavailable, err, "create model")
	}
	return m, nil
}
