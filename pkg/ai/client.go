package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/httputil"
	"github.com/matzehuels/handscript/pkg/observability"
)

// Client wraps a model with the style and layout prompts. A Client with no
// model is valid: every call takes its offline path.
type Client struct {
	model  llms.Model
	cfg    Config
	logger *log.Logger
}

// NewClient returns a client for model. A nil logger discards output.
func NewClient(model llms.Model, cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{model: model, cfg: cfg.WithDefaults(), logger: logger}
}

// Open builds the model for cfg and wraps it. A provider that cannot be
// constructed is logged and leaves the client offline.
func Open(cfg Config, logger *log.Logger) *Client {
	c := NewClient(nil, cfg, logger)
	model, err := NewModel(cfg)
	if err != nil {
		c.logger.Warn("AI provider unavailable, using local heuristics", "provider", c.cfg.Provider, "error", err)
		return c
	}
	c.model = model
	return c
}

// Available reports whether a model is configured.
func (c *Client) Available() bool { return c != nil && c.model != nil }

// Provider returns the configured provider name.
func (c *Client) Provider() string { return c.cfg.Provider }

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

// generate sends one system and one user message and returns the text of
// the first choice. Provider failures are retried; cancellation is not.
func (c *Client) generate(ctx context.Context, task, system, prompt string) (out string, err error) {
	if !c.Available() {
		return "", errors.New(errors.ErrCodeAIUnavailable, "no AI provider configured")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	observability.AI().OnRequest(ctx, c.cfg.Provider, task)
	defer func() { observability.AI().OnResponse(ctx, c.cfg.Provider, task, time.Since(start), err) }()

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: system}}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: prompt}}},
	}

	err = httputil.Retry(ctx, c.cfg.Attempts, c.cfg.RetryDelay, func() error {
		resp, err := c.model.GenerateContent(ctx, messages,
			llms.WithTemperature(c.cfg.Temperature),
			llms.WithMaxTokens(c.cfg.MaxTokens),
		)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Debug("AI request failed", "provider", c.cfg.Provider, "error", err)
			return httputil.Retryable(classify(err))
		}
		if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
			return errors.New(errors.ErrCodeAIUnavailable, "empty response")
		}
		out = resp.Choices[0].Content
		return nil
	})
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return "", errors.Wrap(errors.ErrCodeTimeout, err, "AI request timed out")
		}
		if rl := new(errors.RateLimitedError); stderrors.As(err, &rl) {
			return "", errors.Wrap(errors.ErrCodeRateLimited, err, "AI provider rate limit reached")
		}
		return "", errors.Wrap(errors.ErrCodeAIUnavailable, err, "AI request failed")
	}
	return out, nil
}

// classify turns provider rate-limit responses into [errors.RateLimitedError].
// Providers report them only through the error text.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "429") && !strings.Contains(msg, "rate limit") {
		return err
	}
	rl := &errors.RateLimitedError{Message: err.Error()}
	if i := strings.Index(msg, "retry after "); i >= 0 {
		fmt.Sscanf(msg[i+len("retry after "):], "%d", &rl.RetryAfter)
	}
	return rl
}

// extractJSON returns the outermost JSON object in text, dropping Markdown
// code fences and any prose around it.
func extractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
