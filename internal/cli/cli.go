// Package cli implements the handscript command-line interface.
package cli

import (
	"context"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/handscript/internal/config"
	"github.com/matzehuels/handscript/pkg/buildinfo"
	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/observability"
	"github.com/matzehuels/handscript/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// skipConfig marks commands that run without loading the config file.
const skipConfig = "skip-config"

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "handscript",
		Short: "Handscript turns documents into handwritten pages",
		Long: `Handscript extracts text from a document, plans a notebook layout for it
and renders the result as seeded handwriting on ruled paper.

The same plan and seed always produce the same pages. Save a plan with
"handscript plan" and render it again with a different seed to get a new
hand for the same layout.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/handscript/config.toml)")

	root.AddCommand(c.planCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.styleCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup applies --verbose and loads the configuration.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.NewLogHooks(c.Logger).Register()
	}
	if cmd.Annotations[skipConfig] != "" {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) *pipeline.Runner {
	return c.Config.OpenRunner(ctx, noCache, c.Logger)
}

// =============================================================================
// Input Flags
// =============================================================================

// inputOpts holds the flags shared by commands that run the pipeline.
type inputOpts struct {
	style     string // handwriting description
	seed      int64
	reroll    bool // pick a random seed
	ocrLang   string
	refresh   bool
	noCache   bool
	noHistory bool
}

func (o *inputOpts) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.style, "style", "s", "", `handwriting description, e.g. "neat cursive, blue ink"`)
	f.Int64Var(&o.seed, "seed", 0, "seed for the handwriting (default 42, or the plan's seed)")
	f.BoolVar(&o.reroll, "reroll", false, "use a random seed")
	f.StringVar(&o.ocrLang, "ocr-lang", "", "tesseract language for image input")
	f.BoolVar(&o.refresh, "refresh", false, "bypass cached extraction, style and plan results")
	f.BoolVar(&o.noCache, "no-cache", false, "disable the cache")
	f.BoolVar(&o.noHistory, "no-history", false, "do not record the run")
	cmd.MarkFlagsMutuallyExclusive("seed", "reroll")
}

// options builds pipeline options for input on top of the configured
// defaults. An input of "-" reads standard input.
func (c *CLI) options(input string, o *inputOpts, stdin io.Reader) (pipeline.Options, error) {
	opts := c.Config.Options()
	opts.Logger = c.Logger
	switch input {
	case "":
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		opts.Data, opts.Name = data, "stdin.txt"
	default:
		opts.Input = input
	}
	if o.style != "" {
		opts.StylePrompt = o.style
	}
	if o.ocrLang != "" {
		opts.OCRLanguage = o.ocrLang
	}
	opts.Seed = o.seed
	if o.reroll {
		opts.Seed = randomSeed()
	}
	opts.Refresh = o.refresh
	opts.NoHistory = o.noHistory
	return opts, nil
}

func randomSeed() int64 {
	return rand.Int64N(errors.MaxSeed) + 1
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, strings.ToLower(f))
		}
	}
	return formats
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "" || input == "-" {
			return "handscript"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	for _, f := range pipeline.ValidFormats {
		if strings.EqualFold(ext, "."+f) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// artifactPaths names the files for n artifacts of format. A single
// artifact is base.format; several are base-1.format, base-2.format and so on.
func artifactPaths(base, format string, n int) []string {
	if n == 1 {
		return []string{base + "." + format}
	}
	paths := make([]string, n)
	for i := range paths {
		paths[i] = base + "-" + strconv.Itoa(i+1) + "." + format
	}
	return paths
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
