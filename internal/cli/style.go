package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/handscript/pkg/core/style"
	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/pipeline"
)

// styleCommand creates the style command, which shows the handwriting
// parameters inferred for a description.
func (c *CLI) styleCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "style <description...>",
		Short: "Show the handwriting inferred from a description",
		Long: `Show the handwriting parameters inferred from a description.

With an AI provider configured the description is interpreted by the model;
otherwise keyword rules apply ("messy", "bold", "tiny", "left-handed", ...).

Examples:
  handscript style neat cursive with blue ink
  handscript style "rushed exam answers" -o yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if err := errors.ValidateStylePrompt(prompt); err != nil {
				return err
			}
			runner := c.newRunner(cmd.Context(), noCache)
			defer runner.Close()

			cfg, src, _ := runner.StyleWithCacheInfo(cmd.Context(), pipeline.Options{StylePrompt: prompt})
			switch output {
			case "":
				printStyle(cfg, string(src))
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			case "yaml":
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
			}
			return errors.New(errors.ErrCodeInvalidFormat, "unknown output %q (valid: json, yaml)", output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "machine-readable output: json or yaml")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")

	return cmd
}

func printStyle(cfg style.Config, source string) {
	font := cfg.Font.Family
	if cfg.Font.Mix {
		font += " (mixed)"
	}
	printKeyValue("source", source)
	printKeyValue("slant", fmt.Sprintf("%+.2f", cfg.Slant))
	printKeyValue("spacing", fmt.Sprintf("%.2f", cfg.Spacing))
	printKeyValue("size", fmt.Sprintf("%.2f", cfg.Size))
	printKeyValue("weight", fmt.Sprintf("%.2f", cfg.Weight))
	printKeyValue("messiness", fmt.Sprintf("%.2f", cfg.Messiness))
	printKeyValue("font", font)
	printKeyValue("color", cfg.Color)
}
