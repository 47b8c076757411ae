package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/handscript/pkg/core/seed"
	pkgio "github.com/matzehuels/handscript/pkg/io"
	"github.com/matzehuels/handscript/pkg/pipeline"
)

// previewCommand creates the preview command: an interactive view of a
// plan where seeds can be tried before anything is rendered.
func (c *CLI) previewCommand() *cobra.Command {
	var opts planOpts

	cmd := &cobra.Command{
		Use:   "preview <file|plan>",
		Short: "Browse a plan interactively and pick a seed",
		Long: `Browse the planned layout of a document page by page.

Press r to try another seed; the sheet and glyph counts update. Press enter
to accept: the plan is saved with the chosen seed, ready for render --plan.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "plan file written on accept (default: <input>.plan.json)")

	return cmd
}

func (c *CLI) runPreview(cmd *cobra.Command, input string, opts *planOpts) error {
	ctx := cmd.Context()
	var res *pipeline.Result

	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	if isPlanFile(input) {
		doc, err := pkgio.Import(input)
		if err != nil {
			return err
		}
		popts, err := c.options("", &opts.inputOpts, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if opts.style == "" {
			popts.StylePrompt = ""
		}
		popts.Document = &doc
		popts.NoHistory = true
		if res, err = runner.Plan(ctx, popts); err != nil {
			return err
		}
	} else {
		popts, err := c.options(input, &opts.inputOpts, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if res, err = runner.Plan(ctx, popts); err != nil {
			return err
		}
	}

	reroll := func() seed.Seed { return seed.Seed(randomSeed()) }
	model := NewPreviewModel(res.Plan, res.Style, res.Seed, reroll)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	m, ok := final.(PreviewModel)
	if !ok || !m.Accepted {
		return nil
	}

	res.Seed = m.Seed
	path := opts.output
	if path == "" {
		path = input
		if !isPlanFile(input) {
			path = planPath(input)
		}
	}
	if err := pkgio.Export(res.Document(), path); err != nil {
		return err
	}
	printSuccess("Saved plan with seed %d", m.Seed)
	printFile(path)
	printNextStep("Render it", "handscript render --plan "+path)
	return nil
}
