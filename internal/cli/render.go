package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/handscript/pkg/errors"
	pkgio "github.com/matzehuels/handscript/pkg/io"
	"github.com/matzehuels/handscript/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	inputOpts
	plan    string  // saved plan to replay instead of an input document
	output  string  // output base path
	formats string  // comma-separated formats
	blank   bool    // unruled paper
	ruled   bool    // force ruled paper over a blank default
	scale   float64 // PNG scale
	title   string  // PDF and SVG title
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a document or a saved plan as handwriting",
		Long: `Render a document or a saved plan as handwriting.

With a document the full pipeline runs: extraction, style inference, layout
planning, composition and rendering. With --plan the saved layout is reused
and only the seed (and, with --style, the handwriting) changes.

SVG and PNG produce one file per sheet (name-1.svg, name-2.svg, ...) when
the document spans several sheets. PDF and JSON produce a single file.

Examples:
  handscript render essay.pdf -f svg,pdf
  handscript render notes.txt --style "tiny, neat, green ink" -o out/notes
  handscript render --plan essay.plan.json --seed 7 -f png --scale 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if input != "" && opts.plan == "" && isPlanFile(input) {
				input, opts.plan = "", input
			}
			if (input == "") == (opts.plan == "") {
				return errors.New(errors.ErrCodeInvalidInput, "give either a document or --plan")
			}
			return c.runRender(cmd, input, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.plan, "plan", "", "saved plan file to render")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input name)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.blank, "blank", false, "render on blank paper")
	cmd.Flags().BoolVar(&opts.ruled, "ruled", false, "render on ruled paper")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, fmt.Sprintf("PNG scale factor (default %.1f, max %.0f)", pipeline.DefaultScale, pipeline.MaxScale))
	cmd.Flags().StringVar(&opts.title, "title", "", "document title for PDF metadata and SVG titles")
	cmd.MarkFlagsMutuallyExclusive("blank", "ruled")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	popts, err := c.renderOptions(cmd, input, opts)
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	stop := func() {}
	if !c.verbose {
		stop = followStages(ctx)
	}
	var res *pipeline.Result
	if opts.plan != "" {
		var doc pkgio.Document
		if doc, err = pkgio.Import(opts.plan); err == nil {
			res, err = runner.Regenerate(ctx, doc, popts.Seed, popts)
		}
	} else {
		res, err = runner.Execute(ctx, popts)
	}
	stop()
	if err != nil {
		return err
	}

	source := input
	if opts.plan != "" {
		source = opts.plan
	}
	paths, err := writeArtifacts(res, basePath(opts.output, source))
	if err != nil {
		return err
	}
	c.recordOutputs(ctx, runner, res.ID, paths, popts.NoHistory)

	printSuccess("Rendered %s", res.Source)
	printStats(res)
	printWarnings(res.Warnings)
	for _, p := range paths {
		printFile(p)
	}
	if res.ID != "" && !popts.NoHistory {
		printDetail("Run %s", res.ID[:min(8, len(res.ID))])
	}
	return nil
}

// renderOptions applies the render flags on top of the shared input flags.
func (c *CLI) renderOptions(cmd *cobra.Command, input string, opts *renderOpts) (pipeline.Options, error) {
	popts, err := c.options(input, &opts.inputOpts, cmd.InOrStdin())
	if err != nil {
		return popts, err
	}
	if opts.plan != "" && opts.style == "" {
		// A plan keeps its own handwriting unless --style asks for another.
		popts.StylePrompt = ""
	}
	if formats := parseFormats(opts.formats); len(formats) > 0 {
		popts.Formats = formats
	}
	switch {
	case opts.blank:
		popts.Blank = true
	case opts.ruled:
		popts.Blank = false
	}
	if opts.scale != 0 {
		popts.Scale = opts.scale
	}
	popts.Title = opts.title
	return popts, nil
}

// writeArtifacts writes every rendered artifact under base and returns the
// paths in format order.
func writeArtifacts(res *pipeline.Result, base string) ([]string, error) {
	var paths []string
	for _, format := range pipeline.ValidFormats {
		files, ok := res.Artifacts[format]
		if !ok {
			continue
		}
		names := artifactPaths(base, format, len(files))
		for i, data := range files {
			if err := writeFile(names[i], data); err != nil {
				return paths, fmt.Errorf("write %s: %w", names[i], err)
			}
		}
		paths = append(paths, names...)
	}
	return paths, nil
}

// recordOutputs adds the written paths to the run's history entry.
func (c *CLI) recordOutputs(ctx context.Context, runner *pipeline.Runner, id string, paths []string, skip bool) {
	if skip || id == "" || len(paths) == 0 {
		return
	}
	e, err := runner.History.Get(ctx, id)
	if err != nil || e == nil {
		return
	}
	e.Outputs = slices.Clone(paths)
	if err := runner.History.Add(ctx, e); err != nil {
		c.Logger.Warn("could not record outputs", "run", id, "error", err)
	}
}
