package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/handscript/pkg/core/plan"
	pkgio "github.com/matzehuels/handscript/pkg/io"
)

// planOpts holds the flags for the plan command.
type planOpts struct {
	inputOpts
	output string // plan file path, "-" for stdout
}

// planCommand creates the plan command. It runs extraction, style inference
// and layout planning and saves the result as a plan file that render
// --plan can replay with any seed.
func (c *CLI) planCommand() *cobra.Command {
	var opts planOpts

	cmd := &cobra.Command{
		Use:   "plan <file|->",
		Short: "Plan the handwritten layout of a document",
		Long: `Plan the handwritten layout of a document and save it as a plan file.

The input may be a text file, a PDF or an image (with OCR support). Use "-"
to read text from standard input. The plan file is JSON or YAML, chosen by
the output extension, and can be edited before rendering.

Examples:
  handscript plan essay.pdf                       # writes essay.plan.json
  handscript plan notes.txt -o notes.yaml --style "rushed, slanted"
  cat notes.txt | handscript plan - -o -          # plan to stdout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `plan file (.json, .yaml or .yml; "-" for stdout)`)

	return cmd
}

func (c *CLI) runPlan(cmd *cobra.Command, input string, opts *planOpts) error {
	ctx := cmd.Context()
	popts, err := c.options(input, &opts.inputOpts, cmd.InOrStdin())
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Plan(ctx, popts)
	if err != nil {
		return err
	}
	prog.done("Planned " + plural(res.Plan.LineCount(), "line"))

	doc := res.Document()
	if opts.output == "-" {
		return pkgio.Write(doc, cmd.OutOrStdout(), pkgio.EncodingJSON)
	}

	path := opts.output
	if path == "" {
		path = planPath(input)
	}
	if err := pkgio.Export(doc, path); err != nil {
		return err
	}

	printSuccess("Planned %s", res.Source)
	printStats(res)
	printWarnings(res.Warnings)
	printSolutions(res.Solutions)
	printFile(path)
	printNextStep("Render it", "handscript render --plan "+path+" --reroll")
	return nil
}

// printSolutions lists the question records found in the text with the
// number of plan lines that write each one.
func printSolutions(sols []plan.Solution) {
	printInfo("Found %s", plural(len(sols), "question"))
	for _, s := range sols {
		where := plural(len(s.LinePlans), "line")
		if s.PageNumber > 0 {
			where += fmt.Sprintf(", page %d", s.PageNumber)
		}
		printDetail("%-4s %s (%s)", s.ID, truncate(s.QuestionText, 40), where)
	}
}

// planPath derives a plan file name from the input path.
func planPath(input string) string {
	if input == "-" {
		return "handscript.plan.json"
	}
	return basePath("", input) + ".plan.json"
}

// isPlanFile reports whether path looks like a saved plan.
func isPlanFile(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".plan.json", ".plan.yaml", ".plan.yml"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
