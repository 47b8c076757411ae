package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/handscript/pkg/errors"
	"github.com/matzehuels/handscript/pkg/history"
)

// historyCommand creates the history command and its subcommands.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), func(s history.Store) error {
				entries, err := s.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					printInfo("No runs recorded")
					return nil
				}
				fmt.Fprintln(out, historyTable(entries))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show (0 for all)")

	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyDeleteCommand())
	cmd.AddCommand(c.historyClearCommand())

	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run; an unambiguous ID prefix is enough",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), func(s history.Store) error {
				e, err := resolveEntry(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				printEntry(e)
				return nil
			})
		},
	}
}

func (c *CLI) historyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), func(s history.Store) error {
				e, err := resolveEntry(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				if err := s.Delete(cmd.Context(), e.ID); err != nil {
					return err
				}
				printSuccess("Deleted run %s", e.ShortID())
				return nil
			})
		},
	}
}

func (c *CLI) historyClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHistory(cmd.Context(), func(s history.Store) error {
				n, err := s.Clear(cmd.Context())
				if err != nil {
					return err
				}
				printSuccess("Cleared %s", plural(n, "run"))
				return nil
			})
		},
	}
}

func (c *CLI) withHistory(ctx context.Context, fn func(history.Store) error) error {
	s, err := c.Config.OpenHistory(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func resolveEntry(ctx context.Context, s history.Store, prefix string) (*history.Entry, error) {
	e, err := history.Resolve(ctx, s, prefix)
	switch {
	case stderrors.Is(err, history.ErrAmbiguous):
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%q matches several runs; give more of the ID", prefix)
	case err != nil:
		return nil, err
	case e == nil:
		return nil, errors.New(errors.ErrCodeFileNotFound, "no run matches %q", prefix)
	}
	return e, nil
}

func historyTable(entries []history.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.ShortID(),
			formatAge(e.CreatedAt),
			truncate(e.Source, 32),
			strconv.Itoa(e.Sheets),
			strconv.FormatInt(e.Seed, 10),
			e.PlanOrigin,
			joinComma(e.Formats),
		}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Run", "When", "Source", "Sheets", "Seed", "Plan", "Formats").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 1:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func printEntry(e *history.Entry) {
	printKeyValue("run", e.ID)
	printKeyValue("when", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	printKeyValue("source", fmt.Sprintf("%s (%s)", e.Source, e.Kind))
	printKeyValue("pages", strconv.Itoa(e.Pages))
	printKeyValue("lines", strconv.Itoa(e.Lines))
	printKeyValue("sheets", strconv.Itoa(e.Sheets))
	printKeyValue("seed", strconv.FormatInt(e.Seed, 10))
	printKeyValue("plan", e.PlanOrigin)
	printKeyValue("style", e.StyleSource)
	printKeyValue("formats", joinComma(e.Formats))
	printKeyValue("duration", e.Duration.String())
	for _, p := range e.Outputs {
		printFile(p)
	}
}
