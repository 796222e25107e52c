package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/folio/internal/textstats"
)

// NewStatsCmd creates the text metrics command
func NewStatsCmd(deps *Dependencies) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Show length metrics of a post or draft",
		Long: `Count words, characters, lines, paragraphs and hashtags of a text and
estimate its reading time. The character count is checked against the
LinkedIn post limit unless --limit says otherwise.

Reads the file argument, or stdin when no file is given.`,
		Example: `  folio stats draft.md
  pbpaste | folio stats --limit 280`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			switch {
			case len(args) == 1:
				data, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
			case deps.StdinPiped():
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			default:
				return fmt.Errorf("no input: pass a file or pipe text on stdin")
			}

			stats := textstats.Analyze(string(data))

			if asJSON {
				out, err := json.MarshalIndent(struct {
					textstats.Stats
					Limit     int  `json:"limit"`
					Remaining int  `json:"remaining"`
					OverLimit bool `json:"over_limit"`
				}{stats, limit, stats.Remaining(limit), stats.OverLimit(limit)}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal stats: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			printStats(cmd.OutOrStdout(), stats, limit)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", textstats.LinkedInPostLimit, "Character limit to check against")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print metrics as JSON")

	return cmd
}

func printStats(w io.Writer, s textstats.Stats, limit int) {
	keyStyle := lipgloss.NewStyle().Foreground(colorTextDim).Width(14)
	valueStyle := lipgloss.NewStyle().Foreground(colorText).Bold(true)

	row := func(key, value string) {
		fmt.Fprintf(w, "%s%s\n", keyStyle.Render(key), valueStyle.Render(value))
	}

	row("Words", fmt.Sprint(s.Words))
	row("Characters", fmt.Sprint(s.Characters))
	row("Lines", fmt.Sprint(s.Lines))
	row("Paragraphs", fmt.Sprint(s.Paragraphs))
	row("Reading time", s.ReadingTime.String())
	if len(s.Hashtags) > 0 {
		row("Hashtags", "#"+strings.Join(s.Hashtags, " #"))
	}

	if s.OverLimit(limit) {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(colorError).Render(
			fmt.Sprintf("✗ %d characters over the %d limit", -s.Remaining(limit), limit)))
	} else {
		fmt.Fprintln(w, successStyle.Render(
			fmt.Sprintf("✓ %d characters left of %d", s.Remaining(limit), limit)))
	}
}
