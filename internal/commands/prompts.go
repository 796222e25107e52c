package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/folio/internal/prompts"
	"github.com/diogo/folio/internal/textstats"
)

// NewPromptsCmd creates the suggested prompts command
func NewPromptsCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	var (
		promptsFile string
		q           queryOptions
	)

	cmd := &cobra.Command{
		Use:   "prompts [number]",
		Short: "List the suggested questions, or ask one by number",
		Example: `  folio prompts
  folio prompts 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.settings(deps)
			if err != nil {
				return err
			}
			if promptsFile == "" {
				promptsFile = cfg.PromptsFile
			}

			list, err := prompts.Load(promptsFile)
			if err != nil {
				return fmt.Errorf("failed to load prompts: %w", err)
			}

			if len(args) == 0 {
				printPrompts(cmd, list)
				return nil
			}

			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid prompt number %q", args[0])
			}
			p, ok := prompts.Pick(list, n)
			if !ok {
				return fmt.Errorf("no suggested prompt %d (have %d)", n, min(len(list), 9))
			}

			logger, closer, err := flags.logger(cmd, cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctrl, release := deps.controller(cfg, logger)
			defer release()

			return askOnce(cmd, deps, ctrl, cfg, &q, p.Text)
		},
	}

	cmd.Flags().StringVar(&promptsFile, "file", "", "YAML file with suggested prompts")
	cmd.Flags().BoolVarP(&q.raw, "raw", "r", false, "Print the raw reply without decoration")
	cmd.Flags().StringVarP(&q.output, "output", "o", "", "Save reply to file")

	return cmd
}

func printPrompts(cmd *cobra.Command, list []prompts.Prompt) {
	keyStyle := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorText).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	width := getTerminalWidth() - 8
	for i, p := range list {
		if i >= 9 {
			break
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n    %s\n",
			keyStyle.Render(fmt.Sprintf("[%d]", i+1)),
			labelStyle.Render(p.Title()),
			textStyle.Render(textstats.Truncate(p.Text, width)),
		)
	}
}
