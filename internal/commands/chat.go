package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/folio/internal/config"
	"github.com/diogo/folio/internal/logging"
	"github.com/diogo/folio/internal/prompts"
	"github.com/diogo/folio/internal/render"
	"github.com/diogo/folio/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	var promptsFile string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the portfolio assistant.

Every turn sends the full conversation so far. On an empty conversation
press 1-9 to ask a suggested question.

Keys and commands:
  Ctrl+L, /clear        Start over
  Ctrl+Y, /copy         Copy the last reply
  /export [path]        Save the conversation (.md or .json)
  exit, quit, Esc       Leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps, flags, promptsFile)
		},
	}

	cmd.Flags().StringVar(&promptsFile, "prompts", "", "YAML file with suggested prompts")

	return cmd
}

func runChat(deps *Dependencies, flags *globalFlags, promptsFile string) error {
	cfg, err := flags.settings(deps)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs only go to a file
	logger, closer, err := logging.ForTUI(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	if promptsFile == "" {
		promptsFile = cfg.PromptsFile
	}
	list, err := prompts.Load(promptsFile)
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}

	exportDir, err := config.GetExportDir(cfg)
	if err != nil {
		return err
	}

	if cfg.TUITheme != "" && render.SetTUITheme(cfg.TUITheme) {
		tui.UpdateTheme()
	}

	ctrl, release := deps.controller(cfg, logger)
	defer release()

	return deps.TUI.RunChat(ctrl, tui.Options{
		Prompts:         list,
		Render:          render.OptionsFromConfig(cfg.Markdown),
		Endpoint:        cfg.BaseURL + cfg.ChatPath,
		ExportDir:       exportDir,
		CopyToClipboard: cfg.CopyToClipboard,
	})
}
