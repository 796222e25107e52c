// Package commands provides CLI commands for folio.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/folio/internal/config"
	"github.com/diogo/folio/internal/logging"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags holds the persistent flags shared by every subcommand
type globalFlags struct {
	baseURL        string
	timeoutSeconds int
	logLevel       string
	stalePolicy    string
}

// settings resolves the effective configuration: config file, FOLIO_*
// environment, then flags
func (g *globalFlags) settings(deps *Dependencies) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	if g.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(g.baseURL, "/")
	}
	if g.timeoutSeconds > 0 {
		cfg.TimeoutSeconds = g.timeoutSeconds
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.stalePolicy != "" {
		cfg.StalePolicy = g.stalePolicy
	}

	return cfg, nil
}

// logger builds the console logger for non-TUI commands
func (g *globalFlags) logger(cmd *cobra.Command, cfg config.Config) (zerolog.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		Out:   cmd.ErrOrStderr(),
	})
}

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}

	flags := &globalFlags{}
	query := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "folio [question]",
		Short: "Terminal client for the portfolio AI assistant",
		Long: `folio talks to the AI assistant of a portfolio site through its /api/chat
endpoint. It can ask one-shot questions, run an interactive chat, relay the
chat endpoint for browsers and inspect portfolio content.

Examples:
  folio chat                              Start interactive chat
  folio "What projects have you built?"   Ask a single question
  folio -f question.md                    Read the question from a file
  cat question.md | folio                 Read the question from stdin
  folio "Hello" -o reply.md               Save the reply to a file
  folio serve                             Run the /api/chat relay
  folio content projects                  Show portfolio projects`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				printVersion(cmd)
				return nil
			}

			input, err := readQuestion(cmd, deps, query.file, args)
			if err != nil {
				return err
			}
			if input == "" {
				return cmd.Help()
			}

			return runQuery(cmd, deps, flags, query, input)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "Portfolio site URL (default from config, http://localhost:3000)")
	cmd.PersistentFlags().IntVar(&flags.timeoutSeconds, "timeout", 0, "Chat turn timeout in seconds (default 30)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.stalePolicy, "stale-policy", "", "Replies arriving after clear: discard or apply")

	cmd.Flags().StringVarP(&query.output, "output", "o", "", "Save reply to file")
	cmd.Flags().StringVarP(&query.file, "file", "f", "", "Read question from file")
	cmd.Flags().BoolVarP(&query.raw, "raw", "r", false, "Print the raw reply without decoration")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewChatCmd(deps, flags))
	cmd.AddCommand(NewServeCmd(deps, flags))
	cmd.AddCommand(NewPromptsCmd(deps, flags))
	cmd.AddCommand(NewContentCmd(deps, flags))
	cmd.AddCommand(NewStatsCmd(deps))
	cmd.AddCommand(NewConfigCmd(deps))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	os.Exit(execute(rootCmd, os.Stderr))
}

// execute runs cmd and returns the process exit code. Failures are printed
// once here since the root command silences cobra's own error output.
func execute(cmd *cobra.Command, stderr io.Writer) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, formatErrorMessage(err, "Error"))
		return 1
	}
	return 0
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd)
		},
	}
}

func printVersion(cmd *cobra.Command) {
	fmt.Fprintf(cmd.OutOrStdout(), "folio %s (built %s)\n", Version, BuildTime)
}

// readQuestion picks the question from --file, a positional argument or
// piped stdin, in that order. An empty result means no input was given.
func readQuestion(cmd *cobra.Command, deps *Dependencies, file string, args []string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}

	if deps.StdinPiped() {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return "", nil
}
