package commands

import (
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/diogo/folio/internal/api"
	"github.com/diogo/folio/internal/config"
	"github.com/diogo/folio/internal/conversation"
	"github.com/diogo/folio/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctrl *conversation.Controller, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// TUI is the terminal user interface.
	TUI TUIInterface

	// LoadConfig reads the user configuration.
	LoadConfig func() (config.Config, error)

	// SaveConfig persists the user configuration.
	SaveConfig func(config.Config) error

	// NewTransport builds the chat transport. Nil means an api.Client built
	// from the configuration.
	NewTransport func(cfg config.Config, logger zerolog.Logger) api.Transport

	// WriteClipboard copies text to the system clipboard.
	WriteClipboard func(string) error

	// StdinPiped reports whether stdin carries piped input.
	StdinPiped func() bool

	// StdoutTTY reports whether stdout is a terminal.
	StdoutTTY func() bool
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctrl *conversation.Controller, opts tui.Options) error {
	return tui.RunChat(ctrl, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:            &DefaultTUI{},
		LoadConfig:     config.LoadConfig,
		SaveConfig:     config.SaveConfig,
		WriteClipboard: clipboard.WriteAll,
		StdinPiped:     stdinPiped,
		StdoutTTY:      isStdoutTTY,
	}
}

// newClient builds the HTTP client for cfg
func newClient(cfg config.Config, logger zerolog.Logger, extra ...api.ClientOption) *api.Client {
	opts := []api.ClientOption{
		api.WithBaseURL(cfg.BaseURL),
		api.WithChatPath(cfg.ChatPath),
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	}
	return api.NewClient(append(opts, extra...)...)
}

// transport returns the chat transport for cfg and a release function
func (d *Dependencies) transport(cfg config.Config, logger zerolog.Logger) (api.Transport, func()) {
	if d.NewTransport != nil {
		return d.NewTransport(cfg, logger), func() {}
	}
	client := newClient(cfg, logger)
	return client, client.Close
}

// controller builds the conversation controller for cfg
func (d *Dependencies) controller(cfg config.Config, logger zerolog.Logger) (*conversation.Controller, func()) {
	transport, release := d.transport(cfg, logger)
	ctrl := conversation.New(transport,
		conversation.WithTimeout(cfg.Timeout()),
		conversation.WithStalePolicy(conversation.ParseStalePolicy(cfg.StalePolicy)),
		conversation.WithLogger(logger),
		conversation.WithOnChange(func(snap conversation.Snapshot) {
			logger.Trace().
				Int("messages", len(snap.Messages)).
				Bool("submitting", snap.Submitting).
				Str("error", snap.Error).
				Msg("conversation changed")
		}),
	)
	return ctrl, release
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
