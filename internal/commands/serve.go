package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/folio/internal/config"
	"github.com/diogo/folio/internal/relay"
)

// serveOptions holds the serve flags; zero values keep the config
type serveOptions struct {
	listen   string
	upstream string
	rate     float64
	burst    int
	origins  []string
	noAuth   bool
}

// apply overlays the flags on the relay config
func (o *serveOptions) apply(cmd *cobra.Command, rc config.RelayConfig) config.RelayConfig {
	if o.listen != "" {
		rc.Listen = o.listen
	}
	if o.upstream != "" {
		rc.Upstream = o.upstream
	}
	if cmd.Flags().Changed("rate") {
		rc.RatePerSecond = o.rate
	}
	if cmd.Flags().Changed("burst") {
		rc.Burst = o.burst
	}
	if len(o.origins) > 0 {
		rc.AllowedOrigins = o.origins
	}
	if o.noAuth {
		rc.ForwardAuth = false
	}
	return rc
}

// NewServeCmd creates the relay command
func NewServeCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the /api/chat relay",
		Long: `Serve POST /api/chat for browsers and forward every turn to the portfolio
backend. Requests are validated, rate limited per client IP and answered with
{"content": ...} or {"error": ...}. CORS is allowed for the configured origins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.settings(deps)
			if err != nil {
				return err
			}
			cfg.Relay = opts.apply(cmd, cfg.Relay)

			logger, closer, err := flags.logger(cmd, cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, deps, cfg, logger)
		},
	}

	opts.bind(cmd)

	return cmd
}

func (o *serveOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.listen, "listen", "", "Address to listen on (default 127.0.0.1:8787)")
	cmd.Flags().StringVar(&o.upstream, "upstream", "", "Backend base URL (default http://localhost:8000)")
	cmd.Flags().Float64Var(&o.rate, "rate", 0, "Requests per second per client IP, 0 disables limiting")
	cmd.Flags().IntVar(&o.burst, "burst", 0, "Burst size per client IP")
	cmd.Flags().StringSliceVar(&o.origins, "origin", nil, "Allowed CORS origin, repeatable; * allows all")
	cmd.Flags().BoolVar(&o.noAuth, "no-forward-auth", false, "Do not pass Authorization to the backend")
}

func runServe(ctx context.Context, deps *Dependencies, cfg config.Config, logger zerolog.Logger) error {
	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	upstream := cfg
	upstream.BaseURL = cfg.Relay.Upstream
	transport, release := deps.transport(upstream, logger)
	defer release()

	server := relay.NewServer(transport, relay.Options{
		AllowedOrigins: cfg.Relay.AllowedOrigins,
		RatePerSecond:  cfg.Relay.RatePerSecond,
		Burst:          cfg.Relay.Burst,
		ForwardAuth:    cfg.Relay.ForwardAuth,
		Logger:         logger,
	})

	logger.Info().
		Str("listen", cfg.Relay.Listen).
		Str("upstream", upstream.BaseURL+upstream.ChatPath).
		Strs("origins", cfg.Relay.AllowedOrigins).
		Msg("starting relay")

	return server.Run(ctx, cfg.Relay.Listen)
}
