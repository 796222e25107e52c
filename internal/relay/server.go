// Package relay exposes the chat endpoint to browsers and forwards each turn
// to the portfolio backend.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/diogo/folio/internal/api"
	apierrors "github.com/diogo/folio/internal/errors"
	"github.com/diogo/folio/internal/models"
)

// Options configures a relay Server
type Options struct {
	AllowedOrigins []string
	RatePerSecond  float64
	Burst          int
	ForwardAuth    bool
	Logger         zerolog.Logger
}

// Server is the gin-based chat relay
type Server struct {
	transport api.Transport
	opts      Options
	limiter   *IPLimiter
	engine    *gin.Engine
	logger    zerolog.Logger
}

// NewServer builds a relay that forwards to transport
func NewServer(transport api.Transport, opts Options) *Server {
	s := &Server{
		transport: transport,
		opts:      opts,
		limiter:   NewIPLimiter(opts.RatePerSecond, opts.Burst),
		logger:    opts.Logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(s.logger))
	engine.Use(CORS(opts.AllowedOrigins))

	engine.GET("/healthz", s.handleHealth)
	engine.OPTIONS(models.EndpointChat, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	chat := engine.Group(models.EndpointChat)
	chat.Use(RateLimit(s.limiter))
	chat.POST("", s.handleChat)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler of the relay
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Limiter returns the per-client rate limiter
func (s *Server) Limiter() *IPLimiter {
	return s.limiter
}

// Run serves on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepLimiters(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("relay listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("relay server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("relay shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) sweepLimiters(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Sweep(10 * time.Minute); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("idle rate limiters swept")
			}
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Message is required"})
		return
	}
	for _, m := range req.ChatHistory {
		if !m.Role.Valid() {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid role in chat history: %q", m.Role)})
			return
		}
	}

	ctx := c.Request.Context()
	if s.opts.ForwardAuth {
		if auth := c.GetHeader("Authorization"); auth != "" {
			ctx = api.ContextWithHeaders(ctx, http.Header{"Authorization": []string{auth}})
		}
	}

	content, err := s.transport.Send(ctx, req.Message, req.ChatHistory)
	if apierrors.IsCanceled(err) && c.Request.Context().Err() != nil {
		s.logger.Debug().Msg("client went away before the upstream answered")
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}
	if err != nil {
		status, msg := upstreamFailure(err)
		s.logger.Warn().Err(err).Int("status", status).Msg("upstream chat failed")
		c.JSON(status, models.ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{Content: content})
}

// statusClientClosedRequest is logged for requests whose client disconnected
// before a reply was ready; nothing is written back.
const statusClientClosedRequest = 499

// upstreamFailure maps a transport error to the relay status and message
func upstreamFailure(err error) (int, string) {
	switch {
	case apierrors.IsTimeoutError(err):
		return http.StatusGatewayTimeout, "The backend took too long to respond"
	case apierrors.GetHTTPStatus(err) == http.StatusTooManyRequests:
		return http.StatusTooManyRequests, "Too many requests. Please slow down."
	case apierrors.IsProtocolError(err):
		return http.StatusBadGateway, "Invalid response from backend"
	default:
		return http.StatusBadGateway, "Failed to reach the chat backend"
	}
}
