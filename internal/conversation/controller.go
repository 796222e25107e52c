package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/folio/internal/api"
	apierrors "github.com/diogo/folio/internal/errors"
	"github.com/diogo/folio/internal/models"
)

// StalePolicy decides what happens to a reply that arrives after Clear
type StalePolicy int

const (
	// DiscardStale cancels the in-flight request on Clear and drops its result.
	DiscardStale StalePolicy = iota
	// ApplyStale leaves the in-flight request alone; its result is appended
	// to the cleared log when it arrives.
	ApplyStale
)

// ParseStalePolicy maps a config value to a StalePolicy
func ParseStalePolicy(s string) StalePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "apply") {
		return ApplyStale
	}
	return DiscardStale
}

func (p StalePolicy) String() string {
	if p == ApplyStale {
		return "apply"
	}
	return "discard"
}

// Outcome reports how a turn ended
type Outcome int

const (
	OutcomeSkipped   Outcome = iota // Empty input or a turn already in flight
	OutcomeFulfilled                // Reply appended
	OutcomeFailed                   // Fallback appended and error set
	OutcomeDiscarded                // Result dropped after Clear
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFulfilled:
		return "fulfilled"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "skipped"
	}
}

// Snapshot is a read-only view of the controller state
type Snapshot struct {
	Messages   []models.Message
	Submitting bool
	Error      string // Empty when there is no error
}

// HasError reports whether the last turn failed
func (s Snapshot) HasError() bool {
	return s.Error != ""
}

// LastReply returns the content of the last final assistant message
func (s Snapshot) LastReply() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Role == models.RoleAssistant && !m.IsPending() {
			return m.Content, true
		}
	}
	return "", false
}

// Turn is one in-flight submission, created by Begin and settled by Complete
type Turn struct {
	ID      uint64
	Text    string
	History []models.WireMessage

	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	started    time.Time
}

// Context returns the turn's context, bounded by the controller timeout
func (t *Turn) Context() context.Context {
	return t.ctx
}

// Controller owns the message log and drives one request per user turn.
// It is safe for concurrent use.
type Controller struct {
	transport api.Transport
	timeout   time.Duration
	policy    StalePolicy
	logger    zerolog.Logger
	onChange  func(Snapshot)

	mu         sync.Mutex
	log        []models.Message
	submitting bool
	errText    string
	generation uint64 // Bumped by Clear
	turns      uint64
	inflight   *Turn
}

// Option configures a Controller
type Option func(*Controller)

// WithTimeout bounds each turn. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithStalePolicy sets how replies arriving after Clear are handled
func WithStalePolicy(policy StalePolicy) Option {
	return func(c *Controller) {
		c.policy = policy
	}
}

// WithLogger sets the controller logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithOnChange registers a hook called with a fresh snapshot after every
// state change. The hook runs outside the controller lock.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New creates a Controller on top of transport
func New(transport api.Transport, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		timeout:   models.DefaultChatTimeout,
		policy:    DiscardStale,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// snapshotLocked MUST be called with c.mu held
func (c *Controller) snapshotLocked() Snapshot {
	msgs := make([]models.Message, len(c.log))
	copy(msgs, c.log)
	return Snapshot{
		Messages:   msgs,
		Submitting: c.submitting,
		Error:      c.errText,
	}
}

// Submitting reports whether a turn is in flight
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Submit runs one full turn: Begin, the transport call, then Complete.
// Empty input or a call while a turn is in flight is a no-op.
func (c *Controller) Submit(ctx context.Context, text string) Outcome {
	turn, ok := c.Begin(ctx, text)
	if !ok {
		return OutcomeSkipped
	}
	content, err := c.Run(turn)
	return c.Complete(turn, content, err)
}

// SelectSuggestedPrompt submits a pre-canned prompt
func (c *Controller) SelectSuggestedPrompt(ctx context.Context, text string) Outcome {
	return c.Submit(ctx, text)
}

// Begin appends the user message and the pending placeholder, clears the
// error and returns the turn to send. text is stored and sent as given. It
// returns false when text is blank or a turn is already in flight; the log is
// untouched in that case.
func (c *Controller) Begin(ctx context.Context, text string) (*Turn, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		c.logger.Debug().Msg("submit ignored: turn in flight")
		return nil, false
	}

	c.turns++
	history := History(c.log)
	c.log = AppendPending(Append(DropPending(c.log), models.NewUserMessage(text)))
	c.errText = ""
	c.submitting = true

	turnCtx, cancel := context.WithTimeout(ctx, c.timeout)
	turn := &Turn{
		ID:         c.turns,
		Text:       text,
		History:    history,
		ctx:        turnCtx,
		cancel:     cancel,
		generation: c.generation,
		started:    time.Now(),
	}
	c.inflight = turn
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug().
		Uint64("turn", turn.ID).
		Int("history", len(history)).
		Msg("turn started")
	c.notify(snap)

	return turn, true
}

// Run calls the transport for turn. It returns when the transport answers or
// the turn context ends, whichever happens first.
func (c *Controller) Run(turn *Turn) (string, error) {
	type result struct {
		content string
		err     error
	}

	done := make(chan result, 1)
	go func() {
		content, err := c.transport.Send(turn.ctx, turn.Text, turn.History)
		done <- result{content: content, err: err}
	}()

	select {
	case r := <-done:
		return r.content, r.err
	case <-turn.ctx.Done():
		return "", turn.ctx.Err()
	}
}

// Complete settles turn: the placeholder is replaced by the reply, or by the
// fallback message plus an error string when err is non-nil.
func (c *Controller) Complete(turn *Turn, content string, err error) Outcome {
	turn.cancel()

	c.mu.Lock()
	if c.inflight == turn {
		c.inflight = nil
		c.submitting = false
	}

	if turn.generation != c.generation && c.policy == DiscardStale {
		c.mu.Unlock()
		c.logger.Debug().Uint64("turn", turn.ID).Msg("stale reply discarded")
		return OutcomeDiscarded
	}

	outcome := OutcomeFulfilled
	c.log = DropPending(c.log)
	if err != nil {
		fallback, banner := apierrors.FormatFailure(err)
		c.log = Append(c.log, models.NewFallbackMessage(fallback))
		c.errText = banner
		outcome = OutcomeFailed
	} else {
		c.log = Append(c.log, models.NewAssistantMessage(content))
	}
	consistent := Consistent(c.log)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if !consistent {
		c.logger.Error().Uint64("turn", turn.ID).Int("messages", len(snap.Messages)).Msg("message log out of shape after turn")
	}

	var event *zerolog.Event
	if err != nil {
		event = c.logger.Warn().Err(err).Bool("timeout", apierrors.IsTimeoutError(err))
	} else {
		event = c.logger.Info()
	}
	event.
		Uint64("turn", turn.ID).
		Str("outcome", outcome.String()).
		Dur("latency", time.Since(turn.started)).
		Msg("turn settled")
	c.notify(snap)

	return outcome
}

// Clear empties the log and the error. Under DiscardStale the in-flight turn,
// if any, is canceled and its result will be dropped.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.log = nil
	c.errText = ""
	c.generation++

	var canceled *Turn
	if c.policy == DiscardStale && c.inflight != nil {
		canceled = c.inflight
		c.inflight = nil
		c.submitting = false
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if canceled != nil {
		canceled.cancel()
		c.logger.Debug().Uint64("turn", canceled.ID).Msg("in-flight turn canceled by clear")
	}
	c.notify(snap)
}

func (c *Controller) notify(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
