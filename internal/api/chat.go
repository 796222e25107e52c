package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/folio/internal/errors"
	"github.com/diogo/folio/internal/models"
)

// Send posts one chat turn and returns the assistant reply.
// history must hold the prior turns only; text is sent as the message field.
// The call is bounded by the client timeout and is never retried.
func (c *Client) Send(ctx context.Context, text string, history []models.WireMessage) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apierrors.ErrEmptyMessage
	}

	if c.IsClosed() {
		return "", fmt.Errorf("client is closed")
	}

	payload, err := json.Marshal(models.ChatRequest{
		Message:     text,
		ChatHistory: history,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.ChatEndpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.applyHeaders(ctx, req)

	start := time.Now()
	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("history", len(history)).
		Msg("sending chat message")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.transportError(ctx, "send chat message", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", c.transportError(ctx, "read chat response", endpoint, err)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("chat response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError(resp.StatusCode, endpoint, body)
	}

	return parseChatResponse(body)
}

// transportError classifies a failed round trip. A deadline on ctx means the
// client-side timeout fired; everything else is a network failure.
func (c *Client) transportError(ctx context.Context, operation, endpoint string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.logger.Warn().Str("endpoint", endpoint).Dur("timeout", c.timeout).Msg("chat request timed out")
		return apierrors.NewTimeoutError(fmt.Sprintf("no response after %s", c.timeout), endpoint)
	}
	c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("chat request failed")
	return apierrors.NewNetworkError(operation, endpoint, err)
}

// statusError builds an APIError from a non-2xx response. The body's error
// field becomes the detail; the raw body is kept for diagnostics.
func statusError(status int, endpoint string, body []byte) error {
	raw := strings.TrimSpace(string(body))
	detail := ""
	switch {
	case gjson.Valid(raw):
		detail = strings.TrimSpace(gjson.Get(raw, PathError).String())
	case len(raw) <= maxInlineDetail && !strings.ContainsAny(raw, "\n<"):
		// Short plain-text bodies such as "maintenance" read fine inline
		detail = raw
	}
	if len(raw) > maxErrorBodySize {
		raw = raw[:maxErrorBodySize]
	}
	return apierrors.NewAPIError(status, endpoint, detail, raw)
}

// parseChatResponse extracts the content field from a success body
func parseChatResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not valid JSON", "")
	}

	content := gjson.GetBytes(body, PathContent)
	if !content.Exists() || content.Type != gjson.String {
		return "", apierrors.NewParseError("missing content field", PathContent)
	}
	if content.String() == "" {
		return "", apierrors.NewParseError("empty content field", PathContent)
	}

	return content.String(), nil
}
