package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(500, "/api/chat", "chat failed", "")

	expected := "request failed with status 500 at /api/chat: chat failed"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "/api/chat", "chat failed", "")
	if noStatus.Error() != "request failed at /api/chat: chat failed" {
		t.Errorf("Error() = %s", noStatus.Error())
	}

	noDetail := NewAPIError(502, "/api/chat", "", "<html></html>")
	if noDetail.Error() != "request failed with status 502 at /api/chat" {
		t.Errorf("Error() = %s, the raw body stays out of the message", noDetail.Error())
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("after 30s", "")

	expected := "request timed out: after 30s"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
	if NewTimeoutError("", "").Error() != "request timed out" {
		t.Error("empty message should use the default text")
	}

	wrapped := fmt.Errorf("send: %w", err)
	if !errors.Is(wrapped, ErrTimeout) {
		t.Error("wrapped TimeoutError should match ErrTimeout")
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("send chat message", "http://localhost/api/chat", cause)

	if !errors.Is(err, ErrNetwork) {
		t.Error("NetworkError should match ErrNetwork")
	}
	if !errors.Is(err, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %s, should contain the cause", err.Error())
	}
	if NewNetworkError("op", "", nil).Error() != "network error during op" {
		t.Error("nil cause should render without suffix")
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("missing content field", "content")

	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("ParseError should match ErrInvalidResponse")
	}
	if !errors.Is(err, NewParseError("other", "")) {
		t.Error("ParseError should match another ParseError")
	}
	if errors.Is(err, ErrNetwork) {
		t.Error("ParseError should not match ErrNetwork")
	}
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		timeout  bool
		network  bool
		protocol bool
		canceled bool
	}{
		{"nil", nil, false, false, false, false},
		{"timeout", NewTimeoutError("", ""), true, false, false, false},
		{"deadline", context.DeadlineExceeded, true, false, false, false},
		{"wrapped deadline", fmt.Errorf("x: %w", context.DeadlineExceeded), true, false, false, false},
		{"network", NewNetworkError("op", "", errors.New("boom")), false, true, false, false},
		{"parse", NewParseError("bad", ""), false, false, true, false},
		{"canceled", context.Canceled, false, false, false, true},
		{"api", NewAPIError(502, "e", "m", ""), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeoutError(tt.err); got != tt.timeout {
				t.Errorf("IsTimeoutError() = %v, want %v", got, tt.timeout)
			}
			if got := IsNetworkError(tt.err); got != tt.network {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.network)
			}
			if got := IsProtocolError(tt.err); got != tt.protocol {
				t.Errorf("IsProtocolError() = %v, want %v", got, tt.protocol)
			}
			if got := IsCanceled(tt.err); got != tt.canceled {
				t.Errorf("IsCanceled() = %v, want %v", got, tt.canceled)
			}
		})
	}
}

func TestGetters(t *testing.T) {
	apiErr := fmt.Errorf("wrap: %w", NewAPIError(429, "/api/chat", "failed", "slow down"))
	if GetHTTPStatus(apiErr) != 429 {
		t.Errorf("GetHTTPStatus() = %d, want 429", GetHTTPStatus(apiErr))
	}
	if GetEndpoint(apiErr) != "/api/chat" {
		t.Errorf("GetEndpoint() = %s", GetEndpoint(apiErr))
	}
	if GetResponseBody(apiErr) != "slow down" {
		t.Errorf("GetResponseBody() = %s", GetResponseBody(apiErr))
	}

	netErr := NewNetworkError("op", "http://x", errors.New("boom"))
	if GetEndpoint(netErr) != "http://x" {
		t.Errorf("GetEndpoint() = %s", GetEndpoint(netErr))
	}
	if GetHTTPStatus(netErr) != 0 {
		t.Error("network errors carry no status")
	}
	if GetEndpoint(NewTimeoutError("m", "http://t")) != "http://t" {
		t.Error("timeout endpoint not extracted")
	}
	if GetEndpoint(errors.New("plain")) != "" || GetResponseBody(nil) != "" {
		t.Error("plain errors have no endpoint or body")
	}
}

func TestFormatFailure(t *testing.T) {
	fallback, banner := FormatFailure(NewTimeoutError("after 30s", ""))
	if fallback != FallbackReply {
		t.Errorf("fallback = %q", fallback)
	}
	if !strings.Contains(banner, "took too long") {
		t.Errorf("timeout banner = %q", banner)
	}

	netErr := NewNetworkError("send chat message", "", errors.New("connection refused"))
	fallback, banner = FormatFailure(netErr)
	if fallback != FallbackReply {
		t.Errorf("fallback = %q", fallback)
	}
	if !strings.HasPrefix(banner, "Connection issue") || !strings.Contains(banner, "connection refused") {
		t.Errorf("connection banner = %q", banner)
	}

	// Same error type and detail, same strings.
	for i := 0; i < 3; i++ {
		f, b := FormatFailure(NewNetworkError("send chat message", "", errors.New("connection refused")))
		if f != fallback || b != banner {
			t.Fatalf("FormatFailure not stable: %q %q", f, b)
		}
	}

	_, banner = FormatFailure(NewParseError("missing content", "content"))
	if !strings.HasPrefix(banner, "Connection issue") {
		t.Errorf("protocol mismatch should read as a connection issue, got %q", banner)
	}

	_, banner = FormatFailure(nil)
	if !strings.HasPrefix(banner, "Connection issue") {
		t.Errorf("nil error banner = %q", banner)
	}
}
