package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apierrors "github.com/diogo/folio/internal/errors"
	"github.com/diogo/folio/internal/models"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		opts        []ClientOption
		wantBase    string
		wantTimeout time.Duration
		wantChat    string
	}{
		{
			name:        "defaults",
			wantBase:    models.DefaultBaseURL,
			wantTimeout: models.DefaultChatTimeout,
			wantChat:    models.DefaultBaseURL + "/api/chat",
		},
		{
			name:        "custom base url trims slash",
			opts:        []ClientOption{WithBaseURL("https://example.dev/")},
			wantBase:    "https://example.dev",
			wantTimeout: models.DefaultChatTimeout,
			wantChat:    "https://example.dev/api/chat",
		},
		{
			name:        "custom timeout and path",
			opts:        []ClientOption{WithTimeout(5 * time.Second), WithChatPath("/chat")},
			wantBase:    models.DefaultBaseURL,
			wantTimeout: 5 * time.Second,
			wantChat:    models.DefaultBaseURL + "/chat",
		},
		{
			name:        "non-positive timeout keeps default",
			opts:        []ClientOption{WithTimeout(0), WithChatPath("")},
			wantBase:    models.DefaultBaseURL,
			wantTimeout: models.DefaultChatTimeout,
			wantChat:    models.DefaultBaseURL + "/api/chat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.opts...)
			if client.BaseURL() != tt.wantBase {
				t.Errorf("BaseURL() = %s, want %s", client.BaseURL(), tt.wantBase)
			}
			if client.Timeout() != tt.wantTimeout {
				t.Errorf("Timeout() = %s, want %s", client.Timeout(), tt.wantTimeout)
			}
			if client.ChatEndpoint() != tt.wantChat {
				t.Errorf("ChatEndpoint() = %s, want %s", client.ChatEndpoint(), tt.wantChat)
			}
		})
	}
}

func TestClient_Close(t *testing.T) {
	client := NewClient()
	if client.IsClosed() {
		t.Fatal("new client should not be closed")
	}
	client.Close()
	client.Close()
	if !client.IsClosed() {
		t.Fatal("client should be closed")
	}

	if _, err := client.Send(context.Background(), "hi", nil); err == nil {
		t.Error("Send on a closed client should fail")
	}
}

func TestSend_Success(t *testing.T) {
	var got models.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"Here are three projects..."}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	history := []models.WireMessage{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
	}

	reply, err := client.Send(context.Background(), "Tell me about the projects", history)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply != "Here are three projects..." {
		t.Errorf("reply = %q", reply)
	}
	if got.Message != "Tell me about the projects" {
		t.Errorf("message = %q", got.Message)
	}
	if len(got.ChatHistory) != 2 || got.ChatHistory[1].Role != models.RoleAssistant {
		t.Errorf("chat_history = %+v", got.ChatHistory)
	}
}

func TestSend_EmptyText(t *testing.T) {
	client := NewClient()
	_, err := client.Send(context.Background(), "   ", nil)
	if !errors.Is(err, apierrors.ErrEmptyMessage) {
		t.Errorf("error = %v, want ErrEmptyMessage", err)
	}
}

func TestSend_StatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantSuffix string
	}{
		{"error body", http.StatusInternalServerError, `{"error":"boom"}`, "/api/chat: boom"},
		{"content body on failure", http.StatusBadGateway, `{"content":"sorry"}`, "/api/chat"},
		{"plain text", http.StatusServiceUnavailable, "maintenance\n", "/api/chat: maintenance"},
		{"html page", http.StatusBadGateway, "<html><body>Bad Gateway</body></html>", "/api/chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL))
			_, err := client.Send(context.Background(), "hello", nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if apierrors.GetHTTPStatus(err) != tt.status {
				t.Errorf("status = %d, want %d", apierrors.GetHTTPStatus(err), tt.status)
			}
			if apierrors.GetResponseBody(err) != strings.TrimSpace(tt.body) {
				t.Errorf("body = %q, want %q", apierrors.GetResponseBody(err), tt.body)
			}
			msg := err.Error()
			if !strings.HasSuffix(msg, tt.wantSuffix) {
				t.Errorf("Error() = %q, want suffix %q", msg, tt.wantSuffix)
			}
			if strings.Count(msg, "status") != 1 {
				t.Errorf("Error() repeats the status: %q", msg)
			}
		})
	}
}

func TestSend_FailureBannerKeepsBackendDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.Send(context.Background(), "hello", nil)

	_, banner := apierrors.FormatFailure(err)
	want := "Connection issue: request failed with status 500 at " + server.URL + "/api/chat: boom"
	if banner != want {
		t.Errorf("banner = %q, want %q", banner, want)
	}
}

func TestSend_InvalidResponseFormat(t *testing.T) {
	bodies := []string{
		`{"message":"wrong field"}`,
		`{"content":42}`,
		`{"content":""}`,
		`not json`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL))
			_, err := client.Send(context.Background(), "hello", nil)
			if !apierrors.IsProtocolError(err) {
				t.Errorf("error = %v, want invalid response format", err)
			}
		})
	}
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Send(context.Background(), "hello", nil)
	if !apierrors.IsTimeoutError(err) {
		t.Fatalf("error = %v, want timeout", err)
	}
	if !errors.Is(err, apierrors.ErrTimeout) {
		t.Error("timeout should be a TimeoutError")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took %s", elapsed)
	}
}

func TestSend_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(WithBaseURL(url))
	_, err := client.Send(context.Background(), "hello", nil)
	if !apierrors.IsNetworkError(err) {
		t.Fatalf("error = %v, want network error", err)
	}
	if apierrors.IsTimeoutError(err) {
		t.Error("connection refused is not a timeout")
	}
}

func TestSend_ParentCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnecting.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Send(ctx, "hello", nil)
	if !apierrors.IsCanceled(err) {
		t.Errorf("error = %v, want canceled", err)
	}
	if apierrors.IsTimeoutError(err) {
		t.Error("cancellation is not a timeout")
	}
}

func TestSend_HeadersFromContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Site"); got != "portfolio" {
			t.Errorf("X-Site = %q", got)
		}
		_, _ = w.Write([]byte(`{"content":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithHeader("X-Site", "portfolio"))
	ctx := ContextWithHeaders(context.Background(), http.Header{"Authorization": []string{"Bearer abc"}})
	if _, err := client.Send(ctx, "hello", nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
}
