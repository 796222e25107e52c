package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diogo/folio/internal/config"
	"github.com/diogo/folio/internal/conversation"
	"github.com/diogo/folio/internal/models"
	"github.com/diogo/folio/internal/tui"
)

// fakeTUI records the controller and options the chat command starts with
type fakeTUI struct {
	ctrl  *conversation.Controller
	opts  tui.Options
	err   error
	onRun func(ctrl *conversation.Controller) // Runs while the session is open
}

func (f *fakeTUI) RunChat(ctrl *conversation.Controller, opts tui.Options) error {
	f.ctrl = ctrl
	f.opts = opts
	if f.onRun != nil {
		f.onRun(ctrl)
	}
	return f.err
}

type testEnv struct {
	deps    *Dependencies
	tui     *fakeTUI
	cfg     config.Config
	saved   []config.Config
	copied  []string
	stdin   string
	piped   bool
	tty     bool
	mu      sync.Mutex
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GLAMOUR_STYLE", "")

	env := &testEnv{tui: &fakeTUI{}, cfg: config.DefaultConfig()}
	env.deps = &Dependencies{
		TUI: env.tui,
		LoadConfig: func() (config.Config, error) {
			return env.cfg, nil
		},
		SaveConfig: func(cfg config.Config) error {
			env.saved = append(env.saved, cfg)
			return nil
		},
		WriteClipboard: func(s string) error {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.copied = append(env.copied, s)
			return nil
		},
		StdinPiped: func() bool { return env.piped },
		StdoutTTY:  func() bool { return env.tty },
	}
	return env
}

// run executes the root command with args and returns stdout and stderr
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd(e.deps)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(e.stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// chatServer answers /api/chat with "echo: <message>" and records requests
type chatServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []models.ChatRequest
}

func newChatServer(t *testing.T) *chatServer {
	t.Helper()
	s := &chatServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req models.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.ChatResponse{Content: "echo: " + req.Message})
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *chatServer) lastRequest(t *testing.T) models.ChatRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func newStatusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newBlockingServer holds every request until release is closed or the
// client goes away
func newBlockingServer(t *testing.T, release <-chan struct{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnecting.
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}
