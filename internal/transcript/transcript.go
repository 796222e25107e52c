// Package transcript exports a chat conversation to Markdown or JSON.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/folio/internal/conversation"
	"github.com/diogo/folio/internal/models"
)

// Format represents the format for exporting conversations
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// FormatFromPath picks a format from the file extension, defaulting to Markdown
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatMarkdown
}

// Extension returns the file extension for f, including the dot
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".md"
}

// Message is one exported turn
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Failed    bool      `json:"failed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is a point-in-time copy of a conversation
type Transcript struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Endpoint   string    `json:"endpoint,omitempty"`
	ExportedAt time.Time `json:"exported_at"`
	Messages   []Message `json:"messages"`
}

// New builds a transcript from a message log. Pending placeholders are
// skipped; the title is taken from the first user message.
func New(log []models.Message, endpoint string) *Transcript {
	t := &Transcript{
		ID:         uuid.NewString(),
		Title:      "Portfolio chat",
		Endpoint:   endpoint,
		ExportedAt: time.Now(),
		Messages:   make([]Message, 0, len(log)),
	}

	titled := false
	for _, m := range conversation.Finals(log) {
		if !titled && m.Role == models.RoleUser {
			t.Title = titleFrom(m.Content)
			titled = true
		}
		t.Messages = append(t.Messages, Message{
			Role:      string(m.Role),
			Content:   m.Content,
			Failed:    m.Failed,
			Timestamp: m.Timestamp,
		})
	}

	return t
}

func titleFrom(content string) string {
	line := strings.TrimSpace(strings.SplitN(content, "\n", 2)[0])
	runes := []rune(line)
	if len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return line
}

// Markdown renders the transcript as Markdown
func (t *Transcript) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(t.Title)
	sb.WriteString("\n\n")

	sb.WriteString("**Session:** ")
	sb.WriteString(t.ID)
	sb.WriteString("\n")
	if t.Endpoint != "" {
		sb.WriteString("**Endpoint:** ")
		sb.WriteString(t.Endpoint)
		sb.WriteString("\n")
	}
	sb.WriteString("**Exported:** ")
	sb.WriteString(t.ExportedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(t.Messages)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range t.Messages {
		role := "You"
		if msg.Role == string(models.RoleAssistant) {
			role = "Assistant"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if !msg.Timestamp.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(t.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// JSON renders the transcript as indented JSON
func (t *Transcript) JSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// Render returns the transcript in format f
func (t *Transcript) Render(f Format) ([]byte, error) {
	if f == FormatJSON {
		return t.JSON()
	}
	return []byte(t.Markdown()), nil
}

// DefaultFilename names an export of t in format f
func (t *Transcript) DefaultFilename(f Format) string {
	return fmt.Sprintf("folio-%s-%s%s", t.ExportedAt.Format("20060102-150405"), t.ID[:8], f.Extension())
}

// Write renders t and writes it to path. When path is empty or a directory,
// a default filename inside dir (or path) is used. It returns the file written.
func (t *Transcript) Write(path, dir string) (string, error) {
	if len(t.Messages) == 0 {
		return "", fmt.Errorf("nothing to export: conversation is empty")
	}

	switch {
	case path == "":
		path = filepath.Join(dir, t.DefaultFilename(FormatMarkdown))
	case isDir(path):
		path = filepath.Join(path, t.DefaultFilename(FormatMarkdown))
	}

	data, err := t.Render(FormatFromPath(path))
	if err != nil {
		return "", fmt.Errorf("failed to render transcript: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}

	return path, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
