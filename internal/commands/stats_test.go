package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draft = "Shipped a chat relay in Go this week.\n\nRate limits, CORS and a TUI. #golang #OpenSource\n"

func TestStatsCommand_File(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "post.md")
	require.NoError(t, os.WriteFile(path, []byte(draft), 0o600))

	stdout, _, err := env.run(t, "stats", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Words")
	assert.Contains(t, stdout, "Paragraphs")
	assert.Contains(t, stdout, "#golang #OpenSource")
	assert.Contains(t, stdout, "characters left of 3000")
}

func TestStatsCommand_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.piped = true
	env.stdin = draft

	stdout, _, err := env.run(t, "stats", "--json", "--limit", "20")
	require.NoError(t, err)

	var got struct {
		Words      int      `json:"words"`
		Paragraphs int      `json:"paragraphs"`
		Hashtags   []string `json:"hashtags"`
		Limit      int      `json:"limit"`
		OverLimit  bool     `json:"over_limit"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))

	assert.Equal(t, 2, got.Paragraphs)
	assert.Equal(t, len(strings.Fields(draft)), got.Words)
	assert.Equal(t, []string{"golang", "OpenSource"}, got.Hashtags)
	assert.Equal(t, 20, got.Limit)
	assert.True(t, got.OverLimit)
}

func TestStatsCommand_OverLimit(t *testing.T) {
	env := newTestEnv(t)
	env.piped = true
	env.stdin = strings.Repeat("a", 12)

	stdout, _, err := env.run(t, "stats", "--limit", "10")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 characters over the 10 limit")
}

func TestStatsCommand_NoInput(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "stats")
	assert.ErrorContains(t, err, "no input")

	_, _, err = env.run(t, "stats", filepath.Join(t.TempDir(), "missing.md"))
	assert.ErrorContains(t, err, "failed to read file")
}
