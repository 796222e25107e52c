// Package prompts provides the suggested prompts offered on an empty
// conversation.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Prompt is one pre-canned question
type Prompt struct {
	Label string `yaml:"label"`
	Text  string `yaml:"text"`
}

// Title returns Label, or Text when no label is set
func (p Prompt) Title() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Text
}

type file struct {
	Prompts []Prompt `yaml:"prompts"`
}

// Defaults returns the built-in prompt set
func Defaults() []Prompt {
	list, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("prompts: embedded defaults are invalid: %v", err))
	}
	return list
}

// Parse decodes a prompts document. Entries with blank text are rejected.
func Parse(data []byte) ([]Prompt, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}

	out := make([]Prompt, 0, len(f.Prompts))
	for i, p := range f.Prompts {
		p.Label = strings.TrimSpace(p.Label)
		p.Text = strings.TrimSpace(p.Text)
		if p.Text == "" {
			return nil, fmt.Errorf("prompt %d has no text", i+1)
		}
		out = append(out, p)
	}
	return out, nil
}

// Load returns the prompts from path, or the defaults when path is empty
func Load(path string) ([]Prompt, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	list, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return Defaults(), nil
	}
	return list, nil
}

// Pick returns the prompt for a 1-based number key, as shown in the empty
// state.
func Pick(list []Prompt, n int) (Prompt, bool) {
	if n < 1 || n > len(list) || n > 9 {
		return Prompt{}, false
	}
	return list[n-1], true
}
