package render

import (
	"testing"

	"github.com/diogo/folio/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	md := config.MarkdownConfig{Style: "light", EnableEmoji: false, TableWrap: true, InlineTableLinks: true}
	opts := OptionsFromConfig(md)

	if opts.Style != "light" || opts.EnableEmoji || opts.PreserveNewLines || !opts.TableWrap || !opts.InlineTableLinks {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.Width != 80 {
		t.Errorf("expected default width 80, got %d", opts.Width)
	}

	if got := OptionsFromConfig(config.MarkdownConfig{}).Style; got != "dark" {
		t.Errorf("empty style should keep the default, got %q", got)
	}
}

func TestOptionsFromConfig_EnvOverride(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "dracula")

	if got := OptionsFromConfig(config.DefaultMarkdownConfig()).Style; got != "dracula" {
		t.Errorf("expected GLAMOUR_STYLE to win, got %q", got)
	}
}
