// Package render turns assistant replies into styled terminal output.
package render

// Options configures how a reply is rendered.
type Options struct {
	// Width is the wrap column requested by the caller
	Width int

	// Style is a glamour style name or a path to a JSON style file
	Style string

	EnableEmoji      bool
	PreserveNewLines bool

	// TableWrap wraps long table cells instead of truncating them
	TableWrap bool

	// InlineTableLinks keeps project links inside table cells
	InlineTableLinks bool
}

const (
	minWrapWidth  = 20
	wrapWidthStep = 8
)

// DefaultOptions returns the options used when no markdown config is set.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            ThemeDark,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns a copy of o wrapping at width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// wrapWidth rounds Width down to a multiple of wrapWidthStep so that bubble
// widths differing by a column or two share renderers.
func (o Options) wrapWidth() int {
	w := o.Width - o.Width%wrapWidthStep
	if w < minWrapWidth {
		return minWrapWidth
	}
	return w
}
