package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// poolKey identifies renderers that produce identical output.
type poolKey struct {
	style       string
	width       int
	emoji       bool
	newlines    bool
	tableWrap   bool
	inlineLinks bool
}

func keyFor(opts Options) poolKey {
	return poolKey{
		style:       ResolveStyle(opts.Style),
		width:       opts.wrapWidth(),
		emoji:       opts.EnableEmoji,
		newlines:    opts.PreserveNewLines,
		tableWrap:   opts.TableWrap,
		inlineLinks: opts.InlineTableLinks,
	}
}

// rendererPools hands out glamour renderers per poolKey. A TermRenderer is
// not safe for concurrent Render calls, so each caller takes its own.
type rendererPools struct {
	mu    sync.Mutex
	pools map[poolKey]*sync.Pool
}

var replyRenderers = newRendererPools()

func newRendererPools() *rendererPools {
	return &rendererPools{pools: make(map[poolKey]*sync.Pool)}
}

func (p *rendererPools) pool(key poolKey) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pool, ok := p.pools[key]
	if !ok {
		pool = &sync.Pool{}
		p.pools[key] = pool
	}
	return pool
}

// acquire returns a pooled renderer for opts, building one when the pool is
// empty.
func (p *rendererPools) acquire(opts Options) (*glamour.TermRenderer, poolKey, error) {
	key := keyFor(opts)
	if r, ok := p.pool(key).Get().(*glamour.TermRenderer); ok {
		return r, key, nil
	}
	r, err := newRenderer(key)
	return r, key, err
}

func (p *rendererPools) release(key poolKey, r *glamour.TermRenderer) {
	if r == nil {
		return
	}
	p.pool(key).Put(r)
}

func (p *rendererPools) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pools)
}

func newRenderer(key poolKey) (*glamour.TermRenderer, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithStylePath(key.style),
		glamour.WithWordWrap(key.width),
		glamour.WithTableWrap(key.tableWrap),
		glamour.WithInlineTableLinks(key.inlineLinks),
	}
	if key.emoji {
		opts = append(opts, glamour.WithEmoji())
	}
	if key.newlines {
		opts = append(opts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(opts...)
}
