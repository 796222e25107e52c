package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
)

// ContentResult is the outcome of a content fetch
type ContentResult struct {
	Body        []byte
	ETag        string
	NotModified bool // Served from cache after a 304
}

// Count returns the number of items when the body is a JSON array, or -1
func (r *ContentResult) Count() int {
	parsed := gjson.ParseBytes(r.Body)
	if !parsed.IsArray() {
		return -1
	}
	return len(parsed.Array())
}

// ContentCache keeps the last body seen per URL alongside its ETag
type ContentCache interface {
	Get(url string) (etag string, body []byte, ok bool)
	Put(url, etag string, body []byte) error
}

type cachedContent struct {
	URL  string `json:"url"`
	ETag string `json:"etag"`
	Body []byte `json:"body"`
}

// memoryCache is the default ContentCache, scoped to one Client
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]cachedContent
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]cachedContent)}
}

func (m *memoryCache) Get(url string) (string, []byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[url]
	return entry.ETag, entry.Body, ok
}

func (m *memoryCache) Put(url, etag string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if etag == "" {
		delete(m.entries, url)
		return nil
	}
	m.entries[url] = cachedContent{URL: url, ETag: etag, Body: body}
	return nil
}

// DiskCache is a ContentCache that survives across runs, one JSON file per URL
type DiskCache struct {
	dir string
}

// NewDiskCache returns a DiskCache rooted at dir. The directory is created on
// first write.
func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{dir: dir}
}

func (d *DiskCache) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(d.dir, hex.EncodeToString(sum[:8])+".json")
}

// Get returns the cached entry for url. Unreadable or foreign entries are
// treated as misses.
func (d *DiskCache) Get(url string) (string, []byte, bool) {
	data, err := os.ReadFile(d.path(url))
	if err != nil {
		return "", nil, false
	}
	var entry cachedContent
	if err := json.Unmarshal(data, &entry); err != nil || entry.URL != url || entry.ETag == "" {
		return "", nil, false
	}
	return entry.ETag, entry.Body, true
}

// Put stores body under url. An empty etag removes the entry.
func (d *DiskCache) Put(url, etag string, body []byte) error {
	path := d.path(url)
	if etag == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cache entry: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(d.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.Marshal(cachedContent{URL: url, ETag: etag, Body: body})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// FetchContent performs an ETag-aware GET of a content resource path.
// A 304 answer returns the cached body with NotModified set.
func (c *Client) FetchContent(ctx context.Context, path string) (*ContentResult, error) {
	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.applyHeaders(ctx, req)
	req.Header.Del("Content-Type")

	cachedETag, cachedBody, hasCached := c.contentCache.Get(url)
	if hasCached {
		req.Header.Set("If-None-Match", cachedETag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, "fetch content", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotModified && hasCached {
		c.logger.Debug().Str("url", url).Msg("content not modified")
		return &ContentResult{Body: cachedBody, ETag: cachedETag, NotModified: true}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.transportError(ctx, "read content", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, url, body)
	}

	etag := resp.Header.Get("ETag")
	if err := c.contentCache.Put(url, etag, body); err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("failed to cache content")
	}

	return &ContentResult{Body: body, ETag: etag}, nil
}
