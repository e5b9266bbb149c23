package engine

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Cached memoises the results of an inner engine in memory and, when a
// DiskCache is attached, across runs. Failures are never cached.
type Cached struct {
	inner Engine
	disk  *DiskCache

	mu  sync.Mutex
	mem map[uint64]string

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps inner. disk may be nil.
func NewCached(inner Engine, disk *DiskCache) *Cached {
	return &Cached{inner: inner, disk: disk, mem: make(map[uint64]string)}
}

// Fingerprint forwards the inner engine's fingerprint.
func (c *Cached) Fingerprint() string { return fingerprint(c.inner) }

func fingerprint(e Engine) string {
	if fp, ok := e.(Fingerprinter); ok {
		return fp.Fingerprint()
	}
	return "engine"
}

// Key hashes everything the inner engine's output depends on.
func (c *Cached) Key(text string, lineLength int) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(fingerprint(c.inner))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(strconv.Itoa(lineLength))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(text)
	return h.Sum64()
}

// FormatCode implements Engine.
func (c *Cached) FormatCode(ctx context.Context, text string, lineLength int) (string, error) {
	key := c.Key(text, lineLength)

	c.mu.Lock()
	out, ok := c.mem[key]
	c.mu.Unlock()
	if ok {
		c.hits.Add(1)
		return out, nil
	}

	var entry DiskEntry
	if found, err := c.disk.Get(key, &entry); err == nil && found &&
		entry.Input == text && entry.LineLength == lineLength && entry.Engine == c.Fingerprint() {
		c.remember(key, entry.Output)
		c.hits.Add(1)
		return entry.Output, nil
	}

	c.misses.Add(1)
	out, err := c.inner.FormatCode(ctx, text, lineLength)
	if err != nil {
		return "", err
	}
	c.remember(key, out)
	// Ошибка записи кеша не должна ронять форматирование.
	_ = c.disk.Put(key, &DiskEntry{
		Engine:     c.Fingerprint(),
		LineLength: lineLength,
		Input:      text,
		Output:     out,
	})
	return out, nil
}

func (c *Cached) remember(key uint64, out string) {
	c.mu.Lock()
	c.mem[key] = out
	c.mu.Unlock()
}

// Stats returns the number of cache hits and misses so far.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
