package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"snakefmt/internal/engine"
	"snakefmt/internal/format"
)

const fileCacheSchema uint16 = 1

// Digest identifies a file content under given formatting settings.
type Digest [32]byte

// FileCache remembers files known to be already formatted, keyed by path
// and by the digest of their content and the settings.
type FileCache struct {
	mu     sync.RWMutex
	byPath map[string]Digest // key: absolute path
	file   string            // пусто = только в памяти
	dirty  bool
}

type fileCacheDisk struct {
	Schema uint16
	Files  map[string]Digest
}

// NewFileCache creates an in-memory FileCache with the given capacity hint.
func NewFileCache(capHint int) *FileCache {
	return &FileCache{byPath: make(map[string]Digest, capHint)}
}

// LoadFileCache reads the cache stored in dir. A missing or outdated file
// yields an empty cache that Save will create.
func LoadFileCache(dir string) (*FileCache, error) {
	c := NewFileCache(64)
	c.file = filepath.Join(dir, "files.mp")
	// #nosec G304 -- path is under the cache directory
	data, err := os.ReadFile(c.file)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	var disk fileCacheDisk
	if err := msgpack.Unmarshal(data, &disk); err != nil || disk.Schema != fileCacheSchema {
		// битый или старый кеш просто пересоздаётся
		return c, nil
	}
	for path, d := range disk.Files {
		c.byPath[path] = d
	}
	return c, nil
}

// Formatted reports whether path was recorded with digest d.
func (c *FileCache) Formatted(path string, d Digest) bool {
	if c == nil {
		return false
	}
	key, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	c.mu.RLock()
	rec, ok := c.byPath[key]
	c.mu.RUnlock()
	return ok && rec == d
}

// Put records path as formatted with digest d.
func (c *FileCache) Put(path string, d Digest) {
	if c == nil {
		return
	}
	key, err := filepath.Abs(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	if rec, ok := c.byPath[key]; !ok || rec != d {
		c.byPath[key] = d
		c.dirty = true
	}
	c.mu.Unlock()
}

// Save writes the cache back to disk if it changed.
func (c *FileCache) Save() (err error) {
	if c == nil || c.file == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	data, err := msgpack.Marshal(&fileCacheDisk{Schema: fileCacheSchema, Files: c.byPath})
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(c.file), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(c.file), "files-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(f.Name(), c.file); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// combineDigest: H(content || line length || engine fingerprint || engine options).
func combineDigest(content []byte, fc format.Context, eng engine.Engine) Digest {
	h := sha256.New()
	_, _ = h.Write(content)
	ll, err := safecast.Conv[uint64](fc.LineLength)
	if err != nil {
		ll = 0
	}
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], ll)
	_, _ = h.Write(n[:])
	if fp, ok := eng.(engine.Fingerprinter); ok {
		_, _ = h.Write([]byte(fp.Fingerprint()))
	}
	_, _ = h.Write([]byte{0})
	if fc.Engine.SkipStringNormalization {
		_, _ = h.Write([]byte{1})
	}
	for _, v := range fc.Engine.TargetVersions {
		_, _ = h.Write([]byte(v))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
