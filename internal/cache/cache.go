// Package cache stores the outcome of applying a script to a file, keyed by
// the digests of both, so that unchanged inputs are not transformed again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Entry changes.
const schemaVersion uint16 = 1

// Key identifies a (file content, script, language) triple.
type Key [sha256.Size]byte

// NewKey digests the inputs of one transformation.
func NewKey(content, script []byte, language string) Key {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(language), script, content} {
		var n [8]byte
		size := uint64(len(part))
		for i := range n {
			n[i] = byte(size >> (8 * i))
		}
		h.Write(n[:])
		h.Write(part)
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Entry is the cached result of one transformation.
type Entry struct {
	Schema    uint16
	Path      string
	Output    string
	Size      uint32
	Changed   bool
	Failed    bool
	CreatedAt time.Time
}

// Cache is a directory of msgpack entries. It is safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	dir    string
	maxAge time.Duration
}

// New opens the cache rooted at dir, creating it when needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// SetMaxAge makes entries older than d misses. Zero keeps entries forever.
func (c *Cache) SetMaxAge(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxAge = d
}

func (c *Cache) pathFor(key Key) string {
	s := key.String()
	return filepath.Join(c.dir, s[:2], s+".mp")
}

// Put writes e under key. The file is replaced atomically.
func (c *Cache) Put(key Key, e *Entry) error {
	if c == nil {
		return nil
	}
	size, err := safecast.Conv[uint32](len(e.Output))
	if err != nil {
		return fmt.Errorf("output of %s: %w", e.Path, err)
	}
	e.Schema, e.Size = schemaVersion, size
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(e); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the entry stored under key. Entries of another schema, stale
// entries and entries whose output was truncated are misses.
func (c *Cache) Get(key Key) (*Entry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	if e.Schema != schemaVersion || int(e.Size) != len(e.Output) {
		return nil, false, nil
	}
	if c.maxAge > 0 && time.Since(e.CreatedAt) > c.maxAge {
		return nil, false, nil
	}
	return &e, true, nil
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
