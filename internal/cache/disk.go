package cache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"rusttypes/internal/fixture"
)

// bump when the Snapshot layout changes
const diskSchemaVersion uint16 = 1

// AppName names the cache directory under the user cache root.
const AppName = "rusttypes"

// ErrSchemaMismatch marks an entry written by an incompatible build.
var ErrSchemaMismatch = errors.New("cache entry has a different schema")

// Disk keeps fixture snapshots as msgpack files, one per key.
// Safe for concurrent use.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

type diskEntry struct {
	Schema   uint16
	Snapshot fixture.Snapshot
}

// DefaultDir is $XDG_CACHE_HOME/rusttypes, falling back to ~/.cache.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, AppName), nil
}

// OpenDisk opens (creating if needed) a cache rooted at dir. An empty dir
// means DefaultDir.
func OpenDisk(dir string) (*Disk, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

// Dir reports the cache root.
func (c *Disk) Dir() string { return c.dir }

func (c *Disk) pathFor(key [32]byte) string {
	return filepath.Join(c.dir, "fixtures", hex.EncodeToString(key[:])+".mp")
}

// Put writes s atomically under key.
func (c *Disk) Put(key [32]byte, s *fixture.Snapshot) (err error) {
	if c == nil || s == nil {
		return nil
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
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(&diskEntry{Schema: diskSchemaVersion, Snapshot: *s}); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Load reads the snapshot stored under key. A missing entry is (nil, nil).
func (c *Disk) Load(key [32]byte) (*fixture.Snapshot, error) {
	if c == nil {
		return nil, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var e diskEntry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	if e.Schema != diskSchemaVersion {
		return nil, fmt.Errorf("%w: %s has %d, want %d", ErrSchemaMismatch, p, e.Schema, diskSchemaVersion)
	}
	return &e.Snapshot, nil
}

// Get implements fixture.Cache; unreadable entries count as misses.
func (c *Disk) Get(key [32]byte) (*fixture.Snapshot, bool) {
	s, err := c.Load(key)
	return s, err == nil && s != nil
}

// DropAll removes every entry.
func (c *Disk) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
