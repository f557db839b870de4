package imports

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// increment when diskPayload changes shape
const diskCacheSchemaVersion uint16 = 1

// Key addresses extracted facts by language and file content.
type Key [sha256.Size]byte

func KeyFor(lang string, content []byte) Key {
	h := sha256.New()
	_, _ = h.Write([]byte(lang))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content)
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// DiskCache хранит извлечённые импорты и декларации по хешу содержимого.
// Safe for concurrent use; a nil *DiskCache is a valid disabled cache.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type diskPayload struct {
	Schema  uint16
	Imports []Spec
	Decls   []Decl
}

// OpenDiskCache opens $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Key) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "facts", hexKey[:2], hexKey+".mp")
}

// Get returns cached facts. A payload from another schema is a miss.
func (c *DiskCache) Get(key Key) (*Facts, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var payload diskPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	return &Facts{Imports: payload.Imports, Decls: payload.Decls}, true, nil
}

// Put writes facts atomically (temp file + rename).
func (c *DiskCache) Put(key Key, facts *Facts) error {
	if c == nil || facts == nil {
		return nil
	}
	data, err := msgpack.Marshal(&diskPayload{
		Schema:  diskCacheSchemaVersion,
		Imports: facts.Imports,
		Decls:   facts.Decls,
	})
	if err != nil {
		return err
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
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "facts"))
}
