package objstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotExist is returned by Backend.GetItem when the key is absent.
var ErrNotExist = errors.New("key does not exist")

// ErrUnavailable is returned by backends that cannot be used at all.
var ErrUnavailable = errors.New("storage backend unavailable")

// Backend is a synchronous string-keyed persistence capability.
type Backend interface {
	GetItem(key string) (string, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Clear() error
}

// MemoryBackend keeps items in a map. It is safe for concurrent use.
type MemoryBackend struct {
	mu     sync.Mutex
	items  map[string]string
	failOn error
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]string)}
}

// SetFailure makes every subsequent call return err. Pass nil to recover.
func (b *MemoryBackend) SetFailure(err error) {
	b.mu.Lock()
	b.failOn = err
	b.mu.Unlock()
}

func (b *MemoryBackend) GetItem(key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOn != nil {
		return "", b.failOn
	}
	v, ok := b.items[key]
	if !ok {
		return "", ErrNotExist
	}
	return v, nil
}

func (b *MemoryBackend) SetItem(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOn != nil {
		return b.failOn
	}
	b.items[key] = value
	return nil
}

func (b *MemoryBackend) RemoveItem(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOn != nil {
		return b.failOn
	}
	delete(b.items, key)
	return nil
}

func (b *MemoryBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOn != nil {
		return b.failOn
	}
	b.items = make(map[string]string)
	return nil
}

// FileBackend stores all items of one namespace in a single JSON file.
// Writes go through a temp file and rename.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

// NewFileBackend returns a backend persisting to path. The file and its
// directory are created lazily on first write.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) load() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	items := make(map[string]string)
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.path, err)
	}
	return items, nil
}

func (b *FileBackend) save(items map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, b.path)
}

func (b *FileBackend) GetItem(key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	items, err := b.load()
	if err != nil {
		return "", err
	}
	v, ok := items[key]
	if !ok {
		return "", ErrNotExist
	}
	return v, nil
}

func (b *FileBackend) SetItem(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	items, err := b.load()
	if err != nil {
		return err
	}
	items[key] = value
	return b.save(items)
}

func (b *FileBackend) RemoveItem(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	items, err := b.load()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return b.save(items)
}

func (b *FileBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := os.Remove(b.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", b.path, err)
	}
	return nil
}
