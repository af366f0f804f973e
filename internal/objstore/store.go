// Package objstore is a typed JSON object store over a string key/value
// backend. Every operation fails soft: an unavailable or broken backend
// behaves like an empty one and never surfaces an error to the caller.
package objstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

const probeKey = "__docsearch_probe__"

// ErrorHandler receives failures that the store swallowed.
type ErrorHandler func(op string, err error)

// Option configures a Store.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	onError ErrorHandler
}

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithErrorHandler registers a callback for swallowed failures.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(o *options) { o.onError = fn }
}

// Store holds one value of type T under a fixed key.
type Store[T any] struct {
	backend Backend
	key     string
	opts    options

	probeOnce sync.Once
	supported bool
}

// New returns a Store for key on backend. A nil backend is treated as
// unavailable.
func New[T any](backend Backend, key string, opts ...Option) *Store[T] {
	s := &Store[T]{backend: backend, key: key}
	for _, opt := range opts {
		opt(&s.opts)
	}
	if s.opts.logger == nil {
		s.opts.logger = slog.Default()
	}
	return s
}

// Key returns the key the store writes under.
func (s *Store[T]) Key() string {
	return s.key
}

// GetItem returns the stored value. ok is false when the backend is
// unavailable, the key is absent or the stored data is not valid JSON for T.
func (s *Store[T]) GetItem() (value T, ok bool) {
	var raw string
	err := s.call(func(b Backend) error {
		var err error
		raw, err = b.GetItem(s.key)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotExist) {
			s.report("get", err)
		}
		return value, false
	}
	if raw == "" || raw == "null" {
		return value, false
	}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		s.report("get", fmt.Errorf("decode %s: %w", s.key, err))
		var zero T
		return zero, false
	}
	return value, true
}

// SetItem replaces the stored value.
func (s *Store[T]) SetItem(value T) {
	data, err := json.Marshal(value)
	if err != nil {
		s.report("set", fmt.Errorf("encode %s: %w", s.key, err))
		return
	}
	if err := s.call(func(b Backend) error { return b.SetItem(s.key, string(data)) }); err != nil {
		s.report("set", err)
	}
}

// RemoveItem deletes the stored value.
func (s *Store[T]) RemoveItem() {
	err := s.call(func(b Backend) error { return b.RemoveItem(s.key) })
	if err != nil && !errors.Is(err, ErrNotExist) {
		s.report("remove", err)
	}
}

// Clear empties the whole backend namespace, not only this key.
func (s *Store[T]) Clear() {
	if err := s.call(func(b Backend) error { return b.Clear() }); err != nil {
		s.report("clear", err)
	}
}

// IsSupported probes the backend with a write/read/delete cycle. The result
// of the first probe is kept for the lifetime of the store.
func (s *Store[T]) IsSupported() bool {
	s.probeOnce.Do(func() {
		s.supported = Probe(s.backend)
	})
	return s.supported
}

// Probe reports whether backend accepts a write, returns it and deletes it.
func Probe(backend Backend) (ok bool) {
	if backend == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	if err := backend.SetItem(probeKey, probeKey); err != nil {
		return false
	}
	v, err := backend.GetItem(probeKey)
	if err != nil || v != probeKey {
		return false
	}
	return backend.RemoveItem(probeKey) == nil
}

func (s *Store[T]) call(fn func(Backend) error) (err error) {
	if s.backend == nil {
		return ErrUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnavailable, r)
		}
	}()
	return fn(s.backend)
}

func (s *Store[T]) report(op string, err error) {
	s.opts.logger.Debug("object store operation failed", "op", op, "key", s.key, "error", err)
	if s.opts.onError != nil {
		s.opts.onError(op, err)
	}
}
