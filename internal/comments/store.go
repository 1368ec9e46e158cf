// Package comments keeps the comment threads attached to published
// submissions. Threads live in memory and every mutation is written through
// to a Backend before it is acknowledged.
package comments

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/eliseohh/confessbot/internal/logger"
)

var (
	ErrNotPersisted = errors.New("comment not persisted")
	ErrClosed       = errors.New("comment store closed")
)

// Threads maps a decimal ordinal to its comments in insertion order. Comment
// text is stored raw; escaping happens at display time.
type Threads map[string][]string

// Backend is durable storage for Threads.
type Backend interface {
	Name() string
	// Load returns the persisted threads. A missing store is reported as an
	// error wrapping fs.ErrNotExist.
	Load() (Threads, error)
	// Persist writes threads after the thread under key changed. Backends
	// may rewrite everything or just that thread.
	Persist(threads Threads, key string) error
	Close() error
}

type Store struct {
	mu      sync.Mutex
	threads Threads
	backend Backend
	closed  bool
	now     func() time.Time
}

func Key(ordinal uint64) string {
	return strconv.FormatUint(ordinal, 10)
}

// Open loads the backend's threads. Any load failure leaves the store empty
// rather than failing startup.
func Open(b Backend) *Store {
	s := &Store{threads: make(Threads), backend: b, now: time.Now}

	loaded, err := b.Load()
	switch {
	case err == nil:
		if loaded != nil {
			s.threads = loaded
		}
		logger.Info("comment_store_loaded", "backend", b.Name(), "threads", len(s.threads))
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("comment_store_empty", "backend", b.Name())
	default:
		logger.Warn("comment_store_load_failed", "backend", b.Name(), "error", err)
	}
	return s
}

// Append adds text to the end of ordinal's thread and persists before
// returning. On a backend failure the in-memory append is undone.
func (s *Store) Append(ordinal uint64, text string) error {
	key := Key(ordinal)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: %w", ErrNotPersisted, ErrClosed)
	}

	prev, existed := s.threads[key]
	next := make([]string, len(prev), len(prev)+1)
	copy(next, prev)
	s.threads[key] = append(next, text)

	if err := s.backend.Persist(s.threads, key); err != nil {
		if existed {
			s.threads[key] = prev
		} else {
			delete(s.threads, key)
		}
		return fmt.Errorf("%w: %s: %w", ErrNotPersisted, s.backend.Name(), err)
	}
	return nil
}

// Read returns a copy of ordinal's thread; empty if there is none.
func (s *Store) Read(ordinal uint64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.threads[Key(ordinal)]
	out := make([]string, len(t))
	copy(out, t)
	return out
}

// All returns a deep copy of every thread.
func (s *Store) All() Threads {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneThreads(s.threads)
}

type Stats struct {
	Threads  int
	Comments int
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Threads: len(s.threads)}
	for _, t := range s.threads {
		st.Comments += len(t)
	}
	return st
}

// Export writes every thread as the pretty-printed JSON document also used
// by the json backend.
func (s *Store) Export(w io.Writer) error {
	b, err := encodeThreads(s.All())
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Snapshot writes a timestamped copy of every thread into dir and returns
// the file path.
func (s *Store) Snapshot(dir string) (string, error) {
	b, err := encodeThreads(s.All())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	name := fmt.Sprintf("comments-%s.json", s.now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, name)
	if err := writeFileAtomic(path, b); err != nil {
		return "", err
	}
	return path, nil
}

// Close releases the backend. Later appends fail with ErrClosed; reads keep
// serving the in-memory threads.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.Close()
}

func cloneThreads(t Threads) Threads {
	out := make(Threads, len(t))
	for k, v := range t {
		c := make([]string, len(v))
		copy(c, v)
		out[k] = c
	}
	return out
}

func encodeThreads(t Threads) ([]byte, error) {
	b, err := json.MarshalIndent(t, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode threads: %w", err)
	}
	return append(b, '\n'), nil
}

// writeFileAtomic writes to a temp file next to path and renames it over
// path so a crash never leaves a truncated document.
func writeFileAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
