// Package storage persists uploaded media files. The disk store writes under
// a configured root directory using generated names so user-supplied
// filenames never touch the filesystem.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type Store interface {
	// Save writes the contents of r and returns the stored name, which is
	// unique per call and safe to use as a URL path segment.
	Save(originalName string, r io.Reader) (string, error)
	Open(storedName string) (io.ReadCloser, error)
	Delete(storedName string) error
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &DiskStore{root: root}, nil
}

type DiskStore struct {
	root string
}

func (s *DiskStore) Save(originalName string, r io.Reader) (string, error) {
	name := storedName(originalName)
	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

func (s *DiskStore) Open(storedName string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.Base(storedName)))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *DiskStore) Delete(storedName string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(storedName)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// storedName keeps the original extension for content-type sniffing by static
// file servers but replaces the rest with a UUID.
func storedName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 10 {
		ext = ""
	}
	return uuid.NewString() + ext
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (s *MemoryStore) Save(originalName string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	name := storedName(originalName)
	s.mu.Lock()
	s.files[name] = data
	s.mu.Unlock()
	return name, nil
}

func (s *MemoryStore) Open(storedName string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.files[storedName]
	s.mu.Unlock()
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (s *MemoryStore) Delete(storedName string) error {
	s.mu.Lock()
	delete(s.files, storedName)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored files.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
