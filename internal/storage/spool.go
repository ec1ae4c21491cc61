// Package storage holds uploaded files for the lifetime of one request.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/soochol/medsum/internal/medsum"
)

var ErrNotFound = errors.New("file not found")

// FileInfo describes a spooled upload.
type FileInfo struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
	Path        string // absolute path on disk
	CreatedAt   time.Time
}

// Spool writes uploads to a private directory until they are released.
type Spool struct {
	baseDir string
	mu      sync.Mutex
	files   map[string]*FileInfo
}

// NewSpool creates baseDir with owner-only permissions. An empty baseDir
// selects a medsum-uploads directory under os.TempDir().
func NewSpool(baseDir string) (*Spool, error) {
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "medsum-uploads")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{baseDir: baseDir, files: make(map[string]*FileInfo)}, nil
}

// Save copies reader to a new file. Only the extension of filename is kept.
func (s *Spool) Save(_ context.Context, filename, contentType string, reader io.Reader) (*FileInfo, error) {
	id := medsum.GenerateID()
	fullPath := filepath.Join(s.baseDir, id+filepath.Ext(filename))

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	n, err := io.Copy(f, reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("write file: %w", err)
	}

	info := &FileInfo{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        n,
		Path:        fullPath,
		CreatedAt:   time.Now(),
	}
	s.mu.Lock()
	s.files[id] = info
	s.mu.Unlock()
	return info, nil
}

// Release removes a spooled file from disk.
func (s *Spool) Release(_ context.Context, id string) error {
	s.mu.Lock()
	info, ok := s.files[id]
	delete(s.files, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("release %s: %w", id, ErrNotFound)
	}
	if err := os.Remove(info.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Len reports how many files are currently held.
func (s *Spool) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
