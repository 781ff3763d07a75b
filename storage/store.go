// Package storage keeps encoded images in a temporary directory until they are downloaded
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("file not found")
	ErrAccessDenied = errors.New("access denied")
)

type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates dir if needed and returns a store rooted at its absolute path.
func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve temp dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return &Store{dir: abs, now: time.Now}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// NewName returns stego_<12 hex>_<unix>.png.
func (s *Store) NewName() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("stego_%s_%d.png", token, s.now().Unix())
}

// Save writes data under a fresh name and returns that name.
func (s *Store) Save(data []byte) (string, error) {
	name := s.NewName()
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return name, nil
}

// Path resolves a download name to a file inside the store directory.
func (s *Store) Path(name string) (string, error) {
	p := filepath.Join(s.dir, name)
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	if abs != s.dir && !strings.HasPrefix(abs, s.dir+string(filepath.Separator)) {
		return "", ErrAccessDenied
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() {
		return "", ErrNotFound
	}
	return abs, nil
}

func (s *Store) Remove(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// Expire removes encoded outputs last modified more than ttl ago and returns
// their names.
func (s *Store) Expire(ttl time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list temp dir: %w", err)
	}

	cutoff := s.now().Add(-ttl)
	var removed []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "stego_") || filepath.Ext(name) != ".png" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := s.Remove(name); err != nil && !errors.Is(err, ErrNotFound) {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
