// Package fs provides a filesystem-based implementation of the ArchiveStore interface.
package fs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tendant/simple-scene/pkg/simplescene"
)

// Store implements the ArchiveStore interface using the local filesystem
type Store struct {
	baseDir string
}

// Config holds configuration for the filesystem store
type Config struct {
	BaseDir string
}

// New creates a new filesystem-based archive store
func New(config Config) (simplescene.ArchiveStore, error) {
	if config.BaseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	// Create base directory if it doesn't exist
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Store{
		baseDir: config.BaseDir,
	}, nil
}

// Save writes the archive to a file under the base directory
func (s *Store) Save(ctx context.Context, key string, r io.Reader) error {
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	// Create directory structure if needed
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Open returns a reader for the archive file stored under key
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, simplescene.ErrArchiveNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes the archive file and cleans up empty parent directories
func (s *Store) Delete(ctx context.Context, key string) error {
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return simplescene.ErrArchiveNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	// Clean up empty directories
	s.cleanupEmptyDirectories(filepath.Dir(fullPath))

	return nil
}

// Stat retrieves file metadata for the archive stored under key
func (s *Store) Stat(ctx context.Context, key string) (*simplescene.ArchiveInfo, error) {
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, simplescene.ErrArchiveNotFound
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &simplescene.ArchiveInfo{
		Key:       key,
		Size:      info.Size(),
		UpdatedAt: info.ModTime().UTC(),
	}, nil
}

// List walks the base directory and returns the keys under the given prefix
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}

		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// cleanupEmptyDirectories removes empty directories up the tree
func (s *Store) cleanupEmptyDirectories(dir string) {
	for dir != s.baseDir && strings.HasPrefix(dir, s.baseDir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}

		if err := os.Remove(dir); err != nil {
			break
		}

		dir = filepath.Dir(dir)
	}
}
