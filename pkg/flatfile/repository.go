// Package flatfile provides the repository pattern for the record files of
// the marketplace data directory.
package flatfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"

	"github.com/shunichi-ikebuchi/marketplace/pkg/pathutil"
)

// ErrLocked is returned when another process holds the data directory lock.
var ErrLocked = errors.New("data directory is locked by another process")

// Repository defines the interface for record file operations.
type Repository interface {
	// Exists reports whether the data directory exists
	Exists() bool

	// ReadRecordFile reads a record file; exists is false when it is absent
	ReadRecordFile(name string) (content string, exists bool, err error)

	// ReplaceRecordFile atomically replaces the whole content of a record file
	ReplaceRecordFile(name, content string) error

	// Lock takes the exclusive data directory lock
	Lock() (unlock func() error, err error)
}

// FileSystemRepository is a file system implementation of Repository.
type FileSystemRepository struct {
	pathResolver *pathutil.PathResolver
}

// NewFileSystemRepository creates a new FileSystemRepository.
func NewFileSystemRepository(pathResolver *pathutil.PathResolver) *FileSystemRepository {
	return &FileSystemRepository{
		pathResolver: pathResolver,
	}
}

// Exists reports whether the data directory exists.
func (r *FileSystemRepository) Exists() bool {
	info, err := os.Stat(r.pathResolver.GetDataDir())
	return err == nil && info.IsDir()
}

// ReadRecordFile reads the content of a record file.
// A missing file is not an error: it returns exists == false.
func (r *FileSystemRepository) ReadRecordFile(name string) (string, bool, error) {
	filePath, err := r.pathResolver.GetRecordPath(name)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read file: %w", err)
	}

	return string(data), true, nil
}

// ReplaceRecordFile writes content to a temporary file next to the record
// file and renames it into place, so readers see either the old or the new
// content and never a partial write.
func (r *FileSystemRepository) ReplaceRecordFile(name, content string) error {
	filePath, err := r.pathResolver.GetRecordPath(name)
	if err != nil {
		return err
	}

	if err := r.pathResolver.EnsureParentDir(filePath); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	if err := renameio.WriteFile(filePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	return nil
}

// Lock takes an exclusive lock on the data directory's lock file, creating
// the directory if needed. It fails fast with ErrLocked instead of waiting
// for another process.
func (r *FileSystemRepository) Lock() (func() error, error) {
	if err := r.pathResolver.EnsureDataDir(); err != nil {
		return nil, err
	}

	fl := flock.New(r.pathResolver.GetLockPath())
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock data directory: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	return fl.Unlock, nil
}
