package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctx400/pv/internal/vault"
)

const FilePermSecure = 0600 // File: owner rw only

// FileStore persists a vault as the canonical JSON document at a single
// path. This is the default and interchange format.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store for the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the destination path.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the canonical representation atomically: the document goes
// to a temp file in the destination directory and is renamed into place,
// so a crash mid-write cannot truncate an existing vault.
func (s *FileStore) Save(v *vault.Vault) error {
	data, err := v.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".pv-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(FilePermSecure); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write vault: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write vault: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace vault file: %w", err)
	}

	return nil
}

// Load reads and parses the vault file. Read failures surface as wrapped
// I/O errors; parse failures surface as the vault codec's errors.
func (s *FileStore) Load() (*vault.Vault, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}
	return vault.Unmarshal(data)
}
