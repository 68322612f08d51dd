package accountstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileStore keeps each key in its own JSON file under a directory. Writers
// take an exclusive lock and replace the file atomically, so concurrent
// processes never observe a partial write.
// Implements domain.AccountStore.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create account store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file that backs key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load reads the file for key; a missing file yields (nil, nil).
func (s *FileStore) Load(key string) ([]byte, error) {
	if !keyPattern.MatchString(key) {
		return nil, fmt.Errorf("invalid store key %q", key)
	}

	lock := flock.New(s.Path(key) + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock account store: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read account store: %w", err)
	}
	return data, nil
}

// Save writes data for key through a temp file and rename.
func (s *FileStore) Save(key string, data []byte) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid store key %q", key)
	}

	lock := flock.New(s.Path(key) + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock account store: %w", err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return fmt.Errorf("replace account store: %w", err)
	}
	return nil
}
