package identity

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
)

// FileStore keeps the device identifier in a single file, the local-storage
// analog for a process that owns its own disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "os.ReadFile failed: ")
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *FileStore) Save(id string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrap(err, "os.MkdirAll failed: ")
	}
	if err := os.WriteFile(f.path, []byte(id), 0o600); err != nil {
		return errors.Wrap(err, "os.WriteFile failed: ")
	}
	return nil
}
