package ebay

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileTokenStore persists a refresh token as plaintext in a per-environment
// file named deterministically from the environment. A missing file loads as
// an empty token, not an error.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a store rooted at dir for the given environment.
// An empty dir means the current working directory.
func NewFileTokenStore(dir string, env Environment) *FileTokenStore {
	if dir == "" {
		dir = "."
	}
	return &FileTokenStore{path: filepath.Join(dir, env.TokenFileName())}
}

// Path returns the backing file path.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load reads the stored refresh token, returning "" when no file exists.
func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading refresh token file %s: %w", s.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the refresh token, replacing any previous value.
func (s *FileTokenStore) Save(token string) error {
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing refresh token file %s: %w", s.path, err)
	}
	return nil
}
