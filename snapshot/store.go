package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/navitia/artemis/framework"
)

// ErrNoBaseDir is returned by NewStore if no response directory was configured.
var ErrNoBaseDir = errors.New("RESPONSE_FILE_PATH is not set")

// Store writes response files under a base directory.
type Store struct {
	baseDir string
	logger  framework.Logger
}

func NewStore(baseDir string, logger framework.Logger) (*Store, error) {
	if baseDir == "" {
		return nil, ErrNoBaseDir
	}
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Store{baseDir: baseDir, logger: logger}, nil
}

func (s *Store) BaseDir() string {
	return s.baseDir
}

// Path returns the location of the response file for an identity.
func (s *Store) Path(id Identity) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(id.String()))
}

// Save writes the response of a call to url under the given identity, replacing any existing
// file, and returns the same identity. The response is a decoded document as returned by
// ParseResponse.
func (s *Store) Save(id Identity, url string, response any) (Identity, error) {
	if err := id.Validate(); err != nil {
		return id, err
	}
	path := s.Path(id)
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return id, err
	}

	data, err := Record{Query: url, Response: response}.MarshalIndented()
	if err != nil {
		return id, fmt.Errorf("cannot serialize response of %s: %w", url, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return id, err
	}
	s.logger.Printf("Saved response of %s to %s", url, path)
	return id, nil
}

// Load reads back the response file for an identity.
func (s *Store) Load(id Identity) (Record, error) {
	return ReadRecord(s.Path(id))
}

// ensureDir creates dir and its parents. Another process creating the same directory at the
// same time is not an error.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("cannot create response directory %s: %w", dir, err)
	}
	return nil
}
