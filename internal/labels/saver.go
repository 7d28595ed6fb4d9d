package labels

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Saver writes downloaded label files
type Saver interface {
	// Save stores data under name and returns the written path
	Save(name string, data []byte) (string, error)
}

// DirSaver writes files into a directory
type DirSaver struct {
	fs  afero.Fs
	dir string
}

// NewDirSaver creates a saver writing into dir on fs.
// A nil fs means the OS filesystem.
func NewDirSaver(fs afero.Fs, dir string) *DirSaver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &DirSaver{fs: fs, dir: expandHome(dir)}
}

// Save writes data to dir/name. An existing file gets a numeric suffix.
func (s *DirSaver) Save(name string, data []byte) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path, err := s.freePath(filepath.Base(name))
	if err != nil {
		return "", err
	}
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func (s *DirSaver) freePath(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	path := filepath.Join(s.dir, name)
	for i := 1; i < 1000; i++ {
		exists, err := afero.Exists(s.fs, path)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !exists {
			return path, nil
		}
		path = filepath.Join(s.dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
	return "", fmt.Errorf("too many files named %s in %s", name, s.dir)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
