package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/voicelab/internal"
)

// Workspace holds the temporary files of a single request
type Workspace struct {
	Dir       string
	CreatedAt time.Time
}

// Create creates a new isolated workspace in the system temp directory
func Create(prefix string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	return &Workspace{
		Dir:       dir,
		CreatedAt: time.Now(),
	}, nil
}

// Path returns the path of name inside the workspace
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Save writes r into the workspace under a sanitized version of name and
// returns the full path and the number of bytes written.
func (w *Workspace) Save(name string, r io.Reader) (string, int64, error) {
	dst := w.Path(internal.SanitizeFilename(name))
	f, err := os.Create(dst)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", filepath.Base(dst), err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return "", n, fmt.Errorf("write %s: %w", filepath.Base(dst), err)
	}
	return dst, n, nil
}

// FindByExt returns the first file in the workspace with the given extension
func (w *Workspace) FindByExt(ext string) (string, bool) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ext {
			return w.Path(e.Name()), true
		}
	}
	return "", false
}

// Cleanup removes the workspace directory and all contents
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Dir)
}
