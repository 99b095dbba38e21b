package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

var ErrIO = errors.New("output write failed")

// WriteFile creates the parent directories of path and writes it atomically: fn writes
// into a temporary file next to path, which replaces path only when fn succeeds.
// On failure the temporary file is removed and an existing path is left as it was.
func WriteFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer pending.Cleanup() //nolint:errcheck

	if err = fn(pending); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrIO, path, err)
	}
	if err = pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
