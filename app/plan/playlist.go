package plan

import (
	"os"
	"path/filepath"
	"time"

	"github.com/lysyi3m/media-comb/app/errs"
)

// PlaylistPath names the playlist of a run after its date: <dir>/<YYYY-MM-DD>.<ext>.
func PlaylistPath(dir, ext string, now time.Time) string {
	return filepath.Join(dir, now.Format("2006-01-02")+"."+ext)
}

// EnsureDirs creates every directory in dirs.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &errs.FilesystemError{Op: "create directory", Path: dir, Cause: err}
		}
	}
	return nil
}

// WritePlaylist writes text to path, creating the parent directory first.
func WritePlaylist(path, text string) error {
	if err := EnsureDirs(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return &errs.FilesystemError{Op: "write playlist", Path: path, Cause: err}
	}
	return nil
}
