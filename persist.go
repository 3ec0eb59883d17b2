// Crash-safe file replacement.
//
// WriteFile never modifies the destination in place. The new content goes
// to a uniquely named temp file beside it, which is synced and closed
// before being renamed over the destination; the directory is then synced
// so the rename itself is durable. A crash before the rename leaves the old
// file untouched and orphans the temp file, which the next WriteFile to the
// same destination removes. A crash after it leaves the complete new file.
//
// Concurrent writers to the same destination are serialised by a sidecar
// lock (see lock.go); the last one to finish wins.
package quire

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
)

// renameFile is replaced in tests to simulate a failure at the last step.
var renameFile = func(root *os.Root, oldname, newname string) error {
	return root.Rename(oldname, newname)
}

// WriteFile atomically replaces the file at path with data.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir, name := filepath.Split(path)
	if name == "" {
		return fmt.Errorf("persist: %q names a directory", path)
	}
	if dir == "" {
		dir = "."
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return fmt.Errorf("persist: open dir: %w", err)
	}
	defer root.Close()

	lk, err := lockFile(root, name)
	if err != nil {
		return fmt.Errorf("persist: lock: %w", err)
	}
	defer lk.release()

	if err := removeStale(root, name); err != nil {
		return fmt.Errorf("persist: remove stale temp: %w", err)
	}

	tmp := name + "." + uuid.NewString() + ".tmp"
	f, err := root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("persist: create temp: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			f.Close()
			root.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("persist: write temp: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("persist: sync temp: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("persist: close temp: %w", err)
	}
	if err := renameFile(root, tmp, name); err != nil {
		return fmt.Errorf("persist: rename: %w", err)
	}
	committed = true

	if err := syncDir(root); err != nil {
		return fmt.Errorf("persist: sync dir: %w", err)
	}
	return nil
}

// SaveFile saves d and atomically writes it to path.
func (d *Document) SaveFile(path string) error {
	data, err := d.Save()
	if err != nil {
		return err
	}
	if err := WriteFile(path, data, 0644); err != nil {
		return err
	}
	d.logger().Debug("quire: persisted document", "path", path, "bytes", len(data))
	return nil
}

// removeStale deletes temp files orphaned by an interrupted WriteFile.
func removeStale(root *os.Root, name string) error {
	matches, err := fs.Glob(root.FS(), globEscape(name)+".*.tmp")
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range matches {
		if err := root.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func syncDir(root *os.Root) error {
	if runtime.GOOS == "windows" {
		return nil // directories cannot be fsynced
	}
	d, err := root.Open(".")
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// globEscape quotes the pattern metacharacters understood by fs.Glob.
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
