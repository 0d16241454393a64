// Package storage provides durable file output for the corpus writer:
// atomic, checksummed line files and directory helpers.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// FsyncDir opens the directory at path and calls fsync on it so that a
// rename into it survives a crash.
func FsyncDir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fsync dir open %s: %w", path, err)
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return fmt.Errorf("fsync dir sync %s: %w", path, err)
	}
	if err := d.Close(); err != nil {
		return fmt.Errorf("fsync dir close %s: %w", path, err)
	}
	return nil
}

// AtomicWriteFile writes data to a temporary file next to finalPath, fsyncs
// it, renames it over finalPath and fsyncs the parent directory. Readers see
// either the old file or the complete new one.
func AtomicWriteFile(finalPath string, data []byte) error {
	f, err := CreateAtomic(finalPath)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Abort()
		return err
	}
	_, err = f.Commit()
	return err
}

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, DirPerm); err != nil {
		return fmt.Errorf("ensure dir %s: %w", path, err)
	}
	return nil
}

func tempPattern(finalPath string) (dir, pattern string) {
	return filepath.Dir(finalPath), "." + filepath.Base(finalPath) + ".tmp-*"
}
