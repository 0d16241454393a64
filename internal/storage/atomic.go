package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const writeBufSize = 64 * 1024

// FileInfo describes a committed file.
type FileInfo struct {
	Path     string
	Size     int64
	Lines    int
	Checksum Checksum
}

// AtomicFile is a buffered writer that lands at its final path only on
// Commit. It hashes everything written, so the checksum of the committed file
// is known without reading it back.
//
// An AtomicFile is not safe for concurrent use.
type AtomicFile struct {
	finalPath string
	tmp       *os.File
	buf       *bufio.Writer
	sum       *digest
	done      bool
}

// CreateAtomic opens a temporary file in the directory of finalPath.
func CreateAtomic(finalPath string) (*AtomicFile, error) {
	dir, pattern := tempPattern(finalPath)
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("atomic create temp in %s: %w", dir, err)
	}
	if err := tmp.Chmod(FilePerm); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("atomic chmod %s: %w", tmp.Name(), err)
	}
	sum := newDigest()
	return &AtomicFile{
		finalPath: finalPath,
		tmp:       tmp,
		buf:       bufio.NewWriterSize(io.MultiWriter(tmp, sum), writeBufSize),
		sum:       sum,
	}, nil
}

// Write implements io.Writer.
func (f *AtomicFile) Write(p []byte) (int, error) {
	n, err := f.buf.Write(p)
	if err != nil {
		return n, fmt.Errorf("atomic write %s: %w", f.finalPath, err)
	}
	return n, nil
}

// WriteLine writes s followed by a newline.
func (f *AtomicFile) WriteLine(s string) error {
	if _, err := f.buf.WriteString(s); err != nil {
		return fmt.Errorf("atomic write %s: %w", f.finalPath, err)
	}
	if err := f.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("atomic write %s: %w", f.finalPath, err)
	}
	return nil
}

// Commit flushes, fsyncs and renames the temporary file to its final path,
// then fsyncs the parent directory. On error the temporary file is removed.
func (f *AtomicFile) Commit() (FileInfo, error) {
	if f.done {
		return FileInfo{}, fmt.Errorf("atomic commit %s: already closed", f.finalPath)
	}
	f.done = true
	tmpPath := f.tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := f.buf.Flush(); err != nil {
		f.tmp.Close()
		return FileInfo{}, fmt.Errorf("atomic flush %s: %w", f.finalPath, err)
	}
	if err := f.tmp.Sync(); err != nil {
		f.tmp.Close()
		return FileInfo{}, fmt.Errorf("atomic fsync %s: %w", f.finalPath, err)
	}
	if err := f.tmp.Close(); err != nil {
		return FileInfo{}, fmt.Errorf("atomic close %s: %w", f.finalPath, err)
	}
	if err := os.Rename(tmpPath, f.finalPath); err != nil {
		return FileInfo{}, fmt.Errorf("atomic rename %s → %s: %w", tmpPath, f.finalPath, err)
	}
	if err := FsyncDir(filepath.Dir(f.finalPath)); err != nil {
		return FileInfo{}, fmt.Errorf("atomic fsync parent dir: %w", err)
	}

	success = true
	return f.sum.info(f.finalPath), nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (f *AtomicFile) Abort() {
	if f.done {
		return
	}
	f.done = true
	f.tmp.Close()
	os.Remove(f.tmp.Name())
}
