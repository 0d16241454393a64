package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
)

// Checksum is a hex SHA-256 digest with a "sha256:" prefix.
type Checksum string

const checksumPrefix = "sha256:"

var ErrChecksumMismatch = errors.New("checksum mismatch")

// ComputeChecksum hashes a byte slice.
func ComputeChecksum(data []byte) Checksum {
	sum := sha256.Sum256(data)
	return formatChecksum(sum[:])
}

func formatChecksum(sum []byte) Checksum {
	return Checksum(checksumPrefix + hex.EncodeToString(sum))
}

// digest accumulates size, line count and SHA-256 of a byte stream. Both
// AtomicFile and HashFile describe files through it, so a FileInfo from a
// write and one from a later read compare equal.
type digest struct {
	h     hash.Hash
	size  int64
	lines int
}

func newDigest() *digest {
	return &digest{h: sha256.New()}
}

func (d *digest) Write(p []byte) (int, error) {
	d.h.Write(p)
	d.size += int64(len(p))
	d.lines += bytes.Count(p, []byte{'\n'})
	return len(p), nil
}

func (d *digest) info(path string) FileInfo {
	return FileInfo{Path: path, Size: d.size, Lines: d.lines, Checksum: formatChecksum(d.h.Sum(nil))}
}

// HashFile reads the file at path and describes it.
func HashFile(path string) (FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("hash %s: %w", path, err)
	}
	defer f.Close()

	d := newDigest()
	if _, err := io.Copy(d, f); err != nil {
		return FileInfo{}, fmt.Errorf("hash %s: %w", path, err)
	}
	return d.info(path), nil
}

// VerifyFileChecksum reports ErrChecksumMismatch when the file at path does
// not hash to expected.
func VerifyFileChecksum(path string, expected Checksum) error {
	info, err := HashFile(path)
	if err != nil {
		return err
	}
	if info.Checksum != expected {
		return fmt.Errorf("%w: %s expected %s got %s", ErrChecksumMismatch, path, expected, info.Checksum)
	}
	return nil
}
