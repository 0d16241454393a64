package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DirTx replaces a whole output directory at once. Files are written into a
// staging directory next to the target; Commit swaps it in with two renames.
// Until Commit the target directory is never touched, and Abort discards the
// staging directory.
//
// Staging and retired directories are hidden siblings of the target, so two
// transactions on different targets under one parent do not collide.
type DirTx struct {
	final   string
	staging string
	logger  *slog.Logger
	done    bool
}

// BeginDir creates the staging directory for final. The parent of final is
// created when missing.
func BeginDir(final string, logger *slog.Logger) (*DirTx, error) {
	if logger == nil {
		logger = slog.Default()
	}
	final = filepath.Clean(final)
	parent := filepath.Dir(final)
	if err := EnsureDir(parent); err != nil {
		return nil, err
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(final)+".staging-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir for %s: %w", final, err)
	}
	if err := os.Chmod(staging, DirPerm); err != nil {
		os.RemoveAll(staging)
		return nil, fmt.Errorf("chmod staging dir %s: %w", staging, err)
	}
	logger.Debug("staging dir created", "dir", final, "staging", staging)
	return &DirTx{final: final, staging: staging, logger: logger}, nil
}

// Path is the staging directory files should be written into.
func (tx *DirTx) Path() string { return tx.staging }

// Final is the directory Commit installs the staged files as.
func (tx *DirTx) Final() string { return tx.final }

// Commit installs the staging directory as the target. An existing target is
// first renamed aside and removed once the new one is in place; a failure to
// remove it is logged, not returned. If the install rename fails the old
// target is put back.
func (tx *DirTx) Commit() error {
	if tx.done {
		return fmt.Errorf("commit %s: transaction already closed", tx.final)
	}
	tx.done = true
	parent := filepath.Dir(tx.final)

	success := false
	defer func() {
		if !success {
			tx.rollback()
		}
	}()

	if err := FsyncDir(tx.staging); err != nil {
		return fmt.Errorf("fsync staging dir: %w", err)
	}

	var retired string
	if _, err := os.Lstat(tx.final); err == nil {
		id, err := randomID()
		if err != nil {
			return fmt.Errorf("commit %s: %w", tx.final, err)
		}
		retired = filepath.Join(parent, "."+filepath.Base(tx.final)+".old-"+id)
		if err := os.Rename(tx.final, retired); err != nil {
			return fmt.Errorf("retire %s → %s: %w", tx.final, retired, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", tx.final, err)
	}

	if err := os.Rename(tx.staging, tx.final); err != nil {
		if retired != "" {
			if rerr := os.Rename(retired, tx.final); rerr != nil {
				tx.logger.Error("restore of previous output failed",
					"dir", tx.final,
					"retired", retired,
					"error", rerr,
				)
			}
		}
		return fmt.Errorf("install %s → %s: %w", tx.staging, tx.final, err)
	}
	success = true

	if err := FsyncDir(parent); err != nil {
		return fmt.Errorf("fsync parent dir: %w", err)
	}

	if retired != "" {
		if err := os.RemoveAll(retired); err != nil {
			tx.logger.Warn("remove previous output non-fatal error", "path", retired, "error", err)
		}
	}
	tx.logger.Debug("output dir installed", "dir", tx.final)
	return nil
}

// Abort removes the staging directory. It is a no-op after Commit.
func (tx *DirTx) Abort() {
	if tx.done {
		return
	}
	tx.done = true
	tx.rollback()
}

func (tx *DirTx) rollback() {
	if err := os.RemoveAll(tx.staging); err != nil {
		tx.logger.Warn("rollback: failed to remove staging dir", "path", tx.staging, "error", err)
	}
}

func randomID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
