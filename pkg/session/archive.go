package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opsbrain/dtree/pkg/treefile"
)

// archiveSweep moves every tree file older than the retention window
// (measured from last-modified time) into a dated archive subdirectory,
// e.g. archive/20250815/. Archived trees are immutable; the sweep never
// touches them again.
//
// The sweep keeps going past individual failures and reports them joined,
// so one stuck file cannot shadow the rest.
func (m *Manager) archiveSweep() error {
	dir := m.projectDir()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrArchivalFailed, dir, err)
	}

	cutoff := m.cfg.Now().Add(-m.cfg.Retention)

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		date, ok := treefile.ParseFilename(entry.Name())
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			errs = append(errs, fmt.Errorf("stat %s: %w", entry.Name(), err))
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		src := filepath.Join(dir, entry.Name())
		dstDir := filepath.Join(dir, archiveDir, date.Format("20060102"))
		if err := m.archiveFile(src, dstDir, entry.Name()); err != nil {
			errs = append(errs, err)
			continue
		}

		m.log.Info("tree archived", "file", entry.Name(), "to", dstDir)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrArchivalFailed, errors.Join(errs...))
	}
	return nil
}

// archiveFile moves src into dstDir/name. Rename is tried first; when that
// fails (e.g. across filesystems) the file is copied through a temp file in
// the destination directory, synced, renamed into place, and only then is
// the source removed. A crash mid-move therefore never leaves the tree
// missing from both locations, and a retried move overwrites the same
// destination name idempotently.
func (m *Manager) archiveFile(src, dstDir, name string) error {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating archive dir %s: %w", dstDir, err)
	}

	dst := filepath.Join(dstDir, name)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dstDir, ".archive-*")
	if err != nil {
		return fmt.Errorf("creating archive temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing archive copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing archive copy: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("committing archive copy: %w", err)
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("removing archived source %s: %w", src, err)
	}

	return nil
}
