// Package scratch manages local scratch directories: unique allocation per
// spec section 4.2/4.3 ("create a unique local scratch directory") and the
// orphan-cleanup sweep from section 4.4 that removes any leftover
// temp_/unzip_/merge_ directory at startup and on a disk-watermark trip.
package scratch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	PrefixZip    = "temp_"
	PrefixUnzip  = "unzip_"
	PrefixMerge  = "merge_"
)

// New creates a fresh, uniquely-named scratch directory under root with the
// given prefix (PrefixZip/PrefixUnzip/PrefixMerge), using a UUID suffix the
// way the teacher generates unique per-transfer temp names throughout ste/.
func New(root, prefix string) (string, error) {
	dir := filepath.Join(root, prefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// CleanOrphans removes scratch directories under root whose name begins
// with one of the three known prefixes. It is called at process startup
// and by the Unzipper before each archive while disk usage is over the
// backpressure watermark (spec section 4.4/4.3).
// Directories are retried once after clearing read-only bits, mirroring
// the original Python implementation's force-cleanup of locked folders
// (see SPEC_FULL.md section C).
func CleanOrphans(root string) []error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []error{err}
	}

	var errs []error
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if !hasOrphanPrefix(name) {
			continue
		}
		path := filepath.Join(root, name)
		if err := os.RemoveAll(path); err != nil {
			_ = forceWritable(path)
			if err2 := os.RemoveAll(path); err2 != nil {
				errs = append(errs, err2)
			}
		}
	}
	return errs
}

func hasOrphanPrefix(name string) bool {
	return strings.HasPrefix(name, PrefixZip) ||
		strings.HasPrefix(name, PrefixUnzip) ||
		strings.HasPrefix(name, PrefixMerge)
}

func forceWritable(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		_ = os.Chmod(path, 0o755)
		return nil
	})
}

// DirSize returns the total byte size of all regular files under dir,
// excluding the manifest file itself -- used both for the archive-size-cap
// watch during download and for the pre-zip free-disk check in section
// 4.2.
func DirSize(dir string, excludeNames ...string) (int64, error) {
	exclude := make(map[string]bool, len(excludeNames))
	for _, n := range excludeNames {
		exclude[n] = true
	}
	var total int64
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if exclude[info.Name()] {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total, err
}
