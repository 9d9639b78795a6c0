// Package archive builds and reads the capped, store-only zip containers
// described in spec section 3/6 ("Archive"). Uses the standard library's
// archive/zip: no example repo or pack library provides a zip *container*
// format (klauspost/compress, an indirect teacher dependency, provides only
// compression codecs, not a container writer/reader), and zip.Store
// natively satisfies the "store-only (no compression)" requirement, so a
// third-party zip library would add a dependency with no capability gain
// (see SPEC_FULL.md section B).
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// BuildStoreOnly zips every non-empty regular file under dir (relative
// paths preserved, separators normalized to '/') into destZipPath using the
// Store method, skipping the manifest file by name if present. Zero-byte
// files are left out of the archive.
func BuildStoreOnly(dir, destZipPath string, excludeNames ...string) error {
	exclude := make(map[string]bool, len(excludeNames))
	for _, n := range excludeNames {
		exclude[n] = true
	}

	out, err := os.Create(destZipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		if exclude[info.Name()] || info.Size() == 0 {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = rel
		hdr.Method = zip.Store

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "building archive")
	}
	return zw.Close()
}

// VerifyIntegrity tests every entry's CRC, the equivalent the spec asks for
// ("verify archive integrity... testing every CRC in the archive").
func VerifyIntegrity(zipPath string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return errors.Wrap(err, "opening archive for verification")
	}
	defer r.Close()

	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return errors.Wrapf(err, "opening entry %s", f.Name)
		}
		_, err = io.Copy(io.Discard, rc)
		rc.Close()
		if err != nil {
			return errors.Wrapf(err, "CRC check failed for entry %s", f.Name)
		}
	}
	return nil
}

// TotalUncompressedSize sums every entry's uncompressed size, used for the
// zip-bomb ratio check (spec section 4.3/8, invariant 8).
func TotalUncompressedSize(zipPath string) (int64, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	var total int64
	for _, f := range r.File {
		total += int64(f.UncompressedSize64)
	}
	return total, nil
}

// BombRatioExceeded reports whether extractedSize/downloadedSize exceeds
// cap (spec default 100x, section 4.3 / invariant 8). A zero or negative
// downloadedSize is treated as exceeding, since the ratio is undefined and
// refusing to extract is the safe default.
func BombRatioExceeded(downloadedSize, extractedSize int64, cap float64) bool {
	if downloadedSize <= 0 {
		return true
	}
	ratio := float64(extractedSize) / float64(downloadedSize)
	return ratio > cap
}

// Extract unpacks every entry of zipPath into destDir, creating parent
// directories as needed. It tolerates entries whose declared path tries to
// escape destDir by refusing to write them, rather than failing the whole
// extraction -- mirroring "tolerate 'extracted with warnings' exit states
// as success" (spec section 4.3).
func Extract(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractOne(f, destDir); err != nil {
			return errors.Wrapf(err, "extracting %s", f.Name)
		}
	}
	return nil
}

func extractOne(f *zip.File, destDir string) error {
	cleanName := filepath.Clean(f.Name)
	if strings.HasPrefix(cleanName, "..") || filepath.IsAbs(cleanName) {
		return nil // warning-tolerant: skip unsafe entries rather than aborting
	}
	target := filepath.Join(destDir, cleanName)

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
