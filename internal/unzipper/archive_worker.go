package unzipper

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/foldermover/foldermover/internal/archive"
	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/progress"
	"github.com/foldermover/foldermover/internal/scratch"
	"github.com/foldermover/foldermover/internal/status"
)

// processArchive implements spec section 4.3 step 3: download one archive,
// verify it, bomb-check it, extract it, merge it into the destination, and
// record processed_keys only after the merge succeeds. The downloaded file
// and scratch directory are always cleaned up.
func (u *Unzipper) processArchive(ctx context.Context, folder, key string) error {
	label := archiveLabel(folder, key)

	scratchDir, err := scratch.New(u.a.Config.WorkDir, scratch.PrefixUnzip)
	if err != nil {
		return err
	}
	zipPath := scratchDir + ".zip"
	defer func() {
		_ = os.RemoveAll(scratchDir)
		_ = os.Remove(zipPath)
	}()

	u.a.Status.Send(status.Update{Label: label, State: common.EWorkState.Downloading(), Info: key})
	if err := u.a.Staging.GetToFile(ctx, key, zipPath); err != nil {
		return errors.Wrap(err, "downloading archive")
	}

	info, err := os.Stat(zipPath)
	if err != nil {
		return errors.Wrap(err, "downloaded archive missing")
	}
	downloadedSize := info.Size()
	if downloadedSize == 0 {
		return errors.New("downloaded archive is zero bytes")
	}

	if err := archive.VerifyIntegrity(zipPath); err != nil {
		return errors.Wrap(err, "archive integrity check failed")
	}

	extractedSize, err := archive.TotalUncompressedSize(zipPath)
	if err != nil {
		return err
	}
	if archive.BombRatioExceeded(downloadedSize, extractedSize, u.a.Config.BombRatioCap) {
		return errors.New("archive exceeds zip-bomb ratio cap, refusing to extract")
	}

	u.a.Status.Send(status.Update{Label: label, State: common.EWorkState.Extracting(), Info: key})
	if err := archive.Extract(zipPath, scratchDir); err != nil {
		return errors.Wrap(err, "extracting archive")
	}

	u.a.Status.Send(status.Update{Label: label, State: common.EWorkState.Uploading(), Info: key})
	if err := u.merge(ctx, folder, scratchDir); err != nil {
		return errors.Wrap(err, "merging extracted tree into destination")
	}

	if err := u.a.Progress.UpdateUnzipProgress(ctx, folder, func(p *progress.UnzipProgress) {
		p.ProcessedKeys.Add(key)
	}); err != nil {
		return err
	}
	u.a.Status.Send(status.Update{Label: label, State: common.EWorkState.Completed(), Info: key})
	return nil
}

// merge uploads scratchDir into <destination>/<folder>/ with "do not
// overwrite" semantics (spec section 4.3). In SKIP_UPLOAD mode the
// destination is a local path and the no-clobber merge is implemented
// explicitly rather than relying on the Transfer Agent's --ignore-existing.
func (u *Unzipper) merge(ctx context.Context, folder, scratchDir string) error {
	if !u.a.Config.SkipUpload {
		destRoot := common.JoinRemotePath(u.a.Config.Destination, folder)
		return u.a.Transfer.RecursiveCopyNoClobber(ctx, scratchDir, destRoot)
	}
	destRoot := filepath.Join(u.a.Config.Destination, folder)
	if err := os.MkdirAll(destRoot, 0o755); err != nil {
		return err
	}
	return mergeNoClobber(scratchDir, destRoot)
}

// mergeNoClobber walks src and, for every regular file not already present
// at the corresponding path under dst, moves it there; directories are
// created as needed and recursed into (spec section 4.3: "for each file in
// scratch not present at destination, move it; for each subdirectory,
// recurse").
func mergeNoClobber(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		srcPath := filepath.Join(src, e.Name())
		dstPath := filepath.Join(dst, e.Name())

		if e.IsDir() {
			if err := os.MkdirAll(dstPath, 0o755); err != nil {
				return err
			}
			if err := mergeNoClobber(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if _, err := os.Stat(dstPath); err == nil {
			continue // already present at destination: do not overwrite
		} else if !os.IsNotExist(err) {
			return err
		}
		if err := os.Rename(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}
