package zipper

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/foldermover/foldermover/internal/archive"
	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/diskwatch"
	"github.com/foldermover/foldermover/internal/progress"
	"github.com/foldermover/foldermover/internal/scratch"
)

const manifestFileName = ".manifest.txt"

// processBatch implements the per-batch worker from spec section 4.2 -- the
// hardest sub-algorithm in the system. It loops over splits rather than
// checking only the base archive key, which is what lets resume complete a
// previously-interrupted split series.
func (z *Zipper) processBatch(ctx context.Context, folder string, batch Batch) error {
	baseKey := z.baseArchiveKey(folder, batch.Label)

	snapshot, err := z.a.Progress.LoadFolderProgress(ctx, folder)
	if err != nil {
		return err
	}
	remaining := subtractCompleted(batch.Files, snapshot.CompletedFiles)
	if len(remaining) == 0 {
		z.emit(folder, batch.Label, common.EWorkState.Skipped(), "all files already archived")
		return nil
	}

	for splitIndex := 0; len(remaining) > 0; splitIndex++ {
		if z.a.ShutdownRequested() {
			return errors.New("shutdown requested")
		}

		archiveKey := splitKey(baseKey, splitIndex)
		partLabel := splitLabel(batch.Label, splitIndex)

		prog, err := z.a.Progress.LoadFolderProgress(ctx, folder)
		if err != nil {
			return err
		}
		if prog.CompletedKeys.Contains(archiveKey) {
			z.emit(folder, partLabel, common.EWorkState.Skipped(), archiveKey+" already uploaded")
			continue
		}

		failed, done, err := z.processSplit(ctx, folder, partLabel, archiveKey, &remaining)
		if err != nil {
			return err
		}
		if failed {
			return errors.Errorf("split %s failed", partLabel)
		}
		if done {
			break
		}
	}
	return nil
}

// processSplit runs exactly one iteration of the split loop: download the
// remaining files, watch disk/size/shutdown, zip and upload whatever
// landed, and record progress. It mutates *remaining in place so the
// caller's loop condition sees the updated set.
func (z *Zipper) processSplit(ctx context.Context, folder, partLabel, archiveKey string, remaining *[]string) (failed, done bool, err error) {
	scratchDir, err := scratch.New(z.a.Config.WorkDir, scratch.PrefixZip)
	if err != nil {
		return false, false, err
	}
	zipPath := scratchDir + ".zip"
	defer func() {
		_ = os.RemoveAll(scratchDir)
		_ = os.Remove(zipPath)
	}()

	manifestPath := filepath.Join(scratchDir, manifestFileName)
	if err := os.WriteFile(manifestPath, []byte(strings.Join(*remaining, "\n")), 0o644); err != nil {
		return false, false, err
	}

	sourceRoot := common.JoinRemotePath(z.a.Config.Source, folder)
	z.emit(folder, partLabel, common.EWorkState.Downloading(), archiveKey)

	download, err := z.a.Transfer.StartBulkDownload(ctx, sourceRoot, manifestPath, scratchDir, z.a.Config.DownloadThreads)
	if err != nil {
		return false, false, err
	}

	diskTriggered, sizeTriggered, shutdownTriggered, waitErr := z.pollDownload(ctx, download, scratchDir)
	if shutdownTriggered {
		return true, false, nil
	}

	downloaded, err := enumerateDownloaded(scratchDir, manifestFileName)
	if err != nil {
		return false, false, err
	}
	*remaining = filterOutDownloaded(*remaining, downloaded)

	if len(downloaded) == 0 {
		if !diskTriggered && !sizeTriggered && waitErr != nil {
			z.emit(folder, partLabel, common.EWorkState.Error(), waitErr.Error())
			return true, false, nil
		}
		// nothing landed, and either a watermark tripped before any file
		// finished or the download exited without error: loop again
		// (caller increments splitIndex) to retry the remainder in a
		// fresh split.
		return false, len(*remaining) == 0, nil
	}

	if err := z.verifyDiskBeforeZip(scratchDir); err != nil {
		z.emit(folder, partLabel, common.EWorkState.Error(), err.Error())
		return true, false, nil
	}

	if err := archive.BuildStoreOnly(scratchDir, zipPath, manifestFileName); err != nil {
		z.emit(folder, partLabel, common.EWorkState.Error(), err.Error())
		return true, false, nil
	}
	if err := archive.VerifyIntegrity(zipPath); err != nil {
		z.emit(folder, partLabel, common.EWorkState.Error(), "archive integrity check failed")
		return true, false, nil
	}

	z.emit(folder, partLabel, common.EWorkState.Uploading(), archiveKey)
	if err := z.a.Staging.PutFile(ctx, archiveKey, zipPath); err != nil {
		z.emit(folder, partLabel, common.EWorkState.Error(), err.Error())
		return true, false, nil
	}
	exists, _, err := z.a.Staging.Head(ctx, archiveKey)
	if err != nil || !exists {
		z.emit(folder, partLabel, common.EWorkState.Error(), "post-upload head check failed")
		return true, false, nil
	}

	if err := z.a.Progress.UpdateFolderProgress(ctx, folder, func(fp *progress.FolderProgress) {
		fp.CompletedKeys.Add(archiveKey)
		fp.CompletedFiles.AddAll(downloaded)
	}); err != nil {
		return false, false, err
	}

	z.emit(folder, partLabel, common.EWorkState.Completed(), archiveKey)
	if sizeTriggered {
		z.emit(folder, partLabel, common.EWorkState.Backpressure(), "archive size cap reached, escalating to a new split")
	}
	return false, len(*remaining) == 0, nil
}

// pollDownload watches an in-flight bulk download every ~2s (spec section
// 4.2), killing it and reporting which invariant tripped first.
func (z *Zipper) pollDownload(ctx context.Context, download interface {
	Poll() (bool, error)
	Wait() error
	Kill()
}, scratchDir string) (diskTriggered, sizeTriggered, shutdownTriggered bool, waitErr error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	maxZipBytes := z.a.Config.MaxZipSizeBytes()

	for {
		<-ticker.C
		if finished, err := download.Poll(); finished {
			return false, false, false, err
		}

		if over, err := z.a.Disk.OverLimit(); err == nil && over {
			download.Kill()
			return true, false, false, download.Wait()
		}

		if size, err := scratch.DirSize(scratchDir, manifestFileName); err == nil && size > maxZipBytes {
			download.Kill()
			return false, true, false, download.Wait()
		}

		if z.a.ShutdownRequested() {
			download.Kill()
			download.Wait() //nolint:errcheck
			return false, false, true, nil
		}
	}
}

func (z *Zipper) verifyDiskBeforeZip(scratchDir string) error {
	dirSize, err := scratch.DirSize(scratchDir, manifestFileName)
	if err != nil {
		return err
	}
	free, err := diskwatch.FreeBytes(z.a.Config.WorkDir)
	if err != nil {
		return err
	}
	required := uint64(float64(dirSize) * 1.1)
	if free < required {
		return errors.New("insufficient free disk before zipping")
	}
	return nil
}

func subtractCompleted(files []string, completed *progress.OrderedSet) []string {
	var out []string
	for _, f := range files {
		if !completed.Contains(common.NormalizeSlashPath(f)) {
			out = append(out, f)
		}
	}
	return out
}

func filterOutDownloaded(remaining []string, downloaded []string) []string {
	done := make(map[string]bool, len(downloaded))
	for _, d := range downloaded {
		done[common.NormalizeSlashPath(d)] = true
	}
	var out []string
	for _, r := range remaining {
		if !done[common.NormalizeSlashPath(r)] {
			out = append(out, r)
		}
	}
	return out
}

// enumerateDownloaded walks scratchDir and returns every regular,
// non-empty, non-manifest file's path relative to scratchDir, normalized
// to '/' (spec section 4.2: "downloaded").
func enumerateDownloaded(scratchDir, manifestName string) ([]string, error) {
	var out []string
	err := filepath.Walk(scratchDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		if info.Name() == manifestName || info.Size() == 0 {
			return nil
		}
		rel, err := filepath.Rel(scratchDir, path)
		if err != nil {
			return err
		}
		out = append(out, common.NormalizeSlashPath(rel))
		return nil
	})
	return out, err
}

func splitLabel(batchLabel string, splitIndex int) string {
	if splitIndex == 0 {
		return batchLabel
	}
	return batchLabel + "_Split" + strconv.Itoa(splitIndex)
}
