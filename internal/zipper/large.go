package zipper

import (
	"context"

	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/manifest"
	"github.com/foldermover/foldermover/internal/progress"
)

// runLargePipeline copies every large file in folder's manifest directly,
// server-side, via the Transfer Agent, skipping anything already recorded
// in large_files_done (spec section 4.2: the large-file direct-copy path
// runs independently of and concurrently with the normal archive pipeline).
func (z *Zipper) runLargePipeline(ctx context.Context, folder string, files []manifest.LargeFileRecord) (failed bool) {
	if len(files) == 0 {
		return false
	}

	snapshot, err := z.a.Progress.LoadFolderProgress(ctx, folder)
	if err != nil {
		z.a.Logger.Logf(common.ELogLevel.Error(), "folder %s: loading progress for large pipeline: %v", folder, err)
		return true
	}

	for _, rec := range files {
		if z.a.ShutdownRequested() {
			return true
		}
		if snapshot.LargeFilesDone.Contains(rec.Path) {
			z.emitLarge(folder, rec, common.EWorkState.Skipped(), "already copied")
			continue
		}

		if err := z.copyLargeFile(ctx, folder, rec); err != nil {
			z.a.Logger.Logf(common.ELogLevel.Error(), "folder %s large file %s: %v", folder, rec.Path, err)
			z.emitLarge(folder, rec, common.EWorkState.Error(), err.Error())
			failed = true
			continue
		}
		z.emitLarge(folder, rec, common.EWorkState.Completed(), "")
	}
	return failed
}

func (z *Zipper) copyLargeFile(ctx context.Context, folder string, rec manifest.LargeFileRecord) error {
	src := common.JoinRemotePath(common.JoinRemotePath(z.a.Config.Source, folder), rec.Path)
	dst := common.JoinRemotePath(common.JoinRemotePath(z.a.Config.Destination, folder), rec.Path)

	z.emitLarge(folder, rec, common.EWorkState.Downloading(), "copying")
	if err := z.a.Transfer.CopyFile(ctx, src, dst); err != nil {
		return err
	}

	return z.a.Progress.UpdateFolderProgress(ctx, folder, func(fp *progress.FolderProgress) {
		fp.LargeFilesDone.Add(rec.Path)
	})
}

func (z *Zipper) emitLarge(folder string, rec manifest.LargeFileRecord, state common.WorkState, info string) {
	z.emit(folder, "large:"+rec.Path, state, info)
}
