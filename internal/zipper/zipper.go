// Package zipper implements spec section 4.2: the Zipper state machine
// START -> FETCH_LISTS -> (NORMAL_PIPELINE || LARGE_PIPELINE) ->
// MARK_COMPLETE_IF_NO_FAILURE -> END, including the adaptive
// split-escalating archive builder (the hardest sub-algorithm in the
// spec) and the direct-copy large-file pipeline.
package zipper

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/foldermover/foldermover/internal/app"
	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/manifest"
	"github.com/foldermover/foldermover/internal/progress"
	"github.com/foldermover/foldermover/internal/status"
)

type Zipper struct {
	a       *app.App
	mstore  *manifest.Store
}

func New(a *app.App) *Zipper {
	return &Zipper{a: a, mstore: manifest.NewStore(a.Staging, a.Config.S3Prefix)}
}

// Run drives every folder in the folder index that is not yet
// folder_complete (spec section 4.2 contract), with folders processed
// concurrently up to MaxParallelWorkers.
func (z *Zipper) Run(ctx context.Context) error {
	folders, ok, err := z.mstore.ReadFolderIndex(ctx)
	if err != nil {
		return err
	}
	if !ok {
		z.a.Logger.Log(common.ELogLevel.Warn(), "no folder index found; has the mapper run?")
		return nil
	}

	sem := make(chan struct{}, z.a.Config.MaxParallelWorkers)
	g, gctx := errgroup.WithContext(ctx)

	for _, folder := range folders {
		folder := folder
		if z.a.ShutdownRequested() {
			break
		}
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			return z.processFolder(gctx, folder)
		})
	}
	return g.Wait()
}

func (z *Zipper) processFolder(ctx context.Context, folder string) error {
	prog, err := z.a.Progress.LoadFolderProgress(ctx, folder)
	if err != nil {
		return err
	}
	if prog.FolderComplete {
		z.a.Status.Send(status.Update{Label: folder, State: common.EWorkState.Skipped(), Info: "already complete"})
		return nil
	}
	z.a.Logger.Logf(common.ELogLevel.Info(), "folder %s: %s -> %s", folder,
		common.EFolderState.Mapped(), common.EFolderState.Zipping())

	normalFiles, err := z.mstore.ReadNormalList(ctx, folder)
	if err != nil {
		z.a.Logger.Logf(common.ELogLevel.Error(), "folder %s: reading normal list: %v", folder, err)
		return err
	}
	largeFiles, err := z.mstore.ReadLargeFiles(ctx, folder)
	if err != nil {
		z.a.Logger.Logf(common.ELogLevel.Error(), "folder %s: reading large-file manifest: %v", folder, err)
		return err
	}

	var normalFailed, largeFailed bool
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		normalFailed = z.runNormalPipeline(ctx, folder, normalFiles)
	}()
	go func() {
		defer wg.Done()
		largeFailed = z.runLargePipeline(ctx, folder, largeFiles)
	}()
	wg.Wait()

	if normalFailed || largeFailed {
		z.a.Status.Send(status.Update{Label: folder, State: common.EWorkState.Error(), Info: "folder incomplete, will resume on next run"})
		return nil // a folder failure must not abort the run for other folders
	}

	if err := z.a.Progress.UpdateFolderProgress(ctx, folder, func(fp *progress.FolderProgress) {
		fp.FolderComplete = true
	}); err != nil {
		z.a.Logger.Logf(common.ELogLevel.Error(), "folder %s: marking complete: %v", folder, err)
		return err
	}
	z.a.Status.Send(status.Update{Label: folder, State: common.EWorkState.Completed(), Info: "folder complete"})
	z.a.Logger.Logf(common.ELogLevel.Info(), "folder %s: %s -> %s", folder,
		common.EFolderState.Zipping(), common.EFolderState.Unzipping())
	return nil
}

func (z *Zipper) baseArchiveKey(folder, partLabel string) string {
	return z.a.Config.S3Prefix + common.SanitizeFolderName(folder) + "_" + partLabel + ".zip"
}

func splitKey(baseKey string, splitIndex int) string {
	if splitIndex == 0 {
		return baseKey
	}
	return strings.TrimSuffix(baseKey, ".zip") + "_Split" + strconv.Itoa(splitIndex) + ".zip"
}
