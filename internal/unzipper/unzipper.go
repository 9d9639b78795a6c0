// Package unzipper implements spec section 4.3: download each folder's
// archives in natural-sort order, verify, extract, and merge into the
// destination, resuming from processed_keys.
package unzipper

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/foldermover/foldermover/internal/app"
	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/manifest"
	"github.com/foldermover/foldermover/internal/progress"
	"github.com/foldermover/foldermover/internal/scratch"
	"github.com/foldermover/foldermover/internal/status"
	"golang.org/x/sync/errgroup"
)

type Unzipper struct {
	a      *app.App
	mstore *manifest.Store
}

func New(a *app.App) *Unzipper {
	return &Unzipper{a: a, mstore: manifest.NewStore(a.Staging, a.Config.S3Prefix)}
}

// Run drives every folder in the folder index that is not yet
// folder_complete in the Unzipper progress (spec section 4.3 contract),
// with folders processed concurrently up to MaxParallelWorkers.
func (u *Unzipper) Run(ctx context.Context) error {
	folders, ok, err := u.mstore.ReadFolderIndex(ctx)
	if err != nil {
		return err
	}
	if !ok {
		u.a.Logger.Log(common.ELogLevel.Warn(), "no folder index found; has the mapper run?")
		return nil
	}

	sem := make(chan struct{}, u.a.Config.MaxParallelWorkers)
	g, gctx := errgroup.WithContext(ctx)

	for _, folder := range folders {
		folder := folder
		if u.a.ShutdownRequested() {
			break
		}
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			return u.processFolder(gctx, folder)
		})
	}
	return g.Wait()
}

func (u *Unzipper) processFolder(ctx context.Context, folder string) error {
	up, err := u.a.Progress.LoadUnzipProgress(ctx, folder)
	if err != nil {
		return err
	}
	if up.FolderComplete {
		u.a.Status.Send(status.Update{Label: folder, State: common.EWorkState.Skipped(), Info: "already complete"})
		return nil
	}
	u.a.Logger.Logf(common.ELogLevel.Info(), "folder %s: entering %s", folder, common.EFolderState.Unzipping())

	keys, err := u.listArchiveKeys(ctx, folder)
	if err != nil {
		u.a.Logger.Logf(common.ELogLevel.Error(), "folder %s: listing archives: %v", folder, err)
		return err
	}

	var remaining []string
	for _, k := range keys {
		if !up.ProcessedKeys.Contains(k) {
			remaining = append(remaining, k)
		}
	}
	if len(remaining) == 0 {
		if err := u.a.Progress.UpdateUnzipProgress(ctx, folder, func(p *progress.UnzipProgress) {
			p.FolderComplete = true
		}); err != nil {
			return err
		}
		u.a.Status.Send(status.Update{Label: folder, State: common.EWorkState.Completed(), Info: "folder complete"})
		u.a.Logger.Logf(common.ELogLevel.Info(), "folder %s: %s -> %s", folder,
			common.EFolderState.Unzipping(), common.EFolderState.Complete())
		return nil
	}

	anyFailed := false
	for _, key := range remaining {
		if u.a.ShutdownRequested() {
			anyFailed = true
			break
		}
		u.applyBackpressure(ctx)
		if err := u.processArchive(ctx, folder, key); err != nil {
			u.a.Logger.Logf(common.ELogLevel.Error(), "folder %s archive %s: %v", folder, key, err)
			u.a.Status.Send(status.Update{Label: archiveLabel(folder, key), State: common.EWorkState.Error(), Info: err.Error()})
			anyFailed = true
			continue // one archive's failure must not block siblings from resuming later
		}
	}

	if anyFailed {
		u.a.Status.Send(status.Update{Label: folder, State: common.EWorkState.Error(), Info: "folder incomplete, will resume on next run"})
		return nil
	}

	if err := u.a.Progress.UpdateUnzipProgress(ctx, folder, func(p *progress.UnzipProgress) {
		p.FolderComplete = true
	}); err != nil {
		return err
	}
	u.a.Status.Send(status.Update{Label: folder, State: common.EWorkState.Completed(), Info: "folder complete"})
	u.a.Logger.Logf(common.ELogLevel.Info(), "folder %s: %s -> %s", folder,
		common.EFolderState.Unzipping(), common.EFolderState.Complete())
	return nil
}

// listArchiveKeys lists every archive object for folder and sorts it in
// natural key order (spec section 4.3 step 1): Part1 < Part1_Split1 <
// Part2 < Part10.
func (u *Unzipper) listArchiveKeys(ctx context.Context, folder string) ([]string, error) {
	prefix := u.a.Config.S3Prefix + common.SanitizeFolderName(folder) + "_"
	objs, err := u.a.Staging.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, o := range objs {
		if strings.HasSuffix(o.Key, ".zip") {
			keys = append(keys, o.Key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return common.NaturalLess(keys[i], keys[j]) })
	return keys, nil
}

// applyBackpressure implements spec section 4.3 step 3's pre-archive
// throttle: clean orphans under high usage, then pause briefly if usage is
// still high.
func (u *Unzipper) applyBackpressure(ctx context.Context) {
	over, err := u.a.Disk.OverBackpressure()
	if err != nil || !over {
		return
	}
	scratch.CleanOrphans(u.a.Config.WorkDir)

	over, err = u.a.Disk.OverBackpressure()
	if err == nil && over {
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
		}
	}
}

func archiveLabel(folder, key string) string {
	idx := strings.LastIndex(key, "/")
	if idx >= 0 {
		key = key[idx+1:]
	}
	return folder + "." + key
}
