// Package mapper implements spec section 4.1: discover top-level folders,
// enumerate each one's files, and classify them by size into a normal list
// and a large-file manifest.
package mapper

import (
	"context"
	"strconv"

	"github.com/foldermover/foldermover/internal/app"
	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/manifest"
	"github.com/foldermover/foldermover/internal/status"
)

type Mapper struct {
	a        *app.App
	store    *manifest.Store
}

func New(a *app.App) *Mapper {
	return &Mapper{a: a, store: manifest.NewStore(a.Staging, a.Config.S3Prefix)}
}

// Run executes the full Mapper algorithm (spec section 4.1). It never
// aborts the whole run because one folder failed to list or upload; it
// logs and continues with the remaining folders.
func (m *Mapper) Run(ctx context.Context) error {
	dirs, err := m.a.Transfer.ListTopLevelDirs(ctx, m.a.Config.Source)
	if err != nil {
		m.a.Logger.Logf(common.ELogLevel.Error(), "listing source root: %v", err)
		return err
	}

	if err := m.store.WriteFolderIndex(ctx, dirs); err != nil {
		m.a.Logger.Logf(common.ELogLevel.Error(), "writing folder index: %v", err)
		return err
	}
	m.a.Logger.Logf(common.ELogLevel.Info(), "discovered %d folders", len(dirs))

	thresholdBytes := m.a.Config.LargeThresholdBytes()

	for _, folder := range dirs {
		if m.a.ShutdownRequested() {
			break
		}
		m.a.Status.Send(status.Update{Label: folder, State: common.EWorkState.Queued(), Info: "mapping"})
		if err := m.mapFolder(ctx, folder, thresholdBytes); err != nil {
			m.a.Logger.Logf(common.ELogLevel.Error(), "folder %s: %v", folder, err)
			m.a.Status.Send(status.Update{Label: folder, State: common.EWorkState.Error(), Info: err.Error()})
			continue // a failure on one folder must not abort the rest (spec section 4.1)
		}
	}
	return nil
}

func (m *Mapper) mapFolder(ctx context.Context, folder string, thresholdBytes int64) error {
	exists, err := m.store.NormalListExists(ctx, folder)
	if err != nil {
		return err
	}
	if exists {
		m.a.Status.Send(status.Update{Label: folder, State: common.EWorkState.Skipped(), Info: "already mapped"})
		return nil
	}

	sourceRoot := common.JoinRemotePath(m.a.Config.Source, folder)
	entries, err := m.a.Transfer.ListFilesRecursive(ctx, sourceRoot)
	if err != nil {
		return err
	}

	var normal []string
	var large []manifest.LargeFileRecord
	for _, e := range entries {
		if e.Size > thresholdBytes { // strict '>' per spec section 4.1
			large = append(large, manifest.LargeFileRecord{
				Path:      e.Path,
				SizeBytes: e.Size,
				SizeGiB:   manifest.RoundGiB(e.Size),
			})
		} else {
			normal = append(normal, e.Path)
		}
	}

	if err := m.store.WriteNormalList(ctx, folder, normal); err != nil {
		return err
	}
	if err := m.store.WriteLargeFiles(ctx, folder, large); err != nil {
		return err
	}

	m.a.Status.Send(status.Update{
		Label: folder,
		State: common.EWorkState.Completed(),
		Info:  "normal=" + strconv.Itoa(len(normal)) + " large=" + strconv.Itoa(len(large)),
	})
	m.a.Logger.Logf(common.ELogLevel.Info(), "folder %s: %s -> %s", folder,
		common.EFolderState.Discovered(), common.EFolderState.Mapped())
	return nil
}

