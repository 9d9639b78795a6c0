package zipper

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/status"
)

// runNormalPipeline batches folder's normal files (spec section 4.2) and
// processes batches concurrently up to MaxParallelWorkers. One batch's
// failure must not cancel the others -- each batch is an independent unit
// of progress -- so this uses a plain semaphore rather than an
// errgroup.WithContext that would cancel siblings on first error.
func (z *Zipper) runNormalPipeline(ctx context.Context, folder string, files []string) (failed bool) {
	batches := partitionBatches(files, z.a.Config.SplitThreshold)
	if len(batches) == 0 {
		return false
	}

	sem := make(chan struct{}, z.a.Config.MaxParallelWorkers)
	var wg sync.WaitGroup
	var anyFailed atomic.Bool

	for _, batch := range batches {
		batch := batch
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := z.processBatch(ctx, folder, batch); err != nil {
				z.a.Logger.Logf(common.ELogLevel.Error(), "folder %s %s: %v", folder, batch.Label, err)
				anyFailed.Store(true)
			}
		}()
	}
	wg.Wait()
	return anyFailed.Load()
}

func (z *Zipper) statusLabel(folder, partLabel string) string {
	return folder + "." + partLabel
}

func (z *Zipper) emit(folder, partLabel string, state common.WorkState, info string) {
	z.a.Status.Send(status.Update{Label: z.statusLabel(folder, partLabel), State: state, Info: info})
}
