// Package diskwatch implements the spec section 5 disk watermark policy:
// a hard limit that triggers in-flight download termination and split
// escalation, and a lower backpressure threshold that triggers a short
// sleep before starting the next unit of work. Modeled on the teacher's
// cpuMonitor.go (a comparable host-resource sampler) but using
// golang.org/x/sys/unix's Statfs, a direct teacher dependency
// (golang.org/x/sys) already used elsewhere in azcopy for low-level
// platform calls.
package diskwatch

import (
	"golang.org/x/sys/unix"
)

// UsagePercent returns the percentage of disk space in use on the
// filesystem containing path.
func UsagePercent(path string) (float64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bfree * uint64(stat.Bsize)
	if total == 0 {
		return 0, nil
	}
	used := total - free
	return (float64(used) / float64(total)) * 100.0, nil
}

// FreeBytes returns the number of bytes free on the filesystem containing
// path, used by the pre-zip "free disk >= 1.1x scratch size" check (spec
// section 4.2).
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// Watcher evaluates the two configured watermarks against a root path.
type Watcher struct {
	Root             string
	LimitPercent     float64
	BackpressurePct  float64
}

func New(root string, limitPercent, backpressurePercent float64) *Watcher {
	return &Watcher{Root: root, LimitPercent: limitPercent, BackpressurePct: backpressurePercent}
}

// OverLimit reports whether the hard watermark is tripped.
func (w *Watcher) OverLimit() (bool, error) {
	pct, err := UsagePercent(w.Root)
	if err != nil {
		return false, err
	}
	return pct > w.LimitPercent, nil
}

// OverBackpressure reports whether the soft watermark is tripped.
func (w *Watcher) OverBackpressure() (bool, error) {
	pct, err := UsagePercent(w.Root)
	if err != nil {
		return false, err
	}
	return pct > w.BackpressurePct, nil
}
