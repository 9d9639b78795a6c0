package progress

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/stagingstore"
)

// Store is held by exactly one component (Zipper or Unzipper) and
// serializes every load-modify-save cycle behind a single mutex, per the
// design note in spec section 9: "the mutex guards read-modify-write of
// the in-memory cache of FolderProgress as well as the remote write. A
// fresh get_object is performed inside the critical section to pick up any
// out-of-band changes."
type Store struct {
	staging           stagingstore.Store
	prefix            string
	completedFilesCap int
	mu                sync.Mutex
}

func NewStore(staging stagingstore.Store, prefix string, completedFilesCap int) *Store {
	return &Store{staging: staging, prefix: prefix, completedFilesCap: completedFilesCap}
}

func (s *Store) zipperKey(folder string) string {
	return s.prefix + "_progress/" + common.SanitizeFolderName(folder) + "_progress.json"
}

func (s *Store) unzipperKey(folder string) string {
	return s.prefix + "_progress/" + common.SanitizeFolderName(folder) + "_unzip_progress.json"
}

// LoadFolderProgress reads the Zipper's per-folder document without taking
// the update lock; used for read-only status reporting (cmd status) where
// racing a concurrent update only risks showing slightly stale output.
func (s *Store) LoadFolderProgress(ctx context.Context, folder string) (*FolderProgress, error) {
	return s.loadFolderProgress(ctx, folder)
}

func (s *Store) loadFolderProgress(ctx context.Context, folder string) (*FolderProgress, error) {
	data, ok, err := s.staging.GetBytes(ctx, s.zipperKey(folder))
	if err != nil {
		return nil, err
	}
	fp := NewFolderProgress(s.completedFilesCap)
	if !ok {
		return fp, nil
	}
	var wire folderProgressWire
	if err := json.Unmarshal(data, &wire); err != nil {
		// Malformed JSON in a read-only input is a permanent error (spec
		// section 7): treat as if the document did not exist, so the
		// caller redoes the work rather than aborting the whole run.
		return NewFolderProgress(s.completedFilesCap), nil
	}
	for _, k := range wire.CompletedKeys {
		fp.CompletedKeys.Add(k)
	}
	fp.CompletedFiles.AddAll(wire.CompletedFiles)
	for _, k := range wire.LargeFilesDone {
		fp.LargeFilesDone.Add(k)
	}
	fp.FolderComplete = wire.FolderComplete
	return fp, nil
}

func (s *Store) saveFolderProgress(ctx context.Context, folder string, fp *FolderProgress) error {
	wire := folderProgressWire{
		CompletedKeys:  fp.CompletedKeys.Items(),
		CompletedFiles: fp.CompletedFiles.Items(),
		LargeFilesDone: fp.LargeFilesDone.Items(),
		FolderComplete: fp.FolderComplete,
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return err
	}
	return s.staging.PutBytes(ctx, s.zipperKey(folder), data)
}

// UpdateFolderProgress performs the only correct update pattern (spec
// section 4.4): acquire the component lock, re-read the latest document,
// hand it to mutate, then write the result back -- all inside the critical
// section.
func (s *Store) UpdateFolderProgress(ctx context.Context, folder string, mutate func(fp *FolderProgress)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp, err := s.loadFolderProgress(ctx, folder)
	if err != nil {
		return err
	}
	mutate(fp)
	return s.saveFolderProgress(ctx, folder, fp)
}

func (s *Store) loadUnzipProgress(ctx context.Context, folder string) (*UnzipProgress, error) {
	data, ok, err := s.staging.GetBytes(ctx, s.unzipperKey(folder))
	if err != nil {
		return nil, err
	}
	up := NewUnzipProgress()
	if !ok {
		return up, nil
	}
	var wire unzipProgressWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return NewUnzipProgress(), nil
	}
	for _, k := range wire.ProcessedKeys {
		up.ProcessedKeys.Add(k)
	}
	up.FolderComplete = wire.FolderComplete
	return up, nil
}

func (s *Store) LoadUnzipProgress(ctx context.Context, folder string) (*UnzipProgress, error) {
	return s.loadUnzipProgress(ctx, folder)
}

func (s *Store) saveUnzipProgress(ctx context.Context, folder string, up *UnzipProgress) error {
	wire := unzipProgressWire{
		ProcessedKeys:  up.ProcessedKeys.Items(),
		FolderComplete: up.FolderComplete,
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return err
	}
	return s.staging.PutBytes(ctx, s.unzipperKey(folder), data)
}

// UpdateUnzipProgress is the Unzipper's equivalent of UpdateFolderProgress.
func (s *Store) UpdateUnzipProgress(ctx context.Context, folder string, mutate func(up *UnzipProgress)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	up, err := s.loadUnzipProgress(ctx, folder)
	if err != nil {
		return err
	}
	mutate(up)
	return s.saveUnzipProgress(ctx, folder, up)
}
