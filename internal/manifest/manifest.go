// Package manifest reads and writes the three Mapper-produced,
// read-only-thereafter documents from spec section 3/6: the folder index,
// per-folder normal-file lists, and per-folder large-file manifests.
package manifest

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/stagingstore"
)

// LargeFileRecord is one entry of a folder's large-file manifest (spec
// section 3): {path, size_bytes, size_gib}.
type LargeFileRecord struct {
	Path      string  `json:"path"`
	SizeBytes int64   `json:"size"`
	SizeGiB   float64 `json:"size_gb"`
}

type Store struct {
	staging stagingstore.Store
	prefix  string
}

func NewStore(staging stagingstore.Store, prefix string) *Store {
	return &Store{staging: staging, prefix: prefix}
}

func (s *Store) indexKey() string {
	return s.prefix + "_index/folder_list.txt"
}

func (s *Store) normalListKey(folder string) string {
	return s.prefix + common.SanitizeFolderName(folder) + "_List.txt"
}

func (s *Store) largeFilesKey(folder string) string {
	return s.prefix + common.SanitizeFolderName(folder) + "_LargeFiles.json"
}

// WriteFolderIndex writes the newline-delimited list of original folder
// names (spec section 3: "Folder index").
func (s *Store) WriteFolderIndex(ctx context.Context, folders []string) error {
	return s.staging.PutBytes(ctx, s.indexKey(), []byte(strings.Join(folders, "\n")+"\n"))
}

// ReadFolderIndex reads the folder index; returns (nil, false, nil) if it
// does not exist yet.
func (s *Store) ReadFolderIndex(ctx context.Context) ([]string, bool, error) {
	data, ok, err := s.staging.GetBytes(ctx, s.indexKey())
	if err != nil || !ok {
		return nil, ok, err
	}
	var folders []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			folders = append(folders, line)
		}
	}
	return folders, true, nil
}

// NormalListExists is the Mapper's resume gate (spec section 4.1 step 3):
// "unless the corresponding normal-file list object already exists".
func (s *Store) NormalListExists(ctx context.Context, folder string) (bool, error) {
	exists, _, err := s.staging.Head(ctx, s.normalListKey(folder))
	return exists, err
}

func (s *Store) WriteNormalList(ctx context.Context, folder string, paths []string) error {
	return s.staging.PutBytes(ctx, s.normalListKey(folder), []byte(strings.Join(paths, "\n")))
}

func (s *Store) ReadNormalList(ctx context.Context, folder string) ([]string, error) {
	data, ok, err := s.staging.GetBytes(ctx, s.normalListKey(folder))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			paths = append(paths, strings.TrimRight(line, "\r"))
		}
	}
	return paths, nil
}

// WriteLargeFiles writes the large-file manifest, skipping upload entirely
// when empty, matching spec section 4.1: "upload both" where "both" only
// materializes a large-file object "if non-empty" per section 2's Mapper
// responsibility line.
func (s *Store) WriteLargeFiles(ctx context.Context, folder string, records []LargeFileRecord) error {
	if len(records) == 0 {
		return nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.staging.PutBytes(ctx, s.largeFilesKey(folder), data)
}

func (s *Store) ReadLargeFiles(ctx context.Context, folder string) ([]LargeFileRecord, error) {
	data, ok, err := s.staging.GetBytes(ctx, s.largeFilesKey(folder))
	if err != nil || !ok {
		return nil, err
	}
	var records []LargeFileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil // malformed JSON in a read-only input: treat as absent (spec section 7)
	}
	return records, nil
}

// RoundGiB rounds bytes to GiB with 2 decimal places (spec section 4.1:
// "size_gib = round(size / 2^30, 2)").
func RoundGiB(sizeBytes int64) float64 {
	gib := float64(sizeBytes) / float64(1<<30)
	s := strconv.FormatFloat(gib, 'f', 2, 64)
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
