package mapper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foldermover/foldermover/internal/app"
	"github.com/foldermover/foldermover/internal/manifest"
	"github.com/foldermover/foldermover/internal/status"
	"github.com/foldermover/foldermover/internal/transferagent"
)

// fakeAgent is a minimal transferagent.Agent stub for exercising the
// Mapper's classification logic without shelling out to a real Transfer
// Agent binary.
type fakeAgent struct {
	topDirs []string
	files   map[string][]transferagent.FileEntry
}

func (f *fakeAgent) ListTopLevelDirs(ctx context.Context, root string) ([]string, error) {
	return f.topDirs, nil
}
func (f *fakeAgent) ListFilesRecursive(ctx context.Context, root string) ([]transferagent.FileEntry, error) {
	return f.files[root], nil
}
func (f *fakeAgent) StartBulkDownload(ctx context.Context, remoteRoot, manifestPath, destDir string, concurrency int) (*transferagent.Download, error) {
	return nil, nil
}
func (f *fakeAgent) CopyFile(ctx context.Context, srcPath, dstPath string) error { return nil }
func (f *fakeAgent) RecursiveCopyNoClobber(ctx context.Context, localDir, destRoot string) error {
	return nil
}

func newTestApp(staging *memStaging, agent transferagent.Agent, source string) *app.App {
	return &app.App{
		Config:   testConfig(source),
		Logger:   &noopLogger{},
		Staging:  staging,
		Transfer: agent,
		Progress: nil,
		Status:   status.New(),
	}
}

func TestMapFolderClassifiesByStrictThreshold(t *testing.T) {
	a := assert.New(t)

	threshold := int64(10)
	agent := &fakeAgent{
		topDirs: []string{"site1"},
		files: map[string][]transferagent.FileEntry{
			"src/site1": {
				{Path: "small.txt", Size: 5},
				{Path: "boundary.txt", Size: 10}, // equal to threshold: must stay normal (strict '>')
				{Path: "big.bin", Size: 11},      // strictly over threshold: large
			},
		},
	}
	staging := newMemStagingForMapper()
	testApp := newTestApp(staging, agent, "src")
	m := New(testApp)

	a.NoError(m.mapFolder(context.Background(), "site1", threshold))

	mstore := manifest.NewStore(staging, testApp.Config.S3Prefix)
	normal, err := mstore.ReadNormalList(context.Background(), "site1")
	a.NoError(err)
	a.ElementsMatch([]string{"small.txt", "boundary.txt"}, normal)

	large, err := mstore.ReadLargeFiles(context.Background(), "site1")
	a.NoError(err)
	a.Len(large, 1)
	a.Equal("big.bin", large[0].Path)
}

func TestMapFolderSkipsIfNormalListAlreadyExists(t *testing.T) {
	a := assert.New(t)

	staging := newMemStagingForMapper()
	testApp := newTestApp(staging, &fakeAgent{}, "src")
	mstore := manifest.NewStore(staging, testApp.Config.S3Prefix)
	a.NoError(mstore.WriteNormalList(context.Background(), "site1", []string{"already-mapped.txt"}))

	m := New(testApp)
	a.NoError(m.mapFolder(context.Background(), "site1", 10))

	normal, err := mstore.ReadNormalList(context.Background(), "site1")
	a.NoError(err)
	a.Equal([]string{"already-mapped.txt"}, normal)
}
