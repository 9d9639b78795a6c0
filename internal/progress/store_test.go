package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foldermover/foldermover/internal/stagingstore"
)

// memStaging is a minimal in-memory stagingstore.Store for exercising the
// load-modify-save pattern without a real S3-compatible endpoint.
type memStaging struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStaging() *memStaging {
	return &memStaging{data: make(map[string][]byte)}
}

func (m *memStaging) PutFile(ctx context.Context, key, localPath string) error { return nil }

func (m *memStaging) PutBytes(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	return nil
}

func (m *memStaging) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *memStaging) GetToFile(ctx context.Context, key, localPath string) error { return nil }
func (m *memStaging) Head(ctx context.Context, key string) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return ok, int64(len(v)), nil
}
func (m *memStaging) List(ctx context.Context, prefix string) ([]stagingstore.ObjectInfo, error) {
	return nil, nil
}
func (m *memStaging) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
func (m *memStaging) Bucket() string { return "test-bucket" }

func TestUpdateFolderProgressLoadModifySave(t *testing.T) {
	a := assert.New(t)
	staging := newMemStaging()
	store := NewStore(staging, "migration/", 10)
	ctx := context.Background()

	err := store.UpdateFolderProgress(ctx, "folderA", func(fp *FolderProgress) {
		fp.CompletedKeys.Add("migration/folderA_Full.zip")
	})
	a.NoError(err)

	fp, err := store.LoadFolderProgress(ctx, "folderA")
	a.NoError(err)
	a.True(fp.CompletedKeys.Contains("migration/folderA_Full.zip"))
	a.False(fp.FolderComplete)

	err = store.UpdateFolderProgress(ctx, "folderA", func(fp *FolderProgress) {
		fp.FolderComplete = true
	})
	a.NoError(err)

	fp, err = store.LoadFolderProgress(ctx, "folderA")
	a.NoError(err)
	a.True(fp.FolderComplete)
	// the second update must not have discarded the first mutation: a fresh
	// read happens inside the lock, so both mutations land in the same doc.
	a.True(fp.CompletedKeys.Contains("migration/folderA_Full.zip"))
}

func TestUpdateUnzipProgressIsIndependentOfFolderProgress(t *testing.T) {
	a := assert.New(t)
	staging := newMemStaging()
	store := NewStore(staging, "migration/", 10)
	ctx := context.Background()

	a.NoError(store.UpdateUnzipProgress(ctx, "folderA", func(up *UnzipProgress) {
		up.ProcessedKeys.Add("migration/folderA_Full.zip")
	}))

	up, err := store.LoadUnzipProgress(ctx, "folderA")
	a.NoError(err)
	a.True(up.ProcessedKeys.Contains("migration/folderA_Full.zip"))

	fp, err := store.LoadFolderProgress(ctx, "folderA")
	a.NoError(err)
	a.False(fp.CompletedKeys.Contains("migration/folderA_Full.zip"))
}

func TestOrderedSetEvictsOldestOnOverflow(t *testing.T) {
	a := assert.New(t)

	s := NewOrderedSet(2)
	s.Add("a")
	s.Add("b")
	s.Add("c")

	a.Equal(2, s.Len())
	a.False(s.Contains("a"))
	a.True(s.Contains("b"))
	a.True(s.Contains("c"))
}

func TestOrderedSetUnboundedWhenCapZero(t *testing.T) {
	a := assert.New(t)

	s := NewOrderedSet(0)
	for i := 0; i < 100; i++ {
		s.Add(string(rune('a' + i%26)))
	}
	a.Equal(26, s.Len())
}
