package mapper

import (
	"context"
	"sync"

	"github.com/foldermover/foldermover/internal/common"
	"github.com/foldermover/foldermover/internal/config"
	"github.com/foldermover/foldermover/internal/stagingstore"
)

// memStaging is a minimal in-memory stagingstore.Store used to exercise
// Mapper logic without a real S3-compatible endpoint.
type memStaging struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStagingForMapper() *memStaging {
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

type noopLogger struct{}

func (*noopLogger) Log(level common.LogLevel, msg string)                          {}
func (*noopLogger) Logf(level common.LogLevel, format string, args ...interface{}) {}
func (*noopLogger) Panic(err error)                                                { panic(err) }
func (*noopLogger) CloseLog()                                                      {}

func testConfig(source string) *config.Config {
	return &config.Config{
		S3Prefix: "migration/",
		Source:   source,
	}
}
