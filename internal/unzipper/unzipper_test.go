package unzipper

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foldermover/foldermover/internal/app"
	"github.com/foldermover/foldermover/internal/config"
	"github.com/foldermover/foldermover/internal/stagingstore"
)

// listingStaging is a stub stagingstore.Store that only implements List,
// backed by a fixed key set, for exercising listArchiveKeys' natural-sort
// ordering in isolation.
type listingStaging struct {
	keys []string
}

func (l *listingStaging) PutFile(ctx context.Context, key, localPath string) error { return nil }
func (l *listingStaging) PutBytes(ctx context.Context, key string, data []byte) error {
	return nil
}
func (l *listingStaging) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}
func (l *listingStaging) GetToFile(ctx context.Context, key, localPath string) error { return nil }
func (l *listingStaging) Head(ctx context.Context, key string) (bool, int64, error) {
	return false, 0, nil
}
func (l *listingStaging) List(ctx context.Context, prefix string) ([]stagingstore.ObjectInfo, error) {
	var out []stagingstore.ObjectInfo
	for _, k := range l.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, stagingstore.ObjectInfo{Key: k, Size: 10})
		}
	}
	return out, nil
}
func (l *listingStaging) Delete(ctx context.Context, key string) error { return nil }
func (l *listingStaging) Bucket() string                              { return "test-bucket" }

func TestListArchiveKeysNaturalSortOrder(t *testing.T) {
	a := assert.New(t)

	staging := &listingStaging{keys: []string{
		"migration/site1_Part10.zip",
		"migration/site1_Part2.zip",
		"migration/site1_Part1_Split1.zip",
		"migration/site1_Part1.zip",
		"migration/site1_List.txt", // not an archive: must be excluded
	}}
	testApp := &app.App{
		Config:  &config.Config{S3Prefix: "migration/"},
		Staging: staging,
	}
	u := &Unzipper{a: testApp}

	keys, err := u.listArchiveKeys(context.Background(), "site1")
	a.NoError(err)
	a.Equal([]string{
		"migration/site1_Part1.zip",
		"migration/site1_Part1_Split1.zip",
		"migration/site1_Part2.zip",
		"migration/site1_Part10.zip",
	}, keys)
}
