package unzipper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeNoClobberMovesNewFilesOnly(t *testing.T) {
	a := assert.New(t)

	src := t.TempDir()
	dst := t.TempDir()

	a.NoError(os.WriteFile(filepath.Join(src, "new.txt"), []byte("new"), 0o644))
	a.NoError(os.WriteFile(filepath.Join(src, "existing.txt"), []byte("from-src"), 0o644))
	a.NoError(os.WriteFile(filepath.Join(dst, "existing.txt"), []byte("from-dst"), 0o644))
	a.NoError(os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	a.NoError(os.WriteFile(filepath.Join(src, "sub", "nested.txt"), []byte("nested"), 0o644))

	a.NoError(mergeNoClobber(src, dst))

	got, err := os.ReadFile(filepath.Join(dst, "new.txt"))
	a.NoError(err)
	a.Equal("new", string(got))

	got, err = os.ReadFile(filepath.Join(dst, "existing.txt"))
	a.NoError(err)
	a.Equal("from-dst", string(got), "pre-existing destination file must not be overwritten")

	got, err = os.ReadFile(filepath.Join(dst, "sub", "nested.txt"))
	a.NoError(err)
	a.Equal("nested", string(got))
}
