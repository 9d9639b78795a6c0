package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildStoreOnlyRoundTrips(t *testing.T) {
	a := assert.New(t)

	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "a.txt"), []byte("hello"))
	writeFile(t, filepath.Join(srcDir, "nested", "b.txt"), []byte("world"))
	writeFile(t, filepath.Join(srcDir, ".manifest.txt"), []byte("ignored"))

	zipPath := filepath.Join(t.TempDir(), "out.zip")
	a.NoError(BuildStoreOnly(srcDir, zipPath, ".manifest.txt"))
	a.NoError(VerifyIntegrity(zipPath))

	destDir := t.TempDir()
	a.NoError(Extract(zipPath, destDir))

	got, err := os.ReadFile(filepath.Join(destDir, "a.txt"))
	a.NoError(err)
	a.Equal("hello", string(got))

	got, err = os.ReadFile(filepath.Join(destDir, "nested", "b.txt"))
	a.NoError(err)
	a.Equal("world", string(got))

	_, err = os.Stat(filepath.Join(destDir, ".manifest.txt"))
	a.True(os.IsNotExist(err))
}

func TestBuildStoreOnlySkipsZeroByteFiles(t *testing.T) {
	a := assert.New(t)

	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "empty.txt"), []byte{})
	writeFile(t, filepath.Join(srcDir, "full.txt"), []byte("x"))

	zipPath := filepath.Join(t.TempDir(), "out.zip")
	a.NoError(BuildStoreOnly(srcDir, zipPath))

	total, err := TotalUncompressedSize(zipPath)
	a.NoError(err)
	a.Equal(int64(1), total)
}

func TestBombRatioExceeded(t *testing.T) {
	a := assert.New(t)

	a.False(BombRatioExceeded(1000, 50000, 100))
	a.True(BombRatioExceeded(1000, 200000, 100))
	a.True(BombRatioExceeded(0, 1000, 100))
	a.True(BombRatioExceeded(-1, 1000, 100))
}

func TestExtractRefusesPathTraversal(t *testing.T) {
	a := assert.New(t)

	zipPath := filepath.Join(t.TempDir(), "out.zip")
	out, err := os.Create(zipPath)
	a.NoError(err)
	zw := zip.NewWriter(out)
	for _, entry := range []struct{ name, body string }{
		{"safe.txt", "ok"},
		{"../escape.txt", "bad"},
	} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: entry.name, Method: zip.Store})
		a.NoError(err)
		_, err = w.Write([]byte(entry.body))
		a.NoError(err)
	}
	a.NoError(zw.Close())
	a.NoError(out.Close())

	parent := t.TempDir()
	destDir := filepath.Join(parent, "dest")
	a.NoError(os.MkdirAll(destDir, 0o755))
	a.NoError(Extract(zipPath, destDir))
	entries, err := os.ReadDir(destDir)
	a.NoError(err)
	a.Len(entries, 1)
	_, err = os.Stat(filepath.Join(parent, "escape.txt"))
	a.True(os.IsNotExist(err))
}
