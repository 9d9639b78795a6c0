package zipper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foldermover/foldermover/internal/progress"
)

func TestSubtractCompletedRemovesKnownFiles(t *testing.T) {
	a := assert.New(t)

	completed := progress.NewOrderedSet(0)
	completed.Add("a.txt")

	remaining := subtractCompleted([]string{"a.txt", "b.txt", "c.txt"}, completed)
	a.Equal([]string{"b.txt", "c.txt"}, remaining)
}

func TestFilterOutDownloadedNormalizesSeparators(t *testing.T) {
	a := assert.New(t)

	remaining := []string{"sub/a.txt", "sub/b.txt"}
	downloaded := []string{"sub\\a.txt"}

	out := filterOutDownloaded(remaining, downloaded)
	a.Equal([]string{"sub/b.txt"}, out)
}

func TestSplitLabel(t *testing.T) {
	a := assert.New(t)

	a.Equal("Part1", splitLabel("Part1", 0))
	a.Equal("Part1_Split1", splitLabel("Part1", 1))
	a.Equal("Part1_Split2", splitLabel("Part1", 2))
}

func TestSplitKey(t *testing.T) {
	a := assert.New(t)

	a.Equal("migration/site1_Part1.zip", splitKey("migration/site1_Part1.zip", 0))
	a.Equal("migration/site1_Part1_Split1.zip", splitKey("migration/site1_Part1.zip", 1))
}
