package zipper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionBatchesSingleBatchIsLabeledFull(t *testing.T) {
	a := assert.New(t)

	files := []string{"a.txt", "b.txt", "c.txt"}
	batches := partitionBatches(files, 10)

	a.Len(batches, 1)
	a.Equal("Full", batches[0].Label)
	a.Equal(files, batches[0].Files)
}

func TestPartitionBatchesSplitsAcrossThreshold(t *testing.T) {
	a := assert.New(t)

	files := make([]string, 25)
	for i := range files {
		files[i] = "file"
	}
	batches := partitionBatches(files, 10)

	a.Len(batches, 3)
	a.Equal("Part1", batches[0].Label)
	a.Equal("Part2", batches[1].Label)
	a.Equal("Part3", batches[2].Label)
	a.Len(batches[0].Files, 10)
	a.Len(batches[1].Files, 10)
	a.Len(batches[2].Files, 5)
}

func TestPartitionBatchesEmptyInputYieldsNoBatches(t *testing.T) {
	a := assert.New(t)

	a.Nil(partitionBatches(nil, 10))
}
