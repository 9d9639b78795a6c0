package common

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalLessOrdersDigitRunsNumerically(t *testing.T) {
	a := assert.New(t)

	a.True(NaturalLess("Part2", "Part10"))
	a.False(NaturalLess("Part10", "Part2"))
	a.True(NaturalLess("Part1", "Part1_Split1"))
	a.True(NaturalLess("Part1_Split1", "Part2"))
}

func TestNaturalLessSortsFullSequence(t *testing.T) {
	a := assert.New(t)

	keys := []string{"Part10", "Part2", "Part1_Split1", "Part1", "Full"}
	sort.Slice(keys, func(i, j int) bool { return NaturalLess(keys[i], keys[j]) })

	a.Equal([]string{"Full", "Part1", "Part1_Split1", "Part2", "Part10"}, keys)
}

func TestJoinRemotePath(t *testing.T) {
	a := assert.New(t)

	a.Equal("s3:bucket/folder", JoinRemotePath("s3:bucket", "folder"))
	a.Equal("s3:bucket/folder", JoinRemotePath("s3:bucket/", "/folder"))
	a.Equal("folder", JoinRemotePath("", "folder"))
}
