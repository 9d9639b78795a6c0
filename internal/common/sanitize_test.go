package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFolderName(t *testing.T) {
	a := assert.New(t)

	a.Equal("plainfolder", SanitizeFolderName("plainfolder"))
	a.Equal("my_folder", SanitizeFolderName("my folder"))
	a.Equal("a_b", SanitizeFolderName("a/b"))
	a.Equal("a%2Bb", SanitizeFolderName("a+b"))
	a.Equal("plain%2Dfolder", SanitizeFolderName("plain-folder"))
}

func TestSanitizeFolderNameIsDeterministic(t *testing.T) {
	a := assert.New(t)

	name := "Québec/Site Nº 7"
	a.Equal(SanitizeFolderName(name), SanitizeFolderName(name))
}
