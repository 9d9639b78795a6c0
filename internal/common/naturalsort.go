package common

import (
	"strings"
	"unicode"
)

// NormalizeSlashPath normalizes path separators to '/', the comparison
// form the spec requires wherever a remote-relative path is matched against
// a set (spec section 3: "completed_files: ... path-normalized with '/'").
func NormalizeSlashPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// JoinRemotePath joins a Transfer Agent remote root with a folder-relative
// path; remote specs are always '/'-separated regardless of host OS.
func JoinRemotePath(root, rel string) string {
	if root == "" {
		return rel
	}
	return strings.TrimRight(root, "/") + "/" + strings.TrimLeft(rel, "/")
}

// NaturalLess compares two strings the way spec section 5 requires archive
// keys be ordered: runs of digits compare numerically, so
// "Part2" < "Part10" and "Part1" < "Part1_Split1" < "Part2".
func NaturalLess(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		ca, cb := ra[i], rb[j]
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			starti, startj := i, j
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			na := trimLeadingZeros(string(ra[starti:i]))
			nb := trimLeadingZeros(string(rb[startj:j]))
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(ra)-i < len(rb)-j
}

func trimLeadingZeros(s string) string {
	k := 0
	for k < len(s)-1 && s[k] == '0' {
		k++
	}
	return s[k:]
}
