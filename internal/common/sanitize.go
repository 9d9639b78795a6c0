package common

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

func isUnreserved(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// percentEncode is a deliberately minimal percent-encoder: every byte that
// is not ASCII-alphanumeric is replaced with %XX. Unlike net/url's escapers
// it never special-cases space as '+', which matters here because the
// spec's sanitizer assumes a literal "%20" appears for spaces before the
// %20->_ substitution runs.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

// SanitizeFolderName maps an original folder name to the key-safe form used
// wherever that name appears in a Staging Store key (spec section 4.4).
// Mapper, Zipper, and Unzipper must all call this exact function; a
// mismatch between them would silently break resume, since the progress
// documents are keyed by the sanitized name.
func SanitizeFolderName(name string) string {
	normalized := norm.NFC.String(name)
	encoded := percentEncode(normalized)
	encoded = strings.ReplaceAll(encoded, "%20", "_")
	encoded = strings.ReplaceAll(encoded, "%2F", "_")
	return encoded
}
