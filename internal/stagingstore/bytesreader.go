package stagingstore

import "bytes"

// newByteReader returns a *bytes.Reader satisfying io.Reader for
// minio's PutObject, which wants a plain io.Reader plus a known size.
func newByteReader(data []byte) *bytes.Reader {
	return bytes.NewReader(data)
}
