package domain

import (
	"bytes"
	"encoding/hex"
)

// ProjectRecordName is the reserved cache record holding the configuration digest.
const ProjectRecordName = "project"

// Digest is an opaque summary of the content of a set of files.
// The empty digest stands for "no patterns declared".
type Digest []byte

// Equal reports whether two digests hold the same bytes.
func (d Digest) Equal(other Digest) bool {
	return bytes.Equal(d, other)
}

// IsEmpty returns true for the empty digest.
func (d Digest) IsEmpty() bool {
	return len(d) == 0
}

// String returns the hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d)
}

// CacheRecord holds the last known digests of a task.
type CacheRecord struct {
	Input  Digest
	Output Digest
	Found  bool // false if no prior record exists
}

// Matches reports whether a stored record equals the current digests.
// A record that was never written matches nothing.
func (r CacheRecord) Matches(input, output Digest) bool {
	return r.Found && r.Input.Equal(input) && r.Output.Equal(output)
}
