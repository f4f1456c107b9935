package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheRecord_Matches(t *testing.T) {
	in := Digest{1, 2, 3}
	out := Digest{4, 5}

	tests := []struct {
		name   string
		record CacheRecord
		want   bool
	}{
		{"both equal", CacheRecord{Input: in, Output: out, Found: true}, true},
		{"input differs", CacheRecord{Input: Digest{9}, Output: out, Found: true}, false},
		{"output differs", CacheRecord{Input: in, Output: Digest{9}, Found: true}, false},
		{"not found", CacheRecord{Input: in, Output: out}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Matches(in, out))
		})
	}
}

func TestCacheRecord_MatchesEmptyOutput(t *testing.T) {
	record := CacheRecord{Input: Digest{1}, Output: Digest{}, Found: true}
	assert.True(t, record.Matches(Digest{1}, nil))
}

func TestDigest_String(t *testing.T) {
	assert.Equal(t, "0aff", Digest{0x0a, 0xff}.String())
	assert.True(t, Digest(nil).IsEmpty())
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	digestErr := &DigestError{Task: "build", Path: "src/a.py", Err: cause}
	assert.ErrorIs(t, digestErr, ErrDigest)
	assert.ErrorIs(t, digestErr, cause)
	assert.Contains(t, digestErr.Error(), "src/a.py")

	cycleErr := &CycleError{Task: "build", Dependency: "test"}
	assert.ErrorIs(t, cycleErr, ErrCycle)
	assert.Contains(t, cycleErr.Error(), `"build"`)
	assert.Contains(t, cycleErr.Error(), `"test"`)
}

func TestRunResult(t *testing.T) {
	ok := RunResult{Total: 3, Executed: 1, Skipped: 2}
	assert.True(t, ok.Succeeded())
	assert.Equal(t, 0, ok.NotRun())

	failed := RunResult{Total: 3, Executed: 1, Failure: &TaskFailure{Task: "test", Command: "pytest", Err: errors.New("exit status 1")}}
	assert.False(t, failed.Succeeded())
	assert.Equal(t, 2, failed.NotRun())
	assert.Contains(t, failed.Failure.Error(), "pytest")
}
