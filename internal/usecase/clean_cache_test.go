package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borca-dev/borca/internal/domain"
	"github.com/borca-dev/borca/internal/testutil"
)

func TestCleanCache_Execute(t *testing.T) {
	// Setup
	store := testutil.NewMockCacheStore()
	require.NoError(t, store.Save(domain.ProjectRecordName, domain.Digest{1}, nil))
	require.NoError(t, store.Save("lint", domain.Digest{2}, nil))
	uc := NewCleanCache(store, discardLogger())

	// Execute
	err := uc.Execute(context.Background(), CleanCacheInput{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, store.Clears)
	assert.Empty(t, store.Records)
}

func TestCleanCache_Execute_Error(t *testing.T) {
	store := testutil.NewMockCacheStore()
	store.ClearErr = assert.AnError
	uc := NewCleanCache(store, discardLogger())

	err := uc.Execute(context.Background(), CleanCacheInput{})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "clean cache")
}
