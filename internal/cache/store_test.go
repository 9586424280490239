package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseforge/course-engine/internal/domain"
)

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "unknown-hash")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	course := &domain.Course{ID: "c1", Title: "Stored", DocumentHash: "hash-1"}

	require.NoError(t, store.Put(context.Background(), CourseRecord{
		ID:           "c1",
		UserID:       "u1",
		DocumentHash: "hash-1",
		Course:       course,
	}))

	got, err := store.Get(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "Stored", got.Title)
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, CourseRecord{DocumentHash: "h", Course: &domain.Course{ID: "first"}}))
	require.NoError(t, store.Put(ctx, CourseRecord{DocumentHash: "h", Course: &domain.Course{ID: "second"}}))

	got, err := store.Get(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, "second", got.ID)
}

func TestMemoryStoreClose(t *testing.T) {
	assert.NoError(t, NewMemoryStore().Close())
}
