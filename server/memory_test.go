package server

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newcontext-oss/jsonapi"
)

func TestMemoryStorage_CreateAssignsID(t *testing.T) {
	store := NewMemoryStorage()

	created, err := store.Create(context.Background(), jsonapi.FlatRecord{
		"type":  "articles",
		"title": "untitled",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID())

	_, err = uuid.Parse(created.ID())
	assert.NoError(t, err)

	found, err := store.Lookup(context.Background(), "articles", created.ID())
	require.NoError(t, err)
	assert.Equal(t, "untitled", found["title"])
}

func TestMemoryStorage_CreateKeepsClientID(t *testing.T) {
	store := NewMemoryStorage()

	created, err := store.Create(context.Background(), jsonapi.FlatRecord{
		"type": "articles",
		"id":   "42",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID())
}

func TestMemoryStorage_LookupNotFound(t *testing.T) {
	store := NewMemoryStorage()

	_, err := store.Lookup(context.Background(), "articles", "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_UpdateMerges(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	_, err := store.Create(ctx, jsonapi.FlatRecord{
		"type": "people", "id": "9", "first_name": "Dan", "last_name": "G",
	})
	require.NoError(t, err)

	updated, err := store.Update(ctx, jsonapi.FlatRecord{
		"type": "people", "id": "9", "first_name": "Daniel",
	})
	require.NoError(t, err)
	assert.Equal(t, "Daniel", updated["first_name"])
	assert.Equal(t, "G", updated["last_name"])

	_, err = store.Update(ctx, jsonapi.FlatRecord{"type": "people", "id": "404"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_Delete(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	_, err := store.Create(ctx, jsonapi.FlatRecord{"type": "articles", "id": "1"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "articles", "1"))
	assert.ErrorIs(t, store.Delete(ctx, "articles", "1"), ErrNotFound)

	_, err = store.Lookup(ctx, "articles", "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_ListPaginatesInInsertionOrder(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := store.Create(ctx, jsonapi.FlatRecord{
			"type": "articles",
			"id":   fmt.Sprintf("%d", i),
		})
		require.NoError(t, err)
	}
	// Records of other types do not leak into the listing.
	_, err := store.Create(ctx, jsonapi.FlatRecord{"type": "people", "id": "9"})
	require.NoError(t, err)

	records, info, err := store.List(ctx, "articles", PageRequest{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "3", records[0].ID())
	assert.Equal(t, "4", records[1].ID())
	assert.Equal(t, PageInfo{Page: 2, Pages: 3, Count: 5}, info)

	// Past the end yields an empty page, not an error.
	records, info, err = store.List(ctx, "articles", PageRequest{Number: 9, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 5, info.Count)
}

func TestMemoryStorage_ListDefaults(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	_, err := store.Create(ctx, jsonapi.FlatRecord{"type": "articles", "id": "1"})
	require.NoError(t, err)

	records, info, err := store.List(ctx, "articles", PageRequest{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, PageInfo{Page: 1, Pages: 1, Count: 1}, info)
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	_, err := store.Create(ctx, jsonapi.FlatRecord{"type": "articles", "id": "1", "title": "a"})
	require.NoError(t, err)

	first, err := store.Lookup(ctx, "articles", "1")
	require.NoError(t, err)
	first["title"] = "mutated"

	second, err := store.Lookup(ctx, "articles", "1")
	require.NoError(t, err)
	assert.Equal(t, "a", second["title"])
}
