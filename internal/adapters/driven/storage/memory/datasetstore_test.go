package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

func TestNewDatasetStore_Seeded(t *testing.T) {
	seed := domain.RawRecord{"id": "ds-1", "title": "ประชากร"}
	store := NewDatasetStore(seed)

	records, err := store.Fetch(context.Background(), domain.FetchOptions{})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ds-1", records[0]["id"])

	// Seed is copied.
	seed["title"] = "changed"
	records, _ = store.Fetch(context.Background(), domain.FetchOptions{})
	assert.Equal(t, "ประชากร", records[0]["title"])
}

func TestDatasetStore_Name(t *testing.T) {
	assert.Equal(t, "memory", NewDatasetStore().Name())
}

func TestDatasetStore_Fetch_Empty(t *testing.T) {
	records, err := NewDatasetStore().Fetch(context.Background(), domain.FetchOptions{})

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDatasetStore_Fetch_ReturnsCopies(t *testing.T) {
	store := NewDatasetStore(domain.RawRecord{"id": "ds-1"})

	first, _ := store.Fetch(context.Background(), domain.FetchOptions{})
	first[0]["id"] = "mutated"

	second, _ := store.Fetch(context.Background(), domain.FetchOptions{})
	assert.Equal(t, "ds-1", second[0]["id"])
}

func TestDatasetStore_Create(t *testing.T) {
	store := NewDatasetStore()
	store.now = func() time.Time { return time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC) }

	raw, err := store.Create(context.Background(), domain.NewDataset{
		Title:    "คุณภาพอากาศ",
		FileType: "API",
		Tags:     []string{"air"},
	})

	require.NoError(t, err)
	id, ok := raw["id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, "2025-03-15", raw["dateUpdated"])

	records, _ := store.Fetch(context.Background(), domain.FetchOptions{})
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0]["id"])
}

func TestDatasetStore_Create_PreservesOrder(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()

	_, err := store.Create(ctx, domain.NewDataset{Title: "a"})
	require.NoError(t, err)
	_, err = store.Create(ctx, domain.NewDataset{Title: "b"})
	require.NoError(t, err)

	records, _ := store.Fetch(ctx, domain.FetchOptions{})
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0]["title"])
	assert.Equal(t, "b", records[1]["title"])
}

func TestDatasetStore_Create_InvalidInput(t *testing.T) {
	store := NewDatasetStore()

	raw, err := store.Create(context.Background(), domain.NewDataset{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, raw)
}

func TestDatasetStore_Check(t *testing.T) {
	store := NewDatasetStore(domain.RawRecord{"id": "1"}, domain.RawRecord{"id": "2"})

	report, err := store.Check(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.BackendMemory, report.Backend)
	assert.Equal(t, 2, report.Records)
}
