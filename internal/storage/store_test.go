package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecordAndList(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	records := []RunRecord{
		{ID: uuid.NewString(), Pair: "USD/INR", Status: StatusDone, Rate: 83.5, ReportPath: "/tmp/a.md", CreatedAt: base},
		{ID: uuid.NewString(), Pair: "EUR/GBP", Status: StatusError, Error: "analyze_data: boom", CreatedAt: base.Add(time.Hour)},
		{ID: uuid.NewString(), Pair: "GBP/JPY", Status: StatusDone, Rate: 190.1, ReportPath: "/tmp/c.md", CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, rec := range records {
		require.NoError(t, store.Record(ctx, rec))
	}

	got, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "GBP/JPY", got[0].Pair)
	assert.Equal(t, "EUR/GBP", got[1].Pair)
	assert.Equal(t, "analyze_data: boom", got[1].Error)
	assert.True(t, got[0].CreatedAt.Equal(base.Add(2*time.Hour)))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 83.5, all[2].Rate)
}

func TestStoreRejectsBadRecords(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	assert.Error(t, store.Record(ctx, RunRecord{Pair: "USD/INR", Status: StatusDone}))
	assert.Error(t, store.Record(ctx, RunRecord{ID: "x", Pair: "USD/INR", Status: "streaming"}))

	id := uuid.NewString()
	require.NoError(t, store.Record(ctx, RunRecord{ID: id, Pair: "USD/INR", Status: StatusDone}))
	assert.Error(t, store.Record(ctx, RunRecord{ID: id, Pair: "USD/INR", Status: StatusDone}), "duplicate id")
}

func TestNewStoreRequiresPath(t *testing.T) {
	_, err := NewStore(context.Background(), " ")
	assert.Error(t, err)
}
