package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliosync/db"
)

type doc struct {
	Username  string    `json:"username"`
	Value     int       `json:"value"`
	FetchedAt time.Time `json:"fetchedAt"`
}

func TestUpsertReplacesTopLevelFields(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Upsert(ctx, "c", db.ByUsername("u"), doc{Username: "u", Value: 1}))
	require.NoError(t, s.Upsert(ctx, "c", db.ByUsername("u"), map[string]any{"value": 2}))

	assert.Equal(t, 1, s.Count("c"))

	var got doc
	require.NoError(t, s.FindOne(ctx, "c", db.ByUsername("u"), nil, &got))
	assert.Equal(t, "u", got.Username)
	assert.Equal(t, 2, got.Value)
}

func TestFindOneLatest(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.InsertMany(ctx, "c", []any{
		doc{Username: "u", Value: 1, FetchedAt: base},
		doc{Username: "u", Value: 3, FetchedAt: base.Add(48 * time.Hour)},
		doc{Username: "u", Value: 2, FetchedAt: base.Add(24 * time.Hour)},
		doc{Username: "other", Value: 9, FetchedAt: base.Add(96 * time.Hour)},
	})
	require.NoError(t, err)

	var got doc
	require.NoError(t, s.FindOne(ctx, "c", db.ByUsername("u"), db.Latest("fetchedAt"), &got))
	assert.Equal(t, 3, got.Value)
}

func TestFindOneNotFound(t *testing.T) {
	var got doc
	err := New().FindOne(context.Background(), "c", db.ByUsername("u"), nil, &got)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestInjectedError(t *testing.T) {
	boom := errors.New("boom")
	s := New()
	s.Err = boom

	var got []doc
	assert.ErrorIs(t, s.FindMany(context.Background(), "c", nil, nil, &got), boom)
	assert.ErrorIs(t, s.Upsert(context.Background(), "c", nil, doc{}), boom)
}

func TestDeleteMany(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.InsertMany(ctx, "c", []any{doc{Username: "a"}, doc{Username: "b"}, doc{Username: "a"}})
	require.NoError(t, err)

	n, err := s.DeleteMany(ctx, "c", db.ByUsername("a"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, s.Count("c"))
}

func TestDryRunDropsWrites(t *testing.T) {
	ctx := context.Background()
	inner := New()
	_, err := inner.InsertMany(ctx, "c", []any{doc{Username: "u", Value: 1}})
	require.NoError(t, err)

	dry := db.DryRun(inner)
	require.NoError(t, dry.Upsert(ctx, "c", db.ByUsername("u"), doc{Username: "u", Value: 5}))
	n, err := dry.InsertMany(ctx, "c", []any{doc{Username: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = dry.DeleteMany(ctx, "c", nil)
	require.NoError(t, err)

	var got doc
	require.NoError(t, dry.FindOne(ctx, "c", db.ByUsername("u"), nil, &got))
	assert.Equal(t, 1, got.Value)
	assert.Equal(t, 1, inner.Count("c"))
}
