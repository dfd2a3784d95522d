package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccsfp/clinic-api/internal/store"
	"github.com/ccsfp/clinic-api/internal/store/memory"
)

func TestInsertAssignsID(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	id, err := st.Insert(ctx, "things", store.Record{"name": store.Text("a")})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	rec, err := st.FindOne(ctx, "things", store.ByID(id))
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID())
	assert.Equal(t, "a", rec.Canonical("name"))
}

func TestFindPreservesInsertionOrder(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := st.Insert(ctx, "things", store.Record{"name": store.Text(name)})
		require.NoError(t, err)
	}

	recs, err := st.Find(ctx, "things", nil)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, recs[i].Canonical("name"))
	}
}

func TestFindOneNoMatch(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	_, err := st.FindOne(ctx, "things", store.Filter{store.Eq("name", store.Text("x"))})
	assert.ErrorIs(t, err, store.ErrNoRecord)
}

func TestNeMatchesAbsentField(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	// No status field at all.
	_, err := st.Insert(ctx, "things", store.Record{"name": store.Text("a")})
	require.NoError(t, err)

	recs, err := st.Find(ctx, "things", store.Filter{
		store.Ne("status", store.Text("Rejected")),
	})
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = st.Insert(ctx, "things", store.Record{"status": store.Text("Rejected")})
	require.NoError(t, err)

	recs, err = st.Find(ctx, "things", store.Filter{
		store.Ne("status", store.Text("Rejected")),
	})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRangeFilterIsLexical(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	for _, ts := range []string{"2026-09-01T09:00", "2026-09-01T18:30", "2026-09-02T08:00"} {
		_, err := st.Insert(ctx, "things", store.Record{"dateTime": store.Text(ts)})
		require.NoError(t, err)
	}

	recs, err := st.Find(ctx, "things", store.Filter{
		store.Gte("dateTime", store.Text("2026-09-01T00:00")),
		store.Lte("dateTime", store.Text("2026-09-01T23:59")),
	})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestUpdateOneMergesFields(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	id, err := st.Insert(ctx, "things", store.Record{
		"name":   store.Text("a"),
		"status": store.Text("Pending"),
	})
	require.NoError(t, err)

	matched, err := st.UpdateOne(ctx, "things", store.ByID(id),
		store.Record{"status": store.Text("Active")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	rec, err := st.FindOne(ctx, "things", store.ByID(id))
	require.NoError(t, err)
	assert.Equal(t, "Active", rec.Canonical("status"))
	assert.Equal(t, "a", rec.Canonical("name"))

	matched, err = st.UpdateOne(ctx, "things", store.ByID(uuid.New()),
		store.Record{"status": store.Text("Active")})
	require.NoError(t, err)
	assert.Equal(t, int64(0), matched)
}

func TestReplaceOneDropsUnsetFields(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	id, err := st.Insert(ctx, "things", store.Record{
		"name":  store.Text("a"),
		"extra": store.Text("keep?"),
	})
	require.NoError(t, err)

	matched, err := st.ReplaceOne(ctx, "things", store.ByID(id),
		store.Record{"name": store.Text("b")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	rec, err := st.FindOne(ctx, "things", store.ByID(id))
	require.NoError(t, err)
	assert.Equal(t, "b", rec.Canonical("name"))
	assert.Empty(t, rec.Canonical("extra"))
	assert.Equal(t, id, rec.ID())
}

func TestDeleteOneAndMany(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	id, err := st.Insert(ctx, "things", store.Record{"name": store.Text("a")})
	require.NoError(t, err)
	_, err = st.Insert(ctx, "things", store.Record{"name": store.Text("b")})
	require.NoError(t, err)
	_, err = st.Insert(ctx, "things", store.Record{"name": store.Text("c")})
	require.NoError(t, err)

	deleted, err := st.DeleteOne(ctx, "things", store.ByID(id))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = st.DeleteMany(ctx, "things", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	recs, err := st.Find(ctx, "things", nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadsDoNotAliasStoredRecords(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	id, err := st.Insert(ctx, "things", store.Record{"name": store.Text("a")})
	require.NoError(t, err)

	rec, err := st.FindOne(ctx, "things", store.ByID(id))
	require.NoError(t, err)
	rec["name"] = store.Text("mutated")

	again, err := st.FindOne(ctx, "things", store.ByID(id))
	require.NoError(t, err)
	assert.Equal(t, "a", again.Canonical("name"))
}
