package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStoreInMemory(t *testing.T) {
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NotNil(t, s)

	err = s.Close()
	assert.NoError(t, err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown database driver")
}

func TestAddAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	edited := time.Date(2024, 10, 21, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Add(ctx, Entry{
		ServerID: 1, Title: "Belts", Contents: "Yellow, red, blue.",
		EditTime: edited, Author: "rho",
	}))

	e, err := s.Find(ctx, 1, "Belts")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Yellow, red, blue.", e.Contents)
	assert.Empty(t, e.Image)
	assert.Empty(t, e.Link)
	assert.Equal(t, edited, e.EditTime)
	assert.Equal(t, "rho", e.Author)

	// Titles are case sensitive and scoped per server.
	e, err = s.Find(ctx, 1, "belts")
	require.NoError(t, err)
	assert.Nil(t, e)
	e, err = s.Find(ctx, 2, "Belts")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestAddDuplicateFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Entry{ServerID: 1, Title: "Belts", Author: "a"}))
	assert.Error(t, s.Add(ctx, Entry{ServerID: 1, Title: "Belts", Author: "b"}))
	assert.NoError(t, s.Add(ctx, Entry{ServerID: 2, Title: "Belts", Author: "b"}))
}

func TestUpsertReplacesEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, Entry{ServerID: 1, Title: "Belts", Contents: "v1", Image: "img", Author: "a"}))
	require.NoError(t, s.Upsert(ctx, Entry{ServerID: 1, Title: "Belts", Contents: "v2", Author: "b"}))

	e, err := s.Find(ctx, 1, "Belts")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "v2", e.Contents)
	assert.Empty(t, e.Image)
	assert.Equal(t, "b", e.Author)

	refs, err := s.Titles(ctx)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}

func TestUpsertFailureKeepsExistingEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, Entry{ServerID: 1, Title: "Belts", Contents: "v1", Author: "a"}))

	_, err := s.db.ExecContext(ctx, `CREATE TRIGGER reject_edit BEFORE UPDATE ON faq
		WHEN NEW.contents = 'rejected' BEGIN SELECT RAISE(ABORT, 'edit rejected'); END`)
	require.NoError(t, err)

	err = s.Upsert(ctx, Entry{ServerID: 1, Title: "Belts", Contents: "rejected", Author: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert faq entry")

	e, err := s.Find(ctx, 1, "Belts")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "v1", e.Contents)
	assert.Equal(t, "a", e.Author)
}

func TestUpsertSuffixPerDriver(t *testing.T) {
	assert.Contains(t, dialects[DriverSQLite].upsert, "ON CONFLICT (server_id, title)")
	assert.Contains(t, dialects[DriverPostgres].upsert, "ON CONFLICT (server_id, title)")
	assert.Contains(t, dialects[DriverMySQL].upsert, "ON DUPLICATE KEY UPDATE")
}

func TestDeleteReportsRowsAffected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, Entry{ServerID: 1, Title: "Belts", Author: "a"}))

	n, err := s.Delete(ctx, 1, "Belts")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Delete(ctx, 1, "Belts")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTitlesAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, e := range []Entry{
		{ServerID: 1, Title: "Belts", Author: "a"},
		{ServerID: 1, Title: "Trains", Author: "a"},
		{ServerID: 2, Title: "Belts", Author: "a"},
	} {
		require.NoError(t, s.Add(ctx, e))
	}

	refs, err := s.Titles(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []TitleRef{
		{ServerID: 1, Title: "Belts"},
		{ServerID: 1, Title: "Trains"},
		{ServerID: 2, Title: "Belts"},
	}, refs)

	require.NoError(t, s.Clear(ctx, 1))
	refs, err = s.Titles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TitleRef{{ServerID: 2, Title: "Belts"}}, refs)
}

func TestServerLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, e := range []Entry{
		{ServerID: 1, Title: "Belts", Contents: "x", Author: "a"},
		{ServerID: 1, Title: "Conveyor", Link: "Belts", Author: "a"},
		{ServerID: 1, Title: "Bands", Link: "Belts", Author: "a"},
		{ServerID: 1, Title: "Trains", Contents: "y", Author: "a"},
		{ServerID: 1, Title: "Orphan", Link: "Gone", Author: "a"},
		{ServerID: 2, Title: "Other", Link: "Trains", Author: "a"},
	} {
		require.NoError(t, s.Add(ctx, e))
	}

	links, err := s.ServerLinks(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"Belts":  {"Bands", "Conveyor"},
		"Trains": {},
	}, links)
}

func TestDumpSortedByTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, Entry{ServerID: 7, Title: "Trains", Contents: "t", Author: "a"}))
	require.NoError(t, s.Add(ctx, Entry{ServerID: 7, Title: "Belts", Image: "https://img", Author: "a"}))
	require.NoError(t, s.Add(ctx, Entry{ServerID: 8, Title: "Elsewhere", Author: "a"}))

	entries, err := s.Dump(ctx, 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Belts", entries[0].Title)
	assert.Equal(t, "https://img", entries[0].Image)
	assert.Equal(t, "Trains", entries[1].Title)
	assert.False(t, entries[1].EditTime.IsZero())

	entries, err = s.Dump(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "a = ? AND b = ?", dialects[DriverSQLite].rebind("a = ? AND b = ?"))
	assert.Equal(t, "a = $1 AND b = $2", dialects[DriverPostgres].rebind("a = ? AND b = ?"))
	assert.Equal(t, "a = ?", dialects[DriverMySQL].rebind("a = ?"))
}
