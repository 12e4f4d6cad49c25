package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shabir12345/Hall-of-Jade-Manuscripts-sub012/internal/thread"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot(version int) thread.Snapshot {
	return thread.Snapshot{
		NovelID: "novel-1",
		Version: version,
		Chapter: version,
		Threads: []thread.Thread{{
			ID:          "t-1",
			NovelID:     "novel-1",
			Signature:   "jade_bell_curse",
			Category:    thread.CategoryMajor,
			Status:      thread.StatusOpen,
			KarmaWeight: 70,
			Summary:     []thread.SummaryEntry{{Chapter: 1, Text: "the bell tolls"}},
		}},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveSnapshot(sampleSnapshot(3)))

	loaded, err := s.LoadSnapshot("novel-1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Version)
	assert.Equal(t, 3, loaded.Chapter)
	require.Len(t, loaded.Threads, 1)
	assert.Equal(t, "jade_bell_curse", loaded.Threads[0].Signature)
	assert.Equal(t, thread.StatusOpen, loaded.Threads[0].Status)
	require.Len(t, loaded.Threads[0].Summary, 1)
}

func TestStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadSnapshot("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SaveRequiresNovelID(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.SaveSnapshot(thread.Snapshot{}))
}

func TestStore_UpsertKeepsLatest(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveSnapshot(sampleSnapshot(1)))
	require.NoError(t, s.SaveSnapshot(sampleSnapshot(2)))

	loaded, err := s.LoadSnapshot("novel-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)

	novels, err := s.ListNovels()
	require.NoError(t, err)
	assert.Equal(t, []string{"novel-1"}, novels)
}

func TestStore_HistoryKeepsEveryVersion(t *testing.T) {
	s := newTestStore(t)

	for v := 1; v <= 3; v++ {
		require.NoError(t, s.SaveSnapshot(sampleSnapshot(v)))
	}

	var count int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM snapshot_history WHERE novel_id = ?`, "novel-1",
	).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestStore_ListNovelsSorted(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"zeta", "alpha", "mid"} {
		snap := sampleSnapshot(1)
		snap.NovelID = id
		require.NoError(t, s.SaveSnapshot(snap))
	}

	novels, err := s.ListNovels()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, novels)
}

func TestStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveSnapshot(sampleSnapshot(7)))
	require.NoError(t, s.Close())

	s2, err := NewStore(dir)
	require.NoError(t, err)
	defer s2.Close()

	loaded, err := s2.LoadSnapshot("novel-1")
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Version)
}
