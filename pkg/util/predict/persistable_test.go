package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB points the package at a fresh in-memory database for one test
func setupTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDatabase(":memory:"), "Failed to initialize test database")
	require.NoError(t, CreateTables(), "Failed to create tables")
	t.Cleanup(func() { CloseDatabase() })
}

func TestMatchPersistenceRoundTrip(t *testing.T) {
	setupTestDB(t)

	ledger, err := Ingest(fixtureRows())
	require.NoError(t, err)
	require.NoError(t, SaveMatches(ledger.Rows()))

	loaded, err := LoadMatches()
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	// Saving again must update, not duplicate
	require.NoError(t, SaveMatches(ledger.Rows()))
	loaded, err = LoadMatches()
	require.NoError(t, err)
	assert.Len(t, loaded, 3)

	// The reloaded rows must rebuild an identical snapshot
	snap, err := BuildSnapshotFromMatches(loaded)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Ledger.Len())
	assert.Equal(t, []string{"A", "B", "C"}, snap.Registry.Names())
}

func TestSaveUpdatesExistingRow(t *testing.T) {
	setupTestDB(t)

	ledger, err := Ingest([]RawRow{testRow("01/01/20", "A", "B", 2, 0)})
	require.NoError(t, err)
	m := ledger.Rows()[0]
	require.NoError(t, Save(m))

	m.HomeGoals = 5
	require.NoError(t, Save(m))

	loaded, err := LoadMatches()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 5, loaded[0].HomeGoals)
}

func TestDeleteRemovesRow(t *testing.T) {
	setupTestDB(t)

	ledger, err := Ingest(fixtureRows())
	require.NoError(t, err)
	require.NoError(t, SaveMatches(ledger.Rows()))

	victim := ledger.Rows()[0]
	require.NoError(t, Delete(victim))

	loaded, err := LoadMatches()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	for _, m := range loaded {
		assert.NotEqual(t, victim.ID, m.ID)
	}

	// Deleting an already absent row is not an error
	assert.NoError(t, Delete(victim))
}

func TestFindWhereFiltersRows(t *testing.T) {
	setupTestDB(t)

	ledger, err := Ingest(fixtureRows())
	require.NoError(t, err)
	require.NoError(t, SaveMatches(ledger.Rows()))

	results, err := FindWhere(&Match{}, "homeTeam = ?", "A")
	require.NoError(t, err)
	require.Len(t, results, 2, "A hosts twice in the fixture set")
	for _, r := range results {
		m, ok := r.(*Match)
		require.True(t, ok)
		assert.Equal(t, "A", m.HomeTeam)
	}

	results, err = FindWhere(&Match{}, "homeTeam = ?", "Narnia")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMetaRoundTrip(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, PutMeta("alpha", "one"))
	require.NoError(t, PutMeta("alpha", "two")) // overwrite

	value, err := GetMeta("alpha")
	require.NoError(t, err)
	assert.Equal(t, "two", value)

	_, err = GetMeta("missing")
	assert.Error(t, err)
}

func TestCorpusRoundTrip(t *testing.T) {
	setupTestDB(t)

	snap, err := BuildSnapshot(fixtureRows())
	require.NoError(t, err)
	require.NoError(t, SaveCorpus(snap))

	loaded, err := LoadCorpus()
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	fresh, err := snap.TrainingCorpus()
	require.NoError(t, err)

	byID := make(map[string]TrainingRow, len(loaded))
	for _, row := range loaded {
		byID[row.MatchID] = row
	}
	for _, want := range fresh {
		got, ok := byID[want.MatchID]
		require.True(t, ok, "Missing corpus row %s", want.MatchID)
		assert.Equal(t, want.HomeGoals, got.HomeGoals)
		assert.Equal(t, want.AwayGoals, got.AwayGoals)
		require.Len(t, got.Features, FeatureCount)
		for i := range want.Features {
			assert.InDelta(t, want.Features[i], got.Features[i], 1e-9,
				"Field %s survived persistence wrong", FeatureNames()[i])
		}
	}
}

func TestLoadCorpusSchemaMismatch(t *testing.T) {
	setupTestDB(t)

	row := &CorpusRow{MatchID: "x", SchemaVersion: FeatureSchemaVersion + 1}
	require.NoError(t, Save(row))

	_, err := LoadCorpus()
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}
