package predict

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRow builds a complete raw row with plausible secondary statistics.
// Dates use the dd/mm/yy layout the ledger requires
func testRow(date, home, away string, fthg, ftag int) RawRow {
	return RawRow{
		"Date":     date,
		"HomeTeam": home,
		"AwayTeam": away,
		"FTHG":     strconv.Itoa(fthg),
		"FTAG":     strconv.Itoa(ftag),
		"HST":      "4", "AST": "3",
		"HC": "5", "AC": "4",
		"HF": "10", "AF": "11",
		"HY": "1", "AY": "2",
		"HR": "0", "AR": "0",
	}
}

// fixtureRows is the three-match dataset used throughout the feature tests:
// A beats B 2-0, A draws C 1-1, B beats C 3-1
func fixtureRows() []RawRow {
	return []RawRow{
		testRow("01/01/20", "A", "B", 2, 0),
		testRow("08/01/20", "A", "C", 1, 1),
		testRow("15/01/20", "B", "C", 3, 1),
	}
}

func TestIngestSortsAndDeduplicates(t *testing.T) {
	rows := []RawRow{
		testRow("15/01/20", "B", "C", 3, 1),
		testRow("01/01/20", "A", "B", 2, 0),
		testRow("01/01/20", "A", "B", 2, 0), // exact duplicate
		testRow("08/01/20", "A", "C", 1, 1),
	}
	ledger, err := Ingest(rows)
	require.NoError(t, err, "Ingestion should succeed")

	require.Equal(t, 3, ledger.Len(), "Duplicate row should be dropped")
	assert.Equal(t, "A", ledger.Rows()[0].HomeTeam)
	assert.True(t, ledger.Rows()[0].Date.Before(ledger.Rows()[1].Date), "Rows should be date ascending")
	assert.True(t, ledger.Rows()[1].Date.Before(ledger.Rows()[2].Date), "Rows should be date ascending")
	assert.Equal(t, []string{"A", "B", "C"}, ledger.TeamNames())
}

func TestIngestDropsMalformedRows(t *testing.T) {
	missing := testRow("01/02/20", "D", "E", 1, 0)
	delete(missing, "HST")

	badDate := testRow("2020-01-01", "F", "G", 1, 0) // wrong layout

	negative := testRow("01/02/20", "H", "I", 1, 0)
	negative["HC"] = "-3"

	rows := append(fixtureRows(), missing, badDate, negative)
	ledger, err := Ingest(rows)
	require.NoError(t, err)
	assert.Equal(t, 3, ledger.Len(), "Every malformed row should be dropped, nothing else")
	assert.NotContains(t, ledger.TeamNames(), "D")
	assert.NotContains(t, ledger.TeamNames(), "F")
	assert.NotContains(t, ledger.TeamNames(), "H")
}

func TestIngestAcceptsFloatStatistics(t *testing.T) {
	row := testRow("01/01/20", "A", "B", 2, 0)
	row["HST"] = "4.0"
	ledger, err := Ingest([]RawRow{row})
	require.NoError(t, err)
	assert.Equal(t, 4, ledger.Rows()[0].HomeShotsOnTarget)
}

func TestIngestEmptyLedger(t *testing.T) {
	_, err := Ingest(nil)
	assert.ErrorIs(t, err, ErrEmptyLedger)

	bad := testRow("nonsense", "A", "B", 1, 0)
	_, err = Ingest([]RawRow{bad})
	assert.ErrorIs(t, err, ErrEmptyLedger, "A batch with no surviving rows is an empty ledger")
}

func TestLedgerMeans(t *testing.T) {
	ledger, err := Ingest(fixtureRows())
	require.NoError(t, err)

	assert.InDelta(t, 2.0, ledger.MeanGoals(Home), 1e-9, "Mean home goals over 2,1,3")
	assert.InDelta(t, 2.0/3.0, ledger.MeanGoals(Away), 1e-9, "Mean away goals over 0,1,1")

	homeStats := ledger.MeanStats(Home)
	assert.InDelta(t, 4.0, homeStats[0], 1e-9, "All fixture rows share HST=4")
	awayStats := ledger.MeanStats(Away)
	assert.InDelta(t, 3.0, awayStats[0], 1e-9, "All fixture rows share AST=3")
}

func TestRowsForSplitsBySide(t *testing.T) {
	ledger, err := Ingest(fixtureRows())
	require.NoError(t, err)

	assert.Len(t, ledger.RowsFor("A", Home), 2)
	assert.Len(t, ledger.RowsFor("A", Away), 0, "Home and away appearances must never mix")
	assert.Len(t, ledger.RowsFor("C", Away), 2)
	assert.Len(t, ledger.RowsFor("B", Home), 1)
	assert.Len(t, ledger.RowsFor("B", Away), 1)
}

func TestIngestMatchesRevalidates(t *testing.T) {
	good := NewMatch()
	good.Date = mustDate(t, "01/01/20")
	good.HomeTeam, good.AwayTeam = "A", "B"
	good.HomeGoals, good.AwayGoals = 1, 0
	good.HomeShotsOnTarget, good.AwayShotsOnTarget = 3, 2
	good.HomeCorners, good.AwayCorners = 4, 4
	good.HomeFouls, good.AwayFouls = 9, 8
	good.HomeYellowCards, good.AwayYellowCards = 1, 1
	good.HomeRedCards, good.AwayRedCards = 0, 0

	incomplete := NewMatch() // all stats still -1
	incomplete.Date = mustDate(t, "02/01/20")
	incomplete.HomeTeam, incomplete.AwayTeam = "C", "D"

	ledger, err := IngestMatches([]*Match{good, incomplete, nil})
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.Len(), "Incomplete and nil rows should be dropped")
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(GetDateLayout(), s)
	require.NoError(t, err)
	return parsed
}
