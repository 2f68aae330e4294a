package predict

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gmorley/scorecast/internal/logger"
)

// RawRow is one unparsed row from an ingestion source, keyed by column name.
// Malformed rows are tolerated and dropped; they never fail the whole batch
type RawRow map[string]string

// requiredColumns is the projection applied to every raw row. A row missing
// any of these is a MalformedRow and is dropped during ingestion
var requiredColumns = []string{
	"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG",
	"HST", "AST", "HC", "AC", "HF", "AF", "HY", "AY", "HR", "AR",
}

// Ledger is the chronologically ordered, deduplicated collection of historical
// match rows. Rows are sorted ascending by date with ties kept in input order,
// and are never mutated after ingestion
type Ledger struct {
	rows      []*Match
	bySide    map[string][]*Match // keyed by sideKey(team, side), each slice date-sorted
	teams     []string            // sorted unique team names
	meanFor   [2]float64          // ledger-wide mean goals by side, indexed by Side
	meanStats [2][5]float64       // ledger-wide means of the secondary statistics by side
}

func sideKey(team string, side Side) string {
	return side.String() + "|" + team
}

// Ingest builds a Ledger from raw rows: project to the required column set,
// drop rows with any missing required field, parse the date with the single
// fixed layout, clamp statistics to non-negative integers, then stable-sort
// by date. Returns ErrEmptyLedger if nothing survives
func Ingest(raw []RawRow) (*Ledger, error) {
	matches := make([]*Match, 0, len(raw))
	dropped := 0
	for i, row := range raw {
		m, err := parseRawRow(row)
		if err != nil {
			logger.Debug("Dropping malformed row", i, err)
			dropped++
			continue
		}
		matches = append(matches, m)
	}
	if dropped > 0 {
		logger.Warn("Dropped malformed rows during ingestion", dropped)
	}
	return IngestMatches(matches)
}

// IngestMatches builds a Ledger from already-typed rows, re-validating
// completeness and deduplicating on the derived match ID. Used when rows are
// reloaded from the database rather than parsed from an ingestion source
func IngestMatches(matches []*Match) (*Ledger, error) {
	kept := make([]*Match, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if m == nil || !m.complete() {
			continue
		}
		id := m.ID
		if id == "" {
			id = m.DeriveID()
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return nil, ErrEmptyLedger
	}

	// Stable sort keeps input order for same-date rows, which makes the
	// downstream rolling computation deterministic
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date.Before(kept[j].Date)
	})

	l := &Ledger{
		rows:   kept,
		bySide: make(map[string][]*Match),
	}

	teamSet := make(map[string]bool)
	var homeGoals, awayGoals int
	var statTotals [2][5]int
	for _, m := range kept {
		teamSet[m.HomeTeam] = true
		teamSet[m.AwayTeam] = true
		homeGoals += m.HomeGoals
		awayGoals += m.AwayGoals
		for _, side := range []Side{Home, Away} {
			for i, v := range m.statFields(side) {
				statTotals[side][i] += v
			}
		}
		l.bySide[sideKey(m.HomeTeam, Home)] = append(l.bySide[sideKey(m.HomeTeam, Home)], m)
		l.bySide[sideKey(m.AwayTeam, Away)] = append(l.bySide[sideKey(m.AwayTeam, Away)], m)
	}
	for team := range teamSet {
		l.teams = append(l.teams, team)
	}
	sort.Strings(l.teams)
	l.meanFor[Home] = float64(homeGoals) / float64(len(kept))
	l.meanFor[Away] = float64(awayGoals) / float64(len(kept))
	for _, side := range []Side{Home, Away} {
		for i := range l.meanStats[side] {
			l.meanStats[side][i] = float64(statTotals[side][i]) / float64(len(kept))
		}
	}

	logger.Info("Ledger ingested", len(kept), "rows,", len(l.teams), "teams")
	return l, nil
}

// parseRawRow projects one raw row onto a Match, returning an error for any
// row that cannot satisfy the required column contract
func parseRawRow(row RawRow) (*Match, error) {
	for _, col := range requiredColumns {
		if strings.TrimSpace(row[col]) == "" {
			return nil, &malformedRowError{col, "missing"}
		}
	}

	date, err := time.Parse(GetDateLayout(), strings.TrimSpace(row["Date"]))
	if err != nil {
		return nil, &malformedRowError{"Date", row["Date"]}
	}

	m := NewMatch()
	m.Date = date
	m.Season = strings.TrimSpace(row["Season"])
	m.HomeTeam = strings.TrimSpace(row["HomeTeam"])
	m.AwayTeam = strings.TrimSpace(row["AwayTeam"])

	ints := []struct {
		col  string
		dest *int
	}{
		{"FTHG", &m.HomeGoals}, {"FTAG", &m.AwayGoals},
		{"HST", &m.HomeShotsOnTarget}, {"AST", &m.AwayShotsOnTarget},
		{"HC", &m.HomeCorners}, {"AC", &m.AwayCorners},
		{"HF", &m.HomeFouls}, {"AF", &m.AwayFouls},
		{"HY", &m.HomeYellowCards}, {"AY", &m.AwayYellowCards},
		{"HR", &m.HomeRedCards}, {"AR", &m.AwayRedCards},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(row[f.col]))
		if err != nil {
			// football-data occasionally emits stats as floats
			fv, ferr := strconv.ParseFloat(strings.TrimSpace(row[f.col]), 64)
			if ferr != nil {
				return nil, &malformedRowError{f.col, row[f.col]}
			}
			v = int(fv)
		}
		if v < 0 {
			return nil, &malformedRowError{f.col, "negative"}
		}
		*f.dest = v
	}

	m.ID = m.DeriveID()
	return m, nil
}

type malformedRowError struct {
	column string
	value  string
}

func (e *malformedRowError) Error() string {
	return "malformed row: column " + e.column + " (" + e.value + ")"
}

// Rows returns the rows in ascending date order. The returned slice must be
// treated as read-only
func (l *Ledger) Rows() []*Match {
	return l.rows
}

// Len returns the number of rows in the ledger
func (l *Ledger) Len() int {
	return len(l.rows)
}

// RowsFor returns all rows in which the team appeared on the given side,
// sorted by date. The returned slice must be treated as read-only
func (l *Ledger) RowsFor(team string, side Side) []*Match {
	return l.bySide[sideKey(team, side)]
}

// TeamNames returns the sorted unique names of every team observed in the
// ledger, home or away. This ordering seeds registry code assignment
func (l *Ledger) TeamNames() []string {
	return l.teams
}

// MeanGoals returns the ledger-wide mean goals scored by the given side.
// These are the fallback values for an empty rolling window
func (l *Ledger) MeanGoals(side Side) float64 {
	return l.meanFor[side]
}

// MeanStats returns the ledger-wide means of the secondary in-match
// statistics for the given side, in feature schema order. These are the
// query-time fallback when a team has no appearance on that side
func (l *Ledger) MeanStats(side Side) [5]float64 {
	return l.meanStats[side]
}

// LatestDate returns the date of the most recent row, the "now" used by
// query-time state lookups
func (l *Ledger) LatestDate() time.Time {
	return l.rows[len(l.rows)-1].Date
}
