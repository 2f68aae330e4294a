package predict

import (
	"github.com/gmorley/scorecast/internal/logger"
)

// RollingState captures what was knowable about a team on one side strictly
// before a given date: trailing window means and the season-long goal
// differential. It is always derived from prior rows only; the row being
// featurized never appears in its own window
type RollingState struct {
	RollingGF float64 `json:"rollingGF"` // mean goals-for over the trailing window
	RollingGA float64 `json:"rollingGA"` // mean goals-against over the trailing window
	Form      float64 `json:"form"`      // mean league points over the trailing window
	Strength  float64 `json:"strength"`  // mean goals-for minus mean goals-against, whole prior history
	Sampled   int     `json:"sampled"`   // matches currently in the window
}

// sideResult is one completed appearance from the perspective of the team
type sideResult struct {
	goalsFor     int
	goalsAgainst int
	points       int
}

// sideHistory accumulates a team's appearances on one side: a bounded window
// of the most recent results plus running totals for strength
type sideHistory struct {
	window       []sideResult
	totalFor     int
	totalAgainst int
	played       int
}

// push records a completed appearance, evicting the oldest window entry once
// the configured window length is exceeded
func (h *sideHistory) push(goalsFor, goalsAgainst int) {
	h.window = append(h.window, sideResult{
		goalsFor:     goalsFor,
		goalsAgainst: goalsAgainst,
		points:       PointsForResult(goalsFor, goalsAgainst),
	})
	if len(h.window) > GetFormWindowSize() {
		h.window = h.window[1:]
	}
	h.totalFor += goalsFor
	h.totalAgainst += goalsAgainst
	h.played++
}

// state derives the RollingState from the history so far. An empty window
// falls back to the ledger-wide goal means and the neutral form value; a team
// never observed on this side has strength 0. The same fallbacks apply on the
// training path and the query path
func (h *sideHistory) state(meanFor, meanAgainst float64) RollingState {
	s := RollingState{
		RollingGF: meanFor,
		RollingGA: meanAgainst,
		Form:      GetNeutralForm(),
	}
	if h == nil {
		return s
	}
	if n := len(h.window); n > 0 {
		var gf, ga, pts int
		for _, r := range h.window {
			gf += r.goalsFor
			ga += r.goalsAgainst
			pts += r.points
		}
		s.RollingGF = float64(gf) / float64(n)
		s.RollingGA = float64(ga) / float64(n)
		s.Form = float64(pts) / float64(n)
		s.Sampled = n
	}
	if h.played > 0 {
		s.Strength = float64(h.totalFor-h.totalAgainst) / float64(h.played)
	}
	return s
}

// AnnotatedRow pairs one ledger row with the point-in-time state of both
// teams. The annotated ledger is the training corpus: one row per match
type AnnotatedRow struct {
	Match     *Match       `json:"match"`
	HomeState RollingState `json:"homeState"`
	AwayState RollingState `json:"awayState"`
}

// FormInteraction is the product of the two form scalars. The plain product
// is the calibrated model input; do not normalize it
func (ar *AnnotatedRow) FormInteraction() float64 {
	return ar.HomeState.Form * ar.AwayState.Form
}

// StrengthInteraction is the product of the two strength scalars
func (ar *AnnotatedRow) StrengthInteraction() float64 {
	return ar.HomeState.Strength * ar.AwayState.Strength
}

// AnnotatedLedger is the ledger augmented with per-row rolling state, plus the
// trailing state per team and side for answering point-in-time queries
type AnnotatedLedger struct {
	ledger    *Ledger
	rows      []*AnnotatedRow
	histories map[string]*sideHistory
	lastStats map[string][5]float64 // most recent raw statistics per team and side
}

// Annotate walks the ledger in chronological order and attaches to every row
// the rolling state of both teams as of strictly earlier dates. Rows sharing
// a date are featurized before any of them enters a window, so simultaneous
// fixtures never observe each other
func Annotate(l *Ledger) *AnnotatedLedger {
	a := &AnnotatedLedger{
		ledger:    l,
		rows:      make([]*AnnotatedRow, 0, l.Len()),
		histories: make(map[string]*sideHistory),
		lastStats: make(map[string][5]float64),
	}

	rows := l.Rows()
	for start := 0; start < len(rows); {
		// locate the run of rows sharing this date
		end := start + 1
		for end < len(rows) && rows[end].Date.Equal(rows[start].Date) {
			end++
		}

		// snapshot state for the whole run before any of it is absorbed
		for _, m := range rows[start:end] {
			a.rows = append(a.rows, &AnnotatedRow{
				Match:     m,
				HomeState: a.stateOf(m.HomeTeam, Home),
				AwayState: a.stateOf(m.AwayTeam, Away),
			})
		}

		// now absorb the run
		for _, m := range rows[start:end] {
			a.absorb(m)
		}
		start = end
	}

	logger.Info("Annotated ledger with", len(a.rows), "rows")
	return a
}

// stateOf derives the current rolling state for a team on a side, applying
// the ledger-wide fallbacks when there is no history
func (a *AnnotatedLedger) stateOf(team string, side Side) RollingState {
	h := a.histories[sideKey(team, side)]
	var meanAgainst float64
	if side == Home {
		meanAgainst = a.ledger.MeanGoals(Away)
	} else {
		meanAgainst = a.ledger.MeanGoals(Home)
	}
	return h.state(a.ledger.MeanGoals(side), meanAgainst)
}

// absorb feeds one completed row into both teams' histories
func (a *AnnotatedLedger) absorb(m *Match) {
	for _, side := range []Side{Home, Away} {
		key := sideKey(m.TeamOn(side), side)
		h := a.histories[key]
		if h == nil {
			h = &sideHistory{}
			a.histories[key] = h
		}
		h.push(m.GoalsFor(side), m.GoalsAgainst(side))

		var stats [5]float64
		for i, v := range m.statFields(side) {
			stats[i] = float64(v)
		}
		a.lastStats[key] = stats
	}
}

// Rows returns the annotated rows in ledger order. Read-only
func (a *AnnotatedLedger) Rows() []*AnnotatedRow {
	return a.rows
}

// Len returns the corpus row count, which always equals the ledger row count
func (a *AnnotatedLedger) Len() int {
	return len(a.rows)
}

// Ledger returns the underlying ledger
func (a *AnnotatedLedger) Ledger() *Ledger {
	return a.ledger
}

// LatestState returns a team's rolling state as of "now", the point just
// after the latest ledger row. A team with no appearances on the side gets
// exactly the fallbacks used during annotation
func (a *AnnotatedLedger) LatestState(team string, side Side) RollingState {
	return a.stateOf(team, side)
}

// LatestStats returns the team's most recent raw in-match statistics on the
// side, or the ledger-wide means if it never appeared there
func (a *AnnotatedLedger) LatestStats(team string, side Side) [5]float64 {
	if stats, ok := a.lastStats[sideKey(team, side)]; ok {
		return stats
	}
	return a.ledger.MeanStats(side)
}
