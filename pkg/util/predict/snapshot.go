package predict

import (
	"sync/atomic"
	"time"

	"github.com/gmorley/scorecast/internal/logger"
)

// Snapshot is one immutable dataset build: the ledger, the registry fitted
// over it and the annotated rolling state, stamped with a build time. Query
// callers read a snapshot without coordination; a rebuild produces a fresh
// snapshot and swaps it in atomically rather than mutating anything in place
type Snapshot struct {
	Ledger    *Ledger
	Registry  *Registry
	Annotated *AnnotatedLedger
	BuiltAt   time.Time
}

// BuildSnapshot ingests raw rows and runs the full pipeline. Fails outright
// on an empty ledger; there is no partially built snapshot
func BuildSnapshot(raw []RawRow) (*Snapshot, error) {
	ledger, err := Ingest(raw)
	if err != nil {
		return nil, err
	}
	return snapshotFromLedger(ledger), nil
}

// BuildSnapshotFromMatches runs the pipeline over already-typed rows, as when
// reloading the ledger from the database
func BuildSnapshotFromMatches(matches []*Match) (*Snapshot, error) {
	ledger, err := IngestMatches(matches)
	if err != nil {
		return nil, err
	}
	return snapshotFromLedger(ledger), nil
}

func snapshotFromLedger(ledger *Ledger) *Snapshot {
	s := &Snapshot{
		Ledger:    ledger,
		Registry:  RegistryFromLedger(ledger),
		Annotated: Annotate(ledger),
		BuiltAt:   time.Now(),
	}
	logger.Info("Snapshot built:", ledger.Len(), "rows through", ledger.LatestDate().Format("2006-01-02"))
	return s
}

// QueryVector answers a single prediction query against this snapshot
func (s *Snapshot) QueryVector(homeTeam, awayTeam string) ([]float64, error) {
	return ForQuery(homeTeam, awayTeam, s.Annotated, s.Registry)
}

// TrainingCorpus materializes the full supervised corpus for this snapshot
func (s *Snapshot) TrainingCorpus() ([]TrainingRow, error) {
	return ForTraining(s.Annotated, s.Registry)
}

// SnapshotHolder publishes the current snapshot to concurrent readers.
// Replace is a stop-the-world swap: the new snapshot is fully built before
// the reference moves, and readers holding the old one keep a consistent view
type SnapshotHolder struct {
	current atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or nil before the first Replace
func (h *SnapshotHolder) Load() *Snapshot {
	return h.current.Load()
}

// Replace atomically publishes a new snapshot
func (h *SnapshotHolder) Replace(s *Snapshot) {
	h.current.Store(s)
}

// Rebuild builds a snapshot from the rows produced by load and publishes it
// only on success; a failed rebuild leaves the previous snapshot serving
func (h *SnapshotHolder) Rebuild(load func() ([]*Match, error)) (*Snapshot, error) {
	matches, err := load()
	if err != nil {
		return nil, err
	}
	snap, err := BuildSnapshotFromMatches(matches)
	if err != nil {
		return nil, err
	}
	h.Replace(snap)
	return snap, nil
}
