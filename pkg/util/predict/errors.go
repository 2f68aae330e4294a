package predict

import (
	"errors"
	"fmt"
)

// Structural defects abort the operation rather than degrade: a plausible but
// wrong feature vector is worse than a visible failure.
var (
	// ErrUnknownTeam is returned when a team name is absent from the fitted
	// registry vocabulary. Callers must surface this, never substitute a code.
	ErrUnknownTeam = errors.New("unknown team")

	// ErrEmptyLedger is returned when no rows survive ingestion. No feature
	// computation is possible and a rebuild must abort.
	ErrEmptyLedger = errors.New("empty ledger")

	// ErrSchemaMismatch is returned when a persisted registry, corpus or model
	// carries a feature schema version other than the current one.
	ErrSchemaMismatch = errors.New("feature schema mismatch")
)

// UnknownTeams wraps ErrUnknownTeam with the offending names so a caller can
// render a meaningful "unknown team(s)" message
func UnknownTeams(names ...string) error {
	return fmt.Errorf("%w: %v", ErrUnknownTeam, names)
}
