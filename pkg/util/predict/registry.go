package predict

import (
	"fmt"
	"sort"
	"time"

	"github.com/gmorley/scorecast/internal/logger"
	"github.com/gmorley/scorecast/pkg/util"
)

// Registry is the stable bijection between team name strings and dense
// integer codes, the only shared vocabulary between training and inference.
// Codes are assigned over the sorted vocabulary so rebuilds on identical
// input reproduce identical assignments. Immutable once built
type Registry struct {
	codeByName map[string]int
	nameByCode []string
}

// BuildRegistry fits a registry over the given team names. Duplicates are
// collapsed; codes follow the sorted order of the deduplicated vocabulary
func BuildRegistry(names []string) *Registry {
	uniq := make(map[string]bool, len(names))
	for _, n := range names {
		if n != "" {
			uniq[n] = true
		}
	}
	sorted := make([]string, 0, len(uniq))
	for n := range uniq {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	r := &Registry{
		codeByName: make(map[string]int, len(sorted)),
		nameByCode: sorted,
	}
	for code, name := range sorted {
		r.codeByName[name] = code
	}
	logger.Debug("Registry built with", len(sorted), "teams")
	return r
}

// RegistryFromLedger fits a registry over every home and away name observed
// in the ledger
func RegistryFromLedger(l *Ledger) *Registry {
	return BuildRegistry(l.TeamNames())
}

// Encode returns the code for a fitted team name. Encoding an unseen name is
// a hard rejection, never a silent default
func (r *Registry) Encode(name string) (int, error) {
	code, ok := r.codeByName[name]
	if !ok {
		return -1, UnknownTeams(name)
	}
	return code, nil
}

// Decode returns the team name for a code
func (r *Registry) Decode(code int) (string, error) {
	if code < 0 || code >= len(r.nameByCode) {
		return "", fmt.Errorf("no team for code %d", code)
	}
	return r.nameByCode[code], nil
}

// Contains reports whether the name is in the fitted vocabulary
func (r *Registry) Contains(name string) bool {
	_, ok := r.codeByName[name]
	return ok
}

// Len returns the vocabulary size
func (r *Registry) Len() int {
	return len(r.nameByCode)
}

// Names returns the vocabulary in code order. Read-only
func (r *Registry) Names() []string {
	return r.nameByCode
}

// Closest returns the fitted name most similar to the given one, for use in
// rejection messages. Empty when nothing scores above half similarity
func (r *Registry) Closest(name string) string {
	best := ""
	bestScore := 0.5
	for _, candidate := range r.nameByCode {
		if score := util.FuzzyMatchScore(name, candidate); score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best
}

/////////////////////////////////////////////////////////////////////////
////// Persistence
/////////////////////////////////////////////////////////////////////////

// Compile-time check to ensure TeamCode implements Persistable interface
var _ Persistable = (*TeamCode)(nil)

// TeamCode is one serialized registry entry. The schema version column makes
// a stale persisted vocabulary detectable on load
type TeamCode struct {
	Code          int       `json:"code" column:"code" dbtype:"INTEGER NOT NULL" primary:"true"`
	Name          string    `json:"name" column:"name" dbtype:"TEXT NOT NULL" index:"true"`
	SchemaVersion int       `json:"schemaVersion" column:"schema_version" dbtype:"INTEGER NOT NULL"`
	CreatedAt     time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// GetPrimaryKey returns the primary key as a map
func (tc *TeamCode) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"code": tc.Code,
	}
}

// SetPrimaryKey sets the primary key from a map
func (tc *TeamCode) SetPrimaryKey(pk map[string]interface{}) error {
	if code, ok := pk["code"]; ok {
		switch v := code.(type) {
		case int:
			tc.Code = v
			return nil
		case int64:
			tc.Code = int(v)
			return nil
		}
		return fmt.Errorf("primary key 'code' must be an integer")
	}
	return fmt.Errorf("primary key 'code' not found")
}

// GetTableName returns the table name for registry entries
func (tc *TeamCode) GetTableName() string {
	return "team_code"
}

// BeforeSave is called before saving the registry entry
func (tc *TeamCode) BeforeSave() error {
	now := time.Now()
	if tc.CreatedAt.IsZero() {
		tc.CreatedAt = now
	}
	tc.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the registry entry
func (tc *TeamCode) AfterSave() error {
	return nil
}

// BeforeDelete is called before deleting the registry entry
func (tc *TeamCode) BeforeDelete() error {
	return nil
}

// AfterDelete is called after deleting the registry entry
func (tc *TeamCode) AfterDelete() error {
	return nil
}

// SaveRegistry persists the full bijection, replacing any previous snapshot
func SaveRegistry(r *Registry) error {
	logger.Info("Saving registry to database", r.Len())
	var entries []Persistable
	for code, name := range r.nameByCode {
		entries = append(entries, &TeamCode{
			Code:          code,
			Name:          name,
			SchemaVersion: FeatureSchemaVersion,
		})
	}
	if err := BulkSave(entries); err != nil {
		return fmt.Errorf("failed to bulk save registry: %w", err)
	}
	return nil
}

// LoadRegistry rebuilds a registry from its persisted entries. Fails with
// ErrSchemaMismatch if any entry was written under a different feature schema
func LoadRegistry() (*Registry, error) {
	results, err := FindAll(&TeamCode{})
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	entries := make([]*TeamCode, 0, len(results))
	for _, res := range results {
		tc, ok := res.(*TeamCode)
		if !ok {
			return nil, fmt.Errorf("unexpected type in team_code results")
		}
		if tc.SchemaVersion != FeatureSchemaVersion {
			return nil, fmt.Errorf("registry written at schema %d, current is %d: %w",
				tc.SchemaVersion, FeatureSchemaVersion, ErrSchemaMismatch)
		}
		entries = append(entries, tc)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })

	r := &Registry{codeByName: make(map[string]int, len(entries))}
	for i, tc := range entries {
		if tc.Code != i {
			return nil, fmt.Errorf("registry codes are not dense at %d: %w", tc.Code, ErrSchemaMismatch)
		}
		r.nameByCode = append(r.nameByCode, tc.Name)
		r.codeByName[tc.Name] = tc.Code
	}
	return r, nil
}
