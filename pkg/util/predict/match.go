package predict

import (
	"fmt"
	"strings"
	"time"
)

// Compile-time check to ensure Match implements Persistable interface
var _ Persistable = (*Match)(nil)

// Side distinguishes a team's home appearances from its away appearances.
// Rolling statistics are never mixed across sides
type Side int

const (
	Home Side = iota
	Away
)

func (s Side) String() string {
	if s == Home {
		return "home"
	}
	return "away"
}

// Match represents one played fixture with database persistence annotations.
// Rows are immutable after ingestion; corrections arrive as new rows in later
// re-ingestion runs
type Match struct {
	// Primary key
	ID string `json:"id" column:"id" dbtype:"TEXT" primary:"true" index:"true"`

	// Info
	Date   time.Time `json:"date" column:"date" dbtype:"DATETIME" index:"true"`
	Season string    `json:"season" column:"season" dbtype:"TEXT" index:"true"`

	// Teams, by registry name
	HomeTeam string `json:"homeTeam" column:"homeTeam" dbtype:"TEXT NOT NULL" index:"true"`
	AwayTeam string `json:"awayTeam" column:"awayTeam" dbtype:"TEXT NOT NULL" index:"true"`

	// Full-time goals, the prediction targets
	HomeGoals int `json:"homeGoals" column:"homeGoals" dbtype:"INTEGER DEFAULT -1"`
	AwayGoals int `json:"awayGoals" column:"awayGoals" dbtype:"INTEGER DEFAULT -1"`

	// Action
	HomeShotsOnTarget int `json:"homeShotsOnTarget" column:"homeShotsOnTarget" dbtype:"INTEGER DEFAULT -1"`
	AwayShotsOnTarget int `json:"awayShotsOnTarget" column:"awayShotsOnTarget" dbtype:"INTEGER DEFAULT -1"`
	HomeCorners       int `json:"homeCorners" column:"homeCorners" dbtype:"INTEGER DEFAULT -1"`
	AwayCorners       int `json:"awayCorners" column:"awayCorners" dbtype:"INTEGER DEFAULT -1"`
	HomeFouls         int `json:"homeFouls" column:"homeFouls" dbtype:"INTEGER DEFAULT -1"`
	AwayFouls         int `json:"awayFouls" column:"awayFouls" dbtype:"INTEGER DEFAULT -1"`

	// Discipline
	HomeYellowCards int `json:"homeYellowCards" column:"homeYellowCards" dbtype:"INTEGER DEFAULT -1"`
	AwayYellowCards int `json:"awayYellowCards" column:"awayYellowCards" dbtype:"INTEGER DEFAULT -1"`
	HomeRedCards    int `json:"homeRedCards" column:"homeRedCards" dbtype:"INTEGER DEFAULT -1"`
	AwayRedCards    int `json:"awayRedCards" column:"awayRedCards" dbtype:"INTEGER DEFAULT -1"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// NewMatch creates a new Match with default values for numeric fields.
// All numeric fields default to -1 to distinguish missing from a valid zero
func NewMatch() *Match {
	return &Match{
		HomeGoals:         -1,
		AwayGoals:         -1,
		HomeShotsOnTarget: -1,
		AwayShotsOnTarget: -1,
		HomeCorners:       -1,
		AwayCorners:       -1,
		HomeFouls:         -1,
		AwayFouls:         -1,
		HomeYellowCards:   -1,
		AwayYellowCards:   -1,
		HomeRedCards:      -1,
		AwayRedCards:      -1,
	}
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetPrimaryKey returns the primary key as a map
func (m *Match) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"id": m.ID,
	}
}

// SetPrimaryKey sets the primary key from a map
func (m *Match) SetPrimaryKey(pk map[string]interface{}) error {
	if id, ok := pk["id"]; ok {
		if idStr, ok := id.(string); ok {
			m.ID = idStr
			return nil
		}
		return fmt.Errorf("primary key 'id' must be a string")
	}
	return fmt.Errorf("primary key 'id' not found")
}

// GetTableName returns the table name for matches
func (m *Match) GetTableName() string {
	return "match"
}

// BeforeSave is called before saving the match
func (m *Match) BeforeSave() error {
	if m.ID == "" {
		m.ID = m.DeriveID()
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the match
func (m *Match) AfterSave() error {
	return nil
}

// BeforeDelete is called before deleting the match
func (m *Match) BeforeDelete() error {
	return nil
}

// AfterDelete is called after deleting the match
func (m *Match) AfterDelete() error {
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Row Semantics
/////////////////////////////////////////////////////////////////////////

// DeriveID generates the stable match ID from date and team names
func (m *Match) DeriveID() string {
	date := m.Date.Format("20060102")
	home := strings.ReplaceAll(m.HomeTeam, " ", "")
	away := strings.ReplaceAll(m.AwayTeam, " ", "")
	return fmt.Sprintf("%s_%s_%s", date, home, away)
}

// HasResult reports whether both full-time goal fields are populated
func (m *Match) HasResult() bool {
	return m.HomeGoals >= 0 && m.AwayGoals >= 0
}

// GoalsFor returns the goals scored by the team on the given side
func (m *Match) GoalsFor(side Side) int {
	if side == Home {
		return m.HomeGoals
	}
	return m.AwayGoals
}

// GoalsAgainst returns the goals conceded by the team on the given side
func (m *Match) GoalsAgainst(side Side) int {
	if side == Home {
		return m.AwayGoals
	}
	return m.HomeGoals
}

// TeamOn returns the name of the team that played the given side
func (m *Match) TeamOn(side Side) string {
	if side == Home {
		return m.HomeTeam
	}
	return m.AwayTeam
}

// statFields lists the secondary in-match statistics for one side, in the
// order they appear in the feature vector schema
func (m *Match) statFields(side Side) []int {
	if side == Home {
		return []int{m.HomeShotsOnTarget, m.HomeCorners, m.HomeFouls, m.HomeYellowCards, m.HomeRedCards}
	}
	return []int{m.AwayShotsOnTarget, m.AwayCorners, m.AwayFouls, m.AwayYellowCards, m.AwayRedCards}
}

// complete reports whether every required column is populated; rows failing
// this are dropped during ingestion, never repaired
func (m *Match) complete() bool {
	if m.HomeTeam == "" || m.AwayTeam == "" || m.Date.IsZero() {
		return false
	}
	if !m.HasResult() {
		return false
	}
	for _, side := range []Side{Home, Away} {
		for _, v := range m.statFields(side) {
			if v < 0 {
				return false
			}
		}
	}
	return true
}
