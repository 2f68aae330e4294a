package predict

import (
	"fmt"
	"time"

	"github.com/gmorley/scorecast/internal/logger"
)

// Compile-time check to ensure CorpusRow implements Persistable interface
var _ Persistable = (*CorpusRow)(nil)

// CorpusRow is one materialized training example: the flat feature columns in
// schema order plus the two goal targets. The table is the handoff format for
// the persistence layer; column order matches the feature schema exactly
type CorpusRow struct {
	// Primary key
	MatchID string `json:"matchId" column:"match_id" dbtype:"TEXT NOT NULL" primary:"true"`

	SchemaVersion int `json:"schemaVersion" column:"schema_version" dbtype:"INTEGER NOT NULL" index:"true"`

	// Feature columns, schema order
	HomeTeamCode        int     `json:"homeTeamCode" column:"home_team_code" dbtype:"INTEGER NOT NULL"`
	AwayTeamCode        int     `json:"awayTeamCode" column:"away_team_code" dbtype:"INTEGER NOT NULL"`
	HomeShotsOnTarget   float64 `json:"homeShotsOnTarget" column:"home_shots_on_target" dbtype:"REAL DEFAULT 0.0"`
	AwayShotsOnTarget   float64 `json:"awayShotsOnTarget" column:"away_shots_on_target" dbtype:"REAL DEFAULT 0.0"`
	HomeCorners         float64 `json:"homeCorners" column:"home_corners" dbtype:"REAL DEFAULT 0.0"`
	AwayCorners         float64 `json:"awayCorners" column:"away_corners" dbtype:"REAL DEFAULT 0.0"`
	HomeFouls           float64 `json:"homeFouls" column:"home_fouls" dbtype:"REAL DEFAULT 0.0"`
	AwayFouls           float64 `json:"awayFouls" column:"away_fouls" dbtype:"REAL DEFAULT 0.0"`
	HomeYellowCards     float64 `json:"homeYellowCards" column:"home_yellow_cards" dbtype:"REAL DEFAULT 0.0"`
	AwayYellowCards     float64 `json:"awayYellowCards" column:"away_yellow_cards" dbtype:"REAL DEFAULT 0.0"`
	HomeRedCards        float64 `json:"homeRedCards" column:"home_red_cards" dbtype:"REAL DEFAULT 0.0"`
	AwayRedCards        float64 `json:"awayRedCards" column:"away_red_cards" dbtype:"REAL DEFAULT 0.0"`
	HomeRollingGF       float64 `json:"homeRollingGF" column:"home_rolling_gf" dbtype:"REAL DEFAULT 0.0"`
	HomeRollingGA       float64 `json:"homeRollingGA" column:"home_rolling_ga" dbtype:"REAL DEFAULT 0.0"`
	AwayRollingGF       float64 `json:"awayRollingGF" column:"away_rolling_gf" dbtype:"REAL DEFAULT 0.0"`
	AwayRollingGA       float64 `json:"awayRollingGA" column:"away_rolling_ga" dbtype:"REAL DEFAULT 0.0"`
	HomeForm            float64 `json:"homeForm" column:"home_form" dbtype:"REAL DEFAULT 0.0"`
	AwayForm            float64 `json:"awayForm" column:"away_form" dbtype:"REAL DEFAULT 0.0"`
	HomeStrength        float64 `json:"homeStrength" column:"home_strength" dbtype:"REAL DEFAULT 0.0"`
	AwayStrength        float64 `json:"awayStrength" column:"away_strength" dbtype:"REAL DEFAULT 0.0"`
	FormInteraction     float64 `json:"formInteraction" column:"form_interaction" dbtype:"REAL DEFAULT 0.0"`
	StrengthInteraction float64 `json:"strengthInteraction" column:"strength_interaction" dbtype:"REAL DEFAULT 0.0"`

	// Targets
	HomeGoals int `json:"homeGoals" column:"home_goals" dbtype:"INTEGER NOT NULL"`
	AwayGoals int `json:"awayGoals" column:"away_goals" dbtype:"INTEGER NOT NULL"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// GetPrimaryKey returns the primary key as a map
func (cr *CorpusRow) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"match_id": cr.MatchID,
	}
}

// SetPrimaryKey sets the primary key from a map
func (cr *CorpusRow) SetPrimaryKey(pk map[string]interface{}) error {
	if id, ok := pk["match_id"]; ok {
		if idStr, ok := id.(string); ok {
			cr.MatchID = idStr
			return nil
		}
		return fmt.Errorf("primary key 'match_id' must be a string")
	}
	return fmt.Errorf("primary key 'match_id' not found")
}

// GetTableName returns the table name for corpus rows
func (cr *CorpusRow) GetTableName() string {
	return "corpus_row"
}

// BeforeSave is called before saving the corpus row
func (cr *CorpusRow) BeforeSave() error {
	now := time.Now()
	if cr.CreatedAt.IsZero() {
		cr.CreatedAt = now
	}
	cr.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the corpus row
func (cr *CorpusRow) AfterSave() error {
	return nil
}

// BeforeDelete is called before deleting the corpus row
func (cr *CorpusRow) BeforeDelete() error {
	return nil
}

// AfterDelete is called after deleting the corpus row
func (cr *CorpusRow) AfterDelete() error {
	return nil
}

// corpusRowFromTraining spreads a training row's vector over the flat columns
func corpusRowFromTraining(tr TrainingRow) *CorpusRow {
	f := tr.Features
	return &CorpusRow{
		MatchID:             tr.MatchID,
		SchemaVersion:       FeatureSchemaVersion,
		HomeTeamCode:        int(f[0]),
		AwayTeamCode:        int(f[1]),
		HomeShotsOnTarget:   f[2],
		AwayShotsOnTarget:   f[3],
		HomeCorners:         f[4],
		AwayCorners:         f[5],
		HomeFouls:           f[6],
		AwayFouls:           f[7],
		HomeYellowCards:     f[8],
		AwayYellowCards:     f[9],
		HomeRedCards:        f[10],
		AwayRedCards:        f[11],
		HomeRollingGF:       f[12],
		HomeRollingGA:       f[13],
		AwayRollingGF:       f[14],
		AwayRollingGA:       f[15],
		HomeForm:            f[16],
		AwayForm:            f[17],
		HomeStrength:        f[18],
		AwayStrength:        f[19],
		FormInteraction:     f[20],
		StrengthInteraction: f[21],
		HomeGoals:           tr.HomeGoals,
		AwayGoals:           tr.AwayGoals,
	}
}

// SaveCorpus materializes the snapshot's full training corpus to the database
func SaveCorpus(snap *Snapshot) error {
	corpus, err := snap.TrainingCorpus()
	if err != nil {
		return fmt.Errorf("failed to build training corpus: %w", err)
	}

	logger.Info("Saving corpus rows to database", len(corpus))
	var persistables []Persistable
	for _, tr := range corpus {
		persistables = append(persistables, corpusRowFromTraining(tr))
	}
	if err := BulkSave(persistables); err != nil {
		return fmt.Errorf("failed to bulk save corpus: %w", err)
	}
	return nil
}

// LoadCorpus reloads the persisted training corpus. Fails with
// ErrSchemaMismatch if any row was written under a different feature schema
func LoadCorpus() ([]TrainingRow, error) {
	results, err := FindAll(&CorpusRow{})
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	rows := make([]TrainingRow, 0, len(results))
	for _, res := range results {
		cr, ok := res.(*CorpusRow)
		if !ok {
			return nil, fmt.Errorf("unexpected type in corpus_row results")
		}
		if cr.SchemaVersion != FeatureSchemaVersion {
			return nil, fmt.Errorf("corpus written at schema %d, current is %d: %w",
				cr.SchemaVersion, FeatureSchemaVersion, ErrSchemaMismatch)
		}
		rows = append(rows, TrainingRow{
			MatchID: cr.MatchID,
			Features: []float64{
				float64(cr.HomeTeamCode), float64(cr.AwayTeamCode),
				cr.HomeShotsOnTarget, cr.AwayShotsOnTarget,
				cr.HomeCorners, cr.AwayCorners,
				cr.HomeFouls, cr.AwayFouls,
				cr.HomeYellowCards, cr.AwayYellowCards,
				cr.HomeRedCards, cr.AwayRedCards,
				cr.HomeRollingGF, cr.HomeRollingGA,
				cr.AwayRollingGF, cr.AwayRollingGA,
				cr.HomeForm, cr.AwayForm,
				cr.HomeStrength, cr.AwayStrength,
				cr.FormInteraction, cr.StrengthInteraction,
			},
			HomeGoals: cr.HomeGoals,
			AwayGoals: cr.AwayGoals,
		})
	}
	return rows, nil
}
