package predict

// FeatureSchemaVersion identifies the feature vector layout. Training
// corpora, registries and trained models all record the version they were
// written under; loading anything written under another version is a hard
// ErrSchemaMismatch, because silently proceeding would corrupt downstream
// model coefficients
const FeatureSchemaVersion = 1

// FeatureCount is the fixed length of every feature vector
const FeatureCount = 22

// featureNames is the fixed field order shared by the training corpus and
// query-time vectors. Any layout change must bump FeatureSchemaVersion
var featureNames = []string{
	"HomeTeamCode", "AwayTeamCode",
	"HomeShotsOnTarget", "AwayShotsOnTarget",
	"HomeCorners", "AwayCorners",
	"HomeFouls", "AwayFouls",
	"HomeYellowCards", "AwayYellowCards",
	"HomeRedCards", "AwayRedCards",
	"HomeRollingGF", "HomeRollingGA",
	"AwayRollingGF", "AwayRollingGA",
	"HomeForm", "AwayForm",
	"HomeStrength", "AwayStrength",
	"FormInteraction", "StrengthInteraction",
}

// FeatureNames returns the schema field order. Read-only
func FeatureNames() []string {
	return featureNames
}

// TrainingRow is one supervised example: a feature vector plus the two
// goal targets
type TrainingRow struct {
	MatchID   string
	Features  []float64
	HomeGoals int
	AwayGoals int
}

// assembleVector is the single shared definition of the feature layout. Both
// the training path and the query path resolve to this function; if they ever
// diverge the trained coefficients become meaningless against live queries
func assembleVector(homeCode, awayCode int, homeStats, awayStats [5]float64, home, away RollingState) []float64 {
	v := make([]float64, 0, FeatureCount)
	v = append(v, float64(homeCode), float64(awayCode))
	for i := 0; i < 5; i++ {
		v = append(v, homeStats[i], awayStats[i])
	}
	v = append(v,
		home.RollingGF, home.RollingGA,
		away.RollingGF, away.RollingGA,
		home.Form, away.Form,
		home.Strength, away.Strength,
		home.Form*away.Form,
		home.Strength*away.Strength,
	)
	return v
}

// ForTraining projects the annotated ledger into the fixed vector layout, one
// supervised example per historical match
func ForTraining(a *AnnotatedLedger, r *Registry) ([]TrainingRow, error) {
	rows := make([]TrainingRow, 0, a.Len())
	for _, ar := range a.Rows() {
		m := ar.Match
		homeCode, err := r.Encode(m.HomeTeam)
		if err != nil {
			return nil, err
		}
		awayCode, err := r.Encode(m.AwayTeam)
		if err != nil {
			return nil, err
		}

		var homeStats, awayStats [5]float64
		for i, v := range m.statFields(Home) {
			homeStats[i] = float64(v)
		}
		for i, v := range m.statFields(Away) {
			awayStats[i] = float64(v)
		}

		rows = append(rows, TrainingRow{
			MatchID:   m.ID,
			Features:  assembleVector(homeCode, awayCode, homeStats, awayStats, ar.HomeState, ar.AwayState),
			HomeGoals: m.HomeGoals,
			AwayGoals: m.AwayGoals,
		})
	}
	return rows, nil
}

// ForQuery builds the single vector representing current form for a queried
// pair: the home team's state from its home history, the away team's from its
// away history, each as of the latest ledger date. Unknown names are rejected
// before any state lookup. Teams with no history on the required side get the
// same fallbacks the training path uses, never ad-hoc zeros
func ForQuery(homeTeam, awayTeam string, a *AnnotatedLedger, r *Registry) ([]float64, error) {
	var unknown []string
	if !r.Contains(homeTeam) {
		unknown = append(unknown, homeTeam)
	}
	if !r.Contains(awayTeam) {
		unknown = append(unknown, awayTeam)
	}
	if len(unknown) > 0 {
		return nil, UnknownTeams(unknown...)
	}

	homeCode, _ := r.Encode(homeTeam)
	awayCode, _ := r.Encode(awayTeam)

	return assembleVector(
		homeCode, awayCode,
		a.LatestStats(homeTeam, Home), a.LatestStats(awayTeam, Away),
		a.LatestState(homeTeam, Home), a.LatestState(awayTeam, Away),
	), nil
}
