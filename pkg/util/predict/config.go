package predict

import "fmt"

// PredictConfig contains all configurable parameters that influence feature
// computation and prediction outcomes. This centralizes all magic numbers and
// constants for easy adjustment
type PredictConfig struct {
	// Asset and cache locations
	AssetsPath string // The base directory of assets relating to scorecast
	CachePath  string // The location in which cached downloaded CSV data is stored
	DbPath     string // The location of the scorecast sqlite database

	// === DATA SOURCE ===

	BaseDataURL string   // football-data.co.uk download template, takes season and league code
	IndexURL    string   // page scraped for the list of available season CSVs
	LeagueCode  string   // football-data.co.uk league code (E0 = Premier League)
	Seasons     []string // seasons of interest in native '1415' form; empty means discover from the index page
	DateLayout  string   // the single fixed date layout accepted by the ledger

	// === FEATURE ENGINEERING ===

	FormWindowSize int     // trailing matches per side in the rolling window (default: 5)
	NeutralForm    float64 // form fallback for a team with no window history (default: 1.5, a 50/50 expectation)
	WinPoints      int     // league points for a win (default: 3)
	DrawPoints     int     // league points for a draw (default: 1)

	// === MODEL ===

	RidgeLambda  float64 // L2 regularization strength for the goal regressors
	TestFraction float64 // holdout fraction used by evaluation
	EvalSeed     int64   // seed for the deterministic evaluation split

	// === SERVING ===

	ServerAddr string // listen address for the prediction web service
}

// DefaultPredictConfig returns the default configuration with all standard values
func DefaultPredictConfig() *PredictConfig {
	assetsPath := "/tmp/.scorecast/"
	config := &PredictConfig{
		AssetsPath: assetsPath,
		CachePath:  assetsPath + "cache/",
		DbPath:     assetsPath + "scorecast.db",

		BaseDataURL: "https://www.football-data.co.uk/mmz4281/%s/%s.csv",
		IndexURL:    "https://www.football-data.co.uk/englandm.php",
		LeagueCode:  "E0",
		Seasons:     []string{"1415", "1516", "1617", "1718", "1819", "1920", "2021", "2122", "2223"},
		DateLayout:  "02/01/06",

		FormWindowSize: 5,
		NeutralForm:    1.5,
		WinPoints:      3,
		DrawPoints:     1,

		RidgeLambda:  1.0,
		TestFraction: 0.2,
		EvalSeed:     42,

		ServerAddr: ":8085",
	}
	return config
}

// Global configuration instance
var Config *PredictConfig

func init() {
	Config = DefaultPredictConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *PredictConfig) {
	Config = newConfig
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *PredictConfig) error {
	if config.FormWindowSize < 1 {
		return fmt.Errorf("FormWindowSize must be at least 1, got: %d", config.FormWindowSize)
	}

	if config.NeutralForm < 0.0 || config.NeutralForm > float64(config.WinPoints) {
		return fmt.Errorf("NeutralForm must be between 0 and %d, got: %f", config.WinPoints, config.NeutralForm)
	}

	if config.TestFraction <= 0.0 || config.TestFraction >= 1.0 {
		return fmt.Errorf("TestFraction must be strictly between 0 and 1, got: %f", config.TestFraction)
	}

	if config.RidgeLambda < 0.0 {
		return fmt.Errorf("RidgeLambda must be non-negative, got: %f", config.RidgeLambda)
	}

	// An empty season list is valid: the datasource discovers the
	// downloadable seasons from the index page instead

	return nil
}

// === HELPER FUNCTIONS FOR EASY ACCESS ===

// GetFormWindowSize returns the rolling window length
func GetFormWindowSize() int {
	return Config.FormWindowSize
}

// GetNeutralForm returns the form value used when a team has no window history
func GetNeutralForm() float64 {
	return Config.NeutralForm
}

// GetDateLayout returns the single fixed date layout accepted by the ledger
func GetDateLayout() string {
	return Config.DateLayout
}

// PointsForResult returns the league points earned for a goals-for/against pair
func PointsForResult(goalsFor, goalsAgainst int) int {
	if goalsFor > goalsAgainst {
		return Config.WinPoints
	}
	if goalsFor == goalsAgainst {
		return Config.DrawPoints
	}
	return 0
}
