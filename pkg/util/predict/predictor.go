package predict

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gmorley/scorecast/internal/logger"
)

// Prediction is a full-time scoreline forecast for one fixture. Raw values
// are the unrounded regressor outputs, kept for evaluation
type Prediction struct {
	HomeTeam  string  `json:"homeTeam"`
	AwayTeam  string  `json:"awayTeam"`
	HomeGoals int     `json:"homeGoals"`
	AwayGoals int     `json:"awayGoals"`
	RawHome   float64 `json:"rawHome"`
	RawAway   float64 `json:"rawAway"`
}

// Scoreline renders the prediction as e.g. "Arsenal 2 - 1 Chelsea"
func (p *Prediction) Scoreline() string {
	return fmt.Sprintf("%s %d - %d %s", p.HomeTeam, p.HomeGoals, p.AwayGoals, p.AwayTeam)
}

// fittedModel bundles everything needed to score a query vector. It is
// immutable once fitted and is swapped atomically under the service mutex
type fittedModel struct {
	Scaler    *Scaler         `json:"scaler"`
	HomeModel *RidgeRegressor `json:"homeModel"`
	AwayModel *RidgeRegressor `json:"awayModel"`
	Version   int             `json:"schemaVersion"`
	TrainedAt time.Time       `json:"trainedAt"`
}

// PredictionService owns the current snapshot and the fitted goal models.
// Reads take the lock briefly to copy the pointers; training builds the
// replacement off to the side and swaps
type PredictionService struct {
	mu       sync.RWMutex
	snapshot *SnapshotHolder
	model    *fittedModel
}

var (
	serviceInstance *PredictionService
	serviceOnce     sync.Once
)

// GetPredictionService returns the singleton instance of PredictionService
func GetPredictionService() *PredictionService {
	serviceOnce.Do(func() {
		serviceInstance = &PredictionService{snapshot: &SnapshotHolder{}}
	})
	return serviceInstance
}

// Snapshot returns the current feature snapshot, nil before the first load
func (s *PredictionService) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// ReplaceSnapshot installs a freshly built snapshot
func (s *PredictionService) ReplaceSnapshot(snap *Snapshot) {
	s.snapshot.Replace(snap)
}

// RefreshSnapshot reconstitutes the feature snapshot from the persisted
// ledger and publishes it only on success; a failed reload leaves the
// previous snapshot serving
func (s *PredictionService) RefreshSnapshot() (*Snapshot, error) {
	return s.snapshot.Rebuild(LoadMatches)
}

// Train fits the two goal regressors on the snapshot's training corpus and
// installs them. The snapshot is installed too so queries and the model
// always agree on team codes
func (s *PredictionService) Train(snap *Snapshot) error {
	corpus, err := snap.TrainingCorpus()
	if err != nil {
		return err
	}

	matrix := make([][]float64, len(corpus))
	homeTargets := make([]float64, len(corpus))
	awayTargets := make([]float64, len(corpus))
	for i, row := range corpus {
		matrix[i] = row.Features
		homeTargets[i] = float64(row.HomeGoals)
		awayTargets[i] = float64(row.AwayGoals)
	}

	scaler, err := FitScaler(matrix)
	if err != nil {
		return fmt.Errorf("failed to fit scaler: %w", err)
	}
	scaled := make([][]float64, len(matrix))
	for i, row := range matrix {
		scaled[i], err = scaler.Transform(row)
		if err != nil {
			return err
		}
	}

	homeModel := NewRidgeRegressor(Config.RidgeLambda)
	if err := homeModel.Fit(scaled, homeTargets); err != nil {
		return fmt.Errorf("failed to fit home goals model: %w", err)
	}
	awayModel := NewRidgeRegressor(Config.RidgeLambda)
	if err := awayModel.Fit(scaled, awayTargets); err != nil {
		return fmt.Errorf("failed to fit away goals model: %w", err)
	}

	s.snapshot.Replace(snap)
	s.mu.Lock()
	s.model = &fittedModel{
		Scaler:    scaler,
		HomeModel: homeModel,
		AwayModel: awayModel,
		Version:   FeatureSchemaVersion,
		TrainedAt: time.Now(),
	}
	s.mu.Unlock()

	logger.Info("Trained goal models on", len(corpus), "matches")
	return nil
}

// PredictScore forecasts the full-time score for a fixture between two known
// teams. Unknown names are rejected with ErrUnknownTeam and no guess is made
func (s *PredictionService) PredictScore(homeTeam string, awayTeam string) (*Prediction, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, fmt.Errorf("no data loaded: %w", ErrEmptyLedger)
	}
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()
	if model == nil {
		return nil, fmt.Errorf("model has not been trained")
	}

	vector, err := snap.QueryVector(homeTeam, awayTeam)
	if err != nil {
		return nil, err
	}
	scaled, err := model.Scaler.Transform(vector)
	if err != nil {
		return nil, err
	}
	rawHome, err := model.HomeModel.Predict(scaled)
	if err != nil {
		return nil, err
	}
	rawAway, err := model.AwayModel.Predict(scaled)
	if err != nil {
		return nil, err
	}

	return &Prediction{
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		HomeGoals: clampGoals(rawHome),
		AwayGoals: clampGoals(rawAway),
		RawHome:   rawHome,
		RawAway:   rawAway,
	}, nil
}

// clampGoals rounds a raw regressor output to the nearest whole goal,
// floored at zero
func clampGoals(raw float64) int {
	g := int(math.Round(raw))
	if g < 0 {
		return 0
	}
	return g
}

const modelMetaKey = "fitted_model"

// SaveModel persists the fitted model alongside the corpus it was trained on
func (s *PredictionService) SaveModel() error {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()
	if model == nil {
		return fmt.Errorf("no fitted model to save")
	}
	data, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	return PutMeta(modelMetaKey, string(data))
}

// LoadModel restores a previously persisted model. A model trained against a
// different feature schema is rejected rather than silently misapplied
func (s *PredictionService) LoadModel() error {
	data, err := GetMeta(modelMetaKey)
	if err != nil {
		return fmt.Errorf("no persisted model found: %w", err)
	}
	var model fittedModel
	if err := json.Unmarshal([]byte(data), &model); err != nil {
		return fmt.Errorf("failed to deserialize model: %w", err)
	}
	if model.Version != FeatureSchemaVersion {
		return fmt.Errorf("persisted model has schema version %d, expected %d: %w",
			model.Version, FeatureSchemaVersion, ErrSchemaMismatch)
	}
	s.mu.Lock()
	s.model = &model
	s.mu.Unlock()
	logger.Info("Loaded persisted model trained at", model.TrainedAt.Format(time.RFC3339))
	return nil
}
