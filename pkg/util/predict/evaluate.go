package predict

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gmorley/scorecast/internal/logger"
)

// Evaluation holds holdout metrics for one target (home or away goals)
type Evaluation struct {
	Target string  `json:"target"`
	MSE    float64 `json:"mse"`
	MAE    float64 `json:"mae"`
	R2     float64 `json:"r2"`
}

// EvaluationReport summarizes a train/test split run
type EvaluationReport struct {
	TrainRows int        `json:"trainRows"`
	TestRows  int        `json:"testRows"`
	Home      Evaluation `json:"home"`
	Away      Evaluation `json:"away"`
	// ExactRate is the fraction of holdout fixtures whose rounded scoreline
	// matched the actual result on both ends
	ExactRate float64 `json:"exactRate"`
}

// Evaluate splits the snapshot's corpus with a seeded shuffle, fits fresh
// models on the training part and reports regression metrics plus the
// exact-scoreline hit rate on the holdout. The seed makes repeated runs
// comparable
func Evaluate(snap *Snapshot) (*EvaluationReport, error) {
	corpus, err := snap.TrainingCorpus()
	if err != nil {
		return nil, err
	}
	if len(corpus) < 10 {
		return nil, fmt.Errorf("corpus too small to evaluate: %d rows", len(corpus))
	}

	rng := rand.New(rand.NewSource(Config.EvalSeed))
	order := rng.Perm(len(corpus))
	testSize := int(float64(len(corpus)) * Config.TestFraction)
	if testSize < 1 {
		testSize = 1
	}

	var trainMatrix [][]float64
	var trainHome, trainAway []float64
	var testMatrix [][]float64
	var testHome, testAway []float64
	for i, idx := range order {
		row := corpus[idx]
		if i < testSize {
			testMatrix = append(testMatrix, row.Features)
			testHome = append(testHome, float64(row.HomeGoals))
			testAway = append(testAway, float64(row.AwayGoals))
		} else {
			trainMatrix = append(trainMatrix, row.Features)
			trainHome = append(trainHome, float64(row.HomeGoals))
			trainAway = append(trainAway, float64(row.AwayGoals))
		}
	}

	scaler, err := FitScaler(trainMatrix)
	if err != nil {
		return nil, err
	}
	scaledTrain, err := transformAll(scaler, trainMatrix)
	if err != nil {
		return nil, err
	}
	scaledTest, err := transformAll(scaler, testMatrix)
	if err != nil {
		return nil, err
	}

	homeModel := NewRidgeRegressor(Config.RidgeLambda)
	if err := homeModel.Fit(scaledTrain, trainHome); err != nil {
		return nil, err
	}
	awayModel := NewRidgeRegressor(Config.RidgeLambda)
	if err := awayModel.Fit(scaledTrain, trainAway); err != nil {
		return nil, err
	}

	homePreds := make([]float64, len(scaledTest))
	awayPreds := make([]float64, len(scaledTest))
	for i, row := range scaledTest {
		if homePreds[i], err = homeModel.Predict(row); err != nil {
			return nil, err
		}
		if awayPreds[i], err = awayModel.Predict(row); err != nil {
			return nil, err
		}
	}

	exact := 0
	for i := range scaledTest {
		if clampGoals(homePreds[i]) == int(testHome[i]) && clampGoals(awayPreds[i]) == int(testAway[i]) {
			exact++
		}
	}

	report := &EvaluationReport{
		TrainRows: len(trainMatrix),
		TestRows:  len(testMatrix),
		Home:      scoreTarget("home_goals", testHome, homePreds),
		Away:      scoreTarget("away_goals", testAway, awayPreds),
		ExactRate: float64(exact) / float64(len(scaledTest)),
	}
	logger.Info("Evaluation complete:", report.TestRows, "holdout rows, exact scoreline rate",
		fmt.Sprintf("%.3f", report.ExactRate))
	return report, nil
}

func transformAll(s *Scaler, rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	var err error
	for i, row := range rows {
		if out[i], err = s.Transform(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scoreTarget(name string, actual, predicted []float64) Evaluation {
	n := float64(len(actual))
	mean := 0.0
	for _, v := range actual {
		mean += v
	}
	mean /= n

	var sse, sae, sst float64
	for i := range actual {
		d := predicted[i] - actual[i]
		sse += d * d
		sae += math.Abs(d)
		dm := actual[i] - mean
		sst += dm * dm
	}

	r2 := 0.0
	if sst > 0 {
		r2 = 1 - sse/sst
	}
	return Evaluation{
		Target: name,
		MSE:    sse / n,
		MAE:    sae / n,
		R2:     r2,
	}
}
