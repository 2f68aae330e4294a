package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitScaler(t *testing.T) {
	rows := [][]float64{
		{1, 10, 7},
		{3, 20, 7},
	}
	s, err := FitScaler(rows)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, s.Mean[0], 1e-9)
	assert.InDelta(t, 15.0, s.Mean[1], 1e-9)
	assert.InDelta(t, 1.0, s.Scale[0], 1e-9)
	assert.InDelta(t, 5.0, s.Scale[1], 1e-9)
	assert.InDelta(t, 1.0, s.Scale[2], 1e-9, "Constant column keeps unit scale")

	out, err := s.Transform([]float64{3, 10, 7})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out[0], 1e-9)
	assert.InDelta(t, -1.0, out[1], 1e-9)
	assert.InDelta(t, 0.0, out[2], 1e-9)

	_, err = s.Transform([]float64{1, 2})
	assert.Error(t, err, "Wrong arity must be rejected")
}

func TestFitScalerEmpty(t *testing.T) {
	_, err := FitScaler(nil)
	assert.ErrorIs(t, err, ErrEmptyLedger)
}

// With negligible regularization the solver should recover an exact linear
// relationship
func TestRidgeRecoversLinearFunction(t *testing.T) {
	rows := [][]float64{
		{1, 0}, {0, 1}, {1, 1}, {2, 1}, {1, 3}, {4, 2},
	}
	targets := make([]float64, len(rows))
	for i, r := range rows {
		targets[i] = 2*r[0] - r[1] + 5
	}

	model := NewRidgeRegressor(1e-9)
	require.NoError(t, model.Fit(rows, targets))

	assert.InDelta(t, 2.0, model.Weights[0], 1e-4)
	assert.InDelta(t, -1.0, model.Weights[1], 1e-4)
	assert.InDelta(t, 5.0, model.Intercept, 1e-4)

	got, err := model.Predict([]float64{3, 2})
	require.NoError(t, err)
	assert.InDelta(t, 9.0, got, 1e-4)
}

// Regularization must shrink coefficients on duplicated columns instead of
// failing on the singular system
func TestRidgeHandlesCollinearColumns(t *testing.T) {
	rows := [][]float64{
		{1, 1}, {2, 2}, {3, 3}, {4, 4},
	}
	targets := []float64{2, 4, 6, 8}

	model := NewRidgeRegressor(1.0)
	require.NoError(t, model.Fit(rows, targets))

	// The two identical columns share the weight
	assert.InDelta(t, model.Weights[0], model.Weights[1], 1e-9)

	got, err := model.Predict([]float64{5, 5})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 0.5)
}

func TestRidgeFitValidation(t *testing.T) {
	model := NewRidgeRegressor(1.0)
	assert.ErrorIs(t, model.Fit(nil, nil), ErrEmptyLedger)
	assert.Error(t, model.Fit([][]float64{{1}}, []float64{1, 2}), "Row/target mismatch")
	assert.Error(t, model.Fit([][]float64{{1, 2}, {1}}, []float64{1, 2}), "Ragged matrix")
}
