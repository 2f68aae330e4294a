package predict

import (
	"fmt"
	"math"
)

// Scaler standardizes feature columns to zero mean and unit variance.
// Columns with no spread are passed through unscaled so that constant
// features cannot blow up a query vector
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler learns per-column mean and standard deviation from the
// training matrix
func FitScaler(rows [][]float64) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyLedger
	}
	cols := len(rows[0])
	s := &Scaler{
		Mean:  make([]float64, cols),
		Scale: make([]float64, cols),
	}
	for _, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged training matrix: got %d columns, want %d", len(row), cols)
		}
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	n := float64(len(rows))
	for j := range s.Mean {
		s.Mean[j] /= n
	}
	for _, row := range rows {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Scale[j] += d * d
		}
	}
	for j := range s.Scale {
		s.Scale[j] = math.Sqrt(s.Scale[j] / n)
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
	return s, nil
}

// Transform returns a standardized copy of the vector
func (s *Scaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("vector has %d columns, scaler fitted on %d", len(row), len(s.Mean))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}

// RidgeRegressor is a linear least-squares model with L2 regularization,
// solved in closed form via the normal equations. The intercept column is
// not penalized
type RidgeRegressor struct {
	Lambda    float64   `json:"lambda"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// NewRidgeRegressor creates an unfitted regressor with the given
// regularization strength
func NewRidgeRegressor(lambda float64) *RidgeRegressor {
	return &RidgeRegressor{Lambda: lambda}
}

// Fit solves (X'X + lambda*I) w = X'y on the standardized matrix. X must be
// non-empty and rectangular
func (r *RidgeRegressor) Fit(rows [][]float64, targets []float64) error {
	if len(rows) == 0 {
		return ErrEmptyLedger
	}
	if len(rows) != len(targets) {
		return fmt.Errorf("have %d rows but %d targets", len(rows), len(targets))
	}
	cols := len(rows[0])
	// Augment with an intercept column so one solve covers both
	dim := cols + 1

	xtx := make([][]float64, dim)
	for i := range xtx {
		xtx[i] = make([]float64, dim)
	}
	xty := make([]float64, dim)

	for i, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("ragged training matrix: got %d columns, want %d", len(row), cols)
		}
		for a := 0; a < dim; a++ {
			xa := 1.0
			if a < cols {
				xa = row[a]
			}
			xty[a] += xa * targets[i]
			for b := a; b < dim; b++ {
				xb := 1.0
				if b < cols {
					xb = row[b]
				}
				xtx[a][b] += xa * xb
			}
		}
	}
	for a := 0; a < dim; a++ {
		for b := 0; b < a; b++ {
			xtx[a][b] = xtx[b][a]
		}
	}
	for a := 0; a < cols; a++ {
		xtx[a][a] += r.Lambda
	}

	solution, err := solveLinearSystem(xtx, xty)
	if err != nil {
		return err
	}
	r.Weights = solution[:cols]
	r.Intercept = solution[cols]
	return nil
}

// Predict returns the fitted linear combination for one standardized vector
func (r *RidgeRegressor) Predict(row []float64) (float64, error) {
	if len(row) != len(r.Weights) {
		return 0, fmt.Errorf("vector has %d columns, model fitted on %d", len(row), len(r.Weights))
	}
	sum := r.Intercept
	for j, v := range row {
		sum += r.Weights[j] * v
	}
	return sum, nil
}

// solveLinearSystem runs Gaussian elimination with partial pivoting on a
// dense square system. The matrix is modified in place
func solveLinearSystem(m [][]float64, rhs []float64) ([]float64, error) {
	n := len(m)
	for col := 0; col < n; col++ {
		pivot := col
		best := math.Abs(m[col][col])
		for row := col + 1; row < n; row++ {
			if v := math.Abs(m[row][col]); v > best {
				best = v
				pivot = row
			}
		}
		if best < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		if pivot != col {
			m[col], m[pivot] = m[pivot], m[col]
			rhs[col], rhs[pivot] = rhs[pivot], rhs[col]
		}
		for row := col + 1; row < n; row++ {
			factor := m[row][col] / m[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k < n; k++ {
				m[row][k] -= factor * m[col][k]
			}
			rhs[row] -= factor * rhs[col]
		}
	}
	solution := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := rhs[row]
		for k := row + 1; k < n; k++ {
			sum -= m[row][k] * solution[k]
		}
		solution[row] = sum / m[row][row]
	}
	return solution, nil
}
