package predict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalRows generates enough varied fixtures for a split to be meaningful
func evalRows() []RawRow {
	teams := []string{"A", "B", "C", "D"}
	var rows []RawRow
	day := 1
	for round := 0; round < 4; round++ {
		for i, home := range teams {
			for j, away := range teams {
				if i == j {
					continue
				}
				rows = append(rows, testRow(
					fmt.Sprintf("%02d/%02d/20", (day%28)+1, (day/28)+1),
					home, away,
					(i+round)%4, (j+round)%3,
				))
				day += 3
			}
		}
	}
	return rows
}

func TestEvaluateDeterministic(t *testing.T) {
	snap, err := BuildSnapshot(evalRows())
	require.NoError(t, err)

	first, err := Evaluate(snap)
	require.NoError(t, err)
	second, err := Evaluate(snap)
	require.NoError(t, err)

	assert.Equal(t, first, second, "Seeded split must reproduce identical metrics")
}

func TestEvaluateReportShape(t *testing.T) {
	snap, err := BuildSnapshot(evalRows())
	require.NoError(t, err)

	report, err := Evaluate(snap)
	require.NoError(t, err)

	total := snap.Ledger.Len()
	assert.Equal(t, total, report.TrainRows+report.TestRows)
	assert.Equal(t, int(float64(total)*Config.TestFraction), report.TestRows)

	assert.GreaterOrEqual(t, report.Home.MSE, 0.0)
	assert.GreaterOrEqual(t, report.Home.MAE, 0.0)
	assert.GreaterOrEqual(t, report.Away.MSE, 0.0)
	assert.GreaterOrEqual(t, report.ExactRate, 0.0)
	assert.LessOrEqual(t, report.ExactRate, 1.0)
}

func TestEvaluateRejectsTinyCorpus(t *testing.T) {
	snap, err := BuildSnapshot(fixtureRows())
	require.NoError(t, err)

	_, err = Evaluate(snap)
	assert.Error(t, err)
}
