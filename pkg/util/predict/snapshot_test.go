package predict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuildPublishesOnSuccess(t *testing.T) {
	ledger, err := Ingest(fixtureRows())
	require.NoError(t, err)

	holder := &SnapshotHolder{}
	assert.Nil(t, holder.Load(), "No snapshot before the first rebuild")

	snap, err := holder.Rebuild(func() ([]*Match, error) { return ledger.Rows(), nil })
	require.NoError(t, err)
	assert.Same(t, snap, holder.Load(), "A successful rebuild publishes its snapshot")
	assert.Equal(t, 3, snap.Ledger.Len())
}

func TestRebuildKeepsPreviousOnFailure(t *testing.T) {
	ledger, err := Ingest(fixtureRows())
	require.NoError(t, err)

	holder := &SnapshotHolder{}
	previous, err := holder.Rebuild(func() ([]*Match, error) { return ledger.Rows(), nil })
	require.NoError(t, err)

	// A failing loader must not disturb the serving snapshot
	_, err = holder.Rebuild(func() ([]*Match, error) { return nil, fmt.Errorf("disk gone") })
	require.Error(t, err)
	assert.Same(t, previous, holder.Load())

	// So must a loader that yields no usable rows
	_, err = holder.Rebuild(func() ([]*Match, error) { return nil, nil })
	require.ErrorIs(t, err, ErrEmptyLedger)
	assert.Same(t, previous, holder.Load())
}

func TestRefreshSnapshotFromPersistedLedger(t *testing.T) {
	setupTestDB(t)

	ledger, err := Ingest(fixtureRows())
	require.NoError(t, err)
	require.NoError(t, SaveMatches(ledger.Rows()))

	svc := &PredictionService{snapshot: &SnapshotHolder{}}
	snap, err := svc.RefreshSnapshot()
	require.NoError(t, err)
	assert.Same(t, snap, svc.Snapshot())
	assert.Equal(t, []string{"A", "B", "C"}, snap.Registry.Names())
}
