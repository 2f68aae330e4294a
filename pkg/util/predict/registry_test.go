package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRegistryDeterministicCodes(t *testing.T) {
	first := BuildRegistry([]string{"Chelsea", "Arsenal", "Chelsea", "Burnley", ""})
	second := BuildRegistry([]string{"Burnley", "Arsenal", "Chelsea"})

	require.Equal(t, 3, first.Len(), "Duplicates and empties should collapse")
	assert.Equal(t, first.Names(), second.Names(), "Codes must not depend on input order")

	code, err := first.Encode("Arsenal")
	require.NoError(t, err)
	assert.Equal(t, 0, code, "Sorted vocabulary assigns Arsenal the first code")

	name, err := first.Decode(2)
	require.NoError(t, err)
	assert.Equal(t, "Chelsea", name)
}

func TestRegistryRejectsUnknownNames(t *testing.T) {
	r := BuildRegistry([]string{"Arsenal", "Chelsea"})

	_, err := r.Encode("Arsnal")
	assert.ErrorIs(t, err, ErrUnknownTeam)

	_, err = r.Decode(99)
	assert.Error(t, err)

	assert.False(t, r.Contains("Arsnal"))
	assert.True(t, r.Contains("Arsenal"))
}

func TestRegistryClosest(t *testing.T) {
	r := BuildRegistry([]string{"Arsenal", "Chelsea", "Man United"})

	assert.Equal(t, "Arsenal", r.Closest("Arsnal"))
	assert.Equal(t, "Man United", r.Closest("man united"))
	assert.Equal(t, "", r.Closest("zzzzzzzzzzzz"), "Nothing plausible should yield no suggestion")
}

func TestRegistryPersistenceRoundTrip(t *testing.T) {
	setupTestDB(t)

	original := BuildRegistry([]string{"Arsenal", "Chelsea", "Burnley"})
	require.NoError(t, SaveRegistry(original))

	loaded, err := LoadRegistry()
	require.NoError(t, err)
	assert.Equal(t, original.Names(), loaded.Names())

	code, err := loaded.Encode("Burnley")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestLoadRegistrySchemaMismatch(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, Save(&TeamCode{Code: 0, Name: "Arsenal", SchemaVersion: FeatureSchemaVersion + 1}))

	_, err := LoadRegistry()
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}
