package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAsInteger(t *testing.T) {
	v, err := GetAsInteger(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = GetAsInteger(7.0)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = GetAsInteger(7.5)
	assert.Error(t, err)
	_, err = GetAsInteger("x")
	assert.Error(t, err)
	_, err = GetAsInteger(nil)
	assert.Error(t, err)
}

func TestGetAsFloat(t *testing.T) {
	v, err := GetAsFloat("2.5")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, v, 1e-9)

	v, err = GetAsFloat(3)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-9)

	_, err = GetAsFloat("x")
	assert.Error(t, err)
}

func TestGetAsString(t *testing.T) {
	s, err := GetAsString(42)
	require.NoError(t, err)
	assert.Equal(t, "42", s)

	s, err = GetAsString(true)
	require.NoError(t, err)
	assert.Equal(t, "true", s)

	_, err = GetAsString(nil)
	assert.Error(t, err)
}

func TestFuzzyMatchScore(t *testing.T) {
	assert.InDelta(t, 1.0, FuzzyMatchScore("Arsenal", "arsenal"), 1e-9)
	assert.Greater(t, FuzzyMatchScore("Arsenal", "Arsnal"), 0.5)
	assert.Less(t, FuzzyMatchScore("Arsenal", "zzzzzzzz"), 0.3)
}
