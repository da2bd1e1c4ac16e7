package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountMapValue(t *testing.T) {
	v, err := CountMap(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	v, err = CountMap{"coal": 2}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"coal":2}`, v)
}

func TestCountMapScan(t *testing.T) {
	var m CountMap
	require.NoError(t, m.Scan([]byte(`{"iron_ore":4}`)))
	assert.Equal(t, CountMap{"iron_ore": 4}, m)

	require.NoError(t, m.Scan(nil))
	assert.Equal(t, CountMap{}, m)

	require.NoError(t, m.Scan(""))
	assert.Equal(t, CountMap{}, m)

	assert.Error(t, m.Scan(12))
	assert.Error(t, m.Scan(`{"coal":`))
}

func TestStringListRoundTrip(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var l StringList
	require.NoError(t, l.Scan(`["hand","wooden"]`))
	assert.Equal(t, StringList{"hand", "wooden"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)
}
