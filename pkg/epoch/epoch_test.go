package epoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpoch_DeltaTo(t *testing.T) {
	t0 := New(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), GPST)
	t1 := New(time.Date(2023, 1, 1, 0, 0, 30, 0, time.UTC), GPST)
	assert.Equal(t, 30*time.Second, t0.DeltaTo(t1))
}

func TestEpoch_ConvertTo(t *testing.T) {
	g := New(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), GPST)

	tai, err := g.ConvertTo(TAI)
	require.NoError(t, err)
	assert.Equal(t, TAI, tai.Scale)
	assert.Equal(t, 19*time.Second, g.Time.Sub(tai.Time)*-1)

	back, err := tai.ConvertTo(GPST)
	require.NoError(t, err)
	assert.True(t, back.Time.Equal(g.Time))

	same, err := g.ConvertTo(GPST)
	require.NoError(t, err)
	assert.Equal(t, g, same)

	_, err = g.ConvertTo(UTC)
	require.Error(t, err, "UTC conversion requires a leap-second table, which is out of scope")
}

func TestDeriveFromSystem(t *testing.T) {
	ts, err := DeriveFromSystem("G")
	require.NoError(t, err)
	assert.Equal(t, GPST, ts)

	ts, err = DeriveFromSystem("R")
	require.NoError(t, err)
	assert.Equal(t, GLONASST, ts)

	_, err = DeriveFromSystem("X")
	require.Error(t, err)
}
