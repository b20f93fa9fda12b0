package navdb

import (
	"testing"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gpsLikeKepler is a plausible, roughly-circular MEO element set (not tied
// to any particular broadcast almanac) used to exercise Propagate's unit
// conversion and GEO/non-GEO branching.
func gpsLikeKepler() Kepler {
	return Kepler{
		Toe:      86400,
		SqrtA:    5153.7,
		Ecc:      0.01,
		M0:       0.5,
		Omega0:   1.0,
		Omega:    0.3,
		OmegaDot: -8e-9,
		I0:       0.95,
		IDOT:     1e-10,
		DeltaN:   4e-9,
	}
}

func TestPropagateReturnsKilometers(t *testing.T) {
	st, err := Propagate(gnss.SV{Sys: gnss.SysGPS, PRN: 1}, gpsLikeKepler(), 0)
	require.NoError(t, err)

	// A GPS MEO orbit radius is close to 26,600 km; in meters that would
	// be in the tens of millions, so this distinguishes the two units
	// unambiguously.
	r := st.X*st.X + st.Y*st.Y + st.Z*st.Z
	assert.Greater(t, r, 20000.0*20000.0)
	assert.Less(t, r, 30000.0*30000.0)
}

func TestPropagateBeidouGEOTakesSeparateRotation(t *testing.T) {
	k := gpsLikeKepler()

	meo, err := Propagate(gnss.SV{Sys: gnss.SysBDS, PRN: 20}, k, 100)
	require.NoError(t, err)

	geo, err := Propagate(gnss.SV{Sys: gnss.SysBDS, PRN: 3}, k, 100)
	require.NoError(t, err)

	assert.NotEqual(t, meo, geo)
}

func TestIsBeidouGEO(t *testing.T) {
	assert.True(t, isBeidouGEO(1))
	assert.True(t, isBeidouGEO(5))
	assert.False(t, isBeidouGEO(6))
	assert.False(t, isBeidouGEO(58))
	assert.True(t, isBeidouGEO(59))
	assert.True(t, isBeidouGEO(63))
}
