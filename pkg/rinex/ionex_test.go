package rinex

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIonexDecoder(t *testing.T) {
	lines := []string{
		headerLine("     1.0            IONOSPHERE MAPS     GPS                 ", "IONEX VERSION / TYPE"),
		headerLine("TEST PGM            RUNBY                                  ", "PGM / RUN BY / DATE"),
		headerLine("    -1                                                    ", "EXPONENT"),
		headerLine("   6371.0                                                 ", "BASE RADIUS"),
		headerLine("     2                                                    ", "MAP DIMENSION"),
		headerLine("   450.0 450.0   0.0                                      ", "HGT1 / HGT2 / DHGT"),
		headerLine("    87.5 -87.5  -2.5                                      ", "LAT1 / LAT2 / DLAT"),
		headerLine("  -180.0 180.0   5.0                                      ", "LON1 / LON2 / DLON"),
		headerLine("     1                                                    ", "# OF MAPS IN FILE"),
		headerLine("", "END OF HEADER"),
		"     1                                                      START OF TEC MAP",
		"  2024     1     1     0     0     0                        EPOCH OF CURRENT MAP",
		"    87.5-180.0 180.0   5.0 450.0                             LAT/LON1/LON2/DLON/H",
		"  100  101  102  103  104  105  106  107  108  109  110  111",
		"  112  113  114  115  116  117  118  119  120  121  122  123",
		"  124  125  126  127  128  129  130  131  132  133  134  135",
		"  136  137                                                  ",
		"    85.0-180.0 180.0   5.0 450.0                             LAT/LON1/LON2/DLON/H",
		" 9999 9999 9999 9999 9999 9999 9999 9999 9999 9999 9999 9999",
		" 9999 9999 9999 9999 9999 9999 9999 9999 9999 9999 9999 9999",
		" 9999 9999 9999 9999 9999 9999 9999 9999 9999 9999 9999 9999",
		" 9999 9999                                                  ",
		"     1                                                      END OF TEC MAP",
	}
	input := strings.Join(lines, "\n") + "\n"

	dec, err := NewIonexDecoder(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, -1, dec.Header.Exponent)
	assert.InDelta(t, 6371.0, dec.Header.BaseRadius, 1e-6)
	assert.Equal(t, 2, dec.Header.MapDimension)
	assert.InDelta(t, 87.5, dec.Header.Lat1, 1e-6)
	assert.InDelta(t, -87.5, dec.Header.Lat2, 1e-6)
	assert.InDelta(t, -2.5, dec.Header.DLat, 1e-6)
	assert.InDelta(t, -180.0, dec.Header.Lon1, 1e-6)
	assert.InDelta(t, 180.0, dec.Header.Lon2, 1e-6)
	assert.InDelta(t, 5.0, dec.Header.DLon, 1e-6)

	require.True(t, dec.NextMap())
	require.NoError(t, dec.Err())
	m := dec.Map()
	assert.Equal(t, "TEC", m.Kind)
	assert.Equal(t, 2024, m.Epoch.Year())
	assert.InDelta(t, 450.0, m.Height, 1e-6)
	require.Len(t, m.Values, 71)
	require.Len(t, m.Values[0], 73)
	assert.InDelta(t, 10.0, m.Values[0][0], 1e-9)
	assert.InDelta(t, 13.7, m.Values[0][37], 1e-9)
	assert.True(t, math.IsNaN(m.Values[1][0]))

	assert.False(t, dec.NextMap())
	require.NoError(t, dec.Err())
}

func TestIonexDecoder_MissingHeader(t *testing.T) {
	_, err := NewIonexDecoder(strings.NewReader("not a header\n"))
	assert.ErrorIs(t, err, ErrNoHeader)
}
