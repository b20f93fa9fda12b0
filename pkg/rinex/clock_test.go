package rinex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockDecoder(t *testing.T) {
	lines := []string{
		headerLine("     3.04           CLOCK DATA          ", "RINEX VERSION / TYPE"),
		headerLine("TEST PGM            RUNBY                                  ", "PGM / RUN BY / DATE"),
		headerLine("   GPS", "TIME SYSTEM ID"),
		headerLine("BKG", "ANALYSIS CENTER"),
		headerLine("", "END OF HEADER"),
		"AR TEST 2021  1  1  0  0  0.000000  2   -1.234567890123E-07 1.000000000000E-11 2.000000000000E-12 3.000000000000E-13",
	}
	input := strings.Join(lines, "\n") + "\n"

	dec, err := NewClockDecoder(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "GPS", dec.Header.TimeSystemID)
	assert.Equal(t, "BKG", dec.Header.AC)

	require.True(t, dec.NextRecord())
	require.NoError(t, dec.Err())
	rec := dec.Record()
	assert.Equal(t, ClockRecAR, rec.Type)
	assert.Equal(t, "TEST", rec.Name)
	require.Len(t, rec.Values, 2)
	assert.InDelta(t, -1.234567890123e-07, rec.Values[0], 1e-18)
	require.Len(t, rec.Sigmas, 2)
	assert.InDelta(t, 2e-12, rec.Sigmas[0], 1e-20)

	assert.False(t, dec.NextRecord())
	require.NoError(t, dec.Err())
}
