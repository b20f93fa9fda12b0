package rinex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetDecoder(t *testing.T) {
	sensorModTypeAcc := "VAISALA PTB220      " +
		"PRESSURE            " +
		"         0.10" +
		"    " +
		"PR" +
		" "
	sensorPos := "       123.456" +
		"       234.567" +
		"       345.678" +
		"  " +
		"       1.234" +
		" " +
		"PR" +
		" "

	lines := []string{
		headerLine("     3.04           METEOROLOGICAL DATA                      ", "RINEX VERSION / TYPE"),
		headerLine("TEST PGM            RUNBY                                    ", "PGM / RUN BY / DATE"),
		headerLine("TEST STATION", "MARKER NAME"),
		headerLine("     3    PR    TD    HR", "# / TYPES OF OBSERV"),
		headerLine(sensorModTypeAcc, "SENSOR MOD/TYPE/ACC"),
		headerLine(sensorPos, "SENSOR POS XYZ/H"),
		headerLine("", "END OF HEADER"),
		" 2021  1  1 00  0  0 1000.0   20.5   50.0",
	}
	input := strings.Join(lines, "\n") + "\n"

	dec, err := NewMetDecoder(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, dec.Header.ObsTypes, 3)
	assert.Equal(t, "PR", dec.Header.ObsTypes[0].Code)
	assert.Equal(t, "TD", dec.Header.ObsTypes[1].Code)
	assert.Equal(t, "HR", dec.Header.ObsTypes[2].Code)

	require.Len(t, dec.Header.Sensors, 1)
	sens := dec.Header.Sensors[0]
	assert.Equal(t, "VAISALA PTB220", sens.Model)
	assert.Equal(t, "PRESSURE", sens.Type)
	assert.InDelta(t, 0.10, sens.Accuracy, 1e-9)
	assert.InDelta(t, 123.456, sens.Position.X, 1e-6)
	assert.InDelta(t, 234.567, sens.Position.Y, 1e-6)
	assert.InDelta(t, 345.678, sens.Position.Z, 1e-6)
	assert.InDelta(t, 1.234, sens.Height, 1e-6)

	require.True(t, dec.NextEpoch())
	require.NoError(t, dec.Err())
	epo := dec.Epoch()
	require.Len(t, epo.Obs, 3)
	assert.InDelta(t, 1000.0, epo.Obs[0], 1e-6)
	assert.InDelta(t, 20.5, epo.Obs[1], 1e-6)
	assert.InDelta(t, 50.0, epo.Obs[2], 1e-6)

	assert.False(t, dec.NextEpoch())
	require.NoError(t, dec.Err())
}

func TestMetDecoder_MissingHeader(t *testing.T) {
	_, err := NewMetDecoder(strings.NewReader("not a header\n"))
	assert.ErrorIs(t, err, ErrNoHeader)
}
