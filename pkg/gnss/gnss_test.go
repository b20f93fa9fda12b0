package gnss

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystems_MarshalJSON(t *testing.T) {
	systems := Systems{SysGAL, SysBDS}
	sysJSON, err := json.Marshal(systems)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "[\"E\",\"C\"]", string(sysJSON), "marshall gnss")
}

func TestParseSatSystems(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		want    Systems
		wantErr bool
	}{
		{name: "t1", s: "GPS+GLO+GAL+BDS+SBAS+IRNSS",
			want: Systems{SysGPS, SysGLO, SysGAL, SysBDS, SysSBAS, SysNavIC}, wantErr: false},
		{name: "t2", s: "GPS+GLO-GAL+BDS+SBAS+IRNSS", want: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSatSystems(tt.s)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSatSystems() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSatSystems() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSV(t *testing.T) {
	sv, err := NewSV("G12")
	require.NoError(t, err)
	assert.Equal(t, SV{Sys: SysGPS, PRN: 12}, sv)
	assert.Equal(t, "G12", sv.String())

	// RINEX-2 blank system letter defaults to GPS.
	sv, err = NewSV(" 3")
	require.NoError(t, err)
	assert.Equal(t, SV{Sys: SysGPS, PRN: 3}, sv)

	_, err = NewSV("Z12")
	require.Error(t, err)
}

func TestParseObservable(t *testing.T) {
	obs, err := ParseObservable("L1C")
	require.NoError(t, err)
	assert.Equal(t, KindPhase, obs.Kind)
	assert.Equal(t, Carrier{Band: 1, Attribute: "C"}, obs.Carrier)

	obs, err = ParseObservable("C2W")
	require.NoError(t, err)
	assert.Equal(t, KindPseudoRange, obs.Kind)
	assert.Equal(t, Carrier{Band: 2, Attribute: "W"}, obs.Carrier)

	obs, err = ParseObservable("TD")
	require.NoError(t, err)
	assert.Equal(t, KindTemperature, obs.Kind)
}
