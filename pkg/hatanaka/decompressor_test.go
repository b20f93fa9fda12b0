package hatanaka

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkg-gnss/gnsscodec/pkg/epoch"
	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
)

func TestDecompressor_BasicEpochs(t *testing.T) {
	l1c, err := gnss.ParseObservable("L1C")
	require.NoError(t, err)
	c1c, err := gnss.ParseObservable("C1C")
	require.NoError(t, err)

	observables := map[gnss.System][]gnss.Observable{
		gnss.SysGPS: {l1c, c1c},
	}

	seed1 := int64(123456789)
	seed2 := int64(987654321)
	v1Next := seed1 + 1000
	v2Next := seed2 - 2000

	// Drive independent kernels the way a real encoder would, to produce
	// the compressed tokens the decompressor must recover back to
	// v1Next/v2Next.
	k1 := NewKernel(7)
	require.NoError(t, k1.Init(5, NumValue(seed1)))
	diff1, err := k1.Compress(NumValue(v1Next))
	require.NoError(t, err)

	k2 := NewKernel(7)
	require.NoError(t, k2.Init(5, NumValue(seed2)))
	diff2, err := k2.Compress(NumValue(v2Next))
	require.NoError(t, err)

	line1Plain := " 23  1  1  0  0 00.0000000  0  1G01"
	line2Plain := " 23  1  1  0  0 30.0000000  0  1G01"
	hk := NewKernel(7)
	require.NoError(t, hk.Init(5, TextValue(line1Plain)))
	mask, err := hk.Compress(TextValue(line2Plain))
	require.NoError(t, err)

	input := strings.Join([]string{
		"&" + line1Plain,
		"&5" + strconv.FormatInt(seed1, 10) + " &5" + strconv.FormatInt(seed2, 10),
		mask.Text,
		strconv.FormatInt(diff1.Num, 10) + " " + strconv.FormatInt(diff2.Num, 10),
	}, "\n")

	dec := NewDecompressor(strings.NewReader(input), observables, epoch.GPST, 30*time.Second)

	require.True(t, dec.Next())
	require.NoError(t, dec.Err())
	rec := dec.Record()
	assert.True(t, rec.Epoch.Time.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.Len(t, rec.Observations, 2)
	assert.InDelta(t, float64(seed1)*1e-3, rec.Observations[0].Value, 1e-9)
	assert.InDelta(t, float64(seed2)*1e-3, rec.Observations[1].Value, 1e-9)

	require.True(t, dec.Next())
	require.NoError(t, dec.Err())
	rec2 := dec.Record()
	assert.True(t, rec2.Epoch.Time.Equal(time.Date(2023, 1, 1, 0, 0, 30, 0, time.UTC)))
	require.Len(t, rec2.Observations, 2)
	assert.InDelta(t, float64(v1Next)*1e-3, rec2.Observations[0].Value, 1e-9)
	assert.InDelta(t, float64(v2Next)*1e-3, rec2.Observations[1].Value, 1e-9)

	assert.False(t, dec.Next())
	require.NoError(t, dec.Err())
}

func TestDecompressor_MissingObservationIsDropped(t *testing.T) {
	l1c, err := gnss.ParseObservable("L1C")
	require.NoError(t, err)
	observables := map[gnss.System][]gnss.Observable{gnss.SysGPS: {l1c}}

	input := strings.Join([]string{
		"& 23  1  1  0  0  0.0000000  0  1G01",
		"",
	}, "\n") + "\n"

	dec := NewDecompressor(strings.NewReader(input), observables, epoch.GPST, 0)
	require.True(t, dec.Next())
	require.NoError(t, dec.Err())
	assert.Empty(t, dec.Record().Observations)
}
