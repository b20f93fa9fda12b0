package preprocess

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func epochsEvery(n int, step time.Duration) []time.Time {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * step)
	}
	return out
}

func TestDecimateModuloKeepsEveryNth(t *testing.T) {
	epochs := epochsEvery(10, time.Second)
	kept, err := Decimate(DecimationFilter{Kind: DecimationModulo, Modulo: 3}, epochs)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 6, 9}, kept)
}

func TestDecimateModuloZeroKeepsAll(t *testing.T) {
	epochs := epochsEvery(4, time.Second)
	kept, err := Decimate(DecimationFilter{Kind: DecimationModulo, Modulo: 0}, epochs)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, kept)
}

func TestDecimateDurationAlwaysKeepsFirst(t *testing.T) {
	epochs := epochsEvery(5, time.Second)
	kept, err := Decimate(DecimationFilter{Kind: DecimationDuration, Interval: 10 * time.Second}, epochs)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, kept)
}

func TestDecimateDurationKeepsAfterInterval(t *testing.T) {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	epochs := []time.Time{
		base,
		base.Add(1 * time.Second),
		base.Add(2 * time.Second),
		base.Add(3 * time.Second),
		base.Add(4 * time.Second),
	}
	kept, err := Decimate(DecimationFilter{Kind: DecimationDuration, Interval: 2 * time.Second}, epochs)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, kept)
}

func TestDecimateTargetedUnsupported(t *testing.T) {
	item := FilterItem{Kind: ItemElevation, Elevation: 10}
	_, err := Decimate(DecimationFilter{Kind: DecimationModulo, Modulo: 2, Item: &item}, nil)
	assert.ErrorIs(t, err, ErrTargetedDecimation)
}
