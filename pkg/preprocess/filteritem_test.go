package preprocess

import (
	"testing"
	"time"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterItemEpoch(t *testing.T) {
	item, err := ParseFilterItem("2024-01-01T00:00:00")
	require.NoError(t, err)
	assert.Equal(t, ItemEpoch, item.Kind)
	assert.True(t, item.Epoch.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseFilterItemSVList(t *testing.T) {
	item, err := ParseFilterItem("G08,G09")
	require.NoError(t, err)
	require.Equal(t, ItemSV, item.Kind)
	require.Len(t, item.SVs, 2)
}

func TestParseFilterItemConstellationList(t *testing.T) {
	item, err := ParseFilterItem("GPS,GAL")
	require.NoError(t, err)
	require.Equal(t, ItemConstellation, item.Kind)
	assert.Equal(t, []gnss.System{gnss.SysGPS, gnss.SysGAL}, item.Constellations)
}

func TestParseFilterItemConstellationSingleLetter(t *testing.T) {
	item, err := ParseFilterItem("R")
	require.NoError(t, err)
	assert.Equal(t, ItemConstellation, item.Kind)
	assert.Equal(t, []gnss.System{gnss.SysGLO}, item.Constellations)
}

func TestParseFilterItemComplexCodeFallback(t *testing.T) {
	item, err := ParseFilterItem("L1C,L2W")
	require.NoError(t, err)
	assert.Equal(t, ItemComplexCode, item.Kind)
	assert.Equal(t, []string{"L1C", "L2W"}, item.ComplexCodes)
}

func TestParseFilterItemEmpty(t *testing.T) {
	_, err := ParseFilterItem("   ")
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}
