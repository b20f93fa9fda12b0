package preprocess

import (
	"testing"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaskFilterEpoch(t *testing.T) {
	mf, err := ParseMaskFilter(">2024-01-01T00:00:00")
	require.NoError(t, err)
	assert.Equal(t, GreaterThan, mf.Operand)
	assert.Equal(t, ItemEpoch, mf.Item.Kind)
}

func TestParseMaskFilterEpochOperandOmittedImpliesEquals(t *testing.T) {
	mf, err := ParseMaskFilter("2024-01-01T00:00:00")
	require.NoError(t, err)
	assert.Equal(t, Equals, mf.Operand)
	assert.Equal(t, ItemEpoch, mf.Item.Kind)
}

func TestParseMaskFilterElevation(t *testing.T) {
	tests := []struct {
		desc  string
		valid bool
	}{
		{"e>1.0", true},
		{"e < 40.0", true},
		{"e>=10.0", true},
		{"e!=10.0", true},
	}
	for _, tt := range tests {
		mf, err := ParseMaskFilter(tt.desc)
		if !tt.valid {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, ItemElevation, mf.Item.Kind)
	}
}

func TestParseMaskFilterElevationValue(t *testing.T) {
	mf, err := ParseMaskFilter("e>1.0")
	require.NoError(t, err)
	assert.Equal(t, GreaterThan, mf.Operand)
	assert.InDelta(t, 1.0, mf.Item.Elevation, 1e-9)

	mf, err = ParseMaskFilter("e < 40.0")
	require.NoError(t, err)
	assert.Equal(t, LowerThan, mf.Operand)
	assert.InDelta(t, 40.0, mf.Item.Elevation, 1e-9)
}

func TestParseMaskFilterAzimuth(t *testing.T) {
	mf, err := ParseMaskFilter("a<=90.0")
	require.NoError(t, err)
	assert.Equal(t, LowerEquals, mf.Operand)
	assert.Equal(t, ItemAzimuth, mf.Item.Kind)
	assert.InDelta(t, 90.0, mf.Item.Azimuth, 1e-9)
}

func TestParseMaskFilterSNR(t *testing.T) {
	mf, err := ParseMaskFilter("snr>=30.0")
	require.NoError(t, err)
	assert.Equal(t, GreaterEquals, mf.Operand)
	assert.Equal(t, ItemSNR, mf.Item.Kind)
	assert.InDelta(t, 30.0, mf.Item.SNR, 1e-9)
}

func TestParseMaskFilterConstellation(t *testing.T) {
	mf, err := ParseMaskFilter("=GPS,GAL")
	require.NoError(t, err)
	assert.Equal(t, Equals, mf.Operand)
	assert.Equal(t, []gnss.System{gnss.SysGPS, gnss.SysGAL}, mf.Item.Constellations)

	notMf := mf.Not()
	assert.Equal(t, NotEquals, notMf.Operand)
	assert.Equal(t, mf.Item, notMf.Item)
}

func TestParseMaskFilterSV(t *testing.T) {
	mf, err := ParseMaskFilter("G08,G09")
	require.NoError(t, err)
	assert.Equal(t, Equals, mf.Operand)
	require.Len(t, mf.Item.SVs, 2)

	notMf := mf.Not()
	assert.Equal(t, NotEquals, notMf.Operand)
}

func TestParseMaskFilterComplexCode(t *testing.T) {
	mf, err := ParseMaskFilter("L1C,L2W")
	require.NoError(t, err)
	assert.Equal(t, Equals, mf.Operand)
	assert.Equal(t, ItemComplexCode, mf.Item.Kind)
	assert.Equal(t, []string{"L1C", "L2W"}, mf.Item.ComplexCodes)
}

func TestParseMaskFilterTooShort(t *testing.T) {
	_, err := ParseMaskFilter("x")
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestMaskFilterNotKeepsItem(t *testing.T) {
	mf := MaskFilter{Item: FilterItem{Kind: ItemElevation, Elevation: 10}, Operand: GreaterThan}
	notMf := mf.Not()
	assert.Equal(t, mf.Item, notMf.Item)
	assert.Equal(t, LowerThan, notMf.Operand)
}
