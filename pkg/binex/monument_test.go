package binex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonumentGeoRecordEncodeDecodeRoundTrip(t *testing.T) {
	rec := MonumentGeoRecord{
		Epoch: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		Meta:  MetaIGS,
	}
	rec = rec.WithComment("Hello").WithClimaticInfo("ABC")

	buf := rec.encode(nil)
	assert.Equal(t, rec.encodingSize(), len(buf))

	decoded, err := decodeMonumentGeoRecord(len(buf), buf)
	require.NoError(t, err)
	assert.True(t, decoded.Epoch.Equal(rec.Epoch))
	assert.Equal(t, MetaIGS, decoded.Meta)
	assert.Equal(t, []string{"Hello"}, decoded.Comments)
	climatic, ok := decoded.Field(FieldClimatic)
	require.True(t, ok)
	assert.Equal(t, "ABC", climatic)
}

func TestMonumentGeoRecordDoubleComments(t *testing.T) {
	rec := MonumentGeoRecord{Epoch: time.Now().UTC(), Meta: MetaIGS}
	rec = rec.WithComment("A B C").WithComment("D E F")

	buf := rec.encode(nil)
	decoded, err := decodeMonumentGeoRecord(len(buf), buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"A B C", "D E F"}, decoded.Comments)
}

func TestMonumentGeoRecordLastFieldWins(t *testing.T) {
	rec := MonumentGeoRecord{Epoch: time.Now().UTC()}
	rec = rec.WithSiteName("first")
	rec = rec.WithSiteName("second")
	require.Len(t, rec.Frames, 1)

	buf := rec.encode(nil)
	decoded, err := decodeMonumentGeoRecord(len(buf), buf)
	require.NoError(t, err)
	name, ok := decoded.Field(FieldSiteName)
	require.True(t, ok)
	assert.Equal(t, "second", name)
}

func TestMonumentGeoRecordTooShort(t *testing.T) {
	_, err := decodeMonumentGeoRecord(4, []byte{0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrNotEnoughBytes)
}

func TestNewMonumentGeoRecord(t *testing.T) {
	rec := NewMonumentGeoRecord(time.Now().UTC(), MetaRNX2BIN, "RCVR", "ANT", "SITE34", "SITE34")
	recv, ok := rec.Field(FieldReceiverType)
	require.True(t, ok)
	assert.Equal(t, "RCVR", recv)
	marker, ok := rec.Field(FieldMarkerName)
	require.True(t, ok)
	assert.Equal(t, "SITE34", marker)
}
