package binex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNoSync(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x01, 0x02})
	assert.ErrorIs(t, err, ErrNoSync)
}

func TestDecodeUnsupportedFlavors(t *testing.T) {
	tests := []struct {
		name string
		sync byte
		want error
	}{
		{"little-endian standard", fwdSyncLEStandard, ErrLittleEndian},
		{"enhanced CRC", fwdSyncBEEnhanced, ErrEnhancedCRC},
		{"reversed BE standard", revSyncBEStandard, ErrReversedStream},
		{"reversed LE standard", revSyncLEStandard, ErrReversedStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := []byte{tt.sync, 0, 0, 0, 0}
			_, err := Decode(buf)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeSyncLocality(t *testing.T) {
	// Inserting arbitrary non-SYNC bytes before a well-formed message
	// does not change its decoded value (§8 "BINEX sync locality").
	rec := NewMonumentGeoRecord(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		MetaIGS, "RCVR", "ANT", "SITE34", "SITE34")
	msg := Message{MID: MIDMonumentGeo, Record: rec}
	encoded := msg.Encode(nil)

	noise := append([]byte{0x11, 0x22, 0x33}, encoded...)
	decoded, err := Decode(noise)
	require.NoError(t, err)
	assert.Equal(t, rec.Comments, decoded.Record.Comments)
	marker, ok := decoded.Record.Field(FieldMarkerName)
	require.True(t, ok)
	assert.Equal(t, "SITE34", marker)
}

func TestMessageEncodeDecodeRoundTrip(t *testing.T) {
	rec := MonumentGeoRecord{
		Epoch: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		Meta:  MetaIGS,
	}
	rec = rec.WithComment("Hello").WithClimaticInfo("ABC")

	msg := Message{MID: MIDMonumentGeo, Record: rec}
	encoded := msg.Encode(nil)
	assert.Equal(t, msg.EncodingSize(), len(encoded))
	assert.Equal(t, fwdSyncBEStandard, encoded[0])

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.True(t, decoded.BigEndian)
	assert.False(t, decoded.EnhancedCRC)
	assert.False(t, decoded.Reversed)
	assert.Equal(t, MIDMonumentGeo, decoded.MID)
	assert.Equal(t, len(encoded), decoded.ConsumedBytes)
	assert.Equal(t, []string{"Hello"}, decoded.Record.Comments)
	climatic, ok := decoded.Record.Field(FieldClimatic)
	require.True(t, ok)
	assert.Equal(t, "ABC", climatic)
}

func TestDecodeCRCMismatch(t *testing.T) {
	rec := NewMonumentGeoRecord(time.Now().UTC(), MetaIGS, "R", "A", "S", "S")
	msg := Message{MID: MIDMonumentGeo, Record: rec}
	encoded := msg.Encode(nil)
	encoded[len(encoded)-1] ^= 0xFF // corrupt the CRC byte

	_, err := Decode(encoded)
	assert.ErrorIs(t, err, ErrCRCMismatch)
}

func TestDecodeUnknownMessage(t *testing.T) {
	msg := Message{MID: 99, Record: NewMonumentGeoRecord(time.Now().UTC(), MetaIGS, "R", "A", "S", "S")}
	encoded := msg.Encode(nil)

	_, err := Decode(encoded)
	assert.ErrorIs(t, err, ErrUnknownMessage)
}
