package ubnxi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		want    uint32
		wantN   int
		wantErr bool
	}{
		{name: "1 byte", buf: []byte{0x7a}, want: 0x7a, wantN: 1},
		{name: "3 bytes", buf: []byte{0x83, 0x84, 0x7a}, want: 0x7a0403, wantN: 3},
		{name: "4 bytes terminal", buf: []byte{0x81, 0x81, 0x81, 0x01}, want: 0x01010101, wantN: 4},
		{name: "truncated continuation", buf: []byte{0x83}, wantErr: true},
		{name: "empty", buf: []byte{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode(tt.buf)
			if tt.wantErr {
				require.Error(t, err)
				assert.Zero(t, got)
				assert.Zero(t, n)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantN, n)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// Bits 7, 15 and 23 are structurally unrepresentable (see EncodedLen)
	// so round-trip fixtures avoid setting them.
	values := []uint32{0, 1, 0x7f, 0x100, 0x7f7f, 0x10000, 0x7f7f7f, 0x1000000, 0xff7f7f7f}
	for _, v := range values {
		buf := Encode(nil, v)
		assert.LessOrEqual(t, len(buf), MaxLen)
		got, n, err := Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf), n)
	}
}

func TestEncodedLen(t *testing.T) {
	assert.Equal(t, 1, EncodedLen(0x7a))
	assert.Equal(t, 3, EncodedLen(0x7a0403))
	assert.Equal(t, 4, EncodedLen(0xffffffff))
}
