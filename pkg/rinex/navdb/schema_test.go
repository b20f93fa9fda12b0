package navdb

import (
	"testing"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// msgTestKey is a scratch MsgType used only by this test, so it can't
// collide with any real schema registered by registerKeplerian/registerGlonass/
// registerSBAS in schema.go's init().
const msgTestKey = "XTEST"

func TestLookupReturnsClosestOlderRevision(t *testing.T) {
	v1 := Schema{Fields: []FieldDesc{{Name: "A", Kind: KindF64}}}
	v4 := Schema{Fields: []FieldDesc{{Name: "A", Kind: KindF64}, {Name: "B", Kind: KindF64}}}
	register(gnss.SysGPS, msgTestKey, 100, v1.Fields)
	register(gnss.SysGPS, msgTestKey, 400, v4.Fields)

	// S6: request (GPS, v4.1, msgTestKey) against a DB holding v1.0 and
	// v4.0 only -> returns v4.0.
	got, ok := Lookup(gnss.SysGPS, msgTestKey, 410)
	require.True(t, ok)
	assert.Equal(t, v4, got)

	// A target between the two registered revisions still falls back to
	// the older one.
	got, ok = Lookup(gnss.SysGPS, msgTestKey, 250)
	require.True(t, ok)
	assert.Equal(t, v1, got)

	// An exact match on the earlier revision is preferred over nothing.
	got, ok = Lookup(gnss.SysGPS, msgTestKey, 100)
	require.True(t, ok)
	assert.Equal(t, v1, got)
}

func TestLookupNoRevisionOldEnough(t *testing.T) {
	register(gnss.SysGAL, msgTestKey, 300, []FieldDesc{{Name: "A", Kind: KindF64}})

	_, ok := Lookup(gnss.SysGAL, msgTestKey, 100)
	assert.False(t, ok)
}

func TestLookupUnknownKey(t *testing.T) {
	_, ok := Lookup(gnss.SysSBAS, "NOSUCHTYPE", 999)
	assert.False(t, ok)
}
