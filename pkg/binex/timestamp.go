package binex

import (
	"encoding/binary"
	"time"
)

// gpstEpoch is BINEX's time origin for the Monument/Geo record's 5-byte
// timestamp field (§4.7): GPS Time zero, 1980-01-06T00:00:00 UTC.
var gpstEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// timestampSize is the byte width of the Monument/Geo record's timestamp
// field: a 4-byte whole-second count since gpstEpoch plus a 1-byte
// quarter-second fraction (mod.rs documents the field as "4 byte date
// uint4 + 1 byte qsec" without giving the exact byte layout -- the
// upstream encoder delegates to a hifitime-based time.rs module this pack
// does not retrieve, so the whole-seconds/quarter-seconds split below is
// this port's own consistent reading of that comment, not a byte-for-byte
// reproduction).
const timestampSize = 5

// encodeTimestamp writes t (interpreted as GPST) into buf[:5].
func encodeTimestamp(t time.Time, buf []byte) {
	elapsed := t.Sub(gpstEpoch)
	wholeSeconds := uint32(elapsed / time.Second)
	frac := elapsed % time.Second
	quarter := byte(frac / (250 * time.Millisecond))
	binary.BigEndian.PutUint32(buf, wholeSeconds)
	buf[4] = quarter
}

// decodeTimestamp reads a 5-byte GPST timestamp from buf[:5].
func decodeTimestamp(buf []byte) time.Time {
	wholeSeconds := binary.BigEndian.Uint32(buf[:4])
	quarter := buf[4]
	d := time.Duration(wholeSeconds)*time.Second + time.Duration(quarter)*250*time.Millisecond
	return gpstEpoch.Add(d)
}
