// Package binex decodes BINEX messages: a self-synchronizing binary wire
// format with eight SYNC markers encoding (direction, endianness, CRC
// strength), wrapping a UBNXI-framed MID/MLEN/record/CRC envelope (§4.7).
//
// Only the forward, big-endian, standard-CRC flavor is fully decoded. The
// other seven are recognized -- so a caller learns which flavor it hit --
// and then rejected with a dedicated error, mirroring the upstream
// decoder's own TODO for those cases.
package binex

import (
	"errors"
)

// SYNC byte values, one per (direction, endianness, CRC strength)
// combination (§6.5). Only fwdSyncBEStandard is ever fully decoded.
const (
	fwdSyncBEStandard byte = 0xC2
	fwdSyncLEStandard byte = 0xE2
	fwdSyncBEEnhanced byte = 0xD2
	fwdSyncLEEnhanced byte = 0xF2
	revSyncBEStandard byte = 0xC8
	revSyncLEStandard byte = 0xE8
	revSyncBEEnhanced byte = 0xD8
	revSyncLEEnhanced byte = 0xF8
)

// Errors returned by Decode. They name a kind (§7 "Framing errors"), not a
// specific offset -- a caller that wants to resume scanning for the next
// SYNC byte after a framing error is free to do so.
var (
	ErrNoSync         = errors.New("binex: no SYNC byte found")
	ErrNotEnoughBytes = errors.New("binex: not enough bytes")
	ErrReversedStream = errors.New("binex: reversed streams are not supported")
	ErrEnhancedCRC    = errors.New("binex: enhanced CRC is not supported")
	ErrLittleEndian   = errors.New("binex: little-endian streams are not supported")
	ErrUnknownMessage = errors.New("binex: unknown or unsupported message ID")
	ErrCRCMismatch    = errors.New("binex: CRC checksum mismatch")
)

// locateSync scans buf for the first byte matching any of the eight SYNC
// values and reports its offset, the flavor it belongs to, and whether one
// was found at all.
func locateSync(buf []byte) (offset int, flavor syncFlavor, found bool) {
	for i, b := range buf {
		switch b {
		case fwdSyncBEStandard:
			return i, syncFlavor{bigEndian: true}, true
		case fwdSyncLEStandard:
			return i, syncFlavor{bigEndian: false}, true
		case fwdSyncBEEnhanced:
			return i, syncFlavor{bigEndian: true, enhancedCRC: true}, true
		case fwdSyncLEEnhanced:
			return i, syncFlavor{bigEndian: false, enhancedCRC: true}, true
		case revSyncBEStandard:
			return i, syncFlavor{bigEndian: true, reversed: true}, true
		case revSyncLEStandard:
			return i, syncFlavor{bigEndian: false, reversed: true}, true
		case revSyncBEEnhanced:
			return i, syncFlavor{bigEndian: true, enhancedCRC: true, reversed: true}, true
		case revSyncLEEnhanced:
			return i, syncFlavor{bigEndian: false, enhancedCRC: true, reversed: true}, true
		}
	}
	return 0, syncFlavor{}, false
}

// syncFlavor is the triple of flavor bits a SYNC byte simultaneously
// encodes.
type syncFlavor struct {
	bigEndian   bool
	enhancedCRC bool
	reversed    bool
}

// unsupported returns the dedicated error for the first unsupported trait
// this flavor carries, checked in the same order the upstream decoder
// checks them: reversed, then enhanced CRC, then little-endian.
func (f syncFlavor) unsupported() error {
	switch {
	case f.reversed:
		return ErrReversedStream
	case f.enhancedCRC:
		return ErrEnhancedCRC
	case !f.bigEndian:
		return ErrLittleEndian
	default:
		return nil
	}
}
