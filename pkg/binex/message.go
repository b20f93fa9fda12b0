package binex

import (
	"fmt"

	"github.com/bkg-gnss/gnsscodec/pkg/ubnxi"
)

// MessageID selects the kind of record a BINEX message carries (§4.7
// "Record dispatch"). MID=0 (Monument/Geo) is the only one fully decoded;
// every other value is recognized only far enough to report
// ErrUnknownMessage.
type MessageID uint32

// MIDMonumentGeo is the Site/Monument/Marker record's message ID.
const MIDMonumentGeo MessageID = 0

// Message is one decoded BINEX message: its framing flavor plus its
// record payload.
type Message struct {
	BigEndian   bool
	EnhancedCRC bool
	Reversed    bool

	MID    MessageID
	Record MonumentGeoRecord

	// ConsumedBytes is the number of input bytes Decode consumed,
	// counted from the start of buf (including any bytes skipped
	// before the SYNC byte). A caller scanning a longer stream slices
	// buf[ConsumedBytes:] to resume.
	ConsumedBytes int
}

// Decode locates the next BINEX message in buf, verifies its flavor and
// CRC, and decodes its record. Only the forward/big-endian/standard-CRC
// flavor is decoded to completion; the other seven flavors are detected
// and rejected with a dedicated error (§4.7 "Framing").
func Decode(buf []byte) (Message, error) {
	offset, flavor, found := locateSync(buf)
	if !found {
		return Message{}, ErrNoSync
	}
	if err := flavor.unsupported(); err != nil {
		return Message{ConsumedBytes: offset + 1}, err
	}

	if len(buf)-offset < 4 {
		return Message{}, ErrNotEnoughBytes
	}
	body := buf[offset+1:]

	mid, n, err := ubnxi.Decode(body)
	if err != nil {
		return Message{}, fmt.Errorf("binex: decode MID: %w", err)
	}
	ptr := n

	mlen, n, err := ubnxi.Decode(body[ptr:])
	if err != nil {
		return Message{}, fmt.Errorf("binex: decode MLEN: %w", err)
	}
	ptr += n

	if len(body)-ptr < int(mlen) {
		return Message{}, ErrNotEnoughBytes
	}
	recordBuf := body[ptr : ptr+int(mlen)]

	// CRC: one trailing byte (standard), computed over SYNC..last-record-byte.
	crcInput := buf[offset : offset+1+ptr+int(mlen)-1]
	wantCRC := recordBuf[len(recordBuf)-1]
	if crc8(crcInput) != wantCRC {
		return Message{}, ErrCRCMismatch
	}
	recordLen := len(recordBuf) - 1 // MLEN counts RECORD plus the CRC byte

	msg := Message{
		BigEndian:     flavor.bigEndian,
		EnhancedCRC:   flavor.enhancedCRC,
		Reversed:      flavor.reversed,
		MID:           MessageID(mid),
		ConsumedBytes: offset + 1 + ptr + int(mlen),
	}

	switch msg.MID {
	case MIDMonumentGeo:
		rec, err := decodeMonumentGeoRecord(recordLen, recordBuf[:recordLen])
		if err != nil {
			return Message{}, err
		}
		msg.Record = rec
	default:
		return Message{}, ErrUnknownMessage
	}

	return msg, nil
}

// EncodingSize returns the total number of bytes Encode needs for a
// Monument/Geo message: bnxi(MID) + bnxi(record_len+1) + record_len + 2
// (SYNC + CRC). The MLEN field is sized over record_len+1 because MLEN
// counts the CRC byte as well as the record.
func (msg Message) EncodingSize() int {
	recLen := msg.Record.encodingSize()
	return ubnxi.EncodedLen(uint32(msg.MID)) + ubnxi.EncodedLen(uint32(recLen+1)) + recLen + 2
}

// Encode appends the forward/big-endian/standard-CRC encoding of msg to
// dst and returns the result. Only that flavor can be produced; msg's
// BigEndian/EnhancedCRC/Reversed fields are ignored on encode, matching
// the fact that encoding an unsupported flavor was never implemented
// upstream either.
func (msg Message) Encode(dst []byte) []byte {
	start := len(dst)
	dst = append(dst, fwdSyncBEStandard)
	dst = ubnxi.Encode(dst, uint32(msg.MID))

	recLen := msg.Record.encodingSize()
	dst = ubnxi.Encode(dst, uint32(recLen+1)) // +1: CRC byte counted in MLEN

	dst = msg.Record.encode(dst)

	crc := crc8(dst[start:])
	dst = append(dst, crc)
	return dst
}
