package binex

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bkg-gnss/gnsscodec/pkg/ubnxi"
)

// GeoStringFrame is one decoded textual field of a Monument/Geo record:
// a FieldID paired with its UTF-8 string payload.
type GeoStringFrame struct {
	FID    FieldID
	String string
}

// monumentMinSize is the smallest a Monument/Geo record body can be: the
// 5-byte timestamp, the 1-byte meta tag, and at least one more byte
// (mod.rs's MIN_SIZE = 5 + 1 + 1).
const monumentMinSize = 5 + 1 + 1

// MonumentGeoRecord is the Site/Monument/Marker record, MID=0 (§4.7): a
// station description carried as a timestamp, a source-metadata tag, a
// repeatable set of comments, and a set of single-valued named fields.
type MonumentGeoRecord struct {
	Epoch    time.Time
	Meta     MonumentGeoMetadata
	Comments []string
	Frames   []GeoStringFrame
}

// decodeMonumentGeoRecord parses a Monument/Geo record body of mlen bytes
// (RECORD length, CRC excluded) from buf.
func decodeMonumentGeoRecord(mlen int, buf []byte) (MonumentGeoRecord, error) {
	var rec MonumentGeoRecord

	if mlen < monumentMinSize {
		return rec, ErrNotEnoughBytes
	}
	if len(buf) < timestampSize+1 {
		return rec, ErrNotEnoughBytes
	}

	rec.Epoch = decodeTimestamp(buf[:timestampSize])
	rec.Meta = MonumentGeoMetadata(buf[timestampSize])

	ptr := timestampSize + 1
	for ptr < mlen {
		fidVal, n, err := ubnxi.Decode(buf[ptr:])
		if err != nil {
			return rec, fmt.Errorf("binex: monument: decode FID: %w", err)
		}
		fid := fieldIDFrom(fidVal)
		ptr += n

		if mlen < ptr+1 {
			break
		}
		strLen, n, err := ubnxi.Decode(buf[ptr:])
		if err != nil {
			return rec, fmt.Errorf("binex: monument: decode field length: %w", err)
		}
		ptr += n
		if ptr+int(strLen) > len(buf) {
			return rec, ErrNotEnoughBytes
		}

		raw := buf[ptr : ptr+int(strLen)]
		if utf8.Valid(raw) {
			s := string(raw)
			switch {
			case fid == FieldComment:
				rec.Comments = append(rec.Comments, s)
			case fid.unhandled():
				// recognized but not decoded (§4.7)
			case fid == FieldUnknown:
				// unrecognized FID: affected field is dropped, record
				// continues (§7 "Schema errors")
			default:
				rec.setFrame(fid, s)
			}
		}
		ptr += int(strLen)
	}

	return rec, nil
}

// encodingSize returns the number of bytes encode needs.
func (rec MonumentGeoRecord) encodingSize() int {
	size := timestampSize + 1
	for _, c := range rec.Comments {
		size += ubnxi.EncodedLen(uint32(FieldComment)) + ubnxi.EncodedLen(uint32(len(c))) + len(c)
	}
	for _, f := range rec.Frames {
		size += ubnxi.EncodedLen(uint32(f.FID)) + ubnxi.EncodedLen(uint32(len(f.String))) + len(f.String)
	}
	return size
}

// encode appends the wire encoding of rec to dst and returns the result.
// Comments are emitted first (in declaration order), then frames.
func (rec MonumentGeoRecord) encode(dst []byte) []byte {
	start := len(dst)
	dst = append(dst, make([]byte, timestampSize+1)...)
	encodeTimestamp(rec.Epoch, dst[start:start+timestampSize])
	dst[start+timestampSize] = byte(rec.Meta)

	for _, c := range rec.Comments {
		dst = ubnxi.Encode(dst, uint32(FieldComment))
		dst = ubnxi.Encode(dst, uint32(len(c)))
		dst = append(dst, c...)
	}
	for _, f := range rec.Frames {
		dst = ubnxi.Encode(dst, uint32(f.FID))
		dst = ubnxi.Encode(dst, uint32(len(f.String)))
		dst = append(dst, f.String...)
	}
	return dst
}

// setFrame stores fid=s, overwriting any existing single-valued frame
// with the same FID (last-one-wins, §4.7 "Uniqueness rule").
func (rec *MonumentGeoRecord) setFrame(fid FieldID, s string) {
	for i := range rec.Frames {
		if rec.Frames[i].FID == fid {
			rec.Frames[i].String = s
			return
		}
	}
	rec.Frames = append(rec.Frames, GeoStringFrame{FID: fid, String: s})
}

// Field returns the current value of fid and whether it is set.
func (rec MonumentGeoRecord) Field(fid FieldID) (string, bool) {
	for _, f := range rec.Frames {
		if f.FID == fid {
			return f.String, true
		}
	}
	return "", false
}

// WithComment appends a comment (repeatable).
func (rec MonumentGeoRecord) WithComment(s string) MonumentGeoRecord {
	rec.Comments = append(rec.Comments, s)
	return rec
}

// WithReceiverType sets the receiver model name.
func (rec MonumentGeoRecord) WithReceiverType(s string) MonumentGeoRecord {
	rec.setFrame(FieldReceiverType, s)
	return rec
}

// WithAntennaType sets the antenna model name.
func (rec MonumentGeoRecord) WithAntennaType(s string) MonumentGeoRecord {
	rec.setFrame(FieldAntennaType, s)
	return rec
}

// WithMarkerName sets the geodetic marker name.
func (rec MonumentGeoRecord) WithMarkerName(s string) MonumentGeoRecord {
	rec.setFrame(FieldMarkerName, s)
	return rec
}

// WithMarkerNumber sets the geodetic marker (DOMES) number.
func (rec MonumentGeoRecord) WithMarkerNumber(s string) MonumentGeoRecord {
	rec.setFrame(FieldMarkerNumber, s)
	return rec
}

// WithAgencyName sets the operating agency name.
func (rec MonumentGeoRecord) WithAgencyName(s string) MonumentGeoRecord {
	rec.setFrame(FieldAgencyName, s)
	return rec
}

// WithSiteName sets the site name.
func (rec MonumentGeoRecord) WithSiteName(s string) MonumentGeoRecord {
	rec.setFrame(FieldSiteName, s)
	return rec
}

// WithSiteLocation sets the site location.
func (rec MonumentGeoRecord) WithSiteLocation(s string) MonumentGeoRecord {
	rec.setFrame(FieldSiteLocation, s)
	return rec
}

// WithClimaticInfo sets the climatic-context field.
func (rec MonumentGeoRecord) WithClimaticInfo(s string) MonumentGeoRecord {
	rec.setFrame(FieldClimatic, s)
	return rec
}

// WithGeophysicalInfo sets the geophysical-context field.
func (rec MonumentGeoRecord) WithGeophysicalInfo(s string) MonumentGeoRecord {
	rec.setFrame(FieldGeophysical, s)
	return rec
}

// NewMonumentGeoRecord builds a record with the four fields every station
// description needs set, matching MonumentGeoRecord::new's signature.
func NewMonumentGeoRecord(epoch time.Time, meta MonumentGeoMetadata, receiverModel, antennaModel, markerName, markerNumber string) MonumentGeoRecord {
	rec := MonumentGeoRecord{Epoch: epoch, Meta: meta}
	rec.setFrame(FieldReceiverType, receiverModel)
	rec.setFrame(FieldAntennaType, antennaModel)
	rec.setFrame(FieldMarkerName, markerName)
	rec.setFrame(FieldMarkerNumber, markerNumber)
	return rec
}
