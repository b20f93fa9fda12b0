package navdb

import (
	"strconv"
	"strings"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
)

// absentToken is the sentinel RINEX navigation files use for a field the
// broadcasting constellation did not populate.
const absentToken = "0.000000000000E+00"

// Field is one decoded orbit value, tagged with the kind its schema
// declared so callers can switch on it without re-parsing the token.
type Field struct {
	Name   string
	Kind   FieldKind
	Absent bool

	F64       float64
	U32       uint32
	U8        uint8
	I8        int8
	Health    Health
	GloStatus GloStatus
}

// Decode parses the raw 19-character (or already-trimmed) token per the
// field's declared kind. Numeric tokens may use either 'D' or 'E' as the
// exponent marker (Fortran vs. C convention); both are normalized before
// strconv parsing, mirroring OrbitItem::new's `content.replace('D', "e")`.
func Decode(desc FieldDesc, sys gnss.System, token string) Field {
	f := Field{Name: desc.Name, Kind: desc.Kind}

	tok := strings.TrimSpace(token)
	if tok == "" || tok == absentToken {
		f.Absent = true
		return f
	}
	normalized := strings.NewReplacer("D", "E", "d", "e").Replace(tok)

	switch desc.Kind {
	case KindSpare:
		f.Absent = true
	case KindF64:
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			f.Absent = true
			return f
		}
		f.F64 = v
	case KindU32:
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			f.Absent = true
			return f
		}
		f.U32 = uint32(v)
	case KindU8:
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			f.Absent = true
			return f
		}
		f.U8 = uint8(v)
	case KindI8:
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			f.Absent = true
			return f
		}
		f.I8 = int8(v)
	case KindHealth:
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			f.Absent = true
			return f
		}
		f.Health = Health{Sys: sys, Raw: uint32(v)}
	case KindGloStatus:
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			f.Absent = true
			return f
		}
		f.GloStatus = GloStatus(uint32(v))
	}
	return f
}

// Health is a constellation-tagged satellite health/status value. Each
// constellation encodes "healthy" differently (a single flag bit, a
// multi-bit signal-component mask, ...), so Healthy dispatches on Sys
// rather than treating Raw as a single shared convention.
type Health struct {
	Sys gnss.System
	Raw uint32
}

// Healthy reports whether the broadcast health value indicates a usable
// satellite.
func (h Health) Healthy() bool {
	switch h.Sys {
	case gnss.SysGPS, gnss.SysQZSS:
		// LNAV health: 0 means all signals OK.
		return h.Raw == 0
	case gnss.SysGAL:
		// Galileo HS (health status) sub-fields: 00 = OK, nonzero is
		// degraded or marginal/will be marginal/in test.
		return h.Raw&0x3 == 0 && (h.Raw>>2)&0x3 == 0
	case gnss.SysBDS, gnss.SysNavIC:
		return h.Raw == 0
	case gnss.SysSBAS:
		return h.Raw == 0
	default:
		return h.Raw == 0
	}
}

// GloStatus is the GLONASS NAV-4 ephemeris/update status bitmask.
type GloStatus uint32

const (
	GloGroundGPSOnboardOffset  GloStatus = 0x01
	GloOnboardGPSGroundOffset  GloStatus = 0x02
	GloOnboardOffset           GloStatus = 0x03
	GloHalfHourValidity        GloStatus = 0x04
	GloThreeQuarterHourValidity GloStatus = 0x06
	GloOneHourValidity         GloStatus = 0x07
	GloOddTimeInterval         GloStatus = 0x08
	GloSat5Almanac             GloStatus = 0x10
	GloDataUpdated             GloStatus = 0x20
	GloMK                      GloStatus = 0x40
)

// Has reports whether all bits of mask are set.
func (s GloStatus) Has(mask GloStatus) bool { return s&mask == mask }
