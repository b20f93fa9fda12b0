// Package navdb is a compile-time schema database for RINEX navigation
// orbit messages. de-bkg/gognss's own decoder
// (pkg/rinex.EphGPS.unmarshal) hardcodes the GPS LNAV field layout and
// stubs out every other constellation; this package generalizes that one
// complete layout into a table keyed by (constellation, message type,
// revision) so a single decoder loop can drive all of them.
package navdb

import "github.com/bkg-gnss/gnsscodec/pkg/gnss"

// FieldKind tags how a raw Fortran-style token decodes, mirroring the
// OrbitItem type-kind taxonomy (u8/i8/u32/f64/health/gloStatus).
type FieldKind int

const (
	KindF64 FieldKind = iota
	KindU32
	KindU8
	KindI8
	KindSpare     // reserved slot; parsed but not exposed under a field name
	KindHealth    // constellation-specific health/status bitfield
	KindGloStatus // GLONASS NAV-4 ephemeris/update status bitmask
)

// FieldDesc names one slot among the 19-character fields following a
// navigation message's epoch/clock line.
type FieldDesc struct {
	Name string
	Kind FieldKind
}

// MsgType identifies the broadcast message a schema describes. "EPH" is
// the classical/Keplerian or state-vector ephemeris; the others are the
// non-ephemeris navigation records RINEX also carries.
const (
	MsgEPH = "EPH"
	MsgSTO = "STO" // system time offset
	MsgEOP = "EOP" // earth orientation parameters
	MsgION = "ION" // ionosphere model
)

type schemaKey struct {
	Sys     gnss.System
	MsgType string
	Version int // revision * 100, e.g. 304 for v3.04; schemas apply to any target >= Version
}

// Schema is the ordered field list following a message's epoch/clock line,
// read four fields (one 80- or 61-character data line) at a time.
type Schema struct {
	Fields []FieldDesc
}

var schemas = map[schemaKey]Schema{}

func register(sys gnss.System, msgType string, version int, fields []FieldDesc) {
	schemas[schemaKey{sys, msgType, version}] = Schema{Fields: fields}
}

// Lookup finds the schema for (sys, msgType) with the highest version not
// exceeding target: "given the target (C, V_target, M), find the highest
// V <= V_target with matching (C, M)". This absorbs RINEX revision drift
// (a field added in 3.05 still decodes 2.xx-era files under the 2.xx
// schema) while preferring an explicit match when one was registered for
// the target revision itself.
func Lookup(sys gnss.System, msgType string, target int) (Schema, bool) {
	best := -1
	var found Schema
	for k, s := range schemas {
		if k.Sys != sys || k.MsgType != msgType || k.Version > target {
			continue
		}
		if k.Version > best {
			best = k.Version
			found = s
		}
	}
	return found, best >= 0
}

func init() {
	registerKeplerian()
	registerGlonass()
	registerSBAS()
}

// registerKeplerian wires GPS, Galileo, BeiDou, QZSS and NavIC/IRNSS: all
// five broadcast a classical Keplerian ephemeris in the same 7-data-line
// shape EphGPS.unmarshal decodes, with per-constellation field-name
// differences (e.g. BDS's AODC/AODE issue-of-data instead of GPS's
// IODE/IODC, Galileo's BGD pair instead of GPS's single TGD) folded in
// at version 0 so every target revision resolves to it.
func registerKeplerian() {
	gps := []FieldDesc{
		{"IODE", KindU32}, {"Crs", KindF64}, {"DeltaN", KindF64}, {"M0", KindF64},
		{"Cuc", KindF64}, {"Ecc", KindF64}, {"Cus", KindF64}, {"SqrtA", KindF64},
		{"Toe", KindF64}, {"Cic", KindF64}, {"Omega0", KindF64}, {"Cis", KindF64},
		{"I0", KindF64}, {"Crc", KindF64}, {"Omega", KindF64}, {"OmegaDot", KindF64},
		{"IDOT", KindF64}, {"L2Codes", KindU8}, {"ToeWeek", KindF64}, {"L2PFlag", KindU8},
		{"URA", KindF64}, {"Health", KindHealth}, {"TGD", KindF64}, {"IODC", KindU32},
		{"Tom", KindF64}, {"FitInterval", KindF64}, {"Spare1", KindSpare}, {"Spare2", KindSpare},
	}
	register(gnss.SysGPS, MsgEPH, 0, gps)
	register(gnss.SysQZSS, MsgEPH, 0, gps)

	// RINEX 4 CNAV adds ADOT (semi-major-axis rate) and DeltaNDot; model
	// that as a distinct, higher-versioned schema so Lookup's
	// closest-older-revision rule falls back to the plain LNAV layout for
	// older files and only picks this up for CNAV-era targets.
	gpsCNAV := append(append([]FieldDesc{}, gps[:len(gps)-2]...),
		FieldDesc{"ADOT", KindF64}, FieldDesc{"DeltaNDot", KindF64})
	register(gnss.SysGPS, MsgEPH, 400, gpsCNAV)

	gal := []FieldDesc{
		{"IODNav", KindU32}, {"Crs", KindF64}, {"DeltaN", KindF64}, {"M0", KindF64},
		{"Cuc", KindF64}, {"Ecc", KindF64}, {"Cus", KindF64}, {"SqrtA", KindF64},
		{"Toe", KindF64}, {"Cic", KindF64}, {"Omega0", KindF64}, {"Cis", KindF64},
		{"I0", KindF64}, {"Crc", KindF64}, {"Omega", KindF64}, {"OmegaDot", KindF64},
		{"IDOT", KindF64}, {"DataSources", KindU32}, {"ToeWeek", KindF64}, {"Spare1", KindSpare},
		{"SISA", KindF64}, {"Health", KindHealth}, {"BGDE5a", KindF64}, {"BGDE5b", KindF64},
		{"TransmissionTime", KindF64}, {"Spare2", KindSpare}, {"Spare3", KindSpare}, {"Spare4", KindSpare},
	}
	register(gnss.SysGAL, MsgEPH, 0, gal)

	bds := []FieldDesc{
		{"AODE", KindU32}, {"Crs", KindF64}, {"DeltaN", KindF64}, {"M0", KindF64},
		{"Cuc", KindF64}, {"Ecc", KindF64}, {"Cus", KindF64}, {"SqrtA", KindF64},
		{"Toe", KindF64}, {"Cic", KindF64}, {"Omega0", KindF64}, {"Cis", KindF64},
		{"I0", KindF64}, {"Crc", KindF64}, {"Omega", KindF64}, {"OmegaDot", KindF64},
		{"IDOT", KindF64}, {"Spare1", KindSpare}, {"ToeWeek", KindF64}, {"Spare2", KindSpare},
		{"URA", KindF64}, {"Health", KindHealth}, {"TGD1", KindF64}, {"TGD2", KindF64},
		{"TransmissionTime", KindF64}, {"AODC", KindU32}, {"Spare3", KindSpare}, {"Spare4", KindSpare},
	}
	register(gnss.SysBDS, MsgEPH, 0, bds)

	irnss := []FieldDesc{
		{"IODEC", KindU32}, {"Crs", KindF64}, {"DeltaN", KindF64}, {"M0", KindF64},
		{"Cuc", KindF64}, {"Ecc", KindF64}, {"Cus", KindF64}, {"SqrtA", KindF64},
		{"Toe", KindF64}, {"Cic", KindF64}, {"Omega0", KindF64}, {"Cis", KindF64},
		{"I0", KindF64}, {"Crc", KindF64}, {"Omega", KindF64}, {"OmegaDot", KindF64},
		{"IDOT", KindF64}, {"Spare1", KindSpare}, {"ToeWeek", KindF64}, {"Spare2", KindSpare},
		{"URA", KindF64}, {"Health", KindHealth}, {"TGD", KindF64}, {"Spare3", KindSpare},
		{"TransmissionTime", KindF64}, {"Spare4", KindSpare}, {"Spare5", KindSpare}, {"Spare6", KindSpare},
	}
	register(gnss.SysNavIC, MsgEPH, 0, irnss)
}

// registerGlonass wires the GLONASS state-vector message: position,
// velocity and lunisolar acceleration in PZ-90, not classical orbital
// elements, so it gets its own 3-data-line shape rather than sharing
// registerKeplerian's 7-line one.
func registerGlonass() {
	base := []FieldDesc{
		{"X", KindF64}, {"Vx", KindF64}, {"Ax", KindF64}, {"Health", KindHealth},
		{"Y", KindF64}, {"Vy", KindF64}, {"Ay", KindF64}, {"FreqNum", KindI8},
		{"Z", KindF64}, {"Vz", KindF64}, {"Az", KindF64}, {"AgeOfInfo", KindF64},
	}
	register(gnss.SysGLO, MsgEPH, 0, base)

	// RINEX 3.05/4 added a fourth data line carrying the NAV-4
	// ephemeris/update status mask and additional URA/delta terms.
	withStatus := append(append([]FieldDesc{}, base...),
		FieldDesc{"StatusFlags", KindGloStatus}, FieldDesc{"Spare1", KindSpare},
		FieldDesc{"URA", KindF64}, FieldDesc{"Spare2", KindSpare})
	register(gnss.SysGLO, MsgEPH, 305, withStatus)
}

// registerSBAS wires the SBAS geostationary ephemeris: also a state
// vector, in ECEF rather than PZ-90, with IODN instead of a frequency
// number.
func registerSBAS() {
	register(gnss.SysSBAS, MsgEPH, 0, []FieldDesc{
		{"X", KindF64}, {"Vx", KindF64}, {"Ax", KindF64}, {"Health", KindHealth},
		{"Y", KindF64}, {"Vy", KindF64}, {"Ay", KindF64}, {"URA", KindF64},
		{"Z", KindF64}, {"Vz", KindF64}, {"Az", KindF64}, {"IODN", KindU32},
	})
}
