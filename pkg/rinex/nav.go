package rinex

import (
	"time"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
	"github.com/bkg-gnss/gnsscodec/pkg/rinex/navdb"
)

const (
	// TimeOfClockFormat is the time-of-clock format within RINEX-3/4 Nav
	// records, e.g. "2021  1  2 15  4  5".
	TimeOfClockFormat string = "2006  1  2 15  4  5"

	// TimeOfClockFormatv2 is the time-of-clock format within RINEX-2 Nav
	// records, e.g. " 21  1  2 15  4  5.0".
	TimeOfClockFormatv2 string = "06  1  2 15  4  5.0"
)

// NavHeader is a RINEX navigation file header (§4.6): the common fields
// plus whatever ionospheric/time-system corrections the file carries
// (those live on CommonHeader already, since RINEX declares them with the
// same labels in obs, nav and meteo headers).
type NavHeader struct {
	CommonHeader
}

// Ephemeris is one broadcast navigation message, decoded against the
// navdb schema selected for its (constellation, message type, revision).
// Keplerian constellations (GPS, Galileo, BeiDou, QZSS, NavIC) expose
// their orbital elements through Kepler; GLONASS and SBAS are state
// vectors and expose Fields directly (X/Y/Z/Vx/Vy/Vz/...).
type Ephemeris struct {
	SV  gnss.SV
	TOC time.Time

	ClockBias      float64
	ClockDrift     float64
	ClockDriftRate float64

	Fields map[string]navdb.Field
}

// Field looks up a decoded orbit field by name, reporting whether it was
// present (a broadcast field parses as absent when the source token was
// blank or the "0.000000000000E+00" sentinel).
func (e Ephemeris) Field(name string) (navdb.Field, bool) {
	f, ok := e.Fields[name]
	return f, ok && !f.Absent
}

// f64 is a small helper for Kepler() below: zero for a missing field.
func (e Ephemeris) f64(name string) float64 {
	f, ok := e.Field(name)
	if !ok {
		return 0
	}
	return f.F64
}

// Health reports the ephemeris's broadcast satellite health, if the
// schema carries one.
func (e Ephemeris) Health() (navdb.Health, bool) {
	f, ok := e.Field("Health")
	return f.Health, ok
}

// Kepler extracts the classical orbital element set from Fields, for
// navdb.Propagate. It returns ok=false for constellations broadcasting a
// state vector (GLONASS, SBAS) rather than Keplerian elements.
func (e Ephemeris) Kepler() (navdb.Kepler, bool) {
	switch e.SV.Sys {
	case gnss.SysGPS, gnss.SysGAL, gnss.SysBDS, gnss.SysQZSS, gnss.SysNavIC:
	default:
		return navdb.Kepler{}, false
	}
	return navdb.Kepler{
		Toe:      e.f64("Toe"),
		SqrtA:    e.f64("SqrtA"),
		Ecc:      e.f64("Ecc"),
		M0:       e.f64("M0"),
		Omega0:   e.f64("Omega0"),
		Omega:    e.f64("Omega"),
		OmegaDot: e.f64("OmegaDot"),
		I0:       e.f64("I0"),
		IDOT:     e.f64("IDOT"),
		DeltaN:   e.f64("DeltaN"),
		Cuc:      e.f64("Cuc"),
		Cus:      e.f64("Cus"),
		Crc:      e.f64("Crc"),
		Crs:      e.f64("Crs"),
		Cic:      e.f64("Cic"),
		Cis:      e.f64("Cis"),
		ADot:     e.f64("ADOT"),
	}, true
}

// Propagate solves the Kepler element set at transmission time t,
// adjusting tk for GNSS week rollover against TOC (used here as the
// ephemeris's time-of-ephemeris reference, per the common convention that
// broadcast Toe and Toc coincide).
func (e Ephemeris) Propagate(t time.Time) (navdb.State, error) {
	k, ok := e.Kepler()
	if !ok {
		return navdb.State{}, errUnsupportedPropagation(e.SV.Sys)
	}
	tk := t.Sub(e.TOC).Seconds()
	const halfWeek = 302400.0
	switch {
	case tk > halfWeek:
		tk -= 604800
	case tk < -halfWeek:
		tk += 604800
	}
	return navdb.Propagate(e.SV, k, tk)
}

func errUnsupportedPropagation(sys gnss.System) error {
	return &unsupportedPropagationError{sys}
}

type unsupportedPropagationError struct{ sys gnss.System }

func (e *unsupportedPropagationError) Error() string {
	return "rinex: " + e.sys.String() + " does not broadcast Keplerian elements"
}

// NavFile wraps a navigation file's path-derived metadata.
type NavFile struct {
	RnxFil
	Header NavHeader
}

// NewNavFile builds a NavFile from a path, parsing its filename following
// the RINEX-2/RINEX-3 conventions (the header itself is read separately
// via NewNavDecoder).
func NewNavFile(path string) (*NavFile, error) {
	fil, err := NewFile(path)
	if err != nil {
		return nil, err
	}
	return &NavFile{RnxFil: *fil}, nil
}
