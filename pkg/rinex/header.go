package rinex

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
)

// validate is a package-level validator instance; per the library's own
// guidance it caches struct metadata and should be reused, not
// re-constructed per call.
var validate = validator.New()

// ECEF is a position in the Earth-Centered-Earth-Fixed frame, meters.
type ECEF struct {
	X, Y, Z float64
}

// CrinexMarker records the "CRINEX VERS / TYPE" and "CRINEX PROG / DATE"
// header lines identifying a Hatanaka-compressed observation stream.
type CrinexMarker struct {
	VersionMajor int
	VersionMinor int
	Program      string
	Date         time.Time
}

// IonoCorrection is one "IONOSPHERIC CORR" header entry: a Klobuchar
// (GPSA/GPSB), Galileo NeQuick-G (GAL), or BeiDou BDGIM coefficient set.
type IonoCorrection struct {
	Kind         string // "GPSA", "GPSB", "GAL", "QZSA", "QZSB", "BDGIM", "IRNA", "IRNB"
	Coefficients []float64
}

// TimeSystemCorr is one "TIME SYSTEM CORR" header entry (e.g. GPUT, GAUT,
// GPGA), giving the polynomial coefficients relating two timescales.
type TimeSystemCorr struct {
	Kind     string // e.g. "GPUT", "GLUT", "GAUT", "GPGA", "GAGP", "QZGP"
	A0, A1   float64
	RefTime  int64
	RefWeek  int
}

// CompensationDescriptor names the program/source applied for a DCB or PCV
// correction (header lines "SYS / DCBS APPLIED", "SYS / PCVS APPLIED").
type CompensationDescriptor struct {
	System  gnss.System
	Program string
	Source  string
}

// CommonHeader carries the header fields shared by every RINEX record type
// (§4.4): identification, site/receiver/antenna metadata, comments and the
// optional CRINEX marker.
type CommonHeader struct {
	RINEXVersion float32  `validate:"required"`
	RINEXType    string   `validate:"required,len=1"`
	SatSystem    gnss.System

	Pgm    string
	RunBy  string
	Date   time.Time

	Comments []string
	Labels   []string

	MarkerName   string
	MarkerNumber string
	MarkerType   string

	Observer string
	Agency   string

	ReceiverNumber  string
	ReceiverType    string
	ReceiverVersion string

	AntennaNumber string
	AntennaType   string
	Position      ECEF
	AntennaDelta  struct{ Up, E, N float64 }

	LeapSeconds int

	IonoCorrections  []IonoCorrection
	TimeSystemCorrs  []TimeSystemCorr
	DCBCompensations []CompensationDescriptor
	PCVCompensations []CompensationDescriptor

	Crinex *CrinexMarker
}

// Validate checks the header against its `validate` struct tags.
func (h *CommonHeader) Validate() error {
	return validate.Struct(h)
}

// parseCommonLabel handles the header labels shared by every record type.
// It reports whether the label was recognized (and thus consumed).
func parseCommonLabel(h *CommonHeader, key string, val string, line string, lineNum int) (bool, error) {
	switch key {
	case "RINEX VERSION / TYPE":
		v, err := strconv.ParseFloat(strings.TrimSpace(val[:20]), 32)
		if err != nil {
			return true, fmt.Errorf("parse RINEX VERSION: %w", err)
		}
		h.RINEXVersion = float32(v)
		h.RINEXType = strings.TrimSpace(val[20:21])
		if len(val) > 40 {
			if sys, ok := gnss.SysPerAbbr[strings.TrimSpace(val[40:41])]; ok {
				h.SatSystem = sys
			}
		}
	case "CRINEX VERS / TYPE":
		fields := strings.Fields(val)
		if len(fields) < 1 {
			return true, fmt.Errorf("parse %q: no version field", key)
		}
		parts := strings.SplitN(fields[0], ".", 2)
		major, _ := strconv.Atoi(parts[0])
		minor := 0
		if len(parts) > 1 {
			minor, _ = strconv.Atoi(parts[1])
		}
		h.Crinex = &CrinexMarker{VersionMajor: major, VersionMinor: minor}
	case "CRINEX PROG / DATE":
		if h.Crinex == nil {
			h.Crinex = &CrinexMarker{}
		}
		h.Crinex.Program = strings.TrimSpace(val[:20])
		if d, err := parseHeaderDate(strings.TrimSpace(val[20:])); err == nil {
			h.Crinex.Date = d
		}
	case "PGM / RUN BY / DATE":
		h.Pgm = strings.TrimSpace(val[:20])
		h.RunBy = strings.TrimSpace(val[20:40])
		if d, err := parseHeaderDate(strings.TrimSpace(val[40:])); err == nil {
			h.Date = d
		}
	case "COMMENT":
		h.Comments = append(h.Comments, strings.TrimSpace(val))
	case "MARKER NAME":
		h.MarkerName = strings.TrimSpace(val)
	case "MARKER NUMBER":
		h.MarkerNumber = strings.TrimSpace(val[:20])
	case "MARKER TYPE":
		h.MarkerType = strings.TrimSpace(val[:20])
	case "OBSERVER / AGENCY":
		h.Observer = strings.TrimSpace(val[:20])
		h.Agency = strings.TrimSpace(val[20:])
	case "REC # / TYPE / VERS":
		h.ReceiverNumber = strings.TrimSpace(val[:20])
		h.ReceiverType = strings.TrimSpace(val[20:40])
		h.ReceiverVersion = strings.TrimSpace(val[40:])
	case "ANT # / TYPE":
		h.AntennaNumber = strings.TrimSpace(val[:20])
		h.AntennaType = strings.TrimSpace(val[20:40])
	case "APPROX POSITION XYZ":
		pos := strings.Fields(val)
		if len(pos) != 3 {
			return true, fmt.Errorf("parse approx. position from line: %s", line)
		}
		h.Position.X, _ = parseFloat(pos[0])
		h.Position.Y, _ = parseFloat(pos[1])
		h.Position.Z, _ = parseFloat(pos[2])
	case "ANTENNA: DELTA H/E/N":
		ecc := strings.Fields(val)
		if len(ecc) != 3 {
			return true, fmt.Errorf("parse antenna deltas from line: %s", line)
		}
		h.AntennaDelta.Up, _ = parseFloat(ecc[0])
		h.AntennaDelta.E, _ = parseFloat(ecc[1])
		h.AntennaDelta.N, _ = parseFloat(ecc[2])
	case "LEAP SECONDS":
		n, err := strconv.Atoi(strings.TrimSpace(val[:6]))
		if err != nil {
			return true, fmt.Errorf("parse %q: %w", key, err)
		}
		h.LeapSeconds = n
	case "IONOSPHERIC CORR":
		kind := strings.TrimSpace(val[:4])
		fields := strings.Fields(val[5:])
		coeffs := make([]float64, 0, len(fields))
		for _, f := range fields {
			c, err := parseFloat(strings.ReplaceAll(f, "D", "E"))
			if err == nil {
				coeffs = append(coeffs, c)
			}
		}
		h.IonoCorrections = append(h.IonoCorrections, IonoCorrection{Kind: kind, Coefficients: coeffs})
	case "TIME SYSTEM CORR":
		kind := strings.TrimSpace(val[:4])
		a0, _ := parseFloat(strings.ReplaceAll(val[5:22], "D", "E"))
		a1, _ := parseFloat(strings.ReplaceAll(val[22:38], "D", "E"))
		refTime, _ := strconv.ParseInt(strings.TrimSpace(val[38:45]), 10, 64)
		refWeek, _ := strconv.Atoi(strings.TrimSpace(val[45:50]))
		h.TimeSystemCorrs = append(h.TimeSystemCorrs, TimeSystemCorr{
			Kind: kind, A0: a0, A1: a1, RefTime: refTime, RefWeek: refWeek,
		})
	case "SYS / DCBS APPLIED":
		sys, ok := gnss.SysPerAbbr[strings.TrimSpace(val[:1])]
		if !ok {
			return true, nil
		}
		h.DCBCompensations = append(h.DCBCompensations, CompensationDescriptor{
			System: sys, Program: strings.TrimSpace(val[2:19]), Source: strings.TrimSpace(val[20:]),
		})
	case "SYS / PCVS APPLIED":
		sys, ok := gnss.SysPerAbbr[strings.TrimSpace(val[:1])]
		if !ok {
			return true, nil
		}
		h.PCVCompensations = append(h.PCVCompensations, CompensationDescriptor{
			System: sys, Program: strings.TrimSpace(val[2:19]), Source: strings.TrimSpace(val[20:]),
		})
	default:
		return false, nil
	}
	return true, nil
}

// parseHeaderDate parses the free-form date field of "PGM / RUN BY / DATE"
// and "CRINEX PROG / DATE", trying the handful of formats actually seen in
// the wild (RINEX does not mandate a single one).
func parseHeaderDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		"20060102 150405 MST",
		"20060102 150405 UTC",
		"02-Jan-06 15:04",
		"02-Jan-06 15:04:05",
		"2006-01-02 15:04:05",
		"20060102",
	}
	var firstErr error
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		} else if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("rinex: parse header date %q: %w", s, firstErr)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
