package preprocess

import (
	"strconv"
	"strings"
	"time"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
)

// ItemKind identifies what a FilterItem constrains (§4.8).
type ItemKind int

const (
	ItemEpoch ItemKind = iota + 1
	ItemSV
	ItemConstellation
	ItemObservable
	ItemElevation
	ItemAzimuth
	ItemSNR
	ItemComplexCode
)

// FilterItem is a tagged union over the eight mask targets (§9 "Tagged
// variants": a sum type, not an inheritance hierarchy). Only the field
// matching Kind is meaningful.
type FilterItem struct {
	Kind ItemKind

	Epoch          time.Time
	SVs            []gnss.SV
	Constellations []gnss.System
	Observables    []string // RINEX observation codes, e.g. "L1C"
	Elevation      float64  // degrees
	Azimuth        float64  // degrees
	SNR            float64  // dB-Hz
	ComplexCodes   []string // free-form codes not parsed as Observables
}

// parseEpochToken parses an epoch mask value. Only the plain
// "YYYY-MM-DDTHH:MM:SS <timescale>" form is supported; the Julian-date
// "JD <days> <timescale>" form some upstream filters accept isn't
// reproduced here, since FilterItem::from_str's exact grammar for it was
// never retrieved into this pack.
func parseEpochToken(s string) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02T15:04:05", fields[0])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseTokenList splits s on commas and trims each token.
func parseTokenList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseFilterItem type-guesses the kind of a mask value that carries no
// leading sigil: an epoch, a comma-separated SV list, a comma-separated
// constellation list, or (the fallback) a comma-separated list of
// observable/complex codes.
func ParseFilterItem(s string) (FilterItem, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FilterItem{}, ErrInvalidDescriptor
	}

	if t, ok := parseEpochToken(s); ok {
		return FilterItem{Kind: ItemEpoch, Epoch: t}, nil
	}

	tokens := parseTokenList(s)
	if len(tokens) == 0 {
		return FilterItem{}, ErrInvalidDescriptor
	}

	if svs, ok := parseAllAsSV(tokens); ok {
		return FilterItem{Kind: ItemSV, SVs: svs}, nil
	}
	if systems, ok := parseAllAsConstellation(tokens); ok {
		return FilterItem{Kind: ItemConstellation, Constellations: systems}, nil
	}
	return FilterItem{Kind: ItemComplexCode, ComplexCodes: tokens}, nil
}

func parseAllAsSV(tokens []string) ([]gnss.SV, bool) {
	svs := make([]gnss.SV, 0, len(tokens))
	for _, tok := range tokens {
		sv, err := gnss.NewSV(tok)
		if err != nil {
			return nil, false
		}
		svs = append(svs, sv)
	}
	return svs, true
}

// constellationSynonyms covers long-form constellation spellings that
// neither gnss.SysPerAbbr (single RINEX letters) nor gnss.ParseSatSystems
// (GPS, GLO, GAL, QZSS, BDS, IRNSS, NAVIC, SBAS, MIXED) recognize; NAVIC
// is listed here too, though ParseSatSystems already accepts it.
var constellationSynonyms = map[string]gnss.System{
	"GLONASS": gnss.SysGLO,
	"GALILEO": gnss.SysGAL,
	"BEIDOU":  gnss.SysBDS,
	"NAVIC":   gnss.SysNavIC,
}

func parseAllAsConstellation(tokens []string) ([]gnss.System, bool) {
	systems := make([]gnss.System, 0, len(tokens))
	for _, tok := range tokens {
		upper := strings.ToUpper(tok)
		if sys, ok := gnss.SysPerAbbr[upper]; ok {
			systems = append(systems, sys)
			continue
		}
		if list, err := gnss.ParseSatSystems(upper); err == nil && len(list) == 1 {
			systems = append(systems, list[0])
			continue
		}
		if sys, ok := constellationSynonyms[upper]; ok {
			systems = append(systems, sys)
			continue
		}
		return nil, false
	}
	return systems, true
}

// parseFloatToken parses a bare numeric mask value (elevation/azimuth/SNR).
func parseFloatToken(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
