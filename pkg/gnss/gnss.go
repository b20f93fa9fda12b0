// Package gnss contains common constants and type definitions shared by the
// format codecs: satellite systems, observables, carriers and satellite
// identifiers.
package gnss

import (
	"encoding/json"
	"fmt"
	"strings"
)

// System is a satellite system (constellation).
type System int

// Available satellite systems. SysMixed is only valid at file level, never
// attached to an individual SV.
const (
	SysGPS System = iota + 1
	SysGLO
	SysGAL
	SysQZSS
	SysBDS
	SysNavIC
	SysSBAS
	SysMixed
)

func (sys System) String() string {
	return [...]string{"", "GPS", "GLO", "GAL", "QZSS", "BDS", "IRNSS", "SBAS", "Mixed"}[sys]
}

// Abbr returns the system's single-character abbreviation used in RINEX
// satellite/observable identifiers (e.g. "G" for GPS).
func (sys System) Abbr() string {
	return [...]string{"", "G", "R", "E", "J", "C", "I", "S", "M"}[sys]
}

// MarshalJSON marshals the system as its RINEX abbreviation.
func (sys System) MarshalJSON() ([]byte, error) {
	return json.Marshal(sys.Abbr())
}

// SysPerAbbr maps a RINEX one-character system letter to a System.
var SysPerAbbr = map[string]System{
	"G": SysGPS,
	"R": SysGLO,
	"E": SysGAL,
	"J": SysQZSS,
	"C": SysBDS,
	"I": SysNavIC,
	"S": SysSBAS,
	"M": SysMixed,
}

var sysPerName = map[string]System{
	"GPS": SysGPS, "GLO": SysGLO, "GAL": SysGAL, "QZSS": SysQZSS,
	"BDS": SysBDS, "IRNSS": SysNavIC, "NAVIC": SysNavIC, "SBAS": SysSBAS, "MIXED": SysMixed,
}

// Systems is an ordered list of satellite systems.
type Systems []System

// String renders the systems joined by "+", e.g. "GPS+GLO".
func (syss Systems) String() string {
	str := make([]string, 0, len(syss))
	for _, sys := range syss {
		str = append(str, sys.String())
	}
	return strings.Join(str, "+")
}

// MarshalJSON marshals the systems as a list of RINEX abbreviations.
func (syss Systems) MarshalJSON() ([]byte, error) {
	abbrs := make([]string, 0, len(syss))
	for _, sys := range syss {
		abbrs = append(abbrs, sys.Abbr())
	}
	return json.Marshal(abbrs)
}

// ParseSatSystems parses a "+"-joined system list, e.g. "GPS+GLO+GAL".
func ParseSatSystems(s string) (Systems, error) {
	parts := strings.Split(s, "+")
	syss := make(Systems, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		sys, ok := sysPerName[p]
		if !ok {
			return nil, fmt.Errorf("gnss: invalid satellite system: %q", p)
		}
		syss = append(syss, sys)
	}
	return syss, nil
}
