package gnss

import (
	"fmt"
	"strconv"
	"strings"
)

// SV identifies a single satellite vehicle by constellation and PRN.
type SV struct {
	Sys System
	PRN uint8
}

// NewSV parses a 3-character RINEX satellite token, e.g. "G12", "R01".
// A blank system letter (RINEX-2 GPS-only files) defaults to GPS.
func NewSV(tok string) (SV, error) {
	if len(tok) < 2 {
		return SV{}, fmt.Errorf("gnss: invalid SV token: %q", tok)
	}
	abbr := tok[:1]
	numStr := tok[1:]
	sys := SysGPS
	if abbr != " " {
		var ok bool
		sys, ok = SysPerAbbr[abbr]
		if !ok {
			return SV{}, fmt.Errorf("gnss: invalid satellite system: %q", abbr)
		}
	}
	n, err := strconv.Atoi(strings.TrimSpace(numStr))
	if err != nil {
		return SV{}, fmt.Errorf("gnss: parse PRN: %q: %w", tok, err)
	}
	if n < 0 || n > 255 {
		return SV{}, fmt.Errorf("gnss: PRN out of range: %d", n)
	}
	return SV{Sys: sys, PRN: uint8(n)}, nil
}

// String formats the SV as a 3-character RINEX token, e.g. "G12".
func (sv SV) String() string {
	return fmt.Sprintf("%s%02d", sv.Sys.Abbr(), sv.PRN)
}

// BySV implements sort.Interface ordering SVs by their string form.
type BySV []SV

func (b BySV) Len() int      { return len(b) }
func (b BySV) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b BySV) Less(i, j int) bool {
	return b[i].String() < b[j].String()
}
