package rinex

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
	"github.com/bkg-gnss/gnsscodec/pkg/rinex/navdb"
)

// NavDecoder reads and decodes a RINEX navigation header and its
// ephemeris messages, one at a time, driving navdb's schema table instead
// of a hardcoded per-constellation layout.
type NavDecoder struct {
	Header NavHeader

	br      *bufio.Reader
	lineNum int
	err     error

	eph Ephemeris
}

// NewNavDecoder builds a decoder and reads the header. It is the caller's
// responsibility to close the underlying reader when done.
func NewNavDecoder(r io.Reader) (*NavDecoder, error) {
	dec := &NavDecoder{br: bufio.NewReader(r)}
	hdr, err := dec.readHeader()
	dec.Header = hdr
	return dec, err
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *NavDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *NavDecoder) setErr(err error) {
	if dec.err == nil || dec.err == io.EOF {
		dec.err = err
	}
}

func (dec *NavDecoder) readLine() (string, bool) {
	line, err := dec.br.ReadString('\n')
	if err != nil && line == "" {
		dec.setErr(err)
		return "", false
	}
	dec.lineNum++
	return strings.TrimRight(line, "\r\n"), true
}

// readHeader reads a RINEX navigation header. If the stream does not
// begin with one, ErrNoHeader is returned.
func (dec *NavDecoder) readHeader() (NavHeader, error) {
	var hdr NavHeader
	for {
		line, ok := dec.readLine()
		if !ok {
			if dec.lineNum == 0 {
				return hdr, ErrNoHeader
			}
			return hdr, dec.Err()
		}
		if dec.lineNum == 1 && !strings.Contains(line, "RINEX VERSION / TYPE") {
			return hdr, ErrNoHeader
		}
		if len(line) < 61 {
			line = line + strings.Repeat(" ", 61-len(line))
		}
		val := line[:60]
		key := strings.TrimSpace(line[60:])
		hdr.Labels = append(hdr.Labels, key)

		if ok, err := parseCommonLabel(&hdr.CommonHeader, key, val, line, dec.lineNum); ok {
			if err != nil {
				return hdr, err
			}
			continue
		}

		switch key {
		case "ION ALPHA":
			coeffs := parseHeaderFloats(val)
			hdr.IonoCorrections = append(hdr.IonoCorrections, IonoCorrection{Kind: "GPSA", Coefficients: coeffs})
		case "ION BETA":
			coeffs := parseHeaderFloats(val)
			hdr.IonoCorrections = append(hdr.IonoCorrections, IonoCorrection{Kind: "GPSB", Coefficients: coeffs})
		case "DELTA-UTC: A0,A1,T,W":
			fields := strings.Fields(strings.ReplaceAll(val, "D", "E"))
			if len(fields) >= 2 {
				a0, _ := parseFloat(fields[0])
				a1, _ := parseFloat(fields[1])
				hdr.TimeSystemCorrs = append(hdr.TimeSystemCorrs, TimeSystemCorr{Kind: "GPUT", A0: a0, A1: a1})
			}
		case "CORR TO SYSTEM TIME", "D-UTC A0,A1,T,W,S,U":
			// GLONASS/BeiDou header variants, recognized but not modeled
			// beyond what "TIME SYSTEM CORR" already carries for v3+.
		case "END OF HEADER":
			return hdr, nil
		default:
			log.Printf("rinex: nav header: unhandled label %q at line %d", key, dec.lineNum)
		}
	}
}

func parseHeaderFloats(val string) []float64 {
	fields := strings.Fields(strings.ReplaceAll(val, "D", "E"))
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		if v, err := parseFloat(f); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// navDataLineOffsets are the fixed-width slots of a navigation message's
// data lines (after the epoch/clock line): four 19-character fields,
// right after a 4-character indent, identical across RINEX revisions and
// constellations.
var navDataLineOffsets = [4]int{4, 23, 42, 61}

func navLineTokens(s string) [4]string {
	var toks [4]string
	for i, off := range navDataLineOffsets {
		if len(s) <= off {
			break
		}
		end := off + 19
		if end > len(s) {
			end = len(s)
		}
		toks[i] = s[off:end]
	}
	return toks
}

// NextEphemeris reads and decodes the next broadcast message. It reports
// false at EOF or on error (check Err).
func (dec *NavDecoder) NextEphemeris() bool {
	line, ok := dec.readLine()
	if !ok {
		return false
	}
	if strings.TrimSpace(line) == "" {
		return dec.NextEphemeris()
	}

	sys := dec.satSystemOf(line)
	prn, err := strconv.Atoi(strings.TrimSpace(line[1:3]))
	if err != nil {
		dec.setErr(fmt.Errorf("rinex: nav: parse PRN at line %d: %w", dec.lineNum, err))
		return false
	}

	toc, err := time.Parse(TimeOfClockFormat, line[4:23])
	if err != nil {
		toc, err = time.Parse(TimeOfClockFormatv2, line[4:23])
		if err != nil {
			dec.setErr(fmt.Errorf("rinex: nav: parse TOC at line %d: %w", dec.lineNum, err))
			return false
		}
	}

	eph := Ephemeris{
		SV:     gnss.SV{Sys: sys, PRN: uint8(prn)},
		TOC:    toc,
		Fields: map[string]navdb.Field{},
	}
	if len(line) >= 61 {
		eph.ClockBias, _ = parseFloat(strings.ReplaceAll(line[23:42], "D", "E"))
	}
	if len(line) >= 80 {
		eph.ClockDrift, _ = parseFloat(strings.ReplaceAll(line[42:61], "D", "E"))
		eph.ClockDriftRate, _ = parseFloat(strings.ReplaceAll(line[61:80], "D", "E"))
	}

	version := int(dec.Header.RINEXVersion * 100)
	schema, ok := navdb.Lookup(sys, navdb.MsgEPH, version)
	if !ok {
		dec.setErr(fmt.Errorf("rinex: nav: no schema for %s EPH rev %d", sys, version))
		return false
	}

	nLines := (len(schema.Fields) + 3) / 4
	var tokens []string
	for i := 0; i < nLines; i++ {
		dataLine, ok := dec.readLine()
		if !ok {
			dec.setErr(fmt.Errorf("rinex: nav: truncated ephemeris at line %d: %w", dec.lineNum, dec.Err()))
			return false
		}
		toks := navLineTokens(dataLine)
		tokens = append(tokens, toks[:]...)
	}
	for i, desc := range schema.Fields {
		if desc.Kind == navdb.KindSpare {
			continue
		}
		eph.Fields[desc.Name] = navdb.Decode(desc, sys, tokens[i])
	}

	dec.eph = eph
	return true
}

// Ephemeris returns the most recently decoded message.
func (dec *NavDecoder) Ephemeris() Ephemeris { return dec.eph }

// satSystemOf derives the broadcasting constellation from an epoch line's
// leading character: a RINEX-3/4 letter prefix ("G01", "R07", ...), or
// (RINEX-2) the file's declared SatSystem for a blank prefix.
func (dec *NavDecoder) satSystemOf(line string) gnss.System {
	if sys, ok := gnss.SysPerAbbr[string(line[0])]; ok {
		return sys
	}
	if dec.Header.SatSystem != 0 {
		return dec.Header.SatSystem
	}
	return gnss.SysGPS
}
