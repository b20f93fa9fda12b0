package rinex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bkg-gnss/gnsscodec/pkg/epoch"
	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
	"github.com/bkg-gnss/gnsscodec/pkg/hatanaka"
)

// v3EpochPattern matches a RINEX-3/4 "> " epoch line.
var v3EpochPattern = regexp.MustCompile(
	`^>\s*(\d{4})\s+(\d{1,2})\s+(\d{1,2})\s+(\d{1,2})\s+(\d{1,2})\s+(\d{1,2}(?:\.\d+)?)\s*(\d)\s*(\d+)`)

// ObsDecoder reads and decodes header and epoch records from a RINEX
// observation stream (§4.4, §4.5). CRINEX (Hatanaka-compressed) streams are
// recognized from the header's "CRINEX VERS / TYPE" marker and piped
// through a hatanaka.Decompressor transparently; callers see only plain
// ObsRecord values regardless of the wire format.
type ObsDecoder struct {
	Header ObsHeader

	br      *bufio.Reader
	lineNum int
	err     error

	crinex *hatanaka.Decompressor

	rec ObsRecord
}

// NewObsDecoder builds a decoder for a RINEX or CRINEX observation stream,
// reading and validating the header immediately.
func NewObsDecoder(r io.Reader) (*ObsDecoder, error) {
	dec := &ObsDecoder{br: bufio.NewReader(r)}
	dec.Header, dec.err = dec.readHeader()
	if dec.err != nil {
		return dec, dec.err
	}
	if dec.err = dec.Header.Validate(); dec.err != nil {
		return dec, dec.err
	}
	if dec.Header.Crinex != nil {
		scale, err := epoch.DeriveFromSystem(dec.Header.SatSystem.Abbr())
		if err != nil {
			scale = epoch.GPST
		}
		interval := time.Duration(dec.Header.Interval * float64(time.Second))
		dec.crinex = hatanaka.NewDecompressor(dec.br, dec.Header.ObsTypes, scale, interval)
	}
	return dec, nil
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *ObsDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

// Record returns the most recently decoded observation epoch.
func (dec *ObsDecoder) Record() ObsRecord { return dec.rec }

func (dec *ObsDecoder) setErr(err error) { dec.err = errors.Join(dec.err, err) }

func (dec *ObsDecoder) readLine() (string, bool) {
	line, err := dec.br.ReadString('\n')
	if line == "" && err != nil {
		if err != io.EOF {
			dec.setErr(err)
		}
		return "", false
	}
	dec.lineNum++
	return strings.TrimRight(line, "\r\n"), true
}

func (dec *ObsHeader) obsTypesFor(sys gnss.System) []gnss.Observable { return dec.ObsTypes[sys] }

// timeScaleFromToken maps the explicit 3-letter timescale token printed in
// "TIME OF FIRST/LAST OBS" (e.g. "GPS", "GLO", "GAL", "BDT", "QZS") to a
// TimeScale, defaulting to GPST when the field is blank (RINEX-2 files
// predating the explicit declaration).
func timeScaleFromToken(tok string) epoch.TimeScale {
	switch tok {
	case "GPS":
		return epoch.GPST
	case "GLO":
		return epoch.GLONASST
	case "GAL":
		return epoch.GST
	case "BDT", "BDS":
		return epoch.BDT
	case "QZS":
		return epoch.QZSST
	case "IRN":
		return epoch.IRNSST
	case "UTC":
		return epoch.UTC
	default:
		return epoch.GPST
	}
}

func (dec *ObsDecoder) readHeader() (ObsHeader, error) {
	var hdr ObsHeader
	hdr.ObsTypes = map[gnss.System][]gnss.Observable{}
	var rememberSys gnss.System

	for {
		line, ok := dec.readLine()
		if !ok {
			return hdr, ErrNoHeader
		}
		if dec.lineNum == 1 && !strings.Contains(line, "RINEX VERS") && !strings.Contains(line, "CRINEX VERS") {
			return hdr, ErrNoHeader
		}
		if len(line) < 61 {
			if strings.TrimSpace(line) == "" {
				continue
			}
			// Short lines can still legally carry a label with no payload.
			line = line + strings.Repeat(" ", 61-len(line))
		}
		val := line[:60]
		key := strings.TrimSpace(line[60:])
		hdr.Labels = append(hdr.Labels, key)

		if handled, err := parseCommonLabel(&hdr.CommonHeader, key, val, line, dec.lineNum); handled {
			if err != nil {
				return hdr, err
			}
			continue
		}

		switch key {
		case "SYS / # / OBS TYPES":
			var sys gnss.System
			if val[:1] == " " {
				sys = rememberSys
			} else {
				var ok bool
				if sys, ok = gnss.SysPerAbbr[val[:1]]; !ok {
					return hdr, fmt.Errorf("read header: invalid satellite system %q: line %d", val[:1], dec.lineNum)
				}
				rememberSys = sys
				n, err := strconv.Atoi(strings.TrimSpace(val[3:6]))
				if err != nil {
					return hdr, fmt.Errorf("parse %q: %w", key, err)
				}
				hdr.ObsTypes[sys] = make([]gnss.Observable, 0, n)
			}
			for _, code := range strings.Fields(val[7:]) {
				o, err := gnss.ParseObservable(code)
				if err != nil {
					log.Printf("rinex: %v", err)
					continue
				}
				hdr.ObsTypes[sys] = append(hdr.ObsTypes[sys], o)
			}
		case "# / TYPES OF OBSERV":
			sys := hdr.SatSystem
			if strings.TrimSpace(val[:6]) != "" {
				n, err := strconv.Atoi(strings.TrimSpace(val[:6]))
				if err != nil {
					return hdr, fmt.Errorf("parse %q: %w", key, err)
				}
				hdr.ObsTypes[sys] = make([]gnss.Observable, 0, n)
			}
			for _, code := range strings.Fields(val[6:]) {
				o, err := gnss.ParseObservable(code)
				if err != nil {
					log.Printf("rinex: %v", err)
					continue
				}
				hdr.ObsTypes[sys] = append(hdr.ObsTypes[sys], o)
			}
		case "SIGNAL STRENGTH UNIT":
			hdr.SignalStrengthUnit = strings.TrimSpace(val[:20])
		case "INTERVAL":
			if f, err := parseFloat(val); err == nil {
				hdr.Interval = f
			}
		case "TIME OF FIRST OBS":
			t, err := time.Parse(epochTimeFormat, strings.TrimSpace(val[:43]))
			if err != nil {
				return hdr, fmt.Errorf("parse %q: %w", key, err)
			}
			hdr.TimeOfFirstObs = epoch.New(t, timeScaleFromToken(strings.TrimSpace(val[48:51])))
		case "TIME OF LAST OBS":
			t, err := time.Parse(epochTimeFormat, strings.TrimSpace(val[:43]))
			if err != nil {
				return hdr, fmt.Errorf("parse %q: %w", key, err)
			}
			hdr.TimeOfLastObs = epoch.New(t, timeScaleFromToken(strings.TrimSpace(val[48:51])))
		case "# OF SATELLITES":
			if n, err := strconv.Atoi(strings.TrimSpace(val[:6])); err == nil {
				hdr.NSatellites = n
			}
		case "WAVELENGTH FACT L1/2", "RCV CLOCK OFFS APPL",
			"SYS / PHASE SHIFT", "SYS / PHASE SHIFTS",
			"GLONASS SLOT / FRQ #", "GLONASS COD/PHS/BIS",
			"PRN / # OF OBS":
			// Recognized but not modeled; preserved only via Labels.
		case "END OF HEADER":
			return hdr, nil
		default:
			log.Printf("rinex: header field %q not handled", key)
		}
	}
}

// Next decodes the next observation epoch. It returns false at EOF or on a
// fatal error (see Err).
func (dec *ObsDecoder) Next() bool {
	if dec.crinex != nil {
		if !dec.crinex.Next() {
			if err := dec.crinex.Err(); err != nil {
				dec.setErr(err)
			}
			return false
		}
		r := dec.crinex.Record()
		dec.rec = ObsRecord{Epoch: r.Epoch, Flag: r.Flag, ClockOffset: r.ClockOffset, Observations: make([]SignalObservation, len(r.Observations))}
		for i, o := range r.Observations {
			dec.rec.Observations[i] = SignalObservation{SV: o.SV, Observable: o.Observable, Value: o.Value, LLI: o.LLI, SNR: o.SNR}
		}
		return true
	}
	return dec.nextPlain()
}

func (dec *ObsDecoder) nextPlain() bool {
	for {
		line, ok := dec.readLine()
		if !ok {
			return false
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		isV3 := strings.HasPrefix(line, ">")
		var ts time.Time
		var flag gnss.Flag
		var n int
		var svs []gnss.SV // pre-known for v2; nil (filled per body line) for v3
		var clockTok string
		var err error

		if isV3 {
			ts, flag, n, err = parseV3EpochLine(line)
		} else {
			ts, flag, svs, clockTok, err = parseV2EpochLine(line)
			n = len(svs)
		}
		if err != nil {
			dec.setErr(fmt.Errorf("rinex: line %d: %w", dec.lineNum, err))
			return false
		}

		scale, _ := epoch.DeriveFromSystem(dec.Header.SatSystem.Abbr())
		ep := epoch.New(ts, scale)
		var clockOffset *float64
		if strings.TrimSpace(clockTok) != "" {
			if v, err := parseFloat(clockTok); err == nil {
				clockOffset = &v
			}
		}

		obs := make([]SignalObservation, 0, n*4)
		for i := 0; i < n; i++ {
			bodyLine, ok := dec.readLine()
			if !ok {
				dec.setErr(fmt.Errorf("rinex: unexpected EOF reading observation body line"))
				return false
			}

			var sv gnss.SV
			if isV3 {
				if len(bodyLine) < 3 {
					dec.setErr(fmt.Errorf("rinex: short v3 body line: %q", bodyLine))
					return false
				}
				sv, err = gnss.NewSV(bodyLine[:3])
				if err != nil {
					dec.setErr(fmt.Errorf("rinex: %w", err))
					return false
				}
				bodyLine = bodyLine[3:]
			} else {
				sv = svs[i]
			}

			for j, o := range dec.Header.obsTypesFor(sv.Sys) {
				start := j * 16
				if start+14 > len(bodyLine) {
					continue
				}
				field := bodyLine[start : start+14]
				v, perr := parseFloat(field)
				if perr != nil {
					continue
				}
				so := SignalObservation{SV: sv, Observable: o, Value: v}
				if start+15 <= len(bodyLine) && bodyLine[start+14] != ' ' {
					so.LLI = int8(bodyLine[start+14] - '0')
				}
				if start+16 <= len(bodyLine) && bodyLine[start+15] != ' ' {
					so.SNR = gnss.SNRIndicator(bodyLine[start+15] - '0')
				}
				obs = append(obs, so)
			}
		}

		dec.rec = ObsRecord{Epoch: ep, Flag: flag, ClockOffset: clockOffset, Observations: obs}
		return true
	}
}

func parseV3EpochLine(line string) (time.Time, gnss.Flag, int, error) {
	m := v3EpochPattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, 0, 0, fmt.Errorf("malformed v3 epoch line: %q", line)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	secF, _ := strconv.ParseFloat(m[6], 64)
	sec := int(secF)
	nsec := int((secF - float64(sec)) * 1e9)
	ts := time.Date(year, time.Month(month), day, hour, minute, sec, nsec, time.UTC)
	flagN, _ := strconv.Atoi(m[7])
	n, err := strconv.Atoi(m[8])
	if err != nil {
		return time.Time{}, 0, 0, fmt.Errorf("parse SV count: %w", err)
	}
	return ts, gnss.Flag(flagN), n, nil
}

func parseV2EpochLine(line string) (time.Time, gnss.Flag, []gnss.SV, string, error) {
	if len(line) < 26 {
		return time.Time{}, 0, nil, "", fmt.Errorf("malformed v2 epoch line: %q", line)
	}
	fields := strings.Fields(line[:26])
	if len(fields) < 6 {
		return time.Time{}, 0, nil, "", fmt.Errorf("malformed v2 epoch line: %q", line)
	}
	year, _ := strconv.Atoi(fields[0])
	if year < 80 {
		year += 2000
	} else if year < 100 {
		year += 1900
	}
	month, _ := strconv.Atoi(fields[1])
	day, _ := strconv.Atoi(fields[2])
	hour, _ := strconv.Atoi(fields[3])
	minute, _ := strconv.Atoi(fields[4])
	secF, _ := strconv.ParseFloat(fields[5], 64)
	sec := int(secF)
	nsec := int((secF - float64(sec)) * 1e9)
	ts := time.Date(year, time.Month(month), day, hour, minute, sec, nsec, time.UTC)

	flagN, _ := strconv.Atoi(strings.TrimSpace(line[26:29]))
	nStr := strings.TrimSpace(line[29:32])
	n, err := strconv.Atoi(nStr)
	if err != nil {
		return time.Time{}, 0, nil, "", fmt.Errorf("parse SV count: %w", err)
	}
	svs := make([]gnss.SV, 0, n)
	pos := 32
	for i := 0; i < n && pos+3 <= len(line); i++ {
		tok := line[pos : pos+3]
		sv, err := gnss.NewSV(tok)
		if err != nil {
			return time.Time{}, 0, nil, "", fmt.Errorf("parse SV token: %w", err)
		}
		svs = append(svs, sv)
		pos += 3
	}
	clockTok := ""
	if pos < len(line) {
		clockTok = strings.TrimSpace(line[pos:])
	}
	return ts, gnss.Flag(flagN), svs, clockTok, nil
}
