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
)

// DOMESTrackingPoint is the tracking-point type letter of a DOMES number
// ("M" monument, "S" instrument).
type DOMESTrackingPoint int

const (
	DOMESUnknown DOMESTrackingPoint = iota
	DOMESMonument
	DOMESInstrument
)

// DOMES is a parsed IERS DOMES number ("AAAASTNNNNN": 3-digit area, 2-digit
// site sequence at that area, tracking-point letter, 3-digit point
// sequence).
type DOMES struct {
	Area       int
	Site       int
	Sequential int
	Point      DOMESTrackingPoint
}

func parseDOMES(s string) (DOMES, error) {
	var d DOMES
	if len(s) < 9 {
		return d, fmt.Errorf("rinex: short DOMES number %q", s)
	}
	var err error
	if d.Area, err = strconv.Atoi(strings.TrimSpace(s[0:3])); err != nil {
		return d, fmt.Errorf("rinex: parse DOMES area: %w", err)
	}
	if d.Site, err = strconv.Atoi(strings.TrimSpace(s[3:5])); err != nil {
		return d, fmt.Errorf("rinex: parse DOMES site: %w", err)
	}
	switch s[5:6] {
	case "M":
		d.Point = DOMESMonument
	case "S":
		d.Point = DOMESInstrument
	default:
		d.Point = DOMESUnknown
	}
	if d.Sequential, err = strconv.Atoi(strings.TrimSpace(s[6:9])); err != nil {
		return d, fmt.Errorf("rinex: parse DOMES sequential: %w", err)
	}
	return d, nil
}

// Station is one DORIS ground beacon, as declared in a "STATION REFERENCE"
// header line.
type Station struct {
	Key     uint16
	Gen     int
	KFactor int
	Label   string
	Site    string
	Domes   DOMES
}

// parseStation decodes one "STATION REFERENCE" header value, e.g.
// "D01  THUB THULE                         43001S005  3   0".
func parseStation(val string) (Station, error) {
	var st Station
	if len(val) < 53 {
		return st, fmt.Errorf("rinex: short DORIS station line %q", val)
	}
	key, err := strconv.Atoi(strings.TrimSpace(val[1:3]))
	if err != nil {
		return st, fmt.Errorf("rinex: parse DORIS station key: %w", err)
	}
	st.Key = uint16(key)
	st.Label = strings.TrimSpace(val[5:9])
	st.Site = strings.TrimSpace(val[10:40])
	if st.Domes, err = parseDOMES(val[40:49]); err != nil {
		return st, err
	}
	st.Gen, _ = strconv.Atoi(strings.TrimSpace(val[49:53]))
	if len(val) > 53 {
		st.KFactor, _ = strconv.Atoi(strings.TrimSpace(val[53:]))
	}
	return st, nil
}

// DorisHeader is a RINEX DORIS file header (§4.5, §6.4).
type DorisHeader struct {
	CommonHeader

	Observables []gnss.Observable
	Stations    []Station
}

// DorisObservation is one decoded signal measurement within a DORIS
// station block: a value plus its two optional single-digit quality flags.
type DorisObservation struct {
	Observable gnss.Observable
	Value      float64
	M1         *uint8
	M2         *uint8
}

// DorisEpoch is one decoded DORIS measurement epoch (§6.4): a TAI instant
// plus, for every station reporting in this epoch, one DorisObservation per
// header-declared observable.
type DorisEpoch struct {
	Epoch time.Time
	Flag  gnss.Flag

	ClockOffsetSec      float64
	ClockExtrapolated   bool
	StationObservations map[uint16][]DorisObservation
}

// dorisEpochDateFormat matches the 29-character date+time prefix of a
// DORIS epoch line, immediately followed by a 2-space/1-digit flag field.
const dorisEpochDateFormat = "2006 01 02 15 04 05.000000000"

// DorisDecoder reads and decodes a RINEX DORIS header and its epochs.
type DorisDecoder struct {
	Header DorisHeader

	sc      *bufio.Scanner
	lineNum int
	err     error

	pending     string
	havePending bool

	rec DorisEpoch
}

// NewDorisDecoder builds a decoder and reads the header implicitly.
func NewDorisDecoder(r io.Reader) (*DorisDecoder, error) {
	dec := &DorisDecoder{sc: bufio.NewScanner(r)}
	dec.Header, dec.err = dec.readHeader()
	return dec, dec.err
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *DorisDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *DorisDecoder) setErr(err error) {
	if dec.err == nil || dec.err == io.EOF {
		dec.err = err
	}
}

func (dec *DorisDecoder) readLine() (string, bool) {
	if dec.havePending {
		dec.havePending = false
		return dec.pending, true
	}
	if ok := dec.sc.Scan(); !ok {
		return "", false
	}
	dec.lineNum++
	return dec.sc.Text(), true
}

func (dec *DorisDecoder) unreadLine(line string) {
	dec.pending = line
	dec.havePending = true
}

func (dec *DorisDecoder) readHeader() (DorisHeader, error) {
	var hdr DorisHeader
	for {
		line, ok := dec.readLine()
		if !ok {
			return hdr, ErrNoHeader
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

		if handled, err := parseCommonLabel(&hdr.CommonHeader, key, val, line, dec.lineNum); handled {
			if err != nil {
				return hdr, err
			}
			continue
		}

		switch key {
		case "# / TYPES OF OBSERV", "SYS / # / OBS TYPES":
			for _, tok := range strings.Fields(val[6:]) {
				ob, err := gnss.ParseDorisObservable(tok)
				if err != nil {
					ob = gnss.Observable{Code: tok}
				}
				hdr.Observables = append(hdr.Observables, ob)
			}
		case "STATION REFERENCE":
			st, err := parseStation(val)
			if err != nil {
				return hdr, err
			}
			hdr.Stations = append(hdr.Stations, st)
		case "# OF STATIONS":
			// Recognized; the actual count is implied by the number of
			// "STATION REFERENCE" lines, so it isn't stored separately.
		case "END OF HEADER":
			return hdr, nil
		default:
			log.Printf("rinex: doris header: unhandled label %q at line %d", key, dec.lineNum)
		}
	}
}

func (dec *DorisDecoder) stationByKey(key uint16) (Station, bool) {
	for _, st := range dec.Header.Stations {
		if st.Key == key {
			return st, true
		}
	}
	return Station{}, false
}

// NextEpoch reads and decodes the next DORIS measurement epoch. It returns
// false at EOF or on error (check Err).
func (dec *DorisDecoder) NextEpoch() bool {
	numObs := len(dec.Header.Observables)

	var epoLine string
	for {
		line, ok := dec.readLine()
		if !ok {
			if err := dec.sc.Err(); err != nil {
				dec.setErr(err)
			}
			return false
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(line, ">") {
			dec.setErr(fmt.Errorf("rinex: doris: line %d: expected epoch line, got %q", dec.lineNum, line))
			return false
		}
		epoLine = line
		break
	}

	rest := epoLine[2:]
	if len(rest) < len(dorisEpochDateFormat)+3 {
		dec.setErr(fmt.Errorf("rinex: doris: line %d: short epoch line", dec.lineNum))
		return false
	}
	t, err := time.Parse(dorisEpochDateFormat, rest[:len(dorisEpochDateFormat)])
	if err != nil {
		dec.setErr(fmt.Errorf("rinex: doris: line %d: %w", dec.lineNum, err))
		return false
	}
	flagBlock := rest[len(dorisEpochDateFormat):]
	var flag gnss.Flag
	if tok := strings.TrimSpace(flagBlock[:3]); tok != "" {
		if n, err := strconv.Atoi(tok); err == nil {
			flag = gnss.Flag(n)
		}
	}

	rec := DorisEpoch{Epoch: t, Flag: flag, StationObservations: map[uint16][]DorisObservation{}}
	tail := strings.Fields(flagBlock[3:])
	if len(tail) >= 2 {
		if f, err := strconv.ParseFloat(tail[1], 64); err == nil {
			rec.ClockOffsetSec = f
		}
	}
	if len(tail) >= 3 && tail[2] == "1" {
		rec.ClockExtrapolated = true
	}

	var curKey uint16
	obsIdx := 0

	for obsIdx < numObs || obsIdx == 0 {
		line, ok := dec.readLine()
		if !ok {
			break
		}
		if strings.HasPrefix(line, ">") {
			dec.unreadLine(line)
			break
		}
		if obsIdx == 0 {
			if len(line) < 3 {
				dec.setErr(fmt.Errorf("rinex: doris: line %d: short station line", dec.lineNum))
				return false
			}
			key, err := strconv.Atoi(strings.TrimSpace(line[1:3]))
			if err != nil {
				dec.setErr(fmt.Errorf("rinex: doris: line %d: parse station key: %w", dec.lineNum, err))
				return false
			}
			curKey = uint16(key)
			if _, found := dec.stationByKey(curKey); !found {
				dec.setErr(fmt.Errorf("rinex: doris: line %d: unknown station %d", dec.lineNum, curKey))
				return false
			}
		}

		offset := 5
		for offset < len(line) && obsIdx < numObs {
			end := offset + 16
			if end > len(line) {
				end = len(line)
			}
			chunk := line[offset:end]
			if len(chunk) < 12 {
				break
			}
			val, err := strconv.ParseFloat(strings.TrimSpace(chunk[:12]), 64)
			if err != nil {
				dec.setErr(fmt.Errorf("rinex: doris: line %d: parse observation: %w", dec.lineNum, err))
				return false
			}
			ob := DorisObservation{Observable: dec.Header.Observables[obsIdx], Value: val}
			if len(chunk) > 12 {
				if m1 := strings.TrimSpace(chunk[12:13]); m1 != "" {
					if n, err := strconv.Atoi(m1); err == nil {
						u := uint8(n)
						ob.M1 = &u
					}
				}
			}
			if len(chunk) > 13 {
				if m2 := strings.TrimSpace(chunk[13:14]); m2 != "" {
					if n, err := strconv.Atoi(m2); err == nil {
						u := uint8(n)
						ob.M2 = &u
					}
				}
			}
			rec.StationObservations[curKey] = append(rec.StationObservations[curKey], ob)
			offset += 16
			obsIdx++
		}

		if obsIdx >= numObs {
			obsIdx = 0
		}
	}

	dec.rec = rec
	return true
}

// Epoch returns the most recently decoded DORIS epoch.
func (dec *DorisDecoder) Epoch() DorisEpoch { return dec.rec }
