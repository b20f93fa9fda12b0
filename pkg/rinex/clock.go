package rinex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
)

// ClockRecordType is the two-character record-type prefix of a RINEX clock
// data line (§4.5): AR/AS name a receiver-/satellite-clock solution, CR/DR
// a calculated/discontinuity record.
type ClockRecordType string

const (
	ClockRecAR ClockRecordType = "AR" // receiver clock, station solution
	ClockRecAS ClockRecordType = "AS" // satellite clock
	ClockRecCR ClockRecordType = "CR" // calculated/combined clock
	ClockRecDR ClockRecordType = "DR" // discontinuity
)

// ClockHeader is a RINEX clock file header (§4.5).
type ClockHeader struct {
	CommonHeader

	TimeSystemID string // time system used for time tags, e.g. "GPS", "UTC"
	AC           string // 3-character IGS Analysis Center designator

	NumSolnSats    int
	StaCoordinates []string
	Sats           []gnss.SV
}

// ClockRecord is one decoded clock data line: a bias plus however many
// higher-order terms (drift, drift-rate, ...) the record carries,
// alongside each value's formal sigma.
type ClockRecord struct {
	Type ClockRecordType
	// Name is the 4-character station name (AR/CR/DR) or SV identifier
	// (AS).
	Name string
	SV   *gnss.SV // set only for ClockRecAS

	Epoch time.Time

	Values []float64 // bias, [drift, [drift-rate]], in seconds/s/s^2
	Sigmas []float64 // one sigma per value, same order
}

// ClockDecoder reads and decodes a RINEX clock header and its data
// records.
type ClockDecoder struct {
	Header ClockHeader

	sc      *bufio.Scanner
	lineNum int
	err     error

	rec ClockRecord
}

// NewClockDecoder returns a decoder reading from r; the header is read
// implicitly.
func NewClockDecoder(r io.Reader) (*ClockDecoder, error) {
	dec := &ClockDecoder{sc: bufio.NewScanner(r)}
	hdr, err := dec.readHeader()
	dec.Header = hdr
	return dec, err
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *ClockDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *ClockDecoder) setErr(err error) { dec.err = errors.Join(dec.err, err) }

func (dec *ClockDecoder) readLine() bool {
	if ok := dec.sc.Scan(); !ok {
		return ok
	}
	dec.lineNum++
	return true
}

func (dec *ClockDecoder) line() string { return dec.sc.Text() }

// readHeader reads a RINEX clock header, which is label/value like every
// other RINEX header (§4.4's CommonHeader labels, plus clock-specific
// ones).
func (dec *ClockDecoder) readHeader() (ClockHeader, error) {
	var hdr ClockHeader
	for dec.readLine() {
		line := dec.line()
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
		case "TIME SYSTEM ID":
			hdr.TimeSystemID = strings.TrimSpace(val[3:6])
		case "ANALYSIS CENTER":
			hdr.AC = strings.TrimSpace(val[:3])
		case "# OF SOLN SATS":
			n, err := strconv.Atoi(strings.TrimSpace(val[:6]))
			if err != nil {
				return hdr, fmt.Errorf("rinex: clock header %q: %w", key, err)
			}
			hdr.NumSolnSats = n
		case "SOLN STA NAME / NUM":
			hdr.StaCoordinates = append(hdr.StaCoordinates, strings.TrimSpace(val))
		case "PRN LIST":
			for _, tok := range strings.Fields(val) {
				sv, err := gnss.NewSV(tok)
				if err != nil {
					log.Printf("rinex: clock header PRN LIST: %v", err)
					continue
				}
				hdr.Sats = append(hdr.Sats, sv)
			}
		case "END OF HEADER":
			return hdr, nil
		default:
			log.Printf("rinex: clock header: unhandled label %q at line %d", key, dec.lineNum)
		}
	}
	if err := dec.sc.Err(); err != nil {
		return hdr, err
	}
	return hdr, ErrNoHeader
}

// NextRecord reads and decodes the next clock data record. It returns
// false at EOF or on error (check Err).
func (dec *ClockDecoder) NextRecord() bool {
	for dec.readLine() {
		line := dec.line()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := parseClockLine(line)
		if err != nil {
			dec.setErr(fmt.Errorf("rinex: clock: line %d: %w", dec.lineNum, err))
			return false
		}
		dec.rec = rec
		return true
	}
	if err := dec.sc.Err(); err != nil {
		dec.setErr(err)
	}
	return false
}

// Record returns the most recently decoded clock record.
func (dec *ClockDecoder) Record() ClockRecord { return dec.rec }

// parseClockLine decodes one clock data line. RINEX clock files fix the
// type/name/epoch/value-count prefix to specific columns, but the exact
// column widths were not available from any retrieved source, so every
// field here is whitespace-tokenized instead (the same simplification
// pkg/hatanaka's body-line tokenizer makes, for the same reason):
// type, name, year, month, day, hour, minute, seconds, value-count, then
// that many values and (if present) that many sigmas.
func parseClockLine(line string) (ClockRecord, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 9 {
		return ClockRecord{}, fmt.Errorf("short clock data line: %q", line)
	}

	typ := ClockRecordType(tokens[0])
	name := tokens[1]

	year, err := strconv.Atoi(tokens[2])
	if err != nil {
		return ClockRecord{}, fmt.Errorf("parse year: %w", err)
	}
	month, err := strconv.Atoi(tokens[3])
	if err != nil {
		return ClockRecord{}, fmt.Errorf("parse month: %w", err)
	}
	day, err := strconv.Atoi(tokens[4])
	if err != nil {
		return ClockRecord{}, fmt.Errorf("parse day: %w", err)
	}
	hour, err := strconv.Atoi(tokens[5])
	if err != nil {
		return ClockRecord{}, fmt.Errorf("parse hour: %w", err)
	}
	minute, err := strconv.Atoi(tokens[6])
	if err != nil {
		return ClockRecord{}, fmt.Errorf("parse minute: %w", err)
	}
	sec, err := strconv.ParseFloat(tokens[7], 64)
	if err != nil {
		return ClockRecord{}, fmt.Errorf("parse seconds: %w", err)
	}
	wholeSec := int(sec)
	nsec := int((sec - float64(wholeSec)) * 1e9)
	t := time.Date(year, time.Month(month), day, hour, minute, wholeSec, nsec, time.UTC)

	n, err := strconv.Atoi(tokens[8])
	if err != nil {
		return ClockRecord{}, fmt.Errorf("parse value count: %w", err)
	}
	values := tokens[9:]

	rec := ClockRecord{Type: typ, Name: name, Epoch: t}
	if typ == ClockRecAS {
		if sv, err := gnss.NewSV(name); err == nil {
			rec.SV = &sv
		}
	}

	for i := 0; i < n && i < len(values); i++ {
		v, err := strconv.ParseFloat(values[i], 64)
		if err != nil {
			return ClockRecord{}, fmt.Errorf("parse value %d: %w", i, err)
		}
		rec.Values = append(rec.Values, v)
	}
	for i := 0; i < n && n+i < len(values); i++ {
		v, err := strconv.ParseFloat(values[n+i], 64)
		if err != nil {
			continue
		}
		rec.Sigmas = append(rec.Sigmas, v)
	}
	return rec, nil
}
