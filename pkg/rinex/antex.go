package rinex

import (
	"bufio"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
)

// AntexPattern is one antenna's phase-center data for a single frequency:
// a constant offset plus a non-azimuth-dependent (NOAZI) variation pattern
// sampled at the zenith/nadir angles declared by the header's "ZEN1 / ZEN2
// / DZEN" line.
type AntexPattern struct {
	Frequency int // 1, 2, 5, ... per RINEX frequency numbering
	Offset    ECEF // North/East/Up (X/Y/Z), meters
	NOAZI     []float64 // one value per zenith/nadir sample, azimuth-averaged
}

// AntexEntry is one "START OF ANTENNA" .. "END OF ANTENNA" block (§4.5,
// §3 "Antex"): a stationary antenna phase-center table, not an
// epoch-indexed record.
type AntexEntry struct {
	Type string
	Code string // serial number (receiver antenna) or satellite code
	Sat  gnss.SV

	ValidFrom  time.Time
	ValidUntil time.Time

	Patterns []AntexPattern
}

// AntexHeader is a RINEX Antex file header.
type AntexHeader struct {
	CommonHeader

	PcvType     string // "A" absolute or "R" relative
	Zen1, Zen2  float64
	DZen        float64
	NumFreq     int
}

// AntexDecoder reads and decodes a RINEX Antex header and its antenna
// entries.
type AntexDecoder struct {
	Header AntexHeader

	br      *bufio.Reader
	lineNum int
	err     error

	rec AntexEntry
}

// NewAntexDecoder builds a decoder and reads the header implicitly.
func NewAntexDecoder(r io.Reader) (*AntexDecoder, error) {
	dec := &AntexDecoder{br: bufio.NewReader(r)}
	dec.Header, dec.err = dec.readHeader()
	return dec, dec.err
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *AntexDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *AntexDecoder) setErr(err error) {
	if dec.err == nil || dec.err == io.EOF {
		dec.err = err
	}
}

func (dec *AntexDecoder) readLine() (string, bool) {
	line, err := dec.br.ReadString('\n')
	if err != nil && line == "" {
		dec.setErr(err)
		return "", false
	}
	dec.lineNum++
	return strings.TrimRight(line, "\r\n"), true
}

func (dec *AntexDecoder) readHeader() (AntexHeader, error) {
	var hdr AntexHeader
	for {
		line, ok := dec.readLine()
		if !ok {
			return hdr, ErrNoHeader
		}
		if dec.lineNum == 1 && !strings.Contains(line, "ANTEX VERSION / SYST") {
			return hdr, ErrNoHeader
		}
		if len(line) < 61 {
			line = line + strings.Repeat(" ", 61-len(line))
		}
		val := line[:60]
		key := strings.TrimSpace(line[60:])
		hdr.Labels = append(hdr.Labels, key)

		switch key {
		case "ANTEX VERSION / SYST":
			v, err := strconv.ParseFloat(strings.TrimSpace(val[:8]), 32)
			if err == nil {
				hdr.RINEXVersion = float32(v)
			}
			if sys, ok := gnss.SysPerAbbr[strings.TrimSpace(val[20:21])]; ok {
				hdr.SatSystem = sys
			}
		case "PCV TYPE / REFANT":
			hdr.PcvType = strings.TrimSpace(val[:1])
		case "ZEN1 / ZEN2 / DZEN":
			fields := strings.Fields(val)
			if len(fields) >= 3 {
				hdr.Zen1, _ = parseFloat(fields[0])
				hdr.Zen2, _ = parseFloat(fields[1])
				hdr.DZen, _ = parseFloat(fields[2])
			}
		case "# OF FREQUENCIES":
			if fields := strings.Fields(val); len(fields) > 0 {
				hdr.NumFreq, _ = strconv.Atoi(fields[0])
			}
		case "COMMENT":
			hdr.Comments = append(hdr.Comments, strings.TrimSpace(val))
		case "PGM / RUN BY / DATE":
			hdr.Pgm = strings.TrimSpace(val[:20])
			hdr.RunBy = strings.TrimSpace(val[20:40])
		case "END OF HEADER":
			return hdr, nil
		default:
			log.Printf("rinex: antex header: unhandled label %q at line %d", key, dec.lineNum)
		}
	}
}

// NextEntry reads and decodes the next antenna phase-center block. It
// returns false at EOF or on error (check Err).
func (dec *AntexDecoder) NextEntry() bool {
	var entry AntexEntry
	freq := 0

	for {
		line, ok := dec.readLine()
		if !ok {
			if dec.err == io.EOF {
				dec.err = nil
			}
			return false
		}
		if idx := strings.Index(line, "NOAZI"); idx >= 0 {
			if freq != 0 && len(entry.Patterns) > 0 {
				if p := &entry.Patterns[len(entry.Patterns)-1]; p.Frequency == freq {
					p.NOAZI = parseHeaderFloats(line[idx+5:])
				}
			}
			continue
		}
		if len(line) < 61 {
			continue
		}
		val, label := line[:60], strings.TrimSpace(line[60:])
		if label == "COMMENT" {
			continue
		}

		switch {
		case label == "START OF ANTENNA":
			entry = AntexEntry{}
			freq = 0
		case label == "TYPE / SERIAL NO":
			entry.Type = strings.TrimSpace(val[:20])
			entry.Code = strings.TrimSpace(val[20:40])
			if len(val) >= 40 && strings.TrimSpace(val[23:40]) == "" {
				if sv, err := gnss.NewSV(strings.TrimSpace(val[20:23])); err == nil {
					entry.Sat = sv
				}
			}
		case label == "VALID FROM":
			if t, ok := parseAntexTime(val); ok {
				entry.ValidFrom = t
			}
		case label == "VALID UNTIL":
			if t, ok := parseAntexTime(val); ok {
				entry.ValidUntil = t
			}
		case label == "START OF FREQUENCY":
			fields := strings.Fields(val)
			if len(fields) > 0 {
				tok := strings.TrimLeft(fields[0], "GRECJSI")
				if n, err := strconv.Atoi(tok); err == nil {
					freq = n
				}
			}
		case label == "END OF FREQUENCY":
			freq = 0
		case label == "NORTH / EAST / UP":
			fields := strings.Fields(val)
			if freq == 0 || len(fields) < 3 {
				continue
			}
			n, _ := parseFloat(fields[0])
			e, _ := parseFloat(fields[1])
			u, _ := parseFloat(fields[2])
			entry.Patterns = append(entry.Patterns, AntexPattern{
				Frequency: freq,
				Offset:    ECEF{X: n, Y: e, Z: u},
			})
		case label == "END OF ANTENNA":
			dec.rec = entry
			return true
		}
	}
}

// Entry returns the most recently decoded antenna block.
func (dec *AntexDecoder) Entry() AntexEntry { return dec.rec }

// parseAntexTime reads a "VALID FROM"/"VALID UNTIL" value field as six
// whitespace-separated numbers (year month day hour minute second),
// matching the column-agnostic Sscanf-based parsing RTKLIB's readantex
// uses instead of fixed offsets.
func parseAntexTime(val string) (time.Time, bool) {
	fields := strings.Fields(val)
	if len(fields) < 6 {
		return time.Time{}, false
	}
	var nums [6]float64
	for i := 0; i < 6; i++ {
		v, err := parseFloat(fields[i])
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = v
	}
	year := int(nums[0])
	sec := nums[5]
	whole := int(sec)
	nsec := int((sec - float64(whole)) * 1e9)
	return time.Date(year, time.Month(int(nums[1])), int(nums[2]), int(nums[3]), int(nums[4]), whole, nsec, time.UTC), true
}
