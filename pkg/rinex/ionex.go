package rinex

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
	"time"
)

// IonexHeader is an IONEX (TEC map) file header. No original_source/
// file covers the IONEX grid format beyond a one-line mention
// (_examples/original_source/rinex/src/navigation/ionosphere/mod.rs only
// implements the Klobuchar/NequickG/BDGIM *header correction model*, a
// different thing from a TEC map grid), so this header and its decoder
// are built directly from the grid shape IONEX files are known to use.
type IonexHeader struct {
	CommonHeader

	Exponent     int // default -1: stored grid values are tenths of TECU
	BaseRadius   float64
	MapDimension int

	Lat1, Lat2, DLat float64
	Lon1, Lon2, DLon float64
	Hgt1, Hgt2, DHgt float64

	NumMaps int
}

// ionexAbsentValue is the grid-cell sentinel meaning "no data", per the
// IONEX convention of 9999.
const ionexAbsentValue = 9999

// IonexMap is one decoded TEC or RMS-TEC grid (§3 "IONEX"): a 2D array of
// values, keyed by (epoch, altitude) at the decoder level, indexed here by
// [latitude row][longitude column] in the header-declared grid order.
// Values are already scaled by 10^Exponent; absent cells are NaN.
type IonexMap struct {
	Kind   string // "TEC" or "RMS"
	Epoch  time.Time
	Height float64
	Values [][]float64
}

// IonexDecoder reads and decodes an IONEX header and its stacked TEC/RMS
// maps.
type IonexDecoder struct {
	Header IonexHeader

	sc      *bufio.Scanner
	lineNum int
	err     error

	rec IonexMap
}

// NewIonexDecoder builds a decoder and reads the header implicitly.
func NewIonexDecoder(r io.Reader) (*IonexDecoder, error) {
	dec := &IonexDecoder{sc: bufio.NewScanner(r)}
	dec.Header, dec.err = dec.readHeader()
	return dec, dec.err
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *IonexDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *IonexDecoder) setErr(err error) {
	if dec.err == nil || dec.err == io.EOF {
		dec.err = err
	}
}

func (dec *IonexDecoder) readLine() (string, bool) {
	if ok := dec.sc.Scan(); !ok {
		return "", false
	}
	dec.lineNum++
	return dec.sc.Text(), true
}

func (dec *IonexDecoder) readHeader() (IonexHeader, error) {
	hdr := IonexHeader{Exponent: -1}
	for {
		line, ok := dec.readLine()
		if !ok {
			return hdr, ErrNoHeader
		}
		if dec.lineNum == 1 && !strings.Contains(line, "IONEX VERSION / TYPE") {
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

		fields := strings.Fields(val)
		switch key {
		case "EXPONENT":
			if len(fields) > 0 {
				if n, err := strconv.Atoi(fields[0]); err == nil {
					hdr.Exponent = n
				}
			}
		case "BASE RADIUS":
			if len(fields) > 0 {
				hdr.BaseRadius, _ = parseFloat(fields[0])
			}
		case "MAP DIMENSION":
			if len(fields) > 0 {
				hdr.MapDimension, _ = strconv.Atoi(fields[0])
			}
		case "# OF MAPS IN FILE":
			if len(fields) > 0 {
				hdr.NumMaps, _ = strconv.Atoi(fields[0])
			}
		case "HGT1 / HGT2 / DHGT":
			if len(fields) >= 3 {
				hdr.Hgt1, _ = parseFloat(fields[0])
				hdr.Hgt2, _ = parseFloat(fields[1])
				hdr.DHgt, _ = parseFloat(fields[2])
			}
		case "LAT1 / LAT2 / DLAT":
			if len(fields) >= 3 {
				hdr.Lat1, _ = parseFloat(fields[0])
				hdr.Lat2, _ = parseFloat(fields[1])
				hdr.DLat, _ = parseFloat(fields[2])
			}
		case "LON1 / LON2 / DLON":
			if len(fields) >= 3 {
				hdr.Lon1, _ = parseFloat(fields[0])
				hdr.Lon2, _ = parseFloat(fields[1])
				hdr.DLon, _ = parseFloat(fields[2])
			}
		case "END OF HEADER":
			return hdr, nil
		default:
			log.Printf("rinex: ionex header: unhandled label %q at line %d", key, dec.lineNum)
		}
	}
}

func (dec *IonexDecoder) numLonCols() int {
	if dec.Header.DLon == 0 {
		return 0
	}
	return int(math.Round((dec.Header.Lon2-dec.Header.Lon1)/dec.Header.DLon)) + 1
}

func (dec *IonexDecoder) numLatRows() int {
	if dec.Header.DLat == 0 {
		return 0
	}
	return int(math.Round((dec.Header.Lat2-dec.Header.Lat1)/dec.Header.DLat)) + 1
}

// NextMap reads and decodes the next TEC or RMS-TEC map. It returns false
// at EOF or on error (check Err).
func (dec *IonexDecoder) NextMap() bool {
	var kind string
	for {
		line, ok := dec.readLine()
		if !ok {
			if err := dec.sc.Err(); err != nil {
				dec.setErr(err)
			}
			return false
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, "START OF TEC MAP") {
			kind = "TEC"
			break
		}
		if strings.HasSuffix(trimmed, "START OF RMS MAP") {
			kind = "RMS"
			break
		}
	}

	rec := IonexMap{Kind: kind}
	nLat := dec.numLatRows()
	nLon := dec.numLonCols()
	if nLat > 0 && nLon > 0 {
		rec.Values = make([][]float64, nLat)
	}

	scale := math.Pow(10, float64(dec.Header.Exponent))
	endLabel := "END OF " + kind + " MAP"
	rowIdx := -1
	colIdx := 0

	for {
		line, ok := dec.readLine()
		if !ok {
			dec.setErr(fmt.Errorf("rinex: ionex: line %d: unterminated %s map", dec.lineNum, kind))
			return false
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, endLabel) {
			break
		}
		if strings.HasSuffix(trimmed, "EPOCH OF CURRENT MAP") {
			fields := strings.Fields(line)
			if len(fields) >= 6 {
				y, _ := strconv.Atoi(fields[0])
				mo, _ := strconv.Atoi(fields[1])
				d, _ := strconv.Atoi(fields[2])
				h, _ := strconv.Atoi(fields[3])
				mi, _ := strconv.Atoi(fields[4])
				s, _ := strconv.Atoi(fields[5])
				rec.Epoch = time.Date(y, time.Month(mo), d, h, mi, s, 0, time.UTC)
			}
			continue
		}
		if strings.HasSuffix(trimmed, "LAT/LON1/LON2/DLON/H") {
			fields := strings.Fields(line)
			if len(fields) >= 4 {
				rec.Height, _ = parseFloat(fields[3])
			}
			rowIdx++
			colIdx = 0
			if rowIdx < len(rec.Values) {
				rec.Values[rowIdx] = make([]float64, nLon)
			}
			continue
		}
		if rowIdx < 0 || rowIdx >= len(rec.Values) {
			continue
		}
		for _, tok := range strings.Fields(line) {
			n, err := strconv.Atoi(tok)
			if err != nil {
				dec.setErr(fmt.Errorf("rinex: ionex: line %d: parse grid value: %w", dec.lineNum, err))
				return false
			}
			v := math.NaN()
			if n != ionexAbsentValue {
				v = float64(n) * scale
			}
			if colIdx < len(rec.Values[rowIdx]) {
				rec.Values[rowIdx][colIdx] = v
			}
			colIdx++
		}
	}

	dec.rec = rec
	return true
}

// Map returns the most recently decoded TEC/RMS grid.
func (dec *IonexDecoder) Map() IonexMap { return dec.rec }
