package rinex

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
)

// MeteoSensor describes one meteorological sensor declared in a meteo
// header's "SENSOR MOD/TYPE/ACC" / "SENSOR POS XYZ/H" lines.
type MeteoSensor struct {
	Model           string
	Type            string
	Accuracy        float64
	ObservationType gnss.Observable
	Position        ECEF
	Height          float64
}

// MeteoHeader is a RINEX meteorological file header (§4.5).
type MeteoHeader struct {
	CommonHeader

	DOI          string
	License      string
	StationInfos []string

	ObsTypes []gnss.Observable
	Sensors  []*MeteoSensor
}

// MeteoEpoch is one meteo observation row (§4.5): a timestamp plus one
// value per header-declared observation type, in the same order.
type MeteoEpoch struct {
	Time time.Time
	Obs  []float64
}

const (
	meteoEpochTimeFormat   string = "2006  1  2 15  4  5"
	meteoEpochTimeFormatv2 string = "06  1  2 15  4  5"
)

// MetDecoder reads and decodes a RINEX meteo header and its epochs.
type MetDecoder struct {
	Header MeteoHeader

	sc      *bufio.Scanner
	lineNum int
	err     error

	epo *MeteoEpoch
}

// NewMetDecoder builds a decoder and reads the header implicitly.
func NewMetDecoder(r io.Reader) (*MetDecoder, error) {
	dec := &MetDecoder{sc: bufio.NewScanner(r)}
	dec.Header, dec.err = dec.readHeader()
	return dec, dec.err
}

func (dec *MetDecoder) readHeader() (MeteoHeader, error) {
	var hdr MeteoHeader
	sensPositions := []string{}

readln:
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
		case "DOI":
			hdr.DOI = strings.TrimSpace(val)
		case "LICENSE OF USE":
			hdr.License = strings.TrimSpace(val)
		case "STATION INFORMATION":
			hdr.StationInfos = append(hdr.StationInfos, strings.TrimSpace(val))
		case "# / TYPES OF OBSERV":
			for _, tok := range strings.Fields(val[6:]) {
				ob, err := gnss.ParseObservable(tok)
				if err != nil {
					ob = gnss.Observable{Code: tok}
				}
				hdr.ObsTypes = append(hdr.ObsTypes, ob)
			}
		case "SENSOR MOD/TYPE/ACC":
			sens := &MeteoSensor{
				Model: strings.TrimSpace(val[:20]),
				Type:  strings.TrimSpace(val[20:40]),
			}
			if acc, err := parseFloat(val[40:53]); err == nil {
				sens.Accuracy = acc
			} else {
				log.Printf("rinex met header: parse accuracy: %v", err)
			}
			if ob, err := gnss.ParseObservable(strings.TrimSpace(val[57:59])); err == nil {
				sens.ObservationType = ob
			} else {
				sens.ObservationType = gnss.Observable{Code: strings.TrimSpace(val[57:59])}
			}
			hdr.Sensors = append(hdr.Sensors, sens)
		case "SENSOR POS XYZ/H":
			sensPositions = append(sensPositions, val)
		case "END OF HEADER":
			break readln
		default:
			log.Printf("rinex: meteo header: unhandled label %q at line %d", key, dec.lineNum)
		}
	}

	for _, posline := range sensPositions {
		obstype := strings.TrimSpace(posline[57:59])
		pos, height, err := parseSensorPosition(posline)
		if err != nil {
			return hdr, err
		}
		found := false
		for _, sensor := range hdr.Sensors {
			if sensor.ObservationType.Code == obstype {
				sensor.Position = pos
				sensor.Height = height
				found = true
				break
			}
		}
		if !found {
			return hdr, fmt.Errorf("rinex: meteo header: position with no sensor model for %q", obstype)
		}
	}

	return hdr, dec.sc.Err()
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *MetDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *MetDecoder) setErr(err error) {
	if dec.err == nil || dec.err == io.EOF {
		dec.err = err
	}
}

func (dec *MetDecoder) readLine() bool {
	if ok := dec.sc.Scan(); !ok {
		return ok
	}
	dec.lineNum++
	return true
}

func (dec *MetDecoder) line() string { return dec.sc.Text() }

// NextEpoch reads the observations of the next epoch. It returns false at
// EOF or on error (check Err).
func (dec *MetDecoder) NextEpoch() bool {
	numObs := len(dec.Header.ObsTypes)
readln:
	for dec.readLine() {
		line := dec.line()
		if len(line) < 1 {
			continue
		}

		epoTime, err := dec.parseEpochTime(line)
		if err != nil {
			dec.setErr(fmt.Errorf("rinex meteo: line %d: %w", dec.lineNum, err))
			return false
		}

		obsList := make([]float64, 0, numObs)
		pos := 20
		if dec.Header.RINEXVersion < 3 {
			pos = 18
		}
		for iObs := 0; iObs < numObs; iObs++ {
			if iObs > 0 && iObs%8 == 0 {
				if ok := dec.readLine(); !ok {
					break readln
				}
				line = dec.line()
				pos = 4
			}
			if pos+7 > len(line) {
				break
			}
			obs, err := parseFloat(line[pos : pos+7])
			if err != nil {
				dec.setErr(fmt.Errorf("rinex meteo: line %d: %w", dec.lineNum, err))
				return false
			}
			obsList = append(obsList, obs)
			pos += 7
		}

		dec.epo = &MeteoEpoch{Time: epoTime, Obs: obsList}
		return true
	}

	if err := dec.sc.Err(); err != nil {
		dec.setErr(fmt.Errorf("rinex: meteo: read epoch: %w", err))
	}
	return false
}

// Epoch returns the most recently decoded epoch.
func (dec *MetDecoder) Epoch() *MeteoEpoch { return dec.epo }

func (dec *MetDecoder) parseEpochTime(line string) (time.Time, error) {
	if dec.Header.RINEXVersion < 3 {
		return time.Parse(meteoEpochTimeFormatv2, line[1:18])
	}
	return time.Parse(meteoEpochTimeFormat, line[1:20])
}

// MeteoStats holds summary statistics about a meteo file, derived from its
// data.
type MeteoStats struct {
	NumEpochs      int           `json:"numEpochs"`
	Sampling       time.Duration `json:"sampling"`
	TimeOfFirstObs time.Time     `json:"timeOfFirstObs"`
	TimeOfLastObs  time.Time     `json:"timeOfLastObs"`
}

// parseSensorPosition parses a "SENSOR POS XYZ/H" header value.
func parseSensorPosition(line string) (pos ECEF, height float64, err error) {
	if pos.X, err = parseFloat(line[0:14]); err != nil {
		return pos, height, fmt.Errorf("rinex met header: parse sensor position: %w", err)
	}
	if pos.Y, err = parseFloat(line[14:28]); err != nil {
		return pos, height, fmt.Errorf("rinex met header: parse sensor position: %w", err)
	}
	if pos.Z, err = parseFloat(line[28:42]); err != nil {
		return pos, height, fmt.Errorf("rinex met header: parse sensor position: %w", err)
	}
	if height, err = parseFloat(line[44:56]); err != nil {
		return pos, height, fmt.Errorf("rinex met header: parse sensor position: %w", err)
	}
	return pos, height, nil
}
