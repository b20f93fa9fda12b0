// Package rinex decodes RINEX observation, navigation, meteorological and
// clock files (plus the stationary IONEX/DORIS/Antex record shapes), and
// recognizes the standard RINEX-2/RINEX-3 file naming conventions.
package rinex

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
	"github.com/mholt/archiver/v3"
)

// ErrNoHeader is returned when reading RINEX data that does not begin with a
// RINEX header.
var ErrNoHeader = errors.New("rinex: no header")

const (
	// epochTimeFormat parses "TIME OF FIRST/LAST OBS" header values.
	epochTimeFormat string = "2006  1  2 15  4  5.0000000"

	// rnx3StartTimeFormat parses the start-time field of a RINEX-3 filename.
	rnx3StartTimeFormat string = "20060021504"
)

var (
	// Rnx2FileNamePattern matches RINEX-2 filenames, e.g. "brdc0010.21n.Z".
	Rnx2FileNamePattern = regexp.MustCompile(`(([a-z0-9]{4})(\d{3})([a-x0])(\d{2})?\.(\d{2})([domnglqfph]))\.?([a-zA-Z0-9]+)?`)

	// Rnx3FileNamePattern matches RINEX-3 filenames, e.g.
	// "BRUX00BEL_R_20183101900_01H_30S_MO.rnx".
	Rnx3FileNamePattern = regexp.MustCompile(`((([A-Z0-9]{4})(\d)(\d)([A-Z]{3})_([RSU])_((\d{4})(\d{3})(\d{2})(\d{2}))_(\d{2}[A-Z])_?(\d{2}[CZSMHDU])?_([GREJCSM][MNO]))\.(rnx|crx))\.?([a-zA-Z0-9]+)?`)

	// rnxTypMap maps a RINEX-3 data-type abbreviation to its RINEX-2 letter.
	rnxTypMap = map[string]string{
		"GO": "o", "RO": "o", "EO": "o", "JO": "o", "CO": "o", "IO": "o", "SO": "o", "MO": "o",
		"GN": "n", "RN": "g", "EN": "l", "JN": "q", "CN": "f", "SN": "h", "MN": "p", "MM": "m",
	}
)

// RnxFil holds the fields common to every RINEX file regardless of record
// type, derived from its path following the IGS naming conventions.
type RnxFil struct {
	Path string

	FourCharID     string
	MonumentNumber int
	ReceiverNumber int
	CountryCode    string // ISO 3-char
	StartTime      time.Time
	DataSource     string // R, S or U
	FilePeriod     string // e.g. "15M", "01D"
	DataFreq       string // e.g. "30S"; not meaningful for nav files
	DataType       string // data-type abbreviation, e.g. "GO", "MN"
	Format         string // "rnx", "crx", ...
	Compression    string // "gz", "Z", ...
}

// NewFile returns a RnxFil with its fields populated from the path's
// filename, following whichever of the RINEX-2/RINEX-3 conventions matches.
func NewFile(path string) (*RnxFil, error) {
	fil := &RnxFil{Path: path}
	err := fil.parseFilename()
	return fil, err
}

// IsObsType reports whether the file is a RINEX observation file.
func (f *RnxFil) IsObsType() bool { return strings.HasSuffix(f.DataType, "O") }

// IsNavType reports whether the file is a RINEX navigation file.
func (f *RnxFil) IsNavType() bool { return strings.HasSuffix(f.DataType, "N") }

// IsMeteoType reports whether the file is a RINEX meteorological file.
func (f *RnxFil) IsMeteoType() bool { return strings.HasSuffix(f.DataType, "M") }

// Rnx2Filename renders the file following the RINEX-2 convention.
func (f *RnxFil) Rnx2Filename() (string, error) {
	if len(f.FourCharID) != 4 {
		return "", fmt.Errorf("rinex: FourCharID: %q", f.FourCharID)
	}

	var fn strings.Builder
	fn.WriteString(strings.ToLower(f.FourCharID))
	fn.WriteString(fmt.Sprintf("%03d", f.StartTime.YearDay()))
	if f.FilePeriod == "01D" {
		fn.WriteString("0")
	} else {
		fn.WriteString(getHourAsChar(f.StartTime.Hour()))
	}
	if f.FilePeriod == "15M" {
		d := time.Duration(f.StartTime.Minute()) * time.Minute
		fn.WriteString(fmt.Sprintf("%02d", int(d.Truncate(15*time.Minute).Minutes())))
	}

	yyyy := strconv.Itoa(f.StartTime.Year())
	fn.WriteString("." + yyyy[2:])

	rnx2Typ, ok := rnxTypMap[f.DataType]
	if !ok {
		return "", fmt.Errorf("rinex: cannot map data type %q to RINEX-2", f.DataType)
	}
	if f.IsObsType() && f.Format == "crx" {
		fn.WriteString("d")
	} else {
		fn.WriteString(rnx2Typ)
	}

	shouldLen := 12
	if f.FilePeriod == "15M" {
		shouldLen = 14
	}
	if got := fn.Len(); got != shouldLen {
		return "", fmt.Errorf("rinex: wrong filename length: %s: %d (want %d)", fn.String(), got, shouldLen)
	}
	return fn.String(), nil
}

// Rnx3Filename renders the file following the RINEX-3 convention. Interval
// and data-type must already be set (typically from a decoded header).
func (f *RnxFil) Rnx3Filename() (string, error) {
	if len(f.FourCharID) != 4 {
		return "", fmt.Errorf("rinex: FourCharID: %q", f.FourCharID)
	}
	if len(f.CountryCode) != 3 {
		return "", fmt.Errorf("rinex: CountryCode: %q", f.CountryCode)
	}

	var fn strings.Builder
	fn.WriteString(f.FourCharID)
	fn.WriteString(strconv.Itoa(f.MonumentNumber))
	fn.WriteString(strconv.Itoa(f.ReceiverNumber))
	fn.WriteString(f.CountryCode)
	fn.WriteString("_")
	if f.DataSource == "" {
		fn.WriteString("U")
	} else {
		fn.WriteString(f.DataSource)
	}
	fn.WriteString("_")
	fn.WriteString(strconv.Itoa(f.StartTime.Year()))
	fn.WriteString(fmt.Sprintf("%03d", f.StartTime.YearDay()))
	fn.WriteString(fmt.Sprintf("%02d", f.StartTime.Hour()))
	fn.WriteString(fmt.Sprintf("%02d", f.StartTime.Minute()))
	fn.WriteString("_")
	fn.WriteString(f.FilePeriod)
	fn.WriteString("_")
	fn.WriteString(f.DataFreq)
	fn.WriteString("_")
	fn.WriteString(f.DataType)
	if f.IsObsType() && f.Format == "crx" {
		fn.WriteString(".crx")
	} else {
		fn.WriteString(".rnx")
	}
	return fn.String(), nil
}

func (f *RnxFil) parseFilename() error {
	if f.Path == "" {
		return fmt.Errorf("rinex: cannot parse filename: empty path")
	}
	fn := filepath.Base(f.Path)
	if len(fn) > 20 {
		return f.parseRnx3Filename(fn)
	}
	return f.parseRnx2Filename(fn)
}

func (f *RnxFil) parseRnx3Filename(fn string) error {
	res := Rnx3FileNamePattern.FindStringSubmatch(fn)
	if res == nil {
		return fmt.Errorf("rinex: not a RINEX-3 filename: %q", fn)
	}
	for k, v := range res {
		switch k {
		case 3:
			f.FourCharID = strings.ToUpper(v)
		case 4:
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("rinex: parse monument number: %q", v)
			}
			f.MonumentNumber = n
		case 5:
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("rinex: parse receiver number: %q", v)
			}
			f.ReceiverNumber = n
		case 6:
			f.CountryCode = strings.ToUpper(v)
		case 7:
			f.DataSource = strings.ToUpper(v)
		case 8:
			t, err := time.Parse(rnx3StartTimeFormat, v)
			if err != nil {
				return fmt.Errorf("rinex: parse start time: %q: %w", v, err)
			}
			f.StartTime = t
		case 13:
			f.FilePeriod = strings.ToUpper(v)
		case 14:
			f.DataFreq = strings.ToUpper(v)
		case 15:
			f.DataType = strings.ToUpper(v)
		case 16:
			f.Format = strings.ToLower(v)
		case 17:
			f.Compression = v
		}
	}
	return nil
}

func (f *RnxFil) parseRnx2Filename(fn string) error {
	res := Rnx2FileNamePattern.FindStringSubmatch(fn)
	if res == nil {
		return fmt.Errorf("rinex: not a RINEX-2 filename: %q", fn)
	}
	for k, v := range res {
		switch k {
		case 2:
			f.FourCharID = strings.ToUpper(v)
		case 5:
			if res[4] == "0" {
				f.FilePeriod = "01D"
				f.DataFreq = "30S"
			} else if v != "" {
				f.FilePeriod = "15M"
				f.DataFreq = "01S"
			} else {
				f.FilePeriod = "01H"
				f.DataFreq = "30S"
			}
		case 6:
			doy, err := time.Parse("06002", v+res[3])
			if err != nil {
				return fmt.Errorf("rinex: parse day of year: %w", err)
			}
			hr, err := getHourAsDigit(rune(res[4][0]))
			if err != nil {
				return err
			}
			min := 0
			if res[5] != "" && res[5] != "00" {
				min, _ = strconv.Atoi(res[5])
			}
			f.StartTime = doy.Add(time.Duration(hr)*time.Hour + time.Duration(min)*time.Minute)
		case 7:
			switch strings.ToLower(v) {
			case "o":
				f.Format, f.DataType = "rnx", "MO"
			case "d":
				f.Format, f.DataType = "crx", "MO"
			case "n":
				f.Format, f.DataType = "rnx", "GN"
			case "g":
				f.Format, f.DataType = "rnx", "RN"
			default:
				return fmt.Errorf("rinex: cannot determine data type from %q", v)
			}
		case 8:
			f.Compression = v
		}
	}
	return nil
}

// ParseDoy returns the UTC time corresponding to the given two- or
// four-digit year and day-of-year.
func ParseDoy(year, doy int) time.Time {
	y := year
	switch {
	case year > 80 && year <= 99:
		y += 1900
	case year <= 80:
		y += 2000
	}
	t := time.Date(y, 1, 0, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration(doy) * 24 * time.Hour)
}

func getHourAsChar(hr int) string { return string(rune(hr + 97)) }

func getHourAsDigit(c rune) (int, error) {
	hr := int(c) - int('a')
	if hr < 0 || hr > 23 {
		return 0, fmt.Errorf("rinex: invalid hour character %q", c)
	}
	return hr, nil
}

// sysPerAbbr is a local alias of gnss.SysPerAbbr for call sites in this
// package that prefer the shorter name.
var sysPerAbbr = gnss.SysPerAbbr

// ErrUnixCompress is returned by Decompress when Compression is "Z": the
// classic Unix LZW .Z format isn't one archiver recognizes (it only
// understands gz, bz2, xz, zst, lz4 and snappy).
var ErrUnixCompress = errors.New("rinex: Unix .Z decompression is not supported")

// Decompress decompresses f's underlying file into dstDir (auto-detecting
// the algorithm from f.Compression via its filename extension) and returns
// a RnxFil pointing at the decompressed copy with Compression cleared.
// RnxFil.Path itself is left untouched; feed the returned file's Path to a
// decoder.
func (f *RnxFil) Decompress(dstDir string) (*RnxFil, error) {
	if f.Compression == "" {
		return f, nil
	}
	if strings.EqualFold(f.Compression, "Z") {
		return nil, ErrUnixCompress
	}

	dst := filepath.Join(dstDir, strings.TrimSuffix(filepath.Base(f.Path), "."+f.Compression))
	if err := archiver.DecompressFile(f.Path, dst); err != nil {
		return nil, fmt.Errorf("rinex: decompress %q: %w", f.Path, err)
	}

	out := *f
	out.Path = dst
	out.Compression = ""
	return &out, nil
}
