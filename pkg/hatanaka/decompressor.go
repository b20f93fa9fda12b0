package hatanaka

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
)

// epochHeaderPattern splits a recovered CRINEX epoch-header line into its
// date/flag/count prefix and the trailing SV-list-plus-clock-offset tail.
// Mirrors the RINEX-2 epoch line layout (§6.1) after Hatanaka recovery.
var epochHeaderPattern = regexp.MustCompile(
	`^\s*(\d{2,4})\s+(\d{1,2})\s+(\d{1,2})\s+(\d{1,2})\s+(\d{1,2})\s+(\d{1,2}(?:\.\d+)?)\s*(\d)\s*(\d+)(.*)$`)

// DefaultOrder is the order the epoch-header text kernel is initialized
// with on every "&"/">" initialization line, matching CRN2RNX's hardcoded
// compromise. Per-(SV,Observable) kernels always take the order given by
// their own "&order" reinitializer.
const DefaultOrder = 5

// Decompressor is a line-by-line CRINEX state machine: it couples the
// epoch-header text kernel, the clock-offset numerical kernel and
// lazily-allocated per-(SV,Observable) numerical kernels (plus small LLI/
// SNR text kernels) to recover a stream of plain RINEX observation
// records (§4.3).
type Decompressor struct {
	sc      *bufio.Scanner
	lineNum int
	err     error

	observables map[gnss.System][]gnss.Observable
	timeScale   epoch.TimeScale
	order       int
	interval    time.Duration

	epochKernel *Kernel
	epochReady  bool

	clockKernel *Kernel
	clockReady  bool

	obsKernels  map[string]*Kernel
	lliKernels  map[string]*Kernel
	snrKernels  map[string]*Kernel
	lastSeen    map[string]epoch.Epoch

	rec Record
}

// NewDecompressor builds a decompressor for a CRINEX body stream. observables
// gives the ordered per-constellation observable list as declared by the
// RINEX header; scale is the timescale epochs are tagged with; interval is
// the nominal sampling period used for gap detection (zero disables it).
func NewDecompressor(r io.Reader, observables map[gnss.System][]gnss.Observable, scale epoch.TimeScale, interval time.Duration) *Decompressor {
	return &Decompressor{
		sc:          bufio.NewScanner(r),
		observables: observables,
		timeScale:   scale,
		order:       DefaultOrder,
		interval:    interval,
		epochKernel: NewKernel(7),
		clockKernel: NewKernel(7),
		obsKernels:  map[string]*Kernel{},
		lliKernels:  map[string]*Kernel{},
		snrKernels:  map[string]*Kernel{},
		lastSeen:    map[string]epoch.Epoch{},
	}
}

// Err returns the first non-EOF error encountered.
func (d *Decompressor) Err() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

// Record returns the most recently decoded observation record.
func (d *Decompressor) Record() Record { return d.rec }

func (d *Decompressor) setErr(err error) {
	d.err = errors.Join(d.err, err)
}

func (d *Decompressor) readLine() bool {
	if ok := d.sc.Scan(); !ok {
		return ok
	}
	d.lineNum++
	return true
}

func (d *Decompressor) line() string { return d.sc.Text() }

// Next recovers the next observation epoch. It returns false at EOF or on
// a fatal error (see Err).
func (d *Decompressor) Next() bool {
	for d.readLine() {
		raw := d.line()
		if len(raw) == 0 {
			continue
		}

		recovered, isInit, err := d.recoverEpochHeader(raw)
		if err != nil {
			d.setErr(fmt.Errorf("hatanaka: line %d: %v", d.lineNum, err))
			return false
		}

		ts, flag, svs, clockTok, err := parseEpochHeader(recovered)
		if err != nil {
			d.setErr(fmt.Errorf("hatanaka: line %d: parse epoch header: %v", d.lineNum, err))
			return false
		}
		ep := epoch.New(ts, d.timeScale)

		if isInit || flag == gnss.FlagCycleSlip || flag == gnss.FlagNewSiteOccupation {
			// Full re-initialization point (invariant 4): every
			// per-(SV,Observable) kernel starts fresh again.
			d.obsKernels = map[string]*Kernel{}
			d.lliKernels = map[string]*Kernel{}
			d.snrKernels = map[string]*Kernel{}
			d.clockReady = false
		}

		clockOffset, err := d.recoverClock(clockTok)
		if err != nil {
			d.setErr(fmt.Errorf("hatanaka: line %d: clock offset: %v", d.lineNum, err))
			return false
		}

		obs := make([]SignalObservation, 0, len(svs)*4)
		for _, sv := range svs {
			obsTypes := d.observables[sv.Sys]
			if !d.readLine() {
				d.setErr(fmt.Errorf("hatanaka: unexpected EOF reading body line for %s", sv))
				return false
			}
			fields := strings.Split(d.line(), " ")
			if len(fields) < len(obsTypes) {
				// Pad: a short line means trailing observables are absent.
				for len(fields) < len(obsTypes) {
					fields = append(fields, "")
				}
			}
			for i, o := range obsTypes {
				so, gap, err := d.recoverField(sv, o, ep, fields[i])
				if err != nil {
					d.setErr(fmt.Errorf("hatanaka: line %d: %s %s: %v", d.lineNum, sv, o, err))
					return false
				}
				if gap {
					continue
				}
				obs = append(obs, so)
			}
		}

		d.rec = Record{Epoch: ep, Flag: flag, ClockOffset: clockOffset, Observations: obs}
		return true
	}

	if err := d.sc.Err(); err != nil {
		d.setErr(fmt.Errorf("hatanaka: read: %v", err))
	}
	return false
}

// recoverEpochHeader handles the "&"/">" initialization-line convention
// (§4.3 step 1) and returns the plain recovered header text.
func (d *Decompressor) recoverEpochHeader(raw string) (recovered string, isInit bool, err error) {
	if strings.HasPrefix(raw, "&") || strings.HasPrefix(raw, ">") {
		seed := raw[1:]
		if initErr := d.epochKernel.Init(d.order, TextValue(seed)); initErr != nil {
			return "", false, initErr
		}
		d.epochReady = true
		return seed, true, nil
	}
	if !d.epochReady {
		return "", false, fmt.Errorf("epoch-header kernel used before initialization")
	}
	v, err := d.epochKernel.Recover(TextValue(raw))
	if err != nil {
		return "", false, err
	}
	return v.Text, false, nil
}

// recoverClock applies the clock-offset protocol (§4.3 step 3): a bare
// "&order seed" token reinitializes the kernel, an empty token means "no
// offset this epoch", otherwise the token is an integer difference fed
// through the numerical kernel and scaled by 1e-12 s.
func (d *Decompressor) recoverClock(tok string) (*float64, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, nil
	}
	if strings.HasPrefix(tok, "&") {
		parts := strings.Fields(tok)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed clock reinit token: %q", tok)
		}
		order, err := strconv.Atoi(strings.TrimPrefix(parts[0], "&"))
		if err != nil {
			return nil, fmt.Errorf("clock reinit order: %w", err)
		}
		seed, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("clock reinit seed: %w", err)
		}
		if err := d.clockKernel.Init(order, NumValue(seed)); err != nil {
			return nil, err
		}
		d.clockReady = true
		v := float64(seed) * 1e-12
		return &v, nil
	}
	if !d.clockReady {
		return nil, fmt.Errorf("clock kernel used before initialization")
	}
	diff, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse clock diff: %w", err)
	}
	v, err := d.clockKernel.Recover(NumValue(diff))
	if err != nil {
		return nil, err
	}
	val := float64(v.Num) * 1e-12
	return &val, nil
}

// recoverField decodes one "[&o[m]]? diff [LLI][SNR]" body field (§4.3
// step 4). gap reports that the field was empty (observation missing this
// epoch, not an error).
func (d *Decompressor) recoverField(sv gnss.SV, o gnss.Observable, ep epoch.Epoch, field string) (so SignalObservation, gap bool, err error) {
	key := sv.String() + "|" + o.Code
	field = strings.TrimRight(field, "\r")
	if field == "" {
		return SignalObservation{}, true, nil
	}

	// Data-gap detection (§4.3): a kernel whose last update for this
	// (SV, Observable) precedes the nominal sampling period is stale and
	// must be dropped, forcing the "need init" path below until the
	// stream re-seeds it with a "&" marker.
	if d.interval > 0 {
		if last, ok := d.lastSeen[key]; ok {
			if last.DeltaTo(ep) > d.interval+d.interval/2 {
				delete(d.obsKernels, key)
			}
		}
	}

	numTok := field
	var lli, snrDigit string

	if strings.HasPrefix(field, "&") {
		// "&order value[LLI][SNR]": the order is the single digit right
		// after "&" (orders never exceed 7); the numeric token starts
		// right after it.
		i := 1
		if i < len(field) && field[i] >= '0' && field[i] <= '9' {
			i++
		}
		order, err := strconv.Atoi(field[1:i])
		if err != nil {
			return SignalObservation{}, false, fmt.Errorf("malformed reinit token: %q", field)
		}
		rest := field[i:]
		numTok, lli, snrDigit = splitValueFlags(rest)
		seed, err := strconv.ParseInt(numTok, 10, 64)
		if err != nil {
			return SignalObservation{}, false, fmt.Errorf("reinit seed: %w", err)
		}
		k := d.obsKernels[key]
		if k == nil {
			k = NewKernel(7)
			d.obsKernels[key] = k
		}
		if err := k.Init(order, NumValue(seed)); err != nil {
			return SignalObservation{}, false, err
		}
		so = SignalObservation{SV: sv, Observable: o, Value: float64(seed) * scalePerKind(o.Kind)}
	} else {
		numTok, lli, snrDigit = splitValueFlags(field)
		k := d.obsKernels[key]
		if k == nil {
			// Missing initialization on a non-seeded kernel is not fatal:
			// the affected observation is dropped (§4.3 failure modes).
			log.Printf("hatanaka: %s: kernel not initialized, dropping observation", key)
			return SignalObservation{}, true, nil
		}
		diff, err := strconv.ParseInt(numTok, 10, 64)
		if err != nil {
			return SignalObservation{}, false, fmt.Errorf("parse diff: %w", err)
		}
		v, err := k.Recover(NumValue(diff))
		if err != nil {
			return SignalObservation{}, false, err
		}
		so = SignalObservation{SV: sv, Observable: o, Value: float64(v.Num) * scalePerKind(o.Kind)}
	}

	if lli != "" {
		lk := d.flagKernel(d.lliKernels, key)
		v, err := lk.Recover(TextValue(lli))
		if err != nil {
			log.Printf("hatanaka: LLI flag kernel for %s: %v", key, err)
		} else if len(v.Text) > 0 && v.Text[0] >= '0' && v.Text[0] <= '7' {
			so.LLI = int8(v.Text[0] - '0')
		}
	}
	if snrDigit != "" {
		sk := d.flagKernel(d.snrKernels, key)
		v, err := sk.Recover(TextValue(snrDigit))
		if err != nil {
			log.Printf("hatanaka: SNR flag kernel for %s: %v", key, err)
		} else if len(v.Text) > 0 && v.Text[0] >= '0' && v.Text[0] <= '9' {
			so.SNR = gnss.SNRIndicator(v.Text[0] - '0')
		}
	}

	d.lastSeen[key] = ep
	return so, false, nil
}

func (d *Decompressor) flagKernel(kernels map[string]*Kernel, key string) *Kernel {
	k := kernels[key]
	if k == nil {
		k = NewKernel(1)
		_ = k.Init(0, TextValue(" "))
		kernels[key] = k
	}
	return k
}

func splitValueFlags(s string) (value, lli, snr string) {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	value = s[:i]
	rest := s[i:]
	if len(rest) > 0 {
		lli = rest[:1]
	}
	if len(rest) > 1 {
		snr = rest[1:2]
	}
	return value, lli, snr
}

// parseEpochHeader parses a recovered plain epoch-header line into its
// timestamp, flag, ordered SV list and raw clock-offset token.
func parseEpochHeader(line string) (time.Time, gnss.Flag, []gnss.SV, string, error) {
	m := epochHeaderPattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, 0, nil, "", fmt.Errorf("malformed epoch header: %q", line)
	}
	year, _ := strconv.Atoi(m[1])
	if year < 100 {
		if year < 80 {
			year += 2000
		} else {
			year += 1900
		}
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	secF, _ := strconv.ParseFloat(m[6], 64)
	sec := int(secF)
	nsec := int((secF - float64(sec)) * 1e9)
	ts := time.Date(year, time.Month(month), day, hour, minute, sec, nsec, time.UTC)

	flagN, _ := strconv.Atoi(m[7])
	flag := gnss.Flag(flagN)

	n, err := strconv.Atoi(m[8])
	if err != nil {
		return time.Time{}, 0, nil, "", fmt.Errorf("parse SV count: %w", err)
	}

	tail := m[9]
	svs := make([]gnss.SV, 0, n)
	pos := 0
	for i := 0; i < n; i++ {
		if pos+3 > len(tail) {
			break
		}
		sv, err := gnss.NewSV(tail[pos : pos+3])
		if err != nil {
			return time.Time{}, 0, nil, "", fmt.Errorf("parse SV token: %w", err)
		}
		svs = append(svs, sv)
		pos += 3
	}
	clockTok := ""
	if pos < len(tail) {
		clockTok = strings.TrimSpace(tail[pos:])
	}
	return ts, flag, svs, clockTok, nil
}
