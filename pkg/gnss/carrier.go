package gnss

import "fmt"

// Carrier identifies a frequency band and tracking channel/attribute, e.g.
// "1C" (L1 C/A) or "2W" (L2 P(Y), Z-tracking).
type Carrier struct {
	Band      int    // 1, 2, 5, 6, 7, 8, 9 ...
	Attribute string // tracking channel/attribute letter(s), e.g. "C", "W", "X"
}

func (c Carrier) String() string {
	return fmt.Sprintf("%d%s", c.Band, c.Attribute)
}

// parseCarrier parses the band+attribute suffix of a RINEX-3+ observation
// code, e.g. "1C" from "L1C".
func parseCarrier(suffix string) (Carrier, error) {
	if len(suffix) < 1 {
		return Carrier{}, fmt.Errorf("gnss: empty carrier suffix")
	}
	band := int(suffix[0] - '0')
	if band < 0 || band > 9 {
		return Carrier{}, fmt.Errorf("gnss: invalid carrier band in %q", suffix)
	}
	return Carrier{Band: band, Attribute: suffix[1:]}, nil
}

// SNRIndicator is the RINEX single-digit signal-to-noise indicator (§3).
type SNRIndicator int8

// SNR buckets as defined by the RINEX-2 Obs format, carried through RINEX-3+
// unchanged for compatibility.
const (
	SNRUnknown     SNRIndicator = 0
	SNRMinimum     SNRIndicator = 1
	SNR12to12dBHz  SNRIndicator = 2
	SNR18to23dBHz  SNRIndicator = 3
	SNR24to29dBHz  SNRIndicator = 4
	SNR30to35dBHz  SNRIndicator = 5
	SNR36to41dBHz  SNRIndicator = 6
	SNR42to47dBHz  SNRIndicator = 7
	SNR48to53dBHz  SNRIndicator = 8
	SNRMaximum     SNRIndicator = 9
)

// Flag is the observation epoch flag (§3 "Observation flag").
type Flag int8

const (
	FlagOk Flag = iota
	FlagPowerFailure
	FlagAntennaMoved
	FlagNewSiteOccupation
	FlagHeaderFollows
	FlagExternalEvent
	FlagCycleSlip
)

func (f Flag) String() string {
	switch f {
	case FlagOk:
		return "Ok"
	case FlagPowerFailure:
		return "PowerFailure"
	case FlagAntennaMoved:
		return "AntennaMoved"
	case FlagNewSiteOccupation:
		return "NewSiteOccupation"
	case FlagHeaderFollows:
		return "HeaderFollows"
	case FlagExternalEvent:
		return "ExternalEvent"
	case FlagCycleSlip:
		return "CycleSlip"
	default:
		return "Unknown"
	}
}
