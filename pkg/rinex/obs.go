package rinex

import (
	"github.com/bkg-gnss/gnsscodec/pkg/epoch"
	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
)

// ObsHeader is a RINEX observation file header (§4.4): the common fields
// plus the per-constellation observable list and the observation-specific
// timing fields.
type ObsHeader struct {
	CommonHeader

	ObsTypes map[gnss.System][]gnss.Observable

	SignalStrengthUnit string
	Interval           float64
	TimeOfFirstObs     epoch.Epoch
	TimeOfLastObs      epoch.Epoch

	GloSlots map[gnss.SV]int

	NSatellites int
}

// SignalObservation is one recovered (SV, Observable) measurement within an
// observation epoch.
type SignalObservation struct {
	SV         gnss.SV
	Observable gnss.Observable
	Value      float64
	LLI        int8
	SNR        gnss.SNRIndicator
}

// ObsRecord is one observation epoch (§3 "Observation record").
type ObsRecord struct {
	Epoch        epoch.Epoch
	Flag         gnss.Flag
	ClockOffset  *float64
	Observations []SignalObservation
}
