package hatanaka

import (
	"github.com/bkg-gnss/gnsscodec/pkg/epoch"
	"github.com/bkg-gnss/gnsscodec/pkg/gnss"
)

// SignalObservation is one recovered (SV, Observable) measurement.
type SignalObservation struct {
	SV         gnss.SV
	Observable gnss.Observable
	Value      float64
	LLI        int8
	SNR        gnss.SNRIndicator
}

// Record is one recovered RINEX observation epoch: the decompressor's unit
// of output.
type Record struct {
	Epoch        epoch.Epoch
	Flag         gnss.Flag
	ClockOffset  *float64 // seconds, nil if absent this epoch
	Observations []SignalObservation
}

// scalePerKind converts a recovered raw integer (as carried by the
// numerical kernel) into its physical unit. Phase and pseudorange are
// stored at millimeter/milli-cycle resolution (1e-3), matching the
// 14.3-width fixed-point RINEX observation field; Doppler and SNR-derived
// quantities use the same convention for symmetry with the source field
// width.
func scalePerKind(k gnss.ObsKind) float64 {
	switch k {
	case gnss.KindPhase, gnss.KindPseudoRange, gnss.KindDoppler:
		return 1e-3
	default:
		return 1e-3
	}
}
