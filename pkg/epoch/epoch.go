// Package epoch provides timescale-tagged instants for the format codecs.
//
// The codec never silently rebases an epoch to a different timescale:
// crossing timescales always goes through an explicit conversion that
// returns a duration.
package epoch

import (
	"fmt"
	"time"
)

// TimeScale is a GNSS or civil timescale an Epoch may be declared in.
type TimeScale int

// Supported timescales (§3 "Epoch").
const (
	GPST TimeScale = iota + 1
	GST            // Galileo System Time
	BDT            // BeiDou Time
	GLONASST
	UTC
	TAI
	QZSST
	IRNSST
)

func (ts TimeScale) String() string {
	switch ts {
	case GPST:
		return "GPST"
	case GST:
		return "GST"
	case BDT:
		return "BDT"
	case GLONASST:
		return "GLONASST"
	case UTC:
		return "UTC"
	case TAI:
		return "TAI"
	case QZSST:
		return "QZSST"
	case IRNSST:
		return "IRNSST"
	default:
		return "Unknown"
	}
}

// Epoch is an instant paired with the timescale it was read in.
type Epoch struct {
	Time  time.Time
	Scale TimeScale
}

// New returns a new Epoch in the given timescale.
func New(t time.Time, scale TimeScale) Epoch {
	return Epoch{Time: t, Scale: scale}
}

// DeltaTo returns the signed duration from e to other, as measured on the
// wall clock — it does NOT perform any timescale rebasing. Callers that
// need to compare epochs declared in different timescales must convert
// explicitly with ConvertTo first (§9 "Epoch comparison").
func (e Epoch) DeltaTo(other Epoch) time.Duration {
	return other.Time.Sub(e.Time)
}

// ConvertTo returns a new Epoch expressed in the target timescale, applying
// the fixed offset between the two scales' origins. This is an explicit,
// caller-requested operation; nothing in the codec calls it implicitly.
func (e Epoch) ConvertTo(target TimeScale) (Epoch, error) {
	if e.Scale == target {
		return e, nil
	}
	offset, err := offsetSeconds(e.Scale, target)
	if err != nil {
		return Epoch{}, err
	}
	return Epoch{Time: e.Time.Add(time.Duration(offset * float64(time.Second))), Scale: target}, nil
}

// offsetSeconds returns the number of seconds to ADD to a "from"-scale
// reading to express it in "to". Only the fixed, non-leap-second offsets
// the original georust/rinex gnss_time.rs table defines are modeled; UTC
// leap-second history is out of scope (§1 Non-goals: "no timescale
// conversion beyond what is required to parse an epoch in its declared
// scale").
func offsetSeconds(from, to TimeScale) (float64, error) {
	toTAI := map[TimeScale]float64{
		GPST:     19.0,
		QZSST:    19.0,
		GST:      19.0,
		BDT:      33.0, // BDT = GPST - 14s, GPST = TAI - 19s
		GLONASST: 0,    // not expressible as a fixed TAI offset (UTC-linked)
		IRNSST:   19.0,
		TAI:      0,
	}
	if from == GLONASST || to == GLONASST || from == UTC || to == UTC {
		leap := to
		if from == GLONASST || from == UTC {
			leap = from
		}
		return 0, fmt.Errorf("epoch: conversion involving %v requires a leap-second table, which is out of scope", leap)
	}
	fOff, ok := toTAI[from]
	if !ok {
		return 0, fmt.Errorf("epoch: unknown timescale: %v", from)
	}
	tOff, ok := toTAI[to]
	if !ok {
		return 0, fmt.Errorf("epoch: unknown timescale: %v", to)
	}
	return fOff - tOff, nil
}

// DeriveFromSystem returns the timescale a RINEX header should assume when
// it omits an explicit TIME SYSTEM declaration but the file has exactly one
// satellite system (§3 invariant 3).
func DeriveFromSystem(sysAbbr string) (TimeScale, error) {
	switch sysAbbr {
	case "G":
		return GPST, nil
	case "R":
		return GLONASST, nil
	case "E":
		return GST, nil
	case "C":
		return BDT, nil
	case "J":
		return QZSST, nil
	case "I":
		return IRNSST, nil
	default:
		return 0, fmt.Errorf("epoch: cannot derive timescale for system %q: header must declare it explicitly", sysAbbr)
	}
}
