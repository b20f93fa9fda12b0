package preprocess

import "time"

// DecimationKind selects how a DecimationFilter thins a sorted epoch
// stream (§4.8).
type DecimationKind int

const (
	// DecimationModulo keeps every Rth epoch (the first epoch is always
	// kept).
	DecimationModulo DecimationKind = iota + 1
	// DecimationDuration keeps the first epoch, then only epochs that are
	// at least Interval past the last kept one.
	DecimationDuration
)

// DecimationFilter is a single decimation rule applied to a sorted (by
// epoch) stream of keys. Item, when non-nil, would restrict decimation to
// a single FilterItem target; grounded on doris_decim_mut, which leaves
// this ("targetted decimation") unimplemented (`todo!()`), so it is
// mirrored here as unsupported rather than silently ignored.
type DecimationFilter struct {
	Kind     DecimationKind
	Modulo   uint     // used when Kind == DecimationModulo
	Interval time.Duration // used when Kind == DecimationDuration
	Item     *FilterItem   // non-nil means "restrict to this target"
}

// Keep reports, for each epoch in a sorted-ascending stream, whether it
// survives decimation. Call it once per epoch in order; it is stateful
// across calls for a single logical stream, so use a fresh DecimationState
// per stream.
type DecimationState struct {
	filter    DecimationFilter
	count     uint
	lastKept  time.Time
	hasKept   bool
}

// NewDecimationState returns a stateful decimator for f. Returns
// ErrTargetedDecimation if f.Item is set.
func NewDecimationState(f DecimationFilter) (*DecimationState, error) {
	if f.Item != nil {
		return nil, ErrTargetedDecimation
	}
	return &DecimationState{filter: f}, nil
}

// Keep reports whether epoch survives decimation, given all previously
// seen epochs in this stream (which must be presented in non-decreasing
// order).
func (d *DecimationState) Keep(epoch time.Time) bool {
	switch d.filter.Kind {
	case DecimationModulo:
		r := d.filter.Modulo
		if r == 0 {
			r = 1
		}
		keep := d.count%r == 0
		d.count++
		return keep
	case DecimationDuration:
		if !d.hasKept {
			d.hasKept = true
			d.lastKept = epoch
			return true
		}
		if epoch.Sub(d.lastKept) >= d.filter.Interval {
			d.lastKept = epoch
			return true
		}
		return false
	default:
		return true
	}
}

// Decimate returns the indices (into epochs) of the epochs that survive;
// epochs itself is not modified. epochs must already be sorted ascending.
func Decimate(f DecimationFilter, epochs []time.Time) ([]int, error) {
	state, err := NewDecimationState(f)
	if err != nil {
		return nil, err
	}
	kept := make([]int, 0, len(epochs))
	for i, e := range epochs {
		if state.Keep(e) {
			kept = append(kept, i)
		}
	}
	return kept, nil
}
