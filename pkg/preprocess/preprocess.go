// Package preprocess implements the mask-filter and decimation primitives
// shared by every record parser (§4.8): a small text DSL describing which
// (epoch, SV, observable, ...) tuples to keep or drop, plus modulo- and
// duration-based decimation over a sorted-by-epoch key stream.
//
// Record-specific appliers (observation/navigation/meteo/DORIS) own the
// decision of which tuple fields a given FilterItem kind constrains; this
// package only parses the DSL and supplies the small set of predicates and
// generic epoch-keyed helpers that are identical across record kinds.
package preprocess

import "errors"

// Errors returned while parsing or applying a mask/decimation filter.
var (
	ErrMissingOperand     = errors.New("preprocess: missing mask operand")
	ErrInvalidOperand     = errors.New("preprocess: invalid mask operand")
	ErrInvalidDescriptor  = errors.New("preprocess: invalid mask description")
	ErrUnsupportedTarget  = errors.New("preprocess: unsupported mask target")
	ErrTargetedDecimation = errors.New("preprocess: targeted decimation is not supported")
)
