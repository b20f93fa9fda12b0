package preprocess

import "strings"

// MaskFilter is a single `{item, operand}` mask (§4.8).
type MaskFilter struct {
	Item    FilterItem
	Operand MaskOperand
}

// Not returns the logical complement of mf: the operand is inverted, the
// item is kept as-is (grounded on qc-traits' MaskFilter::not, which only
// flips the operand).
func (mf MaskFilter) Not() MaskFilter {
	return MaskFilter{Item: mf.Item, Operand: mf.Operand.Not()}
}

// sigilElevation, sigilAzimuth and sigilSNR are the type-tagging prefixes
// a mask descriptor uses when the operand follows the item rather than
// preceding it (§4.8: "elevation/azimuth/SNR... type-tagged by a leading
// sigil").
const (
	sigilElevation = "e"
	sigilAzimuth   = "a"
	sigilSNR       = "snr"
)

// ParseMaskFilter parses a mask descriptor such as "e>1.0", ">2024-01-01T00:00:00 UTC",
// "=GPS,GAL" or "G08,G09" (operand omitted implies Equals) into a MaskFilter.
func ParseMaskFilter(s string) (MaskFilter, error) {
	trimmed := strings.TrimLeft(s, " \t")
	if len(trimmed) < 2 {
		return MaskFilter{}, ErrInvalidDescriptor
	}

	op, opLen, offset, found := locateOperand(trimmed)

	if found && offset > 0 {
		// A prefix precedes the operand: this is only valid for the
		// sigil-tagged elevation/azimuth/SNR forms (§4.8).
		prefix := trimmed[:offset]
		value := strings.TrimSpace(trimmed[offset+opLen:])
		switch {
		case strings.HasPrefix(prefix, sigilElevation):
			v, ok := parseFloatToken(value)
			if !ok {
				return MaskFilter{}, ErrInvalidDescriptor
			}
			return MaskFilter{Operand: op, Item: FilterItem{Kind: ItemElevation, Elevation: v}}, nil
		case strings.HasPrefix(prefix, sigilAzimuth):
			v, ok := parseFloatToken(value)
			if !ok {
				return MaskFilter{}, ErrInvalidDescriptor
			}
			return MaskFilter{Operand: op, Item: FilterItem{Kind: ItemAzimuth, Azimuth: v}}, nil
		case strings.HasPrefix(prefix, sigilSNR):
			v, ok := parseFloatToken(value)
			if !ok {
				return MaskFilter{}, ErrInvalidDescriptor
			}
			return MaskFilter{Operand: op, Item: FilterItem{Kind: ItemSNR, SNR: v}}, nil
		default:
			return MaskFilter{}, ErrUnsupportedTarget
		}
	}

	// No prefix before the operand (or no operand at all: omitted implies
	// Equals): type-guess the remainder.
	rest := trimmed
	if found {
		rest = trimmed[offset+opLen:]
	} else {
		op = Equals
	}
	item, err := ParseFilterItem(strings.TrimLeft(rest, " \t"))
	if err != nil {
		return MaskFilter{}, err
	}
	return MaskFilter{Operand: op, Item: item}, nil
}

// locateOperand scans s for the first operand character and reports its
// exact position and byte length (1 for =, < or >; 2 for !=, <= or >=).
// Unlike qc-traits' MaskFilter::from_str, this checks the literal operator
// position rather than trimming each candidate window first -- the
// upstream trim-then-prefix-match approach can report the operand's
// position as the whitespace just before it, which only produces the
// right value offset when the descriptor happens to pad both sides of the
// operator with exactly one space; this version reports the operator's
// own position unconditionally, and the value is recovered by trimming
// *after* slicing rather than by arithmetic on assumed spacing.
func locateOperand(s string) (op MaskOperand, opLen, offset int, found bool) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '>':
			if i+1 < len(s) && s[i+1] == '=' {
				return GreaterEquals, 2, i, true
			}
			return GreaterThan, 1, i, true
		case '<':
			if i+1 < len(s) && s[i+1] == '=' {
				return LowerEquals, 2, i, true
			}
			return LowerThan, 1, i, true
		case '=':
			return Equals, 1, i, true
		case '!':
			if i+1 < len(s) && s[i+1] == '=' {
				return NotEquals, 2, i, true
			}
		}
	}
	return 0, 0, 0, false
}
