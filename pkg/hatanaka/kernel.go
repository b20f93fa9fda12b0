// Package hatanaka implements the Hatanaka (CRINEX) differential compression
// kernels: a numerical finite-difference kernel for observation/clock values
// and a character-wise text-diff kernel for epoch-header lines.
package hatanaka

import (
	"fmt"
)

// Value is a single Hatanaka-kernel value: either the numerical flavor
// (observation/clock data, scaled to an integer) or the text flavor (epoch
// header lines and per-observation flag pairs).
type Value struct {
	IsText bool
	Num    int64
	Text   string
}

// NumValue wraps an integer value for a numerical kernel.
func NumValue(v int64) Value { return Value{Num: v} }

// TextValue wraps a string value for a text kernel.
func TextValue(s string) Value { return Value{IsText: true, Text: s} }

// Kernel compresses or recovers one stream of values of a single flavor
// (numerical or text), using the recursive differential scheme of order m
// defined by Y. Hatanaka. MaxOrder is fixed at construction time; Init may
// select any order up to MaxOrder.
type Kernel struct {
	maxOrder int

	initialized bool
	isText      bool
	order       int
	m           int

	// history holds the most recent `order` raw numerical values, most
	// recent first. Only populated for numerical kernels.
	history []int64

	// prevText holds the most recently recovered/compressed-against text
	// value. Only populated for text kernels.
	prevText string
}

// NewKernel builds a kernel that will never be asked to operate at an order
// greater than maxOrder. 5 is a typical choice, matching CRN2RNX.
func NewKernel(maxOrder int) *Kernel {
	return &Kernel{maxOrder: maxOrder}
}

// Init (re)initializes the kernel at the given order with a seed value,
// resetting m to 0. Numerical and text kernels cannot be mixed: once a
// kernel is initialized with one flavor, Compress/Recover calls of the
// other flavor fail until the next Init.
func (k *Kernel) Init(order int, seed Value) error {
	if order > k.maxOrder {
		return fmt.Errorf("hatanaka: order %d exceeds kernel max %d", order, k.maxOrder)
	}
	k.order = order
	k.m = 0
	k.isText = seed.IsText
	k.initialized = true
	if seed.IsText {
		k.prevText = seed.Text
		k.history = nil
	} else {
		k.history = []int64{seed.Num}
		k.prevText = ""
	}
	return nil
}

// Reset is an alias for re-running Init with the same order. The
// Decompressor does not call it: after a data gap or cycle slip it discards
// the affected kernels and waits for the stream to re-seed them.
func (k *Kernel) Reset(seed Value) error {
	return k.Init(k.order, seed)
}

// Compress advances the kernel one step, returning the m-th order
// difference (numerical) or the character-wise diff mask (text).
func (k *Kernel) Compress(v Value) (Value, error) {
	if !k.initialized {
		return Value{}, fmt.Errorf("hatanaka: kernel not initialized")
	}
	if v.IsText != k.isText {
		return Value{}, fmt.Errorf("hatanaka: type mismatch: kernel initialized for %s data", flavor(k.isText))
	}
	if k.isText {
		return TextValue(k.textCompress(v.Text)), nil
	}
	diff := k.numericalStep(v.Num)
	return NumValue(diff), nil
}

// Recover advances the kernel one step, returning the reconstructed raw
// value (numerical) or the reconstructed plain text line (text).
func (k *Kernel) Recover(v Value) (Value, error) {
	if !k.initialized {
		return Value{}, fmt.Errorf("hatanaka: kernel not initialized")
	}
	if v.IsText != k.isText {
		return Value{}, fmt.Errorf("hatanaka: type mismatch: kernel initialized for %s data", flavor(k.isText))
	}
	if k.isText {
		return TextValue(k.textRecover(v.Text)), nil
	}
	raw := k.numericalUnstep(v.Num)
	return NumValue(raw), nil
}

func flavor(isText bool) string {
	if isText {
		return "text"
	}
	return "numerical"
}

// numericalStep computes the forward m-th order difference for a new raw
// value and rotates it into history.
//
// Δᵐv(t) = Σ_{i=0}^{m} (-1)^i C(m,i) v(t-i), with m = min(m_prev+1, order)
// and v(t-i) for i>=1 drawn from the last `order` raw values seen.
func (k *Kernel) numericalStep(v int64) int64 {
	k.m++
	if k.m > k.order {
		k.m = k.order
	}
	diff := alternatingSum(k.m, v, k.history)
	k.pushHistory(v)
	return diff
}

// numericalUnstep is the inverse of numericalStep: given the m-th order
// difference, reconstructs the raw value from history and rotates it in.
func (k *Kernel) numericalUnstep(diff int64) int64 {
	k.m++
	if k.m > k.order {
		k.m = k.order
	}
	// diff = v + Σ_{i=1}^m (-1)^i C(m,i) history[i-1]
	// so v  = diff - Σ_{i=1}^m (-1)^i C(m,i) history[i-1]
	raw := diff - alternatingSum(k.m, 0, k.history)
	k.pushHistory(raw)
	return raw
}

func (k *Kernel) pushHistory(v int64) {
	hist := make([]int64, 0, k.order)
	hist = append(hist, v)
	hist = append(hist, k.history...)
	if len(hist) > k.order {
		hist = hist[:k.order]
	}
	k.history = hist
}

// alternatingSum computes Σ_{i=0}^{m} (-1)^i C(m,i) * val_i where val_0 is
// newVal and val_i (i>=1) is hist[i-1] (0 if hist is shorter than needed).
func alternatingSum(m int, newVal int64, hist []int64) int64 {
	sum := newVal
	sign := int64(-1)
	for i := 1; i <= m; i++ {
		var prev int64
		if i-1 < len(hist) {
			prev = hist[i-1]
		}
		sum += sign * binomial(m, i) * prev
		sign = -sign
	}
	return sum
}

// binomial returns C(n,k) for the small n (<=7) this kernel ever uses.
func binomial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	result := int64(1)
	for i := 0; i < k; i++ {
		result = result * int64(n-i) / int64(i+1)
	}
	return result
}

// textCompress emits a mask with one character per character of s: a space
// where s matches the previous character, s itself where it differs or
// extends past the previous string, and "&" consumed (collapsed to a
// literal space) wherever s explicitly requests a forced space.
func (k *Kernel) textCompress(s string) string {
	prev := []rune(k.prevText)
	var result []rune
	pi := 0
	for _, c := range s {
		if c == '&' {
			result = append(result, ' ')
			pi++ // consume (overwrite) the corresponding previous character
			continue
		}
		if pi < len(prev) {
			if c == prev[pi] {
				result = append(result, ' ')
			} else {
				result = append(result, c)
			}
			pi++
		} else {
			result = append(result, c)
		}
	}
	// The new previous value is s with '&' collapsed to a literal space.
	k.prevText = stringsReplaceAmp(s)
	return string(result)
}

// textRecover reconstructs the plain text line from a compressed mask
// against the stored previous string: mask space means "unchanged", mask
// alnum means "overwrite with this character", mask "&" means "force a
// space here", and any mask character beyond the previous string's length
// extends the recovered string (a trailing non-alnum, non-"&" mask
// character beyond that length is simply dropped).
func (k *Kernel) textRecover(mask string) string {
	prev := []rune(k.prevText)
	maskRunes := []rune(mask)
	var recovered []rune

	for i := 0; i < len(prev); i++ {
		if i < len(maskRunes) {
			c := maskRunes[i]
			switch {
			case c == '&':
				recovered = append(recovered, ' ')
			case isAlnum(c):
				recovered = append(recovered, c)
			default:
				recovered = append(recovered, prev[i])
			}
		} else {
			recovered = append(recovered, prev[i])
		}
	}
	for i := len(prev); i < len(maskRunes); i++ {
		c := maskRunes[i]
		switch {
		case c == '&':
			recovered = append(recovered, ' ')
		case isAlnum(c):
			recovered = append(recovered, c)
		}
	}

	k.prevText = string(recovered)
	return k.prevText
}

func isAlnum(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func stringsReplaceAmp(s string) string {
	out := []rune(s)
	for i, c := range out {
		if c == '&' {
			out[i] = ' '
		}
	}
	return string(out)
}
