package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMaskOperand(t *testing.T) {
	tests := []struct {
		input string
		want  MaskOperand
		len   int
	}{
		{">=", GreaterEquals, 2},
		{"<=", LowerEquals, 2},
		{"!=", NotEquals, 2},
		{">", GreaterThan, 1},
		{"<", LowerThan, 1},
		{"=", Equals, 1},
	}
	for _, tt := range tests {
		op, n, err := ParseMaskOperand(tt.input)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, op)
		assert.Equal(t, tt.len, n)
	}
}

func TestParseMaskOperandInvalid(t *testing.T) {
	_, _, err := ParseMaskOperand("abc")
	assert.ErrorIs(t, err, ErrInvalidOperand)
}

func TestMaskOperandNot(t *testing.T) {
	tests := []struct {
		op   MaskOperand
		want MaskOperand
	}{
		{Equals, NotEquals},
		{NotEquals, Equals},
		{GreaterThan, LowerThan},
		{GreaterEquals, LowerEquals},
		{LowerThan, GreaterThan},
		{LowerEquals, GreaterEquals},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.Not())
		assert.Equal(t, tt.op, tt.op.Not().Not())
	}
}

func TestMaskOperandFormattedLen(t *testing.T) {
	assert.Equal(t, 1, Equals.formattedLen())
	assert.Equal(t, 2, NotEquals.formattedLen())
	assert.Equal(t, 2, GreaterEquals.formattedLen())
	assert.Equal(t, 2, LowerEquals.formattedLen())
	assert.Equal(t, 1, GreaterThan.formattedLen())
	assert.Equal(t, 1, LowerThan.formattedLen())
}
