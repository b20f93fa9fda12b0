package binex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Only these two numeric FID values are pinned by a worked example:
// FID_Comment=0x00, FID_Climatic=0x0E.
func TestFieldIDWireValues(t *testing.T) {
	assert.Equal(t, FieldID(0x00), FieldComment)
	assert.Equal(t, FieldID(0x0E), FieldClimatic)
}

func TestFieldIDFromUnknown(t *testing.T) {
	assert.Equal(t, FieldUnknown, fieldIDFrom(0xFFFF))
}

func TestFieldIDRepeatable(t *testing.T) {
	assert.True(t, FieldComment.repeatable())
	assert.False(t, FieldClimatic.repeatable())
}
