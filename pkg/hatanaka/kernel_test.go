package hatanaka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernel_NumericalCompression(t *testing.T) {
	k := NewKernel(5)
	require.NoError(t, k.Init(3, NumValue(25065408994)))

	data := []int64{
		25071327754, 25077338954, 25083442354, 25089637634, 25095924634,
		25102302774, 25108772414, 25115332174, 25121982274, 25128722574,
	}
	expected := []int64{
		5918760, 92440, -240, -320, -160, -580, 360, -1380, 220, -140,
	}

	for i, v := range data {
		got, err := k.Compress(NumValue(v))
		require.NoError(t, err)
		assert.Equal(t, expected[i], got.Num)
	}
}

func TestKernel_NumericalRecovery(t *testing.T) {
	k := NewKernel(5)
	require.NoError(t, k.Init(3, NumValue(25065408994)))

	diffs := []int64{
		5918760, 92440, -240, -320, -160, -580, 360, -1380, 220, -140,
	}
	expected := []int64{
		25071327754, 25077338954, 25083442354, 25089637634, 25095924634,
		25102302774, 25108772414, 25115332174, 25121982274, 25128722574,
	}

	for i, d := range diffs {
		got, err := k.Recover(NumValue(d))
		require.NoError(t, err)
		assert.Equal(t, expected[i], got.Num)
	}

	// Re-init restarts the difference order from scratch.
	require.NoError(t, k.Init(3, NumValue(24701300559)))
	diffs2 := []int64{
		-19542118, 29235, -38, 1592, -931, 645, 1001, -1038, 2198, -2679, 2804, -892,
	}
	expected2 := []int64{
		24681758441, 24662245558, 24642761872, 24623308975, 24603885936,
		24584493400, 24565132368, 24545801802, 24526503900, 24507235983,
		24488000855, 24468797624,
	}
	for i, d := range diffs2 {
		got, err := k.Recover(NumValue(d))
		require.NoError(t, err)
		assert.Equal(t, expected2[i], got.Num)
	}
}

func TestKernel_TextCompression(t *testing.T) {
	k := NewKernel(5)
	require.NoError(t, k.Init(0, TextValue("Default Phrase 1234")))

	got, err := k.Compress(TextValue("DEfault Phrase 1234"))
	require.NoError(t, err)
	assert.Equal(t, " E                 ", got.Text)

	got, err = k.Compress(TextValue("DEfault Phrase 1234"))
	require.NoError(t, err)
	assert.Equal(t, "                   ", got.Text)

	got, err = k.Compress(TextValue("DEFault Phrase 1234"))
	require.NoError(t, err)
	assert.Equal(t, "  F                ", got.Text)

	got, err = k.Compress(TextValue("DEFault Phrase 1234  "))
	require.NoError(t, err)
	assert.Equal(t, "                     ", got.Text)

	got, err = k.Compress(TextValue("&EFault Phrase 1234  "))
	require.NoError(t, err)
	assert.Equal(t, "                     ", got.Text)

	got, err = k.Compress(TextValue("__&abcd Phrase 1222    "))
	require.NoError(t, err)
	assert.Equal(t, "__  bcd          22    ", got.Text)
}

func TestKernel_TextRecovery(t *testing.T) {
	k := NewKernel(5)
	require.NoError(t, k.Init(3, TextValue("ABCDEFG 12 000 33 XXACQmpLf")))

	masks := []string{
		"        13   1 44 xxACq   F",
		" 11 22   x   0 4  y     p  ",
		"              1     ",
		"                   z",
		" ",
	}
	expected := []string{
		"ABCDEFG 13 001 44 xxACqmpLF",
		"A11D22G 1x 000 44 yxACqmpLF",
		"A11D22G 1x 000144 yxACqmpLF",
		"A11D22G 1x 000144 yzACqmpLF",
		"A11D22G 1x 000144 yzACqmpLF",
	}
	for i, m := range masks {
		got, err := k.Recover(TextValue(m))
		require.NoError(t, err)
		assert.Equal(t, expected[i], got.Text)
	}

	require.NoError(t, k.Init(3, TextValue(" 2200 123      G 07G08G09G   XX XX")))
	masks2 := []string{
		"        F       1  3",
		" x    1 f  f   p",
		" ",
		"  3       4       ",
	}
	expected2 := []string{
		" 2200 12F      G107308G09G   XX XX",
		" x200 12f  f   p107308G09G   XX XX",
		" x200 12f  f   p107308G09G   XX XX",
		" x300 12f 4f   p107308G09G   XX XX",
	}
	for i, m := range masks2 {
		got, err := k.Recover(TextValue(m))
		require.NoError(t, err)
		assert.Equal(t, expected2[i], got.Text)
	}
}

func TestKernel_TypeMismatch(t *testing.T) {
	k := NewKernel(5)
	require.NoError(t, k.Init(3, NumValue(42)))
	_, err := k.Compress(TextValue("x"))
	require.Error(t, err)
}

func TestKernel_OrderTooBig(t *testing.T) {
	k := NewKernel(3)
	err := k.Init(5, NumValue(1))
	require.Error(t, err)
}
