package peg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	peg "github.com/zostay/pegscan"
)

func TestLiteralChar(t *testing.T) {
	p := peg.LiteralChar('x')
	m := p.ParseString("xyz", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.Equal(t, "x", m.Value())
	assert.EqualValues(t, 1, m.Length())

	m = p.ParseString("yz", peg.ParseOptions{})
	assert.False(t, m.IsMatch())
}

func TestLiteralStringCaseInsensitive(t *testing.T) {
	p := peg.LiteralStringCI("Hello")
	m := p.ParseString("HELLO world", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.Equal(t, "HELLO", m.Value())
}

func TestCharInSet(t *testing.T) {
	digit := peg.CharInSet([][2]rune{{'0', '9'}}, nil)
	m := digit.ParseString("7", peg.ParseOptions{})
	require.True(t, m.IsMatch())

	notNine := peg.CharInSet([][2]rune{{'0', '9'}}, []rune{'9'})
	m = notNine.ParseString("9", peg.ParseOptions{})
	assert.False(t, m.IsMatch())
}

func TestEndOfInput(t *testing.T) {
	p := peg.Seq(peg.LiteralString("ok"), peg.EndOfInput())
	require.True(t, p.ParseString("ok", peg.ParseOptions{}).IsMatch())
	assert.False(t, p.ParseString("ok!", peg.ParseOptions{}).IsMatch())
}

// Regex anchors at the cursor: after a leading literal the pattern
// matches starting exactly at the cursor, and digits that only occur
// further along the input do not count as a match.
func TestRegexAnchoredAtCursor(t *testing.T) {
	re, err := peg.Regex(`[0-9]+`, peg.RegexOptions{})
	require.NoError(t, err)
	p := peg.Seq(peg.LiteralChar('x'), re)
	m := p.ParseString("x123", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.Equal(t, "x123", m.Value())
	assert.False(t, p.ParseString("xa123", peg.ParseOptions{}).IsMatch())
}

func TestRemaining(t *testing.T) {
	p := peg.Remaining(2, 4)
	assert.True(t, p.ParseString("abc", peg.ParseOptions{}).IsMatch())
	assert.False(t, p.ParseString("a", peg.ParseOptions{}).IsMatch())
	assert.False(t, p.ParseString("abcdef", peg.ParseOptions{}).IsMatch())
}

func TestRepeatInvalidBoundsPanics(t *testing.T) {
	assert.Panics(t, func() {
		peg.Repeat(peg.LiteralChar('a'), 3, 1)
	})
}

func TestSeqChildNilPanics(t *testing.T) {
	assert.Panics(t, func() {
		peg.Seq(peg.LiteralChar('a'), nil)
	})
}
