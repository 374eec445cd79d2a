package peg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	peg "github.com/zostay/pegscan"
)

func digitListGrammar() (a, b *peg.Parser) {
	return peg.CharInSet([][2]rune{{'0', '9'}}, nil), peg.LiteralChar(',')
}

// S2 — DelimitedList: a trailing separator is not consumed.
func TestDelimitedList(t *testing.T) {
	a, b := digitListGrammar()
	p := peg.Delimited(a, b)

	m := p.ParseString("1,2,3", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.EqualValues(t, 0, m.Offset())
	assert.EqualValues(t, 5, m.Right())

	m = p.ParseString("1,2,", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.EqualValues(t, 3, m.Right())
}

// S3 — TerminatedList: an incomplete trailing pair is dropped.
func TestTerminatedList(t *testing.T) {
	a, b := digitListGrammar()
	b = peg.LiteralChar(';')
	p := peg.Terminated(a, b)

	m := p.ParseString("1;2;3;", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.EqualValues(t, 6, m.Right())

	m = p.ParseString("1;2;3", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.EqualValues(t, 4, m.Right())

	m = p.ParseString("3", peg.ParseOptions{})
	assert.False(t, m.IsMatch())
}

// S4 — Difference: succeeds only when a matches and b does not.
func TestDifference(t *testing.T) {
	keyword := peg.LiteralString("if")
	identChar := peg.CharInSet([][2]rune{{'a', 'z'}}, nil)
	notKeyword := peg.Diff(identChar, keyword)

	m := peg.LiteralString("if").ParseString("if", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.False(t, notKeyword.ParseString("if", peg.ParseOptions{}).IsMatch())

	// "if" as a whole word is excluded by the longer literal, but a
	// single identifier letter that isn't the start of "if" passes.
	onlyI := peg.Diff(peg.LiteralChar('i'), peg.LiteralString("if"))
	assert.False(t, onlyI.ParseString("if", peg.ParseOptions{}).IsMatch())
	assert.True(t, onlyI.ParseString("in", peg.ParseOptions{}).IsMatch())
}

func TestUnionOrderedChoice(t *testing.T) {
	p := peg.Or(peg.LiteralString("int"), peg.LiteralString("in"))
	m := p.ParseString("int", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.Equal(t, "int", m.Value())
}

func TestXor(t *testing.T) {
	p := peg.Xor(peg.LiteralChar('a'), peg.CharInSet([][2]rune{{'a', 'z'}}, nil))
	// both "a" alternatives match 'a' -> Xor must fail
	assert.False(t, p.ParseString("a", peg.ParseOptions{}).IsMatch())

	p2 := peg.Xor(peg.LiteralChar('a'), peg.LiteralChar('b'))
	m := p2.ParseString("a", peg.ParseOptions{})
	require.True(t, m.IsMatch())
}

func TestIntersectionSpansUnion(t *testing.T) {
	// "abc" matched both by a 3-char literal and a 1-char literal
	// anchored at the same cursor; the combined span is the
	// union of both ranges.
	abc := peg.LiteralString("abc")
	a := peg.LiteralChar('a')
	p := peg.And(abc, a)
	m := p.ParseString("abc", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.EqualValues(t, 3, m.Right())
}

func TestRepeatNoProgressGuard(t *testing.T) {
	p := peg.ZeroOrMore(peg.Empty())
	m := p.ParseString("anything", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.EqualValues(t, 0, m.Right())
}

// S5 — the left-recursive alternative of a purely left-recursive rule
// is refused rather than looping forever or overflowing the stack, so
// the parse terminates on the base case; see DESIGN.md for the guard's
// exact semantics.
func TestRecursionLeftRecursionGuard(t *testing.T) {
	digit := peg.CharInSet([][2]rune{{'0', '9'}}, nil)
	e := peg.Forward()
	e.Assign(peg.Or(peg.Seq(e, peg.LiteralChar('+'), digit), digit))

	m := e.ParseString("1+2+3", peg.ParseOptions{})
	require.True(t, m.IsMatch())
	assert.LessOrEqual(t, m.Length(), int32(len("1+2+3")))
}

func TestForwardUnassignedPanics(t *testing.T) {
	e := peg.Forward()
	assert.Panics(t, func() {
		e.ParseString("x", peg.ParseOptions{})
	})
}

func TestAssignRequiresForwardReceiver(t *testing.T) {
	assert.Panics(t, func() {
		peg.LiteralChar('a').Assign(peg.LiteralChar('b'))
	})
}
