package peg_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	peg "github.com/zostay/pegscan"
	"github.com/zostay/pegscan/token"
)

// shape flattens a TreeNode into a plain comparable value so go-cmp
// doesn't have to reach into Parser/ParserMatch's unexported fields.
type shape struct {
	Tag      string
	Value    string
	Children []shape
}

func flatten(n *peg.TreeNode) shape {
	if n == nil {
		return shape{}
	}
	s := shape{Tag: string(n.Match.Tag()), Value: n.Match.Value()}
	for _, c := range n.Children {
		s.Children = append(s.Children, flatten(c))
	}
	return s
}

// S8 — Tree is a pure function of its match: building it twice from
// the same ParserMatch produces an identical shape.
func TestTreeIdempotent(t *testing.T) {
	digit := peg.CharInSet([][2]rune{{'0', '9'}}, nil).WithTag("digit")
	comma := peg.LiteralChar(',')
	p := peg.Delimited(digit, comma)

	m := p.ParseString("1,2,3", peg.ParseOptions{})
	require.True(t, m.IsMatch())

	first := flatten(peg.Tree(m, true))
	second := flatten(peg.Tree(m, true))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Tree not idempotent (-first +second):\n%s", diff)
	}
}

// Unpruned, the untagged Delimited wrapper node has children; pruned,
// the untagged comma leaves are dropped and the wrapper (kept because
// it still has more than one child) holds only the tagged digit leaves.
func TestTreePruneDropsUntaggedSeparators(t *testing.T) {
	digit := peg.CharInSet([][2]rune{{'0', '9'}}, nil).WithTag("digit")
	comma := peg.LiteralChar(',')
	p := peg.Delimited(digit, comma)

	m := p.ParseString("1,2,3", peg.ParseOptions{})
	require.True(t, m.IsMatch())

	raw := peg.Tree(m, false)
	require.NotNil(t, raw)
	require.NotEmpty(t, raw.Children)

	pruned := peg.Tree(m, true)
	require.NotNil(t, pruned)
	require.Len(t, pruned.Children, 3)
	for i, want := range []string{"1", "2", "3"} {
		assertTagged(t, pruned.Children[i], "digit", want)
	}
}

func assertTagged(t *testing.T, n *peg.TreeNode, tag, value string) {
	t.Helper()
	require.Equal(t, token.Tag(tag), n.Match.Tag())
	require.Equal(t, value, n.Match.Value())
}

// A match with no tagged descendants prunes away entirely.
func TestTreePruneDropsUntaggedLeaf(t *testing.T) {
	p := peg.Seq(peg.LiteralChar('a'), peg.LiteralChar('b'))
	m := p.ParseString("ab", peg.ParseOptions{})
	require.True(t, m.IsMatch())

	pruned := peg.Tree(m, true)
	require.Nil(t, pruned)
}
