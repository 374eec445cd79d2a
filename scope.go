package peg

import "github.com/zostay/pegscan/token"

// ScopeKind distinguishes the three kinds of ScopeNode.
type ScopeKind int

const (
	RootScope ScopeKind = iota
	DataScope
	ScopeChangeScope
)

// ScopeNode is a node of the tag/scope hierarchy built by ScopeTree: a
// depth-first grouping of a match chain driven by each match's Scope,
// as opposed to TreeNode's parser-structural shape.
type ScopeNode struct {
	Kind ScopeKind

	DataMatch    *ParserMatch
	OpeningMatch *ParserMatch
	ClosingMatch *ParserMatch

	Prev, Next *ScopeNode
	Parent     *ScopeNode
	Children   []*ScopeNode
}

// Unbalanced reports whether this node opened a scope that was never
// closed.
func (n *ScopeNode) Unbalanced() bool {
	return n.OpeningMatch != nil && n.ClosingMatch == nil
}

func (n *ScopeNode) append(child *ScopeNode) {
	child.Parent = n
	if len(n.Children) > 0 {
		last := n.Children[len(n.Children)-1]
		last.Next = child
		child.Prev = last
	}
	n.Children = append(n.Children, child)
}

func relinkChildren(n *ScopeNode) {
	var prev *ScopeNode
	for _, c := range n.Children {
		c.Parent = n
		c.Prev = prev
		if prev != nil {
			prev.Next = c
		}
		prev = c
	}
	if prev != nil {
		prev.Next = nil
	}
}

// ScopeTree builds the scope hierarchy from m's chain per the state
// machine in spec.md §4.4, then applies the pivot rewrite.
func ScopeTree(m *ParserMatch) *ScopeNode {
	root := &ScopeNode{Kind: RootScope}
	cursor := root
	var scopeEnds []uint32

chain:
	for _, mm := range m.Chain() {
		if !mm.IsMatch() || mm.Length() == 0 {
			continue
		}
		if mm.Tag() == token.None && mm.Scope() == token.NoScope {
			continue
		}

		switch mm.Scope() {
		case token.OpenScope:
			n := &ScopeNode{Kind: ScopeChangeScope, OpeningMatch: mm}
			cursor.append(n)
			cursor = n
		case token.CloseScope:
			cursor.ClosingMatch = mm
			if cursor.Parent == nil {
				// More closes than opens: a fault. Drop the rest of
				// the chain rather than keep ascending past the root.
				break chain
			}
			cursor = cursor.Parent
		case token.Enclosed:
			n := &ScopeNode{Kind: ScopeChangeScope, OpeningMatch: mm}
			cursor.append(n)
			cursor = n
			scopeEnds = append(scopeEnds, mm.Right())
		default: // token.None, token.Pivot
			n := &ScopeNode{Kind: DataScope, DataMatch: mm}
			cursor.append(n)
		}

		for len(scopeEnds) > 0 && scopeEnds[len(scopeEnds)-1] <= mm.Right() {
			cursor.ClosingMatch = mm
			scopeEnds = scopeEnds[:len(scopeEnds)-1]
			if cursor.Parent == nil {
				break
			}
			cursor = cursor.Parent
		}
	}

	root.Children = rewritePivots(root.Children)
	relinkChildren(root)
	return root
}

func isPivotNode(c *ScopeNode) bool {
	return c.Kind == DataScope && c.DataMatch != nil && c.DataMatch.Scope() == token.Pivot
}

// rewritePivots folds a flat sibling list containing Pivot-scoped data
// nodes into a left-associative nest of ScopeChange nodes. The first
// pivot's node holds the siblings before it as its left operand(s);
// each later pivot's node holds the node built for the previous pivot
// as its left operand. Every pivot's node holds the siblings up to the
// next pivot as its right operand(s). This
// is what turns `term + term - term` into `(term + term) - term`
// (spec.md §4.4's "operator-precedence-like layouts").
func rewritePivots(children []*ScopeNode) []*ScopeNode {
	for _, c := range children {
		if len(c.Children) > 0 {
			c.Children = rewritePivots(c.Children)
			relinkChildren(c)
		}
	}

	type segment struct {
		pivot *ScopeNode
		group []*ScopeNode
	}
	var segs []segment
	cur := segment{}
	for _, c := range children {
		if isPivotNode(c) {
			segs = append(segs, cur)
			cur = segment{pivot: c}
			continue
		}
		cur.group = append(cur.group, c)
	}
	segs = append(segs, cur)

	if len(segs) == 1 {
		return children
	}

	acc := segs[0].group
	for _, sg := range segs[1:] {
		n := &ScopeNode{Kind: ScopeChangeScope, OpeningMatch: sg.pivot.DataMatch}
		for _, l := range acc {
			n.append(l)
		}
		for _, r := range sg.group {
			n.append(r)
		}
		acc = []*ScopeNode{n}
	}
	return acc
}
