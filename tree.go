package peg

import "github.com/zostay/pegscan/token"

// TreeNode is a parser-structural tree built from a single ParserMatch
// by descending through the grammar that produced it, as opposed to
// ScopeNode's tag/scope-shaped hierarchy.
type TreeNode struct {
	Parser   *Parser
	Match    *ParserMatch
	Children []*TreeNode
}

// Tree builds a TreeNode from m. With prune, nodes whose source parser
// carries neither a Tag nor a Scope collapse into their single child,
// or are dropped entirely if they have none.
func Tree(m *ParserMatch, prune bool) *TreeNode {
	if !m.IsMatch() {
		return nil
	}
	n := buildTreeNode(m)
	if prune {
		n = pruneTree(n)
	}
	return n
}

func buildTreeNode(m *ParserMatch) *TreeNode {
	n := &TreeNode{Parser: m.SourceParser(), Match: m}
	switch m.SourceParser().kind {
	case kSequence, kRepetition, kDelimited, kTerminated, kIntersection:
		for _, c := range collectChildren(m) {
			n.Children = append(n.Children, buildTreeNode(c))
		}
	}
	return n
}

func pruneTree(n *TreeNode) *TreeNode {
	if n == nil {
		return nil
	}
	var kids []*TreeNode
	for _, c := range n.Children {
		if pc := pruneTree(c); pc != nil {
			kids = append(kids, pc)
		}
	}
	n.Children = kids

	tagged := n.Parser != nil && (n.Parser.tag != token.None || n.Parser.scope != token.NoScope)
	if tagged {
		return n
	}
	switch len(kids) {
	case 0:
		return nil
	case 1:
		return kids[0]
	default:
		return n
	}
}

// isAutoAdvanceFiller reports whether m was produced by the scanner's
// configured auto-advance sub-parser (or is the "no auto-advance
// configured" sentinel), rather than a genuine grammar child.
func isAutoAdvanceFiller(m *ParserMatch) bool {
	if m == nil || m.scanner == nil {
		return false
	}
	return m.sourceParser == m.scanner.opts.AutoAdvance
}

// skipPast returns the match that sat immediately before m's own span
// began, walking past any nested structure m's own match chain
// contains (so a caller reconstructing m's siblings doesn't descend
// into m's children).
func skipPast(m *ParserMatch) *ParserMatch {
	if m == nil {
		return nil
	}
	cur := m.previous
	for cur != nil && cur.Right() > m.Offset() {
		cur = skipPast(cur)
	}
	return cur
}

// collectChildren reconstructs, in original order, the direct child
// matches that contributed to a composite wrapper match, skipping
// auto-advance filler and recursing past each child's own nested
// structure via skipPast.
func collectChildren(wrapper *ParserMatch) []*ParserMatch {
	spanStart := wrapper.Offset()
	var kids []*ParserMatch
	cur := wrapper.previous
	for cur != nil && cur.Right() > spanStart {
		if !isAutoAdvanceFiller(cur) {
			kids = append(kids, cur)
		}
		cur = skipPast(cur)
	}
	for i, j := 0, len(kids)-1; i < j; i, j = i+1, j-1 {
		kids[i], kids[j] = kids[j], kids[i]
	}
	return kids
}
