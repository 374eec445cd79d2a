package peg

import (
	"fmt"

	"github.com/zostay/pegscan/token"
)

// ParserMatch is an immutable record of success or failure at a
// position, chained left-to-right through a parse via previous. It is
// produced only by a Scanner on behalf of a Parser.
//
// A ParserMatch is never mutated after construction: scope-close fixup
// attaches a closing match to a ScopeNode, not to the match (see
// ScopeTree), and setting through at a combinator boundary returns a
// relabeled copy (see WithThrough).
type ParserMatch struct {
	sourceParser *Parser
	scanner      *Scanner
	offset       uint32
	length       int32
	previous     *ParserMatch

	// through is the parser that produced this match "on behalf of" a
	// combinator boundary (a Forward holder returning its target's
	// match under the holder's own tag/scope). Tag/Scope prefer
	// through over sourceParser when set.
	through *Parser
}

// IsMatch reports whether this is a success (length >= 0) rather than
// the length == -1 failure sentinel.
func (m *ParserMatch) IsMatch() bool {
	return m != nil && m.length >= 0
}

// Offset is the position this match begins at.
func (m *ParserMatch) Offset() uint32 {
	if m == nil {
		return 0
	}
	return m.offset
}

// Length is the number of code units matched, or -1 for a failure.
func (m *ParserMatch) Length() int32 {
	if m == nil {
		return -1
	}
	return m.length
}

// Right is the position immediately after this match: offset +
// max(length, 0).
func (m *ParserMatch) Right() uint32 {
	if m == nil {
		return 0
	}
	if m.length <= 0 {
		return m.offset
	}
	return m.offset + uint32(m.length)
}

// Previous is the match immediately preceding this one in the chain,
// or nil if this is the first match of the parse.
func (m *ParserMatch) Previous() *ParserMatch {
	if m == nil {
		return nil
	}
	return m.previous
}

// Value is the substring [offset, right) from the scanner's
// transformed view.
func (m *ParserMatch) Value() string {
	if m == nil || !m.IsMatch() {
		return ""
	}
	return m.scanner.Substring(m.offset, m.length)
}

// RawValue is Value but over the scanner's untransformed (original)
// view.
func (m *ParserMatch) RawValue() string {
	if m == nil || !m.IsMatch() {
		return ""
	}
	return m.scanner.UntransformedSubstring(m.offset, m.length)
}

// effectiveSource returns through if set, else sourceParser.
func (m *ParserMatch) effectiveSource() *Parser {
	if m == nil {
		return nil
	}
	if m.through != nil {
		return m.through
	}
	return m.sourceParser
}

// Tag is the tag of the parser that produced this match (preferring
// through over sourceParser, see WithThrough).
func (m *ParserMatch) Tag() token.Tag {
	p := m.effectiveSource()
	if p == nil {
		return token.None
	}
	return p.tag
}

// Scope is the scope kind of the parser that produced this match.
func (m *ParserMatch) Scope() token.Scope {
	p := m.effectiveSource()
	if p == nil {
		return token.NoScope
	}
	return p.scope
}

// SourceParser is the parser that literally produced this match (never
// substituted by WithThrough); used by the scanner's diagnostics and by
// tree pruning, which needs the actual terminal/composite, not the
// relabeled one.
func (m *ParserMatch) SourceParser() *Parser {
	if m == nil {
		return nil
	}
	return m.sourceParser
}

// Scanner is the scanner this match was produced against.
func (m *ParserMatch) Scanner() *Scanner {
	if m == nil {
		return nil
	}
	return m.scanner
}

// WithThrough returns a shallow copy of m whose Tag/Scope are read
// from through instead of its own sourceParser. The Forward holder uses
// this at its boundary so that its own tag governs how its target's
// match is treated by the tag-aware post-processors, without
// losing the identity of the terminal that actually matched (still
// available via SourceParser).
func (m *ParserMatch) WithThrough(through *Parser) *ParserMatch {
	if m == nil {
		return nil
	}
	cp := *m
	cp.through = through
	return &cp
}

func (m *ParserMatch) String() string {
	if m == nil {
		return "<nil match>"
	}
	if !m.IsMatch() {
		return fmt.Sprintf("Match(fail @%d)", m.offset)
	}
	return fmt.Sprintf("Match(tag=%q, %d..%d, %q)", m.Tag(), m.offset, m.Right(), m.Value())
}

// Chain walks previous links from m back to the root, returning
// matches in parse order (root first).
func (m *ParserMatch) Chain() []*ParserMatch {
	var rev []*ParserMatch
	for cur := m; cur != nil; cur = cur.previous {
		rev = append(rev, cur)
	}
	out := make([]*ParserMatch, len(rev))
	for i, mm := range rev {
		out[len(rev)-1-i] = mm
	}
	return out
}
