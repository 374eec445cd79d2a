package peg

// matchSequence runs each child in order, threading each success as
// the next child's cursor. It returns the first child's failure
// verbatim (spec.md §4.3 Sequence), or on success a synthetic match
// spanning the first child's offset to the last child's right.
func (p *Parser) matchSequence(s *Scanner, prev *ParserMatch) *ParserMatch {
	cur := prev
	var spanStart uint32
	haveStart := false
	for _, c := range p.children {
		m := c.tryMatch(s, cur, true)
		if !m.IsMatch() {
			return m
		}
		if !haveStart {
			spanStart = m.Offset()
			haveStart = true
		}
		cur = m
	}
	if !haveStart {
		return s.emptyMatch(p, prev.Right(), prev)
	}
	return s.createMatch(p, spanStart, int32(cur.Right()-spanStart), cur)
}

// matchUnion is ordered choice: try children in order, return the
// first success unchanged (not wrapped — spec.md §4.3's "result
// equals a.parse(s)"), so the winning alternative's own tag/scope is
// preserved rather than being hidden behind the Or node.
func (p *Parser) matchUnion(s *Scanner, prev *ParserMatch) *ParserMatch {
	for _, c := range p.children {
		m := c.tryMatch(s, prev, true)
		if m.IsMatch() {
			return m
		}
	}
	return s.noMatch(p, prev)
}

// matchXor tries both children at the same cursor; it succeeds only
// when exactly one of them does.
func (p *Parser) matchXor(s *Scanner, prev *ParserMatch) *ParserMatch {
	a, b := p.children[0], p.children[1]
	ma := a.tryMatch(s, prev, true)
	mb := b.tryMatch(s, prev, true)
	switch {
	case ma.IsMatch() && mb.IsMatch():
		return s.noMatch(p, prev)
	case ma.IsMatch():
		return ma
	case mb.IsMatch():
		return mb
	default:
		return s.noMatch(p, prev)
	}
}

// matchIntersection requires both children to match at the same
// cursor (ordered: a then b, spec.md §9's resolution of the
// Intersection ordering question), returning a synthetic match
// spanning the union of their ranges.
func (p *Parser) matchIntersection(s *Scanner, prev *ParserMatch) *ParserMatch {
	a, b := p.children[0], p.children[1]
	ma := a.tryMatch(s, prev, true)
	if !ma.IsMatch() {
		return ma
	}
	mb := b.tryMatch(s, prev, true)
	if !mb.IsMatch() {
		return mb
	}
	off := ma.Offset()
	if mb.Offset() < off {
		off = mb.Offset()
	}
	right := ma.Right()
	if mb.Right() > right {
		right = mb.Right()
	}
	return s.createMatch(p, off, int32(right-off), mb)
}

// matchDifference succeeds iff a matches and b does not match at the
// same cursor, returning a's match unchanged.
func (p *Parser) matchDifference(s *Scanner, prev *ParserMatch) *ParserMatch {
	a, b := p.children[0], p.children[1]
	ma := a.tryMatch(s, prev, true)
	if !ma.IsMatch() {
		return ma
	}
	mb := b.tryMatch(s, prev, true)
	if mb.IsMatch() {
		return s.noMatch(p, prev)
	}
	return ma
}

// matchRepetition greedily matches its child until it fails, max is
// reached, or the no-progress guard trips (a zero-length match at the
// same cursor as the previous iteration), then fails if fewer than
// min iterations were found.
func (p *Parser) matchRepetition(s *Scanner, prev *ParserMatch) *ParserMatch {
	child := p.children[0]
	cur := prev
	count := 0
	var spanStart uint32
	haveStart := false

	for p.max < 0 || count < p.max {
		beforeRight := cur.Right()
		m := child.tryMatch(s, cur, true)
		if !m.IsMatch() {
			break
		}
		if count > 0 && m.Length() == 0 && m.Right() == beforeRight {
			break
		}
		if !haveStart {
			spanStart = m.Offset()
			haveStart = true
		}
		cur = m
		count++
	}

	if count < p.min {
		return s.noMatch(p, prev)
	}
	if count == 0 {
		return s.emptyMatch(p, prev.Right(), prev)
	}
	return s.createMatch(p, spanStart, int32(cur.Right()-spanStart), cur)
}

// matchDelimited matches `a (b a)*`, at least one a, without consuming
// a trailing delimiter: if a successful b is not followed by a
// successful a, the match ends at the last successful a.
func (p *Parser) matchDelimited(s *Scanner, prev *ParserMatch) *ParserMatch {
	a, b := p.children[0], p.children[1]

	first := a.tryMatch(s, prev, true)
	if !first.IsMatch() {
		return first
	}
	cur := first
	spanStart := first.Offset()

	for {
		sep := b.tryMatch(s, cur, true)
		if !sep.IsMatch() {
			break
		}
		next := a.tryMatch(s, sep, true)
		if !next.IsMatch() {
			break
		}
		cur = next
	}

	return s.createMatch(p, spanStart, int32(cur.Right()-spanStart), cur)
}

// matchTerminated matches `(a b)+`, one or more complete (a, b) pairs:
// if a matches but its b fails, that pair is dropped and the list ends
// at the previous pair's b.
func (p *Parser) matchTerminated(s *Scanner, prev *ParserMatch) *ParserMatch {
	a, b := p.children[0], p.children[1]

	cur := prev
	var spanStart uint32
	haveStart := false
	count := 0

	for {
		aTry := a.tryMatch(s, cur, true)
		if !aTry.IsMatch() {
			break
		}
		bTry := b.tryMatch(s, aTry, true)
		if !bTry.IsMatch() {
			break
		}
		if !haveStart {
			spanStart = aTry.Offset()
			haveStart = true
		}
		cur = bTry
		count++
	}

	if count == 0 {
		return s.noMatch(p, prev)
	}
	return s.createMatch(p, spanStart, int32(cur.Right()-spanStart), cur)
}

// recursionState is the Recursion holder's per-parse memo: the set of
// (offset, incoming source parser) pairs currently being attempted, so
// that pure left recursion fails instead of recursing forever.
type recursionState struct {
	active map[recursionKey]bool
}

type recursionKey struct {
	offset   uint32
	incoming *Parser
}

// matchRecursion implements the Forward holder with the
// left-recursion / no-progress guard from spec.md §4.3: re-entering
// the same holder at the same cursor for the same incoming source
// parser fails immediately, and a body that makes no progress
// (returns a match identical in span to the incoming cursor) also
// fails rather than being accepted as a legitimate zero-width step.
func (p *Parser) matchRecursion(s *Scanner, prev *ParserMatch) *ParserMatch {
	if p.target == nil {
		panic(grammarErrorf("Forward", "holder's target was never assigned"))
	}

	offset := prev.Right()
	var incoming *Parser
	if prev != nil {
		incoming = prev.effectiveSource()
	}

	raw, _ := s.GetContext(p)
	state, _ := raw.(*recursionState)
	if state == nil {
		state = &recursionState{active: make(map[recursionKey]bool)}
		s.SetContext(p, state)
	}
	key := recursionKey{offset: offset, incoming: incoming}
	if state.active[key] {
		return s.noMatch(p, prev)
	}
	state.active[key] = true
	defer delete(state.active, key)

	m := p.target.tryMatch(s, prev, true)
	if !m.IsMatch() {
		return m
	}
	if noProgress(m, prev) {
		return s.noMatch(p, prev)
	}
	return m.WithThrough(p)
}

func noProgress(m, prev *ParserMatch) bool {
	if prev == nil {
		return false
	}
	return m.Offset() == prev.Offset() && m.Right() == prev.Right() && m.Length() == prev.Length()
}
