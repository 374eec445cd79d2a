package peg

// tryMatch is the single entry point every parser (terminal or
// composite) implements: it attempts a match starting at prev's right
// edge (after auto-advance, unless allowAutoAdvance is false) and
// returns either a success or scanner.noMatch's failure sentinel. It
// is never exported: callers use (*Parser).ParseString.
func (p *Parser) tryMatch(s *Scanner, prev *ParserMatch, allowAutoAdvance bool) *ParserMatch {
	if allowAutoAdvance {
		prev = s.doAutoAdvance(prev)
	}

	var result *ParserMatch
	switch p.kind {
	case kLiteralChar:
		result = p.matchLiteralChar(s, prev)
	case kLiteralString:
		result = p.matchLiteralString(s, prev)
	case kCharClass:
		result = p.matchCharClass(s, prev)
	case kAnyChar:
		result = p.matchAnyChar(s, prev)
	case kEndOfInput:
		result = p.matchEndOfInput(s, prev)
	case kEmpty:
		result = s.emptyMatch(p, prev.Right(), prev)
	case kRegex:
		result = p.matchRegex(s, prev)
	case kRemaining:
		result = p.matchRemaining(s, prev)
	case kSequence:
		result = p.matchSequence(s, prev)
	case kUnion:
		result = p.matchUnion(s, prev)
	case kXor:
		result = p.matchXor(s, prev)
	case kIntersection:
		result = p.matchIntersection(s, prev)
	case kDifference:
		result = p.matchDifference(s, prev)
	case kRepetition:
		result = p.matchRepetition(s, prev)
	case kDelimited:
		result = p.matchDelimited(s, prev)
	case kTerminated:
		result = p.matchTerminated(s, prev)
	case kRecursion:
		result = p.matchRecursion(s, prev)
	default:
		panic(grammarErrorf("tryMatch", "unknown parser kind %v", p.kind))
	}

	if result.IsMatch() {
		s.trace(StageGot, "tryMatch", p, result.Right())
	} else {
		s.trace(StageFail, "tryMatch", p, prev.Right())
	}
	return result
}

func (p *Parser) matchLiteralChar(s *Scanner, prev *ParserMatch) *ParserMatch {
	off := prev.Right()
	r, width := s.Peek(off)
	if width == 0 || r != p.ch {
		return s.noMatch(p, prev)
	}
	return s.createMatch(p, off, int32(width), prev)
}

func (p *Parser) matchLiteralString(s *Scanner, prev *ParserMatch) *ParserMatch {
	off := prev.Right()
	want := len(p.str)
	got := s.Substring(off, int32(want))
	if len(got) != want {
		return s.noMatch(p, prev)
	}
	if p.caseSensitive {
		if got != p.str {
			return s.noMatch(p, prev)
		}
	} else if !equalFold(got, p.str) {
		return s.noMatch(p, prev)
	}
	return s.createMatch(p, off, int32(want), prev)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (p *Parser) matchCharClass(s *Scanner, prev *ParserMatch) *ParserMatch {
	off := prev.Right()
	r, width := s.Peek(off)
	if width == 0 {
		return s.noMatch(p, prev)
	}
	in := false
	for _, rng := range p.ranges {
		if r >= rng[0] && r <= rng[1] {
			in = true
			break
		}
	}
	if !in {
		return s.noMatch(p, prev)
	}
	for _, ex := range p.exclude {
		if r == ex {
			return s.noMatch(p, prev)
		}
	}
	return s.createMatch(p, off, int32(width), prev)
}

func (p *Parser) matchAnyChar(s *Scanner, prev *ParserMatch) *ParserMatch {
	off := prev.Right()
	_, width := s.Peek(off)
	if width == 0 {
		return s.noMatch(p, prev)
	}
	return s.createMatch(p, off, int32(width), prev)
}

func (p *Parser) matchEndOfInput(s *Scanner, prev *ParserMatch) *ParserMatch {
	off := prev.Right()
	if !s.EndOfInput(off) {
		return s.noMatch(p, prev)
	}
	return s.emptyMatch(p, off, prev)
}

// matchRegex anchors pattern at the cursor. Go's regexp package has no
// notion of an arbitrary match-start offset, so it runs FindStringIndex
// against the suffix of the transformed view that begins at the cursor
// and accepts only a match starting at index 0 of that suffix; a `^`
// inside pattern therefore behaves as "here" rather than "start of
// input".
func (p *Parser) matchRegex(s *Scanner, prev *ParserMatch) *ParserMatch {
	off := prev.Right()
	view := s.Substring(off, int32(len(s.transformed))-int32(off))
	loc := p.re.FindStringIndex(view)
	if loc == nil || loc[0] != 0 {
		return s.noMatch(p, prev)
	}
	length := loc[1] - loc[0]
	return s.createMatch(p, off, int32(length), prev)
}

func (p *Parser) matchRemaining(s *Scanner, prev *ParserMatch) *ParserMatch {
	off := prev.Right()
	remaining := len(s.input) - int(off)
	if remaining < p.minLen || (p.maxLen >= 0 && remaining > p.maxLen) {
		return s.noMatch(p, prev)
	}
	return s.createMatch(p, off, int32(remaining), prev)
}
