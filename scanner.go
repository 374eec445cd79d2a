package peg

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/emirpasic/gods/lists/arraylist"

	"github.com/zostay/pegscan/token"
)

// Tracer is a function used to log or report parser traces. The
// signature is kept from the teacher's Input.Trace hook so that
// fmt.Print, log.Println, t.Log, or a zerolog adapter (see
// NewZerologTracer) can all be used directly.
type Tracer func(v ...any)

// Stage identifies what point in a parser's attempt a trace line
// describes.
type Stage int

const (
	StageTry Stage = iota
	StageGot
	StageFail
)

func (s Stage) String() string {
	switch s {
	case StageTry:
		return "TRY"
	case StageGot:
		return "GOT"
	case StageFail:
		return "FAIL"
	default:
		return "?"
	}
}

// CaseTransform selects the transformed view of the input a Scanner
// exposes to terminals such as LiteralStringCI.
type CaseTransform int

const (
	// NoTransform leaves the transformed view identical to the input.
	NoTransform CaseTransform = iota
	// Lower lowercases the transformed view.
	Lower
)

// ParseOptions configures a single parse. It is the library's entire
// configuration surface: there is no file or environment to load
// settings from, so a struct literal is the right amount of
// "configuration" for an in-memory pattern matcher (see DESIGN.md).
type ParseOptions struct {
	// AutoAdvance is invoked between composite children (with
	// allow_auto_advance = false) to skip insignificant input, such as
	// whitespace. Nil disables auto-advance entirely.
	AutoAdvance *Parser
	// CaseTransform selects the transformed view used for comparisons.
	CaseTransform CaseTransform
	// IncludeSkipped, when true, keeps the auto-advance parser's own
	// matches in the chain instead of only using them to move the
	// cursor forward.
	IncludeSkipped bool
	// Tracer, if set, receives a trace line for every parser attempt.
	Tracer Tracer
}

type failurePoint struct {
	parser *Parser
	offset uint32
	length int32
}

// Scanner owns the input buffer for exactly one parse. It tracks the
// furthest successful and attempted cursor positions for diagnostics,
// per-parser context for the Recursion holder's left-recursion guard,
// and the optional auto-advance sub-parser.
//
// A Scanner must not be shared between concurrent parses; an
// independent Parser graph may be, since Parser values are immutable
// after construction (aside from Forward.Assign).
type Scanner struct {
	input       string
	transformed string

	opts ParseOptions

	furthestMatch *ParserMatch
	furthestTest  *ParserMatch

	failurePoints *arraylist.List
	failedTags    []token.Tag
	furthestTag   token.Tag

	// lastTag is the tag of the most recent successful tagged match,
	// updated live by recordMatch as the parse proceeds (see
	// recordMatch). It is what ListFailures renders as "After '...'":
	// the tag of whatever last matched before the deepest failure, not
	// the tag carried by the parse's own final (possibly failing)
	// result.
	lastTag token.Tag

	contexts map[*Parser]any

	completed bool
}

// NewScanner wraps input for a single parse under opts.
func NewScanner(input string, opts ParseOptions) *Scanner {
	transformed := input
	switch opts.CaseTransform {
	case Lower:
		transformed = strings.ToLower(input)
	}
	if len(transformed) != len(input) {
		panic(scannerErrorf("NewScanner", "transformed input is %d bytes, original is %d", len(transformed), len(input)))
	}
	return &Scanner{
		input:         input,
		transformed:   transformed,
		opts:          opts,
		failurePoints: arraylist.New(),
		contexts:      make(map[*Parser]any),
	}
}

// checkNotCompleted panics with a ScannerError if the scanner has
// already been marked Complete. This guards the cursor-scanning
// primitives a terminal uses mid-parse (EndOfInput, Peek, IndexOf) —
// calling one of those on a completed Scanner means a Parser graph is
// being driven a second time against a Scanner that already backed a
// finished parse, which is caller misuse (spec.md §4.1, §7). It does
// NOT guard Substring/UntransformedSubstring: those back
// ParserMatch.Value()/RawValue(), which callers are expected to read
// from a completed parse's result.
func (s *Scanner) checkNotCompleted(op string) {
	if s.completed {
		panic(scannerErrorf(op, "scan after Complete"))
	}
}

// EndOfInput reports whether offset is at or past the end of the
// input.
func (s *Scanner) EndOfInput(offset uint32) bool {
	s.checkNotCompleted("EndOfInput")
	return int(offset) >= len(s.input)
}

// Peek decodes the rune beginning at offset in the transformed view,
// returning (0, 0) if offset is at or past the end.
func (s *Scanner) Peek(offset uint32) (rune, int) {
	s.checkNotCompleted("Peek")
	if s.EndOfInput(offset) {
		return 0, 0
	}
	r, width := utf8.DecodeRuneInString(s.transformed[offset:])
	return r, width
}

// Substring returns the transformed view over [offset, offset+length),
// truncated at the end of input. A negative length addresses the
// |length| code units ending at offset.
func (s *Scanner) Substring(offset uint32, length int32) string {
	return substringOf(s.transformed, offset, length)
}

// UntransformedSubstring is Substring over the original input rather
// than the transformed view.
func (s *Scanner) UntransformedSubstring(offset uint32, length int32) string {
	return substringOf(s.input, offset, length)
}

func substringOf(s string, offset uint32, length int32) string {
	off := int(offset)
	if off > len(s) {
		off = len(s)
	}
	if length < 0 {
		start := off + int(length)
		if start < 0 {
			start = 0
		}
		return s[start:off]
	}
	end := off + int(length)
	if end > len(s) {
		end = len(s)
	}
	return s[off:end]
}

// IndexOf returns the first byte offset on or after offset at which
// needle occurs in the transformed view, honoring caseSensitive, or -1
// if it does not occur.
func (s *Scanner) IndexOf(offset uint32, needle string, caseSensitive bool) int {
	s.checkNotCompleted("IndexOf")
	hay := s.transformed
	if !caseSensitive {
		hay = strings.ToLower(hay)
		needle = strings.ToLower(needle)
	}
	if int(offset) > len(hay) {
		return -1
	}
	idx := strings.Index(hay[offset:], needle)
	if idx < 0 {
		return -1
	}
	return int(offset) + idx
}

// doAutoAdvance runs the auto-advance parser (if any) at previous's
// right edge with allow_auto_advance=false, per spec.md §4.1's
// critical auto-advance rule: composites advance the seam between
// children, terminals never auto-advance themselves.
func (s *Scanner) doAutoAdvance(previous *ParserMatch) *ParserMatch {
	right := uint32(0)
	if previous != nil {
		right = previous.Right()
	}
	if s.opts.AutoAdvance == nil {
		return s.nullMatch(nil, right, previous)
	}
	// Composites inside the auto-advance parser pass allowAutoAdvance =
	// true to their own children; clearing the hook while it runs keeps
	// those nested calls from re-entering it.
	aa := s.opts.AutoAdvance
	s.opts.AutoAdvance = nil
	m := aa.tryMatch(s, previous, false)
	s.opts.AutoAdvance = aa
	if m.IsMatch() {
		if s.opts.IncludeSkipped {
			return m
		}
		return s.emptyMatch(s.opts.AutoAdvance, m.Right(), previous)
	}
	return s.nullMatch(s.opts.AutoAdvance, right, previous)
}

func (s *Scanner) trace(stage Stage, name string, p *Parser, offset uint32) {
	if s.opts.Tracer == nil {
		return
	}
	tag := ""
	if p != nil {
		tag = string(p.tag)
	}
	s.opts.Tracer(fmt.Sprintf("%s %s(tag=%q) @%d", stage, name, tag, offset))
}

// noMatch returns a length=-1 sentinel at previous's right edge (or 0
// if previous is nil) and records the attempt in the furthest-failure
// diagnostics. This is the cursor position the attempt actually ran
// at; see DESIGN.md for why that's previous.Right() rather than a
// literal reading of previous.offset.
func (s *Scanner) noMatch(p *Parser, previous *ParserMatch) *ParserMatch {
	offset := uint32(0)
	if previous != nil {
		offset = previous.Right()
	}
	m := &ParserMatch{sourceParser: p, scanner: s, offset: offset, length: -1, previous: previous}
	s.recordTest(p, m)
	s.addFailure(p, m)
	return m
}

// nullMatch is the same sentinel as noMatch, used internally where the
// caller does not want the failure recorded (e.g. "no auto-advance
// configured").
func (s *Scanner) nullMatch(p *Parser, offset uint32, previous *ParserMatch) *ParserMatch {
	return &ParserMatch{sourceParser: p, scanner: s, offset: offset, length: -1, previous: previous}
}

// emptyMatch returns a zero-length success at offset.
func (s *Scanner) emptyMatch(p *Parser, offset uint32, previous *ParserMatch) *ParserMatch {
	m := &ParserMatch{sourceParser: p, scanner: s, offset: offset, length: 0, previous: previous}
	s.recordMatch(m)
	return m
}

// createMatch returns a length>=0 success at offset.
func (s *Scanner) createMatch(p *Parser, offset uint32, length int32, previous *ParserMatch) *ParserMatch {
	m := &ParserMatch{sourceParser: p, scanner: s, offset: offset, length: length, previous: previous}
	s.recordMatch(m)
	return m
}

func (s *Scanner) recordMatch(m *ParserMatch) {
	if s.furthestMatch == nil || m.Right() > s.furthestMatch.Right() {
		s.furthestMatch = m
	}
	if tag := m.Tag(); tag != token.None {
		s.lastTag = tag
	}
	s.recordTest(m.sourceParser, m)
}

func (s *Scanner) recordTest(p *Parser, m *ParserMatch) {
	if s.furthestTest == nil || m.Right() > s.furthestTest.Right() {
		s.furthestTest = m
		if p != nil {
			s.furthestTag = p.tag
		}
	}
}

// addFailure records a failed attempt for later diagnostics.
func (s *Scanner) addFailure(p *Parser, m *ParserMatch) {
	if p == nil || p.tag == token.None {
		return
	}
	s.failurePoints.Add(failurePoint{parser: p, offset: m.offset, length: m.length})
	s.failedTags = append(s.failedTags, p.tag)
}

// ClearFailures discards accumulated diagnostics, typically called
// after a combinator recovers from a failed alternative.
func (s *Scanner) ClearFailures() {
	s.failurePoints.Clear()
	s.failedTags = nil
}

// SetContext stores per-parser per-parse mutable state, used by the
// Recursion holder's left-recursion memo.
func (s *Scanner) SetContext(p *Parser, v any) {
	s.contexts[p] = v
}

// GetContext retrieves per-parser per-parse mutable state.
func (s *Scanner) GetContext(p *Parser) (any, bool) {
	v, ok := s.contexts[p]
	return v, ok
}

// FurthestMatch is the deepest successful cursor position reached
// during the parse, for diagnostics.
func (s *Scanner) FurthestMatch() *ParserMatch {
	return s.furthestMatch
}

// FurthestTest is the deepest cursor position any parser attempted,
// successful or not, for diagnostics.
func (s *Scanner) FurthestTest() *ParserMatch {
	return s.furthestTest
}

// Complete marks the scanner unusable for further reads. A Scanner may
// back exactly one parse.
func (s *Scanner) Complete() {
	s.completed = true
}

// Completed reports whether Complete has been called.
func (s *Scanner) Completed() bool {
	return s.completed
}

// ListFailures renders the furthest-failure diagnostics as
// "Expected 'tag1', 'tag2' After 'priorTag' text◢bad◣rest" messages,
// restricted to failures at or after minOffset.
func (s *Scanner) ListFailures(minOffset uint32, showDetails bool) []string {
	if s.failurePoints.Empty() {
		return nil
	}

	deepest := uint32(0)
	it := s.failurePoints.Iterator()
	for it.Next() {
		fp := it.Value().(failurePoint)
		if fp.offset >= deepest {
			deepest = fp.offset
		}
	}
	if deepest < minOffset {
		return nil
	}

	seen := map[token.Tag]bool{}
	var tags []string
	it = s.failurePoints.Iterator()
	for it.Next() {
		fp := it.Value().(failurePoint)
		if fp.offset != deepest || fp.parser == nil || fp.parser.tag == token.None {
			continue
		}
		if seen[fp.parser.tag] {
			continue
		}
		seen[fp.parser.tag] = true
		tags = append(tags, fmt.Sprintf("'%s'", fp.parser.tag))
	}
	if len(tags) == 0 {
		return nil
	}

	msg := fmt.Sprintf("Expected %s", strings.Join(tags, ", "))
	if s.lastTag != token.None {
		msg += fmt.Sprintf(" After '%s'", s.lastTag)
	}
	if showDetails {
		before := substringOf(s.input, deepest, -20)
		bad := substringOf(s.input, deepest, 10)
		after := substringOf(s.input, deepest+uint32(len(bad)), 20)
		msg += fmt.Sprintf(" %s◢%s◣%s", before, bad, after)
	}
	return []string{msg}
}
