// Package peg implements a PEG-style parser combinator core: small
// atomic recognizers (literals, character classes, regex fragments,
// end-of-input) composed with ordered-choice, sequence, repetition,
// difference, intersection, exclusive-or, optional, delimited- and
// terminated-list, and forward-reference combinators.
//
// A grammar is a *Parser graph built from the constructors in this
// file. Applying it to an input string (ParseString) produces a
// ParserMatch chain, which TaggedTokens, Tree, or ScopeTree then turn
// into a flat token sequence, a parser-shaped tree, or a tag/scope
// hierarchy, respectively.
//
// Parser is a closed tagged variant rather than an open interface
// (spec design note: "dynamic dispatch over parsers should be a
// closed tagged variant"): every combinator and terminal is a kind of
// the same struct, which keeps the combinator set exhaustively
// handleable in tryMatch and lets Forward hold a simple *Parser slot
// instead of needing an owning cycle.
package peg

import (
	"fmt"
	"regexp"

	"github.com/zostay/go-std/slices"

	"github.com/zostay/pegscan/token"
)

type kind int

const (
	kLiteralChar kind = iota
	kLiteralString
	kCharClass
	kAnyChar
	kEndOfInput
	kEmpty
	kRegex
	kRemaining
	kSequence
	kUnion
	kXor
	kIntersection
	kDifference
	kRepetition
	kDelimited
	kTerminated
	kRecursion
)

// Parser is an immutable (aside from Forward.Assign) node in a
// grammar graph.
type Parser struct {
	kind  kind
	tag   token.Tag
	scope token.Scope

	// terminals
	ch             rune
	str            string
	caseSensitive  bool
	ranges         [][2]rune
	exclude        []rune
	re             *regexp.Regexp
	minLen, maxLen int

	// composites
	children []*Parser
	min, max int // Repetition bounds; max < 0 means unbounded

	// recursion
	target *Parser
}

// Unbounded is passed as Repeat's max to mean "no upper bound".
const Unbounded = -1

// WithTag sets the grouping tag copied onto every match this parser
// produces, and returns the receiver for chaining.
func (p *Parser) WithTag(t token.Tag) *Parser {
	p.tag = t
	return p
}

// Tag returns the parser's tag.
func (p *Parser) Tag() token.Tag { return p.tag }

// WithScope sets the scope kind used by the scope/tag post-processor,
// and returns the receiver for chaining.
func (p *Parser) WithScope(s token.Scope) *Parser {
	p.scope = s
	return p
}

// Scope returns the parser's scope kind.
func (p *Parser) Scope() token.Scope { return p.scope }

// ChildParsers returns the parser's immediate children, for
// introspection (e.g. pretty-printers); terminals return nil.
func (p *Parser) ChildParsers() []*Parser {
	return p.children
}

// IsOptional reports whether this parser can succeed while consuming
// no input and without necessarily matching anything meaningful (used
// by callers that want to avoid wrapping an already-optional parser).
func (p *Parser) IsOptional() bool {
	switch p.kind {
	case kEmpty, kEndOfInput:
		return true
	case kRepetition:
		return p.min == 0
	default:
		return false
	}
}

func (p *Parser) shortDescription(depth int) string {
	if depth <= 0 {
		return "..."
	}
	switch p.kind {
	case kLiteralChar:
		return fmt.Sprintf("%q", p.ch)
	case kLiteralString:
		return fmt.Sprintf("%q", p.str)
	case kCharClass:
		return "charclass"
	case kAnyChar:
		return "."
	case kEndOfInput:
		return "$"
	case kEmpty:
		return "ε"
	case kRegex:
		return fmt.Sprintf("/%s/", p.re.String())
	case kRemaining:
		return fmt.Sprintf("remaining[%d,%d]", p.minLen, p.maxLen)
	default:
		names := slices.Map(p.children, func(c *Parser) string { return c.shortDescription(depth - 1) })
		return fmt.Sprintf("%v(%v)", p.kind, names)
	}
}

// ---- Terminal constructors -------------------------------------------------

// LiteralChar matches a single occurrence of c.
func LiteralChar(c rune) *Parser {
	return &Parser{kind: kLiteralChar, ch: c}
}

// LiteralString matches s exactly, case-sensitively.
func LiteralString(s string) *Parser {
	return &Parser{kind: kLiteralString, str: s, caseSensitive: true}
}

// LiteralStringCI matches s ignoring the case of ASCII letters; non-ASCII
// characters must match exactly.
func LiteralStringCI(s string) *Parser {
	return &Parser{kind: kLiteralString, str: s, caseSensitive: false}
}

// AnyChar matches any single character, failing only at end of input.
func AnyChar() *Parser {
	return &Parser{kind: kAnyChar}
}

// EndOfInput succeeds with a zero-length match iff the cursor is at
// the end of the input.
func EndOfInput() *Parser {
	return &Parser{kind: kEndOfInput}
}

// Empty always succeeds with a zero-length match.
func Empty() *Parser {
	return &Parser{kind: kEmpty}
}

// CharRange matches a single character in [lo, hi] inclusive.
func CharRange(lo, hi rune) *Parser {
	return CharInSet([][2]rune{{lo, hi}}, nil)
}

// CharInSet matches a single character that falls in any of ranges and
// is not in exclusions.
func CharInSet(ranges [][2]rune, exclusions []rune) *Parser {
	return &Parser{kind: kCharClass, ranges: ranges, exclude: exclusions}
}

// RegexOptions configures Regex compilation.
type RegexOptions struct {
	// CaseInsensitive compiles the pattern with the `(?i)` flag.
	CaseInsensitive bool
}

// Regex compiles pattern into a terminal that matches anchored at the
// cursor: a `^` inside pattern refers to the cursor position, not the
// start of the input, per spec.md §4.2. Compilation errors are
// returned rather than panicking, since they depend on caller-supplied
// text rather than being a static grammar-construction mistake.
func Regex(pattern string, opts RegexOptions) (*Parser, error) {
	if opts.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, grammarErrorf("Regex", "compiling %q: %w", pattern, err)
	}
	return &Parser{kind: kRegex, re: re}, nil
}

// Remaining succeeds (matching every remaining code unit) iff the
// number of code units left in the input is within [min, max].
func Remaining(min, max int) *Parser {
	if min < 0 || (max >= 0 && max < min) {
		panic(grammarErrorf("Remaining", "invalid bounds [%d,%d]", min, max))
	}
	return &Parser{kind: kRemaining, minLen: min, maxLen: max}
}

// ---- Composite constructors -------------------------------------------------

func requireChildren(op string, ps []*Parser) {
	for i, c := range ps {
		if c == nil {
			panic(grammarErrorf(op, "child %d is nil", i))
		}
	}
}

// Seq matches each parser in order, threading each successful match as
// the next parser's previous cursor. It fails at the first child that
// fails.
func Seq(ps ...*Parser) *Parser {
	requireChildren("Seq", ps)
	return &Parser{kind: kSequence, children: ps}
}

// Or is ordered choice: it tries ps in order and returns the first
// success, never evaluating later alternatives once one has matched.
func Or(ps ...*Parser) *Parser {
	requireChildren("Or", ps)
	return &Parser{kind: kUnion, children: ps}
}

// Xor succeeds iff exactly one of a, b matches at the same cursor.
func Xor(a, b *Parser) *Parser {
	requireChildren("Xor", []*Parser{a, b})
	return &Parser{kind: kXor, children: []*Parser{a, b}}
}

// And (Intersection) succeeds iff both a and b match at the same
// cursor, in that order; the combined match spans their union.
func And(a, b *Parser) *Parser {
	requireChildren("And", []*Parser{a, b})
	return &Parser{kind: kIntersection, children: []*Parser{a, b}}
}

// Diff (Difference) succeeds iff a matches and b does not match at the
// same cursor; the returned match is a's.
func Diff(a, b *Parser) *Parser {
	requireChildren("Diff", []*Parser{a, b})
	return &Parser{kind: kDifference, children: []*Parser{a, b}}
}

// Repeat greedily matches p between min and max times (max == Unbounded
// for no upper bound), failing if fewer than min matches are found.
func Repeat(p *Parser, min, max int) *Parser {
	requireChildren("Repeat", []*Parser{p})
	if min < 0 || (max >= 0 && max < min) {
		panic(grammarErrorf("Repeat", "invalid bounds [%d,%d]", min, max))
	}
	return &Parser{kind: kRepetition, children: []*Parser{p}, min: min, max: max}
}

// Opt is Repeat(p, 0, 1).
func Opt(p *Parser) *Parser { return Repeat(p, 0, 1) }

// ZeroOrMore is Repeat(p, 0, Unbounded).
func ZeroOrMore(p *Parser) *Parser { return Repeat(p, 0, Unbounded) }

// OneOrMore is Repeat(p, 1, Unbounded).
func OneOrMore(p *Parser) *Parser { return Repeat(p, 1, Unbounded) }

// Delimited matches `a (b a)*`: at least one a, with b between
// successive as. A trailing b is not consumed.
func Delimited(a, b *Parser) *Parser {
	requireChildren("Delimited", []*Parser{a, b})
	return &Parser{kind: kDelimited, children: []*Parser{a, b}}
}

// Terminated matches `(a b)+`: one or more (a, b) pairs, each fully
// consumed together or not at all.
func Terminated(a, b *Parser) *Parser {
	requireChildren("Terminated", []*Parser{a, b})
	return &Parser{kind: kTerminated, children: []*Parser{a, b}}
}

// Forward returns a mutable holder for a self-referential grammar rule.
// Its target must be set with Assign before the grammar is parsed.
func Forward() *Parser {
	return &Parser{kind: kRecursion}
}

// Assign sets the target of a Forward holder. It panics if f was not
// created by Forward or if p is nil.
func (f *Parser) Assign(p *Parser) {
	if f.kind != kRecursion {
		panic(grammarErrorf("Assign", "receiver is not a Forward holder"))
	}
	if p == nil {
		panic(grammarErrorf("Assign", "target is nil"))
	}
	f.target = p
}
