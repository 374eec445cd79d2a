package peg

import "github.com/zostay/pegscan/token"

// ParseString runs a single parse of input under opts, returning the
// root match. Callers that need to require the whole input be
// consumed should wrap the grammar in Seq(root, EndOfInput()); a
// failed parse's diagnostics are available from the returned match's
// Scanner via ListFailures.
func (p *Parser) ParseString(input string, opts ParseOptions) *ParserMatch {
	s := NewScanner(input, opts)
	m := p.tryMatch(s, nil, false)
	s.Complete()
	return m
}

// Token is one entry of a TaggedTokens walk: a tagged, non-empty match
// flattened to its essential fields.
type Token struct {
	Tag    token.Tag
	Value  string
	Offset uint32
	Length int32
}

// TaggedTokens walks m's chain in parse order and returns one Token
// per non-empty match that carries a tag.
func TaggedTokens(m *ParserMatch) []Token {
	var out []Token
	for _, mm := range m.Chain() {
		if !mm.IsMatch() || mm.Length() == 0 {
			continue
		}
		if mm.Tag() == token.None {
			continue
		}
		out = append(out, Token{
			Tag:    mm.Tag(),
			Value:  mm.Value(),
			Offset: mm.Offset(),
			Length: mm.Length(),
		})
	}
	return out
}
