// Package plexer adapts a tokenizer.Tokenizer into a participle
// lexer.Definition, so a grammar built from this module can be bound
// straight into github.com/alecthomas/participle as the lexing stage of a
// full parser, without this module producing a parse tree itself.
package plexer

import (
	"io"
	"sort"

	"github.com/alecthomas/participle/lexer"

	"github.com/ptomulik/ezmlex/grammar"
	"github.com/ptomulik/ezmlex/tokenizer"
)

// NewTokenizer builds a tokenizer.Tokenizer bound to a reader; Definition
// calls it once per Lex call, mirroring how a participle lexer.Definition
// is invoked once per parse.
type NewTokenizer func(g *grammar.Grammar, input any, opts ...tokenizer.Option) (*tokenizer.Tokenizer, error)

// Definition adapts a Grammar into a participle lexer.Definition. Every
// grammar token and error id is assigned a stable, positive rune Type;
// Symbols exposes that mapping so participle's grammar-construction
// reflection can resolve token names back to rune types.
type Definition struct {
	grammar      *grammar.Grammar
	newTok       NewTokenizer
	syms         map[string]rune
	tokOpts      []tokenizer.Option
	strictErrors bool
}

// Option configures a Definition at construction time.
type Option func(*Definition)

// WithTokenizerOption forwards opt to every tokenizer.Tokenizer this
// Definition creates (one per Lex call).
func WithTokenizerOption(opt tokenizer.Option) Option {
	return func(d *Definition) { d.tokOpts = append(d.tokOpts, opt) }
}

// StrictErrors makes in-band error tokens surface to participle as
// lexer.Errorf errors instead of passing through as ordinary tokens whose
// Type is the error descriptor's id. Without this option (the default),
// a participle-based parser sees error tokens as ordinary grammar symbols
// and may choose to treat them as syntax rather than as a lexer failure.
func StrictErrors() Option {
	return func(d *Definition) { d.strictErrors = true }
}

// New returns a lexer.Definition over g. newTok selects the buffer
// granularity (tokenizer.NewChar or tokenizer.NewLine); pass
// tokenizer.NewChar for ordinary character-oriented grammars.
func New(g *grammar.Grammar, newTok NewTokenizer, opts ...Option) lexer.Definition {
	d := &Definition{grammar: g, newTok: newTok, syms: buildSymbols(g)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// buildSymbols assigns every descriptor id a distinct positive rune,
// lowest id first alphabetically so the mapping is stable across runs of
// the same grammar.
func buildSymbols(g *grammar.Grammar) map[string]rune {
	descs := g.Descriptors()
	ids := make([]string, len(descs))
	for i, d := range descs {
		ids[i] = d.ID
	}
	sort.Strings(ids)

	syms := make(map[string]rune, len(ids)+1)
	syms["EOF"] = lexer.EOF
	for i, id := range ids {
		syms[id] = rune(i + 1)
	}
	return syms
}

// Lex implements lexer.Definition.
func (d *Definition) Lex(r io.Reader) (lexer.Lexer, error) {
	tz, err := d.newTok(d.grammar, r, d.tokOpts...)
	if err != nil {
		return nil, err
	}
	return &lexerAdapter{
		tz:           tz,
		syms:         d.syms,
		pos:          lexer.Position{Filename: lexer.NameOfReader(r), Line: 1, Column: 1},
		strictErrors: d.strictErrors,
	}, nil
}

// Symbols implements lexer.Definition.
func (d *Definition) Symbols() map[string]rune {
	return d.syms
}

// lexerAdapter implements lexer.Lexer by pulling token.Instance values out
// of a tokenizer.Tokenizer and translating them into lexer.Token.
type lexerAdapter struct {
	tz           *tokenizer.Tokenizer
	syms         map[string]rune
	pos          lexer.Position
	strictErrors bool
}

// Next implements lexer.Lexer.
func (l *lexerAdapter) Next() (lexer.Token, error) {
	tok, err := l.tz.Token()
	if err != nil {
		return lexer.Token{}, lexer.Errorf(l.pos, "%v", err)
	}
	if tok == nil {
		return lexer.EOFToken(l.pos), nil
	}
	pos := lexer.Position{
		Filename: l.pos.Filename,
		Offset:   tok.Start.Char,
		Line:     tok.Start.Line + 1,
		Column:   tok.Start.Col + 1,
	}
	if l.strictErrors && tok.IsError {
		return lexer.Token{}, lexer.Errorf(pos, "%s", tok.Message)
	}
	return lexer.Token{Type: l.syms[tok.ID], Value: tok.Value, Pos: pos}, nil
}

// Filter wraps lex, merging every run of consecutive tokens whose type is
// in merge into a single token carrying their concatenated value and the
// first token's position. It is the direct analogue of the reference
// lexer's comment/bracket/quote-merging filterLexer, generalized to any
// caller-chosen set of mergeable token types instead of one fixed set of
// CMake-specific ids.
func Filter(lex lexer.Lexer, merge map[rune]bool) lexer.Lexer {
	return &filterLexer{l: lex, merge: merge}
}

type filterLexer struct {
	l       lexer.Lexer
	merge   map[rune]bool
	pending *lexer.Token
}

// Next implements lexer.Lexer.
func (f *filterLexer) Next() (lexer.Token, error) {
	var tok lexer.Token
	if f.pending != nil {
		tok, f.pending = *f.pending, nil
	} else {
		var err error
		tok, err = f.l.Next()
		if err != nil {
			return tok, err
		}
	}
	if !f.merge[tok.Type] {
		return tok, nil
	}
	for {
		next, err := f.l.Next()
		if err != nil {
			return tok, err
		}
		if next.Type != tok.Type {
			f.pending = &next
			return tok, nil
		}
		tok.Value += next.Value
	}
}
