// Package grammar assembles a Builder's pattern definitions into an
// immutable Grammar value, the unit the tokenizer engine runs against.
// Unlike the reference implementation, which grows a class's pattern
// tables as mutable dict attributes (so two tokenizer instances sharing a
// subclass could stomp each other's patterns), a Grammar here is built
// once, validated, and then never mutated again.
package grammar

import (
	"errors"
	"fmt"

	"github.com/ptomulik/ezmlex/fsmchar"
	"github.com/ptomulik/ezmlex/token"
)

// ErrEmptyGrammar is returned by Build when no token types and no error
// types have been defined: a grammar that can never produce a token (or a
// diagnosable error) is always a configuration mistake.
var ErrEmptyGrammar = errors.New("grammar: no token types or error types defined")

// Builder accumulates helper patterns, FSM-char patterns, token types and
// error types, then produces an immutable Grammar.
type Builder struct {
	helpers  map[string]string
	fsmChars *fsmchar.Table
	tokens   *token.Registry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		helpers:  make(map[string]string),
		fsmChars: fsmchar.NewTable(),
		tokens:   token.NewRegistry(),
	}
}

// DefineHelperPattern registers regex as a reusable sub-pattern under id,
// so it can be interpolated (by the caller, via fmt.Sprintf or similar)
// into other patterns passed to DefineFSMCharPattern, DefineTokenType or
// DefineErrorType. It fails if id is already registered.
func (b *Builder) DefineHelperPattern(id, regex string) error {
	if _, ok := b.helpers[id]; ok {
		return fmt.Errorf("grammar: helper pattern already defined: %q", id)
	}
	b.helpers[id] = regex
	return nil
}

// LookupHelperPattern returns the regex source registered under id.
func (b *Builder) LookupHelperPattern(id string) (string, error) {
	regex, ok := b.helpers[id]
	if !ok {
		return "", fmt.Errorf("grammar: no such helper pattern: %q", id)
	}
	return regex, nil
}

// RemoveHelperPattern deletes the helper pattern registered under id.
func (b *Builder) RemoveHelperPattern(id string) error {
	if _, ok := b.helpers[id]; !ok {
		return fmt.Errorf("grammar: no such helper pattern: %q", id)
	}
	delete(b.helpers, id)
	return nil
}

// DefineFSMCharPattern registers regex as the pattern identifying items of
// FSM class ch. It fails if ch is fsmchar.NoClass or already registered.
func (b *Builder) DefineFSMCharPattern(ch rune, regex string) error {
	return b.fsmChars.Define(ch, regex)
}

// DefineTokenType registers a non-error token type, matched against the
// FSM string rather than raw buffer content.
func (b *Builder) DefineTokenType(id, regex string) error {
	return b.tokens.DefineToken(id, regex)
}

// DefineErrorType registers an error token type: when the engine can match
// no ordinary token type at the current buffer position, it falls back to
// matching the error types, and message explains the failure to a caller.
func (b *Builder) DefineErrorType(id, regex, message string) error {
	return b.tokens.DefineError(id, regex, message)
}

// Build validates the accumulated definitions and returns an immutable
// Grammar. Build consumes the Builder: its internal tables are handed to
// the returned Grammar by reference, so the Builder must not be used to
// define further patterns afterward.
func (b *Builder) Build() (*Grammar, error) {
	if b.tokens.Len() == 0 {
		return nil, ErrEmptyGrammar
	}
	return &Grammar{fsmChars: b.fsmChars, tokens: b.tokens}, nil
}

// Grammar is the immutable, validated result of a Builder: an FSM-char
// classifier paired with the token (and error-token) types matched against
// the FSM strings it produces.
type Grammar struct {
	fsmChars *fsmchar.Table
	tokens   *token.Registry
}

// ClassifyItem maps a single buffered item (a line, for a LineBuffer; a
// single character, for a CharBuffer that uses FSM classification) to its
// FSM character.
func (g *Grammar) ClassifyItem(item string) (rune, error) {
	return g.fsmChars.Classify(item)
}

// ClassifyItems maps ClassifyItem over a sequence of buffered items,
// concatenating the result into one FSM string.
func (g *Grammar) ClassifyItems(items []string) (string, error) {
	return g.fsmChars.ClassifyAll(items)
}

// Descriptors returns every token and error type registered in the
// grammar, in unspecified order. Callers that need a stable order should
// sort the result by ID.
func (g *Grammar) Descriptors() []token.Descriptor {
	return g.tokens.All()
}

// MatchTokenTypes returns every ordinary (non-error) token type matching a
// prefix of fsmStr, alongside the matched text.
func (g *Grammar) MatchTokenTypes(fsmStr string) []token.Candidate {
	var out []token.Candidate
	for _, c := range g.tokens.Match(fsmStr) {
		if !c.Descriptor.IsError {
			out = append(out, c)
		}
	}
	return out
}

// MatchErrorTypes returns every error token type matching a prefix of
// fsmStr, alongside the matched text.
func (g *Grammar) MatchErrorTypes(fsmStr string) []token.Candidate {
	var out []token.Candidate
	for _, c := range g.tokens.Match(fsmStr) {
		if c.Descriptor.IsError {
			out = append(out, c)
		}
	}
	return out
}
