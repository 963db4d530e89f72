package plexer

import (
	"strings"
	"testing"

	plex "github.com/alecthomas/participle/lexer"
	"github.com/alecthomas/repr"

	"github.com/ptomulik/ezmlex/grammar"
	"github.com/ptomulik/ezmlex/tokenizer"
)

func wordSepGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder()
	if err := b.DefineTokenType("Word", `[a-zA-Z]+`); err != nil {
		t.Fatalf("DefineTokenType: %v", err)
	}
	if err := b.DefineTokenType("Sep", `[ \t\n]+`); err != nil {
		t.Fatalf("DefineTokenType: %v", err)
	}
	if err := b.DefineTokenType("Punct", `[.,]`); err != nil {
		t.Fatalf("DefineTokenType: %v", err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestDefinitionLexesThroughParticiple(t *testing.T) {
	g := wordSepGrammar(t)
	def := New(g, tokenizer.NewChar)

	lex, err := def.Lex(strings.NewReader("Hi, Bob."))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	toks, err := plex.ConsumeAll(lex)
	if err != nil {
		t.Fatalf("ConsumeAll: %v", err)
	}

	syms := def.Symbols()
	wordType, punctType, sepType := syms["Word"], syms["Punct"], syms["Sep"]

	wantTypes := []rune{wordType, punctType, sepType, wordType, punctType, plex.EOF}
	wantValues := []string{"Hi", ",", " ", "Bob", ".", ""}
	if len(toks) != len(wantTypes) {
		t.Fatalf("got %d tokens, want %d: %s", len(toks), len(wantTypes), repr.String(toks))
	}
	for i, tok := range toks {
		if tok.Type != wantTypes[i] || tok.Value != wantValues[i] {
			t.Errorf("token[%d] = %s, want type %d value %q", i, repr.String(tok), wantTypes[i], wantValues[i])
		}
	}
}

func TestFilterMergesConsecutiveSameTypeTokens(t *testing.T) {
	// Digit matches exactly one character at a time, so "123" produces three
	// consecutive Digit tokens from the base lexer -- a case genuinely
	// requiring Filter's merge, unlike a greedy multi-character pattern.
	b := grammar.NewBuilder()
	if err := b.DefineTokenType("Digit", `[0-9]`); err != nil {
		t.Fatalf("DefineTokenType: %v", err)
	}
	if err := b.DefineTokenType("Word", `[a-zA-Z]+`); err != nil {
		t.Fatalf("DefineTokenType: %v", err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	def := New(g, tokenizer.NewChar)

	lex, err := def.Lex(strings.NewReader("123abc"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	digitType := def.Symbols()["Digit"]
	filtered := Filter(lex, map[rune]bool{digitType: true})

	toks, err := plex.ConsumeAll(filtered)
	if err != nil {
		t.Fatalf("ConsumeAll: %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3 (merged Digit, Word, EOF): %s", len(toks), repr.String(toks))
	}
	if toks[0].Type != digitType || toks[0].Value != "123" {
		t.Errorf("merged digit token = %s, want type %d value \"123\"", repr.String(toks[0]), digitType)
	}
	if toks[1].Value != "abc" {
		t.Errorf("toks[1] = %s, want Value \"abc\"", repr.String(toks[1]))
	}
}

func wordAndBadCharGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder()
	if err := b.DefineTokenType("Word", `[a-zA-Z]+`); err != nil {
		t.Fatalf("DefineTokenType: %v", err)
	}
	if err := b.DefineErrorType("BadChar", `[0-9]`, "digits are not allowed"); err != nil {
		t.Fatalf("DefineErrorType: %v", err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestDefaultLexPassesErrorTokensThrough(t *testing.T) {
	g := wordAndBadCharGrammar(t)
	def := New(g, tokenizer.NewChar)

	lex, err := def.Lex(strings.NewReader("ab1"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	toks, err := plex.ConsumeAll(lex)
	if err != nil {
		t.Fatalf("ConsumeAll: %v", err)
	}
	badCharType := def.Symbols()["BadChar"]
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3 (Word, BadChar, EOF): %s", len(toks), repr.String(toks))
	}
	if toks[1].Type != badCharType || toks[1].Value != "1" {
		t.Errorf("toks[1] = %s, want type %d value \"1\"", repr.String(toks[1]), badCharType)
	}
}

func TestStrictErrorsSurfacesErrorTokenAsLexError(t *testing.T) {
	g := wordAndBadCharGrammar(t)
	def := New(g, tokenizer.NewChar, StrictErrors())

	lex, err := def.Lex(strings.NewReader("ab1"))
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	tok, err := lex.Next()
	if err != nil {
		t.Fatalf("Next (Word): %v", err)
	}
	if tok.Value != "ab" {
		t.Fatalf("first token = %s, want Value \"ab\"", repr.String(tok))
	}
	if _, err := lex.Next(); err == nil {
		t.Fatalf("Next (BadChar): got nil error, want a lexer error for the digit")
	} else if !strings.Contains(err.Error(), "digits are not allowed") {
		t.Errorf("Next (BadChar) error = %q, want it to mention %q", err.Error(), "digits are not allowed")
	}
}
