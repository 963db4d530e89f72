package grammar

import (
	"testing"

	"github.com/ptomulik/ezmlex/fsmchar"
)

func TestBuilderHelperPatternRoundTrip(t *testing.T) {
	b := NewBuilder()
	if err := b.DefineHelperPattern("digit", `[0-9]`); err != nil {
		t.Fatalf("DefineHelperPattern: %v", err)
	}
	got, err := b.LookupHelperPattern("digit")
	if err != nil {
		t.Fatalf("LookupHelperPattern: %v", err)
	}
	if got != `[0-9]` {
		t.Errorf("LookupHelperPattern = %q, want %q", got, `[0-9]`)
	}
	if err := b.RemoveHelperPattern("digit"); err != nil {
		t.Fatalf("RemoveHelperPattern: %v", err)
	}
	if _, err := b.LookupHelperPattern("digit"); err == nil {
		t.Fatalf("LookupHelperPattern after remove: want error, got nil")
	}
}

func TestBuilderHelperPatternDuplicateDefineFails(t *testing.T) {
	b := NewBuilder()
	if err := b.DefineHelperPattern("digit", `[0-9]`); err != nil {
		t.Fatalf("DefineHelperPattern: %v", err)
	}
	if err := b.DefineHelperPattern("digit", `[0-9]+`); err == nil {
		t.Fatalf("DefineHelperPattern (duplicate): want error, got nil")
	}
}

func TestBuilderRemoveMissingHelperPatternFails(t *testing.T) {
	b := NewBuilder()
	if err := b.RemoveHelperPattern("nope"); err == nil {
		t.Fatalf("RemoveHelperPattern (missing): want error, got nil")
	}
}

func TestBuilderDefineFSMCharPattern(t *testing.T) {
	b := NewBuilder()
	if err := b.DefineFSMCharPattern('L', `[^\n]*\n`); err != nil {
		t.Fatalf("DefineFSMCharPattern: %v", err)
	}
	if err := b.DefineFSMCharPattern(fsmchar.NoClass, `.*`); err == nil {
		t.Fatalf("DefineFSMCharPattern(NoClass): want error, got nil")
	}
	if err := b.DefineFSMCharPattern('L', `.*`); err == nil {
		t.Fatalf("DefineFSMCharPattern (duplicate class): want error, got nil")
	}
}

func TestBuilderDefineTokenTypeDuplicateFails(t *testing.T) {
	b := NewBuilder()
	if err := b.DefineTokenType("Word", `[a-zA-Z]+`); err != nil {
		t.Fatalf("DefineTokenType: %v", err)
	}
	if err := b.DefineTokenType("Word", `[a-zA-Z]+`); err == nil {
		t.Fatalf("DefineTokenType (duplicate): want error, got nil")
	}
}

func TestBuilderDefineErrorTypeCarriesMessage(t *testing.T) {
	b := NewBuilder()
	if err := b.DefineErrorType("Bad", `.`, "unexpected character"); err != nil {
		t.Fatalf("DefineErrorType: %v", err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	descs := g.Descriptors()
	if len(descs) != 1 {
		t.Fatalf("Descriptors() = %d entries, want 1", len(descs))
	}
	if !descs[0].IsError || descs[0].Message != "unexpected character" {
		t.Errorf("Descriptors()[0] = %+v, want IsError=true Message=%q", descs[0], "unexpected character")
	}
}

func TestBuildEmptyGrammarFails(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Build(); err == nil {
		t.Fatalf("Build (empty): want ErrEmptyGrammar, got nil")
	}
}

func TestBuildSucceedsWithOnlyAnErrorType(t *testing.T) {
	b := NewBuilder()
	if err := b.DefineErrorType("Bad", `.`, "unexpected character"); err != nil {
		t.Fatalf("DefineErrorType: %v", err)
	}
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestBuildSucceedsWithOnlyATokenType(t *testing.T) {
	b := NewBuilder()
	if err := b.DefineTokenType("Word", `[a-zA-Z]+`); err != nil {
		t.Fatalf("DefineTokenType: %v", err)
	}
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestGrammarClassifyItemAndMatchSplitErrorFromOrdinary(t *testing.T) {
	b := NewBuilder()
	if err := b.DefineFSMCharPattern('#', `#[^\n]*\n`); err != nil {
		t.Fatalf("DefineFSMCharPattern: %v", err)
	}
	if err := b.DefineFSMCharPattern('L', `[^#][^\n]*\n`); err != nil {
		t.Fatalf("DefineFSMCharPattern: %v", err)
	}
	if err := b.DefineTokenType("Comment", `#+`); err != nil {
		t.Fatalf("DefineTokenType: %v", err)
	}
	if err := b.DefineErrorType("Unclassified", `\x00+`, "unclassified line"); err != nil {
		t.Fatalf("DefineErrorType: %v", err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ch, err := g.ClassifyItem("# a comment\n")
	if err != nil {
		t.Fatalf("ClassifyItem: %v", err)
	}
	if ch != '#' {
		t.Errorf("ClassifyItem(comment) = %q, want '#'", ch)
	}

	if got := g.MatchTokenTypes("##"); len(got) != 1 || got[0].Descriptor.ID != "Comment" {
		t.Errorf("MatchTokenTypes(\"##\") = %+v, want single Comment candidate", got)
	}
	if got := g.MatchErrorTypes("##"); len(got) != 0 {
		t.Errorf("MatchErrorTypes(\"##\") = %+v, want none", got)
	}
	if got := g.MatchErrorTypes("\x00"); len(got) != 1 || got[0].Descriptor.ID != "Unclassified" {
		t.Errorf("MatchErrorTypes(\"\\x00\") = %+v, want single Unclassified candidate", got)
	}
}
