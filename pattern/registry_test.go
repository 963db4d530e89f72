package pattern

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestDefineDuplicate(t *testing.T) {
	r := New()
	if err := r.Define("word", `[a-z]+`); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := r.Define("word", `[0-9]+`); err == nil {
		t.Fatalf("Define: expected error for duplicate id")
	}
}

func TestLookupRemove(t *testing.T) {
	r := New()
	if err := r.Define("word", `[a-z]+`); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if _, err := r.Lookup("missing"); err == nil {
		t.Fatalf("Lookup: expected error for missing id")
	}
	if _, err := r.Lookup("word"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if err := r.Remove("word"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := r.Remove("word"); err == nil {
		t.Fatalf("Remove: expected error for already-removed id")
	}
}

func TestFindMatchesAnchoredAtZero(t *testing.T) {
	r := New()
	mustDefine(t, r, "word", `[a-zA-Z]+`)
	mustDefine(t, r, "digits", `[0-9]+`)

	got := r.FindMatches("abc123")
	want := []Match{{ID: "word", Text: "abc"}}
	opt := cmpopts.IgnoreFields(Match{}, "Pattern")
	if diff := cmp.Diff(want, got, opt); diff != "" {
		t.Errorf("FindMatches mismatch (-want +got):\n%s", diff)
	}

	// No pattern matches at offset zero of "123abc" for the "word" pattern,
	// but "digits" does.
	got = r.FindMatches("123abc")
	want = []Match{{ID: "digits", Text: "123"}}
	if diff := cmp.Diff(want, got, opt); diff != "" {
		t.Errorf("FindMatches mismatch (-want +got):\n%s", diff)
	}
}

func TestAnchoredRegistryRequiresFullMatch(t *testing.T) {
	r := NewAnchored()
	mustDefine(t, r, "line", `#.*`)

	if got := r.FindMatches("#comment"); len(got) != 1 {
		t.Errorf("FindMatches(%q) = %d matches, want 1", "#comment", len(got))
	}
	if got := r.FindMatches("#comment\n"); len(got) != 0 {
		t.Errorf("FindMatches(%q) = %d matches, want 0 (trailing newline not matched)", "#comment\n", len(got))
	}
}

func TestLongestAlternationWins(t *testing.T) {
	r := New()
	// Without Longest(), Go's RE2 engine still picks leftmost-first among
	// alternatives that start at the same offset; Longest() forces the
	// overall-longest match, the same technique rules.compileRegexp uses.
	mustDefine(t, r, "greedy", `a|ab|abc`)
	got := r.FindMatches("abcd")
	if len(got) != 1 || got[0].Text != "abc" {
		t.Errorf("FindMatches = %+v, want single match of \"abc\"", got)
	}
}

func mustDefine(t *testing.T, r *Registry, id, regex string) {
	t.Helper()
	if err := r.Define(id, regex); err != nil {
		t.Fatalf("Define(%q): %v", id, err)
	}
}
