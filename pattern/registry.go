// Package pattern implements named tables of compiled regular expressions,
// the building block shared by helper patterns, FSM-char patterns, token
// patterns and error patterns (see ezmlex.patterns in the reference
// implementation this package is ported from).
package pattern

import (
	"fmt"
	"regexp"
)

// Match is one hit returned by Registry.FindMatches: the id of the pattern
// that matched, the pattern itself, and the text it matched at offset zero.
type Match struct {
	ID      string
	Pattern *regexp.Regexp
	Text    string
}

// Registry is a mapping from string identifier to compiled regular
// expression. It is not safe for concurrent use; callers mutate a Registry
// only while building a grammar and treat it as read-only afterwards.
type Registry struct {
	anchored bool
	table    map[string]*regexp.Regexp
}

// New returns an empty Registry. Patterns passed to Define are matched
// starting at offset zero of the candidate text, like Python's re.match.
func New() *Registry {
	return &Registry{table: make(map[string]*regexp.Regexp)}
}

// NewAnchored returns an empty Registry whose Define wraps every pattern in
// "^(?:...)$" before compiling, for tables (such as FSM-char patterns) whose
// entries must match an entire item, not merely a prefix of it.
func NewAnchored() *Registry {
	return &Registry{anchored: true, table: make(map[string]*regexp.Regexp)}
}

// Define compiles regex and registers it under id. It fails if id is
// already present in the table.
func (r *Registry) Define(id, regex string) error {
	if _, ok := r.table[id]; ok {
		return fmt.Errorf("pattern: id already defined: %q", id)
	}
	pat := regex
	if r.anchored {
		pat = "^(?:" + regex + ")$"
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return fmt.Errorf("pattern: compiling %q: %w", id, err)
	}
	re.Longest()
	r.table[id] = re
	return nil
}

// Lookup returns the compiled pattern registered under id.
func (r *Registry) Lookup(id string) (*regexp.Regexp, error) {
	re, ok := r.table[id]
	if !ok {
		return nil, fmt.Errorf("pattern: no such id: %q", id)
	}
	return re, nil
}

// Remove deletes the pattern registered under id. It fails if id is absent.
func (r *Registry) Remove(id string) error {
	if _, ok := r.table[id]; !ok {
		return fmt.Errorf("pattern: no such id: %q", id)
	}
	delete(r.table, id)
	return nil
}

// Len reports the number of patterns currently registered.
func (r *Registry) Len() int {
	return len(r.table)
}

// FindMatches returns every registered pattern that matches text starting
// at offset zero, alongside the text it matched. Order is unspecified (Go
// maps do not iterate deterministically); callers that need a stable order
// should sort the result by ID.
func (r *Registry) FindMatches(text string) []Match {
	var out []Match
	for id, re := range r.table {
		loc := re.FindStringIndex(text)
		if loc == nil || loc[0] != 0 {
			continue
		}
		out = append(out, Match{ID: id, Pattern: re, Text: text[loc[0]:loc[1]]})
	}
	return out
}
