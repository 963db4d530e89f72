// Package token implements token descriptors, the token registries built
// from them, and the immutable token instances a tokenizer emits.
package token

import (
	"fmt"
	"regexp"

	"github.com/ptomulik/ezmlex/position"
)

// Descriptor is a named, compiled pattern plus the optional error metadata
// that distinguishes an error type from an ordinary token type. Descriptors
// are plain values — ezmlex deliberately does not generate one Go type per
// token id, unlike the reference Python implementation's per-token classes.
type Descriptor struct {
	ID      string
	Pattern *regexp.Regexp
	IsError bool
	Message string
}

// Instance is one emitted token: the descriptor id it matched, where it
// starts in the input, its literal value, and (for error tokens) a message.
// Instances are immutable once constructed.
type Instance struct {
	ID      string
	Start   position.Marker
	Value   string
	IsError bool
	Message string
}

// Candidate is one registry hit: the descriptor that matched and the text
// it matched.
type Candidate struct {
	Descriptor Descriptor
	Matched    string
}

// Registry is a named table of token and error descriptors. Both kinds
// share one id space: an id defined as a token type cannot also be defined
// as an error type in the same Registry. A grammar keeps a single Registry
// for both kinds and tells them apart by Descriptor.IsError.
type Registry struct {
	table map[string]Descriptor
}

// NewRegistry returns an empty token/error registry.
func NewRegistry() *Registry {
	return &Registry{table: make(map[string]Descriptor)}
}

// DefineToken registers an ordinary (non-error) token type. It fails if id
// is already registered in this registry.
func (r *Registry) DefineToken(id, regex string) error {
	return r.define(id, regex, false, "")
}

// DefineError registers an error token type with a fixed user message. It
// fails if id is already registered in this registry.
func (r *Registry) DefineError(id, regex, message string) error {
	return r.define(id, regex, true, message)
}

func (r *Registry) define(id, regex string, isError bool, message string) error {
	if _, ok := r.table[id]; ok {
		return fmt.Errorf("token: id already defined: %q", id)
	}
	re, err := regexp.Compile(regex)
	if err != nil {
		return fmt.Errorf("token: compiling %q: %w", id, err)
	}
	re.Longest()
	r.table[id] = Descriptor{ID: id, Pattern: re, IsError: isError, Message: message}
	return nil
}

// Remove deletes the descriptor registered under id. It fails if id is
// absent.
func (r *Registry) Remove(id string) error {
	if _, ok := r.table[id]; !ok {
		return fmt.Errorf("token: no such id: %q", id)
	}
	delete(r.table, id)
	return nil
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id string) (Descriptor, error) {
	d, ok := r.table[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("token: no such id: %q", id)
	}
	return d, nil
}

// Len reports how many descriptors are registered.
func (r *Registry) Len() int {
	return len(r.table)
}

// All returns every descriptor currently registered, in unspecified order.
// Callers that need a stable order should sort the result by ID.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.table))
	for _, d := range r.table {
		out = append(out, d)
	}
	return out
}

// Match returns every descriptor in the registry whose pattern matches
// fsmStr starting at offset zero, along with the matched text.
func (r *Registry) Match(fsmStr string) []Candidate {
	var out []Candidate
	for _, d := range r.table {
		loc := d.Pattern.FindStringIndex(fsmStr)
		if loc == nil || loc[0] != 0 {
			continue
		}
		out = append(out, Candidate{Descriptor: d, Matched: fsmStr[loc[0]:loc[1]]})
	}
	return out
}
