// Package fsmchar implements the FSM-char classifier: given an item
// (typically a line), it chooses a single FSM character via a table of
// mutually-exclusive anchored regular expressions.
package fsmchar

import (
	"errors"
	"fmt"

	"github.com/ptomulik/ezmlex/pattern"
)

// NoClass is the reserved FSM character meaning "this item matched no
// registered class." It must never be registered as a class character.
const NoClass = rune(0)

// ErrAmbiguousClass is wrapped into the error returned by Classify when two
// or more registered patterns match the same item. This is a grammar-design
// defect, not a runtime condition the classifier attempts to recover from.
var ErrAmbiguousClass = errors.New("fsmchar: item matches more than one class")

// ErrReservedClass is returned by Define when the caller attempts to
// register NoClass ('\x00') as an FSM character.
var ErrReservedClass = errors.New("fsmchar: '\\x00' is reserved and cannot be registered")

// Table holds the set of registered FSM-char patterns for one grammar. Each
// entry's pattern is implicitly anchored at both ends (matched against a
// whole item, never a prefix or suffix of it).
type Table struct {
	registry *pattern.Registry
	chars    map[rune]bool
}

// NewTable returns an empty classifier table.
func NewTable() *Table {
	return &Table{registry: pattern.NewAnchored(), chars: make(map[rune]bool)}
}

// Define registers regex as the pattern identifying items of class ch. It
// fails if ch is NoClass or already registered.
func (t *Table) Define(ch rune, regex string) error {
	if ch == NoClass {
		return ErrReservedClass
	}
	if err := t.registry.Define(string(ch), regex); err != nil {
		return fmt.Errorf("fsmchar: %w", err)
	}
	t.chars[ch] = true
	return nil
}

// Remove deletes the pattern registered for ch.
func (t *Table) Remove(ch rune) error {
	if err := t.registry.Remove(string(ch)); err != nil {
		return fmt.Errorf("fsmchar: %w", err)
	}
	delete(t.chars, ch)
	return nil
}

// Len reports how many classes are registered.
func (t *Table) Len() int {
	return t.registry.Len()
}

// Classify returns the single FSM character whose pattern matches item in
// its entirety, or NoClass if none match. It returns a non-nil error,
// wrapping ErrAmbiguousClass, if more than one pattern matches — this
// indicates the grammar's FSM-char patterns are not mutually exclusive and
// is always a fatal condition, never recovered from.
func (t *Table) Classify(item string) (rune, error) {
	matches := t.registry.FindMatches(item)
	switch len(matches) {
	case 0:
		return NoClass, nil
	case 1:
		// Registry ids for this table are always single-rune strings,
		// produced exclusively by Define above.
		return []rune(matches[0].ID)[0], nil
	default:
		return NoClass, fmt.Errorf("fsmchar: classifying %q: %w (matched %d classes)", item, ErrAmbiguousClass, len(matches))
	}
}

// ClassifyAll maps Classify over a sequence of items, returning the
// concatenated FSM string. This is the direct analogue of
// ezmlex.tokenizers.TokenizerBase._make_fsm_str_by_patterns.
func (t *Table) ClassifyAll(items []string) (string, error) {
	out := make([]rune, len(items))
	for i, item := range items {
		ch, err := t.Classify(item)
		if err != nil {
			return "", err
		}
		out[i] = ch
	}
	return string(out), nil
}
