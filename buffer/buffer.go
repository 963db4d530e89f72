// Package buffer implements the tokenizer's streaming input buffer: a
// byte-exact position-tracking window over heterogeneous input sources
// (strings, readable handles, piece iterators), in both a character-item
// variant (CharBuffer) and a line-item variant (LineBuffer).
package buffer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ptomulik/ezmlex/position"
)

// Buffer is the shape the tokenizer engine drives: bind an input source,
// grow the buffered window on demand, and split off a consumed prefix once
// a token has been matched against it.
type Buffer interface {
	// Bind attaches input as the source for subsequent Extend calls.
	// Passing nil detaches any previously bound input.
	Bind(input any) error

	// SetStartMarker repositions the buffer's logical start (used when
	// priming a buffer to resume at a caller-supplied position) and
	// recomputes the end marker from the current content.
	SetStartMarker(m position.Marker)

	// Start returns the position of the buffer's first item.
	Start() position.Marker

	// End returns the position just past the buffer's last item.
	End() position.Marker

	// Assign replaces the buffer's content wholly, as if newly constructed
	// at start. content's accepted dynamic types depend on the concrete
	// buffer variant (string for both; a LineBuffer also accepts []string).
	Assign(start position.Marker, content any) error

	// Extend reads more input and appends it, reading about chunkSize
	// characters (0 selects the variant's default chunk size). A variant
	// may read more than chunkSize when it appends whole pieces or lines.
	// It returns the number of characters read, which for CharBuffer is
	// also the number of items appended; a return less than chunkSize
	// signals end of input.
	Extend(chunkSize int) (int, error)

	// Shift removes the first count items, returning them as a new Buffer
	// of the same concrete type positioned at the receiver's pre-shift
	// start marker. The receiver keeps the remainder, with its start
	// marker advanced to the returned buffer's end marker.
	Shift(count int) (Buffer, error)

	// Len reports the number of items currently buffered.
	Len() int

	// String returns the buffered content verbatim (items joined with no
	// added separators for LineBuffer, since each line already carries its
	// own terminator).
	String() string

	// FSMString returns the buffer's current FSM string: one FSM character
	// per buffered item.
	FSMString() string

	// At returns the item at index i as a string (a single rune for
	// CharBuffer, a whole line for LineBuffer).
	At(i int) string

	// DefaultChunk returns the variant's default Extend chunk size.
	DefaultChunk() int
}

// InvalidContentError is returned by Assign when content's dynamic type
// does not match what the buffer variant accepts.
type InvalidContentError struct {
	Variant string
	Got     any
}

func (e *InvalidContentError) Error() string {
	return fmt.Sprintf("buffer: %s.Assign: unsupported content type %T", e.Variant, e.Got)
}

// UnsupportedInputError is returned by Bind when input's dynamic type is
// none of the kinds the buffer variant knows how to read from.
type UnsupportedInputError struct {
	Variant string
	Got     any
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("buffer: %s.Bind: unsupported input type %T", e.Variant, e.Got)
}

// runeReader is the minimal surface CharBuffer needs from a bound
// io.Reader: decoded-rune access, so multibyte input is never split across
// an Extend boundary.
type runeReader interface {
	ReadRune() (rune, int, error)
}

// asRuneReader adapts input into a runeReader if it is (or wraps) an
// io.Reader, buffering it first when it doesn't already decode runes
// itself.
func asRuneReader(input any) (runeReader, bool) {
	switch v := input.(type) {
	case runeReader:
		return v, true
	case io.Reader:
		return bufio.NewReader(v), true
	default:
		return nil, false
	}
}
