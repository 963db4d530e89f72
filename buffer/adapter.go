package buffer

import (
	"bufio"
	"errors"
	"io"
)

// ErrNoInput is returned by Extend when no input has been bound (or nil was
// bound, detaching any previous input).
var ErrNoInput = errors.New("buffer: extend called with no bound input")

// ErrShiftCountExceedsLength is returned by Shift when count is greater than
// the buffer's current length; shifting the entire buffer (count == Len())
// is allowed.
var ErrShiftCountExceedsLength = errors.New("buffer: shift count exceeds buffer length")

// PieceIterator is a lazy sequence of text pieces: a source that yields
// successive fragments of text (for a LineBuffer, each fragment is
// expected to be one physical line, newline included) until exhausted.
type PieceIterator interface {
	// Next returns the next piece and true, or ("", false) once the
	// sequence is exhausted.
	Next() (string, bool)
}

// SliceIterator adapts a []string to PieceIterator.
type SliceIterator struct {
	items []string
	pos   int
}

// NewSliceIterator returns a PieceIterator over items, yielding them in
// order.
func NewSliceIterator(items []string) *SliceIterator {
	return &SliceIterator{items: items}
}

// Next implements PieceIterator.
func (s *SliceIterator) Next() (string, bool) {
	if s.pos >= len(s.items) {
		return "", false
	}
	v := s.items[s.pos]
	s.pos++
	return v, true
}

// LineReader is a readable handle for LineBuffer input: a reader that can
// also hand back a whole line at a time. LineBuffer reads from it through
// ReadLine only; its Read method is not called by the line adapter.
type LineReader interface {
	io.Reader
	// ReadLine returns the next line (including its trailing newline, if
	// any was present) or io.EOF once exhausted.
	ReadLine() (string, error)
}

// bufReadLiner adapts a plain io.Reader into a LineReader using a buffered
// reader, for callers that only have an io.Reader handy. This is an
// ergonomic addition on top of the original library's contract, which
// required the caller to supply an object exposing both read() and
// readline() already.
type bufReadLiner struct {
	r *bufio.Reader
}

// NewLineReader wraps r so it can be bound to a LineBuffer.
func NewLineReader(r io.Reader) LineReader {
	return &bufReadLiner{bufio.NewReader(r)}
}

func (b *bufReadLiner) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *bufReadLiner) ReadLine() (string, error) {
	line, err := b.r.ReadString('\n')
	if line == "" && err != nil {
		return "", err
	}
	return line, nil
}
