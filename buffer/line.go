package buffer

import (
	"strings"

	"github.com/ptomulik/ezmlex/position"
)

// LineFSMMapper classifies a single buffered line into its FSM character.
// fsmchar.Table.Classify has exactly this signature and is the mapper
// every LineBuffer in this module is constructed with.
type LineFSMMapper func(line string) (rune, error)

// defaultUnclassified is the LineFSMMapper used when none is supplied; it
// never matches, deferring entirely to a grammar's classifier.
func defaultUnclassified(string) (rune, error) { return 0, nil }

// defaultLineChunk is the default extend() chunk size, in characters, for a
// LineBuffer.
const defaultLineChunk = 256

// LineBuffer is the line-item Buffer variant: items are whole physical
// lines (including their trailing newline, except possibly the last item
// buffered, which may be an "incomplete line" still awaiting its
// terminator).
type LineBuffer struct {
	mapper LineFSMMapper

	lines    []string
	fsmChars []rune

	start position.Marker
	end   position.Marker

	adapter lineAdapter
}

type lineAdapter interface {
	// next returns the next raw piece of text read from the source, or
	// ("", false, nil) once exhausted. A piece need not be a complete
	// line: appendPiece below merges it onto an incomplete last item when
	// appropriate.
	next() (string, bool, error)
}

// NewLineBuffer constructs an empty, unbound LineBuffer using mapper to
// classify each buffered line. If mapper is nil, every line classifies as
// unclassified (FSM char 0).
func NewLineBuffer(mapper LineFSMMapper) *LineBuffer {
	if mapper == nil {
		mapper = defaultUnclassified
	}
	b := &LineBuffer{mapper: mapper, adapter: noLineInput{}}
	b.updateEndMarker()
	return b
}

// DefaultChunk returns the default extend() chunk size for LineBuffer, in
// characters.
func (b *LineBuffer) DefaultChunk() int { return defaultLineChunk }

// Bind attaches input as the source for subsequent Extend calls. Supported
// input types: string, LineReader, io.Reader, PieceIterator.
func (b *LineBuffer) Bind(input any) error {
	a, err := newLineAdapter(input)
	if err != nil {
		return err
	}
	b.adapter = a
	return nil
}

// SetStartMarker moves the start marker to m and recomputes the end
// marker.
func (b *LineBuffer) SetStartMarker(m position.Marker) {
	b.start = m
	b.updateEndMarker()
}

// Start returns the buffer's start marker.
func (b *LineBuffer) Start() position.Marker { return b.start }

// End returns the buffer's end marker.
func (b *LineBuffer) End() position.Marker { return b.end }

// Assign replaces the buffer's content wholly and sets the start marker.
// content may be a string (split into lines with terminators preserved),
// a []string of already-split lines, or nil (meaning "empty").
func (b *LineBuffer) Assign(start position.Marker, content any) error {
	var lines []string
	switch v := content.(type) {
	case nil:
		lines = nil
	case []string:
		lines = v
	case string:
		lines = splitKeepingTerminators(v)
	default:
		return &InvalidContentError{Variant: "LineBuffer", Got: content}
	}
	return b.assignLines(start, lines)
}

func (b *LineBuffer) assignLines(start position.Marker, lines []string) error {
	chars := make([]rune, len(lines))
	for i, l := range lines {
		ch, err := b.mapper(l)
		if err != nil {
			return err
		}
		chars[i] = ch
	}
	b.lines = lines
	b.fsmChars = chars
	b.SetStartMarker(start)
	return nil
}

// splitKeepingTerminators splits s into lines, each retaining its trailing
// "\n" (the last line omits it only if s itself has no trailing newline).
// This fixes the reference implementation's bare-string assignment, which
// discarded terminators via splitlines() and thereby could not
// distinguish a complete line from an incomplete one.
func splitKeepingTerminators(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// updateEndMarker recomputes the end marker from the buffer's current
// lines and start marker.
func (b *LineBuffer) updateEndMarker() {
	m := len(b.lines)
	if m == 0 {
		b.end = b.start
		return
	}

	lastIncomplete := !strings.HasSuffix(b.lines[m-1], "\n")
	completeLines := m
	if lastIncomplete {
		completeLines--
	}

	totalChars := 0
	for _, l := range b.lines {
		totalChars += len([]rune(l))
	}

	b.end.Char = b.start.Char + totalChars
	b.end.Line = b.start.Line + completeLines

	lastLen := len([]rune(b.lines[m-1]))
	switch {
	case !lastIncomplete:
		b.end.Col = 0
	case m == 1:
		b.end.Col = b.start.Col + lastLen
	default:
		b.end.Col = lastLen
	}
}

// appendPiece adds a raw chunk of text read from the bound input. If the
// buffer's last item is an incomplete line (no trailing "\n" yet), piece
// is concatenated onto it and its FSM class recomputed in place, rather
// than starting a new item — mirroring how a line split across two reads
// is really one logical line.
func (b *LineBuffer) appendPiece(piece string) error {
	if piece == "" {
		return nil
	}
	if n := len(b.lines); n > 0 && !strings.HasSuffix(b.lines[n-1], "\n") {
		b.lines[n-1] += piece
		ch, err := b.mapper(b.lines[n-1])
		if err != nil {
			return err
		}
		b.fsmChars[n-1] = ch
		return nil
	}
	ch, err := b.mapper(piece)
	if err != nil {
		return err
	}
	b.lines = append(b.lines, piece)
	b.fsmChars = append(b.fsmChars, ch)
	return nil
}

// Extend reads lines from the bound input, merging a continuation of a
// previously incomplete line onto it rather than starting a new item,
// until it has accumulated at least chunkSize characters or the input is
// exhausted. If chunkSize is zero, defaultLineChunk is used. It returns
// the number of characters read, counting continuation-merged characters
// the same as characters that started a new line.
func (b *LineBuffer) Extend(chunkSize int) (int, error) {
	if chunkSize <= 0 {
		chunkSize = defaultLineChunk
	}
	size := 0
	for size < chunkSize {
		piece, ok, err := b.adapter.next()
		if err != nil {
			return size, err
		}
		if !ok {
			break
		}
		if err := b.appendPiece(piece); err != nil {
			return size, err
		}
		size += len([]rune(piece))
	}
	b.updateEndMarker()
	return size, nil
}

// Shift removes the first count items (lines) from the buffer, returning
// them as a new LineBuffer carrying the receiver's pre-shift start marker.
// The receiver's start marker advances to that buffer's end marker.
func (b *LineBuffer) Shift(count int) (Buffer, error) {
	if count < 0 || count > b.Len() {
		return nil, ErrShiftCountExceedsLength
	}

	shiftedLines := append([]string(nil), b.lines[:count]...)
	shiftedChars := append([]rune(nil), b.fsmChars[:count]...)

	out := NewLineBuffer(b.mapper)
	out.lines = shiftedLines
	out.fsmChars = shiftedChars
	out.SetStartMarker(b.start)

	remainingLines := append([]string(nil), b.lines[count:]...)
	remainingChars := append([]rune(nil), b.fsmChars[count:]...)
	b.lines = remainingLines
	b.fsmChars = remainingChars
	b.SetStartMarker(out.End())

	return out, nil
}

// Len returns the number of lines currently buffered.
func (b *LineBuffer) Len() int { return len(b.lines) }

// String returns the buffered content verbatim (the concatenation of all
// buffered lines).
func (b *LineBuffer) String() string { return strings.Join(b.lines, "") }

// FSMString returns the buffer's current FSM string, one character per
// buffered line.
func (b *LineBuffer) FSMString() string { return string(b.fsmChars) }

// At returns the line at index i.
func (b *LineBuffer) At(i int) string { return b.lines[i] }

// --- line adapters ---

type noLineInput struct{}

func (noLineInput) next() (string, bool, error) { return "", false, ErrNoInput }

type stringLineAdapter struct {
	lines []string
	pos   int
}

func (s *stringLineAdapter) next() (string, bool, error) {
	if s.pos >= len(s.lines) {
		return "", false, nil
	}
	v := s.lines[s.pos]
	s.pos++
	return v, true, nil
}

type readerLineAdapter struct {
	r LineReader
}

func (s *readerLineAdapter) next() (string, bool, error) {
	line, err := s.r.ReadLine()
	if line == "" && err != nil {
		return "", false, nil
	}
	return line, true, nil
}

type iterLineAdapter struct {
	it PieceIterator
}

func (s *iterLineAdapter) next() (string, bool, error) {
	piece, ok := s.it.Next()
	if !ok {
		return "", false, nil
	}
	return piece, true, nil
}

func newLineAdapter(input any) (lineAdapter, error) {
	switch v := input.(type) {
	case nil:
		return noLineInput{}, nil
	case string:
		return &stringLineAdapter{lines: splitKeepingTerminators(v)}, nil
	case LineReader:
		return &readerLineAdapter{r: v}, nil
	case PieceIterator:
		return &iterLineAdapter{it: v}, nil
	default:
		if r, ok := input.(interface {
			Read([]byte) (int, error)
		}); ok {
			return &readerLineAdapter{r: NewLineReader(r)}, nil
		}
		return nil, &UnsupportedInputError{Variant: "LineBuffer", Got: input}
	}
}
