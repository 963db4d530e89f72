package buffer

import (
	"strings"

	"github.com/ptomulik/ezmlex/position"
)

// CharFSMMapper converts a chunk of buffered characters into its FSM-string
// representation. It is applied once per appended chunk, so it must be
// context-free per call: the common case (and the default when none is
// supplied to NewCharBuffer) is the identity mapping.
type CharFSMMapper func(chunk string) string

// IdentityCharFSMMapper returns chunk unchanged; it is the default
// CharFSMMapper, matching the reference implementation's most common usage
// (ordinary tokenizers whose FSM string equals the buffered text).
func IdentityCharFSMMapper(chunk string) string { return chunk }

// defaultCharChunk is the default extend() chunk size, in characters, for a
// CharBuffer.
const defaultCharChunk = 32

// CharBuffer is the character-item Buffer variant: items are individual
// characters (runes), content is held as a single Go string.
type CharBuffer struct {
	mapper  CharFSMMapper
	content string
	fsmStr  string

	start position.Marker
	end   position.Marker

	adapter charAdapter
}

// charAdapter is the tagged variant of input-read strategies for CharBuffer,
// selected once at Bind time.
type charAdapter interface {
	// extend reads about n characters (runes) and returns them. The
	// returned string is shorter than n only once the input is exhausted
	// (the piece-iterator adapter may return more than n, since it appends
	// whole pieces); callers detect end of input by comparing the number of
	// characters returned against the requested chunk size.
	extend(n int) (string, error)
}

// NewCharBuffer constructs an empty, unbound CharBuffer using mapper to
// derive its FSM string. If mapper is nil, IdentityCharFSMMapper is used.
func NewCharBuffer(mapper CharFSMMapper) *CharBuffer {
	if mapper == nil {
		mapper = IdentityCharFSMMapper
	}
	b := &CharBuffer{mapper: mapper, adapter: noCharInput{}}
	b.updateEndMarker()
	return b
}

// DefaultChunk returns the default extend() chunk size for CharBuffer, in
// characters.
func (b *CharBuffer) DefaultChunk() int { return defaultCharChunk }

// Bind attaches input as the source for subsequent Extend calls. Passing
// nil detaches the current input. Supported input types: string,
// io.Reader, PieceIterator.
func (b *CharBuffer) Bind(input any) error {
	a, err := newCharAdapter(input)
	if err != nil {
		return err
	}
	b.adapter = a
	return nil
}

// SetStartMarker moves the start marker to m and recomputes the end marker.
func (b *CharBuffer) SetStartMarker(m position.Marker) {
	b.start = m
	b.updateEndMarker()
}

// Start returns the buffer's start marker.
func (b *CharBuffer) Start() position.Marker { return b.start }

// End returns the buffer's end marker.
func (b *CharBuffer) End() position.Marker { return b.end }

// Assign replaces the buffer's content wholly and sets the start marker.
// content may be a string or nil (meaning "empty").
func (b *CharBuffer) Assign(start position.Marker, content any) error {
	return b.assign(start, content, nil)
}

// assignFSM is Assign with an explicit FSM-string override, used internally
// by Shift to hand the sliced FSM string to the residual/returned buffers
// without recomputing it from content.
func (b *CharBuffer) assignFSM(start position.Marker, content string, fsmStr *string) {
	_ = b.assign(start, content, fsmStr)
}

func (b *CharBuffer) assign(start position.Marker, content any, fsmStrOverride *string) error {
	var s string
	switch v := content.(type) {
	case nil:
		s = ""
	case string:
		s = v
	default:
		return &InvalidContentError{Variant: "CharBuffer", Got: content}
	}
	b.content = s
	if fsmStrOverride != nil {
		b.fsmStr = *fsmStrOverride
	} else {
		b.fsmStr = b.mapper(s)
	}
	b.SetStartMarker(start)
	return nil
}

// updateEndMarker recomputes the end marker from the buffer's current
// content and start marker.
func (b *CharBuffer) updateEndMarker() {
	n := len([]rune(b.content))
	k := strings.Count(b.content, "\n")
	last := strings.LastIndex(b.content, "\n")
	b.end.Char = b.start.Char + n
	b.end.Line = b.start.Line + k
	if k == 0 {
		b.end.Col = b.start.Col + n
	} else {
		b.end.Col = len([]rune(b.content[last+1:]))
	}
}

// Extend reads chunkSize characters from the bound input (fewer at end of
// input; more from a piece iterator, whose pieces are appended whole) and
// appends them to the buffer. If chunkSize is zero, defaultCharChunk is
// used. It returns the number of characters appended.
func (b *CharBuffer) Extend(chunkSize int) (int, error) {
	if chunkSize <= 0 {
		chunkSize = defaultCharChunk
	}
	chunk, err := b.adapter.extend(chunkSize)
	if err != nil {
		return 0, err
	}
	b.content += chunk
	b.fsmStr += b.mapper(chunk)
	b.updateEndMarker()
	return len([]rune(chunk)), nil
}

// Shift removes the first count items (characters) from the buffer,
// returning them as a new CharBuffer carrying the receiver's pre-shift
// start marker. The receiver's start marker advances to that buffer's end
// marker.
func (b *CharBuffer) Shift(count int) (Buffer, error) {
	if count < 0 || count > b.Len() {
		return nil, ErrShiftCountExceedsLength
	}
	runes := []rune(b.content)
	fsmRunes := []rune(b.fsmStr)

	shiftedContent := string(runes[:count])
	shiftedFSM := string(fsmRunes[:count])

	out := NewCharBuffer(b.mapper)
	out.assignFSM(b.start, shiftedContent, &shiftedFSM)

	remainingContent := string(runes[count:])
	remainingFSM := string(fsmRunes[count:])
	b.assignFSM(out.End(), remainingContent, &remainingFSM)

	return out, nil
}

// Len returns the number of characters currently buffered.
func (b *CharBuffer) Len() int { return len([]rune(b.content)) }

// String returns the buffered content, reproducing the exact consumed
// input span.
func (b *CharBuffer) String() string { return b.content }

// FSMString returns the buffer's current FSM string.
func (b *CharBuffer) FSMString() string { return b.fsmStr }

// At returns the single-character item at index i, as a string.
func (b *CharBuffer) At(i int) string {
	return string([]rune(b.content)[i])
}

// --- char adapters ---

type noCharInput struct{}

func (noCharInput) extend(int) (string, error) { return "", ErrNoInput }

type stringCharInput struct {
	src string
	pos int
}

func (s *stringCharInput) extend(n int) (string, error) {
	runes := []rune(s.src)
	end := s.pos + n
	if end > len(runes) {
		end = len(runes)
	}
	if end <= s.pos {
		return "", nil
	}
	chunk := string(runes[s.pos:end])
	s.pos = end
	return chunk, nil
}

type readerCharInput struct {
	r runeReader
}

func (s *readerCharInput) extend(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		r, _, err := s.r.ReadRune()
		if err != nil {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

type iterCharInput struct {
	it PieceIterator
}

func (s *iterCharInput) extend(n int) (string, error) {
	var sb strings.Builder
	size := 0
	for size < n {
		piece, ok := s.it.Next()
		if !ok {
			break
		}
		sb.WriteString(piece)
		size += len([]rune(piece))
	}
	return sb.String(), nil
}

func newCharAdapter(input any) (charAdapter, error) {
	switch v := input.(type) {
	case nil:
		return noCharInput{}, nil
	case string:
		return &stringCharInput{src: v}, nil
	case PieceIterator:
		return &iterCharInput{it: v}, nil
	default:
		r, ok := asRuneReader(input)
		if ok {
			return &readerCharInput{r: r}, nil
		}
		return nil, &UnsupportedInputError{Variant: "CharBuffer", Got: input}
	}
}
