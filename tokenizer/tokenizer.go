// Package tokenizer implements the two-level matching engine: it derives
// an FSM string from a buffer's currently held items and performs
// longest-match token selection against a grammar, extending the buffer
// for as long as a match could still grow.
package tokenizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ptomulik/ezmlex/buffer"
	"github.com/ptomulik/ezmlex/grammar"
	"github.com/ptomulik/ezmlex/token"
)

// ErrAmbiguousMatch is wrapped into the error Token returns when more than
// one error type matches at the current position, whatever the lengths of
// their matches (a grammar that cannot unambiguously diagnose its own
// rejected input). A
// tie among ordinary token types is not fatal: it is routed through
// emitError instead, since the input it describes is itself the thing
// wrong with the grammar's positional coverage.
var ErrAmbiguousMatch = errors.New("tokenizer: ambiguous match")

// ErrNoMatch is wrapped into the error Token returns when the buffered FSM
// string matches neither an ordinary token type nor an error type. This
// means the grammar has no catch-all error type to diagnose input its
// token types reject.
var ErrNoMatch = errors.New("tokenizer: no match")

// ErrMaxIterationsExceeded is returned by Token if the bounded extend/match
// loop runs for MaxIterations without reaching a decision. This guards
// against a grammar whose token patterns keep matching the whole buffered
// FSM string while input keeps arriving, which would otherwise make Token
// extend the buffer forever.
var ErrMaxIterationsExceeded = errors.New("tokenizer: max iterations exceeded")

// Default tuning constants.
const (
	DefaultMaxLookahead  = 1
	DefaultMaxIterations = 1_000_000
)

// Tokenizer drives a Buffer against a Grammar, producing one token.Instance
// per call to Token.
type Tokenizer struct {
	grammar *grammar.Grammar
	buf     buffer.Buffer

	maxLookahead  int
	maxIterations int

	eoi bool
}

// Option configures a Tokenizer at construction time.
type Option func(*Tokenizer)

// WithMaxLookahead overrides the minimum buffered item count Token
// maintains before attempting its first match in a round.
func WithMaxLookahead(n int) Option {
	return func(t *Tokenizer) { t.maxLookahead = n }
}

// WithMaxIterations overrides the bound on Token's internal extend/match
// loop.
func WithMaxIterations(n int) Option {
	return func(t *Tokenizer) { t.maxIterations = n }
}

// New constructs a Tokenizer over buf (already configured for the item
// granularity the caller wants) and binds input to it.
func New(g *grammar.Grammar, buf buffer.Buffer, input any, opts ...Option) (*Tokenizer, error) {
	t := &Tokenizer{
		grammar:       g,
		buf:           buf,
		maxLookahead:  DefaultMaxLookahead,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := buf.Bind(input); err != nil {
		return nil, err
	}
	return t, nil
}

// NewChar constructs a Tokenizer over a character-item buffer whose FSM
// string is the buffered content verbatim (the common case: token
// patterns are written directly against input characters).
func NewChar(g *grammar.Grammar, input any, opts ...Option) (*Tokenizer, error) {
	return New(g, buffer.NewCharBuffer(nil), input, opts...)
}

// NewLine constructs a Tokenizer over a line-item buffer whose FSM string
// is derived by classifying each buffered line through the grammar's
// FSM-char patterns.
func NewLine(g *grammar.Grammar, input any, opts ...Option) (*Tokenizer, error) {
	return New(g, buffer.NewLineBuffer(g.ClassifyItem), input, opts...)
}

// Token produces the next token, extending the bound buffer as needed. It
// returns (nil, nil) once the input is exhausted and nothing remains
// buffered: that is the only non-error way to signal end of input.
func (t *Tokenizer) Token() (*token.Instance, error) {
	for iter := 0; iter < t.maxIterations; iter++ {
		for !t.eoi && t.buf.Len() < t.maxLookahead {
			if err := t.grow(); err != nil {
				return nil, err
			}
		}
		if t.buf.Len() == 0 {
			return nil, nil
		}

		fsmStr := t.buf.FSMString()
		fsmLen := len([]rune(fsmStr))

		candidates := t.grammar.MatchTokenTypes(fsmStr)
		if len(candidates) == 0 {
			return t.emitError(fsmStr)
		}

		maxLen := 0
		wholeCount := 0
		for _, c := range candidates {
			l := len([]rune(c.Matched))
			if l > maxLen {
				maxLen = l
			}
			if l == fsmLen {
				wholeCount++
			}
		}

		if wholeCount == 0 || t.eoi {
			var winner *token.Candidate
			ties := 0
			for i := range candidates {
				if len([]rune(candidates[i].Matched)) == maxLen {
					winner = &candidates[i]
					ties++
				}
			}
			if ties > 1 {
				return t.emitError(fsmStr)
			}
			return t.shift(*winner, maxLen)
		}

		if err := t.grow(); err != nil {
			return nil, err
		}
	}
	return nil, ErrMaxIterationsExceeded
}

// grow extends the buffer by its default chunk size and marks end of input
// once a read returns a count below that default chunk size. Once end of
// input is marked it returns without calling Extend.
func (t *Tokenizer) grow() error {
	if t.eoi {
		return nil
	}
	n, err := t.buf.Extend(0)
	if err != nil {
		return err
	}
	if n < t.buf.DefaultChunk() {
		t.eoi = true
	}
	return nil
}

// emitError matches the grammar's error types against fsmStr when no
// ordinary token type matches. Exactly one error type must match; zero or
// more than one both indicate a grammar that cannot diagnose its own
// rejected input, so both are returned as errors rather than guessed at.
func (t *Tokenizer) emitError(fsmStr string) (*token.Instance, error) {
	candidates := t.grammar.MatchErrorTypes(fsmStr)
	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: %q matches no token type and no error type", ErrNoMatch, fsmStr)
	case 1:
		return t.shift(candidates[0], len([]rune(candidates[0].Matched)))
	default:
		return nil, fmt.Errorf("%w: %d error types match %q", ErrAmbiguousMatch, len(candidates), fsmStr)
	}
}

// shift consumes n items from the buffer and builds the token.Instance
// they produce.
func (t *Tokenizer) shift(c token.Candidate, n int) (*token.Instance, error) {
	start := t.buf.Start()
	shifted, err := t.buf.Shift(n)
	if err != nil {
		return nil, err
	}
	return &token.Instance{
		ID:      c.Descriptor.ID,
		Start:   start,
		Value:   shifted.String(),
		IsError: c.Descriptor.IsError,
		Message: c.Descriptor.Message,
	}, nil
}

// All drains the tokenizer, returning every token produced before end of
// input or the first error.
func (t *Tokenizer) All() ([]*token.Instance, error) {
	var out []*token.Instance
	for {
		tok, err := t.Token()
		if err != nil {
			return out, err
		}
		if tok == nil {
			return out, nil
		}
		out = append(out, tok)
	}
}

// Result is one value produced on the channel returned by Tokens.
type Result struct {
	Token *token.Instance
	Err   error
}

// Tokens runs the tokenizer in a goroutine, streaming tokens on the
// returned channel until end of input, an error, or ctx is cancelled. The
// channel is closed after the last Result is sent.
func (t *Tokenizer) Tokens(ctx context.Context) <-chan Result {
	ch := make(chan Result)
	go func() {
		defer close(ch)
		for {
			tok, err := t.Token()
			if err != nil {
				select {
				case ch <- Result{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			if tok == nil {
				return
			}
			select {
			case ch <- Result{Token: tok}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
