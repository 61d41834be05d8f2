package ferr

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a decoding failure
type Kind int

const (
	// KindMalformedInput is a syntax error reported by a tokenizer
	KindMalformedInput Kind = iota
	// KindContractViolation is a misuse of the push/finish or handler contract
	KindContractViolation
	// KindUnsupported is well-formed input the decoder cannot express as events
	KindUnsupported
	// KindHandler is an error returned by a downstream event handler
	KindHandler
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "malformed-input"
	case KindContractViolation:
		return "contract-violation"
	case KindUnsupported:
		return "unsupported"
	case KindHandler:
		return "handler"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k *Kind) UnmarshalText(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "malformed-input":
		*k = KindMalformedInput
	case "contract-violation":
		*k = KindContractViolation
	case "unsupported":
		*k = KindUnsupported
	case "handler":
		*k = KindHandler
	default:
		return errors.New("unknown value")
	}
	return nil
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Error is a decoding error.
//
// Offset is the absolute input byte offset the error was detected at,
// or -1 when it is not known.
type Error struct {
	Kind    Kind   `json:"kind"`
	Format  string `json:"format,omitempty"`
	Offset  int64  `json:"offset"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	s := e.Kind.String() + " error"
	if e.Format != "" {
		s = e.Format + " " + s
	}
	if e.Offset > -1 {
		s += fmt.Sprintf(" at input offset %d", e.Offset)
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the cause of the error, if any
func (e *Error) Unwrap() error { return e.Err }

func newError(k Kind, opts []Option) *Error {
	e := &Error{Kind: k, Offset: -1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func MalformedInput(opts ...Option) *Error    { return newError(KindMalformedInput, opts) }
func ContractViolation(opts ...Option) *Error { return newError(KindContractViolation, opts) }
func Unsupported(opts ...Option) *Error       { return newError(KindUnsupported, opts) }

// HandlerFailure wraps an error returned by an event handler.
func HandlerFailure(cause error, opts ...Option) *Error {
	return newError(KindHandler, append([]Option{WithCause(cause)}, opts...))
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err carries an *Error of kind k
func Is(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}
