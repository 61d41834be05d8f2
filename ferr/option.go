package ferr

import "fmt"

// Option is an Error option function
type Option func(*Error)

func WithMessage(msg string) Option { return func(e *Error) { e.Message = msg } }
func WithFormat(f string) Option    { return func(e *Error) { e.Format = f } }
func WithOffset(off int64) Option   { return func(e *Error) { e.Offset = off } }
func WithCause(err error) Option    { return func(e *Error) { e.Err = err } }

// WithMessagef sets a formatted message
func WithMessagef(format string, args ...interface{}) Option {
	return func(e *Error) { e.Message = fmt.Sprintf(format, args...) }
}
