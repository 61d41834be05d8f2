// Package jsontok is a non-blocking, chunk-fed JSON tokenizer.
//
// The tokenizer commits input one lexical unit at a time: a scalar that is
// cut by a chunk boundary is left unconsumed until the rest arrives, so the
// only buffering is the scalar being assembled.
package jsontok

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andaru/featurestream/ferr"
	"github.com/andaru/featurestream/stream"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Kind is the kind of a Token
type Kind int

const (
	StartObject Kind = iota
	EndObject
	StartArray
	EndArray
	String
	Number
	True
	False
	Null
)

func (k Kind) String() string {
	switch k {
	case StartObject:
		return "START_OBJECT"
	case EndObject:
		return "END_OBJECT"
	case StartArray:
		return "START_ARRAY"
	case EndArray:
		return "END_ARRAY"
	case String:
		return "VALUE_STRING"
	case Number:
		return "VALUE_NUMBER"
	case True:
		return "VALUE_TRUE"
	case False:
		return "VALUE_FALSE"
	case Null:
		return "VALUE_NULL"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a JSON token.
//
// Name is the object member name the token is the value of. For end tokens
// it is the name of the closed container. Value holds the decoded string,
// the number text, or the literal.
type Token struct {
	Kind    Kind
	Name    string
	HasName bool
	Value   string
	Raw     []byte
	Depth   int
	Offset  int64
}

// IsScalar reports whether the token is a string, number or literal
func (t Token) IsScalar() bool { return t.Kind >= String }

// IsFloat reports whether a number token has a fraction or an exponent
func (t Token) IsFloat() bool {
	return t.Kind == Number && bytes.ContainsAny(t.Raw, ".eE")
}

type expect int

const (
	expectValue expect = iota
	expectValueOrEnd
	expectKey
	expectKeyOrEnd
	expectColon
	expectCommaOrEnd
)

type frame struct {
	array   bool
	name    string
	hasName bool
	key     string
	expect  expect
}

const format = "json"

// Tokenizer is a chunk-fed JSON tokenizer implementing stream.Source.
type Tokenizer struct {
	buf  []byte
	pos  int
	base int64
	eof  bool

	stack    []frame
	rootSeen bool
	rootDone bool
}

// New returns an empty Tokenizer
func New() *Tokenizer { return &Tokenizer{} }

var _ stream.Source[Token] = (*Tokenizer)(nil)

func (t *Tokenizer) Feed(b []byte) error {
	if t.eof {
		return ferr.ContractViolation(ferr.WithFormat(format), ferr.WithMessage("input fed after end of input"))
	}
	if t.pos > 0 {
		n := copy(t.buf, t.buf[t.pos:])
		t.buf = t.buf[:n]
		t.base += int64(t.pos)
		t.pos = 0
	}
	t.buf = append(t.buf, b...)
	return nil
}

func (t *Tokenizer) EndOfInput() { t.eof = true }

// Depth returns the number of open containers
func (t *Tokenizer) Depth() int { return len(t.stack) }

func (t *Tokenizer) malformed(msg string, args ...interface{}) error {
	return errors.WithStack(ferr.MalformedInput(
		ferr.WithFormat(format),
		ferr.WithOffset(t.base+int64(t.pos)),
		ferr.WithMessagef(msg, args...)))
}

func (t *Tokenizer) skipSpace() {
	for t.pos < len(t.buf) {
		switch t.buf[t.pos] {
		case ' ', '\t', '\r', '\n':
			t.pos++
		default:
			return
		}
	}
}

func (t *Tokenizer) Next() (Token, error) {
	for {
		t.skipSpace()
		if t.pos >= len(t.buf) {
			return t.atEnd()
		}
		c := t.buf[t.pos]
		if len(t.stack) == 0 {
			if t.rootDone {
				return Token{}, t.malformed("unexpected %q after the top level value", c)
			}
			return t.value(c)
		}
		top := &t.stack[len(t.stack)-1]
		switch top.expect {
		case expectKeyOrEnd, expectKey:
			if c == '}' && top.expect == expectKeyOrEnd {
				return t.closeContainer(false), nil
			}
			if c != '"' {
				return Token{}, t.malformed("expected an object member name, got %q", c)
			}
			raw, err := t.scanString()
			if err != nil {
				return Token{}, err
			}
			key, err := t.decodeString(raw)
			if err != nil {
				return Token{}, err
			}
			t.pos += len(raw)
			top.key = key
			top.expect = expectColon
		case expectColon:
			if c != ':' {
				return Token{}, t.malformed("expected ':', got %q", c)
			}
			t.pos++
			top.expect = expectValue
		case expectCommaOrEnd:
			switch {
			case c == ',':
				t.pos++
				if top.array {
					top.expect = expectValue
				} else {
					top.expect = expectKey
				}
			case c == ']' && top.array, c == '}' && !top.array:
				return t.closeContainer(top.array), nil
			default:
				return Token{}, t.malformed("expected ',' or the end of the container, got %q", c)
			}
		case expectValueOrEnd:
			if c == ']' {
				return t.closeContainer(true), nil
			}
			return t.value(c)
		default:
			return t.value(c)
		}
	}
}

func (t *Tokenizer) atEnd() (Token, error) {
	switch {
	case !t.eof:
		return Token{}, stream.ErrIncomplete
	case !t.rootSeen:
		return Token{}, t.malformed("no JSON value")
	case len(t.stack) > 0:
		return Token{}, t.malformed("unexpected end of input, %d containers open", len(t.stack))
	}
	t.buf, t.pos = nil, 0
	return Token{}, io.EOF
}

// member returns the name the next value is bound to
func (t *Tokenizer) member() (name string, ok bool) {
	if n := len(t.stack); n > 0 && !t.stack[n-1].array {
		return t.stack[n-1].key, true
	}
	return "", false
}

// valueDone moves the enclosing container past a completed value
func (t *Tokenizer) valueDone() {
	if n := len(t.stack); n > 0 {
		t.stack[n-1].expect = expectCommaOrEnd
	} else {
		t.rootDone = true
	}
}

func (t *Tokenizer) value(c byte) (Token, error) {
	name, hasName := t.member()
	tok := Token{Name: name, HasName: hasName, Depth: len(t.stack), Offset: t.base + int64(t.pos)}
	switch {
	case c == '{' || c == '[':
		t.pos++
		t.rootSeen = true
		fr := frame{array: c == '[', name: name, hasName: hasName, expect: expectKeyOrEnd}
		tok.Kind = StartObject
		if fr.array {
			fr.expect = expectValueOrEnd
			tok.Kind = StartArray
		}
		t.stack = append(t.stack, fr)
		return tok, nil
	case c == '"':
		raw, err := t.scanString()
		if err != nil {
			return Token{}, err
		}
		s, err := t.decodeString(raw)
		if err != nil {
			return Token{}, err
		}
		tok.Kind, tok.Value, tok.Raw = String, s, bytes.Clone(raw)
		t.pos += len(raw)
	case c == '-' || (c >= '0' && c <= '9'):
		raw, err := t.scanNumber()
		if err != nil {
			return Token{}, err
		}
		tok.Kind, tok.Value, tok.Raw = Number, string(raw), bytes.Clone(raw)
		t.pos += len(raw)
	case c == 't', c == 'f', c == 'n':
		kind, lit, err := t.scanLiteral(c)
		if err != nil {
			return Token{}, err
		}
		tok.Kind, tok.Value, tok.Raw = kind, lit, []byte(lit)
		t.pos += len(lit)
	default:
		return Token{}, t.malformed("unexpected %q", c)
	}
	t.rootSeen = true
	t.valueDone()
	return tok, nil
}

func (t *Tokenizer) closeContainer(array bool) Token {
	fr := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	tok := Token{Kind: EndObject, Name: fr.name, HasName: fr.hasName, Depth: len(t.stack), Offset: t.base + int64(t.pos)}
	if array {
		tok.Kind = EndArray
	}
	t.pos++
	t.valueDone()
	return tok
}

// scanString returns the raw string literal at pos, including quotes
func (t *Tokenizer) scanString() ([]byte, error) {
	b := t.buf[t.pos:]
	for i := 1; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case '"':
			return b[:i+1], nil
		}
	}
	if t.eof {
		return nil, t.malformed("unterminated string")
	}
	return nil, stream.ErrIncomplete
}

func (t *Tokenizer) decodeString(raw []byte) (string, error) {
	if bytes.IndexByte(raw, '\\') < 0 {
		for _, c := range raw {
			if c < 0x20 {
				return "", t.malformed("control character in string")
			}
		}
		return string(raw[1 : len(raw)-1]), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", t.malformed("invalid string: %v", err)
	}
	return s, nil
}

func isNumberByte(c byte) bool {
	return c >= '0' && c <= '9' || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E'
}

func (t *Tokenizer) scanNumber() ([]byte, error) {
	b := t.buf[t.pos:]
	i := 0
	for i < len(b) && isNumberByte(b[i]) {
		i++
	}
	if i == len(b) && !t.eof {
		return nil, stream.ErrIncomplete
	}
	if !json.Valid(b[:i]) {
		return nil, t.malformed("invalid number %q", b[:i])
	}
	return b[:i], nil
}

var literals = map[byte]struct {
	kind Kind
	text string
}{
	't': {True, "true"},
	'f': {False, "false"},
	'n': {Null, "null"},
}

func (t *Tokenizer) scanLiteral(c byte) (Kind, string, error) {
	lit := literals[c]
	b := t.buf[t.pos:]
	if len(b) < len(lit.text) {
		if !t.eof && bytes.HasPrefix([]byte(lit.text), b) {
			return 0, "", stream.ErrIncomplete
		}
		return 0, "", t.malformed("invalid literal")
	}
	if string(b[:len(lit.text)]) != lit.text {
		return 0, "", t.malformed("invalid literal")
	}
	return lit.kind, lit.text, nil
}
