package framing

import (
	"bytes"
	"fmt"
	"io"
)

// ErrBadMarkup is returned for markup that cannot start a valid token
type ErrBadMarkup struct {
	Message string
	Offset  int
}

func (e ErrBadMarkup) Error() string {
	msg := "bad xml markup"
	if e.Message != "" {
		msg = msg + ": " + e.Message
	}
	if e.Offset < 1 {
		return msg
	}
	return fmt.Sprintf("%s at token offset %d", msg, e.Offset)
}

// Kind is the kind of a token returned by SplitMarkup
type Kind int

const (
	KindText Kind = iota
	KindStartTag
	KindEndTag
	KindEmptyTag
	KindComment
	KindCDATA
	KindProcInst
	KindDirective
)

var (
	openComment = []byte("<!--")
	openCDATA   = []byte("<![CDATA[")
	endComment  = []byte("-->")
	endCDATA    = []byte("]]>")
	endProcInst = []byte("?>")
)

// Classify returns the kind of a token returned by SplitMarkup
func Classify(tok []byte) Kind {
	switch {
	case len(tok) == 0 || tok[0] != '<':
		return KindText
	case bytes.HasPrefix(tok, openComment):
		return KindComment
	case bytes.HasPrefix(tok, openCDATA):
		return KindCDATA
	case bytes.HasPrefix(tok, []byte("<?")):
		return KindProcInst
	case bytes.HasPrefix(tok, []byte("<!")):
		return KindDirective
	case bytes.HasPrefix(tok, []byte("</")):
		return KindEndTag
	case bytes.HasSuffix(tok, []byte("/>")):
		return KindEmptyTag
	default:
		return KindStartTag
	}
}

// CDATA returns the content of a CDATA section token
func CDATA(tok []byte) []byte {
	return bytes.TrimSuffix(bytes.TrimPrefix(tok, openCDATA), endCDATA)
}

// SplitMarkup is a bufio.SplitFunc returning XML markup and text tokens.
func SplitMarkup(b []byte, atEOF bool) (advance int, token []byte, err error) {
	if len(b) == 0 {
		return 0, nil, nil
	}
	if b[0] != '<' {
		if idx := bytes.IndexByte(b, '<'); idx > -1 {
			return idx, b[:idx], nil
		}
		if atEOF {
			return len(b), b, nil
		}
		return 0, nil, nil
	}

	// the opening of comments and CDATA sections must be seen whole
	// before the token can be classified
	if len(b) < len(openCDATA) && !atEOF && (bytes.HasPrefix(openComment, b) || bytes.HasPrefix(openCDATA, b)) {
		return 0, nil, nil
	}

	var end int
	switch {
	case bytes.HasPrefix(b, openComment):
		end = indexEnd(b, len(openComment), endComment)
	case bytes.HasPrefix(b, openCDATA):
		end = indexEnd(b, len(openCDATA), endCDATA)
	case bytes.HasPrefix(b, []byte("<?")):
		end = indexEnd(b, 2, endProcInst)
	case bytes.HasPrefix(b, []byte("<!")):
		end = scanDirective(b)
	case len(b) > 1 && (b[1] == ' ' || b[1] == '<' || b[1] == '>'):
		return 0, nil, ErrBadMarkup{Message: fmt.Sprintf("unexpected %q after '<'", b[1]), Offset: 1}
	default:
		end = scanTag(b)
	}
	switch {
	case end > 0:
		return end, b[:end], nil
	case atEOF:
		return 0, nil, io.ErrUnexpectedEOF
	}
	return 0, nil, nil
}

// indexEnd returns the offset just past the first delim found at or
// after from, or -1
func indexEnd(b []byte, from int, delim []byte) int {
	if idx := bytes.Index(b[from:], delim); idx > -1 {
		return from + idx + len(delim)
	}
	return -1
}

// scanTag returns the offset past the '>' closing the tag starting b,
// ignoring any inside quoted attribute values, or -1.
func scanTag(b []byte) int {
	var quote byte
	for i := 1; i < len(b); i++ {
		switch c := b[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i + 1
		}
	}
	return -1
}

// scanDirective is scanTag allowing an internal subset in square brackets
func scanDirective(b []byte) int {
	var quote byte
	var depth int
	for i := 2; i < len(b); i++ {
		switch c := b[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == '>' && depth <= 0:
			return i + 1
		}
	}
	return -1
}
