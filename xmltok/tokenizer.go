// Package xmltok is a non-blocking, chunk-fed XML tokenizer.
//
// Input is framed into complete markup and text tokens by
// framing.SplitMarkup. Each complete token is then parsed with
// encoding/xml, and element and attribute names are resolved against the
// namespace declarations in scope.
package xmltok

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/andaru/featurestream/ferr"
	"github.com/andaru/featurestream/framing"
	"github.com/andaru/featurestream/stream"
	"github.com/andaru/featurestream/xmlutil"
	"github.com/pkg/errors"
)

// Kind is the kind of a Token
type Kind int

const (
	StartDocument Kind = iota
	EndDocument
	StartElement
	EndElement
	CharData
)

func (k Kind) String() string {
	switch k {
	case StartDocument:
		return "START_DOCUMENT"
	case EndDocument:
		return "END_DOCUMENT"
	case StartElement:
		return "START_ELEMENT"
	case EndElement:
		return "END_ELEMENT"
	case CharData:
		return "CHARACTERS"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Attr is an attribute with its namespace resolved. Namespace
// declarations are not reported as attributes.
type Attr struct {
	Name   xml.Name
	Prefix string
	Value  string
}

// Token is an XML token. Name.Space holds the resolved namespace URI and
// Prefix the prefix used in the document.
type Token struct {
	Kind   Kind
	Name   xml.Name
	Prefix string
	Attr   []Attr
	Text   []byte
	Offset int64
}

// IsWhitespace reports whether a CharData token holds only XML whitespace
func (t Token) IsWhitespace() bool {
	return len(bytes.Trim(t.Text, " \t\r\n")) == 0
}

const format = "xml"

type state int

const (
	stateProlog state = iota
	stateBody
	stateEpilog
	stateDone
)

type openElement struct {
	raw  xml.Name
	decl xmlutil.PrefixMap
}

// Tokenizer is a chunk-fed XML tokenizer implementing stream.Source.
type Tokenizer struct {
	buf  []byte
	pos  int
	base int64
	eof  bool

	state   state
	started bool
	open    []openElement
	pending *Token
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

// Depth returns the number of open elements
func (t *Tokenizer) Depth() int { return len(t.open) }

func (t *Tokenizer) malformed(off int64, msg string, args ...interface{}) error {
	return errors.WithStack(ferr.MalformedInput(ferr.WithFormat(format), ferr.WithOffset(off), ferr.WithMessagef(msg, args...)))
}

func (t *Tokenizer) Next() (Token, error) {
	if p := t.pending; p != nil {
		t.pending = nil
		t.pop()
		return *p, nil
	}
	if !t.started {
		t.started = true
		return Token{Kind: StartDocument}, nil
	}
	for {
		if t.state == stateDone {
			return Token{}, io.EOF
		}
		off := t.base + int64(t.pos)
		advance, raw, err := framing.SplitMarkup(t.buf[t.pos:], t.eof)
		switch {
		case err == io.ErrUnexpectedEOF:
			return Token{}, t.malformed(off, "unexpected end of input in markup")
		case err != nil:
			return Token{}, t.malformed(off, "%s", err.Error())
		case advance == 0:
			if !t.eof {
				return Token{}, stream.ErrIncomplete
			}
			return t.end(off)
		}
		t.pos += advance

		tok, ok, err := t.token(raw, off)
		if err != nil || ok {
			return tok, err
		}
	}
}

func (t *Tokenizer) end(off int64) (Token, error) {
	switch t.state {
	case stateProlog:
		return Token{}, t.malformed(off, "no root element")
	case stateBody:
		return Token{}, t.malformed(off, "unexpected end of input, %d elements open", len(t.open))
	}
	t.state = stateDone
	t.buf, t.pos = nil, 0
	return Token{Kind: EndDocument, Offset: off}, nil
}

// token converts a framed token; ok is false for tokens not reported.
func (t *Tokenizer) token(raw []byte, off int64) (tok Token, ok bool, err error) {
	switch framing.Classify(raw) {
	case framing.KindComment, framing.KindProcInst:
		return tok, false, nil
	case framing.KindDirective:
		if t.state != stateProlog {
			return tok, false, t.malformed(off, "directive after the root element start")
		}
		return tok, false, nil
	case framing.KindCDATA:
		if t.state != stateBody {
			return tok, false, t.malformed(off, "CDATA section outside the root element")
		}
		return Token{Kind: CharData, Text: bytes.Clone(framing.CDATA(raw)), Offset: off}, true, nil
	case framing.KindText:
		if t.state != stateBody {
			if len(bytes.Trim(raw, " \t\r\n")) > 0 {
				return tok, false, t.malformed(off, "character data outside the root element")
			}
			return tok, false, nil
		}
		xt, err := rawToken(raw)
		if err != nil {
			return tok, false, t.malformed(off, "%s", err.Error())
		}
		cd, _ := xt.(xml.CharData)
		return Token{Kind: CharData, Text: []byte(cd), Offset: off}, true, nil
	case framing.KindEndTag:
		xt, err := rawToken(raw)
		if err != nil {
			return tok, false, t.malformed(off, "%s", err.Error())
		}
		ee, _ := xt.(xml.EndElement)
		if len(t.open) == 0 {
			return tok, false, t.malformed(off, "unexpected end element %s", qname(ee.Name))
		}
		if top := t.open[len(t.open)-1].raw; top != ee.Name {
			return tok, false, t.malformed(off, "element %s closed by %s", qname(top), qname(ee.Name))
		}
		tok, err = t.endElement(ee.Name, off)
		if err != nil {
			return tok, false, err
		}
		t.pop()
		return tok, true, nil
	default:
		return t.startElement(raw, off)
	}
}

func (t *Tokenizer) startElement(raw []byte, off int64) (Token, bool, error) {
	switch t.state {
	case stateEpilog:
		return Token{}, false, t.malformed(off, "more than one root element")
	case stateProlog:
		t.state = stateBody
	}
	xt, err := rawToken(raw)
	if err != nil {
		return Token{}, false, t.malformed(off, "%s", err.Error())
	}
	se, _ := xt.(xml.StartElement)
	t.open = append(t.open, openElement{raw: se.Name, decl: xmlutil.NewPrefixMap(se.Attr...)})

	uri, ok := t.lookup(se.Name.Space)
	if !ok {
		return Token{}, false, t.malformed(off, "undeclared namespace prefix %q", se.Name.Space)
	}
	tok := Token{
		Kind:   StartElement,
		Name:   xml.Name{Space: uri, Local: se.Name.Local},
		Prefix: se.Name.Space,
		Offset: off,
	}
	for _, a := range se.Attr {
		if _, decl := xmlutil.Declares(a); decl {
			continue
		}
		var auri string
		if a.Name.Space != "" {
			if auri, ok = t.lookup(a.Name.Space); !ok {
				return Token{}, false, t.malformed(off, "undeclared namespace prefix %q", a.Name.Space)
			}
		}
		tok.Attr = append(tok.Attr, Attr{Name: xml.Name{Space: auri, Local: a.Name.Local}, Prefix: a.Name.Space, Value: a.Value})
	}
	if framing.Classify(raw) == framing.KindEmptyTag {
		end, err := t.endElement(se.Name, off)
		if err != nil {
			return Token{}, false, err
		}
		t.pending = &end
	}
	return tok, true, nil
}

func (t *Tokenizer) endElement(name xml.Name, off int64) (Token, error) {
	uri, ok := t.lookup(name.Space)
	if !ok {
		return Token{}, t.malformed(off, "undeclared namespace prefix %q", name.Space)
	}
	return Token{Kind: EndElement, Name: xml.Name{Space: uri, Local: name.Local}, Prefix: name.Space, Offset: off}, nil
}

func (t *Tokenizer) pop() {
	t.open = t.open[:len(t.open)-1]
	if len(t.open) == 0 {
		t.state = stateEpilog
	}
}

// lookup resolves prefix against the declarations of the open elements
func (t *Tokenizer) lookup(prefix string) (string, bool) {
	if prefix == "xml" {
		return xmlutil.XMLNamespace, true
	}
	for i := len(t.open) - 1; i > -1; i-- {
		if uri, ok := t.open[i].decl[prefix]; ok {
			return uri, true
		}
	}
	return "", prefix == ""
}

// rawToken parses one complete framed token
func rawToken(raw []byte) (xml.Token, error) {
	d := xml.NewDecoder(bytes.NewReader(raw))
	d.Strict = true
	tok, err := d.RawToken()
	if err != nil {
		return nil, err
	}
	return xml.CopyToken(tok), nil
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
