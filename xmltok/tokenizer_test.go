package xmltok

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/andaru/featurestream/ferr"
	"github.com/andaru/featurestream/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect feeds doc in chunks of bsize and renders every token
func collect(doc string, bsize int) ([]string, error) {
	tz := New()
	var out []string
	render := func(tok Token) error {
		s := tok.Kind.String()
		switch tok.Kind {
		case StartElement, EndElement:
			s += fmt.Sprintf(" {%s}%s", tok.Name.Space, tok.Name.Local)
			if tok.Prefix != "" {
				s += " " + tok.Prefix
			}
			for _, a := range tok.Attr {
				s += fmt.Sprintf(" @{%s}%s=%s", a.Name.Space, a.Name.Local, a.Value)
			}
		case CharData:
			s += fmt.Sprintf(" %q", tok.Text)
		}
		out = append(out, s)
		return nil
	}
	p := stream.NewPipeline[Token]("xml", tz, render)
	err := stream.FeedAll(p, []byte(doc), bsize)
	return out, err
}

const featureDoc = `<?xml version="1.0" encoding="UTF-8"?>
<!-- a comment -->
<wfs:FeatureCollection xmlns:wfs="http://www.opengis.net/wfs/2.0" xmlns:gml="http://www.opengis.net/gml/3.2" xmlns="urn:default" numberReturned="1">
  <wfs:member>
    <Building gml:id="b.1" xml:lang="en"><name>a &amp; <![CDATA[<b>]]></name><empty/></Building>
  </wfs:member>
</wfs:FeatureCollection>
`

func TestTokenizer(t *testing.T) {
	want := []string{
		"START_DOCUMENT",
		"START_ELEMENT {http://www.opengis.net/wfs/2.0}FeatureCollection wfs @{}numberReturned=1",
		`CHARACTERS "\n  "`,
		"START_ELEMENT {http://www.opengis.net/wfs/2.0}member wfs",
		`CHARACTERS "\n    "`,
		"START_ELEMENT {urn:default}Building @{http://www.opengis.net/gml/3.2}id=b.1 @{http://www.w3.org/XML/1998/namespace}lang=en",
		"START_ELEMENT {urn:default}name",
		`CHARACTERS "a & "`,
		`CHARACTERS "<b>"`,
		"END_ELEMENT {urn:default}name",
		"START_ELEMENT {urn:default}empty",
		"END_ELEMENT {urn:default}empty",
		"END_ELEMENT {urn:default}Building",
		`CHARACTERS "\n  "`,
		"END_ELEMENT {http://www.opengis.net/wfs/2.0}member wfs",
		`CHARACTERS "\n"`,
		"END_ELEMENT {http://www.opengis.net/wfs/2.0}FeatureCollection wfs",
		"END_DOCUMENT",
	}
	for _, bsize := range []int{0, 1, 2, 3, 5, 7, 16, 64} {
		t.Run(fmt.Sprint(bsize), func(t *testing.T) {
			got, err := collect(featureDoc, bsize)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestTokenizerMalformed(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: ""},
		{name: "whitespace only", doc: "  \n"},
		{name: "unclosed", doc: "<a><b></b>"},
		{name: "mismatched", doc: "<a><b></a></b>"},
		{name: "stray end", doc: "<a/></b>"},
		{name: "two roots", doc: "<a/><b/>"},
		{name: "text before root", doc: "x<a/>"},
		{name: "text after root", doc: "<a/>x"},
		{name: "undeclared prefix", doc: "<p:a/>"},
		{name: "undeclared attribute prefix", doc: `<a p:x="1"/>`},
		{name: "unknown entity", doc: "<a>&nope;</a>"},
		{name: "unquoted attribute", doc: "<a x=1/>"},
		{name: "truncated tag", doc: "<a><b"},
		{name: "cdata outside root", doc: "<![CDATA[x]]><a/>"},
		{name: "doctype in body", doc: "<a><!DOCTYPE a></a>"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := collect(tc.doc, 2)
			require.Error(t, err)
			assert.True(t, ferr.Is(err, ferr.KindMalformedInput), "got %v", err)
		})
	}
}

func TestTokenizerIncomplete(t *testing.T) {
	ck := assert.New(t)
	tz := New()
	ck.NoError(tz.Feed([]byte("<a><b>te")))
	tok, err := tz.Next()
	ck.NoError(err)
	ck.Equal(StartDocument, tok.Kind)
	tok, _ = tz.Next()
	ck.Equal("a", tok.Name.Local)
	tok, _ = tz.Next()
	ck.Equal("b", tok.Name.Local)
	ck.Equal(2, tz.Depth())
	_, err = tz.Next()
	ck.Equal(stream.ErrIncomplete, err)

	ck.NoError(tz.Feed([]byte("xt</b></a>")))
	tok, _ = tz.Next()
	ck.Equal("text", string(tok.Text))
	ck.Equal(int64(6), tok.Offset)
	tok, _ = tz.Next()
	ck.Equal(EndElement, tok.Kind)
	tok, _ = tz.Next()
	ck.Equal(EndElement, tok.Kind)
	_, err = tz.Next()
	ck.Equal(stream.ErrIncomplete, err)

	tz.EndOfInput()
	tok, err = tz.Next()
	ck.NoError(err)
	ck.Equal(EndDocument, tok.Kind)
	_, err = tz.Next()
	ck.Equal(io.EOF, err)
	ck.True(ferr.Is(tz.Feed([]byte("x")), ferr.KindContractViolation))
}

func TestTokenWhitespace(t *testing.T) {
	ck := assert.New(t)
	ck.True(Token{Text: []byte(" \r\n\t")}.IsWhitespace())
	ck.True(Token{}.IsWhitespace())
	ck.False(Token{Text: []byte(" 1 2 ")}.IsWhitespace())
	ck.Equal("Kind(9)", Kind(9).String())
}

func TestTokenizerOffsets(t *testing.T) {
	_, err := collect(strings.Repeat(" ", 10)+"<a></b>", 4)
	var fe *ferr.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, int64(13), fe.Offset)
}
