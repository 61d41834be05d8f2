package jsontok

import (
	"fmt"
	"io"
	"testing"

	"github.com/andaru/featurestream/ferr"
	"github.com/andaru/featurestream/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(doc string, bsize int) ([]string, error) {
	var out []string
	p := stream.NewPipeline[Token]("json", New(), func(tok Token) error {
		s := tok.Kind.String()
		if tok.HasName {
			s += " " + tok.Name
		}
		if tok.IsScalar() {
			s += fmt.Sprintf(" %q", tok.Value)
		}
		if tok.IsFloat() {
			s += " float"
		}
		out = append(out, fmt.Sprintf("%d %s", tok.Depth, s))
		return nil
	})
	err := stream.FeedAll(p, []byte(doc), bsize)
	return out, err
}

const featureDoc = ` {"type":"Feature", "id" : 7,
 "geometry":{"type":"Point","coordinates":[1.5,-2e3]},
 "properties":{"name":"a \"b\" é","tags":["x",true,false,null],"empty":{},"none":[]}}
`

func TestTokenizer(t *testing.T) {
	want := []string{
		"0 START_OBJECT",
		`1 VALUE_STRING type "Feature"`,
		`1 VALUE_NUMBER id "7"`,
		"1 START_OBJECT geometry",
		`2 VALUE_STRING type "Point"`,
		"2 START_ARRAY coordinates",
		`3 VALUE_NUMBER "1.5" float`,
		`3 VALUE_NUMBER "-2e3" float`,
		"2 END_ARRAY coordinates",
		"1 END_OBJECT geometry",
		"1 START_OBJECT properties",
		`2 VALUE_STRING name "a \"b\" é"`,
		"2 START_ARRAY tags",
		`3 VALUE_STRING "x"`,
		`3 VALUE_TRUE "true"`,
		`3 VALUE_FALSE "false"`,
		`3 VALUE_NULL "null"`,
		"2 END_ARRAY tags",
		"2 START_OBJECT empty",
		"2 END_OBJECT empty",
		"2 START_ARRAY none",
		"2 END_ARRAY none",
		"1 END_OBJECT properties",
		"0 END_OBJECT",
	}
	for _, bsize := range []int{0, 1, 2, 3, 5, 7, 16, 64} {
		t.Run(fmt.Sprint(bsize), func(t *testing.T) {
			got, err := collect(featureDoc, bsize)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestTokenizerScalarRoot(t *testing.T) {
	for _, tc := range []struct {
		doc  string
		want string
	}{
		{doc: "12", want: `0 VALUE_NUMBER "12"`},
		{doc: " null ", want: `0 VALUE_NULL "null"`},
		{doc: `"s"`, want: `0 VALUE_STRING "s"`},
	} {
		for bsize := 1; bsize < 4; bsize++ {
			got, err := collect(tc.doc, bsize)
			require.NoError(t, err)
			assert.Equal(t, []string{tc.want}, got)
		}
	}
}

func TestTokenizerMalformed(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: ""},
		{name: "unclosed object", doc: `{"a":1`},
		{name: "unclosed array", doc: `[1,2`},
		{name: "missing colon", doc: `{"a" 1}`},
		{name: "bare key", doc: `{a:1}`},
		{name: "trailing comma", doc: `[1,]`},
		{name: "trailing data", doc: `{} {}`},
		{name: "bad literal", doc: `[tru]`},
		{name: "bad number", doc: `[01]`},
		{name: "bad exponent", doc: `1e`},
		{name: "unterminated string", doc: `["abc`},
		{name: "bad escape", doc: `["\x"]`},
		{name: "control char", doc: "[\"a\tb\"]"},
		{name: "mismatched end", doc: `[1}`},
		{name: "unexpected", doc: `[#]`},
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
	ck.NoError(tz.Feed([]byte(`{"n":12`)))
	tok, err := tz.Next()
	ck.NoError(err)
	ck.Equal(StartObject, tok.Kind)
	_, err = tz.Next()
	ck.Equal(stream.ErrIncomplete, err)
	ck.Equal(1, tz.Depth())

	ck.NoError(tz.Feed([]byte(`3}`)))
	tok, err = tz.Next()
	ck.NoError(err)
	ck.Equal("123", tok.Value)
	ck.Equal(int64(5), tok.Offset)
	tok, _ = tz.Next()
	ck.Equal(EndObject, tok.Kind)
	_, err = tz.Next()
	ck.Equal(stream.ErrIncomplete, err)
	tz.EndOfInput()
	_, err = tz.Next()
	ck.Equal(io.EOF, err)
	ck.True(ferr.Is(tz.Feed([]byte("x")), ferr.KindContractViolation))
	ck.Equal("Kind(42)", Kind(42).String())
}
