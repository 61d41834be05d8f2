package jsonfeat

import (
	"fmt"
	"testing"

	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/ferr"
	"github.com/andaru/featurestream/schema"
	"github.com/andaru/featurestream/stream"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roads = schema.MustNew(&schema.Property{
	Name: "Road",
	Properties: []*schema.Property{
		{Name: "name", Type: schema.TypeString},
		{Name: "opened", Type: schema.TypeDate},
		{Name: "lanes", Type: schema.TypeObjectArray, Properties: []*schema.Property{
			{Name: "width", Type: schema.TypeFloat},
		}},
		{Name: "geom", Type: schema.TypeGeometry},
		{Name: "shape", Type: schema.TypeGeometry},
	},
})

func decodeGeneric(t *testing.T, cfg Config, doc string, bsize int) *feature.Recorder {
	t.Helper()
	rec := &feature.Recorder{}
	d := NewGenericDecoder(rec, cfg, WithValidation())
	require.NoError(t, stream.FeedAll(d, []byte(doc), bsize))
	return rec
}

const wrappedDoc = `{"meta":{"count":2},"data":{"total":2,"items":[
 {"name":"A1","opened":"2020-01-01","lanes":[{"width":3.5},{"width":3}],"geom":{"type":"Point","coordinates":[1,2]}},
 {"name":"A2","shape":"{\"type\":\"LineString\",\"coordinates\":[[0,0],[1,1]]}"}
]}}`

func TestGenericWrapped(t *testing.T) {
	want := []string{
		`start`,
		`feature-start`,
		`value name STRING "A1"`,
		`value opened DATE "2020-01-01"`,
		`array-start lanes`,
		`object-start lanes [1]`,
		`value lanes.width [1] FLOAT "3.5"`,
		`object-end lanes [1]`,
		`object-start lanes [2]`,
		`value lanes.width [2] FLOAT "3"`,
		`object-end lanes [2]`,
		`array-end lanes`,
		`object-start geom <POINT>`,
		`value geom <POINT> INTEGER "1"`,
		`value geom <POINT> INTEGER "2"`,
		`object-end geom <POINT 2D>`,
		`feature-end`,
		`feature-start`,
		`value name STRING "A2"`,
		`object-start shape <LINE_STRING>`,
		`value shape <LINE_STRING> INTEGER "0"`,
		`value shape <LINE_STRING> INTEGER "0"`,
		`value shape <LINE_STRING 2D> INTEGER "1"`,
		`value shape <LINE_STRING 2D> INTEGER "1"`,
		`object-end shape <LINE_STRING 2D>`,
		`feature-end`,
		`end`,
	}
	cfg := Config{Schema: roads, Wrapper: []string{"data", "items"}}
	for _, bsize := range bsizes {
		t.Run(fmt.Sprint(bsize), func(t *testing.T) {
			rec := decodeGeneric(t, cfg, wrappedDoc, bsize)
			assert.Equal(t, want, rec.Strings())
			assert.False(t, rec.Metadata.SingleFeature)
		})
	}
}

func TestGenericDocuments(t *testing.T) {
	for _, tc := range []struct {
		name   string
		cfg    Config
		doc    string
		want   []string
		single bool
	}{
		{
			name:   "object",
			doc:    `{"name":"a","opened":null}`,
			want:   []string{`start`, `feature-start`, `value name STRING "a"`, `feature-end`, `end`},
			single: true,
		},
		{
			name: "array",
			doc:  `[{"name":"a"}, 7, {"name":"b"}]`,
			want: []string{
				`start`,
				`feature-start`, `value name STRING "a"`, `feature-end`,
				`feature-start`, `value name STRING "b"`, `feature-end`,
				`end`,
			},
		},
		{
			name: "wrapper missing",
			cfg:  Config{Wrapper: []string{"data"}},
			doc:  `{"items":[{"name":"a"}]}`,
			want: []string{`start`, `end`},
		},
		{
			name: "wrapped object",
			cfg:  Config{Wrapper: []string{"data"}},
			doc:  `{"data":{"name":"a"},"next":null}`,
			want: []string{`start`, `feature-start`, `value name STRING "a"`, `feature-end`, `end`},
		},
		{
			name:   "null placeholder",
			cfg:    Config{NullValue: new(string)},
			doc:    `{"opened":null,"extra":null}`,
			want:   []string{`start`, `feature-start`, `value opened DATE ""`, `value extra STRING ""`, `feature-end`, `end`},
			single: true,
		},
		{
			name:   "plain geometry",
			cfg:    Config{Geometry: GeometryDecoderFunc(plainGeometry)},
			doc:    `{"shape":"LINESTRING(0 0,1 1)"}`,
			want:   []string{`start`, `feature-start`, `value shape STRING "LINESTRING(0 0,1 1)"`, `feature-end`, `end`},
			single: true,
		},
		{
			name: "nested arrays",
			doc:  `{"grid":[[1,2],[3]]}`,
			want: []string{
				`start`, `feature-start`,
				`array-start grid`,
				`array-start grid [1]`, `value grid [1 1] INTEGER "1"`, `value grid [1 2] INTEGER "2"`, `array-end grid [1]`,
				`array-start grid [2]`, `value grid [2 1] INTEGER "3"`, `array-end grid [2]`,
				`array-end grid`,
				`feature-end`, `end`,
			},
			single: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.Schema = roads
			rec := decodeGeneric(t, cfg, tc.doc, 2)
			assert.Equal(t, tc.want, rec.Strings())
			assert.Equal(t, tc.single, rec.Metadata.SingleFeature)
		})
	}
}

// plainGeometry reports the geometry text as a value
func plainGeometry(raw []byte, ctx *feature.Context, h feature.Handler) error {
	ctx.SetValue(string(raw))
	ctx.SetValueType(schema.TypeString)
	return h.OnValue(ctx)
}

func TestGenericErrors(t *testing.T) {
	for _, tc := range []struct {
		doc  string
		kind ferr.Kind
	}{
		{doc: `42`, kind: ferr.KindUnsupported},
		{doc: `{"name":"a"`, kind: ferr.KindMalformedInput},
		{doc: `{"shape":"{\"type\":\"Point\""}`, kind: ferr.KindMalformedInput},
		{doc: `{"shape":"[1,2]"}`, kind: ferr.KindUnsupported},
		{doc: `{"geom":[1,2]}`, kind: ferr.KindUnsupported},
	} {
		t.Run(tc.doc, func(t *testing.T) {
			d := NewGenericDecoder(feature.NopHandler{}, Config{Schema: roads})
			err := stream.FeedAll(d, []byte(tc.doc), 0)
			assert.True(t, ferr.Is(err, tc.kind), "%v", err)
		})
	}
}

func TestGenericHandlerFailure(t *testing.T) {
	ck := assert.New(t)
	boom := errors.New("boom")
	d := NewGenericDecoder(valueFailure{boom}, Config{Schema: roads, Wrapper: []string{"data", "items"}})
	err := stream.FeedAll(d, []byte(wrappedDoc), 1)
	ck.True(errors.Is(err, boom))
	ck.True(ferr.Is(err, ferr.KindHandler))
	ck.Equal(err, d.Err())
}

func TestEmbeddedGeoJSON(t *testing.T) {
	ck := assert.New(t)
	rec := &feature.Recorder{}
	ctx := feature.NewContext(nil)
	ctx.PathTracker().Track("where")
	ctx.SetIndexes([]int{2})
	err := EmbeddedGeoJSON{}.DecodeGeometry([]byte(`{"type":"Point","coordinates":[1,2],"crs":{"type":"name"}}`), ctx, rec)
	ck.NoError(err)
	ck.Equal([]string{
		`object-start where [2] <POINT>`,
		`value where [2] <POINT> INTEGER "1"`,
		`value where [2] <POINT> INTEGER "2"`,
		`object-end where [2] <POINT 2D>`,
	}, rec.Strings())
	ck.False(ctx.InGeometry())
	ck.Equal([]string{"where"}, ctx.Path())
}
