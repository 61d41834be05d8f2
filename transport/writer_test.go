package transport

import (
	"io"
	"strings"
	"testing"

	"github.com/andaru/featurestream/feature"
	"github.com/andaru/featurestream/ferr"
	"github.com/andaru/featurestream/jsonfeat"
	"github.com/stretchr/testify/assert"
)

// recordingFeeder records the chunks pushed
type recordingFeeder struct {
	chunks   []string
	finished bool
	err      error
}

func (f *recordingFeeder) Push(b []byte) error {
	if f.err != nil {
		return f.err
	}
	f.chunks = append(f.chunks, string(b))
	return nil
}

func (f *recordingFeeder) Finish() error {
	f.finished = true
	return nil
}

func TestWriter(t *testing.T) {
	for _, tc := range []struct {
		f func(*assert.Assertions)
	}{
		{
			f: func(a *assert.Assertions) {
				rf := &recordingFeeder{}
				w := NewWriter(rf)
				n, err := w.Write([]byte("foo"))
				a.NoError(err)
				a.Equal(3, n)
				w.Write([]byte("bar"))
				a.NoError(w.Close())
				a.Equal([]string{"foo", "bar"}, rf.chunks)
				a.True(rf.finished)
			},
		},
		{
			f: func(a *assert.Assertions) {
				rf := &recordingFeeder{err: ferr.MalformedInput()}
				n, err := NewWriter(rf).Write([]byte("foo"))
				a.Zero(n)
				a.True(ferr.Is(err, ferr.KindMalformedInput))
			},
		},
		{
			f: func(a *assert.Assertions) {
				rec := &feature.Recorder{}
				w := NewWriter(jsonfeat.NewGeoJSONDecoder(rec, jsonfeat.Config{}))
				_, err := io.Copy(w, NewChunkReader(strings.NewReader(`{"type":"Feature","properties":{"a":1}}`), 3))
				a.NoError(err)
				a.NoError(w.Close())
				a.Equal([]string{"start", "feature-start", `value a INTEGER "1"`, "feature-end", "end"}, rec.Strings())
			},
		},
	} {
		t.Run("", func(t *testing.T) { tc.f(assert.New(t)) })
	}
}
