package pathtrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	type op func(*Tracker)
	track := func(n string) op { return func(t *Tracker) { t.Track(n) } }
	trackAt := func(n string, d int) op { return func(t *Tracker) { t.TrackAt(n, d) } }
	truncate := func(d int) op { return func(t *Tracker) { t.Truncate(d) } }

	for _, tc := range []struct {
		name string
		ops  []op
		want []string
	}{
		{name: "empty", want: []string{}},
		{name: "append", ops: []op{track("a"), track("b")}, want: []string{"a", "b"}},
		{name: "overwrite at depth", ops: []op{track("a"), track("b"), track("c"), trackAt("x", 1)}, want: []string{"a", "x"}},
		{name: "at depth past end appends", ops: []op{track("a"), trackAt("b", 5)}, want: []string{"a", "b"}},
		{name: "truncate", ops: []op{track("a"), track("b"), truncate(1)}, want: []string{"a"}},
		{name: "truncate negative clamps", ops: []op{track("a"), truncate(-3)}, want: []string{}},
		{name: "truncate beyond length", ops: []op{track("a"), truncate(4)}, want: []string{"a"}},
		{name: "pop then track", ops: []op{track("a"), track("b"), truncate(1), track("c")}, want: []string{"a", "c"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ck := assert.New(t)
			tr := &Tracker{}
			for _, o := range tc.ops {
				o(tr)
			}
			ck.Equal(tc.want, tr.Path())
			ck.Equal(len(tc.want), tr.Len())
		})
	}
}

func TestTrackerSnapshot(t *testing.T) {
	ck := assert.New(t)
	tr := &Tracker{}
	tr.Track("ns:Building")
	tr.Track("ns:name")
	snap := tr.Path()
	tr.TrackAt("ns:height", 1)
	ck.Equal([]string{"ns:Building", "ns:name"}, snap)
	ck.Equal("ns:Building.ns:height", tr.String())
	ck.Equal("ns:height", tr.Last())
	tr.Clear()
	ck.Equal("", tr.Last())
	ck.Equal(0, tr.Len())
}
