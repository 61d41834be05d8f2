// Package pathtrack keeps the structural path of a streaming decoder.
package pathtrack

import "strings"

// Tracker is the current path from the decode root, one name per nesting level.
//
// The zero value is an empty path ready for use.
type Tracker struct {
	path []string
}

// Track appends name as the deepest segment.
func (t *Tracker) Track(name string) { t.path = append(t.path, name) }

// TrackAt sets the segment at depth (0-based) to name, dropping anything deeper.
// A depth past the end of the path appends.
func (t *Tracker) TrackAt(name string, depth int) {
	t.Truncate(depth)
	t.path = append(t.path, name)
}

// Truncate shortens the path to depth segments. Negative depths clamp to zero,
// depths at or beyond the current length leave the path unchanged.
func (t *Tracker) Truncate(depth int) {
	if depth < 0 {
		depth = 0
	}
	if depth < len(t.path) {
		clear(t.path[depth:])
		t.path = t.path[:depth]
	}
}

// Path returns a snapshot of the path, safe from later mutation
func (t *Tracker) Path() []string {
	p := make([]string, len(t.path))
	copy(p, t.path)
	return p
}

// Peek returns the live path. Callers must not retain or modify it.
func (t *Tracker) Peek() []string { return t.path }

func (t *Tracker) Len() int { return len(t.path) }

func (t *Tracker) Clear() { t.Truncate(0) }

// Last returns the deepest segment, or "" for an empty path.
func (t *Tracker) Last() string {
	if len(t.path) == 0 {
		return ""
	}
	return t.path[len(t.path)-1]
}

func (t *Tracker) String() string { return strings.Join(t.path, ".") }
