package multiplicity

import "strings"

// Tracker tracks occurrence counters for the paths of a decode session
type Tracker interface {
	// Track records that a new instance of path has been entered.
	Track(path []string)
	// ForPath returns the current counters of the repeating levels of path, root first.
	ForPath(path []string) []int
	// Reset clears all counters, e.g. at a feature boundary.
	Reset()
}

const keySep = "\x1f"

func key(path []string) string { return strings.Join(path, keySep) }

// Declared is a Tracker over a fixed set of array paths
type Declared struct {
	declared    map[string]bool
	descendants map[string][]string
	counters    map[string]int
}

// NewDeclared returns a Declared tracker for the given array paths.
func NewDeclared(arrayPaths [][]string) *Declared {
	d := &Declared{
		declared:    make(map[string]bool, len(arrayPaths)),
		descendants: map[string][]string{},
		counters:    map[string]int{},
	}
	keys := make([]string, 0, len(arrayPaths))
	for _, p := range arrayPaths {
		if len(p) == 0 {
			continue
		}
		k := key(p)
		if !d.declared[k] {
			d.declared[k] = true
			keys = append(keys, k)
		}
	}
	for _, a := range keys {
		for _, b := range keys {
			if a != b && strings.HasPrefix(b, a+keySep) {
				d.descendants[a] = append(d.descendants[a], b)
			}
		}
	}
	return d
}

// Declare adds path to the declared array paths, e.g. for an array of
// objects found in a document but missing from the schema.
func (d *Declared) Declare(path []string) {
	if len(path) == 0 {
		return
	}
	k := key(path)
	if d.declared[k] {
		return
	}
	for other := range d.declared {
		switch {
		case strings.HasPrefix(other, k+keySep):
			d.descendants[k] = append(d.descendants[k], other)
		case strings.HasPrefix(k, other+keySep):
			d.descendants[other] = append(d.descendants[other], k)
		}
	}
	d.declared[k] = true
}

// Track increments the counter of path if it is a declared array path,
// restarting the counters of every declared array nested below it.
func (d *Declared) Track(path []string) {
	k := key(path)
	if !d.declared[k] {
		return
	}
	d.counters[k]++
	for _, sub := range d.descendants[k] {
		delete(d.counters, sub)
	}
}

func (d *Declared) ForPath(path []string) (idx []int) {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 {
			b.WriteString(keySep)
		}
		b.WriteString(seg)
		k := b.String()
		if !d.declared[k] {
			continue
		}
		c := d.counters[k]
		if c == 0 {
			c = 1
		}
		idx = append(idx, c)
	}
	return idx
}

func (d *Declared) Reset() { clear(d.counters) }

// IsDeclared reports whether path is one of the declared array paths
func (d *Declared) IsDeclared(path []string) bool { return d.declared[key(path)] }
