package multiplicity

// Reentry is a Tracker inferring repetition from re-entered element names.
type Reentry struct {
	skip   int
	top    map[string]int
	levels []level
}

type level struct {
	name     string
	count    int
	children map[string]int
}

// NewReentry returns a Reentry tracker. The first rootLevels segments of every
// path are tracked but never reported by ForPath.
func NewReentry(rootLevels int) *Reentry {
	if rootLevels < 0 {
		rootLevels = 0
	}
	return &Reentry{skip: rootLevels}
}

// Track enters the last segment of path as a new instance under its parent.
// Ancestors that do not match the currently open levels are entered too.
func (r *Reentry) Track(path []string) {
	n := len(path)
	if n == 0 {
		return
	}
	keep := 0
	for keep < n-1 && keep < len(r.levels) && r.levels[keep].name == path[keep] {
		keep++
	}
	r.levels = r.levels[:keep]
	for _, name := range path[keep:] {
		r.enter(name)
	}
}

func (r *Reentry) enter(name string) {
	var seen map[string]int
	if len(r.levels) == 0 {
		if r.top == nil {
			r.top = map[string]int{}
		}
		seen = r.top
	} else {
		parent := &r.levels[len(r.levels)-1]
		if parent.children == nil {
			parent.children = map[string]int{}
		}
		seen = parent.children
	}
	seen[name]++
	r.levels = append(r.levels, level{name: name, count: seen[name]})
}

func (r *Reentry) ForPath(path []string) (idx []int) {
	for i := r.skip; i < len(path) && i < len(r.levels); i++ {
		if r.levels[i].name != path[i] {
			break
		}
		idx = append(idx, r.levels[i].count)
	}
	return idx
}

func (r *Reentry) Reset() {
	r.top = nil
	clear(r.levels)
	r.levels = r.levels[:0]
}
