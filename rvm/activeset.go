package rvm

import "sort"

// activeSet is the canonical representation of A ⊆ {0..nBasis-1}: a sorted
// slice of indices. The boolean mask is derived from it on demand and no
// insertion-order list is kept, so there is exactly one piece of state to
// keep consistent.
type activeSet struct {
	nBasis  int
	indices []int // sorted ascending
}

func newActiveSet(nBasis int, seed ...int) *activeSet {
	a := &activeSet{nBasis: nBasis, indices: append([]int{}, seed...)}
	sort.Ints(a.indices)
	return a
}

// Len returns |A|.
func (a *activeSet) Len() int { return len(a.indices) }

// Indices returns the sorted active indices. Callers must not mutate the
// returned slice.
func (a *activeSet) Indices() []int { return a.indices }

// Contains reports whether j ∈ A.
func (a *activeSet) Contains(j int) bool {
	_, found := a.position(j)
	return found
}

// Position returns j's offset within the sorted active indices (i.e. its
// row/column position in the compact posterior mean/covariance), and
// whether j is active at all.
func (a *activeSet) Position(j int) (int, bool) {
	return a.position(j)
}

func (a *activeSet) position(j int) (int, bool) {
	i := sort.SearchInts(a.indices, j)
	if i < len(a.indices) && a.indices[i] == j {
		return i, true
	}
	return i, false
}

// Mask returns a length-nBasis boolean view with true at active indices.
func (a *activeSet) Mask() []bool {
	mask := make([]bool, a.nBasis)
	for _, j := range a.indices {
		mask[j] = true
	}
	return mask
}

// Add inserts j into A, preserving sort order. It is a no-op if j is
// already active. It returns the position at which j was inserted.
func (a *activeSet) Add(j int) int {
	pos, found := a.position(j)
	if found {
		return pos
	}
	a.indices = append(a.indices, 0)
	copy(a.indices[pos+1:], a.indices[pos:])
	a.indices[pos] = j
	return pos
}

// Remove deletes j from A, preserving sort order. It is a no-op if j is not
// active. It returns the position j occupied before removal, and whether it
// was found.
func (a *activeSet) Remove(j int) (int, bool) {
	pos, found := a.position(j)
	if !found {
		return 0, false
	}
	a.indices = append(a.indices[:pos], a.indices[pos+1:]...)
	return pos, true
}

// Clone returns an independent copy of a.
func (a *activeSet) Clone() *activeSet {
	return &activeSet{nBasis: a.nBasis, indices: append([]int{}, a.indices...)}
}
