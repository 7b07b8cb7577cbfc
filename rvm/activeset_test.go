package rvm

import "testing"

func TestActiveSet_AddRemove(t *testing.T) {
	a := newActiveSet(5, 1, 3)
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	if !a.Contains(1) || !a.Contains(3) {
		t.Fatal("Contains() missing a seeded index")
	}
	if a.Contains(0) {
		t.Fatal("Contains(0) = true, want false")
	}

	pos := a.Add(2)
	if pos != 1 {
		t.Errorf("Add(2) position = %d, want 1 (sorted between 1 and 3)", pos)
	}
	want := []int{1, 2, 3}
	if !intSliceEqual(a.Indices(), want) {
		t.Errorf("Indices() = %v, want %v", a.Indices(), want)
	}

	// Adding an already-active index is a no-op and returns its position.
	if pos := a.Add(2); pos != 1 {
		t.Errorf("Add(2) (duplicate) position = %d, want 1", pos)
	}
	if a.Len() != 3 {
		t.Errorf("Len() after duplicate Add = %d, want 3", a.Len())
	}

	pos, found := a.Remove(2)
	if !found || pos != 1 {
		t.Errorf("Remove(2) = (%d, %v), want (1, true)", pos, found)
	}
	if !intSliceEqual(a.Indices(), []int{1, 3}) {
		t.Errorf("Indices() after Remove = %v, want [1 3]", a.Indices())
	}

	if _, found := a.Remove(99); found {
		t.Error("Remove(99) found = true, want false for a never-active index")
	}
}

func TestActiveSet_Position(t *testing.T) {
	a := newActiveSet(10, 2, 5, 7)
	cases := []struct {
		j       int
		wantPos int
		wantOK  bool
	}{
		{2, 0, true},
		{5, 1, true},
		{7, 2, true},
		{0, 0, false},
		{9, 3, false},
	}
	for _, c := range cases {
		pos, ok := a.Position(c.j)
		if pos != c.wantPos || ok != c.wantOK {
			t.Errorf("Position(%d) = (%d, %v), want (%d, %v)", c.j, pos, ok, c.wantPos, c.wantOK)
		}
	}
}

func TestActiveSet_Mask(t *testing.T) {
	a := newActiveSet(5, 1, 3)
	mask := a.Mask()
	want := []bool{false, true, false, true, false}
	for i := range want {
		if mask[i] != want[i] {
			t.Errorf("Mask()[%d] = %v, want %v", i, mask[i], want[i])
		}
	}
}

func TestActiveSet_Clone(t *testing.T) {
	a := newActiveSet(5, 1, 3)
	clone := a.Clone()
	clone.Add(4)
	if a.Contains(4) {
		t.Error("mutating a clone affected the original active set")
	}
	if !clone.Contains(4) {
		t.Error("clone.Add(4) did not take effect on the clone")
	}
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
