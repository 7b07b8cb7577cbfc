package dataset

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewDense_Empty(t *testing.T) {
	if _, err := NewDense(&mat.Dense{}, nil); err == nil {
		t.Fatal("NewDense() on an empty matrix: error = nil, want an error")
	}
}

func TestNewDense_LabelLengthMismatch(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{0, 0, 1, 1, 2, 2})
	if _, err := NewDense(x, []float64{-1, 1}); err == nil {
		t.Fatal("NewDense() with mismatched label length: error = nil, want an error")
	}
}

func TestDense_NObservationsAndNFeatures(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{0, 0, 1, 1, 2, 2})
	ds, err := NewDense(x, []float64{-1, 1, -1})
	if err != nil {
		t.Fatalf("NewDense() error = %v", err)
	}
	if ds.NObservations() != 3 {
		t.Errorf("NObservations() = %d, want 3", ds.NObservations())
	}
	if ds.NFeatures() != 2 {
		t.Errorf("NFeatures() = %d, want 2", ds.NFeatures())
	}
}

func TestDense_Observations(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{0, 0, 1, 1, 2, 2})
	ds, err := NewDense(x, []float64{-1, 1, -1})
	if err != nil {
		t.Fatalf("NewDense() error = %v", err)
	}

	all, err := ds.Observations(nil)
	if err != nil {
		t.Fatalf("Observations(nil) error = %v", err)
	}
	rows, cols := all.Dims()
	if rows != 3 || cols != 2 {
		t.Fatalf("Observations(nil) dims = (%d, %d), want (3, 2)", rows, cols)
	}

	subset, err := ds.Observations([]int{2, 0})
	if err != nil {
		t.Fatalf("Observations([2,0]) error = %v", err)
	}
	if subset.At(0, 0) != 2 || subset.At(1, 0) != 0 {
		t.Errorf("Observations([2,0]) = %v, want rows [2,0] in order", mat.Formatted(subset))
	}

	if _, err := ds.Observations([]int{5}); err == nil {
		t.Error("Observations([5]) on a 3-row dataset: error = nil, want an error")
	}
}

func TestDense_IsBinaryAndTargetsBinary(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{0, 1, 2, 3})

	binary, err := NewDense(x, []float64{-1, 1, -1, 1})
	if err != nil {
		t.Fatalf("NewDense() error = %v", err)
	}
	if !binary.IsBinary() {
		t.Fatal("IsBinary() = false, want true for a two-class dataset")
	}
	targets, err := binary.TargetsBinary()
	if err != nil {
		t.Fatalf("TargetsBinary() error = %v", err)
	}
	want := [][2]float64{{1, 0}, {0, 1}, {1, 0}, {0, 1}}
	for i, row := range want {
		if targets.At(i, 0) != row[0] || targets.At(i, 1) != row[1] {
			t.Errorf("TargetsBinary()[%d] = (%v, %v), want (%v, %v)", i, targets.At(i, 0), targets.At(i, 1), row[0], row[1])
		}
	}

	ternary, err := NewDense(x, []float64{0, 1, 2, 0})
	if err != nil {
		t.Fatalf("NewDense() error = %v", err)
	}
	if ternary.IsBinary() {
		t.Fatal("IsBinary() = true, want false for a three-class dataset")
	}
	if _, err := ternary.TargetsBinary(); err == nil {
		t.Fatal("TargetsBinary() on a non-binary dataset: error = nil, want NonBinaryInputError")
	}
}

func TestLabelsPM1AndZeroOne(t *testing.T) {
	binary := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 0,
	})
	y, y01, err := LabelsPM1AndZeroOne(binary)
	if err != nil {
		t.Fatalf("LabelsPM1AndZeroOne() error = %v", err)
	}
	wantY := []float64{-1, 1, -1}
	wantY01 := []float64{0, 1, 0}
	for i := range wantY {
		if y[i] != wantY[i] {
			t.Errorf("y[%d] = %v, want %v", i, y[i], wantY[i])
		}
		if y01[i] != wantY01[i] {
			t.Errorf("y01[%d] = %v, want %v", i, y01[i], wantY01[i])
		}
	}
}

func TestLabelsPM1AndZeroOne_WrongShape(t *testing.T) {
	bad := mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 0})
	if _, _, err := LabelsPM1AndZeroOne(bad); err == nil {
		t.Fatal("LabelsPM1AndZeroOne() on a non-N×2 matrix: error = nil, want an error")
	}
}

func TestDense_ClassOrderingIsDeterministic(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	// Labels supplied in descending-first order; NewDense must still treat
	// the numerically smaller label as the negative class.
	ds, err := NewDense(x, []float64{5, -3, 5, -3})
	if err != nil {
		t.Fatalf("NewDense() error = %v", err)
	}
	targets, err := ds.TargetsBinary()
	if err != nil {
		t.Fatalf("TargetsBinary() error = %v", err)
	}
	y, _, err := LabelsPM1AndZeroOne(targets)
	if err != nil {
		t.Fatalf("LabelsPM1AndZeroOne() error = %v", err)
	}
	want := []float64{1, -1, 1, -1} // label 5 -> +1, label -3 -> -1
	for i := range want {
		if y[i] != want[i] {
			t.Errorf("y[%d] = %v, want %v", i, y[i], want[i])
		}
	}
}
