package kernel

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/dataset"
)

func mustDataset(t *testing.T, x *mat.Dense, labels []float64) *dataset.Dense {
	t.Helper()
	ds, err := dataset.NewDense(x, labels)
	if err != nil {
		t.Fatalf("dataset.NewDense() error = %v", err)
	}
	return ds
}

func TestDC_Center(t *testing.T) {
	ds := mustDataset(t, mat.NewDense(3, 2, []float64{
		0, 0,
		1, 1,
		2, 2,
	}), []float64{-1, 1, -1})

	instances, err := NewDC().Center(ds)
	if err != nil {
		t.Fatalf("DC.Center() error = %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("len(instances) = %d, want 1", len(instances))
	}
	if got := instances[0].Evaluate([]float64{42, -7}); got != 1 {
		t.Errorf("bias.Evaluate(...) = %v, want 1", got)
	}
}

func TestRBF_Center(t *testing.T) {
	ds := mustDataset(t, mat.NewDense(2, 2, []float64{
		0, 0,
		1, 1,
	}), []float64{-1, 1})

	instances, err := NewRBF(1.0).Center(ds)
	if err != nil {
		t.Fatalf("RBF.Center() error = %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("len(instances) = %d, want 2", len(instances))
	}

	// Evaluating instance 0 at its own center should be exactly 1.
	if got := instances[0].Evaluate([]float64{0, 0}); math.Abs(got-1) > 1e-12 {
		t.Errorf("instance 0 at its own center = %v, want 1", got)
	}
	// Evaluating instance 1 at its own center should also be exactly 1.
	if got := instances[1].Evaluate([]float64{1, 1}); math.Abs(got-1) > 1e-12 {
		t.Errorf("instance 1 at its own center = %v, want 1", got)
	}
	// Distance-squared between centers is 2, gamma=1 -> exp(-2).
	want := math.Exp(-2)
	if got := instances[0].Evaluate([]float64{1, 1}); math.Abs(got-want) > 1e-12 {
		t.Errorf("instance 0 at instance 1's center = %v, want %v", got, want)
	}
}

func TestRBF_Center_DefaultGamma(t *testing.T) {
	ds := mustDataset(t, mat.NewDense(2, 4, []float64{
		0, 0, 0, 0,
		1, 1, 1, 1,
	}), []float64{-1, 1})

	instances, err := NewRBF(0).Center(ds)
	if err != nil {
		t.Fatalf("RBF.Center() error = %v", err)
	}
	// gamma defaults to 1/sqrt(D) = 1/2; squared distance between the two
	// centers is 4, so evaluating instance 0 at instance 1's center is
	// exp(-0.5*4) = exp(-2).
	want := math.Exp(-2)
	if got := instances[0].Evaluate([]float64{1, 1, 1, 1}); math.Abs(got-want) > 1e-12 {
		t.Errorf("instance 0 at instance 1's center = %v, want %v", got, want)
	}
}

func TestRBF_Center_EmptyDataset(t *testing.T) {
	// dataset.NewDense itself rejects zero-row matrices, so a minimal
	// zero-observation Dataset is defined directly here to exercise
	// RBF.Center's own empty-dataset guard.
	empty := &emptyDataset{}
	if _, err := NewRBF(1).Center(empty); err == nil {
		t.Fatal("RBF.Center() on an empty dataset: error = nil, want an error")
	}
}

// emptyDataset is a minimal dataset.Dataset with zero observations, used to
// exercise RBF.Center's empty-dataset guard without dataset.NewDense's own
// earlier rejection of zero-row matrices.
type emptyDataset struct{}

func (emptyDataset) NObservations() int                       { return 0 }
func (emptyDataset) NFeatures() int                            { return 2 }
func (emptyDataset) Observations(_ []int) (*mat.Dense, error) { return mat.NewDense(0, 2, nil), nil }
func (emptyDataset) TargetsBinary() (*mat.Dense, error)       { return mat.NewDense(0, 2, nil), nil }
func (emptyDataset) IsBinary() bool                            { return true }

func TestBuilder_Gram(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{0, 1, 2})
	instances := []Instance{biasInstance{}, &rbfInstance{center: []float64{1}, gamma: 1, label: "rbf@0"}}

	b := NewBuilder()
	gram, err := b.Gram(x, instances)
	if err != nil {
		t.Fatalf("Gram() error = %v", err)
	}
	rows, cols := gram.Dims()
	if rows != 3 || cols != 2 {
		t.Fatalf("Gram() dims = (%d, %d), want (3, 2)", rows, cols)
	}
	for i := 0; i < 3; i++ {
		if gram.At(i, 0) != 1 {
			t.Errorf("Gram()[%d][0] = %v, want 1 (bias column)", i, gram.At(i, 0))
		}
	}
	if math.Abs(gram.At(1, 1)-1) > 1e-12 {
		t.Errorf("Gram()[1][1] = %v, want 1 (RBF at its own center)", gram.At(1, 1))
	}
}

func TestBuilder_GramBlock(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{0, 1})
	instances := []Instance{
		biasInstance{},
		&rbfInstance{center: []float64{0}, gamma: 1, label: "rbf@0"},
		&rbfInstance{center: []float64{1}, gamma: 1, label: "rbf@1"},
	}

	b := NewBuilder()
	block, err := b.GramBlock(x, instances, 1, 3)
	if err != nil {
		t.Fatalf("GramBlock() error = %v", err)
	}
	rows, cols := block.Dims()
	if rows != 2 || cols != 2 {
		t.Fatalf("GramBlock() dims = (%d, %d), want (2, 2)", rows, cols)
	}

	full, err := b.Gram(x, instances)
	if err != nil {
		t.Fatalf("Gram() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if block.At(i, j) != full.At(i, j+1) {
				t.Errorf("GramBlock()[%d][%d] = %v, want %v (matching Gram column %d)", i, j, block.At(i, j), full.At(i, j+1), j+1)
			}
		}
	}
}

func TestBuilder_GramBlock_OutOfRange(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{0})
	instances := []Instance{biasInstance{}}

	b := NewBuilder()
	if _, err := b.GramBlock(x, instances, -1, 1); err == nil {
		t.Error("GramBlock() with negative start: error = nil, want an error")
	}
	if _, err := b.GramBlock(x, instances, 0, 5); err == nil {
		t.Error("GramBlock() with end past len(instances): error = nil, want an error")
	}
	if _, err := b.GramBlock(x, instances, 1, 0); err == nil {
		t.Error("GramBlock() with start > end: error = nil, want an error")
	}
}

func TestBuilder_Gram_ParallelPath(t *testing.T) {
	// Exercise the parallelized branch by dropping ParallelThreshold below
	// the row count, and check it agrees with the sequential result.
	n := 50
	xData := make([]float64, n)
	for i := range xData {
		xData[i] = float64(i)
	}
	x := mat.NewDense(n, 1, xData)
	instances := []Instance{biasInstance{}, &rbfInstance{center: []float64{10}, gamma: 0.1, label: "rbf@10"}}

	sequential := &Builder{ParallelThreshold: n}
	parallelB := &Builder{ParallelThreshold: 1}

	seqGram, err := sequential.Gram(x, instances)
	if err != nil {
		t.Fatalf("Gram() (sequential) error = %v", err)
	}
	parGram, err := parallelB.Gram(x, instances)
	if err != nil {
		t.Fatalf("Gram() (parallel) error = %v", err)
	}

	rows, cols := seqGram.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if seqGram.At(i, j) != parGram.At(i, j) {
				t.Fatalf("Gram()[%d][%d] sequential=%v parallel=%v, want equal", i, j, seqGram.At(i, j), parGram.At(i, j))
			}
		}
	}
}
