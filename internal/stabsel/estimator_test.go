package stabsel

import (
	"errors"
	"math"
	"testing"
)

func buildMatrix(names []string, rows [][]bool) *SelectionMatrix {
	m := NewSelectionMatrix(names, len(rows))
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}

func TestEstimateKnownValue(t *testing.T) {
	// Column rates 1, 1/2, 1/4 give kbar = 7/4, v_rand = 35/144 and a
	// score of exactly 1/5. The influence variance works out to
	// 963/30625.
	m := buildMatrix([]string{"a", "b", "c"}, [][]bool{
		{true, false, false},
		{true, true, false},
		{true, false, true},
		{true, true, false},
	})

	st, err := Estimate(m, 0.05)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	if math.Abs(st.Estimate-0.2) > 1e-12 {
		t.Errorf("expected stability 0.2, got %g", st.Estimate)
	}
	want := 963.0 / 30625.0
	if math.Abs(st.Variance-want) > 1e-12 {
		t.Errorf("expected variance %g, got %g", want, st.Variance)
	}
}

func TestEstimatePerfectAgreement(t *testing.T) {
	m := buildMatrix([]string{"a", "b"}, [][]bool{
		{true, false},
		{true, false},
		{true, false},
	})

	st, err := Estimate(m, 0.05)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if st.Estimate != 1 {
		t.Errorf("expected stability 1 for identical rows, got %g", st.Estimate)
	}
	if st.Variance != 0 {
		t.Errorf("expected zero variance for identical rows, got %g", st.Variance)
	}
}

func TestEstimateNotClamped(t *testing.T) {
	// Perfectly disagreeing rows score below zero; the estimate must
	// come back unclamped.
	m := buildMatrix([]string{"a", "b"}, [][]bool{
		{true, false},
		{false, true},
	})

	st, err := Estimate(m, 0.05)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if math.Abs(st.Estimate-(-1)) > 1e-12 {
		t.Errorf("expected stability -1, got %g", st.Estimate)
	}
}

func TestEstimateDegenerate(t *testing.T) {
	tests := []struct {
		name string
		rows [][]bool
	}{
		{"all zeros", [][]bool{{false, false}, {false, false}}},
		{"all ones", [][]bool{{true, true}, {true, true}}},
	}

	for _, tt := range tests {
		m := buildMatrix([]string{"a", "b"}, tt.rows)
		_, err := Estimate(m, 0.05)
		if !errors.Is(err, ErrDegenerateSelection) {
			t.Errorf("%s: expected ErrDegenerateSelection, got %v", tt.name, err)
		}
	}
}

func TestEstimateInputErrors(t *testing.T) {
	single := buildMatrix([]string{"a", "b"}, [][]bool{{true, false}})
	if _, err := Estimate(single, 0.05); !errors.Is(err, ErrTooFewReplicates) {
		t.Errorf("expected ErrTooFewReplicates for one row, got %v", err)
	}

	empty := NewSelectionMatrix([]string{}, 2)
	if _, err := Estimate(empty, 0.05); !errors.Is(err, ErrNoPredictors) {
		t.Errorf("expected ErrNoPredictors for zero columns, got %v", err)
	}

	m := buildMatrix([]string{"a", "b"}, [][]bool{{true, false}, {false, true}})
	for _, alpha := range []float64{0, 1, -0.1, 1.5} {
		if _, err := Estimate(m, alpha); !errors.Is(err, ErrBadAlpha) {
			t.Errorf("alpha %g: expected ErrBadAlpha, got %v", alpha, err)
		}
	}
}

func TestEstimateSymmetricInterval(t *testing.T) {
	m := buildMatrix([]string{"a", "b", "c"}, [][]bool{
		{true, false, false},
		{true, true, false},
		{true, false, true},
		{false, true, false},
	})

	st, err := Estimate(m, 0.1)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	lowerHalf := st.Estimate - st.Lower
	upperHalf := st.Upper - st.Estimate
	if math.Abs(lowerHalf-upperHalf) > 1e-12 {
		t.Errorf("interval not symmetric: lower half %g, upper half %g", lowerHalf, upperHalf)
	}
	if upperHalf <= 0 {
		t.Errorf("expected positive interval half-width, got %g", upperHalf)
	}
}

func TestEstimatePermutationInvariance(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	rows := [][]bool{
		{true, false, true, false},
		{true, true, false, false},
		{false, false, true, true},
		{true, false, false, false},
		{true, true, true, false},
	}

	base, err := Estimate(buildMatrix(names, rows), 0.05)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	// Reverse the row order.
	rev := make([][]bool, len(rows))
	for i := range rows {
		rev[i] = rows[len(rows)-1-i]
	}
	byRow, err := Estimate(buildMatrix(names, rev), 0.05)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if math.Abs(byRow.Estimate-base.Estimate) > 1e-12 || math.Abs(byRow.Variance-base.Variance) > 1e-12 {
		t.Errorf("row permutation changed result: %+v vs %+v", byRow, base)
	}

	// Rotate the columns.
	rot := make([][]bool, len(rows))
	for i, r := range rows {
		rot[i] = []bool{r[3], r[0], r[1], r[2]}
	}
	byCol, err := Estimate(buildMatrix(names, rot), 0.05)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if math.Abs(byCol.Estimate-base.Estimate) > 1e-12 || math.Abs(byCol.Variance-base.Variance) > 1e-12 {
		t.Errorf("column permutation changed result: %+v vs %+v", byCol, base)
	}
}

func TestEstimateRedundantColumns(t *testing.T) {
	// A single predictor replicated d times must score the same as the
	// one-column matrix.
	col := []bool{true, false, true, true, false}

	oneRows := make([][]bool, len(col))
	manyRows := make([][]bool, len(col))
	for i, v := range col {
		oneRows[i] = []bool{v}
		manyRows[i] = []bool{v, v, v, v}
	}

	one, err := Estimate(buildMatrix([]string{"a"}, oneRows), 0.05)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	many, err := Estimate(buildMatrix([]string{"a", "b", "c", "d"}, manyRows), 0.05)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	if math.Abs(one.Estimate-many.Estimate) > 1e-12 {
		t.Errorf("replicated columns changed stability: %g vs %g", many.Estimate, one.Estimate)
	}
	if math.Abs(one.Variance-many.Variance) > 1e-12 {
		t.Errorf("replicated columns changed variance: %g vs %g", many.Variance, one.Variance)
	}
}

func TestEstimateWiderAlphaNarrowsInterval(t *testing.T) {
	m := buildMatrix([]string{"a", "b", "c"}, [][]bool{
		{true, false, false},
		{true, true, false},
		{false, false, true},
		{true, true, true},
	})

	narrow, err := Estimate(m, 0.32)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	wide, err := Estimate(m, 0.01)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	if wide.Upper-wide.Lower <= narrow.Upper-narrow.Lower {
		t.Errorf("expected wider interval at alpha 0.01: %g vs %g",
			wide.Upper-wide.Lower, narrow.Upper-narrow.Lower)
	}
}
