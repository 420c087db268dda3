package array

import (
	"errors"
	"testing"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/internal/models"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
)

// TestAliasesHalves verifies that disjoint halves of one block do not alias
func TestAliasesHalves(t *testing.T) {
	v, _ := New([]int{8, 6}, 1, dtype.Float64)
	left, err := v.At(models.Range{Start: 0, Stop: 3, Step: 1}, models.All())
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	right, err := v.At(models.Range{Start: 4, Stop: 7, Step: 1}, models.All())
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}

	if !left.SharesData(right) {
		t.Fatal("halves should share the data block")
	}
	a, err := left.Aliases(right)
	if err != nil {
		t.Fatalf("Aliases failed: %v", err)
	}
	if a {
		t.Error("disjoint halves should not alias")
	}

	overlap, _ := v.At(models.Range{Start: 3, Stop: 5, Step: 1}, models.All())
	a, err = left.Aliases(overlap)
	if err != nil {
		t.Fatalf("Aliases failed: %v", err)
	}
	if !a {
		t.Error("overlapping windows should alias")
	}
}

// TestAliasesInterleaved verifies stride-based disjointness
func TestAliasesInterleaved(t *testing.T) {
	v, _ := New([]int{10}, 1, dtype.Uint16)
	even, _ := v.At(models.Range{Start: 0, Stop: 8, Step: 2})
	odd, _ := v.At(models.Range{Start: 1, Stop: 9, Step: 2})

	a, err := even.Aliases(odd)
	if err != nil {
		t.Fatalf("Aliases failed: %v", err)
	}
	if a {
		t.Error("even and odd samples should not alias")
	}
	a, _ = even.Aliases(even)
	if !a {
		t.Error("a view always aliases itself")
	}
}

// TestAliasesMirrored verifies that mirroring does not hide overlap
func TestAliasesMirrored(t *testing.T) {
	v, _ := New([]int{6, 4}, 1, dtype.Float32)
	m, err := v.Mirror(0)
	if err != nil {
		t.Fatalf("Mirror failed: %v", err)
	}
	a, err := v.Aliases(m)
	if err != nil {
		t.Fatalf("Aliases failed: %v", err)
	}
	if !a {
		t.Error("a view and its mirror cover the same samples")
	}
}

// TestAliasesTensorElements verifies disjoint interleaved tensor planes
func TestAliasesTensorElements(t *testing.T) {
	v, _ := New([]int{5, 4}, 3, dtype.Float64)
	e0, err := v.TensorElement(0)
	if err != nil {
		t.Fatalf("TensorElement failed: %v", err)
	}
	e2, err := v.TensorElement(2)
	if err != nil {
		t.Fatalf("TensorElement failed: %v", err)
	}
	a, err := e0.Aliases(e2)
	if err != nil {
		t.Fatalf("Aliases failed: %v", err)
	}
	if a {
		t.Error("distinct tensor elements should not alias")
	}
	a, _ = e0.Aliases(v)
	if !a {
		t.Error("a tensor element aliases the full view")
	}
}

// TestAliasesSeparateBlocks verifies that unrelated allocations never alias
func TestAliasesSeparateBlocks(t *testing.T) {
	a, _ := New([]int{4}, 1, dtype.Uint8)
	b, _ := New([]int{4}, 1, dtype.Uint8)
	got, err := a.Aliases(b)
	if err != nil {
		t.Fatalf("Aliases failed: %v", err)
	}
	if got {
		t.Error("separate blocks should not alias")
	}

	raw, _ := Raw([]int{4}, 1, dtype.Uint8)
	if _, err := a.Aliases(raw); !errors.Is(err, diplib.ErrNotForged) {
		t.Errorf("raw operand returned %v, want ErrNotForged", err)
	}
}
