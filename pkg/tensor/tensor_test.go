package tensor

import (
	"errors"
	"testing"

	"github.com/Abhijit-2592/diplib"
)

// TestElements verifies stored element counts for each shape
func TestElements(t *testing.T) {
	cases := []struct {
		shape Shape
		rows  int
		cols  int
		want  int
	}{
		{Scalar, 1, 1, 1},
		{ColVector, 3, 1, 3},
		{RowVector, 1, 4, 4},
		{ColMajorMatrix, 2, 3, 6},
		{RowMajorMatrix, 3, 2, 6},
		{Diagonal, 3, 3, 3},
		{Symmetric, 3, 3, 6},
		{UpperTriangular, 3, 3, 6},
		{LowerTriangular, 4, 4, 10},
	}

	for _, c := range cases {
		tt, err := NewShaped(c.shape, c.rows, c.cols)
		if err != nil {
			t.Fatalf("NewShaped(%v, %d, %d) failed: %v", c.shape, c.rows, c.cols, err)
		}
		if got := tt.Elements(); got != c.want {
			t.Errorf("%v %dx%d: Elements=%d, want %d", c.shape, c.rows, c.cols, got, c.want)
		}
	}
}

// TestNewShapedRejectsBadShapes verifies shape validation
func TestNewShapedRejectsBadShapes(t *testing.T) {
	if _, err := NewShaped(Symmetric, 2, 3); !errors.Is(err, diplib.ErrTensorShapeMismatch) {
		t.Errorf("non-square symmetric returned %v, want ErrTensorShapeMismatch", err)
	}
	if _, err := NewShaped(ColVector, 3, 2); !errors.Is(err, diplib.ErrTensorShapeMismatch) {
		t.Errorf("wide column vector returned %v, want ErrTensorShapeMismatch", err)
	}
	if _, err := NewShaped(Scalar, 0, 1); !errors.Is(err, diplib.ErrTensorShapeMismatch) {
		t.Errorf("zero-sized tensor returned %v, want ErrTensorShapeMismatch", err)
	}
}

// TestLookUpTableDiagonal verifies expansion of a packed diagonal matrix
func TestLookUpTableDiagonal(t *testing.T) {
	tt, _ := NewShaped(Diagonal, 3, 3)
	lut := tt.LookUpTable()
	// Full column-major 3x3 layout.
	want := []int{
		0, -1, -1,
		-1, 1, -1,
		-1, -1, 2,
	}
	if len(lut) != len(want) {
		t.Fatalf("lut length %d, want %d", len(lut), len(want))
	}
	for i := range want {
		if lut[i] != want[i] {
			t.Errorf("lut[%d]=%d, want %d", i, lut[i], want[i])
		}
	}
}

// TestLookUpTableSymmetric verifies that symmetric storage maps both
// triangles to the same stored element
func TestLookUpTableSymmetric(t *testing.T) {
	tt, _ := NewShaped(Symmetric, 3, 3)
	lut := tt.LookUpTable()
	at := func(r, c int) int { return lut[r+c*3] }

	// Diagonal first.
	for i := 0; i < 3; i++ {
		if at(i, i) != i {
			t.Errorf("diagonal (%d,%d) stored at %d, want %d", i, i, at(i, i), i)
		}
	}
	// Off-diagonal elements are shared across the diagonal.
	pairs := [][2]int{{0, 1}, {0, 2}, {1, 2}}
	for _, p := range pairs {
		a, b := at(p[0], p[1]), at(p[1], p[0])
		if a != b {
			t.Errorf("(%d,%d)=%d and (%d,%d)=%d should share storage", p[0], p[1], a, p[1], p[0], b)
		}
		if a < 3 || a >= 6 {
			t.Errorf("off-diagonal (%d,%d) stored at %d, want range [3,6)", p[0], p[1], a)
		}
	}
}

// TestLookUpTableFullMatrix verifies row-major to column-major remapping
func TestLookUpTableFullMatrix(t *testing.T) {
	tt, _ := NewShaped(RowMajorMatrix, 2, 2)
	lut := tt.LookUpTable()
	// Column-major full layout (0,0) (1,0) (0,1) (1,1) maps to row-major
	// storage 0, 2, 1, 3.
	want := []int{0, 2, 1, 3}
	for i := range want {
		if lut[i] != want[i] {
			t.Errorf("lut[%d]=%d, want %d", i, lut[i], want[i])
		}
	}
}

// TestTranspose verifies zero-copy transposition of shapes
func TestTranspose(t *testing.T) {
	v := NewVector(3)
	vt := v.Transpose()
	if vt.TensorShape() != RowVector || vt.Columns() != 3 {
		t.Errorf("transposed column vector: %v", vt)
	}

	m := NewMatrix(2, 3)
	mt := m.Transpose()
	if mt.TensorShape() != RowMajorMatrix || mt.Rows() != 3 || mt.Columns() != 2 {
		t.Errorf("transposed matrix: %v", mt)
	}
	if mt.Elements() != m.Elements() {
		t.Errorf("transpose changed element count: %d != %d", mt.Elements(), m.Elements())
	}

	s, _ := NewShaped(Symmetric, 3, 3)
	if st := s.Transpose(); st.TensorShape() != Symmetric {
		t.Errorf("transposed symmetric should stay symmetric, got %v", st.TensorShape())
	}
}

// TestSetShape verifies reinterpretation of stored elements
func TestSetShape(t *testing.T) {
	v := NewVector(6)
	if err := v.SetShape(ColMajorMatrix, 2, 3); err != nil {
		t.Fatalf("SetShape to 2x3 matrix failed: %v", err)
	}
	if v.Rows() != 2 || v.Columns() != 3 {
		t.Errorf("after SetShape: %dx%d, want 2x3", v.Rows(), v.Columns())
	}

	w := NewVector(5)
	if err := w.SetShape(ColMajorMatrix, 2, 3); !errors.Is(err, diplib.ErrTensorShapeMismatch) {
		t.Errorf("SetShape with wrong element count returned %v, want ErrTensorShapeMismatch", err)
	}
}
