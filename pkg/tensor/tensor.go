// Package tensor implements the tensor descriptor: the organization of
// the small, fixed bundle of numeric elements attached to each image
// position (color channels, gradient vectors, structure tensors, ...),
// independent of the image's element type and spatial dimensions.
//
// Matrix-shaped descriptors may store fewer elements than rows*cols:
// diagonal, symmetric and triangular matrices only store their
// non-redundant elements. Operations that require the full matrix layout
// expand through the look-up table returned by LookUpTable.
package tensor

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
)

// Shape enumerates the supported tensor organizations.
type Shape int

const (
	// Scalar is a single element per position.
	Scalar Shape = iota
	// ColVector is a column vector of n elements.
	ColVector
	// RowVector is a row vector of n elements.
	RowVector
	// ColMajorMatrix is a full matrix with elements stored column by column.
	ColMajorMatrix
	// RowMajorMatrix is a full matrix with elements stored row by row.
	RowMajorMatrix
	// Diagonal is a square diagonal matrix storing only the diagonal.
	Diagonal
	// Symmetric is a square symmetric matrix storing the diagonal first,
	// then the upper-triangular elements column by column.
	Symmetric
	// UpperTriangular stores like Symmetric but the lower triangle is zero.
	UpperTriangular
	// LowerTriangular stores like Symmetric transposed; the upper triangle
	// is zero.
	LowerTriangular
)

// String returns the name of the shape.
func (s Shape) String() string {
	switch s {
	case Scalar:
		return "scalar"
	case ColVector:
		return "column vector"
	case RowVector:
		return "row vector"
	case ColMajorMatrix:
		return "column-major matrix"
	case RowMajorMatrix:
		return "row-major matrix"
	case Diagonal:
		return "diagonal matrix"
	case Symmetric:
		return "symmetric matrix"
	case UpperTriangular:
		return "upper triangular matrix"
	case LowerTriangular:
		return "lower triangular matrix"
	}
	return "unknown"
}

// Tensor describes the tensor attached to each image position.
type Tensor struct {
	shape Shape
	rows  int
	cols  int
}

// New creates a scalar tensor descriptor.
func New() Tensor { return Tensor{shape: Scalar, rows: 1, cols: 1} }

// NewVector creates a column vector descriptor of n elements.
func NewVector(n int) Tensor { return Tensor{shape: ColVector, rows: n, cols: 1} }

// NewMatrix creates a full column-major matrix descriptor.
func NewMatrix(rows, cols int) Tensor {
	return Tensor{shape: ColMajorMatrix, rows: rows, cols: cols}
}

// NewShaped creates a descriptor with an explicit shape. Square-only
// shapes fail with ErrTensorShapeMismatch when rows != cols.
func NewShaped(shape Shape, rows, cols int) (Tensor, error) {
	if rows < 1 || cols < 1 {
		return Tensor{}, fmt.Errorf("%w: non-positive tensor size %dx%d", diplib.ErrTensorShapeMismatch, rows, cols)
	}
	switch shape {
	case Scalar:
		if rows != 1 || cols != 1 {
			return Tensor{}, fmt.Errorf("%w: scalar tensor must be 1x1", diplib.ErrTensorShapeMismatch)
		}
	case ColVector:
		if cols != 1 {
			return Tensor{}, fmt.Errorf("%w: column vector must have one column", diplib.ErrTensorShapeMismatch)
		}
	case RowVector:
		if rows != 1 {
			return Tensor{}, fmt.Errorf("%w: row vector must have one row", diplib.ErrTensorShapeMismatch)
		}
	case Diagonal, Symmetric, UpperTriangular, LowerTriangular:
		if rows != cols {
			return Tensor{}, fmt.Errorf("%w: %s must be square", diplib.ErrTensorShapeMismatch, shape)
		}
	}
	return Tensor{shape: shape, rows: rows, cols: cols}, nil
}

// TensorShape returns the shape kind.
func (t Tensor) TensorShape() Shape { return t.shape }

// Rows returns the number of matrix rows (1 for scalars and row vectors).
func (t Tensor) Rows() int { return t.rows }

// Columns returns the number of matrix columns.
func (t Tensor) Columns() int { return t.cols }

// IsScalar reports whether exactly one element is stored per position.
func (t Tensor) IsScalar() bool { return t.Elements() == 1 }

// IsVector reports whether the tensor is a row or column vector.
func (t Tensor) IsVector() bool { return t.shape == ColVector || t.shape == RowVector }

// Elements returns the number of elements actually stored per position.
// Packed shapes store fewer than rows*cols elements.
func (t Tensor) Elements() int {
	switch t.shape {
	case Scalar:
		return 1
	case ColVector:
		return t.rows
	case RowVector:
		return t.cols
	case ColMajorMatrix, RowMajorMatrix:
		return t.rows * t.cols
	case Diagonal:
		return t.rows
	case Symmetric, UpperTriangular, LowerTriangular:
		return t.rows * (t.rows + 1) / 2
	}
	return 0
}

// HasNormalOrder reports whether the stored elements already are the full
// column-major matrix layout, so no expansion is needed.
func (t Tensor) HasNormalOrder() bool {
	switch t.shape {
	case Scalar, ColVector, RowVector, ColMajorMatrix:
		return true
	}
	return false
}

// storedIndex returns the storage slot of full-matrix element (r, c), or
// -1 when the element is an implicit zero. Packed square shapes store the
// diagonal first, then the off-diagonal elements column by column.
func (t Tensor) storedIndex(r, c int) int {
	switch t.shape {
	case Scalar:
		return 0
	case ColVector, RowVector, ColMajorMatrix:
		return r + c*t.rows
	case RowMajorMatrix:
		return r*t.cols + c
	case Diagonal:
		if r == c {
			return r
		}
		return -1
	case Symmetric:
		if r == c {
			return r
		}
		if r > c {
			r, c = c, r
		}
		return t.rows + packedUpperIndex(r, c)
	case UpperTriangular:
		if r == c {
			return r
		}
		if r > c {
			return -1
		}
		return t.rows + packedUpperIndex(r, c)
	case LowerTriangular:
		if r == c {
			return r
		}
		if r < c {
			return -1
		}
		return t.rows + packedUpperIndex(c, r)
	}
	return -1
}

// packedUpperIndex numbers the strict upper-triangle elements column by
// column: (0,1), (0,2), (1,2), (0,3), ...
func packedUpperIndex(r, c int) int {
	return c*(c-1)/2 + r
}

// LookUpTable returns, for each element of the full column-major matrix
// layout, the index of the stored element that holds its value, or -1
// where the value is an implicit zero. The table is used to expand packed
// tensors into a normalized full representation.
func (t Tensor) LookUpTable() []int {
	lut := make([]int, t.rows*t.cols)
	for c := 0; c < t.cols; c++ {
		for r := 0; r < t.rows; r++ {
			lut[r+c*t.rows] = t.storedIndex(r, c)
		}
	}
	return lut
}

// Transpose returns the descriptor of the transposed tensor. Transposition
// never moves data: it only renames the shape.
func (t Tensor) Transpose() Tensor {
	out := Tensor{rows: t.cols, cols: t.rows}
	switch t.shape {
	case Scalar, Diagonal, Symmetric:
		out.shape = t.shape
		out.rows, out.cols = t.rows, t.cols
	case ColVector:
		out.shape = RowVector
	case RowVector:
		out.shape = ColVector
	case ColMajorMatrix:
		out.shape = RowMajorMatrix
	case RowMajorMatrix:
		out.shape = ColMajorMatrix
	case UpperTriangular:
		out.shape = LowerTriangular
		out.rows, out.cols = t.rows, t.cols
	case LowerTriangular:
		out.shape = UpperTriangular
		out.rows, out.cols = t.rows, t.cols
	}
	return out
}

// SetShape reinterprets the stored elements as a different shape. The new
// shape must store exactly the same number of elements.
func (t *Tensor) SetShape(shape Shape, rows, cols int) error {
	n, err := NewShaped(shape, rows, cols)
	if err != nil {
		return err
	}
	if n.Elements() != t.Elements() {
		return fmt.Errorf("%w: %s %dx%d stores %d elements, have %d",
			diplib.ErrTensorShapeMismatch, shape, rows, cols, n.Elements(), t.Elements())
	}
	*t = n
	return nil
}

// String describes the descriptor.
func (t Tensor) String() string {
	if t.IsScalar() {
		return "scalar"
	}
	return fmt.Sprintf("%s (%dx%d, %d elements)", t.shape, t.rows, t.cols, t.Elements())
}
