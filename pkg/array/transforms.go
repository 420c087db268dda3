package array

import (
	"fmt"
	"sort"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/internal/models"
	"github.com/Abhijit-2592/diplib/pkg/tensor"
)

// View transforms. All methods in this file are zero-copy: they return a
// new view sharing the same data segment, with only shape, strides,
// tensor descriptor and origin rewritten. The receiver is never
// modified, so transforms compose and reverse freely.

func (v *View) derived() *View { return v.Share() }

// PermuteDimensions reorders the dimensions such that new dimension i is
// old dimension order[i]. order must be a permutation of all dimensions.
func (v *View) PermuteDimensions(order []int) (*View, error) {
	n := len(v.sizes)
	if len(order) != n {
		return nil, fmt.Errorf("%w: permutation of length %d for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(order), n)
	}
	seen := make([]bool, n)
	for _, d := range order {
		if d < 0 || d >= n || seen[d] {
			return nil, fmt.Errorf("%w: invalid permutation", diplib.ErrIndexOutOfRange)
		}
		seen[d] = true
	}
	out := v.derived()
	for i, d := range order {
		out.sizes[i] = v.sizes[d]
		out.strides[i] = v.strides[d]
	}
	return out, nil
}

// SwapDimensions exchanges two dimensions.
func (v *View) SwapDimensions(d1, d2 int) (*View, error) {
	n := len(v.sizes)
	if d1 < 0 || d1 >= n || d2 < 0 || d2 >= n {
		return nil, fmt.Errorf("%w: dimensions %d, %d of %d", diplib.ErrIndexOutOfRange, d1, d2, n)
	}
	out := v.derived()
	out.sizes[d1], out.sizes[d2] = out.sizes[d2], out.sizes[d1]
	out.strides[d1], out.strides[d2] = out.strides[d2], out.strides[d1]
	return out, nil
}

// Squeeze removes all dimensions of size 1.
func (v *View) Squeeze() *View {
	out := v.derived()
	sizes := out.sizes[:0]
	strides := out.strides[:0]
	for i := range out.sizes {
		if out.sizes[i] != 1 {
			sizes = append(sizes, out.sizes[i])
			strides = append(strides, out.strides[i])
		}
	}
	out.sizes = sizes
	out.strides = strides
	return out
}

// SqueezeDimension removes dimension d, which must have size 1.
func (v *View) SqueezeDimension(d int) (*View, error) {
	if d < 0 || d >= len(v.sizes) {
		return nil, fmt.Errorf("%w: dimension %d of %d", diplib.ErrIndexOutOfRange, d, len(v.sizes))
	}
	if v.sizes[d] != 1 {
		return nil, fmt.Errorf("%w: dimension %d has size %d, not 1",
			diplib.ErrSizesDontMatch, d, v.sizes[d])
	}
	out := v.derived()
	out.sizes = append(out.sizes[:d], out.sizes[d+1:]...)
	out.strides = append(out.strides[:d], out.strides[d+1:]...)
	return out, nil
}

// AddSingleton inserts a dimension of size 1 at position d. The new
// dimension's stride is 0, so it can later be expanded without copying.
func (v *View) AddSingleton(d int) (*View, error) {
	n := len(v.sizes)
	if d < 0 || d > n {
		return nil, fmt.Errorf("%w: dimension %d of %d", diplib.ErrIndexOutOfRange, d, n)
	}
	out := v.derived()
	out.sizes = append(out.sizes, 0)
	copy(out.sizes[d+1:], out.sizes[d:])
	out.sizes[d] = 1
	out.strides = append(out.strides, 0)
	copy(out.strides[d+1:], out.strides[d:])
	out.strides[d] = 0
	return out, nil
}

// ExpandDimensionality appends trailing singleton dimensions until the
// view has n dimensions.
func (v *View) ExpandDimensionality(n int) (*View, error) {
	if n < len(v.sizes) {
		return nil, fmt.Errorf("%w: cannot reduce %d dimensions to %d",
			diplib.ErrDimensionalityMismatch, len(v.sizes), n)
	}
	out := v.derived()
	for len(out.sizes) < n {
		out.sizes = append(out.sizes, 1)
		out.strides = append(out.strides, 0)
	}
	return out, nil
}

// ExpandSingleton grows the size-1 dimension d to the given size by
// setting its stride to zero. All logical positions along d share the
// same samples; the expansion is detectable through IsSingletonExpanded
// and reversible through UnexpandSingleton.
func (v *View) ExpandSingleton(d, size int) (*View, error) {
	if d < 0 || d >= len(v.sizes) {
		return nil, fmt.Errorf("%w: dimension %d of %d", diplib.ErrIndexOutOfRange, d, len(v.sizes))
	}
	if v.sizes[d] != 1 {
		return nil, fmt.Errorf("%w: dimension %d has size %d, not 1",
			diplib.ErrSizesDontMatch, d, v.sizes[d])
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: expansion to size %d", diplib.ErrInvalidShape, size)
	}
	out := v.derived()
	out.sizes[d] = size
	out.strides[d] = 0
	return out, nil
}

// UnexpandSingleton reverses ExpandSingleton on dimension d.
func (v *View) UnexpandSingleton(d int) (*View, error) {
	if d < 0 || d >= len(v.sizes) {
		return nil, fmt.Errorf("%w: dimension %d of %d", diplib.ErrIndexOutOfRange, d, len(v.sizes))
	}
	if v.strides[d] != 0 || v.sizes[d] == 1 {
		return nil, fmt.Errorf("%w: dimension %d is not singleton-expanded", diplib.ErrSizesDontMatch, d)
	}
	out := v.derived()
	out.sizes[d] = 1
	return out, nil
}

// Mirror reverses the view along the selected dimensions by negating
// their strides and moving the origin to the other end. Applying the
// same mirror twice restores the original view.
func (v *View) Mirror(dims ...int) (*View, error) {
	out := v.derived()
	for _, d := range dims {
		if d < 0 || d >= len(v.sizes) {
			return nil, fmt.Errorf("%w: dimension %d of %d", diplib.ErrIndexOutOfRange, d, len(v.sizes))
		}
		out.origin += (out.sizes[d] - 1) * out.strides[d]
		out.strides[d] = -out.strides[d]
	}
	return out, nil
}

// Rotation90 rotates the view by n times 90 degrees counterclockwise in
// the plane spanned by dimensions d1 and d2.
func (v *View) Rotation90(n, d1, d2 int) (*View, error) {
	nd := len(v.sizes)
	if d1 < 0 || d1 >= nd || d2 < 0 || d2 >= nd || d1 == d2 {
		return nil, fmt.Errorf("%w: rotation plane (%d, %d)", diplib.ErrIndexOutOfRange, d1, d2)
	}
	n = ((n % 4) + 4) % 4
	switch n {
	case 0:
		return v.derived(), nil
	case 1:
		out, err := v.SwapDimensions(d1, d2)
		if err != nil {
			return nil, err
		}
		return out.Mirror(d1)
	case 2:
		return v.Mirror(d1, d2)
	default: // 3
		out, err := v.SwapDimensions(d1, d2)
		if err != nil {
			return nil, err
		}
		return out.Mirror(d2)
	}
}

// At selects a sub-view through per-dimension ranges. Passing fewer
// ranges than dimensions fails; use models.All() for dimensions kept
// whole. The result shares samples with the receiver.
func (v *View) At(ranges ...models.Range) (*View, error) {
	if len(ranges) != len(v.sizes) {
		return nil, fmt.Errorf("%w: %d ranges for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(ranges), len(v.sizes))
	}
	out := v.derived()
	for i, r := range ranges {
		res, err := r.Resolve(v.sizes[i])
		if err != nil {
			return nil, err
		}
		out.origin += res.Start * out.strides[i]
		out.sizes[i] = res.Size
		out.strides[i] *= res.Step
	}
	return out, nil
}

// Crop reduces the view to newSizes, anchored at the center when
// centered is true and at the low corner otherwise. Zero-copy.
func (v *View) Crop(newSizes []int, centered bool) (*View, error) {
	if len(newSizes) != len(v.sizes) {
		return nil, fmt.Errorf("%w: %d sizes for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(newSizes), len(v.sizes))
	}
	out := v.derived()
	for i, s := range newSizes {
		if s < 1 || s > v.sizes[i] {
			return nil, fmt.Errorf("%w: crop size %d for dimension of size %d",
				diplib.ErrSizesDontMatch, s, v.sizes[i])
		}
		offset := 0
		if centered {
			offset = (v.sizes[i] - s) / 2
		}
		out.origin += offset * out.strides[i]
		out.sizes[i] = s
	}
	return out, nil
}

// --- Tensor transforms ---

// TensorToSpatial converts the tensor dimension into spatial dimension
// d, yielding a scalar view with one extra dimension.
func (v *View) TensorToSpatial(d int) (*View, error) {
	n := len(v.sizes)
	if d < 0 || d > n {
		return nil, fmt.Errorf("%w: dimension %d of %d", diplib.ErrIndexOutOfRange, d, n)
	}
	out := v.derived()
	out.sizes = append(out.sizes, 0)
	copy(out.sizes[d+1:], out.sizes[d:])
	out.sizes[d] = v.TensorElements()
	out.strides = append(out.strides, 0)
	copy(out.strides[d+1:], out.strides[d:])
	out.strides[d] = v.tstride
	out.tensor = tensor.New()
	out.tstride = 1
	return out, nil
}

// SpatialToTensor converts spatial dimension d into a column vector
// tensor. The view must be scalar.
func (v *View) SpatialToTensor(d int) (*View, error) {
	if !v.IsScalar() {
		return nil, fmt.Errorf("%w: view already has %d tensor elements",
			diplib.ErrTensorShapeMismatch, v.TensorElements())
	}
	if d < 0 || d >= len(v.sizes) {
		return nil, fmt.Errorf("%w: dimension %d of %d", diplib.ErrIndexOutOfRange, d, len(v.sizes))
	}
	out := v.derived()
	out.tensor = tensor.NewVector(v.sizes[d])
	out.tstride = v.strides[d]
	out.sizes = append(out.sizes[:d], out.sizes[d+1:]...)
	out.strides = append(out.strides[:d], out.strides[d+1:]...)
	return out, nil
}

// TensorElement extracts stored tensor element k as a scalar view.
func (v *View) TensorElement(k int) (*View, error) {
	if k < 0 || k >= v.TensorElements() {
		return nil, fmt.Errorf("%w: tensor element %d of %d",
			diplib.ErrIndexOutOfRange, k, v.TensorElements())
	}
	out := v.derived()
	out.origin += k * v.tstride
	out.tensor = tensor.New()
	return out, nil
}

// TensorRow extracts row r of a full-matrix or vector tensor as a row
// vector view. Packed tensor shapes must be expanded first.
func (v *View) TensorRow(r int) (*View, error) {
	t := v.tensor
	if r < 0 || r >= t.Rows() {
		return nil, fmt.Errorf("%w: tensor row %d of %d", diplib.ErrIndexOutOfRange, r, t.Rows())
	}
	out := v.derived()
	switch t.TensorShape() {
	case tensor.Scalar, tensor.ColVector:
		out.origin += r * v.tstride
		out.tensor = tensor.New()
	case tensor.RowVector:
		// A row vector has a single row: the whole tensor.
	case tensor.ColMajorMatrix:
		out.origin += r * v.tstride
		out.tensor, _ = tensor.NewShaped(tensor.RowVector, 1, t.Columns())
		out.tstride = v.tstride * t.Rows()
	case tensor.RowMajorMatrix:
		out.origin += r * t.Columns() * v.tstride
		out.tensor, _ = tensor.NewShaped(tensor.RowVector, 1, t.Columns())
	default:
		return nil, fmt.Errorf("%w: cannot take a row of a %s without expanding",
			diplib.ErrTensorShapeMismatch, t.TensorShape())
	}
	return out, nil
}

// TensorColumn extracts column c of a full-matrix or vector tensor as a
// column vector view.
func (v *View) TensorColumn(c int) (*View, error) {
	t := v.tensor
	if c < 0 || c >= t.Columns() {
		return nil, fmt.Errorf("%w: tensor column %d of %d", diplib.ErrIndexOutOfRange, c, t.Columns())
	}
	out := v.derived()
	switch t.TensorShape() {
	case tensor.Scalar, tensor.RowVector:
		out.origin += c * v.tstride
		out.tensor = tensor.New()
	case tensor.ColVector:
		// A column vector has a single column: the whole tensor.
	case tensor.ColMajorMatrix:
		out.origin += c * t.Rows() * v.tstride
		out.tensor = tensor.NewVector(t.Rows())
	case tensor.RowMajorMatrix:
		out.origin += c * v.tstride
		out.tensor = tensor.NewVector(t.Rows())
		out.tstride = v.tstride * t.Columns()
	default:
		return nil, fmt.Errorf("%w: cannot take a column of a %s without expanding",
			diplib.ErrTensorShapeMismatch, t.TensorShape())
	}
	return out, nil
}

// TensorDiagonal extracts the main diagonal of a matrix-shaped tensor as
// a column vector view. For the packed square shapes the diagonal is
// stored first, so the stride is the tensor stride itself.
func (v *View) TensorDiagonal() (*View, error) {
	t := v.tensor
	n := t.Rows()
	if t.Columns() < n {
		n = t.Columns()
	}
	out := v.derived()
	switch t.TensorShape() {
	case tensor.Scalar:
		return out, nil
	case tensor.Diagonal, tensor.Symmetric, tensor.UpperTriangular, tensor.LowerTriangular:
		out.tensor = tensor.NewVector(n)
	case tensor.ColMajorMatrix:
		out.tensor = tensor.NewVector(n)
		out.tstride = v.tstride * (t.Rows() + 1)
	case tensor.RowMajorMatrix:
		out.tensor = tensor.NewVector(n)
		out.tstride = v.tstride * (t.Columns() + 1)
	default:
		return nil, fmt.Errorf("%w: no diagonal for a %s", diplib.ErrTensorShapeMismatch, t.TensorShape())
	}
	return out, nil
}

// --- Normalization ---

// StandardizeStrides removes singleton dimensions, un-mirrors negative
// strides, and sorts the dimensions by increasing absolute stride. The
// result addresses exactly the same samples; applying the transform
// twice is a no-op.
func (v *View) StandardizeStrides() *View {
	out := v.Squeeze()
	for d := range out.sizes {
		if out.strides[d] < 0 {
			out.origin += (out.sizes[d] - 1) * out.strides[d]
			out.strides[d] = -out.strides[d]
		}
	}
	type dim struct{ stride, size int }
	dims := make([]dim, len(out.sizes))
	for i := range out.sizes {
		dims[i] = dim{out.strides[i], out.sizes[i]}
	}
	sort.SliceStable(dims, func(i, j int) bool { return dims[i].stride < dims[j].stride })
	for i := range dims {
		out.strides[i] = dims[i].stride
		out.sizes[i] = dims[i].size
	}
	return out
}
