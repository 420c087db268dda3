package array

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
	"github.com/Abhijit-2592/diplib/pkg/tensor"
)

// The operations in this file move sample data. Casts between element
// types saturate: narrowing clamps to the target range, complex samples
// convert to real as their magnitude.

// dualIterator walks all pixels of two equally-sized views in lock step,
// tracking the sample offset in each. Offsets are updated incrementally,
// the way image lines are walked everywhere in the core.
type dualIterator struct {
	sizes    []int
	pos      []int
	strides1 []int
	strides2 []int
	off1     int
	off2     int
	done     bool
}

func newDualIterator(sizes, strides1, strides2 []int, off1, off2 int) *dualIterator {
	return &dualIterator{
		sizes:    sizes,
		pos:      make([]int, len(sizes)),
		strides1: strides1,
		strides2: strides2,
		off1:     off1,
		off2:     off2,
	}
}

// next advances to the next pixel, returning false once all pixels have
// been visited. The first pixel is current before the first call.
func (it *dualIterator) next() bool {
	for d := 0; d < len(it.sizes); d++ {
		it.pos[d]++
		it.off1 += it.strides1[d]
		it.off2 += it.strides2[d]
		if it.pos[d] < it.sizes[d] {
			return true
		}
		it.off1 -= it.pos[d] * it.strides1[d]
		it.off2 -= it.pos[d] * it.strides2[d]
		it.pos[d] = 0
	}
	it.done = true
	return false
}

// CopyFrom copies all samples of src into v, casting to v's element type
// with saturation. The views must agree on sizes and tensor element
// count. Fails with ErrSizesDontMatch on geometry mismatch and rejects
// singleton-expanded destinations, which would write each sample through
// multiple logical positions.
func (v *View) CopyFrom(src *View) error {
	if !v.IsForged() || !src.IsForged() {
		return diplib.ErrNotForged
	}
	if v.IsSingletonExpanded() {
		return fmt.Errorf("%w: destination is singleton-expanded", diplib.ErrSizesDontMatch)
	}
	if len(v.sizes) != len(src.sizes) {
		return fmt.Errorf("%w: %d vs %d dimensions", diplib.ErrDimensionalityMismatch,
			len(v.sizes), len(src.sizes))
	}
	for i := range v.sizes {
		if v.sizes[i] != src.sizes[i] {
			return fmt.Errorf("%w: dimension %d is %d vs %d", diplib.ErrSizesDontMatch,
				i, v.sizes[i], src.sizes[i])
		}
	}
	if v.TensorElements() != src.TensorElements() {
		return fmt.Errorf("%w: %d vs %d tensor elements", diplib.ErrTensorShapeMismatch,
			v.TensorElements(), src.TensorElements())
	}
	if ok, _ := v.Aliases(src); ok && !v.IsIdenticalView(src) {
		// Overlapping but not identical: stage through a private copy so
		// samples are not clobbered before they are read.
		tmp, err := src.Copy()
		if err != nil {
			return err
		}
		src = tmp
	}
	it := newDualIterator(v.sizes, src.strides, v.strides, src.origin, v.origin)
	nt := v.TensorElements()
	for !it.done {
		for t := 0; t < nt; t++ {
			dtype.CopySample(src.blk.data, it.off1+t*src.tstride, v.blk.data, it.off2+t*v.tstride)
		}
		it.next()
	}
	return nil
}

// Copy returns a deep copy of the view with natural strides and the same
// element type.
func (v *View) Copy() (*View, error) {
	out, err := New(v.Sizes(), v.TensorElements(), v.dt)
	if err != nil {
		return nil, err
	}
	out.tensor = v.tensor
	if err := out.CopyFrom(v); err != nil {
		return nil, err
	}
	return out, nil
}

// Convert returns the view cast to element type dt, saturating values
// that do not fit. Converting to the current type returns a shared view
// without copying.
func (v *View) Convert(dt dtype.Type) (*View, error) {
	if !v.IsForged() {
		return nil, diplib.ErrNotForged
	}
	if dt == v.dt {
		return v.Share(), nil
	}
	out, err := New(v.Sizes(), v.TensorElements(), dt)
	if err != nil {
		return nil, err
	}
	out.tensor = v.tensor
	if err := out.CopyFrom(v); err != nil {
		return nil, err
	}
	return out, nil
}

// Fill writes the same value to every sample of the view, saturated to
// the element type. Rejects singleton-expanded views.
func (v *View) Fill(value float64) error {
	if !v.IsForged() {
		return diplib.ErrNotForged
	}
	if v.IsSingletonExpanded() {
		return fmt.Errorf("%w: view is singleton-expanded", diplib.ErrSizesDontMatch)
	}
	it := newDualIterator(v.sizes, v.strides, v.strides, v.origin, v.origin)
	nt := v.TensorElements()
	for !it.done {
		for t := 0; t < nt; t++ {
			dtype.WriteFloat(v.blk.data, it.off1+t*v.tstride, value)
		}
		it.next()
	}
	return nil
}

// Pad embeds the view in a zero-filled image of newSizes, anchored at
// the center when centered is true and at the low corner otherwise.
// Padding allocates and copies; it is the one shape change that cannot
// be expressed as a metadata rewrite.
func (v *View) Pad(newSizes []int, centered bool) (*View, error) {
	if !v.IsForged() {
		return nil, diplib.ErrNotForged
	}
	if len(newSizes) != len(v.sizes) {
		return nil, fmt.Errorf("%w: %d sizes for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(newSizes), len(v.sizes))
	}
	for i, s := range newSizes {
		if s < v.sizes[i] {
			return nil, fmt.Errorf("%w: pad size %d smaller than dimension size %d",
				diplib.ErrSizesDontMatch, s, v.sizes[i])
		}
	}
	out, err := New(newSizes, v.TensorElements(), v.dt)
	if err != nil {
		return nil, err
	}
	out.tensor = v.tensor
	window, err := out.Crop(v.Sizes(), centered)
	if err != nil {
		return nil, err
	}
	if err := window.CopyFrom(v); err != nil {
		return nil, err
	}
	return out, nil
}

// ExpandTensor returns a view whose tensor is stored as a full
// column-major matrix. Views that already have normal tensor order are
// shared; packed shapes (diagonal, symmetric, triangular) are copied
// through the tensor's look-up table, materializing the implicit zeros.
func (v *View) ExpandTensor() (*View, error) {
	if !v.IsForged() {
		return nil, diplib.ErrNotForged
	}
	if v.tensor.HasNormalOrder() {
		return v.Share(), nil
	}
	lut := v.tensor.LookUpTable()
	out, err := New(v.Sizes(), len(lut), v.dt)
	if err != nil {
		return nil, err
	}
	if err := out.tensor.SetShape(tensor.ColMajorMatrix, v.tensor.Rows(), v.tensor.Columns()); err != nil {
		return nil, err
	}
	it := newDualIterator(v.sizes, v.strides, out.strides, v.origin, out.origin)
	for !it.done {
		for t, s := range lut {
			if s < 0 {
				dtype.WriteFloat(out.blk.data, it.off2+t*out.tstride, 0)
			} else {
				dtype.CopySample(v.blk.data, it.off1+s*v.tstride, out.blk.data, it.off2+t*out.tstride)
			}
		}
		it.next()
	}
	return out, nil
}

// Flatten returns a 1-D view over all pixels. When the samples occupy a
// dense block this is zero-copy; otherwise the data is first copied to a
// contiguous layout.
func (v *View) Flatten() (*View, error) {
	if !v.IsForged() {
		return nil, diplib.ErrNotForged
	}
	stride, _, start, ok := simpleStride(v.strides, v.sizes)
	if ok {
		out := v.derived()
		out.origin += start
		out.sizes = []int{v.NumberOfPixels()}
		out.strides = []int{stride}
		return out, nil
	}
	flat, err := v.Copy()
	if err != nil {
		return nil, err
	}
	return flat.Flatten()
}
