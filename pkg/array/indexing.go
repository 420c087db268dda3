package array

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
)

// The coordinate/offset mapper: conversions between N-dimensional
// coordinates, the row-major linear pixel index, and the raw sample
// offset inside the data buffer. Offsets honor the strides, including
// negative strides produced by mirroring.

// Offset returns the sample offset of the pixel at the given
// coordinates. Fails with ErrIndexOutOfRange for coordinates outside the
// image domain and with ErrDimensionalityMismatch for a wrong coordinate
// count.
func (v *View) Offset(coords []int) (int, error) {
	if len(coords) != len(v.sizes) {
		return 0, fmt.Errorf("%w: %d coordinates for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(coords), len(v.sizes))
	}
	off := v.origin
	for i, c := range coords {
		if c < 0 || c >= v.sizes[i] {
			return 0, fmt.Errorf("%w: coordinate %d is %d, dimension size %d",
				diplib.ErrIndexOutOfRange, i, c, v.sizes[i])
		}
		off += c * v.strides[i]
	}
	return off, nil
}

// CoordinatesToIndex returns the row-major linear pixel index of the
// given coordinates, with the first dimension varying fastest.
func (v *View) CoordinatesToIndex(coords []int) (int, error) {
	if len(coords) != len(v.sizes) {
		return 0, fmt.Errorf("%w: %d coordinates for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(coords), len(v.sizes))
	}
	idx := 0
	mult := 1
	for i, c := range coords {
		if c < 0 || c >= v.sizes[i] {
			return 0, fmt.Errorf("%w: coordinate %d is %d, dimension size %d",
				diplib.ErrIndexOutOfRange, i, c, v.sizes[i])
		}
		idx += c * mult
		mult *= v.sizes[i]
	}
	return idx, nil
}

// IndexToCoordinates inverts CoordinatesToIndex.
func (v *View) IndexToCoordinates(index int) ([]int, error) {
	if index < 0 || index >= v.NumberOfPixels() {
		return nil, fmt.Errorf("%w: index %d, image has %d pixels",
			diplib.ErrIndexOutOfRange, index, v.NumberOfPixels())
	}
	coords := make([]int, len(v.sizes))
	for i, s := range v.sizes {
		coords[i] = index % s
		index /= s
	}
	return coords, nil
}

// IndexToOffset returns the sample offset of the pixel with the given
// row-major linear index.
func (v *View) IndexToOffset(index int) (int, error) {
	coords, err := v.IndexToCoordinates(index)
	if err != nil {
		return 0, err
	}
	return v.Offset(coords)
}

// OffsetToCoordinates inverts Offset. Only valid for views with normal
// strides, where every offset maps to a unique coordinate vector.
func (v *View) OffsetToCoordinates(offset int) ([]int, error) {
	if !v.HasNormalStrides() {
		return nil, fmt.Errorf("%w: offset inversion needs normal strides", diplib.ErrInvalidShape)
	}
	offset -= v.origin
	if offset < 0 || offset >= v.NumberOfPixels()*v.TensorElements() {
		return nil, fmt.Errorf("%w: offset %d outside the image", diplib.ErrIndexOutOfRange, offset)
	}
	coords := make([]int, len(v.sizes))
	for i := len(v.sizes) - 1; i >= 0; i-- {
		coords[i] = offset / v.strides[i]
		offset %= v.strides[i]
	}
	return coords, nil
}

// offsetToCoordinates inverts an offset against all-positive strides
// sorted in increasing order. Internal helper for aliasing detection.
func offsetToCoordinates(offset int, strides []int) []int {
	coords := make([]int, len(strides))
	for i := len(strides) - 1; i >= 0; i-- {
		coords[i] = offset / strides[i]
		offset = offset % strides[i]
	}
	return coords
}

// --- Sample accessors ---

// FloatAt reads the first tensor element at the given coordinates as a
// float64. Complex samples read as their magnitude.
func (v *View) FloatAt(coords ...int) (float64, error) {
	off, err := v.sampleOffset(coords)
	if err != nil {
		return 0, err
	}
	return dtype.ReadFloat(v.blk.data, off), nil
}

// SetFloat writes the first tensor element at the given coordinates,
// saturating to the element type's range.
func (v *View) SetFloat(value float64, coords ...int) error {
	off, err := v.sampleOffset(coords)
	if err != nil {
		return err
	}
	dtype.WriteFloat(v.blk.data, off, value)
	return nil
}

// ComplexAt reads the first tensor element as a complex128.
func (v *View) ComplexAt(coords ...int) (complex128, error) {
	off, err := v.sampleOffset(coords)
	if err != nil {
		return 0, err
	}
	return dtype.ReadComplex(v.blk.data, off), nil
}

// SetComplex writes the first tensor element. Writing to a real-typed
// view stores the magnitude.
func (v *View) SetComplex(value complex128, coords ...int) error {
	off, err := v.sampleOffset(coords)
	if err != nil {
		return err
	}
	dtype.WriteComplex(v.blk.data, off, value)
	return nil
}

func (v *View) sampleOffset(coords []int) (int, error) {
	if !v.IsForged() {
		return 0, diplib.ErrNotForged
	}
	return v.Offset(coords)
}
