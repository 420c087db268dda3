package pixeltable

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
)

// FromMask builds a neighborhood from a binary image, where set pixels
// belong to the neighborhood. The origin gives the coordinates of the
// mask pixel placed at the neighborhood center; passing nil centers the
// mask. Each maximal contiguous segment of set pixels along the
// processing dimension becomes one run.
func FromMask(mask *array.View, origin []int, procDim int) (*Table, error) {
	if !mask.IsForged() {
		return nil, diplib.ErrNotForged
	}
	if !mask.IsScalar() || mask.DataType() != dtype.Bin {
		return nil, fmt.Errorf("%w: neighborhood mask must be scalar binary", diplib.ErrUnsupportedDataType)
	}
	sizes := mask.Sizes()
	nd := len(sizes)
	if procDim < 0 || procDim >= nd {
		return nil, fmt.Errorf("%w: processing dimension %d of %d", diplib.ErrIndexOutOfRange, procDim, nd)
	}
	if origin == nil {
		origin = make([]int, nd)
		for d := range origin {
			origin[d] = sizes[d] / 2
		}
	}
	if len(origin) != nd {
		return nil, fmt.Errorf("%w: %d origin coordinates for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(origin), nd)
	}
	for d := range origin {
		if origin[d] < 0 || origin[d] >= sizes[d] {
			return nil, fmt.Errorf("%w: origin %v outside mask of size %v",
				diplib.ErrIndexOutOfRange, origin, sizes)
		}
	}

	t := &Table{procDim: procDim, sizes: sizes, origin: make([]int, nd)}
	for d := range t.origin {
		t.origin[d] = -origin[d]
	}
	bits := mask.Data().([]bool)
	strides := mask.Strides()

	// Walk every line along the processing dimension, collecting
	// maximal true segments.
	coords := make([]int, nd)
	for {
		off, err := mask.Offset(coords)
		if err != nil {
			return nil, err
		}
		runStart := -1
		for i := 0; i < sizes[procDim]; i++ {
			set := bits[off+i*strides[procDim]]
			switch {
			case set && runStart < 0:
				runStart = i
			case !set && runStart >= 0:
				t.emitMaskRun(coords, origin, runStart, i-runStart)
				runStart = -1
			}
		}
		if runStart >= 0 {
			t.emitMaskRun(coords, origin, runStart, sizes[procDim]-runStart)
		}

		d := 0
		for ; d < nd; d++ {
			if d == procDim {
				continue
			}
			coords[d]++
			if coords[d] < sizes[d] {
				break
			}
			coords[d] = 0
		}
		if d == nd {
			break
		}
	}
	return t, nil
}

func (t *Table) emitMaskRun(coords, origin []int, start, length int) {
	rc := make([]int, len(coords))
	for d := range coords {
		rc[d] = coords[d] - origin[d]
	}
	rc[t.procDim] = start - origin[t.procDim]
	t.appendRun(rc, length)
}

// ToMask renders the neighborhood as a binary image covering the
// bounding box. Building a table from the result with the matching
// origin reproduces the runs exactly.
func (t *Table) ToMask() (*array.View, error) {
	mask, err := array.New(t.Sizes(), 1, dtype.Bin)
	if err != nil {
		return nil, err
	}
	if err := mask.Fill(0); err != nil {
		return nil, err
	}
	bits := mask.Data().([]bool)
	strides := mask.Strides()
	for _, r := range t.runs {
		coords := make([]int, len(r.Coordinates))
		for d := range coords {
			coords[d] = r.Coordinates[d] - t.origin[d]
		}
		off, err := mask.Offset(coords)
		if err != nil {
			return nil, err
		}
		for i := 0; i < r.Length; i++ {
			bits[off+i*strides[t.procDim]] = true
		}
	}
	return mask, nil
}

// AddWeights attaches per-pixel weights taken from an image laid over
// the bounding box. The image must be scalar, real-valued and match the
// bounding box sizes. Weights are stored in run iteration order.
func (t *Table) AddWeights(img *array.View) error {
	if !img.IsForged() {
		return diplib.ErrNotForged
	}
	if !img.IsScalar() {
		return fmt.Errorf("%w: weight image must be scalar", diplib.ErrTensorShapeMismatch)
	}
	if err := dtype.Require(img.DataType(), dtype.Real); err != nil {
		return err
	}
	sizes := img.Sizes()
	if len(sizes) != len(t.sizes) {
		return fmt.Errorf("%w: %d vs %d dimensions", diplib.ErrDimensionalityMismatch,
			len(sizes), len(t.sizes))
	}
	for d := range sizes {
		if sizes[d] != t.sizes[d] {
			return fmt.Errorf("%w: weight image %v does not cover bounding box %v",
				diplib.ErrSizesDontMatch, sizes, t.sizes)
		}
	}
	weights := make([]float64, 0, t.nPixels)
	coords := make([]int, len(t.sizes))
	for _, r := range t.runs {
		for d := range coords {
			coords[d] = r.Coordinates[d] - t.origin[d]
		}
		for i := 0; i < r.Length; i++ {
			coords[t.procDim] = r.Coordinates[t.procDim] + i - t.origin[t.procDim]
			w, err := img.FloatAt(coords...)
			if err != nil {
				return err
			}
			weights = append(weights, w)
		}
	}
	t.weights = weights
	return nil
}

// OffsetRun is a neighborhood run translated to sample offsets for a
// concrete image layout.
type OffsetRun struct {
	// Offset is the sample offset of the first pixel of the run,
	// relative to the sample at the neighborhood center.
	Offset int

	// Length is the number of pixels in the run.
	Length int
}

// Offsets is the pre-multiplied form of a Table, bound to one image's
// strides. The kernel framework builds one per dispatch and translates
// it along output lines by adding the line stride.
type Offsets struct {
	runs       []OffsetRun
	procStride int
	weights    []float64
	nPixels    int
}

// Runs returns the translated runs.
func (o *Offsets) Runs() []OffsetRun { return o.runs }

// ProcessingStride returns the sample stride between successive pixels
// within a run.
func (o *Offsets) ProcessingStride() int { return o.procStride }

// NumberOfPixels returns the total pixel count over all runs.
func (o *Offsets) NumberOfPixels() int { return o.nPixels }

// Weights returns the per-pixel weights carried over from the table, or
// nil when none were attached.
func (o *Offsets) Weights() []float64 { return o.weights }

// Flat expands the runs to one sample offset per neighborhood pixel, in
// run iteration order, matching the order of Weights.
func (o *Offsets) Flat() []int {
	out := make([]int, 0, o.nPixels)
	for _, r := range o.runs {
		for i := 0; i < r.Length; i++ {
			out = append(out, r.Offset+i*o.procStride)
		}
	}
	return out
}

// Offsets translates the table to sample offsets for an image with the
// given strides.
func (t *Table) Offsets(strides []int) (*Offsets, error) {
	if len(strides) != len(t.sizes) {
		return nil, fmt.Errorf("%w: %d strides for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(strides), len(t.sizes))
	}
	out := &Offsets{
		runs:       make([]OffsetRun, len(t.runs)),
		procStride: strides[t.procDim],
		weights:    t.weights,
		nPixels:    t.nPixels,
	}
	for i, r := range t.runs {
		off := 0
		for d, c := range r.Coordinates {
			off += c * strides[d]
		}
		out.runs[i] = OffsetRun{Offset: off, Length: r.Length}
	}
	return out, nil
}
