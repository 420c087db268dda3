// Package array implements the central entity of the image core: an
// N-dimensional strided view over a shared, reference-counted sample
// block. Views support zero-copy reshaping, slicing, mirroring and
// tensor extraction, detect aliasing between each other, and carry the
// element type tag that drives all generic dispatch.
//
// Terminology follows the classical image-processing usage: a view is
// "forged" when it has a data segment, "raw" when it does not, and
// "stripped" when it drops its reference to the segment.
package array

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
	"github.com/Abhijit-2592/diplib/pkg/tensor"
)

// maxSize bounds each dimension and the total sample count, keeping
// offset arithmetic comfortably inside int range on 64-bit hosts.
const maxSize = 1 << 40

// Allocator is the external allocator capability: host environments may
// supply the data segment for a view, committing to the strides they
// return. Returning nil strides requests the natural row-major layout.
type Allocator interface {
	// Allocate returns a sample buffer (one of the dtype slice kinds)
	// holding at least the required number of samples, the spatial
	// strides and tensor stride actually used, and an optional release
	// callback invoked when the last view drops the segment.
	Allocate(sizes []int, t tensor.Tensor, dt dtype.Type) (data any, strides []int, tensorStride int, release func(), err error)
}

// View is an N-dimensional strided reference to numeric sample data.
// The zero value is a raw (un-forged) scalar view of type Bin with no
// dimensions; use New, Raw or FromSlice to create views.
type View struct {
	dt      dtype.Type
	sizes   []int
	strides []int
	tensor  tensor.Tensor
	tstride int

	blk    *block
	origin int // sample offset of coordinate zero inside the block

	protected bool
	external  bool
	alloc     Allocator
}

// Raw creates an un-forged view carrying shape and type only. Forge or
// ReForge allocates its data segment.
func Raw(sizes []int, tensorElements int, dt dtype.Type) (*View, error) {
	if err := validSizes(sizes); err != nil {
		return nil, err
	}
	if tensorElements < 1 {
		return nil, fmt.Errorf("%w: %d tensor elements", diplib.ErrTensorShapeMismatch, tensorElements)
	}
	v := &View{
		dt:     dt,
		sizes:  append([]int(nil), sizes...),
		tensor: tensorDescriptor(tensorElements),
	}
	return v, nil
}

// New creates and forges a view of the given shape, tensor element count
// and element type. The data segment is zero-initialized.
func New(sizes []int, tensorElements int, dt dtype.Type) (*View, error) {
	v, err := Raw(sizes, tensorElements, dt)
	if err != nil {
		return nil, err
	}
	if err := v.Forge(); err != nil {
		return nil, err
	}
	return v, nil
}

// NewScalar creates a forged scalar (single tensor element) view.
func NewScalar(sizes []int, dt dtype.Type) (*View, error) {
	return New(sizes, 1, dt)
}

// FromSlice attaches existing sample memory to a new view without
// copying. The data slice must be one of the dtype buffer kinds and hold
// product(sizes) samples in natural row-major layout. A non-nil release
// callback is invoked when the last view referencing the memory is
// stripped; passing nil makes the view non-owning.
func FromSlice(data any, sizes []int, release func()) (*View, error) {
	dt, ok := dtype.TypeOfSlice(data)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported slice kind %T", diplib.ErrUnsupportedDataType, data)
	}
	if err := validSizes(sizes); err != nil {
		return nil, err
	}
	n := 1
	for _, s := range sizes {
		n *= s
	}
	if dtype.Length(data) < n {
		return nil, fmt.Errorf("%w: %d samples supplied, shape needs %d",
			diplib.ErrSizesDontMatch, dtype.Length(data), n)
	}
	v := &View{
		dt:       dt,
		sizes:    append([]int(nil), sizes...),
		tensor:   tensor.New(),
		external: true,
	}
	v.computeStrides()
	v.blk = newBlock(data, release)
	return v, nil
}

func tensorDescriptor(elements int) tensor.Tensor {
	if elements == 1 {
		return tensor.New()
	}
	return tensor.NewVector(elements)
}

func validSizes(sizes []int) error {
	n := 1
	for _, s := range sizes {
		if s <= 0 {
			return fmt.Errorf("%w: dimension of size %d", diplib.ErrInvalidShape, s)
		}
		if s > maxSize || n > maxSize/s {
			return fmt.Errorf("%w: shape exceeds size limit", diplib.ErrInvalidShape)
		}
		n *= s
	}
	return nil
}

// --- Basic properties ---

// IsForged reports whether the view has a data segment.
func (v *View) IsForged() bool { return v.blk != nil }

// Dimensionality returns the number of spatial dimensions.
func (v *View) Dimensionality() int { return len(v.sizes) }

// Sizes returns a copy of the per-dimension extents.
func (v *View) Sizes() []int { return append([]int(nil), v.sizes...) }

// Size returns the extent of dimension d.
func (v *View) Size(d int) (int, error) {
	if d < 0 || d >= len(v.sizes) {
		return 0, fmt.Errorf("%w: dimension %d of %d", diplib.ErrIndexOutOfRange, d, len(v.sizes))
	}
	return v.sizes[d], nil
}

// Strides returns a copy of the per-dimension sample strides.
func (v *View) Strides() []int { return append([]int(nil), v.strides...) }

// Stride returns the sample stride of dimension d.
func (v *View) Stride(d int) (int, error) {
	if d < 0 || d >= len(v.strides) {
		return 0, fmt.Errorf("%w: dimension %d of %d", diplib.ErrIndexOutOfRange, d, len(v.strides))
	}
	return v.strides[d], nil
}

// TensorStride returns the stride between tensor elements of one pixel.
func (v *View) TensorStride() int { return v.tstride }

// DataType returns the element type tag.
func (v *View) DataType() dtype.Type { return v.dt }

// Tensor returns the tensor descriptor.
func (v *View) Tensor() tensor.Tensor { return v.tensor }

// TensorElements returns the number of stored tensor elements per pixel.
func (v *View) TensorElements() int { return v.tensor.Elements() }

// ReshapeTensor replaces the tensor descriptor without touching data.
// The new descriptor must store the same number of elements.
func (v *View) ReshapeTensor(t tensor.Tensor) error {
	if t.Elements() != v.tensor.Elements() {
		return fmt.Errorf("%w: %d stored elements cannot become %d",
			diplib.ErrTensorShapeMismatch, v.tensor.Elements(), t.Elements())
	}
	v.tensor = t
	return nil
}

// IsScalar reports whether one tensor element is stored per pixel.
func (v *View) IsScalar() bool { return v.tensor.IsScalar() }

// NumberOfPixels returns the number of spatial positions.
func (v *View) NumberOfPixels() int {
	n := 1
	for _, s := range v.sizes {
		n *= s
	}
	return n
}

// NumberOfSamples returns pixels times tensor elements.
func (v *View) NumberOfSamples() int { return v.NumberOfPixels() * v.TensorElements() }

// Data exposes the underlying sample buffer (one of the dtype slice
// kinds). Line filters receive offsets into this buffer.
func (v *View) Data() any {
	if v.blk == nil {
		return nil
	}
	return v.blk.data
}

// OriginOffset returns the sample offset of coordinate zero inside the
// data buffer.
func (v *View) OriginOffset() int { return v.origin }

// Protect marks the data segment as protected from deallocation. Strip
// and reallocating ReForge calls fail while protected.
func (v *View) Protect() { v.protected = true }

// Unprotect clears the protection flag.
func (v *View) Unprotect() { v.protected = false }

// IsProtected reports the protection flag.
func (v *View) IsProtected() bool { return v.protected }

// IsExternalData reports whether the data segment came from outside the
// core (FromSlice or an external allocator).
func (v *View) IsExternalData() bool { return v.external }

// SetAllocator registers an external allocator consulted by the next
// Forge. Pass nil to restore internal allocation.
func (v *View) SetAllocator(a Allocator) { v.alloc = a }

// --- Lifecycle ---

// computeStrides installs the natural row-major layout: tensor elements
// are interleaved with stride 1, the first spatial dimension varies
// fastest.
func (v *View) computeStrides() {
	v.tstride = 1
	s := v.TensorElements()
	v.strides = make([]int, len(v.sizes))
	for i := range v.sizes {
		v.strides[i] = s
		s *= v.sizes[i]
	}
}

// Forge allocates the data segment. It is a no-op on a forged view.
// Fails with ErrInvalidShape for empty or oversized shapes, and with
// ErrAllocationFailed when a registered external allocator misbehaves.
func (v *View) Forge() error {
	if v.IsForged() {
		return nil
	}
	if err := validSizes(v.sizes); err != nil {
		return err
	}
	n := v.NumberOfSamples()
	if n > maxSize {
		return fmt.Errorf("%w: shape exceeds size limit", diplib.ErrInvalidShape)
	}
	if v.alloc != nil {
		data, strides, tstride, release, err := v.alloc.Allocate(v.Sizes(), v.tensor, v.dt)
		if err != nil {
			return fmt.Errorf("%w: %v", diplib.ErrAllocationFailed, err)
		}
		dt, ok := dtype.TypeOfSlice(data)
		if !ok || dt != v.dt {
			return fmt.Errorf("%w: allocator returned buffer of wrong kind", diplib.ErrAllocationFailed)
		}
		if strides == nil {
			v.computeStrides()
		} else {
			if len(strides) != len(v.sizes) {
				return fmt.Errorf("%w: allocator returned %d strides for %d dimensions",
					diplib.ErrAllocationFailed, len(strides), len(v.sizes))
			}
			v.strides = append([]int(nil), strides...)
			v.tstride = tensorStrideOrDefault(tstride)
		}
		size, start := dataBlockSizeAndStart(v.strides, v.sizes, v.tstride, v.TensorElements())
		if dtype.Length(data) < size {
			return fmt.Errorf("%w: allocator returned %d samples, need %d",
				diplib.ErrAllocationFailed, dtype.Length(data), size)
		}
		v.blk = newBlock(data, release)
		v.origin = -start
		v.external = true
		return nil
	}
	v.computeStrides()
	v.blk = newBlock(dtype.MakeSlice(v.dt, n), nil)
	v.origin = 0
	v.external = false
	return nil
}

func tensorStrideOrDefault(ts int) int {
	if ts == 0 {
		return 1
	}
	return ts
}

// ReForge gives the view the requested shape, tensor element count and
// type, reusing the current data segment when it is already compatible
// (same type, same total sample count, natural layout). Fails with
// ErrProtected when the view is protected and reuse is not possible.
func (v *View) ReForge(sizes []int, tensorElements int, dt dtype.Type) error {
	if err := validSizes(sizes); err != nil {
		return err
	}
	if tensorElements < 1 {
		return fmt.Errorf("%w: %d tensor elements", diplib.ErrTensorShapeMismatch, tensorElements)
	}
	if v.IsForged() && v.dt == dt && v.HasNormalStrides() {
		n := tensorElements
		for _, s := range sizes {
			n *= s
		}
		if n == v.NumberOfSamples() {
			v.sizes = append([]int(nil), sizes...)
			v.tensor = tensorDescriptor(tensorElements)
			v.computeStrides()
			v.origin = 0
			return nil
		}
	}
	if v.protected {
		return fmt.Errorf("%w: cannot reforge", diplib.ErrProtected)
	}
	if err := v.Strip(); err != nil {
		return err
	}
	v.dt = dt
	v.sizes = append([]int(nil), sizes...)
	v.tensor = tensorDescriptor(tensorElements)
	return v.Forge()
}

// Strip drops the reference to the data segment, leaving the view raw.
// The segment itself is released when the last referencing view strips.
// Fails with ErrProtected while the view is protected.
func (v *View) Strip() error {
	if !v.IsForged() {
		return nil
	}
	if v.protected {
		return fmt.Errorf("%w: cannot strip", diplib.ErrProtected)
	}
	v.blk.drop()
	v.blk = nil
	v.origin = 0
	v.external = false
	return nil
}

// Share returns a new view referencing the same data segment with
// identical geometry. This is the assignment-by-reference of the core:
// derived views modify their own copy of the metadata only.
func (v *View) Share() *View {
	out := &View{
		dt:       v.dt,
		sizes:    append([]int(nil), v.sizes...),
		strides:  append([]int(nil), v.strides...),
		tensor:   v.tensor,
		tstride:  v.tstride,
		blk:      v.blk.retain(),
		origin:   v.origin,
		external: v.external,
		alloc:    v.alloc,
	}
	return out
}

// --- Layout queries ---

// HasNormalStrides reports whether the view uses the natural row-major
// layout with interleaved tensor elements.
func (v *View) HasNormalStrides() bool {
	if !v.IsForged() {
		return false
	}
	if v.origin != 0 || v.tstride != 1 {
		return false
	}
	total := v.TensorElements()
	for i := range v.sizes {
		if v.strides[i] != total {
			return false
		}
		total *= v.sizes[i]
	}
	return true
}

// SimpleStride returns the single stride with which all samples of the
// view can be visited contiguously, and whether such a stride exists.
// A raw view has none.
func (v *View) SimpleStride() (int, bool) {
	if !v.IsForged() {
		return 0, false
	}
	stride, _, _, ok := simpleStride(v.allStrides(), v.allSizes())
	return stride, ok
}

// HasSimpleStride reports whether the view's samples occupy a dense
// block walkable with a single stride.
func (v *View) HasSimpleStride() bool {
	_, ok := v.SimpleStride()
	return ok
}

// IsSingletonExpanded reports whether any dimension was expanded from
// size 1 by setting its stride to zero. Writing through such a view
// would corrupt other logical positions, so mutating operations reject
// expanded views.
func (v *View) IsSingletonExpanded() bool {
	for i, s := range v.strides {
		if s == 0 && v.sizes[i] > 1 {
			return true
		}
	}
	if v.tstride == 0 && v.TensorElements() > 1 {
		return true
	}
	return false
}

// allSizes returns the spatial sizes with the tensor dimension appended
// when more than one tensor element is stored.
func (v *View) allSizes() []int {
	out := append([]int(nil), v.sizes...)
	if v.TensorElements() > 1 {
		out = append(out, v.TensorElements())
	}
	return out
}

// allStrides returns the spatial strides with the tensor stride appended
// when more than one tensor element is stored.
func (v *View) allStrides() []int {
	out := append([]int(nil), v.strides...)
	if v.TensorElements() > 1 {
		out = append(out, v.tstride)
	}
	return out
}

// dataBlockSizeAndStart returns the number of samples spanned by the
// given geometry and the (negative or zero) offset of the lowest
// addressed sample relative to the origin.
func dataBlockSizeAndStart(strides, sizes []int, tstride, tensorElements int) (size, start int) {
	s := append([]int(nil), strides...)
	d := append([]int(nil), sizes...)
	if tensorElements > 1 {
		s = append(s, tstride)
		d = append(d, tensorElements)
	}
	min, max := 0, 0
	for i := range d {
		p := (d[i] - 1) * s[i]
		if p < 0 {
			min += p
		} else {
			max += p
		}
	}
	return max - min + 1, min
}

// simpleStride computes the single stride, occupied size and start
// offset for a geometry, reporting whether the samples form a dense
// block.
func simpleStride(strides, sizes []int) (stride, size, start int, ok bool) {
	if len(strides) == 0 {
		return 1, 1, 0, true
	}
	stride = 0
	n := 1
	for i := range strides {
		if sizes[i] > 1 {
			a := strides[i]
			if a < 0 {
				a = -a
			}
			if stride == 0 || a < stride {
				stride = a
			}
		}
		n *= sizes[i]
	}
	if stride == 0 {
		stride = 1 // all dimensions singleton
	}
	size, start = dataBlockSizeAndStartPlain(strides, sizes)
	ok = size == (n-1)*stride+1
	return stride, size, start, ok
}

func dataBlockSizeAndStartPlain(strides, sizes []int) (size, start int) {
	min, max := 0, 0
	for i := range sizes {
		p := (sizes[i] - 1) * strides[i]
		if p < 0 {
			min += p
		} else {
			max += p
		}
	}
	return max - min + 1, min
}
