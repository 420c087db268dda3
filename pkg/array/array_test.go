package array

import (
	"errors"
	"testing"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
	"github.com/Abhijit-2592/diplib/pkg/tensor"
)

// TestForge verifies allocation with natural strides
func TestForge(t *testing.T) {
	v, err := New([]int{4, 3, 2}, 1, dtype.Float32)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !v.IsForged() {
		t.Fatal("view should be forged")
	}
	if v.NumberOfPixels() != 24 || v.NumberOfSamples() != 24 {
		t.Errorf("pixels=%d samples=%d, want 24, 24", v.NumberOfPixels(), v.NumberOfSamples())
	}
	wantStrides := []int{1, 4, 12}
	for i, s := range v.Strides() {
		if s != wantStrides[i] {
			t.Errorf("stride[%d]=%d, want %d", i, s, wantStrides[i])
		}
	}
	if !v.HasNormalStrides() {
		t.Error("freshly forged view should have normal strides")
	}
	if !v.HasSimpleStride() {
		t.Error("freshly forged view should have a simple stride")
	}
}

// TestForgeRejectsBadShapes verifies InvalidShape failures
func TestForgeRejectsBadShapes(t *testing.T) {
	if _, err := New([]int{4, 0, 2}, 1, dtype.Uint8); !errors.Is(err, diplib.ErrInvalidShape) {
		t.Errorf("zero dimension returned %v, want ErrInvalidShape", err)
	}
	if _, err := New([]int{1 << 30, 1 << 30}, 1, dtype.Uint8); !errors.Is(err, diplib.ErrInvalidShape) {
		t.Errorf("oversized shape returned %v, want ErrInvalidShape", err)
	}
	if _, err := New([]int{4}, 0, dtype.Uint8); !errors.Is(err, diplib.ErrTensorShapeMismatch) {
		t.Errorf("zero tensor elements returned %v, want ErrTensorShapeMismatch", err)
	}
}

// TestTensorForge verifies interleaved tensor layout
func TestTensorForge(t *testing.T) {
	v, err := New([]int{5, 4}, 3, dtype.Uint16)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if v.TensorElements() != 3 || v.TensorStride() != 1 {
		t.Errorf("tensor elements=%d stride=%d, want 3, 1", v.TensorElements(), v.TensorStride())
	}
	wantStrides := []int{3, 15}
	for i, s := range v.Strides() {
		if s != wantStrides[i] {
			t.Errorf("stride[%d]=%d, want %d", i, s, wantStrides[i])
		}
	}
	if v.NumberOfSamples() != 60 {
		t.Errorf("samples=%d, want 60", v.NumberOfSamples())
	}
}

// TestReForge verifies block reuse and protection
func TestReForge(t *testing.T) {
	v, _ := New([]int{6, 4}, 1, dtype.Float64)
	data := v.Data()

	// Same total sample count and type: the block is reused.
	if err := v.ReForge([]int{8, 3}, 1, dtype.Float64); err != nil {
		t.Fatalf("ReForge failed: %v", err)
	}
	if &(v.Data().([]float64))[0] != &(data.([]float64))[0] {
		t.Error("compatible ReForge should reuse the data segment")
	}

	// A protected view cannot be reallocated.
	v.Protect()
	if err := v.ReForge([]int{10, 10}, 1, dtype.Float64); !errors.Is(err, diplib.ErrProtected) {
		t.Errorf("ReForge of protected view returned %v, want ErrProtected", err)
	}
	// But a compatible reuse is still fine.
	if err := v.ReForge([]int{24}, 1, dtype.Float64); err != nil {
		t.Errorf("compatible ReForge of protected view failed: %v", err)
	}
	v.Unprotect()
	if err := v.ReForge([]int{10, 10}, 1, dtype.Uint8); err != nil {
		t.Errorf("ReForge after Unprotect failed: %v", err)
	}
	if v.DataType() != dtype.Uint8 {
		t.Errorf("data type after ReForge is %v, want uint8", v.DataType())
	}
}

// TestStripProtect verifies strip semantics
func TestStripProtect(t *testing.T) {
	v, _ := New([]int{3, 3}, 1, dtype.Int32)
	v.Protect()
	if err := v.Strip(); !errors.Is(err, diplib.ErrProtected) {
		t.Errorf("Strip of protected view returned %v, want ErrProtected", err)
	}
	v.Unprotect()
	if err := v.Strip(); err != nil {
		t.Fatalf("Strip failed: %v", err)
	}
	if v.IsForged() {
		t.Error("view should be raw after Strip")
	}
	if err := v.Strip(); err != nil {
		t.Errorf("Strip of raw view should be a no-op, got %v", err)
	}
}

// TestFromSliceRelease verifies external memory and the release callback
func TestFromSliceRelease(t *testing.T) {
	released := 0
	data := make([]float64, 12)
	v, err := FromSlice(data, []int{4, 3}, func() { released++ })
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if !v.IsExternalData() {
		t.Error("FromSlice view should report external data")
	}

	// A second view keeps the block alive past the first strip.
	w := v.Share()
	if err := v.Strip(); err != nil {
		t.Fatalf("Strip failed: %v", err)
	}
	if released != 0 {
		t.Error("release fired while a view still references the block")
	}
	if err := w.Strip(); err != nil {
		t.Fatalf("second Strip failed: %v", err)
	}
	if released != 1 {
		t.Errorf("release fired %d times, want exactly once", released)
	}
}

// TestFromSliceValidation verifies geometry checks on attach
func TestFromSliceValidation(t *testing.T) {
	if _, err := FromSlice(make([]float64, 5), []int{4, 3}, nil); !errors.Is(err, diplib.ErrSizesDontMatch) {
		t.Errorf("short slice returned %v, want ErrSizesDontMatch", err)
	}
	if _, err := FromSlice("not a buffer", []int{1}, nil); !errors.Is(err, diplib.ErrUnsupportedDataType) {
		t.Errorf("bad buffer kind returned %v, want ErrUnsupportedDataType", err)
	}
}

// stridedAllocator hands out buffers with a caller-chosen layout,
// mimicking a host environment that dictates strides.
type stridedAllocator struct {
	calls int
}

func (a *stridedAllocator) Allocate(sizes []int, tt tensor.Tensor, dt dtype.Type) (any, []int, int, func(), error) {
	a.calls++
	// Last dimension fastest, planar tensor storage.
	n := tt.Elements()
	strides := make([]int, len(sizes))
	s := 1
	for i := len(sizes) - 1; i >= 0; i-- {
		strides[i] = s
		s *= sizes[i]
	}
	tstride := s
	return dtype.MakeSlice(dt, s*n), strides, tstride, nil, nil
}

// TestExternalAllocator verifies that caller-supplied strides are honored
func TestExternalAllocator(t *testing.T) {
	alloc := &stridedAllocator{}
	v, err := Raw([]int{4, 3}, 2, dtype.Float32)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	v.SetAllocator(alloc)
	if err := v.Forge(); err != nil {
		t.Fatalf("Forge with allocator failed: %v", err)
	}
	if alloc.calls != 1 {
		t.Errorf("allocator called %d times, want 1", alloc.calls)
	}
	if got := v.Strides(); got[0] != 3 || got[1] != 1 {
		t.Errorf("strides=%v, want [3 1]", got)
	}
	if v.TensorStride() != 12 {
		t.Errorf("tensor stride=%d, want 12", v.TensorStride())
	}
	if !v.IsExternalData() {
		t.Error("allocator-backed view should report external data")
	}

	// The layout is still fully addressable.
	if err := v.SetFloat(7, 2, 1); err != nil {
		t.Fatalf("SetFloat failed: %v", err)
	}
	got, err := v.FloatAt(2, 1)
	if err != nil || got != 7 {
		t.Errorf("FloatAt=(%v, %v), want 7", got, err)
	}
}

// TestCoordinateMapping verifies coordinate/index/offset conversions
func TestCoordinateMapping(t *testing.T) {
	v, _ := New([]int{4, 3, 2}, 1, dtype.Uint8)

	coords := []int{1, 2, 1}
	off, err := v.Offset(coords)
	if err != nil {
		t.Fatalf("Offset failed: %v", err)
	}
	if off != 1+2*4+1*12 {
		t.Errorf("offset=%d, want 21", off)
	}

	idx, err := v.CoordinatesToIndex(coords)
	if err != nil {
		t.Fatalf("CoordinatesToIndex failed: %v", err)
	}
	if idx != 21 {
		t.Errorf("index=%d, want 21", idx)
	}
	back, err := v.IndexToCoordinates(idx)
	if err != nil {
		t.Fatalf("IndexToCoordinates failed: %v", err)
	}
	for i := range coords {
		if back[i] != coords[i] {
			t.Errorf("round-trip coordinates %v, want %v", back, coords)
		}
	}

	if _, err := v.Offset([]int{4, 0, 0}); !errors.Is(err, diplib.ErrIndexOutOfRange) {
		t.Errorf("out-of-range coordinate returned %v, want ErrIndexOutOfRange", err)
	}
	if _, err := v.Offset([]int{0, 0}); !errors.Is(err, diplib.ErrDimensionalityMismatch) {
		t.Errorf("wrong coordinate count returned %v, want ErrDimensionalityMismatch", err)
	}
}

// TestMirroredOffsets verifies that negative strides address correctly
func TestMirroredOffsets(t *testing.T) {
	v, _ := New([]int{5}, 1, dtype.Int16)
	for i := 0; i < 5; i++ {
		v.SetFloat(float64(i), i)
	}
	m, err := v.Mirror(0)
	if err != nil {
		t.Fatalf("Mirror failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := m.FloatAt(i)
		if err != nil {
			t.Fatalf("FloatAt(%d) failed: %v", i, err)
		}
		if got != float64(4-i) {
			t.Errorf("mirrored[%d]=%v, want %v", i, got, 4-i)
		}
	}
}

func TestOffsetToCoordinates(t *testing.T) {
	v, err := New([]int{4, 3, 2}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	coords := []int{2, 1, 1}
	off, err := v.Offset(coords)
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	back, err := v.OffsetToCoordinates(off)
	if err != nil {
		t.Fatalf("OffsetToCoordinates: %v", err)
	}
	for i := range coords {
		if back[i] != coords[i] {
			t.Fatalf("round trip gave %v, want %v", back, coords)
		}
	}

	m, err := v.Mirror(0)
	if err != nil {
		t.Fatalf("Mirror: %v", err)
	}
	if _, err := m.OffsetToCoordinates(0); !errors.Is(err, diplib.ErrInvalidShape) {
		t.Errorf("mirrored view error = %v, want ErrInvalidShape", err)
	}
}

func TestSimpleStrideRawView(t *testing.T) {
	raw := &View{}
	if stride, ok := raw.SimpleStride(); ok || stride != 0 {
		t.Errorf("raw view SimpleStride = (%d, %v), want (0, false)", stride, ok)
	}
	if raw.HasSimpleStride() {
		t.Error("raw view must not report a simple stride")
	}
}
