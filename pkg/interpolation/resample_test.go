package interpolation

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
)

func TestResampleIdentity(t *testing.T) {
	in, err := array.FromSlice([]float64{1, 4, 2, 8, 5, 7}, []int{3, 2}, nil)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	out := &array.View{}
	if err := Resample(in, out, []float64{1}, Options{Workers: 1}); err != nil {
		t.Fatalf("Resample: %v", err)
	}
	got := out.Data().([]float64)
	want := in.Data().([]float64)
	for i := range want {
		if !scalar.EqualWithinAbs(got[i], want[i], 1e-12) {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResampleDouble(t *testing.T) {
	in, err := array.FromSlice([]float64{0, 1, 2, 3}, []int{4}, nil)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	out := &array.View{}
	if err := Resample(in, out, []float64{2}, Options{Workers: 1}); err != nil {
		t.Fatalf("Resample: %v", err)
	}
	// Output pixel centers fall a quarter pixel off the input grid;
	// the ends repeat the edge value through the mirror boundary.
	want := []float64{0, 0.25, 0.75, 1.25, 1.75, 2.25, 2.75, 3}
	got := out.Data().([]float64)
	if len(got) != len(want) {
		t.Fatalf("output length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !scalar.EqualWithinAbs(got[i], want[i], 1e-12) {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResampleShrinkSizes(t *testing.T) {
	in, err := array.New([]int{10, 6}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := in.Data().([]float64)
	for i := range data {
		data[i] = float64(i)
	}
	out := &array.View{}
	if err := Resample(in, out, []float64{0.5, 0.5}, Options{Workers: 2}); err != nil {
		t.Fatalf("Resample: %v", err)
	}
	sizes := out.Sizes()
	if sizes[0] != 5 || sizes[1] != 3 {
		t.Fatalf("output sizes %v, want [5 3]", sizes)
	}
}

func TestResampleConstant(t *testing.T) {
	in, err := array.New([]int{5, 4}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := in.Data().([]float64)
	for i := range data {
		data[i] = 3.75
	}
	out := &array.View{}
	if err := Resample(in, out, []float64{1.7, 0.6}, Options{Workers: 2}); err != nil {
		t.Fatalf("Resample: %v", err)
	}
	for i, v := range out.Data().([]float64) {
		if !scalar.EqualWithinAbs(v, 3.75, 1e-12) {
			t.Errorf("sample %d = %v, want 3.75", i, v)
		}
	}
}

func TestResampleTensor(t *testing.T) {
	in, err := array.New([]int{3}, 2, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	copy(in.Data().([]float64), []float64{1, 10, 1, 10, 1, 10})
	out := &array.View{}
	if err := Resample(in, out, []float64{2}, Options{Workers: 1}); err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if out.TensorElements() != 2 {
		t.Fatalf("output has %d tensor elements, want 2", out.TensorElements())
	}
	got := out.Data().([]float64)
	for i := 0; i < len(got); i += 2 {
		if !scalar.EqualWithinAbs(got[i], 1, 1e-12) || !scalar.EqualWithinAbs(got[i+1], 10, 1e-12) {
			t.Errorf("pixel %d = {%v, %v}, want {1, 10}", i/2, got[i], got[i+1])
		}
	}
}

func TestResampleValidation(t *testing.T) {
	raw := &array.View{}
	out := &array.View{}
	if err := Resample(raw, out, []float64{1}, Options{}); !errors.Is(err, diplib.ErrNotForged) {
		t.Errorf("raw input error = %v, want ErrNotForged", err)
	}
	in, err := array.New([]int{4}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := Resample(in, out, []float64{1, 1}, Options{}); !errors.Is(err, diplib.ErrDimensionalityMismatch) {
		t.Errorf("zoom count error = %v, want ErrDimensionalityMismatch", err)
	}
	if err := Resample(in, out, []float64{-2}, Options{}); !errors.Is(err, diplib.ErrInvalidShape) {
		t.Errorf("negative zoom error = %v, want ErrInvalidShape", err)
	}
}

func TestResampleInPlace(t *testing.T) {
	v, err := array.FromSlice([]float64{0, 1, 2, 3}, []int{4}, nil)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if err := Resample(v, v, []float64{2}, Options{Workers: 1}); err != nil {
		t.Fatalf("Resample: %v", err)
	}
	want := []float64{0, 0.25, 0.75, 1.25, 1.75, 2.25, 2.75, 3}
	got := v.Data().([]float64)
	if len(got) != len(want) {
		t.Fatalf("output length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !scalar.EqualWithinAbs(got[i], want[i], 1e-12) {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}
