package smoothing

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/boundary"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
	"github.com/Abhijit-2592/diplib/pkg/pixeltable"
)

func TestUniform1D(t *testing.T) {
	in, err := array.FromSlice([]float64{1, 2, 3, 4, 5}, []int{5}, nil)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	out := &array.View{}
	err = Uniform(in, out, []float64{3}, []boundary.Condition{boundary.AddZeros}, Options{Workers: 1})
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	want := []float64{1, 2, 3, 4, 3}
	got := out.Data().([]float64)
	for i := range want {
		if !scalar.EqualWithinAbs(got[i], want[i], 1e-12) {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUniformPreservesConstant(t *testing.T) {
	in, err := array.New([]int{6, 5}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := in.Data().([]float64)
	for i := range data {
		data[i] = 7.5
	}
	out := &array.View{}
	err = Uniform(in, out, []float64{3, 5}, nil, Options{Workers: 2})
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	for i, v := range out.Data().([]float64) {
		if !scalar.EqualWithinAbs(v, 7.5, 1e-12) {
			t.Errorf("sample %d = %v, want 7.5", i, v)
		}
	}
}

func TestGaussPreservesConstant(t *testing.T) {
	in, err := array.New([]int{8, 7}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := in.Data().([]float64)
	for i := range data {
		data[i] = -3.25
	}
	out := &array.View{}
	err = Gauss(in, out, []float64{1.2}, 0, nil, Options{Workers: 2})
	if err != nil {
		t.Fatalf("Gauss: %v", err)
	}
	for i, v := range out.Data().([]float64) {
		if !scalar.EqualWithinAbs(v, -3.25, 1e-12) {
			t.Errorf("sample %d = %v, want -3.25", i, v)
		}
	}
}

func TestGaussSymmetric(t *testing.T) {
	// An impulse smoothed by a Gaussian must stay symmetric around the
	// impulse.
	in, err := array.New([]int{9}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in.Data().([]float64)[4] = 1
	out := &array.View{}
	err = Gauss(in, out, []float64{1}, 0, nil, Options{Workers: 1})
	if err != nil {
		t.Fatalf("Gauss: %v", err)
	}
	got := out.Data().([]float64)
	sum := 0.0
	for i := 0; i <= 4; i++ {
		if got[4-i] != got[4+i] {
			t.Errorf("samples %d and %d differ: %v vs %v", 4-i, 4+i, got[4-i], got[4+i])
		}
	}
	for _, v := range got {
		sum += v
	}
	if !scalar.EqualWithinAbs(sum, 1, 1e-12) {
		t.Errorf("impulse response sums to %v, want 1", sum)
	}
	if got[4] <= got[3] {
		t.Errorf("peak %v not above neighbor %v", got[4], got[3])
	}
}

func TestLocalMeanMatchesUniform(t *testing.T) {
	in, err := array.New([]int{7}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := in.Data().([]float64)
	for i := range data {
		data[i] = float64(i * i)
	}
	pt, err := pixeltable.Rectangular([]float64{3}, 0)
	if err != nil {
		t.Fatalf("Rectangular: %v", err)
	}
	mean := &array.View{}
	err = LocalMean(in, mean, pt, []boundary.Condition{boundary.SymmetricMirror}, Options{Workers: 2})
	if err != nil {
		t.Fatalf("LocalMean: %v", err)
	}
	uni := &array.View{}
	err = Uniform(in, uni, []float64{3}, []boundary.Condition{boundary.SymmetricMirror}, Options{Workers: 1})
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	meanData := mean.Data().([]float64)
	uniData := uni.Data().([]float64)
	for i := range meanData {
		if !scalar.EqualWithinAbs(meanData[i], uniData[i], 1e-12) {
			t.Errorf("sample %d: local mean %v vs uniform %v", i, meanData[i], uniData[i])
		}
	}
}

func TestUniformOutputType(t *testing.T) {
	in, err := array.New([]int{4}, 1, dtype.Uint8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	copy(in.Data().([]uint8), []uint8{10, 20, 30, 40})
	out := &array.View{}
	err = Uniform(in, out, []float64{3}, []boundary.Condition{boundary.SymmetricMirror},
		Options{OutputType: dtype.Uint8})
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	if out.DataType() != dtype.Uint8 {
		t.Fatalf("output type %v, want Uint8", out.DataType())
	}
	// Means {13.33, 20, 30, 36.67} round to nearest.
	want := []uint8{13, 20, 30, 37}
	got := out.Data().([]uint8)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestParameterValidation(t *testing.T) {
	in, err := array.New([]int{4, 4}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := &array.View{}
	if err := Uniform(in, out, []float64{3, 3, 3}, nil, Options{}); !errors.Is(err, diplib.ErrDimensionalityMismatch) {
		t.Errorf("size count error = %v, want ErrDimensionalityMismatch", err)
	}
	raw := &array.View{}
	if err := Gauss(raw, out, []float64{1}, 0, nil, Options{}); !errors.Is(err, diplib.ErrNotForged) {
		t.Errorf("raw input error = %v, want ErrNotForged", err)
	}
}
