package spectral

import (
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
)

func TestDFTConstant(t *testing.T) {
	in, err := array.New([]int{8}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := in.Data().([]float64)
	for i := range data {
		data[i] = 2.5
	}
	out := &array.View{}
	if err := DFT(in, out, Options{Workers: 1}); err != nil {
		t.Fatalf("DFT: %v", err)
	}
	if out.DataType() != dtype.Complex128 {
		t.Fatalf("output type %v, want Complex128", out.DataType())
	}
	got := out.Data().([]complex128)
	if !scalar.EqualWithinAbs(real(got[0]), 20, 1e-10) || !scalar.EqualWithinAbs(imag(got[0]), 0, 1e-10) {
		t.Errorf("DC coefficient %v, want 20", got[0])
	}
	for i := 1; i < len(got); i++ {
		if cmplx.Abs(got[i]) > 1e-10 {
			t.Errorf("coefficient %d = %v, want 0", i, got[i])
		}
	}
}

func TestDFTSingleFrequency(t *testing.T) {
	const n = 16
	in, err := array.New([]int{n}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := in.Data().([]float64)
	for i := range data {
		data[i] = math.Cos(2 * math.Pi * 3 * float64(i) / n)
	}
	out := &array.View{}
	if err := DFT(in, out, Options{Workers: 1}); err != nil {
		t.Fatalf("DFT: %v", err)
	}
	got := out.Data().([]complex128)
	for i := range got {
		want := 0.0
		if i == 3 || i == n-3 {
			want = n / 2
		}
		if !scalar.EqualWithinAbs(cmplx.Abs(got[i]), want, 1e-9) {
			t.Errorf("coefficient %d magnitude %v, want %v", i, cmplx.Abs(got[i]), want)
		}
	}
}

func TestDFTRoundTrip(t *testing.T) {
	in, err := array.New([]int{8, 6}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := in.Data().([]float64)
	for i := range data {
		data[i] = float64(i%7) - 0.5*float64(i%3)
	}
	for _, workers := range []int{1, 4} {
		freq := &array.View{}
		if err := DFT(in, freq, Options{Workers: workers}); err != nil {
			t.Fatalf("DFT with %d workers: %v", workers, err)
		}
		back := &array.View{}
		if err := InverseDFT(freq, back, Options{Workers: workers}); err != nil {
			t.Fatalf("InverseDFT with %d workers: %v", workers, err)
		}
		got := back.Data().([]complex128)
		for i := range data {
			if !scalar.EqualWithinAbs(real(got[i]), data[i], 1e-9) {
				t.Errorf("workers %d: sample %d = %v, want %v", workers, i, real(got[i]), data[i])
			}
			if !scalar.EqualWithinAbs(imag(got[i]), 0, 1e-9) {
				t.Errorf("workers %d: sample %d has imaginary part %v", workers, i, imag(got[i]))
			}
		}
	}
}

func TestDFTProcessSubset(t *testing.T) {
	// Transforming only dimension 0 must equal a row-by-row 1-D
	// transform.
	in, err := array.New([]int{4, 3}, 1, dtype.Float64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := in.Data().([]float64)
	for i := range data {
		data[i] = float64(i + 1)
	}
	out := &array.View{}
	if err := DFT(in, out, Options{Workers: 1, Process: []bool{true, false}}); err != nil {
		t.Fatalf("DFT: %v", err)
	}
	got := out.Data().([]complex128)
	for y := 0; y < 3; y++ {
		rows := data[4*y : 4*y+4]
		sum := 0.0
		for _, v := range rows {
			sum += v
		}
		if !scalar.EqualWithinAbs(real(got[4*y]), sum, 1e-10) {
			t.Errorf("row %d DC %v, want %v", y, real(got[4*y]), sum)
		}
	}
}
