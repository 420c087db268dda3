// Package spectral computes discrete Fourier transforms of n-dimensional
// images. The transform runs through the separable engine, one complex
// FFT pass per dimension, so it inherits the engine's worker model and
// works on any strided view.
package spectral

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
	"github.com/Abhijit-2592/diplib/pkg/framework"
)

// Options controls DFT dispatch.
type Options struct {
	// Workers is the number of worker goroutines, default NumCPU.
	Workers int

	// Process selects the dimensions to transform, all when nil.
	Process []bool
}

// dftFilter transforms one complex line per call. Each worker keeps its
// own FFT plan, rebuilt when the pass length changes.
type dftFilter struct {
	inverse bool
	plans   []*fourier.CmplxFFT
}

func (f *dftFilter) AcceptedTypes() dtype.Category { return dtype.Only(dtype.Complex128) }

func (f *dftFilter) SetNumberOfThreads(n int) error {
	f.plans = make([]*fourier.CmplxFFT, n)
	return nil
}

func (f *dftFilter) FilterLine(p *framework.SeparableLineParams) error {
	n := p.In.Length
	plan := f.plans[p.Thread]
	if plan == nil || plan.Len() != n {
		plan = fourier.NewCmplxFFT(n)
		f.plans[p.Thread] = plan
	}
	in := p.In.Data.([]complex128)[p.In.Offset : p.In.Offset+n]
	out := p.Out.Data.([]complex128)[p.Out.Offset : p.Out.Offset+n]
	if f.inverse {
		plan.Sequence(out, in)
		scale := complex(1/float64(n), 0)
		for i := range out {
			out[i] *= scale
		}
		return nil
	}
	plan.Coefficients(out, in)
	return nil
}

// DFT computes the forward discrete Fourier transform of the image. Any
// sample type is accepted; the result is complex128. Coefficient zero
// holds the sum over the line, matching the unnormalized forward
// convention.
func DFT(in, out *array.View, opts Options) error {
	return transform(in, out, false, opts)
}

// InverseDFT computes the inverse transform, normalized by the line
// length per transformed dimension, so InverseDFT(DFT(x)) returns x up
// to rounding.
func InverseDFT(in, out *array.View, opts Options) error {
	return transform(in, out, true, opts)
}

func transform(in, out *array.View, inverse bool, opts Options) error {
	if !in.IsForged() {
		return diplib.ErrNotForged
	}
	if in.TensorElements() != 1 {
		return diplib.ErrTensorShapeMismatch
	}
	return framework.Separable(in, out, dtype.Complex128, dtype.Complex128,
		opts.Process, nil, nil, &dftFilter{inverse: inverse},
		framework.SeparableOptions{Workers: opts.Workers})
}
