// Package smoothing implements linear smoothing filters on top of the
// processing engines: a separable uniform filter, a separable Gaussian
// filter, and a local mean over an arbitrary pixel table neighborhood.
// All filters compute in float64 and write the requested output type
// with saturation.
package smoothing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/boundary"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
	"github.com/Abhijit-2592/diplib/pkg/framework"
	"github.com/Abhijit-2592/diplib/pkg/pixeltable"
)

// Options controls dispatch for all smoothing filters.
type Options struct {
	// Workers is the number of worker goroutines, default NumCPU.
	Workers int

	// OutputType is the sample type of the result. The zero value, and
	// Bin, which cannot hold a mean, select Float64.
	OutputType dtype.Type
}

func (o Options) outputType() dtype.Type {
	if o.OutputType == dtype.Bin {
		return dtype.Float64
	}
	return o.OutputType
}

type nopThreads struct{}

func (nopThreads) SetNumberOfThreads(int) error { return nil }

// convolveFilter applies a per-dimension symmetric kernel along each
// line. Kernels are read-only during dispatch.
type convolveFilter struct {
	nopThreads
	kernels [][]float64
}

func (f *convolveFilter) AcceptedTypes() dtype.Category { return dtype.Only(dtype.Float64) }

func (f *convolveFilter) FilterLine(p *framework.SeparableLineParams) error {
	k := f.kernels[p.Dimension]
	left := len(k) / 2
	in := p.In.Data.([]float64)
	out := p.Out.Data.([]float64)
	for i := 0; i < p.Out.Length; i++ {
		base := p.In.Offset + i*p.In.Stride
		s := 0.0
		for j, w := range k {
			s += w * in[base+(j-left)*p.In.Stride]
		}
		out[p.Out.Offset+i*p.Out.Stride] = s
	}
	return nil
}

// Uniform smooths with a box filter of the given width per dimension.
// A single width applies to all dimensions; a width under 2 leaves a
// dimension untouched.
func Uniform(in, out *array.View, size []float64, bc []boundary.Condition, opts Options) error {
	if !in.IsForged() {
		return diplib.ErrNotForged
	}
	nd := in.Dimensionality()
	size, err := floatArrayUseParameter(size, nd)
	if err != nil {
		return err
	}
	kernels := make([][]float64, nd)
	process := make([]bool, nd)
	border := make([]int, nd)
	for d := range kernels {
		w := int(math.Round(size[d]))
		if w < 2 {
			continue
		}
		k := make([]float64, w)
		for i := range k {
			k[i] = 1 / float64(w)
		}
		kernels[d] = k
		process[d] = true
		border[d] = w / 2
	}
	return framework.Separable(in, out, dtype.Float64, opts.outputType(),
		process, border, bc, &convolveFilter{kernels: kernels},
		framework.SeparableOptions{Workers: opts.Workers, AsScalarImage: true})
}

// Gauss smooths with a Gaussian of the given sigma per dimension. The
// kernel is truncated at truncation sigmas (3 when zero or less) and
// normalized to unit sum; sigma zero leaves a dimension untouched.
func Gauss(in, out *array.View, sigma []float64, truncation float64, bc []boundary.Condition, opts Options) error {
	if !in.IsForged() {
		return diplib.ErrNotForged
	}
	nd := in.Dimensionality()
	sigma, err := floatArrayUseParameter(sigma, nd)
	if err != nil {
		return err
	}
	if truncation <= 0 {
		truncation = 3
	}
	kernels := make([][]float64, nd)
	process := make([]bool, nd)
	border := make([]int, nd)
	for d := range kernels {
		if sigma[d] <= 0 {
			continue
		}
		half := int(math.Ceil(truncation * sigma[d]))
		if half < 1 {
			half = 1
		}
		k := make([]float64, 2*half+1)
		for i := range k {
			x := float64(i - half)
			k[i] = math.Exp(-x * x / (2 * sigma[d] * sigma[d]))
		}
		floats.Scale(1/floats.Sum(k), k)
		kernels[d] = k
		process[d] = true
		border[d] = half
	}
	return framework.Separable(in, out, dtype.Float64, opts.outputType(),
		process, border, bc, &convolveFilter{kernels: kernels},
		framework.SeparableOptions{Workers: opts.Workers, AsScalarImage: true})
}

// localMeanFilter averages the neighborhood around every pixel, with
// the table's weights when it carries any.
type localMeanFilter struct{ nopThreads }

func (localMeanFilter) AcceptedTypes() dtype.Category { return dtype.Only(dtype.Float64) }

func (localMeanFilter) FilterLine(p *framework.FullLineParams) error {
	in := p.In.Data.([]float64)
	out := p.Out.Data.([]float64)
	offs := p.Offsets.Flat()
	weights := p.Offsets.Weights()
	var norm float64
	if weights == nil {
		norm = float64(len(offs))
	} else {
		norm = floats.Sum(weights)
	}
	if norm == 0 {
		return fmt.Errorf("%w: empty neighborhood", diplib.ErrInvalidShape)
	}
	for i := 0; i < p.Out.Length; i++ {
		base := p.In.Offset + i*p.In.Stride
		s := 0.0
		if weights == nil {
			for _, off := range offs {
				s += in[base+off]
			}
		} else {
			for j, off := range offs {
				s += weights[j] * in[base+off]
			}
		}
		out[p.Out.Offset+i*p.Out.Stride] = s / norm
	}
	return nil
}

// LocalMean averages over the neighborhood described by the pixel
// table, weighted when the table carries weights.
func LocalMean(in, out *array.View, pt *pixeltable.Table, bc []boundary.Condition, opts Options) error {
	return framework.Full(in, out, dtype.Float64, opts.outputType(),
		bc, pt, localMeanFilter{},
		framework.FullOptions{Workers: opts.Workers, AsScalarImage: true})
}

// floatArrayUseParameter resolves a per-dimension parameter: a single
// value replicates across all dimensions, otherwise the count must
// match.
func floatArrayUseParameter(values []float64, nd int) ([]float64, error) {
	switch len(values) {
	case nd:
		return values, nil
	case 1:
		out := make([]float64, nd)
		for i := range out {
			out[i] = values[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d values for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(values), nd)
	}
}
