// Package interpolation resizes images by linear interpolation. The
// work runs through the separable engine with a fixed output size, one
// resampling pass per zoomed dimension.
package interpolation

import (
	"fmt"
	"math"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/boundary"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
	"github.com/Abhijit-2592/diplib/pkg/framework"
)

// Options controls resampling dispatch.
type Options struct {
	// Workers is the number of worker goroutines, default NumCPU.
	Workers int

	// OutputType is the sample type of the result. The zero value, and
	// Bin, select Float64.
	OutputType dtype.Type

	// Boundary sets the boundary condition used for samples just
	// outside the image, the mirror default when empty.
	Boundary []boundary.Condition
}

// linearFilter maps every output sample to a position in the input line
// and blends the two surrounding input samples. Pixel centers of input
// and output lines are aligned at the line centers, so zooming by an
// integer factor keeps the image centered.
type linearFilter struct{}

func (linearFilter) SetNumberOfThreads(int) error { return nil }

func (linearFilter) FilterLine(p *framework.SeparableLineParams) error {
	in := p.In.Data.([]float64)
	out := p.Out.Data.([]float64)
	zoom := float64(p.Out.Length) / float64(p.In.Length)
	for i := 0; i < p.Out.Length; i++ {
		x := (float64(i)+0.5)/zoom - 0.5
		left := int(math.Floor(x))
		frac := x - float64(left)
		base := p.In.Offset + left*p.In.Stride
		v := (1-frac)*in[base] + frac*in[base+p.In.Stride]
		out[p.Out.Offset+i*p.Out.Stride] = v
	}
	return nil
}

// Resample scales the image by the given zoom factor per dimension. A
// single factor applies to all dimensions; factor 1 leaves a dimension
// untouched. The output size per dimension is round(size*zoom), at
// least 1.
func Resample(in, out *array.View, zoom []float64, opts Options) error {
	if !in.IsForged() {
		return diplib.ErrNotForged
	}
	// Keep reading the original block when resampling in place.
	in = in.Share()
	defer in.Strip()
	nd := in.Dimensionality()
	switch len(zoom) {
	case nd:
	case 1:
		z := zoom[0]
		zoom = make([]float64, nd)
		for i := range zoom {
			zoom[i] = z
		}
	default:
		return fmt.Errorf("%w: %d zoom factors for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(zoom), nd)
	}
	inSizes := in.Sizes()
	outSizes := make([]int, nd)
	for d := range outSizes {
		if zoom[d] <= 0 {
			return fmt.Errorf("%w: zoom factor %v in dimension %d",
				diplib.ErrInvalidShape, zoom[d], d)
		}
		outSizes[d] = int(math.Round(float64(inSizes[d]) * zoom[d]))
		if outSizes[d] < 1 {
			outSizes[d] = 1
		}
	}

	outT := opts.OutputType
	if outT == dtype.Bin {
		outT = dtype.Float64
	}
	if out.IsForged() && out.SharesData(in) {
		if err := out.Strip(); err != nil {
			return err
		}
	}
	if err := out.ReForge(outSizes, in.TensorElements(), outT); err != nil {
		return err
	}
	return framework.Separable(in, out, dtype.Float64, outT,
		nil, []int{1}, opts.Boundary, linearFilter{},
		framework.SeparableOptions{
			Workers:          opts.Workers,
			AsScalarImage:    true,
			DontResizeOutput: true,
		})
}
