package framework

import (
	"fmt"
	"sort"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/boundary"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
	"github.com/Abhijit-2592/diplib/pkg/tensor"
)

// SeparableLineParams is handed to a separable filter once per line per
// pass. The input buffer carries Border expanded pixels on both sides
// of the line, already filled according to the boundary condition; the
// interior starts at In.Offset.
type SeparableLineParams struct {
	In  Buffer
	Out Buffer

	// Dimension is the dimension this pass runs along.
	Dimension int

	// Pass counts dispatched passes, 0 through NPasses-1.
	Pass    int
	NPasses int

	// Position holds the coordinates of the first interior pixel.
	Position []int

	// Thread identifies the calling worker.
	Thread int
}

// SeparableFilter processes 1-D lines for the separable engine.
// FilterLine must be safe for concurrent calls on distinct thread
// indices.
type SeparableFilter interface {
	LineFilter
	FilterLine(p *SeparableLineParams) error
}

// SeparableOptions modifies separable dispatch.
type SeparableOptions struct {
	// Workers is the number of worker goroutines, default NumCPU.
	Workers int

	// UseInputImage makes every pass read the original input instead
	// of the previous pass's output.
	UseInputImage bool

	// AsScalarImage processes each tensor element as an independent
	// image, so filters see scalar buffers.
	AsScalarImage bool

	// ExpandTensorInBuffer materializes packed tensors as a full
	// column-major matrix in the buffers; the output image gets the
	// full tensor.
	ExpandTensorInBuffer bool

	// DontResizeOutput keeps the forged output's sizes, letting passes
	// change the line length from the input size to the output size.
	DontResizeOutput bool

	// OutBorder is the number of writable margin samples the filter
	// needs around each output line.
	OutBorder int
}

// Separable applies a 1-D filter along each processed dimension in
// turn. Every pass reads the previous pass's output, with lines staged
// through buffers of type bufT: the engine copies each line in, expands
// the boundary, calls the filter, and copies the result out. Dimensions
// of size one are skipped. When sizes change (resampling), shrinking
// passes run first to keep intermediate images small.
func Separable(
	in, out *array.View,
	bufT, outImgT dtype.Type,
	process []bool,
	border []int,
	bc []boundary.Condition,
	filter SeparableFilter,
	opts SeparableOptions,
) error {
	if !in.IsForged() {
		return diplib.ErrNotForged
	}
	// Separate the input header from the output. An in-place call keeps
	// reading the original block even after the output is reforged.
	in = in.Share()
	defer in.Strip()
	nd := in.Dimensionality()
	if process == nil {
		process = make([]bool, nd)
		for d := range process {
			process[d] = true
		}
	}
	if len(process) != nd {
		return fmt.Errorf("%w: %d process flags for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(process), nd)
	}
	border, err := boundary.IntArrayUseParameter(border, nd)
	if err != nil {
		return err
	}
	for d, b := range border {
		if b < 0 {
			return fmt.Errorf("%w: negative border %d in dimension %d", diplib.ErrInvalidShape, b, d)
		}
	}
	bc, err = boundary.ArrayUseParameter(bc, nd)
	if err != nil {
		return err
	}
	if err := checkFilterTypes(filter, bufT); err != nil {
		return err
	}

	inSizes := in.Sizes()
	outSizes := append([]int(nil), inSizes...)
	if opts.DontResizeOutput {
		if !out.IsForged() {
			return diplib.ErrNotForged
		}
		if out.Dimensionality() != nd {
			return fmt.Errorf("%w: output has %d dimensions, input %d",
				diplib.ErrDimensionalityMismatch, out.Dimensionality(), nd)
		}
		outSizes = out.Sizes()
		for d := range outSizes {
			if !process[d] && outSizes[d] != inSizes[d] {
				return fmt.Errorf("%w: unprocessed dimension %d is %d vs %d",
					diplib.ErrSizesDontMatch, d, outSizes[d], inSizes[d])
			}
		}
	}

	// Tensor handling: scalar per-element processing, or packed tensor
	// expansion through the buffer look-up table.
	srcTensor := in.Tensor()
	bufTelem := srcTensor.Elements()
	var lut []int
	outTensor := srcTensor
	if opts.ExpandTensorInBuffer && !srcTensor.HasNormalOrder() {
		lut = srcTensor.LookUpTable()
		bufTelem = len(lut)
		full, err := tensor.NewShaped(tensor.ColMajorMatrix, srcTensor.Rows(), srcTensor.Columns())
		if err != nil {
			return err
		}
		outTensor = full
	}

	// Select the passes. Dimensions of size one carry no information
	// along their lines.
	var dims []int
	for d := 0; d < nd; d++ {
		if process[d] && (inSizes[d] > 1 || outSizes[d] != inSizes[d]) {
			dims = append(dims, d)
		}
	}
	sort.SliceStable(dims, func(i, j int) bool {
		ri := float64(outSizes[dims[i]]) / float64(inSizes[dims[i]])
		rj := float64(outSizes[dims[j]]) / float64(inSizes[dims[j]])
		return ri < rj
	})

	// An output overlapping the input must not reuse its block: the
	// passes would read lines the previous lines already overwrote.
	if out.IsForged() && out.SharesData(in) {
		if err := out.Strip(); err != nil {
			return err
		}
	}
	if err := out.ReForge(outSizes, outTensor.Elements(), outImgT); err != nil {
		return err
	}
	if err := out.ReshapeTensor(outTensor); err != nil {
		return err
	}
	if len(dims) == 0 {
		if lut == nil {
			return out.CopyFrom(in)
		}
		expanded, err := in.ExpandTensor()
		if err != nil {
			return err
		}
		return out.CopyFrom(expanded)
	}

	// Scalar processing views: the tensor dimension becomes a trailing
	// spatial dimension that no pass touches.
	work := in
	outWork := out
	if opts.AsScalarImage && bufTelem > 1 && lut == nil {
		if work, err = in.TensorToSpatial(nd); err != nil {
			return err
		}
		if outWork, err = out.TensorToSpatial(nd); err != nil {
			return err
		}
		outSizes = outWork.Sizes()
		bufTelem = 1
	}

	workers := workerCount(opts.Workers)
	if err := filter.SetNumberOfThreads(workers); err != nil {
		return err
	}

	nPasses := len(dims)
	cur := work
	curLut := lut
	for pass, dim := range dims {
		inLen := cur.Sizes()[dim]
		outLen := outSizes[dim]

		// The destination of this pass: the output image on the final
		// pass, an intermediate image of the buffer type otherwise.
		var dst *array.View
		if pass == nPasses-1 {
			dst = outWork
		} else {
			dstSizes := cur.Sizes()
			dstSizes[dim] = outLen
			dst, err = array.New(dstSizes, bufTelem, bufT)
			if err != nil {
				return err
			}
		}

		if err := separablePass(cur, dst, dim, pass, nPasses, inLen, outLen,
			bufTelem, curLut, bufT, border[dim], bc[dim], filter, workers, opts); err != nil {
			return err
		}

		// Pass k+1 reads this pass's output, unless the caller pinned
		// all passes to the original input.
		if !opts.UseInputImage {
			cur = dst
			curLut = nil
		}
	}
	return nil
}

// separablePass dispatches all lines of one pass. Lines are partitioned
// in contiguous blocks over the workers; the pass boundary is a
// synchronization barrier, the next pass starts only after every line
// of this one is written.
func separablePass(
	cur, dst *array.View,
	dim, pass, nPasses, inLen, outLen, bufTelem int,
	lut []int,
	bufT dtype.Type,
	border int,
	bc boundary.Condition,
	filter SeparableFilter,
	workers int,
	opts SeparableOptions,
) error {
	indexer := newLineIndexer(dst.Sizes(), dim)
	curStrides := cur.Strides()
	dstStrides := dst.Strides()
	nd := len(curStrides)

	return runLines(indexer.nLines, workers, func(thread, begin, end int) error {
		// Line buffers with border margins, owned by this worker. The
		// filter reads and writes the buffer type only.
		inBuf := dtype.MakeSlice(bufT, (inLen+2*border)*bufTelem)
		outBuf := dtype.MakeSlice(bufT, (outLen+2*opts.OutBorder)*bufTelem)
		inOffset := border * bufTelem
		outOffset := opts.OutBorder * bufTelem

		params := SeparableLineParams{
			In: Buffer{Data: inBuf, Offset: inOffset, Stride: bufTelem, TensorStride: 1,
				Length: inLen, TensorLength: bufTelem, Border: border},
			Out: Buffer{Data: outBuf, Offset: outOffset, Stride: bufTelem, TensorStride: 1,
				Length: outLen, TensorLength: bufTelem, Border: opts.OutBorder},
			Dimension: dim,
			Pass:      pass,
			NPasses:   nPasses,
			Position:  make([]int, nd),
			Thread:    thread,
		}
		coords := make([]int, nd)

		for line := begin; line < end; line++ {
			indexer.coordinates(line, coords)
			copy(params.Position, coords)

			srcOff, err := cur.Offset(coords)
			if err != nil {
				return err
			}
			dtype.CopyBuffer(cur.Data(), srcOff, curStrides[dim], cur.TensorStride(),
				inBuf, inOffset, bufTelem, 1, inLen, bufTelem, lut)
			if err := boundary.ExpandBuffer(inBuf, inOffset, bufTelem, 1,
				inLen, bufTelem, border, bc); err != nil {
				return err
			}

			if err := filter.FilterLine(&params); err != nil {
				return err
			}

			dstOff, err := dst.Offset(coords)
			if err != nil {
				return err
			}
			dtype.CopyBuffer(outBuf, outOffset, bufTelem, 1,
				dst.Data(), dstOff, dstStrides[dim], dst.TensorStride(), outLen, bufTelem, nil)
		}
		return nil
	})
}
