package framework

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/boundary"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
	"github.com/Abhijit-2592/diplib/pkg/pixeltable"
)

// FullLineParams is handed to a full filter once per output line. The
// input buffer points into the border-extended copy of the input, so
// the filter can read any neighbor listed in Offsets without bounds
// checks. Offsets are in samples, valid for In.Data.
type FullLineParams struct {
	In  Buffer
	Out Buffer

	// Offsets describes the neighborhood around each input pixel,
	// translated to sample offsets in the extended image.
	Offsets *pixeltable.Offsets

	// Position holds the coordinates, in the output image, of the
	// first pixel of the line.
	Position []int

	// Thread identifies the calling worker.
	Thread int
}

// FullFilter processes output lines against an arbitrary neighborhood.
// FilterLine must be safe for concurrent calls on distinct thread
// indices.
type FullFilter interface {
	LineFilter
	FilterLine(p *FullLineParams) error
}

// FullOptions modifies full dispatch.
type FullOptions struct {
	// Workers is the number of worker goroutines, default NumCPU.
	Workers int

	// AsScalarImage processes each tensor element as an independent
	// image, so filters see scalar buffers.
	AsScalarImage bool
}

// Full applies a neighborhood filter defined by a pixel table. The
// input is copied into a border-extended image filled per the boundary
// condition, so every neighbor read stays inside allocated memory. The
// extended copy is converted to bufT when it differs from the input
// type; the output is reforged to the input sizes with type outImgT.
func Full(
	in, out *array.View,
	bufT, outImgT dtype.Type,
	bc []boundary.Condition,
	pt *pixeltable.Table,
	filter FullFilter,
	opts FullOptions,
) error {
	if !in.IsForged() {
		return diplib.ErrNotForged
	}
	nd := in.Dimensionality()
	if pt.Dimensionality() != nd {
		return fmt.Errorf("%w: pixel table has %d dimensions, image %d",
			diplib.ErrDimensionalityMismatch, pt.Dimensionality(), nd)
	}
	border := pt.Border()
	bc, err := boundary.ArrayUseParameter(bc, nd)
	if err != nil {
		return err
	}
	if err := checkFilterTypes(filter, bufT); err != nil {
		return err
	}

	extended, err := boundary.ExtendImage(in, border, bc)
	if err != nil {
		return err
	}
	if extended, err = extended.Convert(bufT); err != nil {
		return err
	}

	telem := in.TensorElements()
	srcTensor := in.Tensor()
	if err := out.ReForge(in.Sizes(), telem, outImgT); err != nil {
		return err
	}
	if err := out.ReshapeTensor(srcTensor); err != nil {
		return err
	}

	// Scalar processing: the tensor dimension becomes a trailing
	// spatial dimension over which extra lines are dispatched. Its
	// stride is the tensor stride, so neighborhood offsets computed on
	// the spatial strides stay valid.
	outWork := out
	if opts.AsScalarImage && telem > 1 {
		if extended, err = extended.TensorToSpatial(nd); err != nil {
			return err
		}
		if outWork, err = out.TensorToSpatial(nd); err != nil {
			return err
		}
		telem = 1
	}

	offsets, err := pt.Offsets(extended.Strides()[:nd])
	if err != nil {
		return err
	}

	procDim := pt.ProcessingDimension()
	outSizes := outWork.Sizes()
	lineLen := outSizes[procDim]
	indexer := newLineIndexer(outSizes, procDim)
	extStrides := extended.Strides()
	outStrides := outWork.Strides()
	buffered := outWork.DataType() != bufT

	workers := workerCount(opts.Workers)
	if err := filter.SetNumberOfThreads(workers); err != nil {
		return err
	}

	return runLines(indexer.nLines, workers, func(thread, begin, end int) error {
		params := FullLineParams{
			Offsets:  offsets,
			Position: make([]int, len(outSizes)),
			Thread:   thread,
		}
		// The filter writes the buffer type. Stage through scratch
		// when the output image stores something else.
		var scratch any
		if buffered {
			scratch = dtype.MakeSlice(bufT, lineLen*telem)
		}
		coords := make([]int, len(outSizes))
		extCoords := make([]int, len(outSizes))

		for line := begin; line < end; line++ {
			indexer.coordinates(line, coords)
			copy(params.Position, coords)
			copy(extCoords, coords)
			for d := 0; d < nd; d++ {
				extCoords[d] += border[d]
			}
			extOff, err := extended.Offset(extCoords)
			if err != nil {
				return err
			}
			params.In = Buffer{
				Data:         extended.Data(),
				Offset:       extOff,
				Stride:       extStrides[procDim],
				TensorStride: extended.TensorStride(),
				Length:       lineLen,
				TensorLength: telem,
				Border:       border[procDim],
			}
			outOff, err := outWork.Offset(coords)
			if err != nil {
				return err
			}
			if buffered {
				params.Out = Buffer{Data: scratch, Stride: telem, TensorStride: 1,
					Length: lineLen, TensorLength: telem}
			} else {
				params.Out = Buffer{Data: outWork.Data(), Offset: outOff,
					Stride: outStrides[procDim], TensorStride: outWork.TensorStride(),
					Length: lineLen, TensorLength: telem}
			}

			if err := filter.FilterLine(&params); err != nil {
				return err
			}

			if buffered {
				dtype.CopyBuffer(scratch, 0, telem, 1,
					outWork.Data(), outOff, outStrides[procDim], outWork.TensorStride(),
					lineLen, telem, nil)
			}
		}
		return nil
	})
}
