package framework

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
)

// Buffer describes one line of samples handed to a line filter. Data is
// one of the dtype slice kinds; the sample for pixel i, tensor element
// t sits at Offset + i*Stride + t*TensorStride. When the engine staged
// the line through a conversion buffer, Data is scratch owned by the
// calling thread; otherwise it addresses image memory directly.
type Buffer struct {
	Data         any
	Offset       int
	Stride       int
	TensorStride int
	Length       int
	TensorLength int

	// Border is the number of expanded samples available before and
	// after the line. Zero except in the separable engine.
	Border int
}

// ScanLineParams is handed to a scan filter once per line.
type ScanLineParams struct {
	// In and Out hold one buffer per input and output image, in call
	// order.
	In  []Buffer
	Out []Buffer

	// Length is the number of pixels in the line.
	Length int

	// Dimension is the dimension the line runs along, -1 when the
	// engine collapsed the images to a single line.
	Dimension int

	// Position holds the coordinates of the first pixel. Only valid
	// when the scan was dispatched with NeedCoordinates.
	Position []int

	// Thread identifies the calling worker.
	Thread int
}

// ScanFilter processes image lines for the scan engine. ScanLine must
// be safe for concurrent calls on distinct thread indices.
type ScanFilter interface {
	LineFilter
	ScanLine(p *ScanLineParams) error
}

// ScanOptions modifies scan dispatch.
type ScanOptions struct {
	// Workers is the number of worker goroutines, default NumCPU.
	Workers int

	// NeedCoordinates asks for valid Position values, which also keeps
	// the engine from collapsing the images into a single line.
	NeedCoordinates bool

	// TensorAsSpatialDim converts the tensor dimension into an extra
	// spatial dimension, so filters see scalar buffers. Outputs are
	// forged with the inputs' expanded tensor element count and
	// nTensorElements is ignored.
	TensorAsSpatialDim bool

	// NoSingletonExpansion requires all inputs to agree on sizes
	// exactly instead of stretching size-1 dimensions.
	NoSingletonExpansion bool
}

// Scan runs a pointwise operation over any number of input and output
// images in lock step. Inputs are singleton-expanded to a common size;
// outputs are reforged to that size with nTensorElements elements of
// type outImgT. Lines are converted to inBufT/outBufT where those
// differ from the stored types, so filters only deal with the types
// they negotiated.
func Scan(
	in, out []*array.View,
	inBufT, outBufT, outImgT []dtype.Type,
	nTensorElements int,
	filter ScanFilter,
	opts ScanOptions,
) error {
	if len(inBufT) != len(in) || len(outBufT) != len(out) || len(outImgT) != len(out) {
		return fmt.Errorf("%w: buffer type count does not match image count",
			diplib.ErrDimensionalityMismatch)
	}
	for _, v := range in {
		if !v.IsForged() {
			return diplib.ErrNotForged
		}
	}
	if len(in) == 0 && len(out) == 0 {
		return nil
	}
	if nTensorElements < 1 {
		return fmt.Errorf("%w: %d tensor elements", diplib.ErrTensorShapeMismatch, nTensorElements)
	}
	if err := checkFilterTypes(filter, append(append([]dtype.Type{}, inBufT...), outBufT...)...); err != nil {
		return err
	}

	// Establish the common geometry.
	var sizes []int
	var err error
	if len(in) > 0 {
		if opts.NoSingletonExpansion {
			sizes = in[0].Sizes()
			for _, v := range in[1:] {
				if !sameSizes(sizes, v.Sizes()) {
					return fmt.Errorf("%w: input sizes %v vs %v",
						diplib.ErrSizesDontMatch, sizes, v.Sizes())
				}
			}
		} else if sizes, err = singletonExpandedSize(in); err != nil {
			return err
		}
	} else {
		if !out[0].IsForged() {
			return diplib.ErrNotForged
		}
		sizes = out[0].Sizes()
	}
	if len(sizes) == 0 {
		sizes = []int{1}
	}

	inViews := make([]*array.View, len(in))
	for i, v := range in {
		w, err := expandToSize(v, sizes)
		if err != nil {
			return err
		}
		inViews[i] = w
	}

	// Tensor as spatial dimension: the input tensors become a trailing
	// spatial dimension and filters see scalar buffers. The caller's
	// element count is ignored, the outputs match the expanded inputs.
	tensorDim := -1
	if opts.TensorAsSpatialDim {
		nTensorElements = 1
		telem := 1
		for _, w := range inViews {
			if n := w.TensorElements(); n > 1 {
				if telem > 1 && n != telem {
					return fmt.Errorf("%w: %d vs %d tensor elements",
						diplib.ErrTensorShapeMismatch, n, telem)
				}
				telem = n
			}
		}
		if telem > 1 {
			tensorDim = len(sizes)
			sizes = append(sizes, telem)
			for i := range inViews {
				w, err := inViews[i].TensorToSpatial(tensorDim)
				if err != nil {
					return err
				}
				if w.Sizes()[tensorDim] == 1 {
					if w, err = w.ExpandSingleton(tensorDim, telem); err != nil {
						return err
					}
				}
				inViews[i] = w
			}
		}
	}

	// Outputs get real memory for every dimension dispatched over. In
	// tensor-as-spatial mode they are forged as tensor images and viewed
	// with the tensor dimension appended; an output is never expanded
	// through a zero stride.
	outViews := make([]*array.View, len(out))
	for i, v := range out {
		if tensorDim >= 0 {
			if err := v.ReForge(sizes[:tensorDim], sizes[tensorDim], outImgT[i]); err != nil {
				return err
			}
			if outViews[i], err = v.TensorToSpatial(tensorDim); err != nil {
				return err
			}
			continue
		}
		if err := v.ReForge(sizes, nTensorElements, outImgT[i]); err != nil {
			return err
		}
		if outViews[i], err = v.ExpandDimensionality(len(sizes)); err != nil {
			return err
		}
	}

	// Collapse to a single line when all views cover their samples with
	// a simple stride and nobody needs coordinates. The collapsed line
	// is then split into one chunk per worker.
	flattened := false
	if !opts.NeedCoordinates {
		flattened = true
		for _, w := range inViews {
			if !w.HasSimpleStride() || w.IsSingletonExpanded() {
				flattened = false
				break
			}
		}
		for _, w := range outViews {
			if flattened && !w.HasSimpleStride() {
				flattened = false
			}
		}
		if flattened {
			for i := range inViews {
				if inViews[i], err = inViews[i].Flatten(); err != nil {
					return err
				}
			}
			for i := range outViews {
				if outViews[i], err = outViews[i].Flatten(); err != nil {
					return err
				}
			}
			sizes = []int{inOrOut(inViews, outViews)[0].Sizes()[0]}
		}
	}

	workers := workerCount(opts.Workers)
	procDim := 0
	dimension := -1
	var nLines, lineLen, chunk int
	if flattened {
		total := sizes[0]
		if workers > total {
			workers = total
		}
		chunk = (total + workers - 1) / workers
		nLines = (total + chunk - 1) / chunk
		lineLen = chunk
	} else {
		procDim = optimalProcessingDim(inOrOut(inViews, outViews)[0])
		dimension = procDim
		lineLen = sizes[procDim]
		nLines = newLineIndexer(sizes, procDim).nLines
		if workers > nLines {
			workers = nLines
		}
	}
	if workers < 1 {
		workers = 1
	}
	indexer := newLineIndexer(sizes, procDim)
	if err := filter.SetNumberOfThreads(workers); err != nil {
		return err
	}

	inStrides := make([][]int, len(inViews))
	for i, w := range inViews {
		inStrides[i] = w.Strides()
	}
	outStrides := make([][]int, len(outViews))
	for i, w := range outViews {
		outStrides[i] = w.Strides()
	}

	return runLines(nLines, workers, func(thread, begin, end int) error {
		params := ScanLineParams{
			In:        make([]Buffer, len(inViews)),
			Out:       make([]Buffer, len(outViews)),
			Dimension: dimension,
			Thread:    thread,
		}
		if opts.NeedCoordinates {
			params.Position = make([]int, len(sizes))
		}
		coords := make([]int, len(sizes))

		// Scratch conversion buffers, one per image that needs one,
		// owned by this worker.
		inScratch := make([]any, len(inViews))
		for i, w := range inViews {
			if inBufT[i] != w.DataType() {
				inScratch[i] = dtype.MakeSlice(inBufT[i], lineLen*w.TensorElements())
			}
		}
		outScratch := make([]any, len(outViews))
		for i, w := range outViews {
			if outBufT[i] != w.DataType() {
				outScratch[i] = dtype.MakeSlice(outBufT[i], lineLen*w.TensorElements())
			}
		}

		for line := begin; line < end; line++ {
			n := lineLen
			if flattened {
				coords[0] = line * chunk
				if rest := sizes[0] - coords[0]; rest < n {
					n = rest
				}
			} else {
				indexer.coordinates(line, coords)
			}
			if params.Position != nil {
				copy(params.Position, coords)
			}
			params.Length = n

			for i, w := range inViews {
				off, err := w.Offset(coords)
				if err != nil {
					return err
				}
				telem := w.TensorElements()
				if inScratch[i] != nil {
					dtype.CopyBuffer(w.Data(), off, inStrides[i][procDim], w.TensorStride(),
						inScratch[i], 0, telem, 1, n, telem, nil)
					params.In[i] = Buffer{Data: inScratch[i], Stride: telem, TensorStride: 1,
						Length: n, TensorLength: telem}
				} else {
					params.In[i] = Buffer{Data: w.Data(), Offset: off, Stride: inStrides[i][procDim],
						TensorStride: w.TensorStride(), Length: n, TensorLength: telem}
				}
			}
			for i, w := range outViews {
				off, err := w.Offset(coords)
				if err != nil {
					return err
				}
				telem := w.TensorElements()
				if outScratch[i] != nil {
					params.Out[i] = Buffer{Data: outScratch[i], Stride: telem, TensorStride: 1,
						Length: n, TensorLength: telem}
				} else {
					params.Out[i] = Buffer{Data: w.Data(), Offset: off, Stride: outStrides[i][procDim],
						TensorStride: w.TensorStride(), Length: n, TensorLength: telem}
				}
			}

			if err := filter.ScanLine(&params); err != nil {
				return err
			}

			for i, w := range outViews {
				if outScratch[i] == nil {
					continue
				}
				off, err := w.Offset(coords)
				if err != nil {
					return err
				}
				telem := w.TensorElements()
				dtype.CopyBuffer(outScratch[i], 0, telem, 1,
					w.Data(), off, outStrides[i][procDim], w.TensorStride(), n, telem, nil)
			}
		}
		return nil
	})
}

func inOrOut(in, out []*array.View) []*array.View {
	if len(in) > 0 {
		return in
	}
	return out
}
