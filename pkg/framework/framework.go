// Package framework contains the three generic processing engines the
// image core is built around: Scan applies a pointwise operation across
// scanlines of one or more images, Separable applies a 1-D operation
// along each active dimension in turn, and Full gathers an arbitrary
// neighborhood per output pixel through a pixel table. Algorithms
// implement a line filter interface and let the engine deal with
// layout, type conversion, boundary handling and parallelism.
//
// All three engines validate every precondition before the first worker
// starts, so setup failures never leave partially written output. A
// failure raised inside a line filter aborts the dispatch after all
// workers join, with the first error winning; output lines already
// written by other workers are not rolled back.
package framework

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/array"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
)

// LineFilter is the concurrency contract shared by all engine filters.
// SetNumberOfThreads is called exactly once before dispatch; a filter
// that keeps scratch state must allocate one slot per thread and
// confine each call to the slot named by the thread index it receives.
type LineFilter interface {
	SetNumberOfThreads(n int) error
}

// TypeConstrained is an optional filter interface. A filter that only
// handles a subset of sample types declares the acceptable category;
// the engines reject other buffer types before any worker starts.
type TypeConstrained interface {
	AcceptedTypes() dtype.Category
}

// checkFilterTypes rejects buffer types outside the filter's declared
// constraint. Filters without a constraint accept everything.
func checkFilterTypes(filter LineFilter, types ...dtype.Type) error {
	tc, ok := filter.(TypeConstrained)
	if !ok {
		return nil
	}
	for _, t := range types {
		if err := dtype.Require(t, tc.AcceptedTypes()); err != nil {
			return err
		}
	}
	return nil
}

// workerCount resolves a requested worker count, defaulting to the
// number of CPUs.
func workerCount(requested int) int {
	if requested > 0 {
		return requested
	}
	return runtime.NumCPU()
}

// runLines dispatches lines [0, nLines) over workers, each worker
// taking one contiguous block. The filter's thread index equals the
// worker index. Returns the first error observed.
func runLines(nLines, workers int, fn func(thread, begin, end int) error) error {
	if nLines == 0 {
		return nil
	}
	if workers > nLines {
		workers = nLines
	}
	perWorker := (nLines + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		begin := w * perWorker
		end := begin + perWorker
		if end > nLines {
			end = nLines
		}
		if begin >= end {
			break
		}
		thread := w
		g.Go(func() error {
			return fn(thread, begin, end)
		})
	}
	return g.Wait()
}

// lineIndexer converts a line index into start coordinates, walking all
// dimensions except the processing dimension in natural order.
type lineIndexer struct {
	sizes   []int
	procDim int
	nLines  int
}

func newLineIndexer(sizes []int, procDim int) *lineIndexer {
	n := 1
	for d, s := range sizes {
		if d != procDim {
			n *= s
		}
	}
	return &lineIndexer{sizes: sizes, procDim: procDim, nLines: n}
}

// coordinates fills coords with the start position of the given line.
// The processing-dimension coordinate is always zero.
func (li *lineIndexer) coordinates(line int, coords []int) {
	for d := range li.sizes {
		if d == li.procDim {
			coords[d] = 0
			continue
		}
		coords[d] = line % li.sizes[d]
		line /= li.sizes[d]
	}
}

// optimalProcessingDim picks the dimension with the smallest absolute
// stride among the largest dimensions, so lines are as long and as
// dense as possible.
func optimalProcessingDim(v *array.View) int {
	strides := v.Strides()
	sizes := v.Sizes()
	best := 0
	for d := 1; d < len(sizes); d++ {
		if sizes[d] == 1 {
			continue
		}
		if sizes[best] == 1 {
			best = d
			continue
		}
		sd, sb := strides[d], strides[best]
		if sd < 0 {
			sd = -sd
		}
		if sb < 0 {
			sb = -sb
		}
		if sd < sb || (sd == sb && sizes[d] > sizes[best]) {
			best = d
		}
	}
	return best
}

// singletonExpandedSize computes the union geometry of several images:
// per dimension the sizes must agree, except that size 1 stretches to
// match. Dimensionality is padded at the end.
func singletonExpandedSize(views []*array.View) ([]int, error) {
	nd := 0
	for _, v := range views {
		if v.Dimensionality() > nd {
			nd = v.Dimensionality()
		}
	}
	sizes := make([]int, nd)
	for i := range sizes {
		sizes[i] = 1
	}
	for _, v := range views {
		for d, s := range v.Sizes() {
			switch {
			case s == 1 || s == sizes[d]:
			case sizes[d] == 1:
				sizes[d] = s
			default:
				return nil, fmt.Errorf("%w: dimension %d is %d vs %d",
					diplib.ErrSizesDontMatch, d, s, sizes[d])
			}
		}
	}
	return sizes, nil
}

// expandToSize returns a view singleton-expanded to the given sizes.
func expandToSize(v *array.View, sizes []int) (*array.View, error) {
	out, err := v.ExpandDimensionality(len(sizes))
	if err != nil {
		return nil, err
	}
	for d, s := range sizes {
		cur := out.Sizes()[d]
		if cur == s {
			continue
		}
		if cur != 1 {
			return nil, fmt.Errorf("%w: dimension %d is %d, cannot expand to %d",
				diplib.ErrSizesDontMatch, d, cur, s)
		}
		out, err = out.ExpandSingleton(d, s)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sameSizes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
