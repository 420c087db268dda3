// Package pixeltable precomputes arbitrarily-shaped neighborhoods as
// run-length-encoded scanline segments. A table describes the support
// of a filter: for every line along the processing dimension that
// intersects the neighborhood it stores the coordinates of the first
// pixel and the run length, all relative to the neighborhood center.
// The kernel framework translates the runs to sample offsets for a
// concrete image layout and hands them to line filters.
package pixeltable

import (
	"fmt"
	"math"

	"github.com/Abhijit-2592/diplib"
)

// Run is one scanline segment of a neighborhood. Coordinates locate the
// first pixel of the segment relative to the neighborhood center; the
// segment extends Length pixels along the processing dimension.
type Run struct {
	Coordinates []int
	Length      int
}

// Table is a neighborhood decomposed into runs along one processing
// dimension. Runs are ordered by their position, so concatenating them
// visits every neighborhood pixel exactly once.
type Table struct {
	runs    []Run
	weights []float64
	sizes   []int
	origin  []int
	nPixels int
	procDim int
}

// Runs returns the scanline segments of the neighborhood.
func (t *Table) Runs() []Run { return t.runs }

// Sizes returns the bounding box of the neighborhood.
func (t *Table) Sizes() []int { return append([]int(nil), t.sizes...) }

// Origin returns the coordinates of the low corner of the bounding box
// relative to the neighborhood center. All components are zero or
// negative.
func (t *Table) Origin() []int { return append([]int(nil), t.origin...) }

// NumberOfPixels returns the total pixel count over all runs.
func (t *Table) NumberOfPixels() int { return t.nPixels }

// ProcessingDimension returns the dimension along which runs extend.
func (t *Table) ProcessingDimension() int { return t.procDim }

// Dimensionality returns the number of dimensions of the neighborhood.
func (t *Table) Dimensionality() int { return len(t.sizes) }

// HasWeights reports whether per-pixel weights have been attached.
func (t *Table) HasWeights() bool { return t.weights != nil }

// Weights returns the per-pixel weights in run iteration order, or nil
// when none are attached.
func (t *Table) Weights() []float64 { return t.weights }

// Border returns, per dimension, how far the neighborhood reaches from
// its center. The kernel framework extends the image boundary by this
// amount before dispatch.
func (t *Table) Border() []int {
	b := make([]int, len(t.sizes))
	for d := range t.sizes {
		low := -t.origin[d]
		high := t.sizes[d] - 1 + t.origin[d]
		if high > low {
			b[d] = high
		} else {
			b[d] = low
		}
	}
	return b
}

func validateShapeArgs(size []float64, procDim int) error {
	if len(size) == 0 {
		return fmt.Errorf("%w: empty neighborhood size", diplib.ErrInvalidShape)
	}
	if procDim < 0 || procDim >= len(size) {
		return fmt.Errorf("%w: processing dimension %d of %d", diplib.ErrIndexOutOfRange, procDim, len(size))
	}
	return nil
}

// Rectangular builds a box neighborhood. The diameters are rounded to
// the nearest integer, so even-sized boxes are possible; an even box
// extends one pixel further towards negative coordinates.
func Rectangular(size []float64, procDim int) (*Table, error) {
	if err := validateShapeArgs(size, procDim); err != nil {
		return nil, err
	}
	nd := len(size)
	t := &Table{procDim: procDim, sizes: make([]int, nd), origin: make([]int, nd)}
	for d, s := range size {
		is := int(math.Round(s))
		if is < 1 {
			is = 1
		}
		t.sizes[d] = is
		t.origin[d] = -(is / 2)
	}
	// One run per line position, all of full length.
	t.eachLine(func(coords []int) {
		start := append([]int(nil), coords...)
		start[procDim] = t.origin[procDim]
		t.appendRun(start, t.sizes[procDim])
	})
	return t, nil
}

// Elliptic builds an ellipsoid neighborhood, the unit circle in the L2
// norm. The diameters are not rounded; the bounding box is always odd.
func Elliptic(size []float64, procDim int) (*Table, error) {
	return roundShape(size, procDim, func(d2 float64) float64 {
		return math.Sqrt(1 - d2)
	}, func(c, r float64) float64 {
		n := c / r
		return n * n
	})
}

// Diamond builds the unit circle in the L1 norm. The bounding box is
// always odd.
func Diamond(size []float64, procDim int) (*Table, error) {
	return roundShape(size, procDim, func(d float64) float64 {
		return 1 - d
	}, func(c, r float64) float64 {
		return math.Abs(c) / r
	})
}

// roundShape shares the scan structure of the elliptic and diamond
// neighborhoods: accumulate a normalized distance over the non-processing
// coordinates, and emit a centered run whose half-length scales the
// processing radius by the remaining distance budget.
func roundShape(size []float64, procDim int, scale func(float64) float64, norm func(c, r float64) float64) (*Table, error) {
	if err := validateShapeArgs(size, procDim); err != nil {
		return nil, err
	}
	nd := len(size)
	t := &Table{procDim: procDim, sizes: make([]int, nd), origin: make([]int, nd)}
	radius := make([]float64, nd)
	for d, s := range size {
		if s < 1 {
			s = 1
		}
		t.sizes[d] = (int(s)/2)*2 + 1
		t.origin[d] = -(t.sizes[d] / 2)
		radius[d] = s / 2
	}
	t.eachLine(func(coords []int) {
		dist := 0.0
		for d, c := range coords {
			if d != procDim {
				dist += norm(float64(c), radius[d])
			}
		}
		if dist > 1 {
			return
		}
		half := int(radius[procDim] * scale(dist))
		start := append([]int(nil), coords...)
		start[procDim] = -half
		t.appendRun(start, 2*half+1)
	})
	return t, nil
}

// Line builds a discrete Bresenham line through the origin. The size
// array gives the extent along each dimension; negative components flip
// the direction in that dimension. The line is walked in equal
// floating-point steps, consecutive pixels on the same scanline merge
// into one run, and the whole table is shifted so the central pixel
// lands exactly on the origin.
func Line(size []float64, procDim int) (*Table, error) {
	if err := validateShapeArgs(size, procDim); err != nil {
		return nil, err
	}
	nd := len(size)
	extent := make([]int, nd)
	length := 0
	for d, s := range size {
		extent[d] = int(math.Round(s))
		if a := abs(extent[d]); a > length {
			length = a
		}
	}
	t := &Table{procDim: procDim}
	if length <= 1 {
		t.fromPixels([][]int{make([]int, nd)})
		return t, nil
	}
	// Keep the walk moving forward along the processing dimension so
	// runs come out in increasing order.
	if extent[procDim] < 0 {
		for d := range extent {
			extent[d] = -extent[d]
		}
	}
	step := make([]float64, nd)
	for d, e := range extent {
		if e == 0 {
			continue
		}
		sign := 1.0
		if e < 0 {
			sign = -1.0
			e = -e
		}
		step[d] = sign * float64(e-1) / float64(length-1)
	}
	pixels := make([][]int, 0, length)
	for k := 0; k < length; k++ {
		p := make([]int, nd)
		for d := range p {
			p[d] = int(math.Round(float64(k) * step[d]))
		}
		pixels = append(pixels, p)
	}
	// Shift so the line passes through the origin.
	center := pixels[(length-1)/2]
	shift := append([]int(nil), center...)
	for _, p := range pixels {
		for d := range p {
			p[d] -= shift[d]
		}
	}
	t.fromPixels(pixels)
	return t, nil
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// eachLine invokes fn once per line position within the bounding box,
// with the processing-dimension coordinate left at zero. Positions step
// through the box in natural order, so runs are appended sorted.
func (t *Table) eachLine(fn func(coords []int)) {
	nd := len(t.sizes)
	coords := append([]int(nil), t.origin...)
	coords[t.procDim] = 0
	for {
		fn(coords)
		d := 0
		for ; d < nd; d++ {
			if d == t.procDim {
				continue
			}
			coords[d]++
			if coords[d] < t.origin[d]+t.sizes[d] {
				break
			}
			coords[d] = t.origin[d]
		}
		if d == nd {
			return
		}
	}
}

func (t *Table) appendRun(start []int, length int) {
	t.runs = append(t.runs, Run{Coordinates: start, Length: length})
	t.nPixels += length
}

// fromPixels builds runs, bounding box and origin from an explicit
// pixel list ordered along the processing dimension.
func (t *Table) fromPixels(pixels [][]int) {
	nd := len(pixels[0])
	min := append([]int(nil), pixels[0]...)
	max := append([]int(nil), pixels[0]...)
	for _, p := range pixels[1:] {
		for d := range p {
			if p[d] < min[d] {
				min[d] = p[d]
			}
			if p[d] > max[d] {
				max[d] = p[d]
			}
		}
	}
	t.sizes = make([]int, nd)
	t.origin = min
	for d := range t.sizes {
		t.sizes[d] = max[d] - min[d] + 1
	}
	for _, p := range pixels {
		if n := len(t.runs); n > 0 {
			last := t.runs[n-1]
			if sameLine(last.Coordinates, p, t.procDim) &&
				p[t.procDim] == last.Coordinates[t.procDim]+last.Length {
				t.runs[n-1].Length++
				t.nPixels++
				continue
			}
		}
		t.appendRun(append([]int(nil), p...), 1)
	}
}

func sameLine(a, b []int, procDim int) bool {
	for d := range a {
		if d != procDim && a[d] != b[d] {
			return false
		}
	}
	return true
}
