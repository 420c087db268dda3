// Package models holds small shared value types used across the image core.
package models

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
)

// Range selects a regular subset of indices along one image dimension.
// Start and Stop are both inclusive. Negative values count from the end of
// the dimension: -1 is the last index, -2 the one before it, and so on.
// A Step of 0 is normalized to 1.
type Range struct {
	// Start is the first index in the range.
	Start int

	// Stop is the last index in the range (inclusive).
	Stop int

	// Step is the distance between successive indices, must be positive
	// after normalization. Walking from Start towards Stop may go backwards
	// when Stop resolves before Start; the resolved stride is then negated.
	Step int
}

// All returns the range covering a whole dimension.
func All() Range { return Range{Start: 0, Stop: -1, Step: 1} }

// At returns the range selecting the single index i.
func At(i int) Range { return Range{Start: i, Stop: i, Step: 1} }

// Resolved is a Range with negative indices translated against a concrete
// dimension size.
type Resolved struct {
	// Start is the first index, in [0, size).
	Start int

	// Size is the number of selected indices.
	Size int

	// Step is the signed distance between successive indices.
	Step int
}

// Resolve translates the range against a dimension of the given size.
func (r Range) Resolve(size int) (Resolved, error) {
	step := r.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return Resolved{}, fmt.Errorf("%w: negative range step %d", diplib.ErrIndexOutOfRange, step)
	}
	start, stop := r.Start, r.Stop
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 || start >= size || stop < 0 || stop >= size {
		return Resolved{}, fmt.Errorf("%w: range [%d,%d] outside dimension of size %d",
			diplib.ErrIndexOutOfRange, r.Start, r.Stop, size)
	}
	out := Resolved{Start: start, Step: step}
	if stop >= start {
		out.Size = (stop-start)/step + 1
	} else {
		out.Size = (start-stop)/step + 1
		out.Step = -step
	}
	return out, nil
}
