// Package boundary controls what sample value is read when an
// operation reads outside the image domain. A Condition selects an
// extension policy per dimension; ExpandBuffer applies it to the border
// region of a single line buffer, and ExtendImage forges an enlarged
// copy of a whole image with the borders filled in.
package boundary

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
)

// Condition enumerates the ways of extending image data beyond its
// boundary.
type Condition int

const (
	// SymmetricMirror mirrors the data: the value at -1 equals the
	// value at 0, at -2 equals at 1, and so on.
	SymmetricMirror Condition = iota

	// AsymmetricMirror mirrors and negates the data.
	AsymmetricMirror

	// Periodic repeats the data periodically: the value at -1 equals
	// the value of the last pixel.
	Periodic

	// AsymmetricPeriodic repeats the data periodically and negated.
	AsymmetricPeriodic

	// AddZeros fills the border with zeros.
	AddZeros

	// AddMaxValue fills the border with the maximum value of the data
	// type.
	AddMaxValue

	// AddMinValue fills the border with the minimum value of the data
	// type.
	AddMinValue

	// ZeroOrderExtrapolate repeats the value at the border
	// indefinitely.
	ZeroOrderExtrapolate

	// FirstOrderExtrapolate continues the line with the slope of the
	// two samples closest to the border.
	FirstOrderExtrapolate

	// SecondOrderExtrapolate fits a quadratic through the two edge
	// samples that decays to zero at the end of the border, windowing
	// the image.
	SecondOrderExtrapolate

	// ThirdOrderExtrapolate fits a cubic through the two edge samples
	// that reaches zero with zero slope at the end of the border.
	ThirdOrderExtrapolate

	numConditions
)

// Default is the boundary condition used when none is specified.
const Default = SymmetricMirror

var conditionNames = map[Condition]string{
	SymmetricMirror:        "mirror",
	AsymmetricMirror:       "asym mirror",
	Periodic:               "periodic",
	AsymmetricPeriodic:     "asym periodic",
	AddZeros:               "add zeros",
	AddMaxValue:            "add max",
	AddMinValue:            "add min",
	ZeroOrderExtrapolate:   "zero order",
	FirstOrderExtrapolate:  "first order",
	SecondOrderExtrapolate: "second order",
	ThirdOrderExtrapolate:  "third order",
}

func (c Condition) String() string {
	if s, ok := conditionNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Condition(%d)", int(c))
}

// IsValid reports whether c is one of the defined conditions.
func (c Condition) IsValid() bool { return c >= 0 && c < numConditions }

// Parse converts a string to a boundary condition. The empty string
// yields the default condition.
func Parse(s string) (Condition, error) {
	if s == "" {
		return Default, nil
	}
	for c, name := range conditionNames {
		if s == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", diplib.ErrInvalidBoundaryCondition, s)
}

// ParseArray converts an array of strings to boundary conditions.
func ParseArray(s []string) ([]Condition, error) {
	out := make([]Condition, len(s))
	for i, name := range s {
		c, err := Parse(name)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// ArrayUseParameter normalizes a per-dimension condition array against
// an image dimensionality: an empty array yields defaults for every
// dimension, a single element is replicated, and otherwise the length
// must match exactly.
func ArrayUseParameter(bc []Condition, nDims int) ([]Condition, error) {
	out := make([]Condition, nDims)
	switch len(bc) {
	case 0:
		for i := range out {
			out[i] = Default
		}
	case 1:
		if !bc[0].IsValid() {
			return nil, fmt.Errorf("%w: %d", diplib.ErrInvalidBoundaryCondition, int(bc[0]))
		}
		for i := range out {
			out[i] = bc[0]
		}
	case nDims:
		for i, c := range bc {
			if !c.IsValid() {
				return nil, fmt.Errorf("%w: %d", diplib.ErrInvalidBoundaryCondition, int(c))
			}
			out[i] = c
		}
	default:
		return nil, fmt.Errorf("%w: %d boundary conditions for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(bc), nDims)
	}
	return out, nil
}

// IntArrayUseParameter applies the same normalization to a
// per-dimension integer parameter such as a border width.
func IntArrayUseParameter(values []int, nDims int) ([]int, error) {
	out := make([]int, nDims)
	switch len(values) {
	case 0:
	case 1:
		for i := range out {
			out[i] = values[0]
		}
	case nDims:
		copy(out, values)
	default:
		return nil, fmt.Errorf("%w: %d values for %d dimensions",
			diplib.ErrDimensionalityMismatch, len(values), nDims)
	}
	return out, nil
}
