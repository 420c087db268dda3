package boundary

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/pkg/dtype"
)

// ExpandBuffer fills the border region of a line in place. The line has
// pixels samples per tensor element, starting at offset and stepping by
// stride; border samples before the first and after the last pixel are
// overwritten according to the boundary condition. The caller must
// guarantee that the underlying slice covers the border region.
//
// Extrapolating conditions degrade gracefully on short lines: third
// order needs three pixels, first and second order need two; below that
// they fall back to the next lower order.
func ExpandBuffer(data any, offset, stride, tstride, pixels, tensorElements, border int, bc Condition) error {
	t, ok := dtype.TypeOfSlice(data)
	if !ok {
		return fmt.Errorf("%w: buffer kind %T", diplib.ErrUnsupportedDataType, data)
	}
	if !bc.IsValid() {
		return fmt.Errorf("%w: %d", diplib.ErrInvalidBoundaryCondition, int(bc))
	}
	if pixels < 1 {
		return fmt.Errorf("%w: line of %d pixels", diplib.ErrInvalidShape, pixels)
	}
	if border < 1 {
		return nil
	}
	for j := 0; j < tensorElements; j++ {
		expandLine(data, t, offset+j*tstride, stride, pixels, border, bc)
	}
	return nil
}

func expandLine(data any, t dtype.Type, offset, stride, pixels, border int, bc Condition) {
	switch bc {
	case SymmetricMirror, AsymmetricMirror:
		invert := bc == AsymmetricMirror
		if pixels == 1 {
			v := readInverted(data, t, offset, invert)
			expandConstant(data, offset, stride, pixels, border, v, v)
			return
		}
		expandMirror(data, t, offset, stride, pixels, border, invert)

	case Periodic, AsymmetricPeriodic:
		invert := bc == AsymmetricPeriodic
		if pixels == 1 {
			v := readInverted(data, t, offset, invert)
			expandConstant(data, offset, stride, pixels, border, v, v)
			return
		}
		expandPeriodic(data, t, offset, stride, pixels, border, invert)

	case AddZeros:
		expandConstant(data, offset, stride, pixels, border, 0, 0)

	case AddMaxValue:
		expandConstant(data, offset, stride, pixels, border, t.MaxValue(), t.MaxValue())

	case AddMinValue:
		expandConstant(data, offset, stride, pixels, border, t.MinValue(), t.MinValue())

	case ThirdOrderExtrapolate:
		if pixels > 2 {
			expandThirdOrder(data, t, offset, stride, pixels, border)
			return
		}
		fallthrough
	case SecondOrderExtrapolate:
		if pixels > 1 {
			expandSecondOrder(data, t, offset, stride, pixels, border)
			return
		}
		fallthrough
	case FirstOrderExtrapolate:
		if pixels > 1 {
			expandFirstOrder(data, t, offset, stride, pixels, border)
			return
		}
		fallthrough
	case ZeroOrderExtrapolate:
		left := dtype.ReadFloat(data, offset)
		right := dtype.ReadFloat(data, offset+(pixels-1)*stride)
		if t.IsComplex() {
			expandConstantComplex(data, offset, stride, pixels, border,
				dtype.ReadComplex(data, offset), dtype.ReadComplex(data, offset+(pixels-1)*stride))
			return
		}
		expandConstant(data, offset, stride, pixels, border, left, right)
	}
}

func readInverted(data any, t dtype.Type, off int, invert bool) float64 {
	v := dtype.ReadFloat(data, off)
	if !invert {
		return v
	}
	if t == dtype.Bin {
		return 1 - v
	}
	return -v
}

// transfer copies one sample within the buffer, optionally negated.
// Binary samples negate logically.
func transfer(data any, t dtype.Type, from, to int, invert bool) {
	if !invert {
		dtype.CopySample(data, from, data, to)
		return
	}
	switch {
	case t.IsComplex():
		dtype.WriteComplex(data, to, -dtype.ReadComplex(data, from))
	case t == dtype.Bin:
		dtype.WriteFloat(data, to, 1-dtype.ReadFloat(data, from))
	default:
		dtype.WriteFloat(data, to, -dtype.ReadFloat(data, from))
	}
}

func expandConstant(data any, offset, stride, pixels, border int, left, right float64) {
	out := offset - stride
	for i := 0; i < border; i++ {
		dtype.WriteFloat(data, out, left)
		out -= stride
	}
	out = offset + pixels*stride
	for i := 0; i < border; i++ {
		dtype.WriteFloat(data, out, right)
		out += stride
	}
}

func expandConstantComplex(data any, offset, stride, pixels, border int, left, right complex128) {
	out := offset - stride
	for i := 0; i < border; i++ {
		dtype.WriteComplex(data, out, left)
		out -= stride
	}
	out = offset + pixels*stride
	for i := 0; i < border; i++ {
		dtype.WriteComplex(data, out, right)
		out += stride
	}
}

// mirrorIndex folds a possibly out-of-range index into [0, n) with
// period 2n, so that index -1 maps to 0, -2 to 1, n to n-1, and so on.
// Borders wider than the line keep folding back and forth.
func mirrorIndex(i, n int) int {
	p := i % (2 * n)
	if p < 0 {
		p += 2 * n
	}
	if p >= n {
		p = 2*n - 1 - p
	}
	return p
}

// periodicIndex folds a possibly out-of-range index into [0, n) with
// period n.
func periodicIndex(i, n int) int {
	p := i % n
	if p < 0 {
		p += n
	}
	return p
}

func expandMirror(data any, t dtype.Type, offset, stride, pixels, border int, invert bool) {
	for k := 1; k <= border; k++ {
		in := offset + mirrorIndex(-k, pixels)*stride
		transfer(data, t, in, offset-k*stride, invert)
		in = offset + mirrorIndex(pixels-1+k, pixels)*stride
		transfer(data, t, in, offset+(pixels-1+k)*stride, invert)
	}
}

func expandPeriodic(data any, t dtype.Type, offset, stride, pixels, border int, invert bool) {
	for k := 1; k <= border; k++ {
		in := offset + periodicIndex(-k, pixels)*stride
		transfer(data, t, in, offset-k*stride, invert)
		in = offset + periodicIndex(pixels-1+k, pixels)*stride
		transfer(data, t, in, offset+(pixels-1+k)*stride, invert)
	}
}

// polyWriter writes a polynomial in the border index, in float64 or
// complex128 arithmetic depending on the buffer type.
func writePoly(data any, t dtype.Type, out, step, border int, eval func(k float64) complex128) {
	for k := 1; k <= border; k++ {
		v := eval(float64(k))
		if t.IsComplex() {
			dtype.WriteComplex(data, out, v)
		} else {
			dtype.WriteFloat(data, out, real(v))
		}
		out += step
	}
}

func sampleC(data any, t dtype.Type, off int) complex128 {
	if t.IsComplex() {
		return dtype.ReadComplex(data, off)
	}
	return complex(dtype.ReadFloat(data, off), 0)
}

// expandFirstOrder continues the line with the slope at the edge.
func expandFirstOrder(data any, t dtype.Type, offset, stride, pixels, border int) {
	d0 := sampleC(data, t, offset)
	d1 := d0 - sampleC(data, t, offset+stride)
	writePoly(data, t, offset-stride, -stride, border, func(k float64) complex128 {
		return d0 + complex(k, 0)*d1
	})
	d0 = sampleC(data, t, offset+(pixels-1)*stride)
	d1 = d0 - sampleC(data, t, offset+(pixels-2)*stride)
	writePoly(data, t, offset+pixels*stride, stride, border, func(k float64) complex128 {
		return d0 + complex(k, 0)*d1
	})
}

// expandSecondOrder fits a quadratic that matches the two edge samples
// and reaches zero at the end of the border, windowing the image
// instead of letting the extrapolation run away.
func expandSecondOrder(data any, t dtype.Type, offset, stride, pixels, border int) {
	b := complex(float64(border+1), 0)
	side := func(edge, inner, out, step int) {
		d0 := sampleC(data, t, edge)
		f1 := sampleC(data, t, inner)
		d1 := (b-1)/b*d0 - b/(b+1)*f1
		d2 := -1/b*d0 + 1/(b+1)*f1
		writePoly(data, t, out, step, border, func(k float64) complex128 {
			kk := complex(k, 0)
			return d0 + kk*d1 + kk*kk*d2
		})
	}
	side(offset, offset+stride, offset-stride, -stride)
	last := offset + (pixels-1)*stride
	side(last, last-stride, offset+pixels*stride, stride)
}

// expandThirdOrder fits a cubic that matches the two edge samples and
// reaches zero with zero slope at the end of the border.
func expandThirdOrder(data any, t dtype.Type, offset, stride, pixels, border int) {
	b := complex(float64(border+1), 0)
	b12 := (b + 1) * (b + 1)
	side := func(edge, inner, out, step int) {
		d0 := sampleC(data, t, edge)
		f1 := sampleC(data, t, inner)
		d1 := -2*d0/b + d0 - b*b*f1/b12
		d2 := 2*b*f1/b12 - d0*(2*b-1)/(b*b)
		d3 := d0/(b*b) - f1/b12
		writePoly(data, t, out, step, border, func(k float64) complex128 {
			kk := complex(k, 0)
			return d0 + kk*d1 + kk*kk*d2 + kk*kk*kk*d3
		})
	}
	side(offset, offset+stride, offset-stride, -stride)
	last := offset + (pixels-1)*stride
	side(last, last-stride, offset+pixels*stride, stride)
}
