package dtype

import (
	"math"
	"math/cmplx"

	"golang.org/x/exp/constraints"
)

// This file provides the saturating casts used whenever samples move
// between element types. Narrowing conversions clamp to the target type's
// representable range instead of wrapping, and complex values convert to
// real by taking the magnitude.

// clampCast rounds v to the nearest integer and clamps it to [lo, hi].
// NaN converts to zero.
func clampCast[T constraints.Integer](v, lo, hi float64) T {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v)
	if v <= lo {
		return T(lo)
	}
	if v >= hi {
		return T(hi)
	}
	return T(v)
}

// ClampUint8 converts v to uint8 with saturation: 300 becomes 255, -5
// becomes 0.
func ClampUint8(v float64) uint8 { return clampCast[uint8](v, 0, math.MaxUint8) }

// ClampInt8 converts v to int8 with saturation.
func ClampInt8(v float64) int8 { return clampCast[int8](v, math.MinInt8, math.MaxInt8) }

// ClampUint16 converts v to uint16 with saturation.
func ClampUint16(v float64) uint16 { return clampCast[uint16](v, 0, math.MaxUint16) }

// ClampInt16 converts v to int16 with saturation.
func ClampInt16(v float64) int16 { return clampCast[int16](v, math.MinInt16, math.MaxInt16) }

// ClampUint32 converts v to uint32 with saturation.
func ClampUint32(v float64) uint32 { return clampCast[uint32](v, 0, math.MaxUint32) }

// ClampInt32 converts v to int32 with saturation.
func ClampInt32(v float64) int32 { return clampCast[int32](v, math.MinInt32, math.MaxInt32) }

// ClampFloat32 converts v to float32, clamping overflow to the largest
// finite float32 instead of producing an infinity.
func ClampFloat32(v float64) float32 {
	if v > math.MaxFloat32 {
		return math.MaxFloat32
	}
	if v < -math.MaxFloat32 {
		return -math.MaxFloat32
	}
	return float32(v)
}

// ClampBin converts v to a binary sample: any non-zero value is true.
func ClampBin(v float64) bool { return v != 0 }

// Magnitude converts a complex sample to real by taking its modulus.
func Magnitude(v complex128) float64 { return cmplx.Abs(v) }
