package dtype

import "fmt"

// This file is the single dispatch point between the runtime Type tag and
// the concrete Go slice kinds that store samples. A sample buffer is always
// one of the slice types produced by MakeSlice; the type switches below
// select the correct concrete code path for a given tag, so call sites can
// stay generic without open-ended dynamic dispatch.

// MakeSlice allocates a zeroed sample buffer of n samples for type t. The
// result is one of: []bool, []uint8, []int8, []uint16, []int16, []uint32,
// []int32, []float32, []float64, []complex64 or []complex128.
func MakeSlice(t Type, n int) any {
	switch t {
	case Bin:
		return make([]bool, n)
	case Uint8:
		return make([]uint8, n)
	case Int8:
		return make([]int8, n)
	case Uint16:
		return make([]uint16, n)
	case Int16:
		return make([]int16, n)
	case Uint32:
		return make([]uint32, n)
	case Int32:
		return make([]int32, n)
	case Float32:
		return make([]float32, n)
	case Float64:
		return make([]float64, n)
	case Complex64:
		return make([]complex64, n)
	case Complex128:
		return make([]complex128, n)
	}
	panic(fmt.Sprintf("dtype: unknown type tag %d", int(t)))
}

// TypeOfSlice returns the type tag for a sample buffer created by
// MakeSlice, and whether the buffer is of a known kind.
func TypeOfSlice(data any) (Type, bool) {
	switch data.(type) {
	case []bool:
		return Bin, true
	case []uint8:
		return Uint8, true
	case []int8:
		return Int8, true
	case []uint16:
		return Uint16, true
	case []int16:
		return Int16, true
	case []uint32:
		return Uint32, true
	case []int32:
		return Int32, true
	case []float32:
		return Float32, true
	case []float64:
		return Float64, true
	case []complex64:
		return Complex64, true
	case []complex128:
		return Complex128, true
	}
	return 0, false
}

// Length returns the number of samples in a buffer created by MakeSlice.
func Length(data any) int {
	switch s := data.(type) {
	case []bool:
		return len(s)
	case []uint8:
		return len(s)
	case []int8:
		return len(s)
	case []uint16:
		return len(s)
	case []int16:
		return len(s)
	case []uint32:
		return len(s)
	case []int32:
		return len(s)
	case []float32:
		return len(s)
	case []float64:
		return len(s)
	case []complex64:
		return len(s)
	case []complex128:
		return len(s)
	}
	return 0
}

// ReadFloat reads the sample at offset off as a float64. Binary samples
// read as 0 or 1, complex samples read as their magnitude.
func ReadFloat(data any, off int) float64 {
	switch s := data.(type) {
	case []bool:
		if s[off] {
			return 1
		}
		return 0
	case []uint8:
		return float64(s[off])
	case []int8:
		return float64(s[off])
	case []uint16:
		return float64(s[off])
	case []int16:
		return float64(s[off])
	case []uint32:
		return float64(s[off])
	case []int32:
		return float64(s[off])
	case []float32:
		return float64(s[off])
	case []float64:
		return s[off]
	case []complex64:
		return Magnitude(complex128(s[off]))
	case []complex128:
		return Magnitude(s[off])
	}
	panic("dtype: unknown sample buffer kind")
}

// WriteFloat writes v to the sample at offset off, saturating to the
// destination type's range.
func WriteFloat(data any, off int, v float64) {
	switch s := data.(type) {
	case []bool:
		s[off] = ClampBin(v)
	case []uint8:
		s[off] = ClampUint8(v)
	case []int8:
		s[off] = ClampInt8(v)
	case []uint16:
		s[off] = ClampUint16(v)
	case []int16:
		s[off] = ClampInt16(v)
	case []uint32:
		s[off] = ClampUint32(v)
	case []int32:
		s[off] = ClampInt32(v)
	case []float32:
		s[off] = ClampFloat32(v)
	case []float64:
		s[off] = v
	case []complex64:
		s[off] = complex(ClampFloat32(v), 0)
	case []complex128:
		s[off] = complex(v, 0)
	default:
		panic("dtype: unknown sample buffer kind")
	}
}

// ReadComplex reads the sample at offset off as a complex128. Real samples
// read with a zero imaginary part.
func ReadComplex(data any, off int) complex128 {
	switch s := data.(type) {
	case []complex64:
		return complex128(s[off])
	case []complex128:
		return s[off]
	default:
		return complex(ReadFloat(data, off), 0)
	}
}

// WriteComplex writes v to the sample at offset off. Writing a complex
// value to a real destination stores the magnitude, saturated to the
// destination range.
func WriteComplex(data any, off int, v complex128) {
	switch s := data.(type) {
	case []complex64:
		s[off] = complex(ClampFloat32(real(v)), ClampFloat32(imag(v)))
	case []complex128:
		s[off] = v
	default:
		WriteFloat(data, off, Magnitude(v))
	}
}

// CopySample copies one sample between buffers, converting with
// saturation when the kinds differ.
func CopySample(src any, srcOff int, dst any, dstOff int) {
	if st, _ := TypeOfSlice(src); st.IsComplex() {
		WriteComplex(dst, dstOff, ReadComplex(src, srcOff))
		return
	}
	WriteFloat(dst, dstOff, ReadFloat(src, srcOff))
}

// CopyBuffer copies a line of length pixels with tensorLength tensor
// elements per pixel from src to dst, converting samples as needed. A
// source stride of zero replicates the single source pixel across the
// whole destination line (singleton expansion). When lut is non-nil it
// maps destination tensor element k to source tensor element lut[k]; an
// entry of -1 writes a zero (used to expand packed tensor shapes to a
// full matrix layout).
func CopyBuffer(
	src any, srcOff, srcStride, srcTStride int,
	dst any, dstOff, dstStride, dstTStride int,
	length, tensorLength int, lut []int,
) {
	for ii := 0; ii < length; ii++ {
		so := srcOff + ii*srcStride
		do := dstOff + ii*dstStride
		for tt := 0; tt < tensorLength; tt++ {
			if lut != nil {
				if lut[tt] < 0 {
					WriteFloat(dst, do+tt*dstTStride, 0)
				} else {
					CopySample(src, so+lut[tt]*srcTStride, dst, do+tt*dstTStride)
				}
			} else {
				CopySample(src, so+tt*srcTStride, dst, do+tt*dstTStride)
			}
		}
	}
}
