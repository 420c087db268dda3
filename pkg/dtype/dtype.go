// Package dtype implements the sample type registry: a closed, runtime
// inspectable enumeration of the numeric element kinds supported by the
// image core, together with the saturating casts and the raw-buffer
// dispatch helpers that all generic processing is built on.
//
// The set of types is closed on purpose. Every generic operation in the
// core dispatches over this enumeration at a single point (the type
// switches in dispatch.go), so the full set of concrete instantiations is
// known at compile time and exhaustively checkable.
package dtype

import (
	"fmt"
	"math"

	"github.com/Abhijit-2592/diplib"
)

// Type is the runtime tag for a sample's element kind.
type Type int

// The supported element kinds. Bin is a binary (boolean) sample stored as
// one bool per sample.
const (
	Bin Type = iota
	Uint8
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Float32
	Float64
	Complex64
	Complex128

	numTypes
)

// String returns the canonical lower-case name of the type.
func (t Type) String() string {
	switch t {
	case Bin:
		return "bin"
	case Uint8:
		return "uint8"
	case Int8:
		return "int8"
	case Uint16:
		return "uint16"
	case Int16:
		return "int16"
	case Uint32:
		return "uint32"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	case Complex128:
		return "complex128"
	}
	return "unknown"
}

// Parse maps a canonical type name back to its tag.
func Parse(name string) (Type, error) {
	for t := Bin; t < numTypes; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", diplib.ErrUnsupportedDataType, name)
}

// SizeOf returns the storage size of one sample in bytes.
func (t Type) SizeOf() int {
	switch t {
	case Bin, Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Float64, Complex64:
		return 8
	case Complex128:
		return 16
	}
	return 0
}

// Classification predicates.

// IsBinary reports whether t is the binary type.
func (t Type) IsBinary() bool { return t == Bin }

// IsUInt reports whether t is an unsigned integer type.
func (t Type) IsUInt() bool { return t == Uint8 || t == Uint16 || t == Uint32 }

// IsSInt reports whether t is a signed integer type.
func (t Type) IsSInt() bool { return t == Int8 || t == Int16 || t == Int32 }

// IsInteger reports whether t is an integer type, signed or unsigned.
func (t Type) IsInteger() bool { return t.IsUInt() || t.IsSInt() }

// IsFloat reports whether t is a floating-point type.
func (t Type) IsFloat() bool { return t == Float32 || t == Float64 }

// IsComplex reports whether t is a complex type.
func (t Type) IsComplex() bool { return t == Complex64 || t == Complex128 }

// IsReal reports whether t is a real (integer or float) numeric type.
func (t Type) IsReal() bool { return t.IsInteger() || t.IsFloat() }

// IsUnsigned reports whether samples of t can never be negative.
func (t Type) IsUnsigned() bool { return t.IsBinary() || t.IsUInt() }

// IsSigned reports whether t can represent negative values.
func (t Type) IsSigned() bool { return t.IsSInt() || t.IsFloat() || t.IsComplex() }

// Category is a set of types that an operation accepts, used to gate
// dispatch before any buffer is touched.
type Category uint16

func setOf(types ...Type) Category {
	var c Category
	for _, t := range types {
		c |= 1 << uint(t)
	}
	return c
}

// Only builds a category holding exactly the given types.
func Only(types ...Type) Category { return setOf(types...) }

// The categories used throughout the core.
var (
	// Any accepts every type in the registry.
	Any = setOf(Bin, Uint8, Int8, Uint16, Int16, Uint32, Int32, Float32, Float64, Complex64, Complex128)

	// NonComplex accepts everything except the complex types.
	NonComplex = setOf(Bin, Uint8, Int8, Uint16, Int16, Uint32, Int32, Float32, Float64)

	// Real accepts integer and floating-point types.
	Real = setOf(Uint8, Int8, Uint16, Int16, Uint32, Int32, Float32, Float64)

	// ComplexOnly accepts only the complex types.
	ComplexOnly = setOf(Complex64, Complex128)

	// UnsignedOnly accepts the binary and unsigned integer types.
	UnsignedOnly = setOf(Bin, Uint8, Uint16, Uint32)

	// BinaryOnly accepts only the binary type.
	BinaryOnly = setOf(Bin)
)

// In reports whether t belongs to the category.
func (t Type) In(c Category) bool { return c&(1<<uint(t)) != 0 }

// Require fails with ErrUnsupportedDataType if t is not in the category.
// Operations call this before touching any sample buffer.
func Require(t Type, c Category) error {
	if !t.In(c) {
		return fmt.Errorf("%w: %s", diplib.ErrUnsupportedDataType, t)
	}
	return nil
}

// MaxValue returns the largest representable sample value as a float64.
// For the binary type this is 1.
func (t Type) MaxValue() float64 {
	switch t {
	case Bin:
		return 1
	case Uint8:
		return math.MaxUint8
	case Int8:
		return math.MaxInt8
	case Uint16:
		return math.MaxUint16
	case Int16:
		return math.MaxInt16
	case Uint32:
		return math.MaxUint32
	case Int32:
		return math.MaxInt32
	case Float32, Complex64:
		return math.MaxFloat32
	default:
		return math.MaxFloat64
	}
}

// MinValue returns the smallest representable sample value as a float64.
func (t Type) MinValue() float64 {
	switch t {
	case Bin, Uint8, Uint16, Uint32:
		return 0
	case Int8:
		return math.MinInt8
	case Int16:
		return math.MinInt16
	case Int32:
		return math.MinInt32
	case Float32, Complex64:
		return -math.MaxFloat32
	default:
		return -math.MaxFloat64
	}
}

// SuggestFloat returns the floating-point type that can hold values of t
// without loss for the buffer types negotiated by the frameworks.
func SuggestFloat(t Type) Type {
	if t.IsComplex() {
		return Complex128
	}
	return Float64
}
