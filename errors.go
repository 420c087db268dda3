// Package diplib provides the shared error categories used throughout the
// n-dimensional image processing core.
//
// Errors are categorical rather than ad hoc strings: every failure raised by
// the array, pixel table, boundary and framework packages wraps one of the
// sentinel errors below, so callers can classify failures with errors.Is
// while still getting a descriptive message.
package diplib

import "errors"

var (
	// ErrNotForged indicates an operation that requires pixel data was
	// called on an image that has no memory allocated.
	ErrNotForged = errors.New("image is not forged")

	// ErrProtected indicates an attempt to strip or reallocate an image
	// whose data segment is protected from deallocation.
	ErrProtected = errors.New("image is protected")

	// ErrInvalidShape indicates a zero-sized or oversized dimension.
	ErrInvalidShape = errors.New("invalid image shape")

	// ErrDimensionalityMismatch indicates that images or parameter arrays
	// disagree on the number of dimensions.
	ErrDimensionalityMismatch = errors.New("dimensionalities don't match")

	// ErrSizesDontMatch indicates that images agree on dimensionality but
	// not on the extent of one or more dimensions.
	ErrSizesDontMatch = errors.New("sizes don't match")

	// ErrUnsupportedDataType indicates a sample type outside the set
	// accepted by the operation, e.g. a complex image given to an
	// operation that requires real samples.
	ErrUnsupportedDataType = errors.New("data type not supported")

	// ErrTensorShapeMismatch indicates an incompatible tensor shape.
	ErrTensorShapeMismatch = errors.New("tensor shapes don't match")

	// ErrIndexOutOfRange indicates a coordinate, index or range outside
	// the image domain.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidBoundaryCondition indicates an unrecognized boundary
	// condition name.
	ErrInvalidBoundaryCondition = errors.New("invalid boundary condition")

	// ErrAllocationFailed indicates that an external allocator did not
	// produce a usable data segment.
	ErrAllocationFailed = errors.New("allocation failed")
)
