package array

import "sync/atomic"

// block is the shared, reference-counted data segment behind one or more
// views. Any number of views may reference the same block concurrently;
// the counter is atomic so views can be shared and released from
// different goroutines. The Go garbage collector reclaims the sample
// slice itself; the explicit count exists so that a release callback for
// externally-owned memory fires exactly once, when the last view lets go.
type block struct {
	// data is one of the sample slice kinds produced by dtype.MakeSlice,
	// with length in samples.
	data any

	// refs counts the views referencing this block.
	refs atomic.Int64

	// release, if non-nil, is invoked when refs drops to zero. Used for
	// memory obtained from an external allocator.
	release func()
}

func newBlock(data any, release func()) *block {
	b := &block{data: data, release: release}
	b.refs.Store(1)
	return b
}

// retain registers one more view on the block.
func (b *block) retain() *block {
	if b != nil {
		b.refs.Add(1)
	}
	return b
}

// drop releases one view's reference. The last release triggers the
// external release callback, if any.
func (b *block) drop() {
	if b == nil {
		return
	}
	if b.refs.Add(-1) == 0 {
		if b.release != nil {
			b.release()
			b.release = nil
		}
		b.data = nil
	}
}
