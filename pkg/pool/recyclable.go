package pool

import "bytes"

// Supplier produces a fresh, ready-to-use value with neutral state: an empty
// container, a zeroed buffer. The pool calls it when every cache tier misses.
type Supplier[T any] func() T

// Resetter restores a used value to the same neutral state a Supplier
// produces and returns it, keeping the value's backing storage. Pointer types
// reset in place and return the same pointer; slice types re-slice to zero
// length. It must be idempotent and must not panic; a value that cannot be
// safely reset should be dropped via Pooled.Discard instead of returned.
type Resetter[T any] func(T) T

// Recyclable is implemented by value types that know how to reset themselves.
// Pools without an explicit Resetter call Recycle on every returned value
// that implements it.
type Recyclable interface {
	// Recycle resets the value to its neutral state in place.
	Recycle()
}

// recycle resets v before it re-enters a cache tier. The explicit Resetter
// wins over the Recyclable interface so callers can override reset behavior
// for types they do not own.
func (p *Pool[T]) recycle(v T) T {
	if p.reset != nil {
		return p.reset(v)
	}
	if r, ok := any(v).(Recyclable); ok {
		r.Recycle()
	}
	return v
}

// Ready-made pools for common types. These mirror the reset rules callers
// would otherwise write by hand: truncate without freeing backing storage.

// NewBytes creates a pool of byte slices with the given initial capacity.
// Returned slices always have zero length.
func NewBytes(capacity int) *Pool[[]byte] {
	return New(
		func() []byte { return make([]byte, 0, capacity) },
		func(b []byte) []byte { return b[:0] },
	)
}

// NewBuffers creates a pool of *bytes.Buffer with the given initial capacity.
func NewBuffers(capacity int) *Pool[*bytes.Buffer] {
	return New(
		func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, capacity)) },
		func(b *bytes.Buffer) *bytes.Buffer {
			b.Reset()
			return b
		},
	)
}

// NewStrings creates a pool of string slices with the given initial capacity.
// Element references are cleared on return so pooled slices do not pin the
// strings they used to hold.
func NewStrings(capacity int) *Pool[[]string] {
	return New(
		func() []string { return make([]string, 0, capacity) },
		func(s []string) []string {
			for i := range s {
				s[i] = ""
			}
			return s[:0]
		},
	)
}

// NewMaps creates a pool of map[string]any with the given initial size hint.
// Maps are cleared on return but keep their bucket storage.
func NewMaps(size int) *Pool[map[string]any] {
	return New(
		func() map[string]any { return make(map[string]any, size) },
		func(m map[string]any) map[string]any {
			for k := range m {
				delete(m, k)
			}
			return m
		},
	)
}
