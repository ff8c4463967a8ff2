package gc

import "unsafe"

// header prefixes every managed block, free or allocated. It is a layout
// contract over raw region memory, never an owned Go value: headers are
// materialized by reinterpreting region addresses and live exactly as long
// as their region does.
type header struct {
	flags    uintptr
	size     uintptr // payload bytes, exclusive of the header, pointer-aligned
	nextFree *header // ring link; meaningful only while the block is free
}

const (
	ptrSize    = unsafe.Sizeof(uintptr(0))
	headerSize = unsafe.Sizeof(header{})
)

// Block flag bits.
const (
	flagAlloc uintptr = 1 << 0 // block is handed out to a user
	flagMark  uintptr = 1 << 1 // block is reachable in the current cycle
)

func (h *header) allocated() bool { return h.flags&flagAlloc != 0 }
func (h *header) marked() bool    { return h.flags&flagMark != 0 }

// addr returns the header's own address for ordering arithmetic.
func addr(h *header) uintptr {
	return uintptr(unsafe.Pointer(h))
}

// payload returns the address immediately after the header.
func (h *header) payload() unsafe.Pointer {
	return unsafe.Pointer(addr(h) + headerSize)
}

// next returns the physically adjacent header: the address just past this
// block's payload. Valid for every block because a region's header chain is
// a complete partition of the region.
func (h *header) next() *header {
	return (*header)(unsafe.Pointer(addr(h) + headerSize + h.size))
}

// headerOf recovers the header from a payload pointer handed out by Alloc.
func headerOf(ptr unsafe.Pointer) *header {
	return (*header)(unsafe.Pointer(uintptr(ptr) - headerSize))
}

// alignUp rounds n up to a multiple of align, which must be a power of two.
func alignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// memclr zeroes size bytes starting at p.
func memclr(p unsafe.Pointer, size uintptr) {
	b := unsafe.Slice((*byte)(p), size)
	for i := range b {
		b[i] = 0
	}
}
