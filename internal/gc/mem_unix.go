//go:build unix

package gc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// osReserve obtains size bytes of anonymous private memory directly from the
// kernel. The mapping lives outside the Go heap, so the runtime never moves
// or reclaims it; the returned slice is pinned in the region descriptor only
// to keep the mapping's length on record. Regions are never unmapped.
func osReserve(size uintptr) (uintptr, []byte, error) {
	b, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, nil, err
	}
	return uintptr(unsafe.Pointer(&b[0])), b, nil
}
