//go:build !unix

package gc

import "unsafe"

// osReserve falls back to a Go-allocated backing slice on platforms without
// an mmap path. The slice is pinned in the region descriptor so the Go
// runtime keeps the memory alive for the collector's lifetime.
func osReserve(size uintptr) (uintptr, []byte, error) {
	b := make([]byte, size)
	return uintptr(unsafe.Pointer(&b[0])), b, nil
}
