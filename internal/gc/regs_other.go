//go:build !amd64 && !arm64

package gc

// dumpRegisters is a no-op on architectures without an assembly spill. The
// stack scan still covers values the compiler has spilled; register-only
// pointers are not observed, so callers on these platforms should keep live
// pointers in addressed locals or registered root ranges across a collection.
func dumpRegisters(buf *registerFile) {}
