//go:build amd64

package gc

// dumpRegisters stores the callee-saved register set into buf. Implemented
// in assembly; see regs_amd64.s.
//
//go:noescape
func dumpRegisters(buf *registerFile)
