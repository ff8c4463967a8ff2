package gc

// registerFile receives a snapshot of the callee-saved register set. Its
// exact width is an upper bound across the supported architectures; unused
// slots stay zero and fall out of the mark resolve immediately.
type registerFile [8]uintptr
