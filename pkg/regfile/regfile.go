// Package regfile implements one thread's local register storage: a fixed
// slice of uint64 values sized to the whole program's register count,
// grounded on the original ThreadLocalStorage (one value_ slot per declared
// register name, bounds-checked accessors that fail fatally out of range).
package regfile

import (
	"fmt"

	"github.com/oisee/wmm-emulator/pkg/program"
)

// File is one thread's register bank.
type File struct {
	names  []string
	values []uint64
}

// New builds a register file sized and named after the program's whole
// register namespace. Every thread gets its own File but all Files share the
// same names slice (read-only, so aliasing it is safe).
func New(names []string) File {
	return File{names: names, values: make([]uint64, len(names))}
}

// Get returns the value of reg, failing fatally if reg is out of range —
// this is invariant I1 in the emulator: any such access is a setup bug the
// parser should have prevented, never a condition callers should recover
// from.
func (f File) Get(reg program.Register) uint64 {
	if int(reg) < 0 || int(reg) >= len(f.values) {
		panic(fmt.Sprintf("regfile: tried to access an invalid register %d", reg))
	}
	return f.values[reg]
}

// Set stores val into reg, with the same bounds contract as Get.
func (f *File) Set(reg program.Register, val uint64) {
	if int(reg) < 0 || int(reg) >= len(f.values) {
		panic(fmt.Sprintf("regfile: tried to access an invalid register %d", reg))
	}
	f.values[reg] = val
}

// Clone returns an independent copy suitable for a cloned configuration.
func (f File) Clone() File {
	values := make([]uint64, len(f.values))
	copy(values, f.values)
	return File{names: f.names, values: values}
}

// Len reports the register count.
func (f File) Len() int { return len(f.values) }

// Name returns the declared name of reg, for snapshot printing.
func (f File) Name(reg program.Register) string { return f.names[reg] }

// Value returns the value at slot i, for snapshot printing in declaration
// order.
func (f File) Value(i int) uint64 { return f.values[i] }
