// Package sc implements the sequentially-consistent memory subsystem: pure
// shared memory, no buffering, no ε-transitions. Grounded on
// sc_memory_subsystem.cpp.
package sc

import (
	"fmt"
	"io"

	"github.com/oisee/wmm-emulator/pkg/memsys"
)

// Subsystem is the SC memory model: read/write go straight to global memory,
// fence is a no-op, and rmw applies its modification directly.
type Subsystem struct {
	mem memsys.GlobalMemory
}

// New builds an SC subsystem over size cells named per names.
func New(names []string, size int) *Subsystem {
	return &Subsystem{mem: memsys.NewGlobalMemory(names, size)}
}

func (s *Subsystem) AvailablePropagations() []memsys.Propagation { return nil }

// ApplyPropagation is a fatal programmer error under SC — there is nothing
// to propagate.
func (s *Subsystem) ApplyPropagation(p memsys.Propagation) {
	panic("sc: apply_propagation called, but SC never produces propagations")
}

func (s *Subsystem) Read(tid int, r memsys.Read) uint64 {
	return s.mem.Get(r.Cell)
}

func (s *Subsystem) Write(tid int, w memsys.Write) {
	s.mem.Set(w.Cell, w.Value)
}

func (s *Subsystem) Fence(tid int, f memsys.Fence) {}

func (s *Subsystem) Rmw(tid int, r memsys.Rmw) uint64 {
	prev, next := r.Modify(s.mem.Get(r.Cell))
	s.mem.Set(r.Cell, next)
	return prev
}

func (s *Subsystem) Clone() memsys.Subsystem {
	return &Subsystem{mem: s.mem.Clone()}
}

func (s *Subsystem) Fprint(w io.Writer, indent int) {
	pad := indentString(indent)
	fmt.Fprintf(w, "%sSC memory subsystem:\n", pad)
	s.mem.Fprint(w, indent+1)
}

func indentString(n int) string {
	b := make([]byte, n*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
