// Package tso implements the total-store-order memory subsystem: a per-
// thread FIFO store buffer, newest-to-oldest forwarding on read, and
// all-threads buffer drain on any non-relaxed fence. Grounded on
// tso_memory_subsystem.cpp; the Go read-forwarding loop walks the buffer
// from its tail correctly (newest first) rather than reproducing the
// off-by-one in the original's backward loop.
package tso

import (
	"fmt"
	"io"

	"github.com/oisee/wmm-emulator/pkg/memsys"
	"github.com/oisee/wmm-emulator/pkg/model"
	"github.com/oisee/wmm-emulator/pkg/program"
)

type entry struct {
	cell  program.Cell
	value uint64
}

// Subsystem is the TSO memory model.
type Subsystem struct {
	mem     memsys.GlobalMemory
	buffers [][]entry // buffers[tid] is a FIFO, oldest at index 0
}

// New builds a TSO subsystem with one empty store buffer per thread.
func New(names []string, size, threadCount int) *Subsystem {
	return &Subsystem{
		mem:     memsys.NewGlobalMemory(names, size),
		buffers: make([][]entry, threadCount),
	}
}

func (s *Subsystem) AvailablePropagations() []memsys.Propagation {
	var props []memsys.Propagation
	for tid, buf := range s.buffers {
		if len(buf) > 0 {
			props = append(props, memsys.Propagation{TID: tid})
		}
	}
	return props
}

func (s *Subsystem) ApplyPropagation(p memsys.Propagation) {
	buf := s.buffers[p.TID]
	if len(buf) == 0 {
		panic("tso: apply_propagation on an empty store buffer")
	}
	head := buf[0]
	s.buffers[p.TID] = buf[1:]
	s.mem.Set(head.cell, head.value)
}

func (s *Subsystem) Read(tid int, r memsys.Read) uint64 {
	buf := s.buffers[tid]
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i].cell == r.Cell {
			return buf[i].value
		}
	}
	return s.mem.Get(r.Cell)
}

func (s *Subsystem) Write(tid int, w memsys.Write) {
	s.buffers[tid] = append(s.buffers[tid], entry{cell: w.Cell, value: w.Value})
	if w.Mode == model.SeqCst {
		s.drainAll()
	}
}

func (s *Subsystem) Fence(tid int, f memsys.Fence) {
	if f.Mode == model.Relaxed {
		return
	}
	s.drainAll()
}

// Rmw performs a full fence (draining every thread's buffer) and then
// applies modify directly to global memory, so the read-modify-write is
// always globally visible when it executes.
func (s *Subsystem) Rmw(tid int, r memsys.Rmw) uint64 {
	s.drainAll()
	prev, next := r.Modify(s.mem.Get(r.Cell))
	s.mem.Set(r.Cell, next)
	return prev
}

// drainAll repeatedly applies every currently-enabled propagation, across
// every thread, until none remain. This is intentionally not scoped to the
// fencing thread: the engine over-synchronizes relative to a strict TSO
// axiomatization, same as the system this is grounded on.
func (s *Subsystem) drainAll() {
	for {
		props := s.AvailablePropagations()
		if len(props) == 0 {
			return
		}
		for _, p := range props {
			s.ApplyPropagation(p)
		}
	}
}

func (s *Subsystem) Clone() memsys.Subsystem {
	buffers := make([][]entry, len(s.buffers))
	for i, buf := range s.buffers {
		if len(buf) == 0 {
			continue
		}
		buffers[i] = append([]entry(nil), buf...)
	}
	return &Subsystem{mem: s.mem.Clone(), buffers: buffers}
}

func (s *Subsystem) Fprint(w io.Writer, indent int) {
	pad := indentString(indent)
	fmt.Fprintf(w, "%sTSO memory subsystem:\n", pad)
	s.mem.Fprint(w, indent+1)
	fmt.Fprintf(w, "%s  Store buffers:\n", pad)
	for tid, buf := range s.buffers {
		fmt.Fprintf(w, "%s    Thread #%d: %v\n", pad, tid, buf)
	}
}

func indentString(n int) string {
	b := make([]byte, n*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
