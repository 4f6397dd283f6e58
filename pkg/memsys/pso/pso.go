// Package pso implements the partial-store-order memory subsystem: one FIFO
// store buffer per (thread, cell) pair, newest-value forwarding per cell,
// and all-threads-all-cells buffer drain on any non-relaxed fence. Grounded
// on pso_memory_subsystem.cpp.
package pso

import (
	"fmt"
	"io"

	"github.com/oisee/wmm-emulator/pkg/memsys"
	"github.com/oisee/wmm-emulator/pkg/model"
	"github.com/oisee/wmm-emulator/pkg/program"
)

// Subsystem is the PSO memory model.
type Subsystem struct {
	mem     memsys.GlobalMemory
	buffers [][][]uint64 // buffers[tid][cell] is a FIFO, oldest at index 0
}

// New builds a PSO subsystem with one empty per-(thread,cell) buffer.
func New(names []string, size, threadCount int) *Subsystem {
	buffers := make([][][]uint64, threadCount)
	for tid := range buffers {
		buffers[tid] = make([][]uint64, size)
	}
	return &Subsystem{mem: memsys.NewGlobalMemory(names, size), buffers: buffers}
}

func (s *Subsystem) AvailablePropagations() []memsys.Propagation {
	var props []memsys.Propagation
	for tid, cells := range s.buffers {
		for cell, buf := range cells {
			if len(buf) > 0 {
				props = append(props, memsys.Propagation{TID: tid, Cell: program.Cell(cell)})
			}
		}
	}
	return props
}

func (s *Subsystem) ApplyPropagation(p memsys.Propagation) {
	buf := s.buffers[p.TID][p.Cell]
	if len(buf) == 0 {
		panic("pso: apply_propagation on an empty store buffer")
	}
	value := buf[0]
	s.buffers[p.TID][p.Cell] = buf[1:]
	s.mem.Set(p.Cell, value)
}

func (s *Subsystem) Read(tid int, r memsys.Read) uint64 {
	buf := s.buffers[tid][r.Cell]
	if len(buf) == 0 {
		return s.mem.Get(r.Cell)
	}
	return buf[len(buf)-1]
}

func (s *Subsystem) Write(tid int, w memsys.Write) {
	s.buffers[tid][w.Cell] = append(s.buffers[tid][w.Cell], w.Value)
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

func (s *Subsystem) Rmw(tid int, r memsys.Rmw) uint64 {
	s.drainAll()
	prev, next := r.Modify(s.mem.Get(r.Cell))
	s.mem.Set(r.Cell, next)
	return prev
}

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
	buffers := make([][][]uint64, len(s.buffers))
	for tid, cells := range s.buffers {
		buffers[tid] = make([][]uint64, len(cells))
		for cell, buf := range cells {
			if len(buf) == 0 {
				continue
			}
			buffers[tid][cell] = append([]uint64(nil), buf...)
		}
	}
	return &Subsystem{mem: s.mem.Clone(), buffers: buffers}
}

func (s *Subsystem) Fprint(w io.Writer, indent int) {
	pad := indentString(indent)
	fmt.Fprintf(w, "%sPSO memory subsystem:\n", pad)
	s.mem.Fprint(w, indent+1)
	fmt.Fprintf(w, "%s  Store buffers:\n", pad)
	for tid, cells := range s.buffers {
		fmt.Fprintf(w, "%s    Thread #%d:\n", pad, tid)
		for cell, buf := range cells {
			if len(buf) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s      cell #%d: %v\n", pad, cell, buf)
		}
	}
}

func indentString(n int) string {
	b := make([]byte, n*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
