// Package memsys defines the common memory-subsystem contract and the small
// value types (Read/Write/Fence/Rmw requests, Propagation descriptors) every
// model (sc, tso, pso) shares. Grounded on the original MemorySubsystem
// interface and the per-model *MemorySubsystem.{cpp,h} pairs.
package memsys

import (
	"io"

	"github.com/oisee/wmm-emulator/pkg/memlabel"
	"github.com/oisee/wmm-emulator/pkg/model"
	"github.com/oisee/wmm-emulator/pkg/program"
)

// Read is a memory read request.
type Read struct {
	Mode model.AccessMode
	Cell program.Cell
}

// Write is a memory write request.
type Write struct {
	Mode  model.AccessMode
	Value uint64
	Cell  program.Cell
}

// Fence is a fence request.
type Fence struct {
	Mode model.AccessMode
}

// Rmw is a read-modify-write request.
type Rmw struct {
	Mode   model.AccessMode
	Cell   program.Cell
	Modify memlabel.Modification
}

// Propagation identifies one enabled ε-transition: moving a buffered write
// into global memory. Its fields are interpreted only by the subsystem that
// produced it; TSO only ever needs a thread id, PSO needs a (thread, cell)
// pair, and SC never produces any.
type Propagation struct {
	TID  int
	Cell program.Cell
}

// Subsystem is the contract every memory model (sc, tso, pso) implements.
// The choice of model affects only internal state and these four transition
// operations; callers (pkg/engine) are written once against this interface.
type Subsystem interface {
	AvailablePropagations() []Propagation
	ApplyPropagation(p Propagation)

	Read(tid int, r Read) uint64
	Write(tid int, w Write)
	Fence(tid int, f Fence)
	Rmw(tid int, r Rmw) uint64

	Clone() Subsystem
	Fprint(w io.Writer, indent int)
}
