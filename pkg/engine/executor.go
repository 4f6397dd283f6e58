// Package engine implements the controllable executor: the component that
// drives a Configuration one transition at a time, exposing exactly the
// enumeration a selection strategy needs (pkg/strategy) and nothing more.
// Grounded on controllable_executor.cpp.
package engine

import (
	"fmt"
	"io"

	"github.com/oisee/wmm-emulator/pkg/memlabel"
	"github.com/oisee/wmm-emulator/pkg/memsys"
	"github.com/oisee/wmm-emulator/pkg/program"
	"github.com/oisee/wmm-emulator/pkg/threadvm"
)

// Configuration is the full emulator state at one point in an execution: the
// thread subsystem plus the memory subsystem. A Configuration owns both and
// is the unit of cloning for exhaustive exploration.
type Configuration struct {
	Threads threadvm.Subsystem
	Memory  memsys.Subsystem
}

// IsTerminal reports whether no further transition is possible: every thread
// is completed and the memory subsystem has nothing left to propagate.
func (c *Configuration) IsTerminal() bool {
	return c.Threads.IsCompleted() && len(c.Memory.AvailablePropagations()) == 0
}

// Clone returns an independent deep copy.
func (c *Configuration) Clone() Configuration {
	return Configuration{Threads: c.Threads.Clone(), Memory: c.Memory.Clone()}
}

// Fprint writes a full human-readable snapshot: thread info followed by
// memory subsystem state.
func (c *Configuration) Fprint(w io.Writer, indent int) {
	c.Threads.Fprint(w, indent)
	c.Memory.Fprint(w, indent)
}

// MemorySnapshot reads every one of the first cellCount cells, for reports
// that want a plain value copy of final memory state rather than a live
// handle into the subsystem.
func (c *Configuration) MemorySnapshot(cellCount int) []uint64 {
	out := make([]uint64, cellCount)
	for i := range out {
		out[i] = c.Memory.Read(0, memsys.Read{Cell: program.Cell(i)})
	}
	return out
}

// RegisterSnapshot reads thread tid's first n registers, for reports.
func (c *Configuration) RegisterSnapshot(tid, n int) []uint64 {
	out := make([]uint64, n)
	thread := c.Threads.At(tid)
	for i := range out {
		out[i] = thread.Local(program.Register(i))
	}
	return out
}

// Executor wraps a Configuration and exposes the enumeration/selection
// contract a strategy drives. It is the sole place instructions are
// actually dispatched.
type Executor struct {
	config Configuration
}

// New wraps config in an Executor.
func New(config Configuration) *Executor {
	return &Executor{config: config}
}

// Configuration exposes the wrapped state, read-only from the strategy's
// point of view except through the stepping methods below.
func (e *Executor) Configuration() *Configuration { return &e.config }

// IsDone reports whether the driver loop should stop.
func (e *Executor) IsDone() bool { return e.config.IsTerminal() }

// EnabledThreadSteps returns the running thread ids, ascending.
func (e *Executor) EnabledThreadSteps() []int {
	return e.config.Threads.RunningThreads()
}

// EnabledPropagations returns the memory subsystem's currently enabled
// ε-transitions.
func (e *Executor) EnabledPropagations() []memsys.Propagation {
	return e.config.Memory.AvailablePropagations()
}

// ThreadStep executes one instruction of thread tid. This is the one place
// the instruction→label derivation (pkg/memlabel) and dispatch to the memory
// subsystem meet; the whole call is one atomic step of the configuration.
func (e *Executor) ThreadStep(tid int) error {
	thread := e.config.Threads.At(tid)
	instr := thread.NextInstruction()
	label := memlabel.Derive(instr, threadRegisterReader{thread})

	switch label.Kind {
	case memlabel.KindRead:
		value := e.config.Memory.Read(tid, memsys.Read{Mode: label.Mode, Cell: label.Cell})
		thread.SetLocal(instr.Dst, value)
	case memlabel.KindWrite:
		e.config.Memory.Write(tid, memsys.Write{Mode: label.Mode, Value: label.Value, Cell: label.Cell})
	case memlabel.KindFence:
		e.config.Memory.Fence(tid, memsys.Fence{Mode: label.Mode})
	case memlabel.KindRmw:
		value := e.config.Memory.Rmw(tid, memsys.Rmw{Mode: label.Mode, Cell: label.Cell, Modify: label.Modify})
		thread.SetLocal(instr.Dst, value)
	case memlabel.KindEpsilon:
		// handled below, purely local to the thread
	default:
		return fmt.Errorf("engine: unhandled label kind %v", label.Kind)
	}

	if err := e.applyLocalEffect(thread, instr); err != nil {
		return err
	}
	return nil
}

// applyLocalEffect performs the parts of a step that never touch the memory
// subsystem: RegConst/RegBinOp assignment, If branching, and instruction
// pointer advancement for every non-branch instruction.
func (e *Executor) applyLocalEffect(thread *threadvm.Thread, instr program.Instruction) error {
	switch instr.Kind {
	case program.KindRegConst:
		thread.SetLocal(instr.Dst, instr.Value)
	case program.KindRegBinOp:
		lhs := thread.Local(instr.Lhs)
		rhs := thread.Local(instr.Rhs)
		result, err := instr.Op.Apply(lhs, rhs)
		if err != nil {
			return fmt.Errorf("engine: thread evaluating %v: %w", instr, err)
		}
		thread.SetLocal(instr.Dst, result)
	case program.KindIf:
		if thread.Local(instr.Cond) == 0 {
			thread.Advance()
		} else {
			thread.Jump(instr.Target)
		}
		return nil
	}
	thread.Advance()
	return nil
}

// PropagationStep applies one enabled ε-transition.
func (e *Executor) PropagationStep(p memsys.Propagation) {
	e.config.Memory.ApplyPropagation(p)
}

// Select dispatches a chosen index against the enumeration order:
// running-thread transitions first (ascending tid), then propagations in
// the memory subsystem's own order.
func (e *Executor) Select(index int, threads []int, props []memsys.Propagation) error {
	if index < len(threads) {
		return e.ThreadStep(threads[index])
	}
	propIndex := index - len(threads)
	if propIndex < 0 || propIndex >= len(props) {
		return fmt.Errorf("engine: selection index %d out of range [0, %d)", index, len(threads)+len(props))
	}
	e.PropagationStep(props[propIndex])
	return nil
}

// Clone returns an Executor wrapping an independent copy of the current
// configuration, for branching exploration.
func (e *Executor) Clone() *Executor {
	return &Executor{config: e.config.Clone()}
}

// PrintSnapshot writes the current configuration.
func (e *Executor) PrintSnapshot(w io.Writer, indent int) {
	e.config.Fprint(w, indent)
}

// threadRegisterReader adapts *threadvm.Thread to memlabel.RegisterReader.
type threadRegisterReader struct{ t *threadvm.Thread }

func (r threadRegisterReader) Get(reg program.Register) uint64 { return r.t.Local(reg) }
