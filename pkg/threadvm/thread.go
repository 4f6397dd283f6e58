// Package threadvm implements the thread subsystem: a fixed collection of
// Threads, each owning an instruction pointer and a register file over a
// shared, read-only ProgramDescriptor. Grounded on the original
// ThreadSubsystem/Thread pair.
package threadvm

import (
	"fmt"
	"io"

	"github.com/oisee/wmm-emulator/pkg/program"
	"github.com/oisee/wmm-emulator/pkg/regfile"
)

// Thread is one cooperative thread of execution.
type Thread struct {
	descriptor *program.Descriptor
	tid        int
	ip         int
	end        int // one past the last instruction this thread may execute
	registers  regfile.File
}

func newThread(descriptor *program.Descriptor, tid, ip, end int) Thread {
	return Thread{
		descriptor: descriptor,
		tid:        tid,
		ip:         ip,
		end:        end,
		registers:  regfile.New(descriptor.RegisterName),
	}
}

// ID returns the thread's index within its subsystem.
func (t *Thread) ID() int { return t.tid }

// IsCompleted reports whether the thread has run off the end of its slice
// of the shared instruction stream. Every thread walks the same
// Descriptor.Instructions; end is len(Instructions) for a single-threaded
// program, or the next thread's starting instruction pointer when several
// threads share one array (see New in subsystem.go).
func (t *Thread) IsCompleted() bool {
	return t.ip >= t.end
}

// NextInstruction returns the instruction the thread is about to execute.
// Callers must check IsCompleted first.
func (t *Thread) NextInstruction() program.Instruction {
	return t.descriptor.Instructions[t.ip]
}

// Advance moves the instruction pointer to the next sequential instruction.
func (t *Thread) Advance() { t.ip++ }

// Jump sets the instruction pointer directly (used by If).
func (t *Thread) Jump(target int) { t.ip = target }

// Local returns the value held in reg.
func (t *Thread) Local(reg program.Register) uint64 { return t.registers.Get(reg) }

// SetLocal stores val into reg.
func (t *Thread) SetLocal(reg program.Register, val uint64) { t.registers.Set(reg, val) }

// Clone returns an independent copy of the thread, sharing the (read-only)
// descriptor but owning its own register file.
func (t *Thread) Clone() Thread {
	clone := *t
	clone.registers = t.registers.Clone()
	return clone
}

// Fprint writes a human-readable snapshot of the thread: its id, next
// instruction (or completion), and register contents.
func (t *Thread) Fprint(w io.Writer, indent int) {
	pad := indentString(indent)
	fmt.Fprintf(w, "%sThread #%d\n", pad, t.tid)
	if t.IsCompleted() {
		fmt.Fprintf(w, "%s  Instructions are completed\n", pad)
	} else {
		fmt.Fprintf(w, "%s  Next instruction is: %s\n", pad, t.NextInstruction())
	}
	fmt.Fprintf(w, "%s  Registers' state:\n", pad)
	for i := 0; i < t.registers.Len(); i++ {
		fmt.Fprintf(w, "%s    %s: %d\n", pad, t.registers.Name(program.Register(i)), t.registers.Value(i))
	}
}

func indentString(n int) string {
	b := make([]byte, n*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
