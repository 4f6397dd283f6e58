package threadvm

import (
	"io"
	"sort"

	"github.com/oisee/wmm-emulator/pkg/program"
)

// Subsystem is a fixed-length collection of Threads, one per entry in the
// instruction-pointer list the program was started with.
type Subsystem struct {
	descriptor *program.Descriptor
	threads    []Thread
}

// New builds a Subsystem with one Thread per initial instruction pointer.
//
// All threads walk the same Descriptor.Instructions array, so a thread's
// end boundary is the next-higher starting instruction pointer among its
// siblings (or the array length, for the thread started furthest along).
// With a single instruction pointer this reduces to the original one
// thread, one array rule; with several it keeps each thread confined to
// its own slice of the shared stream instead of falling through into the
// next thread's code once it runs out of its own.
func New(descriptor *program.Descriptor, instructionPointers []int) Subsystem {
	sorted := append([]int(nil), instructionPointers...)
	sort.Ints(sorted)

	end := func(ip int) int {
		for _, candidate := range sorted {
			if candidate > ip {
				return candidate
			}
		}
		return len(descriptor.Instructions)
	}

	threads := make([]Thread, len(instructionPointers))
	for i, ip := range instructionPointers {
		threads[i] = newThread(descriptor, i, ip, end(ip))
	}
	return Subsystem{descriptor: descriptor, threads: threads}
}

// IsCompleted reports whether every thread has finished.
func (s *Subsystem) IsCompleted() bool {
	for i := range s.threads {
		if !s.threads[i].IsCompleted() {
			return false
		}
	}
	return true
}

// RunningThreads returns the ids of threads that have not yet completed, in
// ascending order.
func (s *Subsystem) RunningThreads() []int {
	running := make([]int, 0, len(s.threads))
	for i := range s.threads {
		if !s.threads[i].IsCompleted() {
			running = append(running, i)
		}
	}
	return running
}

// At returns a pointer to thread tid, for in-place mutation.
func (s *Subsystem) At(tid int) *Thread { return &s.threads[tid] }

// Len returns the thread count.
func (s *Subsystem) Len() int { return len(s.threads) }

// Clone returns an independent copy of the subsystem.
func (s *Subsystem) Clone() Subsystem {
	threads := make([]Thread, len(s.threads))
	for i := range s.threads {
		threads[i] = s.threads[i].Clone()
	}
	return Subsystem{descriptor: s.descriptor, threads: threads}
}

// Fprint writes a human-readable snapshot of every thread.
func (s *Subsystem) Fprint(w io.Writer, indent int) {
	pad := indentString(indent)
	io.WriteString(w, pad+"Threads info:\n")
	for i := range s.threads {
		s.threads[i].Fprint(w, indent+1)
	}
}
