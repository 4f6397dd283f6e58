package threadvm

import (
	"testing"

	"github.com/oisee/wmm-emulator/pkg/program"
)

func twoThreadDescriptor() *program.Descriptor {
	return &program.Descriptor{
		Instructions: []program.Instruction{{Kind: program.KindFence}, {Kind: program.KindFence}},
		RegisterName: []string{"r0", "r1"},
		CellName:     []string{"x"},
	}
}

func TestSubsystemRunningThreads(t *testing.T) {
	d := twoThreadDescriptor()
	// Thread 0 starts one instruction ahead of thread 1, as if given a
	// later initial instruction pointer on the same shared stream.
	s := New(d, []int{1, 0})

	running := s.RunningThreads()
	if len(running) != 2 || running[0] != 0 || running[1] != 1 {
		t.Fatalf("expected both threads running, got %v", running)
	}

	s.At(0).Advance()
	if !s.At(0).IsCompleted() {
		t.Fatal("thread 0 should be completed after advancing past the shared stream's last instruction")
	}
	running = s.RunningThreads()
	if len(running) != 1 || running[0] != 1 {
		t.Fatalf("expected only thread 1 running, got %v", running)
	}
	if s.IsCompleted() {
		t.Fatal("subsystem should not be completed while thread 1 is running")
	}
}

func TestSubsystemCloneIsIndependent(t *testing.T) {
	d := twoThreadDescriptor()
	s := New(d, []int{0, 0})
	s.At(0).SetLocal(0, 42)

	clone := s.Clone()
	clone.At(0).SetLocal(0, 7)

	if s.At(0).Local(0) != 42 {
		t.Fatalf("mutating the clone's register must not affect the original, got %d", s.At(0).Local(0))
	}
	if clone.At(0).Local(0) != 7 {
		t.Fatalf("clone register should be 7, got %d", clone.At(0).Local(0))
	}
}

func TestRegisterOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic accessing an out-of-range register")
		}
	}()
	d := twoThreadDescriptor()
	s := New(d, []int{0})
	s.At(0).Local(99)
}
