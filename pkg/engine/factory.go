package engine

import (
	"fmt"

	"github.com/oisee/wmm-emulator/pkg/memsys"
	"github.com/oisee/wmm-emulator/pkg/memsys/pso"
	"github.com/oisee/wmm-emulator/pkg/memsys/sc"
	"github.com/oisee/wmm-emulator/pkg/memsys/tso"
	"github.com/oisee/wmm-emulator/pkg/program"
	"github.com/oisee/wmm-emulator/pkg/threadvm"
)

// NewMemorySubsystem builds the memory subsystem named by model ("sc", "tso"
// or "pso"), mirroring CreateMemorySubsystem's dispatch-by-string factory.
func NewMemorySubsystem(descriptor *program.Descriptor, threadCount int, model string) (memsys.Subsystem, error) {
	size := descriptor.CellCount()
	switch model {
	case "sc":
		return sc.New(descriptor.CellName, size), nil
	case "tso":
		return tso.New(descriptor.CellName, size, threadCount), nil
	case "pso":
		return pso.New(descriptor.CellName, size, threadCount), nil
	default:
		return nil, fmt.Errorf("engine: unknown operational model %q", model)
	}
}

// NewConfiguration builds the initial Configuration for a program: one
// thread per entry in instructionPointers and a memory subsystem of the
// named model.
func NewConfiguration(descriptor *program.Descriptor, instructionPointers []int, model string) (Configuration, error) {
	if len(instructionPointers) == 0 {
		return Configuration{}, fmt.Errorf("engine: expected a positive number of instruction pointers")
	}
	memory, err := NewMemorySubsystem(descriptor, len(instructionPointers), model)
	if err != nil {
		return Configuration{}, err
	}
	threads := threadvm.New(descriptor, instructionPointers)
	return Configuration{Threads: threads, Memory: memory}, nil
}
