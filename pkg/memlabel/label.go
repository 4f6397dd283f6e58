// Package memlabel derives the memory-transition label of an instruction:
// the shape a memory subsystem actually reasons about (Read/Write/Rmw/Fence/
// Epsilon), decoupled from how that instruction's operands were spelled out
// in the source program. Grounded on the original
// InstructionToLabelConverter visitor.
package memlabel

import (
	"github.com/oisee/wmm-emulator/pkg/model"
	"github.com/oisee/wmm-emulator/pkg/program"
)

// Kind tags which label variant Derive produced.
type Kind int

const (
	KindEpsilon Kind = iota
	KindRead
	KindWrite
	KindRmw
	KindFence
)

// Modification is the pure, local function an Rmw label carries: given the
// cell's current value, it returns the previous value and the new value the
// instruction's semantics give the cell. The memory subsystem calls it and
// stores next back into the cell itself.
type Modification func(cell uint64) (prev, next uint64)

// Label is the memory-transition label of one instruction, evaluated against
// the executing thread's current register values. Only the fields relevant
// to Kind are populated.
type Label struct {
	Kind Kind

	Mode model.AccessMode // Read, Write, Rmw, Fence

	Cell program.Cell // Read, Write, Rmw — address register's value

	Value uint64 // Write — value register's value

	Modify Modification // Rmw
}

// Derive computes the transition label of instr as seen by a thread whose
// registers currently hold the given values. This mirrors
// GetTransitionLabelByInstruction: a single dispatch over instruction kind,
// reading whatever registers the kind needs at derivation time so RMW
// closures capture a frozen snapshot rather than live register references.
func Derive(instr program.Instruction, regs RegisterReader) Label {
	switch instr.Kind {
	case program.KindCas:
		expected := regs.Get(instr.Expected)
		desired := regs.Get(instr.Desired)
		return Label{
			Kind: KindRmw,
			Mode: instr.Mode,
			Cell: program.Cell(regs.Get(instr.Addr)),
			Modify: func(cell uint64) (uint64, uint64) {
				if cell == expected {
					return cell, desired
				}
				return cell, cell
			},
		}
	case program.KindFai:
		increment := regs.Get(instr.Increment)
		return Label{
			Kind: KindRmw,
			Mode: instr.Mode,
			Cell: program.Cell(regs.Get(instr.Addr)),
			Modify: func(cell uint64) (uint64, uint64) {
				return cell, cell + increment
			},
		}
	case program.KindLoad:
		return Label{
			Kind: KindRead,
			Mode: instr.Mode,
			Cell: program.Cell(regs.Get(instr.Addr)),
		}
	case program.KindStore:
		return Label{
			Kind:  KindWrite,
			Mode:  instr.Mode,
			Cell:  program.Cell(regs.Get(instr.Addr)),
			Value: regs.Get(instr.Src),
		}
	case program.KindFence:
		return Label{Kind: KindFence, Mode: instr.Mode}
	case program.KindRegConst, program.KindRegBinOp, program.KindIf:
		return Label{Kind: KindEpsilon}
	default:
		panic("memlabel: unknown instruction kind")
	}
}

// RegisterReader is the minimal register access Derive needs; regfile.File
// already satisfies it. Kept as an interface here so memlabel does not need
// to import regfile and create a needless dependency edge.
type RegisterReader interface {
	Get(reg program.Register) uint64
}
