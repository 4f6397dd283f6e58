// Package program holds the instruction IR and the per-program descriptor
// that every thread of every cloned configuration shares read-only.
package program

import "github.com/oisee/wmm-emulator/pkg/model"

// Register indexes a thread-local register slot. Register indices are
// allocated in first-sight order across the whole source program (see
// pkg/source), so the register file size equals the total number of
// distinct register names anywhere in the program, not just in one thread.
type Register int

// Cell indexes a shared memory cell.
type Cell int

// Kind tags the variant an Instruction carries. Go has no native sum type,
// so Instruction is a flat struct with a Kind discriminant plus the union of
// fields any kind might need — the same shape inst.Instruction uses for a
// fixed two-field union, widened here because the kind set itself varies.
type Kind int

const (
	KindCas Kind = iota
	KindFai
	KindLoad
	KindStore
	KindFence
	KindRegConst
	KindRegBinOp
	KindIf
)

func (k Kind) String() string {
	switch k {
	case KindCas:
		return "Cas"
	case KindFai:
		return "Fai"
	case KindLoad:
		return "Load"
	case KindStore:
		return "Store"
	case KindFence:
		return "Fence"
	case KindRegConst:
		return "RegConst"
	case KindRegBinOp:
		return "RegBinOp"
	case KindIf:
		return "If"
	default:
		return "UnknownKind"
	}
}

// Instruction is one IR instruction. Only the fields relevant to Kind are
// populated; the rest are zero.
type Instruction struct {
	Kind Kind

	Mode model.AccessMode // Load, Store, Fence, Cas, Fai

	Dst Register // Load, Cas, Fai, RegConst, RegBinOp (destination register)

	// Addr holds the register whose *value* is the memory address used by
	// Load, Store, Cas and Fai — the address is computed at execution time,
	// not fixed at parse time.
	Addr Register

	// Cas
	Expected Register
	Desired  Register

	// Fai
	Increment Register

	// RegBinOp
	Lhs, Rhs Register
	Op       model.BinOp

	// RegConst: either Value is used directly, or — per the source
	// language's conflation of literals and shared-state names — Value
	// was resolved from a memory cell's declared address at parse time.
	Value uint64

	// Store
	Src Register

	// If
	Cond   Register
	Target int // absolute index into the shared instruction stream

	// text is the original source line, kept alongside the structured
	// fields so trace output can show it without re-deriving it from the
	// IR (mirrors instructions_str_ alongside instructions_ in the thread
	// subsystem this is grounded on).
	text string
}

// String renders the instruction the way the source language spells it.
func (i Instruction) String() string {
	return i.text
}

// SetText attaches the original source line; called once by the parser.
func (i *Instruction) SetText(s string) { i.text = s }
