package program

// Descriptor is the immutable, parsed form of a source program: a single
// flat instruction stream shared by every thread (each thread only differs
// in where its instruction pointer starts, per the CLI's instruction-
// pointer list), the names of every register seen anywhere in the program
// (indexed by Register), and the names of every shared-state cell (indexed
// by Cell). A Descriptor is built once by pkg/source and shared read-only
// by every thread of every cloned configuration.
type Descriptor struct {
	Instructions []Instruction
	RegisterName []string
	CellName     []string
}

// RegisterCount is the size every thread's register file must have.
func (d *Descriptor) RegisterCount() int { return len(d.RegisterName) }

// CellCount is the number of shared memory cells the program declares.
func (d *Descriptor) CellCount() int { return len(d.CellName) }
