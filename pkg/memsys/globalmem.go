package memsys

import (
	"fmt"
	"io"

	"github.com/oisee/wmm-emulator/pkg/program"
)

// GlobalMemory is the plain backing store shared by every model: a flat
// array of cells, named for the first len(names) entries and anonymous
// (reserve_space) beyond that.
type GlobalMemory struct {
	names  []string
	values []uint64
}

// NewGlobalMemory builds a zero-initialized memory of the given size, with
// cells named per the program descriptor where a name is declared.
func NewGlobalMemory(names []string, size int) GlobalMemory {
	return GlobalMemory{names: names, values: make([]uint64, size)}
}

func (m GlobalMemory) Get(cell program.Cell) uint64 { return m.values[cell] }

func (m *GlobalMemory) Set(cell program.Cell, value uint64) { m.values[cell] = value }

func (m GlobalMemory) Clone() GlobalMemory {
	values := make([]uint64, len(m.values))
	copy(values, m.values)
	return GlobalMemory{names: m.names, values: values}
}

// Fprint writes named cells first, then anonymous cells by index, matching
// the layout the pretty-print contract requires.
func (m GlobalMemory) Fprint(w io.Writer, indent int) {
	pad := indentString(indent)
	fmt.Fprintf(w, "%sGlobal memory:\n", pad)
	for i, v := range m.values {
		name := fmt.Sprintf("#%d", i)
		if i < len(m.names) {
			name = m.names[i]
		}
		fmt.Fprintf(w, "%s  %s: %d\n", pad, name, v)
	}
}

func indentString(n int) string {
	b := make([]byte, n*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
