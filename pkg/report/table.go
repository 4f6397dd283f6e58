// Package report collects the terminal configurations an exhaustive
// exploration reaches and lets a long-running exploration checkpoint its
// frontier to disk. Grounded on pkg/result's Table/Checkpoint pair.
package report

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Terminal is a snapshot of one terminal configuration reached during
// exploration: the final value of every memory cell and, per thread, every
// register, recorded as plain values so the table never has to hold a live
// Configuration (and its memory subsystem interface) around.
type Terminal struct {
	Memory    []uint64
	Registers [][]uint64 // Registers[tid] is that thread's final register bank
	Path      []int      // the sequence of selection indices that reached this terminal
}

// Table accumulates Terminals discovered by possibly many concurrent DFS
// branches.
type Table struct {
	mu        sync.Mutex
	terminals []Terminal
}

// NewTable creates an empty table.
func NewTable() *Table { return &Table{} }

// Add inserts a terminal into the table.
func (t *Table) Add(term Terminal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.terminals = append(t.terminals, term)
}

// Terminals returns a copy of every recorded terminal.
func (t *Table) Terminals() []Terminal {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Terminal, len(t.terminals))
	copy(out, t.terminals)
	return out
}

// Len reports how many terminals have been recorded.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.terminals)
}

// DistinctMemoryStates groups terminals by their final memory contents,
// useful for scenario assertions like "some terminal has x=0,y=0".
func (t *Table) DistinctMemoryStates() [][]uint64 {
	terms := t.Terminals()
	seen := map[string]bool{}
	var states [][]uint64
	for _, term := range terms {
		key := fmt.Sprint(term.Memory)
		if seen[key] {
			continue
		}
		seen[key] = true
		states = append(states, term.Memory)
	}
	sort.Slice(states, func(i, j int) bool { return fmt.Sprint(states[i]) < fmt.Sprint(states[j]) })
	return states
}

// Fprint writes a short summary of the table: the number of terminals found
// and each distinct memory state observed.
func (t *Table) Fprint(w io.Writer) {
	terms := t.Terminals()
	fmt.Fprintf(w, "Exhaustive exploration: %d terminal configuration(s)\n", len(terms))
	for _, state := range t.DistinctMemoryStates() {
		fmt.Fprintf(w, "  memory = %v\n", state)
	}
}
