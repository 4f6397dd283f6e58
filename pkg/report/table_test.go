package report

import "testing"

func TestTableDistinctMemoryStates(t *testing.T) {
	table := NewTable()
	table.Add(Terminal{Memory: []uint64{0, 0}})
	table.Add(Terminal{Memory: []uint64{0, 0}}) // duplicate
	table.Add(Terminal{Memory: []uint64{1, 0}})

	states := table.DistinctMemoryStates()
	if len(states) != 2 {
		t.Fatalf("expected 2 distinct memory states, got %d: %v", len(states), states)
	}
	if table.Len() != 3 {
		t.Fatalf("expected all 3 terminals retained, got %d", table.Len())
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/checkpoint.gob"

	original := &Checkpoint{
		Terminals: []Terminal{{Memory: []uint64{1, 2}, Path: []int{0, 1}}},
		Frontier:  [][]int{{0}, {1, 0}},
	}
	if err := SaveCheckpoint(path, original); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if len(loaded.Terminals) != 1 || loaded.Terminals[0].Memory[1] != 2 {
		t.Fatalf("loaded checkpoint does not match: %+v", loaded)
	}
	if len(loaded.Frontier) != 2 {
		t.Fatalf("expected 2 frontier entries, got %d", len(loaded.Frontier))
	}
}
