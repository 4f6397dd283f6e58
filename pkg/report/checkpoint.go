package report

import (
	"encoding/gob"
	"os"
)

// Checkpoint holds enough state to resume an exhaustive exploration: the
// terminals already found, and the selection-index path of each DFS branch
// still left to visit when the run that wrote this checkpoint stopped.
// Grounded on result.Checkpoint's gob persistence.
type Checkpoint struct {
	Terminals []Terminal
	Frontier  [][]int // each entry is a path of selection indices from the root
	Done      bool    // true once Frontier is empty because exploration ran to completion
}

func init() {
	gob.Register(Terminal{})
}

// SaveCheckpoint writes exploration state to path.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint reads exploration state from path.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}
