package strategy

import (
	"context"
	"strings"
	"testing"

	"github.com/oisee/wmm-emulator/pkg/engine"
	"github.com/oisee/wmm-emulator/pkg/model"
	"github.com/oisee/wmm-emulator/pkg/program"
)

// messagePassing builds the classic store-buffer scenario: T0 stores to x
// then reads y, T1 stores to y then reads x, all with the given mode. Both
// bodies sit back to back in one shared instruction stream; T0 starts at
// instruction 0, T1 at the first instruction of its own body.
func messagePassing(mode model.AccessMode) *program.Descriptor {
	body := func(storeCell, loadCell program.Register) []program.Instruction {
		return []program.Instruction{
			{Kind: program.KindRegConst, Dst: 0, Value: uint64(storeCell)}, // raddr = &storeCell
			{Kind: program.KindRegConst, Dst: 1, Value: 1},                 // one = 1
			{Kind: program.KindStore, Mode: mode, Addr: 0, Src: 1},
			{Kind: program.KindRegConst, Dst: 2, Value: uint64(loadCell)}, // laddr = &loadCell
			{Kind: program.KindLoad, Mode: mode, Addr: 2, Dst: 3},         // r = *laddr
		}
	}
	instructions := append(body(0, 1), body(1, 0)...) // T0: x=1; r=y -- T1: y=1; r=x
	return &program.Descriptor{
		Instructions: instructions,
		RegisterName: []string{"raddr", "one", "laddr", "r"},
		CellName:     []string{"x", "y"},
	}
}

func TestExhaustiveFindsReorderingUnderTSO(t *testing.T) {
	descriptor := messagePassing(model.Relaxed)
	config, err := engine.NewConfiguration(descriptor, []int{0, 5}, "tso")
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}
	exhaustive := NewExhaustive(2)
	if err := exhaustive.Explore(context.Background(), engine.New(config), 2, 2, 4); err != nil {
		t.Fatalf("Explore: %v", err)
	}
	if exhaustive.Results.Len() == 0 {
		t.Fatal("expected at least one terminal configuration")
	}
	if len(exhaustive.Frontier) != 0 {
		t.Fatalf("a completed exploration should leave no frontier, got %v", exhaustive.Frontier)
	}

	// Register 3 ("r") holds what each thread read of the other's cell.
	// Under TSO's relaxed stores both threads may still read 0 at a
	// terminal, since a propagation need not have happened yet.
	foundBothZero := false
	for _, term := range exhaustive.Results.Terminals() {
		if len(term.Registers) == 2 && term.Registers[0][3] == 0 && term.Registers[1][3] == 0 {
			foundBothZero = true
		}
	}
	if !foundBothZero {
		t.Fatal("expected at least one terminal where both threads observed the reordered stores as 0")
	}
}

func TestExhaustiveResumesFromFrontier(t *testing.T) {
	descriptor := messagePassing(model.Relaxed)

	config, err := engine.NewConfiguration(descriptor, []int{0, 5}, "tso")
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}
	full := NewExhaustive(2)
	if err := full.Explore(context.Background(), engine.New(config), 2, 2, 4); err != nil {
		t.Fatalf("Explore: %v", err)
	}

	interruptedConfig, err := engine.NewConfiguration(descriptor, []int{0, 5}, "tso")
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}
	interrupted := NewExhaustive(2)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := interrupted.Explore(cancelled, engine.New(interruptedConfig), 2, 2, 4); err == nil {
		t.Fatal("expected Explore to report the cancellation")
	}
	if len(interrupted.Frontier) == 0 {
		t.Fatal("expected a non-empty frontier when cancelled before any work ran")
	}

	resumedConfig, err := engine.NewConfiguration(descriptor, []int{0, 5}, "tso")
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}
	resumed := NewExhaustive(2)
	if err := resumed.Explore(context.Background(), engine.New(resumedConfig), 2, 2, 4, interrupted.Frontier...); err != nil {
		t.Fatalf("Explore (resume): %v", err)
	}

	wantStates := len(full.Results.DistinctMemoryStates())
	gotStates := len(resumed.Results.DistinctMemoryStates())
	if gotStates != wantStates {
		t.Fatalf("resumed exploration found %d distinct memory states, full exploration found %d", gotStates, wantStates)
	}
}

func TestRandomStrategyStaysInRange(t *testing.T) {
	descriptor := messagePassing(model.SeqCst)
	config, err := engine.NewConfiguration(descriptor, []int{0, 5}, "sc")
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}
	exec := engine.New(config)
	random := NewRandomSeeded(42)
	if err := Run(exec, random); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !exec.IsDone() {
		t.Fatal("random strategy should drive the configuration to completion")
	}
}

func TestInteractiveSelectReadsChosenIndex(t *testing.T) {
	descriptor := messagePassing(model.SeqCst)
	config, err := engine.NewConfiguration(descriptor, []int{0, 5}, "sc")
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}
	exec := engine.New(config)

	var out strings.Builder
	in := strings.NewReader("0\n")
	interactive := NewInteractive(in, &out)
	index, err := interactive.Select(exec)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if index != 0 {
		t.Fatalf("expected index 0, got %d", index)
	}
	if !strings.Contains(out.String(), "thread step") {
		t.Fatalf("expected a printed transition list, got %q", out.String())
	}
}
