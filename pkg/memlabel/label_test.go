package memlabel

import (
	"testing"

	"github.com/oisee/wmm-emulator/pkg/model"
	"github.com/oisee/wmm-emulator/pkg/program"
)

type fakeRegs map[program.Register]uint64

func (f fakeRegs) Get(reg program.Register) uint64 { return f[reg] }

func TestDeriveLoadStore(t *testing.T) {
	regs := fakeRegs{0: 10, 1: 99}
	load := program.Instruction{Kind: program.KindLoad, Mode: model.SeqCst, Addr: 0, Dst: 1}
	lbl := Derive(load, regs)
	if lbl.Kind != KindRead || lbl.Mode != model.SeqCst || lbl.Cell != 10 {
		t.Fatalf("unexpected load label: %+v", lbl)
	}

	store := program.Instruction{Kind: program.KindStore, Mode: model.Release, Addr: 0, Src: 1}
	lbl = Derive(store, regs)
	if lbl.Kind != KindWrite || lbl.Value != 99 || lbl.Cell != 10 {
		t.Fatalf("unexpected store label: %+v", lbl)
	}
}

func TestDeriveCasModification(t *testing.T) {
	regs := fakeRegs{0: 5, 1: 7, 2: 42}
	cas := program.Instruction{Kind: program.KindCas, Addr: 0, Expected: 1, Desired: 2}
	lbl := Derive(cas, regs)
	if lbl.Kind != KindRmw {
		t.Fatalf("expected Rmw label, got %v", lbl.Kind)
	}
	if prev, next := lbl.Modify(7); prev != 7 || next != 42 {
		t.Errorf("cas hit: got prev=%d next=%d, want prev=7 next=42", prev, next)
	}
	if prev, next := lbl.Modify(8); prev != 8 || next != 8 {
		t.Errorf("cas miss: got prev=%d next=%d, want prev=8 next=8", prev, next)
	}
}

func TestDeriveFaiModification(t *testing.T) {
	regs := fakeRegs{0: 3, 1: 10}
	fai := program.Instruction{Kind: program.KindFai, Addr: 0, Increment: 1}
	lbl := Derive(fai, regs)
	if prev, next := lbl.Modify(100); prev != 100 || next != 110 {
		t.Errorf("fai: got prev=%d next=%d, want prev=100 next=110", prev, next)
	}
}

func TestDeriveEpsilon(t *testing.T) {
	for _, instr := range []program.Instruction{
		{Kind: program.KindRegConst},
		{Kind: program.KindRegBinOp},
		{Kind: program.KindIf},
	} {
		if lbl := Derive(instr, fakeRegs{}); lbl.Kind != KindEpsilon {
			t.Errorf("%v: expected Epsilon label, got %v", instr.Kind, lbl.Kind)
		}
	}
}

func TestDeriveFence(t *testing.T) {
	fence := program.Instruction{Kind: program.KindFence, Mode: model.SeqCst}
	if lbl := Derive(fence, fakeRegs{}); lbl.Kind != KindFence || lbl.Mode != model.SeqCst {
		t.Fatalf("unexpected fence label: %+v", lbl)
	}
}
