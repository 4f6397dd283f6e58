package sc

import (
	"testing"

	"github.com/oisee/wmm-emulator/pkg/memsys"
	"github.com/oisee/wmm-emulator/pkg/model"
)

func TestSCReadWrite(t *testing.T) {
	s := New([]string{"x"}, 1)
	s.Write(0, memsys.Write{Mode: model.Relaxed, Value: 7, Cell: 0})
	if got := s.Read(1, memsys.Read{Cell: 0}); got != 7 {
		t.Fatalf("SC write by thread 0 should be immediately visible to thread 1, got %d", got)
	}
}

func TestSCNoPropagations(t *testing.T) {
	s := New([]string{"x"}, 1)
	s.Write(0, memsys.Write{Cell: 0, Value: 1})
	if props := s.AvailablePropagations(); len(props) != 0 {
		t.Fatalf("SC must never expose propagations, got %v", props)
	}
}

func TestSCRmw(t *testing.T) {
	s := New([]string{"x"}, 1)
	s.Write(0, memsys.Write{Cell: 0, Value: 5})
	prev := s.Rmw(0, memsys.Rmw{Cell: 0, Modify: func(v uint64) (uint64, uint64) { return v, v + 1 }})
	if prev != 5 {
		t.Fatalf("rmw should return the pre-modification value, got %d", prev)
	}
	if got := s.Read(0, memsys.Read{Cell: 0}); got != 6 {
		t.Fatalf("rmw modification should be applied, got %d", got)
	}
}

func TestSCCloneIsIndependent(t *testing.T) {
	s := New([]string{"x"}, 1)
	s.Write(0, memsys.Write{Cell: 0, Value: 1})
	clone := s.Clone()
	clone.(*Subsystem).Write(0, memsys.Write{Cell: 0, Value: 99})
	if got := s.Read(0, memsys.Read{Cell: 0}); got != 1 {
		t.Fatalf("cloning must not let writes to the clone leak back, got %d", got)
	}
}
