package world

import (
	"sync"
	"testing"
)

func TestObjectIDGeneratorUnique(t *testing.T) {
	gen := NewObjectIDGenerator()

	const workers, perWorker = 8, 500
	ids := make(chan uint32, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for range perWorker {
				ids <- gen.NextAgentID()
			}
		})
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint32]struct{})
	for id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID %#x", id)
		}
		if !IsAgentID(id) {
			t.Errorf("ID %#x outside agent range", id)
		}
		seen[id] = struct{}{}
	}
}

func TestObjectIDRanges(t *testing.T) {
	gen := NewObjectIDGenerator()

	if id := gen.NextAgentID(); id != 0x10000001 {
		t.Errorf("first agent ID = %#x, want 0x10000001", id)
	}
	if IsAgentID(0x20000000) {
		t.Error("0x20000000 is past the agent range")
	}
	if IsAgentID(0) {
		t.Error("zero is not an agent ID")
	}
}
