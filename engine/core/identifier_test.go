package core

import (
	"errors"
	"testing"
)

func TestIdentifierPoolReusesSlots(t *testing.T) {
	ip := NewIdentifierPool()
	a := ip.Acquire("a")
	b := ip.Acquire("b")
	c := ip.Acquire("c")
	if a != 1 || b != 2 || c != 3 {
		t.Fatalf("ids = %d %d %d, want 1 2 3", a, b, c)
	}

	if err := ip.Release(b); err != nil {
		t.Fatal(err)
	}
	if _, ok := ip.Get(b); ok {
		t.Error("released id still resolves")
	}
	if d := ip.Acquire("d"); d != b {
		t.Errorf("Acquire() after Release = %d, want reused %d", d, b)
	}
	if ip.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ip.Len())
	}
}

func TestIdentifierPoolRelease(t *testing.T) {
	ip := NewIdentifierPool()
	id := ip.Acquire(struct{}{})

	tests := []struct {
		name string
		id   uint64
	}{
		{"null", 0},
		{"out of range", id + 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ip.Release(tt.id); !errors.Is(err, ErrUnknownHandle) {
				t.Errorf("Release(%d) = %v, want ErrUnknownHandle", tt.id, err)
			}
		})
	}

	if err := ip.Release(id); err != nil {
		t.Fatal(err)
	}
	if err := ip.Release(id); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("double Release() = %v, want ErrUnknownHandle", err)
	}
}

func TestIdentifierPoolRangeAllowsRelease(t *testing.T) {
	ip := NewIdentifierPool()
	for i := 0; i < 4; i++ {
		ip.Acquire(i)
	}

	var seen []uint64
	ip.Range(func(id uint64, owner interface{}) bool {
		seen = append(seen, id)
		return ip.Release(id) == nil
	})
	if len(seen) != 4 || seen[0] != 1 || seen[3] != 4 {
		t.Errorf("Range visited %v", seen)
	}
	if ip.Len() != 0 {
		t.Errorf("Len() = %d after releasing everything", ip.Len())
	}
}
