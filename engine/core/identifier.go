package core

import (
	"fmt"
	"sync"
)

// IdentifierPool hands out small integer identifiers for arbitrary owners and
// reuses released slots. Identifier 0 is never handed out so it can stand for
// a null handle.
type IdentifierPool struct {
	mu     sync.RWMutex
	owners []interface{}
}

func NewIdentifierPool() *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, 0, 100),
	}
}

func (ip *IdentifierPool) Acquire(owner interface{}) uint64 {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	for i := range ip.owners {
		// Existing free spot. Take it.
		if ip.owners[i] == nil {
			ip.owners[i] = owner
			return uint64(i) + 1
		}
	}

	// If here, no existing free slots. Need a new id, so push one.
	ip.owners = append(ip.owners, owner)
	return uint64(len(ip.owners))
}

func (ip *IdentifierPool) Get(id uint64) (interface{}, bool) {
	ip.mu.RLock()
	defer ip.mu.RUnlock()

	if id == 0 || id > uint64(len(ip.owners)) {
		return nil, false
	}
	owner := ip.owners[id-1]
	return owner, owner != nil
}

func (ip *IdentifierPool) Release(id uint64) error {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	length := uint64(len(ip.owners))
	if id == 0 || id > length {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d). Nothing was done: %w", id, length, ErrUnknownHandle)
	}
	if ip.owners[id-1] == nil {
		return fmt.Errorf("identifier release: id '%d' is not in use: %w", id, ErrUnknownHandle)
	}

	// Just zero out the entry, making it available for use.
	ip.owners[id-1] = nil
	return nil
}

// Len returns the number of identifiers currently in use.
func (ip *IdentifierPool) Len() int {
	ip.mu.RLock()
	defer ip.mu.RUnlock()

	n := 0
	for _, o := range ip.owners {
		if o != nil {
			n++
		}
	}
	return n
}

// Range calls fn for every identifier in use, in ascending order, until fn
// returns false. It iterates over a snapshot, so fn may Release identifiers.
func (ip *IdentifierPool) Range(fn func(id uint64, owner interface{}) bool) {
	ip.mu.RLock()
	snapshot := make([]interface{}, len(ip.owners))
	copy(snapshot, ip.owners)
	ip.mu.RUnlock()

	for i, owner := range snapshot {
		if owner == nil {
			continue
		}
		if !fn(uint64(i)+1, owner) {
			return
		}
	}
}
