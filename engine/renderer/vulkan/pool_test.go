package vulkan

import (
	"errors"
	"sync"
	"testing"
)

func TestLockPoolSerializesGroup(t *testing.T) {
	pool := NewVulkanLockPool()

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.SafeCall(PipelineManagement, func() error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("%d calls ran inside the same group at once", maxSeen)
	}
}

func TestLockPoolReturnsError(t *testing.T) {
	pool := NewVulkanLockPool()
	want := errors.New("vkCreatePipelineLayout failed")

	if got := pool.SafeCall(PipelineManagement, func() error { return want }); got != want {
		t.Errorf("SafeCall() = %v, want %v", got, want)
	}
	// The group must be usable again after an error.
	if got := pool.SafeCall(PipelineManagement, func() error { return nil }); got != nil {
		t.Errorf("SafeCall() = %v, want nil", got)
	}
}
