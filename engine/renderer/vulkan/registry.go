package vulkan

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

type registeredObject struct {
	objectType metadata.ObjectType
	object     interface{}
	imported   bool
	// for descriptor sets, the pool they were allocated from
	parent uint64
}

// handleRegistry maps backend-neutral handles to Vulkan objects.
type handleRegistry struct {
	mu  sync.Mutex
	ids *core.IdentifierPool
}

func newHandleRegistry() *handleRegistry {
	return &handleRegistry{ids: core.NewIdentifierPool()}
}

func (r *handleRegistry) add(objectType metadata.ObjectType, object interface{}, imported bool) uint64 {
	return r.ids.Acquire(&registeredObject{objectType: objectType, object: object, imported: imported})
}

func (r *handleRegistry) addChild(objectType metadata.ObjectType, object interface{}, parent uint64) uint64 {
	return r.ids.Acquire(&registeredObject{objectType: objectType, object: object, parent: parent})
}

func (r *handleRegistry) lookup(objectType metadata.ObjectType, handle uint64) (*registeredObject, error) {
	owner, ok := r.ids.Get(handle)
	if !ok {
		return nil, fmt.Errorf("%s#%d: %w", objectType, handle, core.ErrUnknownHandle)
	}
	obj := owner.(*registeredObject)
	if obj.objectType != objectType {
		return nil, fmt.Errorf("%s#%d is a %s: %w", objectType, handle, obj.objectType, core.ErrUnknownHandle)
	}
	return obj, nil
}

func (r *handleRegistry) get(objectType metadata.ObjectType, handle uint64) (interface{}, error) {
	obj, err := r.lookup(objectType, handle)
	if err != nil {
		return nil, err
	}
	return obj.object, nil
}

// remove forgets an owned object and returns it so the caller can destroy it.
func (r *handleRegistry) remove(objectType metadata.ObjectType, handle uint64) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, err := r.lookup(objectType, handle)
	if err != nil {
		return nil, err
	}
	if obj.imported {
		return nil, fmt.Errorf("%s#%d is imported and not owned by the renderer", objectType, handle)
	}
	if err := r.ids.Release(handle); err != nil {
		return nil, err
	}
	return obj.object, nil
}

// removeChildren forgets every object allocated from parent.
func (r *handleRegistry) removeChildren(parent uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ids.Range(func(id uint64, owner interface{}) bool {
		if parent != 0 && owner.(*registeredObject).parent == parent {
			_ = r.ids.Release(id)
		}
		return true
	})
}

// owned counts live objects that were created, not imported.
func (r *handleRegistry) owned() int {
	n := 0
	r.ids.Range(func(_ uint64, owner interface{}) bool {
		if !owner.(*registeredObject).imported {
			n++
		}
		return true
	})
	return n
}
